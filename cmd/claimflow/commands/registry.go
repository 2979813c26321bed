// Package commands provides CLI command implementations.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claimflow/claimflow-go/pkg/claimflow"
)

// Registry command flags
var (
	registryOutput string
	matrixRole     string
)

// StatusesCmd prints the status registry.
var StatusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List claim statuses",
	Long:  `List every claim status with its label, workflow order and badge tone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		type row struct {
			Status   claimflow.Status `json:"status"`
			Label    string           `json:"label"`
			Order    int              `json:"workflowOrder"`
			Tone     string           `json:"tone"`
			Terminal bool             `json:"terminal"`
		}

		rows := make([]row, 0)
		for _, s := range claimflow.AllStatuses() {
			info, err := claimflow.Describe(s)
			if err != nil {
				return err
			}
			rows = append(rows, row{Status: s, Label: info.Label, Order: info.WorkflowOrder, Tone: info.Tone, Terminal: s.IsTerminal()})
		}

		if registryOutput == "json" {
			return printJSON(rows)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STATUS\tLABEL\tORDER\tTONE\tTERMINAL")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%t\n", r.Status, r.Label, r.Order, r.Tone, r.Terminal)
		}
		return w.Flush()
	},
}

// MatrixCmd prints the transition table.
var MatrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the transition matrix",
	Long: `Show which roles may move a claim between statuses.

With --role only the edges that role may take are listed, followed by
the role's other permissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := claimflow.Rules()

		var permissions []string
		if matrixRole != "" {
			role, err := claimflow.ParseRole(matrixRole)
			if err != nil {
				return err
			}
			filtered := make([]claimflow.Rule, 0)
			for _, r := range rules {
				if claimflow.Authorize(role, r.From, r.To) {
					filtered = append(filtered, r)
				}
			}
			rules = filtered

			permissions = make([]string, 0)
			for p := range claimflow.RolePermissions(role) {
				permissions = append(permissions, string(p))
			}
			sort.Strings(permissions)
		}

		if registryOutput == "json" {
			if permissions != nil {
				return printJSON(struct {
					Rules       []claimflow.Rule `json:"rules"`
					Permissions []string         `json:"permissions"`
				}{rules, permissions})
			}
			return printJSON(rules)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FROM\tTO\tROLES")
		for _, r := range rules {
			roles := make([]string, 0, len(r.Roles))
			for _, role := range r.Roles {
				name := role.DisplayName()
				if r.OwnerOnly && role == claimflow.RolePolicyholder {
					name += " (own claim)"
				}
				roles = append(roles, name)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.From.Label(), r.To.Label(), strings.Join(roles, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if permissions != nil {
			fmt.Printf("\nOther permissions: %s\n", strings.Join(permissions, ", "))
		}
		return nil
	},
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func init() {
	StatusesCmd.Flags().StringVarP(&registryOutput, "output", "o", "text", "Output format (text|json)")
	MatrixCmd.Flags().StringVarP(&registryOutput, "output", "o", "text", "Output format (text|json)")
	MatrixCmd.Flags().StringVarP(&matrixRole, "role", "r", "", "Only show edges open to this role")
}
