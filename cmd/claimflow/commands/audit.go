package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claimflow/claimflow-go/internal/infrastructure/audit"
	"github.com/claimflow/claimflow-go/pkg/claimflow"
)

// Audit command flags
var (
	auditClaimID string
	auditLimit   int
	auditOutput  string
)

// AuditCmd is the parent command for audit sink operations.
var AuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit sink commands",
	Long:  `Commands for reading the audit entries forwarded to a SQL sink.`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List forwarded audit entries",
	Long:  `List audit entries stored in the configured sqlite or postgres sink, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := openSQLSink()
		if err != nil {
			return err
		}
		defer sink.Close()

		entries, err := sink.List(cmd.Context(), auditClaimID, auditLimit)
		if err != nil {
			return err
		}

		if auditOutput == "json" {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tCLAIM\tTIME\tBY\tTYPE\tDETAILS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				e.Sequence, e.ClaimID, e.Timestamp.Format("2006-01-02 15:04:05"), e.ActorName, e.Kind, e.Detail)
		}
		return w.Flush()
	},
}

// MigrateCmd applies the audit sink schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply audit sink migrations",
	Long:  `Create or upgrade the audit_entries schema of the configured sqlite or postgres sink.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, err := openSQLSink()
		if err != nil {
			return err
		}
		defer sink.Close()

		if err := sink.Migrate(); err != nil {
			return err
		}
		fmt.Printf("Audit schema is up to date (%s)\n", sink.Name())
		return nil
	},
}

func openSQLSink() (*audit.SQLSink, error) {
	cfg, err := claimflow.LoadConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Audit.Sink {
	case audit.DriverSQLite, audit.DriverPostgres:
		return audit.OpenSQLSink(cfg.Audit.Sink, cfg.Audit.DSN)
	default:
		return nil, fmt.Errorf("audit sink %q is not a SQL sink; set audit.sink to sqlite or postgres", cfg.Audit.Sink)
	}
}

func init() {
	auditListCmd.Flags().StringVarP(&auditClaimID, "claim", "c", "", "Only entries for this claim")
	auditListCmd.Flags().IntVarP(&auditLimit, "limit", "l", 50, "Maximum results")
	auditListCmd.Flags().StringVarP(&auditOutput, "output", "o", "text", "Output format (text|json)")
	AuditCmd.AddCommand(auditListCmd)
}
