package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claimflow/claimflow-go/pkg/claimflow"
)

var demoAmount float64

// DemoCmd walks one claim through its lifecycle with the demo users.
var DemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk a claim through its lifecycle",
	Long: `Create a claim as a policyholder, attach a document, review, approve and
settle it with the demo users, then print its audit trail.

The configured audit sink and document store are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := claimflow.LoadConfig()
		if err != nil {
			return err
		}
		sys, err := claimflow.NewFromConfig(ctx, cfg, claimflow.SeedUsers(), claimflow.SeedPolicies())
		if err != nil {
			return err
		}
		defer sys.Close()

		svc := sys.Service
		claim, err := svc.CreateClaim("usr-001", claimflow.CreateRequest{
			Fields: claimflow.ClaimFields{
				PolicyID:      "pol-001",
				Title:         "Rear-end collision",
				Description:   "Vehicle hit from behind at a traffic light",
				AmountClaimed: demoAmount,
			},
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", claim.ID, claim.Status.Label())

		claim, err = svc.UploadDocuments(ctx, "usr-002", claim.ID, []claimflow.Upload{
			{Name: "police-report.txt", Body: strings.NewReader("Report no. 4711\n")},
		})
		if err != nil {
			return err
		}
		for _, doc := range claim.Documents {
			link, err := svc.DocumentLink(ctx, "usr-001", claim.ID, doc.Locator)
			if err != nil {
				return err
			}
			fmt.Printf("Attached %s: %s\n", doc.Name, link)
		}

		steps := []struct {
			actor string
			to    claimflow.Status
		}{
			{"usr-002", claimflow.StatusInReview},
			{"usr-003", claimflow.StatusPendingVerification},
			{"usr-003", claimflow.StatusInReview},
			{"usr-002", claimflow.StatusApproved},
			{"usr-004", claimflow.StatusSettled},
		}
		for _, step := range steps {
			claim, err = svc.TransitionClaim(step.actor, claim.ID, claimflow.TransitionRequest{To: step.to})
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", step.actor, claim.Status.Label())
		}

		trail, err := svc.GetAuditTrail(claim.ID)
		if err != nil {
			return err
		}

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tBY\tTYPE\tDETAILS")
		for _, e := range trail {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.ActorName, e.Kind, e.Detail)
		}
		return w.Flush()
	},
}

func init() {
	DemoCmd.Flags().Float64VarP(&demoAmount, "amount", "a", 2500, "Amount claimed")
}
