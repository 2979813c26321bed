// Package main provides the CLI entry point for claimflow-go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimflow/claimflow-go/cmd/claimflow/commands"
)

var (
	version = "0.4.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "claimflow",
	Short: "Claimflow - insurance claim workflow",
	Long: `Claimflow tracks insurance claims through a fixed lifecycle and gates
every status change by the acting user's role.

It provides:
  - The status registry and the role/transition matrix
  - A scripted walk through a claim's lifecycle
  - Audit sink schema migrations and audit queries`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(commands.StatusesCmd)
	rootCmd.AddCommand(commands.MatrixCmd)
	rootCmd.AddCommand(commands.DemoCmd)
	rootCmd.AddCommand(commands.AuditCmd)
	rootCmd.AddCommand(commands.MigrateCmd)
}
