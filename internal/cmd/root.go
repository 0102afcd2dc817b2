// Package cmd wires up the secrethunter command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mobsec-labs/secrethunter/internal/cmd/common"
)

// NewRootCmd builds the secrethunter root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "secrethunter [command]",
		Short:   "Scan Android APKs for hardcoded secrets",
		Version: common.Version,
	}

	common.AddCommonFlags(rootCmd)
	common.SetupPersistentPreRun(rootCmd)

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewRulesCmd())

	return rootCmd
}

// Execute runs the command tree.
func Execute() {
	common.Run(NewRootCmd())
}
