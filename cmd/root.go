// Package cmd contains the dashd command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

// NewRootCmd returns the dashd root command with subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashd",
		Short:   "OpenClaw workspace dashboard daemon",
		Long:    "dashd discovers pipelines, agents, skills and custom modules in an OpenClaw workspace and serves them over REST and realtime channels.",
		Version: Version,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to dashd.yml")

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newScanCmd())

	return cmd
}
