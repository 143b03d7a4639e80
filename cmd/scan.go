package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/internal/daemon/discovery"
	"github.com/openclaw/dashd/logging"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one discovery scan and print the snapshot",
		Long:  "Scan the workspace once, without starting the daemon, and print the resulting snapshot as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault(configPath)
			if err != nil {
				return err
			}
			logging.Configure(cfg.Log.Level, "")
			logger := logging.NewLogger("scan")

			scanner, err := discovery.NewScanner(cfg, logger)
			if err != nil {
				return err
			}
			classifier := discovery.NewClassifier(cfg, logger)
			builder := discovery.NewBuilder(classifier, logger)

			observations, err := scanner.Scan(context.Background())
			if err != nil {
				return err
			}
			snap := builder.Build(scanner.Root(), observations)

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(snap)
		},
	}
}
