package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/importdesk/importdesk/internal/config"
	"github.com/importdesk/importdesk/internal/daemon"
	"github.com/importdesk/importdesk/internal/logger"
)

func init() { //nolint: gochecknoinits
	seedCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default platform rules and print the report",
	PreRun: func(_ *cobra.Command, _ []string) {
		if cfg, err = config.ReadConfig(configPath); err != nil {
			panic(err)
		}

		if err = logger.Init(cfg.Log); err != nil {
			panic(err)
		}
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		db := daemon.OpenDB(&cfg)

		if err := daemon.Migrate(db); err != nil {
			return err
		}

		report, err := daemon.SeedDefaultRules(db, daemon.DefaultTenantID)
		if err != nil {
			return err
		}

		for _, id := range report.Created {
			fmt.Printf("created %s\n", id)
		}

		for _, skipped := range report.Skipped {
			fmt.Printf("skipped %s: %s\n", skipped.ID, skipped.Reason)
		}

		return nil
	},
}
