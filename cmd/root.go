package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "motivation-cli",
	Short: "Owner motivation scoring for real-estate leads",
	Long:  "Resolves leads to county records jurisdictions, reads appraisal and tax portals, analyzes recorded documents and scores how motivated each owner is to sell.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
