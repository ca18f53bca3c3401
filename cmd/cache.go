package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent result cache",
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired entries from the SQLite or Postgres cache tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch cfg.Cache.Backend {
		case config.CacheSQLite, config.CachePostgres:
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "cache backend %q has no persistent tier to sweep\n", cfg.Cache.Backend)
			return nil
		}

		st, err := initStore(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.DeleteExpired(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("cache sweep complete", zap.String("backend", cfg.Cache.Backend), zap.Int("deleted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheSweepCmd)
	rootCmd.AddCommand(cacheCmd)
}
