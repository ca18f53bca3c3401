package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-motivation/internal/jurisdiction"
)

var (
	countiesIncludeComing bool
	countiesByState       bool
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "List supported jurisdictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := jurisdiction.DefaultRegistry()
		if countiesByState {
			return writeJSON(cmd.OutOrStdout(), reg.ByState())
		}
		return writeJSON(cmd.OutOrStdout(), reg.Summaries(countiesIncludeComing))
	},
}

func init() {
	countiesCmd.Flags().BoolVar(&countiesIncludeComing, "include-coming", false, "include jurisdictions without an adapter yet")
	countiesCmd.Flags().BoolVar(&countiesByState, "by-state", false, "group every jurisdiction by state")
	rootCmd.AddCommand(countiesCmd)
}
