package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-motivation/internal/pipeline"
)

var searchOpts pipeline.SearchOptions

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a county portal by address or owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cands, err := env.Pipeline.SearchProperties(ctx, searchOpts)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), cands)
	},
}

var detailOpts pipeline.DetailOptions

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Fetch one property's merged appraisal and tax record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Pipeline.GetPropertyDetails(ctx, detailOpts)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rec)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchOpts.JurisdictionID, "jurisdiction", "", "jurisdiction id; resolved from the location when empty")
	f.StringVar(&searchOpts.Address, "address", "", "street address")
	f.StringVar(&searchOpts.City, "city", "", "city")
	f.StringVar(&searchOpts.State, "state", "", "state")
	f.StringVar(&searchOpts.Zip, "zip", "", "ZIP code")
	f.StringVar(&searchOpts.OwnerName, "owner", "", "owner name")
	f.BoolVar(&searchOpts.IsPro, "pro", false, "caller has the pro tier")
	rootCmd.AddCommand(searchCmd)

	d := detailsCmd.Flags()
	d.StringVar(&detailOpts.JurisdictionID, "jurisdiction", "", "jurisdiction id")
	d.StringVar(&detailOpts.ExternalID, "id", "", "county account id")
	d.BoolVar(&detailOpts.IsPro, "pro", false, "caller has the pro tier")
	_ = detailsCmd.MarkFlagRequired("jurisdiction")
	_ = detailsCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(detailsCmd)
}
