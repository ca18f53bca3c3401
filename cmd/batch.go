package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
)

var (
	batchFile string
	batchPro  bool
)

var batchPropertiesCmd = &cobra.Command{
	Use:   "batch-properties",
	Short: "Re-read and re-score known properties",
	Long:  "Reads a JSON (or YAML) array of {id, external_id, jurisdiction_id} and prints fresh details and scores for each.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var refs []model.PropertyRef
		if err := readInput(batchFile, cmd.InOrStdin(), &refs); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Pipeline.BatchValidateProperties(ctx, refs, pipeline.Options{IsPro: batchPro})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	batchPropertiesCmd.Flags().StringVar(&batchFile, "file", "", "properties file (.json/.yaml); stdin when empty")
	batchPropertiesCmd.Flags().BoolVar(&batchPro, "pro", false, "caller has the pro tier")
	rootCmd.AddCommand(batchPropertiesCmd)
}
