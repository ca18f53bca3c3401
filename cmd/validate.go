package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-motivation/internal/model"
	"github.com/sells-group/lead-motivation/internal/pipeline"
)

var (
	validateFile      string
	validatePro       bool
	validateDocuments bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and score a batch of leads",
	Long:  "Reads a JSON (or YAML) array of leads and prints each lead with its validation: record and score, or a coming-soon, requires-pro or error marker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var leads []model.Lead
		if err := readInput(validateFile, cmd.InOrStdin(), &leads); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Pipeline.ValidateLeads(ctx, leads, pipeline.Options{
			IsPro:            validatePro,
			IncludeDocuments: validateDocuments,
		})
		if err != nil {
			return err
		}

		zap.L().Info("validate complete", zap.Int("leads", len(out)))
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "leads file (.json/.yaml); stdin when empty")
	validateCmd.Flags().BoolVar(&validatePro, "pro", false, "caller has the pro tier")
	validateCmd.Flags().BoolVar(&validateDocuments, "documents", false, "fold document analysis into scores")
	rootCmd.AddCommand(validateCmd)
}
