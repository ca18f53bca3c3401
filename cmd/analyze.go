package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-motivation/internal/documents"
	"github.com/sells-group/lead-motivation/internal/model"
)

var (
	analyzeFile         string
	analyzeJurisdiction string
	analyzeProperty     string
	analyzeLimit        int
)

// analyzeOutput is what the analyze command prints.
type analyzeOutput struct {
	Analysis *model.AnalysisResult  `json:"analysis"`
	Score    *model.MotivationScore `json:"score,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a property's documents and print the document score",
	Long:  "Analyzes either a documents file (--file) or the documents stored for --jurisdiction/--property under documents.dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var docs []model.DocumentEvidence
		switch {
		case analyzeFile != "":
			if err := readInput(analyzeFile, cmd.InOrStdin(), &docs); err != nil {
				return err
			}
		case analyzeJurisdiction != "" && analyzeProperty != "":
			var err error
			docs, err = documents.NewDirFetcher(cfg.Documents.Dir).GetDocuments(ctx, analyzeProperty, analyzeJurisdiction,
				documents.Options{Limit: analyzeLimit})
			if err != nil {
				return err
			}
		default:
			return eris.New("analyze: pass --file or both --jurisdiction and --property")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a, s := env.Pipeline.ScoreDocuments(ctx, docs)
		return writeJSON(cmd.OutOrStdout(), analyzeOutput{Analysis: a, Score: s})
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "documents file (.json/.yaml)")
	analyzeCmd.Flags().StringVar(&analyzeJurisdiction, "jurisdiction", "", "jurisdiction id")
	analyzeCmd.Flags().StringVar(&analyzeProperty, "property", "", "county account id")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "analyze at most this many of the newest documents")
	rootCmd.AddCommand(analyzeCmd)
}
