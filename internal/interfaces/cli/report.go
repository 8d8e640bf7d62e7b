package cli

import (
	"github.com/spf13/cobra"

	"github.com/hc-tap/clinspan/internal/eval"
)

// reportOptions holds report-specific flags.
type reportOptions struct {
	runID       string
	goldPath    string
	predictions string
	top         int
}

// NewReportCmd creates the report subcommand, which prints the notes with
// the most false positives under relaxed matching.
func NewReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the most FP-heavy notes for an extraction run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			runID := cfg.Extraction.RunID
			if opts.runID != "" {
				runID = opts.runID
			}
			goldPath := cfg.Paths.GoldPath
			if opts.goldPath != "" {
				goldPath = opts.goldPath
			}
			predictions := cfg.Paths.BundlePath(runID)
			if opts.predictions != "" {
				predictions = opts.predictions
			}
			top := cfg.Eval.TopNotes
			if cmd.Flags().Changed("top") {
				top = opts.top
			}

			return eval.NewReporter(cliCtx.Logger).
				Write(cmd.OutOrStdout(), goldPath, predictions, top)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.runID, "run-id", "", "run identifier to report on (default from config)")
	f.StringVar(&opts.goldPath, "gold", "", "gold label JSONL path")
	f.StringVar(&opts.predictions, "predictions", "", "predictions JSONL path (default: the run's bundle)")
	f.IntVar(&opts.top, "top", 0, "number of notes to list")
	return cmd
}
