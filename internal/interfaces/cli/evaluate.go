package cli

import (
	"github.com/spf13/cobra"

	"github.com/hc-tap/clinspan/internal/eval"
	"github.com/hc-tap/clinspan/internal/infrastructure/storage/manifest"
)

// evaluateOptions holds evaluate-specific flags.
type evaluateOptions struct {
	runID       string
	goldPath    string
	predictions string
	noPersist   bool
}

// NewEvaluateCmd creates the evaluate subcommand.  It matches a run's
// predictions against gold labels and merges the metric blocks into the
// manifest.
func NewEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an extraction run against gold labels",
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

			var store *manifest.Store
			if !opts.noPersist {
				store = manifest.NewStore(cfg.Paths.ManifestPath, cliCtx.Logger)
			}

			result, err := eval.NewEvaluator(store, cliCtx.Logger, cliCtx.Metrics).
				Evaluate(cmd.Context(), eval.Params{
					RunID:           runID,
					GoldPath:        goldPath,
					PredictionsPath: predictions,
				})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.runID, "run-id", "", "run identifier to evaluate (default from config)")
	f.StringVar(&opts.goldPath, "gold", "", "gold label JSONL path")
	f.StringVar(&opts.predictions, "predictions", "", "predictions JSONL path (default: the run's bundle)")
	f.BoolVar(&opts.noPersist, "no-persist", false, "compute metrics without touching the manifest")
	return cmd
}
