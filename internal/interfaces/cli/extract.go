package cli

import (
	"github.com/spf13/cobra"

	"github.com/hc-tap/clinspan/internal/config"
	"github.com/hc-tap/clinspan/internal/infrastructure/storage/manifest"
	"github.com/hc-tap/clinspan/internal/nlp/extract"
	"github.com/hc-tap/clinspan/internal/notes"
)

// extractOptions holds extract-specific flags.
type extractOptions struct {
	runID            string
	profile          string
	limit            int
	freshRun         bool
	expandQualifiers bool
	dryRun           bool
}

// NewExtractCmd creates the extract subcommand.  It runs the rule
// extractor over the note corpus, writes per-note and bundled JSONL
// outputs, and records the run in the manifest.
func NewExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract clinical entities from the note corpus",
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
			if opts.freshRun {
				runID = config.FreshRunID()
			}
			profile := cfg.Extraction.Profile
			if opts.profile != "" {
				profile = opts.profile
			}
			limit := cfg.Extraction.Limit
			if cmd.Flags().Changed("limit") {
				limit = opts.limit
			}

			extractor, err := extract.NewRuleExtractor(extract.Config{
				RunID:            runID,
				Profile:          profile,
				ExpandQualifiers: opts.expandQualifiers || cfg.Extraction.ExpandQualifiers,
			}, cliCtx.Logger, cliCtx.Metrics)
			if err != nil {
				return err
			}

			var (
				sink  *notes.EntitySink
				store *manifest.Store
			)
			if !opts.dryRun {
				sink = notes.NewEntitySink(cfg.Paths.EntitiesDir, cfg.Paths.EnrichedDir)
				store = manifest.NewStore(cfg.Paths.ManifestPath, cliCtx.Logger)
			}

			runner := extract.NewRunner(
				notes.NewCorpus(cfg.Paths.NotesDir, cliCtx.Logger),
				extractor, sink, store, limit,
				cliCtx.Logger, cliCtx.Metrics,
			)
			summary, _, err := runner.Run(cmd.Context(), runID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.runID, "run-id", "", "run identifier (default from config)")
	f.StringVar(&opts.profile, "profile", "", "rule profile: default, strict, strict-lite")
	f.IntVar(&opts.limit, "limit", 0, "process at most N notes (0 = all)")
	f.BoolVar(&opts.freshRun, "fresh-run", false, "generate a unique run id instead of the configured one")
	f.BoolVar(&opts.expandQualifiers, "expand-qualifiers", false, "expand problem terms with qualifier prefixes")
	f.BoolVar(&opts.dryRun, "dry-run", false, "extract without writing entities or the manifest")
	return cmd
}
