package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hc-tap/clinspan/internal/nlp/sections"
	"github.com/hc-tap/clinspan/internal/nlp/textnorm"
	"github.com/hc-tap/clinspan/internal/notes"
)

// NewSectionsCmd creates the sections subcommand, a debugging aid that
// prints the detected section intervals for one note.
func NewSectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections <note-id>",
		Short: "Show detected section intervals for a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}

			corpus := notes.NewCorpus(cliCtx.Config.Paths.NotesDir, cliCtx.Logger)
			note, err := corpus.ByID(args[0])
			if err != nil {
				return err
			}

			text := textnorm.NormalizeText(note.Text)
			intervals := sections.NewDetector().Detect(text)
			out := cmd.OutOrStdout()
			if len(intervals) == 0 {
				fmt.Fprintln(out, "no recognized section headings")
				return nil
			}
			if intervals[0].Start > 0 {
				fmt.Fprintf(out, "%6d %6d  %s\n", 0, intervals[0].Start, sections.SectionUnknown)
			}
			for _, iv := range intervals {
				fmt.Fprintf(out, "%6d %6d  %s\n", iv.Start, iv.End, iv.Name)
			}
			return nil
		},
	}
	return cmd
}
