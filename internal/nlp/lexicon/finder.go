package lexicon

import (
	"regexp"
	"strings"

	"github.com/hc-tap/clinspan/pkg/errors"
)

// Span is a raw lexical match: half-open offsets into the scanned text, the
// verbatim surface slice, and the normalized term that produced the match.
type Span struct {
	Begin int
	End   int
	Text  string
	Norm  string
}

// dosePattern optionally consumes a trailing dose expression after a term:
// whitespace, digits, and a unit token from the fixed unit vocabulary.
const dosePattern = `(?:\s+\d+\s*(?:mg|mcg|g|ml|units?|iu))?`

// Finder scans text for word-boundary matches of a fixed term list.
// Compilation happens once at construction; Find is read-only and safe for
// concurrent use.
type Finder struct {
	terms    []string
	patterns []*regexp.Regexp
}

// NewFinder compiles one case-insensitive, word-boundary-anchored pattern
// per term.  When withDose is true each pattern may additionally consume a
// trailing dose expression.
func NewFinder(terms []string, withDose bool) (*Finder, error) {
	if len(terms) == 0 {
		return nil, errors.New(errors.ErrCodeLexiconEmpty, "term list must not be empty")
	}
	f := &Finder{
		terms:    terms,
		patterns: make([]*regexp.Regexp, len(terms)),
	}
	for i, term := range terms {
		expr := `(?i)\b(` + regexp.QuoteMeta(term) + `)`
		if withDose {
			expr += dosePattern
		}
		expr += `\b`
		pat, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeLexiconEmpty, "failed to compile term pattern").
				WithDetail("term=" + term)
		}
		f.patterns[i] = pat
	}
	return f, nil
}

// Find yields every non-overlapping match for every term, in term-list order
// and then left-to-right within a term.  Matches for different terms may
// overlap; de-duplication is the assembler's job, not the finder's.
func (f *Finder) Find(text string) []Span {
	var spans []Span
	for _, pat := range f.patterns {
		for _, loc := range pat.FindAllStringSubmatchIndex(text, -1) {
			// loc[0:2] is the whole match (term + optional dose),
			// loc[2:4] is the bare term group.
			spans = append(spans, Span{
				Begin: loc[0],
				End:   loc[1],
				Text:  text[loc[0]:loc[1]],
				Norm:  strings.ToLower(text[loc[2]:loc[3]]),
			})
		}
	}
	return spans
}

// FindSpans is a one-shot convenience over NewFinder + Find for callers that
// scan a single document with an ad hoc term list.
func FindSpans(text string, terms []string, withDose bool) ([]Span, error) {
	f, err := NewFinder(terms, withDose)
	if err != nil {
		return nil, err
	}
	return f.Find(text), nil
}
