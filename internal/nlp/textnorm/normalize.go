// Package textnorm canonicalizes raw note text and entity surface text.
// Both engines depend on it: extraction operates on the normalized note
// text, and evaluation compares entities by their normalized surface form.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText applies Unicode NFKC normalization, collapses whitespace
// runs to a single space, and trims.  It is total: any input, including the
// empty string, yields a well-defined result.
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFKC.String(raw)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeEntityText lower-cases and trims entity surface text.  It is the
// stable comparison key used during evaluation, so it deliberately does
// nothing beyond case and whitespace folding.
func NormalizeEntityText(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
