// Package callnumber turns Library of Congress style call numbers into
// strings whose plain byte order matches shelf order.
//
// The pipeline is strictly one way:
//
//	raw cell -> Normalize -> Parse -> Components.Key -> comparison
//
// Nothing here validates LOC syntax. Values that do not start with class
// letters and a class number fall back to their normalized text as the key.
package callnumber

import (
	"regexp"
	"strings"
)

// Normalizer repairs the two spacing mistakes most often found in exported
// catalog data: "QA 76" (letters split from the class number) and "76 .5"
// (a stray space before a decimal point).
//
// A Normalizer owns its compiled patterns and is safe for concurrent use.
type Normalizer struct {
	lettersSpaceDigits *regexp.Regexp
	digitSpaceDot      *regexp.Regexp
}

// NewNormalizer compiles the rewrite patterns. Build one at startup and
// share it.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		lettersSpaceDigits: regexp.MustCompile(`([A-Z]+) (\d+)`),
		digitSpaceDot:      regexp.MustCompile(`(\d) \.`),
	}
}

// Normalize applies both rewrites to every non-overlapping occurrence, in
// order, then trims surrounding whitespace. It is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	s := n.lettersSpaceDigits.ReplaceAllString(raw, "${1}${2}")
	s = n.digitSpaceDot.ReplaceAllString(s, "${1}.")
	return strings.TrimSpace(s)
}
