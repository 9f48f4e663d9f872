package callnumber

import "strings"

// Segment widths of an encoded key.
const (
	classLettersWidth = 3
	classNumberWidth  = 4
	classDecimalWidth = 3
	cutterNumberWidth = 5
	yearWidth         = 4
)

// Key encodes the components into a fixed-layout comparison string:
//
//	class letters   space-padded on the right to 3
//	class number    zero-padded to 4
//	class decimal   zero-padded to 3   ("000" when absent)
//	cutter-1 letter as captured
//	cutter-1 number zero-padded to 5   ("00000" when absent)
//	cutter-2 letter as captured
//	cutter-2 number zero-padded to 5   ("00000" when absent)
//	year            zero-padded to 4   ("0000" when absent)
//	suffix          as captured
//
// Segments longer than their width are kept whole, never truncated.
// Cutter letters are deliberately left unpadded.
func (c Components) Key() string {
	var b strings.Builder
	b.Grow(classLettersWidth + classNumberWidth + classDecimalWidth + 2*cutterNumberWidth + yearWidth + 3 + len(c.Suffix))

	b.WriteString(padRight(c.ClassLetters, classLettersWidth, ' '))
	b.WriteString(padLeft(c.ClassNumber, classNumberWidth, '0'))
	b.WriteString(padLeft(c.ClassDecimal, classDecimalWidth, '0'))
	b.WriteString(c.Cutter1Letter)
	b.WriteString(padLeft(c.Cutter1Number, cutterNumberWidth, '0'))
	b.WriteString(c.Cutter2Letter)
	b.WriteString(padLeft(c.Cutter2Number, cutterNumberWidth, '0'))
	b.WriteString(padLeft(c.Year, yearWidth, '0'))
	b.WriteString(c.Suffix)
	return b.String()
}

// DeriveKey returns the sort key for an already normalized call number.
// It never fails: input without a class prefix is its own key.
func DeriveKey(normalized string) string {
	c, ok := Parse(normalized)
	if !ok {
		return normalized
	}
	return c.Key()
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}

func padRight(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(string(pad), width-len(s))
}

// Keyer bundles a Normalizer with key derivation. It is the component the
// table sorter holds; construct it once and pass it where keys are needed.
type Keyer struct {
	norm *Normalizer
}

// NewKeyer returns a Keyer with freshly compiled patterns.
func NewKeyer() *Keyer {
	return &Keyer{norm: NewNormalizer()}
}

// Normalize exposes the Keyer's normalizer.
func (k *Keyer) Normalize(raw string) string {
	return k.norm.Normalize(raw)
}

// Key returns DeriveKey(Normalize(raw)).
func (k *Keyer) Key(raw string) string {
	return DeriveKey(k.norm.Normalize(raw))
}

// Explanation describes how one raw value was keyed.
type Explanation struct {
	Raw        string      `json:"raw"`
	Normalized string      `json:"normalized"`
	Parsed     bool        `json:"parsed"`
	Components *Components `json:"components,omitempty"`
	Key        string      `json:"key"`
}

// Explain runs the full pipeline on raw and reports every intermediate step.
func (k *Keyer) Explain(raw string) Explanation {
	normalized := k.norm.Normalize(raw)
	e := Explanation{Raw: raw, Normalized: normalized, Key: normalized}
	if c, ok := Parse(normalized); ok {
		e.Parsed = true
		e.Components = &c
		e.Key = c.Key()
	}
	return e
}
