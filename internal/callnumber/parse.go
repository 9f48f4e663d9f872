package callnumber

import (
	"unicode"
	"unicode/utf8"
)

// Components is the structural decomposition of a normalized call number.
// Every field holds the text exactly as captured; absent segments are "".
type Components struct {
	ClassLetters  string `json:"class_letters"`
	ClassNumber   string `json:"class_number"`
	ClassDecimal  string `json:"class_decimal,omitempty"`
	Cutter1Letter string `json:"cutter1_letter,omitempty"`
	Cutter1Number string `json:"cutter1_number,omitempty"`
	Cutter2Letter string `json:"cutter2_letter,omitempty"`
	Cutter2Number string `json:"cutter2_number,omitempty"`
	Year          string `json:"year,omitempty"`
	Suffix        string `json:"suffix,omitempty"`
}

// Parse reads components left to right, each segment greedy, in the order
//
//	class letters (1-3, required)  class number (1-4 digits, required)
//	[.] decimal (up to 3 digits)   [space] [.] cutter-1 letter, cutter-1 digits
//	[space] cutter-2 letters (up to 2), cutter-2 digits
//	[space] year (exactly 4 digits)  suffix (rest of the line)
//
// Leading whitespace is skipped. ok is false when the class prefix is
// missing. Parsing is a single linear pass with no backtracking.
func Parse(s string) (c Components, ok bool) {
	sc := scanner{s: s}
	sc.skipSpace()

	if c.ClassLetters = sc.take(3, isUpper); c.ClassLetters == "" {
		return Components{}, false
	}
	if c.ClassNumber = sc.take(4, isDigit); c.ClassNumber == "" {
		return Components{}, false
	}

	sc.skipByte('.')
	c.ClassDecimal = sc.take(3, isDigit)

	sc.skipSpace()
	sc.skipByte('.')
	c.Cutter1Letter = sc.take(1, isUpper)
	c.Cutter1Number = sc.take(0, isDigit)

	sc.skipSpace()
	c.Cutter2Letter = sc.take(2, isUpper)
	c.Cutter2Number = sc.take(0, isDigit)

	sc.skipSpace()
	c.Year = sc.takeExact(4, isDigit)

	c.Suffix = sc.restOfLine()
	return c, true
}

// scanner walks a string by byte offset. Only whitespace may be multi-byte;
// letters and digits of interest are ASCII.
type scanner struct {
	s   string
	pos int
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) {
		r, size := utf8.DecodeRuneInString(sc.s[sc.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		sc.pos += size
	}
}

func (sc *scanner) skipByte(b byte) {
	if sc.pos < len(sc.s) && sc.s[sc.pos] == b {
		sc.pos++
	}
}

// take consumes up to limit bytes matching pred. limit <= 0 means no limit.
func (sc *scanner) take(limit int, pred func(byte) bool) string {
	start := sc.pos
	for sc.pos < len(sc.s) && pred(sc.s[sc.pos]) {
		if limit > 0 && sc.pos-start == limit {
			break
		}
		sc.pos++
	}
	return sc.s[start:sc.pos]
}

// takeExact consumes exactly n matching bytes or nothing at all.
func (sc *scanner) takeExact(n int, pred func(byte) bool) string {
	if len(sc.s)-sc.pos < n {
		return ""
	}
	for i := 0; i < n; i++ {
		if !pred(sc.s[sc.pos+i]) {
			return ""
		}
	}
	sc.pos += n
	return sc.s[sc.pos-n : sc.pos]
}

func (sc *scanner) restOfLine() string {
	rest := sc.s[sc.pos:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\n' {
			return rest[:i]
		}
	}
	return rest
}

func isUpper(b byte) bool { return 'A' <= b && b <= 'Z' }
func isDigit(b byte) bool { return '0' <= b && b <= '9' }
