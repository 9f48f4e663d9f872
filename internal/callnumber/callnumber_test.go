package callnumber

import (
	"sort"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"letters split from class number", "QA 76", "QA76"},
		{"space before decimal", "76 .5", "76.5"},
		{"both rewrites and trim", "  QA 76.73 .C15  ", "QA76.73.C15"},
		{"every occurrence", "E 185 .97 .K5 A3 2001", "E185.97.K5 A3 2001"},
		{"double space untouched", "QA  76", "QA  76"},
		{"lowercase untouched", "qa 76", "qa 76"},
		{"empty", "", ""},
		{"whitespace only", " \t ", ""},
		{"free text", "see librarian", "see librarian"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"QA 76 .5",
		"A 1 B 2",
		"1 .1 .",
		" QA 76.73 .C15 S73 1996 ",
		"Z 12 34",
		"",
		"PS 3566 .A1 Z 5",
		"日本 語 1 .2",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalize_SpaceSeparatedClassCode(t *testing.T) {
	n := NewNormalizer()
	if a, b := n.Normalize("QA 76.73 .C15"), n.Normalize("QA76.73.C15"); a != b {
		t.Errorf("Normalize mismatch: %q vs %q", a, b)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Components
	}{
		{
			name: "full call number",
			in:   "QA76.73.C15 S73 1996",
			want: Components{ClassLetters: "QA", ClassNumber: "76", ClassDecimal: "73",
				Cutter1Letter: "C", Cutter1Number: "15", Cutter2Letter: "S", Cutter2Number: "73", Year: "1996"},
		},
		{
			name: "cutter without dot",
			in:   "PS3566 A1",
			want: Components{ClassLetters: "PS", ClassNumber: "3566", Cutter1Letter: "A", Cutter1Number: "1"},
		},
		{
			name: "class only",
			in:   "QA76",
			want: Components{ClassLetters: "QA", ClassNumber: "76"},
		},
		{
			name: "class number capped at four digits",
			in:   "QA12345",
			want: Components{ClassLetters: "QA", ClassNumber: "1234", ClassDecimal: "5"},
		},
		{
			name: "two letter second cutter",
			in:   "HF5415.13 .K37 AB12 2010 eBook",
			want: Components{ClassLetters: "HF", ClassNumber: "5415", ClassDecimal: "13",
				Cutter1Letter: "K", Cutter1Number: "37", Cutter2Letter: "AB", Cutter2Number: "12",
				Year: "2010", Suffix: " eBook"},
		},
		{
			name: "year takes exactly four digits",
			in:   "QA76 A1 B2 19967",
			want: Components{ClassLetters: "QA", ClassNumber: "76", Cutter1Letter: "A", Cutter1Number: "1",
				Cutter2Letter: "B", Cutter2Number: "2", Year: "1996", Suffix: "7"},
		},
		{
			name: "digits after first cutter land in second cutter number",
			in:   "QA76 A1 2001 v.2\nsecond line",
			want: Components{ClassLetters: "QA", ClassNumber: "76", Cutter1Letter: "A", Cutter1Number: "1",
				Cutter2Number: "2001", Suffix: "v.2"},
		},
		{
			name: "leading whitespace ignored",
			in:   "  \tZ7164",
			want: Components{ClassLetters: "Z", ClassNumber: "7164"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if !ok {
				t.Fatalf("Parse(%q) ok = false, want true", tt.in)
			}
			if got != tt.want {
				t.Errorf("Parse(%q)\n got = %+v\nwant = %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_NoClassPrefix(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"n/a",
		"76.5 QA",
		"ABCD12",
		"qa76",
		"QA",
		"日本語",
		"\xff\xfe",
	}

	for _, in := range inputs {
		if c, ok := Parse(in); ok {
			t.Errorf("Parse(%q) = %+v, want no match", in, c)
		}
	}
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"QA76.73.C15 S73 1996", "QA 0076073C00015S000731996"},
		{"PS3566 A1", "PS 3566000A00001000000000"},
		{"QA76", "QA 007600000000000000000"},
		{"QA12345", "QA 123400500000000000000"},
		{"Z7164 .A1 B123456", "Z  7164000A00001B1234560000"},
		{"", ""},
		{"not a call number", "not a call number"},
	}

	for _, tt := range tests {
		if got := DeriveKey(tt.in); got != tt.want {
			t.Errorf("DeriveKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveKey_Totality(t *testing.T) {
	k := NewKeyer()
	inputs := []string{"", " ", "\n", "Ünïcödé", "\xff", "QA", "123", "QA 76 .5 .C15 S73 1996 extra text"}
	for _, in := range inputs {
		got := k.Key(in)
		if got == "" && k.Normalize(in) != "" {
			t.Errorf("Key(%q) = empty for non-empty normalized input", in)
		}
	}
}

func TestKeyOrdering(t *testing.T) {
	k := NewKeyer()

	tests := []struct {
		name   string
		before string
		after  string
	}{
		{"year segment", "QA76.73.C15 S73 1996", "QA76.73.C15 S73 2000"},
		{"class number numeric", "QA76", "QA123"},
		{"shorter class letters first", "Q1", "QA1"},
		{"decimal", "QA76.5", "QA76.73"},
		{"cutter number numeric", "PS3566 A9", "PS3566 A10"},
		{"spacing irregularities do not matter", "QA 76 .5", "QA76.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := k.Key(tt.before), k.Key(tt.after)
			if !(a < b) {
				t.Errorf("Key(%q)=%q should sort before Key(%q)=%q", tt.before, a, tt.after, b)
			}
		})
	}
}

func TestKeyOrdering_ShelfList(t *testing.T) {
	k := NewKeyer()

	shelf := []string{
		"E185.97.K5 A3 2001",
		"PS3566 A1",
		"PS3566.A34",
		"Q1",
		"QA9",
		"QA76.73.C15 S73 1996",
		"QA76.73.C15 S73 2000",
		"QA 123 .B4",
		"QB500",
	}

	shuffled := []string{shelf[5], shelf[8], shelf[0], shelf[7], shelf[3], shelf[6], shelf[1], shelf[4], shelf[2]}
	sort.SliceStable(shuffled, func(i, j int) bool {
		return k.Key(shuffled[i]) < k.Key(shuffled[j])
	})

	for i := range shelf {
		if shuffled[i] != shelf[i] {
			t.Fatalf("position %d: got %q, want %q (full order %q)", i, shuffled[i], shelf[i], shuffled)
		}
	}
}

func TestExplain(t *testing.T) {
	k := NewKeyer()

	e := k.Explain("QA 76.73 .C15")
	if !e.Parsed {
		t.Fatal("Explain parsed = false, want true")
	}
	if e.Normalized != "QA76.73.C15" {
		t.Errorf("Normalized = %q, want %q", e.Normalized, "QA76.73.C15")
	}
	if e.Components == nil || e.Components.Cutter1Letter != "C" {
		t.Errorf("Components = %+v, want cutter C", e.Components)
	}
	if e.Key != k.Key("QA 76.73 .C15") {
		t.Errorf("Key = %q, want %q", e.Key, k.Key("QA 76.73 .C15"))
	}

	miss := k.Explain("  n/a ")
	if miss.Parsed || miss.Components != nil {
		t.Errorf("Explain(n/a) = %+v, want unparsed", miss)
	}
	if miss.Key != "n/a" {
		t.Errorf("fallback Key = %q, want %q", miss.Key, "n/a")
	}
}
