package table

import (
	"slices"
	"strings"

	"github.com/JonMunkholm/locsort/internal/callnumber"
)

// Stats summarizes how the rows of one sort were keyed.
type Stats struct {
	Rows      int `json:"rows"`
	Parsed    int `json:"parsed"`
	Fallback  int `json:"fallback"`
	ShortRows int `json:"short_rows"`
}

// Sorter orders tables by call-number columns. It holds the Keyer so the
// compiled patterns are owned state rather than package globals.
type Sorter struct {
	keyer *callnumber.Keyer
}

// NewSorter returns a Sorter that derives keys with k.
func NewSorter(k *callnumber.Keyer) *Sorter {
	return &Sorter{keyer: k}
}

type keyedRow struct {
	key string
	row Row
}

// SortByColumn returns a copy of t with rows stably ordered by the call-number
// key of column. Only row order changes. Rows too short to reach the column
// sort as an empty call number.
func (s *Sorter) SortByColumn(t Table, column string) (Table, error) {
	out, _, err := s.Sort(t, column)
	return out, err
}

// Sort is SortByColumn that also reports keying statistics.
func (s *Sorter) Sort(t Table, column string) (Table, Stats, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return Table{}, Stats{}, err
	}

	src := t.Clone()
	stats := Stats{Rows: len(src.Rows)}

	keyed := make([]keyedRow, len(src.Rows))
	for i, r := range src.Rows {
		if idx >= len(r) {
			stats.ShortRows++
		}
		normalized := s.keyer.Normalize(r.Field(idx))
		key := normalized
		if c, ok := callnumber.Parse(normalized); ok {
			key = c.Key()
			stats.Parsed++
		} else {
			stats.Fallback++
		}
		keyed[i] = keyedRow{key: key, row: r}
	}

	slices.SortStableFunc(keyed, func(a, b keyedRow) int {
		return strings.Compare(a.key, b.key)
	})

	for i, kr := range keyed {
		src.Rows[i] = kr.row
	}
	return src, stats, nil
}
