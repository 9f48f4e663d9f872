// Package table holds the in-memory tabular model and the call-number
// column sort built on it.
package table

import "fmt"

// Row is one data record; its length need not match the header count.
type Row []string

// Table is a header row plus data rows in source order.
type Table struct {
	Headers []string
	Rows    []Row
}

// ColumnNotFoundError reports a column name with no exact header match.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %q", e.Column)
}

// ColumnIndex returns the position of the first header equal to name.
// Matching is exact and case-sensitive.
func (t Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Headers {
		if h == name {
			return i, nil
		}
	}
	return -1, &ColumnNotFoundError{Column: name}
}

// Field returns the value at idx, or "" when the row is too short.
func (r Row) Field(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

// Clone returns a deep copy so callers can reorder rows without aliasing
// the source.
func (t Table) Clone() Table {
	out := Table{
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}
