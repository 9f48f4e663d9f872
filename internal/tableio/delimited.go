package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/locsort/internal/table"
)

// readDelimited reads every record from r. Records may have any number of
// fields; short rows are handled by the sorter, not rejected here.
func readDelimited(r io.Reader, comma rune) (table.Table, error) {
	cr := csv.NewReader(NewBOMSkippingReader(r))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.Table{}, ErrEmptySource
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("invalid csv header: %w", err)
	}

	t := table.Table{Headers: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Table{}, fmt.Errorf("invalid csv: %w", err)
		}
		t.Rows = append(t.Rows, table.Row(rec))
	}
	return t, nil
}

func writeDelimited(w io.Writer, comma rune, t table.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
