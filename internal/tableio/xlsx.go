package tableio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/locsort/internal/table"
)

const defaultSheet = "Sheet1"

// readXLSX loads one worksheet. excelize omits trailing empty cells, so rows
// are often shorter than the header; that is left for the sorter to handle.
func readXLSX(r io.Reader, sheet string) (table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.Table{}, ErrEmptySource
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return table.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.Table{}, ErrEmptySource
	}

	t := table.Table{Headers: rows[0], Rows: make([]table.Row, 0, len(rows)-1)}
	for _, r := range rows[1:] {
		t.Rows = append(t.Rows, table.Row(r))
	}
	return t, nil
}

// writeXLSX writes every value as a string cell so identifiers such as
// barcodes keep their leading zeros.
func writeXLSX(w io.Writer, t table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheetRow(f, 1, t.Headers); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err := writeSheetRow(f, i+2, r); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(defaultSheet, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}
