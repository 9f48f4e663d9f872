// Package tableio reads tables from delimited text or spreadsheets and
// writes them back out. Field values pass through byte for byte.
package tableio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/locsort/internal/table"
)

// ErrEmptySource is returned when a source has no header row.
var ErrEmptySource = errors.New("empty file: no header row")

// ErrUnsupportedFormat is returned for file extensions with no reader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies a table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks a format from a file name's extension. Names with no
// extension are treated as CSV.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadOptions controls Read.
type ReadOptions struct {
	Format Format
	// Sheet selects a worksheet for spreadsheet sources; empty means the
	// first sheet.
	Sheet string
}

// Read decodes a whole table from r.
func Read(r io.Reader, opts ReadOptions) (table.Table, error) {
	switch opts.Format {
	case FormatCSV, "":
		return readDelimited(r, ',')
	case FormatTSV:
		return readDelimited(r, '\t')
	case FormatXLSX:
		return readXLSX(r, opts.Sheet)
	default:
		return table.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}

// Write encodes t to w: header first, then rows in order.
func Write(w io.Writer, f Format, t table.Table) error {
	switch f {
	case FormatCSV, "":
		return writeDelimited(w, ',', t)
	case FormatTSV:
		return writeDelimited(w, '\t', t)
	case FormatXLSX:
		return writeXLSX(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// ReadFile opens path and reads it with the format implied by its name.
func ReadFile(path, sheet string) (table.Table, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return table.Table{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, ReadOptions{Format: format, Sheet: sheet})
	if err != nil {
		return table.Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// WriteFile writes t to path in the format implied by its name.
func WriteFile(path string, t table.Table) error {
	format, err := FormatFromName(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Write(f, format, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
