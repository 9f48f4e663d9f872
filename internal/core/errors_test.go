package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/locsort/internal/table"
	"github.com/JonMunkholm/locsort/internal/tableio"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"column not found", &table.ColumnNotFoundError{Column: "callnum"}, "COL001"},
		{"wrapped column not found", fmt.Errorf("sort: %w", &table.ColumnNotFoundError{Column: "x"}), "COL001"},
		{"file too large", errors.New("file too large: 200MB exceeds limit"), "FILE001"},
		{"http body limit", errors.New("http: request body too large"), "FILE001"},
		{"invalid csv", errors.New(`invalid csv: record on line 3: extraneous or missing " in quoted-field`), "FILE002"},
		{"unsupported format", fmt.Errorf("%w: %q", tableio.ErrUnsupportedFormat, ".pdf"), "FILE003"},
		{"empty source", tableio.ErrEmptySource, "FILE005"},
		{"missing sheet", errors.New(`read sheet "Holdings": sheet Holdings does not exist`), "FILE006"},
		{"bad request", errors.New("invalid request body: unexpected EOF"), "REQ001"},
		{"busy", ErrTooManyJobs, "JOB001"},
		{"cancelled", context.Canceled, "JOB002"},
		{"deadline before generic timeout", fmt.Errorf("read: %w (timeout)", context.DeadlineExceeded), "JOB003"},
		{"db connection", errors.New("dial tcp 127.0.0.1:5432: connection refused"), "DB001"},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), "DB002"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("COLUMN NOT FOUND"), "COL001"},
		{"unknown", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() message is empty")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&table.ColumnNotFoundError{Column: "callnum"})
	want := "The requested column is not in the file's header row (Code: COL001). " +
		"Check the column name; it must match the header exactly, including case"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error should not be user facing")
	}
	if !IsUserFacing(ErrTooManyJobs) {
		t.Error("ErrTooManyJobs should be user facing")
	}
	if IsUserFacing(errors.New("xyz internal")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	techErr := &table.ColumnNotFoundError{Column: "callnum"}
	userErr := NewUserError(techErr)

	if userErr.Error() != msgColumnNotFound.Message {
		t.Errorf("Error() = %q, want user message", userErr.Error())
	}
	var cnf *table.ColumnNotFoundError
	if !errors.As(userErr, &cnf) || cnf.Column != "callnum" {
		t.Error("Unwrap() should expose the original error")
	}
}
