package core

// errors.go maps technical errors to messages people can act on. Each
// message carries a code that support can look up here.
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Column not found: the requested column is not in the header row
//	         Patterns: "column not found"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large               Patterns: "file too large", "request body too large"
//	FILE002 - Invalid CSV                  Patterns: "invalid csv"
//	FILE003 - Unsupported format           Patterns: "unsupported file format"
//	FILE004 - No file                      Patterns: "no file provided"
//	FILE005 - Empty file                   Patterns: "empty file"
//	FILE006 - Unreadable spreadsheet       Patterns: "failed to open excel", "read sheet"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Malformed request             Patterns: "invalid request"
//
// # Job Errors (JOB001-JOB099)
//
//	JOB001 - System busy                   Patterns: "too many concurrent sort jobs"
//	JOB002 - Request cancelled             Patterns: "context canceled"
//	JOB003 - Request timed out             Patterns: "context deadline exceeded"
//
// # History Database Errors (DB001-DB099)
//
//	DB001 - Connection refused             Patterns: "connection refused"
//	DB002 - Database busy                  Patterns: "database is locked", "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests            Patterns: "rate limit"
//
// # Default (ERR000)
//
// Anything unmatched. Check the server log for the original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is an error rendered for people rather than logs.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgColumnNotFound = UserMessage{
		Message: "The requested column is not in the file's header row",
		Action:  "Check the column name; it must match the header exactly, including case",
		Code:    "COL001",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller exports",
		Code:    "FILE001",
	}
	msgBadSpreadsheet = UserMessage{
		Message: "The spreadsheet could not be read",
		Action:  "Check the sheet name, or re-save the workbook as .xlsx",
		Code:    "FILE006",
	}
	msgDatabaseBusy = UserMessage{
		Message: "The history database is busy",
		Action:  "Please try again",
		Code:    "DB002",
	}
)

var errorPatterns = []errorPattern{
	{"column not found", msgColumnNotFound},

	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Check for unbalanced quotes in the file",
		Code:    "FILE002",
	}},
	{"unsupported file format", UserMessage{
		Message: "This file type is not supported",
		Action:  "Upload a .csv, .tsv or .xlsx file",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please choose a file to sort",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE005",
	}},
	{"failed to open excel", msgBadSpreadsheet},
	{"read sheet", msgBadSpreadsheet},

	{"invalid request", UserMessage{
		Message: "The request could not be read",
		Action:  "Check the submitted fields and try again",
		Code:    "REQ001",
	}},

	{"too many concurrent sort jobs", UserMessage{
		Message: "The sorter is busy with other files",
		Action:  "Please wait a moment and try again",
		Code:    "JOB001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "JOB002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Sorting took too long",
		Action:  "Try a smaller file or try again later",
		Code:    "JOB003",
	}},

	{"connection refused", UserMessage{
		Message: "Unable to connect to the history database",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{"database is locked", msgDatabaseBusy},
	{"timeout", msgDatabaseBusy},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError returns the first UserMessage whose pattern appears in err's
// text, or the ERR000 message. A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns
// the user text; Unwrap exposes the original for errors.Is/As and logs.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; it returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
