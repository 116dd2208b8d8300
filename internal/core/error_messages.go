package core

// Error codes shown to operators. Users quote the code; the log carries the
// technical error under the same request ID.
//
//	IMP001  upload lacks a column the table needs
//	IMP002  file is not readable CSV
//	IMP003  no file in the request
//	IMP004  file larger than the upload limit
//	IMP005  upload rejected by a uniqueness rule, nothing saved
//	TBL002  table key not configured
//	FLT001  report or search parameters invalid
//	AUTH001 wrong username or password
//	AUTH002 session missing or expired
//	DB004   database unreachable
//	DB005   connection interrupted
//	DB006   operation timed out
//	REQ001  request cancelled by the client
//	ERR000  anything else; check the log

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage is what the UI shows for a failed operation.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// Auth failures are defined here so the web layer can map them without
// core importing the auth package.
var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrBadCredentials  = errors.New("invalid credentials")
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file too large")
)

var (
	msgSchemaMismatch = UserMessage{
		Message: "The file is missing columns this table needs",
		Action:  "Export the file again with every column of the template",
		Code:    "IMP001",
	}
	msgInvalidCSV = UserMessage{
		Message: "The file is not a valid CSV",
		Action:  "Save the sheet as comma-separated values and upload again",
		Code:    "IMP002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Choose a CSV file to upload",
		Code:    "IMP003",
	}
	msgFileTooLarge = UserMessage{
		Message: "The file is larger than the upload limit",
		Action:  "Split the export into smaller files",
		Code:    "IMP004",
	}
	msgDuplicateBatch = UserMessage{
		Message: "The upload contains a record that already exists; nothing was saved",
		Action:  "Remove reports that were imported before and upload again",
		Code:    "IMP005",
	}
	msgUnknownSchema = UserMessage{
		Message: "Unknown table",
		Action:  "Pick laporan, tiket_dinas or log_dinas",
		Code:    "TBL002",
	}
	msgInvalidFilter = UserMessage{
		Message: "The filter is not valid",
		Action:  "Check the dates and search text",
		Code:    "FLT001",
	}
	msgBadCredentials = UserMessage{
		Message: "Wrong username or password",
		Action:  "Try again",
		Code:    "AUTH001",
	}
	msgUnauthenticated = UserMessage{
		Message: "Your session has ended",
		Action:  "Sign in again",
		Code:    "AUTH002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or a narrower date range",
		Code:    "DB006",
	}
)

// sentinelMessages are checked with errors.Is before any text matching.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrSchemaMismatch, msgSchemaMismatch},
	{ErrInvalidCSV, msgInvalidCSV},
	{ErrNoFile, msgNoFile},
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrDuplicateBatch, msgDuplicateBatch},
	{ErrUnknownSchema, msgUnknownSchema},
	{ErrInvalidFilter, msgInvalidFilter},
	{ErrBadCredentials, msgBadCredentials},
	{ErrUnauthenticated, msgUnauthenticated},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPatterns catch driver errors that carry no sentinel.
// First match wins; matching is case-insensitive.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"duplicate key", msgDuplicateBatch},
	{"violates unique", msgDuplicateBatch},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", msgTimeout},
	{"invalid csv", msgInvalidCSV},
	{"unknown table", msgUnknownSchema},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to the message shown to users.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			msg := s.msg
			var mismatch *SchemaMismatchError
			if errors.As(err, &mismatch) {
				msg.Message = fmt.Sprintf("%s: %s", msg.Message, strings.Join(mismatch.Missing, ", "))
			}
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
