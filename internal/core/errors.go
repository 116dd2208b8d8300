package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSchema is returned for a schema key that is not registered.
	ErrUnknownSchema = errors.New("unknown table")

	// ErrSchemaMismatch is returned when an upload lacks required columns.
	ErrSchemaMismatch = errors.New("missing required column")

	// ErrDuplicateBatch is returned when the bulk insert hits a uniqueness
	// constraint. Nothing from the batch is committed.
	ErrDuplicateBatch = errors.New("duplicate key in batch")

	// ErrInvalidCSV is returned when the upload cannot be parsed.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrInvalidFilter is returned when report or search parameters fail validation.
	ErrInvalidFilter = errors.New("invalid filter")
)

// SchemaMismatchError names the columns an upload is missing.
type SchemaMismatchError struct {
	Schema  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s for %s: %s", ErrSchemaMismatch, e.Schema, strings.Join(e.Missing, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
