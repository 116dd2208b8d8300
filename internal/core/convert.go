package core

// convert.go turns raw spreadsheet cells into the values the importer binds.
//
// Exports from the call-center system are inconsistent: headers change case
// and spacing between months, timestamps arrive in ISO or day-first layouts,
// and free-text columns can be arbitrarily long. Conversions here never fail;
// a value that cannot be understood becomes absent.

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Placeholder is stored for missing text values.
const Placeholder = "-"

// MaxCellLength is the longest text value stored, in characters.
const MaxCellLength = 200

// Layouts are tried in order: ISO forms first, then slash and dash dates
// read day-first, then month-first for dates that cannot be day-first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1-2-2006 15:04:05",
	"1-2-2006 15:04",
	"1-2-2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// ParseTimestamp parses a spreadsheet timestamp.
// Returns false for empty or unrecognized input.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Placeholder {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeHeader lower-cases a header and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(CleanCell(h)), " ", "_")
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return s
}

// formatTimestamp renders a timestamp for display and export.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("2006-01-02 15:04:05")
}
