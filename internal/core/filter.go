package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DateRange is an optional day range. To is inclusive of the whole day.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to" validate:"omitempty,gtefield=From"`
}

// Set reports whether either bound is given.
func (d DateRange) Set() bool {
	return !d.From.IsZero() || !d.To.IsZero()
}

// bounds returns the half-open interval [start, end) covering the range.
// A missing bound is left open.
func (d DateRange) bounds() (start, end time.Time) {
	start = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !d.From.IsZero() {
		start = startOfDay(d.From)
	}
	if !d.To.IsZero() {
		end = startOfDay(d.To).AddDate(0, 0, 1)
	}
	return start, end
}

func startOfDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a form date ("2006-01-02"). Empty input is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidFilter, s)
	}
	return t, nil
}

// StatsFilter narrows the statistics of one schema.
type StatsFilter struct {
	Schema   string   `json:"schema" validate:"required"`
	Statuses []string `json:"statuses" validate:"max=20,dive,max=100"`
	DateRange
}

// DashboardFilter selects the period of the dashboard's top-10 charts:
// a calendar year, a date range, or everything when both are empty.
type DashboardFilter struct {
	Year int `json:"year" validate:"omitempty,min=1900,max=9999"`
	DateRange
}

// period returns the range the top-10 charts use.
func (f DashboardFilter) period() DateRange {
	if f.Year != 0 {
		return DateRange{
			From: time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	return f.DateRange
}

// SearchFilter is a free-text search over joined records.
type SearchFilter struct {
	Term string `json:"term" validate:"max=200"`
	DateRange
}

// validateFilter runs struct validation and wraps failures in ErrInvalidFilter.
func validateFilter(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return nil
}

// addRange restricts expr to the range when it is set.
func (wb *WhereBuilder) addRange(expr string, r DateRange) {
	if !r.Set() {
		return
	}
	start, end := r.bounds()
	wb.AddRangeAny([]string{expr}, start, end)
}
