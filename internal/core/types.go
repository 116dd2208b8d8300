package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// TxBeginner starts a transaction. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool is everything the service needs from the database.
type Pool interface {
	DBTX
	TxBeginner
}

// ColumnKind is the storage kind of a schema column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindTimestamp
)

// Column maps one CSV header onto one database column.
type Column struct {
	Header  string     // Normalized CSV header: "no.laporan"
	Aliases []string   // Other accepted normalized headers
	Name    string     // Database column: "no_laporan"
	Kind    ColumnKind // KindTimestamp columns are parsed, everything else is text
}

// headers returns every normalized header this column accepts.
func (c Column) headers() []string {
	out := make([]string, 0, 1+len(c.Aliases))
	out = append(out, c.Header)
	return append(out, c.Aliases...)
}

// StatusMatch controls how a status bucket compares values.
type StatusMatch int

const (
	MatchExact StatusMatch = iota
	MatchContains
)

// StatusBucket is one counted status in the statistics view.
// Values are compared against the trimmed, lower-cased status column.
type StatusBucket struct {
	Label string
	Value string
	Match StatusMatch
}

// Schema describes one importable table. Everything that differs between
// tables lives here as data, so the importer, writer and reports never
// switch on table names.
type Schema struct {
	Key     string // Table name and URL key: "laporan"
	Label   string // Display name: "Laporan"
	Columns []Column

	// IdentityKey lists the database columns that identify a duplicate row.
	// Empty means rows are inserted unconditionally.
	IdentityKey []string

	// TimeColumn is the column reports filter and bucket by.
	TimeColumn string

	StatusBuckets []StatusBucket
	StatusOptions []string // Values offered by the status filter

	// Breakdowns are extra columns counted in statistics and top-10 charts.
	Breakdowns []string
}

// ColumnNames returns the database column names in insert order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// HasIdentity reports whether rows are checked for duplicates before insert.
func (s Schema) HasIdentity() bool {
	return len(s.IdentityKey) > 0
}

// ColumnIndex returns the position of a database column, or -1.
func (s Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// identityIndexes returns the row positions of the identity key columns.
func (s Schema) identityIndexes() []int {
	idx := make([]int, len(s.IdentityKey))
	for i, name := range s.IdentityKey {
		idx[i] = s.ColumnIndex(name)
	}
	return idx
}

// timeExpr returns a SQL expression yielding the time column as a timestamp.
// Text columns go through try_timestamp so unparseable values become NULL.
func (s Schema) timeExpr() string {
	col := quoteIdentifier(s.TimeColumn)
	if i := s.ColumnIndex(s.TimeColumn); i >= 0 && s.Columns[i].Kind == KindTimestamp {
		return col
	}
	return "try_timestamp(" + col + ")"
}

// lookupSQL returns the point lookup used to detect an existing duplicate.
// IS NOT DISTINCT FROM lets absent values compare equal.
func (s Schema) lookupSQL() string {
	conds := make([]string, len(s.IdentityKey))
	for i, col := range s.IdentityKey {
		conds[i] = fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", quoteIdentifier(col), i+1)
	}
	return fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)",
		quoteIdentifier(s.Key), strings.Join(conds, " AND "))
}

// validate checks internal consistency at registration time.
func (s Schema) validate() error {
	if s.Key == "" {
		return fmt.Errorf("schema key is empty")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schema %s has no columns", s.Key)
	}
	for _, name := range s.IdentityKey {
		if s.ColumnIndex(name) < 0 {
			return fmt.Errorf("schema %s: identity column %q not found", s.Key, name)
		}
	}
	if s.TimeColumn != "" && s.ColumnIndex(s.TimeColumn) < 0 {
		return fmt.Errorf("schema %s: time column %q not found", s.Key, s.TimeColumn)
	}
	for _, name := range s.Breakdowns {
		if s.ColumnIndex(name) < 0 {
			return fmt.Errorf("schema %s: breakdown column %q not found", s.Key, name)
		}
	}
	return nil
}

// Row is one normalized input row in schema column order.
// A nil element is the absent-value marker and is stored as NULL.
type Row []any

// ImportResult is what an import reports back to the caller.
type ImportResult struct {
	ImportID   string        `json:"import_id"`
	Schema     string        `json:"schema"`
	FileName   string        `json:"file_name"`
	Rows       int           `json:"rows"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	Duration   time.Duration `json:"-"`
}

// PreviewResult shows the normalized form of an upload without writing it.
type PreviewResult struct {
	Schema    string     `json:"schema"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// ChartKind tells the client how to draw a series.
type ChartKind string

const (
	ChartPie  ChartKind = "pie"
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// Point is one labelled value in a chart series.
type Point struct {
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	Value int64  `json:"value"`
}

// ChartSeries is chart data; drawing it is the client's job.
type ChartSeries struct {
	Title  string    `json:"title"`
	Kind   ChartKind `json:"kind"`
	Points []Point   `json:"points"`
}

// Empty reports whether the series has nothing to draw.
func (c ChartSeries) Empty() bool {
	return len(c.Points) == 0
}
