package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ExportStatistics streams the rows matching a statistics filter as CSV.
// Returns the number of data rows written.
func (s *Service) ExportStatistics(ctx context.Context, f StatsFilter, w io.Writer) (int, error) {
	if err := validateFilter(f); err != nil {
		return 0, err
	}
	schema, err := Lookup(f.Schema)
	if err != nil {
		return 0, err
	}

	query, args := exportQuery(schema, f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("export %s: %w", schema.Key, err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(schema.ColumnNames()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	n := 0
	record := make([]string, len(schema.Columns))
	for rows.Next() {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		values, err := rows.Values()
		if err != nil {
			return n, fmt.Errorf("read row values: %w", err)
		}
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return n, fmt.Errorf("write row: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("export %s: %w", schema.Key, err)
	}

	cw.Flush()
	return n, cw.Error()
}

// exportQuery selects every schema column under the statistics filter,
// newest first.
func exportQuery(s Schema, f StatsFilter) (string, []any) {
	where, args := statsWhere(s, f).Build()
	query := fmt.Sprintf("SELECT %s FROM %s%s",
		strings.Join(quoteColumns(s.ColumnNames()), ", "), quoteIdentifier(s.Key), where)
	if s.TimeColumn != "" {
		query += " ORDER BY " + s.timeExpr() + " DESC NULLS LAST"
	}
	return query, args
}

// ExportSearch runs a search and writes the results as CSV.
func (s *Service) ExportSearch(ctx context.Context, f SearchFilter, w io.Writer) (int, error) {
	results, err := s.Search(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(results), WriteSearchCSV(w, results)
}

// WriteSearchCSV writes search results with a SearchColumns header.
func WriteSearchCSV(w io.Writer, results []SearchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SearchColumns); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
