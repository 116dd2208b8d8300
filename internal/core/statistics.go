package core

// statistics.go builds the per-table report: bucket counts, status and
// breakdown distributions, and a daily trend. Every filter value is bound.

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// statusExpr is the normalized status used for filtering and bucketing.
const statusExpr = `lower(btrim("status"))`

// Statistics is the report for one schema under a filter.
type Statistics struct {
	Schema     string        `json:"schema"`
	Label      string        `json:"label"`
	Total      int64         `json:"total"`
	Buckets    []Point       `json:"buckets"`
	Status     ChartSeries   `json:"status"`
	Breakdowns []ChartSeries `json:"breakdowns"`
	Trend      ChartSeries   `json:"trend"`
}

// Empty reports whether the filter matched nothing.
func (s *Statistics) Empty() bool {
	return s.Total == 0
}

// Statistics computes the report for one schema.
func (s *Service) Statistics(ctx context.Context, f StatsFilter) (*Statistics, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	schema, err := Lookup(f.Schema)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{Schema: schema.Key, Label: schema.Label}

	query, args := bucketQuery(schema, f)
	dest := make([]any, 1+len(schema.StatusBuckets))
	counts := make([]int64, len(dest))
	for i := range dest {
		dest[i] = &counts[i]
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return nil, fmt.Errorf("count %s: %w", schema.Key, err)
	}
	stats.Total = counts[0]
	stats.Buckets = make([]Point, len(schema.StatusBuckets))
	for i, b := range schema.StatusBuckets {
		stats.Buckets[i] = Point{Label: b.Label, Value: counts[i+1]}
	}

	points, err := queryPoints(ctx, s.pool, distributionQuery(schema, f, statusExpr))
	if err != nil {
		return nil, fmt.Errorf("status distribution %s: %w", schema.Key, err)
	}
	stats.Status = ChartSeries{Title: "Distribusi Status " + schema.Label, Kind: ChartPie, Points: points}

	for _, col := range schema.Breakdowns {
		points, err := queryPoints(ctx, s.pool, distributionQuery(schema, f, quoteIdentifier(col)))
		if err != nil {
			return nil, fmt.Errorf("%s distribution %s: %w", col, schema.Key, err)
		}
		stats.Breakdowns = append(stats.Breakdowns, ChartSeries{
			Title:  "Distribusi " + columnTitle(col),
			Kind:   ChartBar,
			Points: points,
		})
	}

	points, err = queryPoints(ctx, s.pool, trendQuery(schema, f))
	if err != nil {
		return nil, fmt.Errorf("trend %s: %w", schema.Key, err)
	}
	stats.Trend = ChartSeries{Title: "Tren Jumlah Data", Kind: ChartLine, Points: points}

	return stats, nil
}

// boundQuery is SQL text with its arguments.
type boundQuery struct {
	sql  string
	args []any
}

// statsWhere applies the status and date filters.
func statsWhere(s Schema, f StatsFilter) *WhereBuilder {
	wb := NewWhereBuilder()
	if statuses := normalizeStatuses(f.Statuses); len(statuses) > 0 {
		wb.AddExpr(statusExpr+" = ANY(%s)", statuses)
	}
	if s.TimeColumn != "" {
		wb.addRange(s.timeExpr(), f.DateRange)
	}
	return wb
}

func normalizeStatuses(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// bucketQuery counts the total and every status bucket in one pass.
func bucketQuery(s Schema, f StatsFilter) (string, []any) {
	wb := statsWhere(s, f)
	where, args := wb.Build()
	next := wb.NextArgIndex()

	exprs := []string{"COUNT(*)"}
	for _, b := range s.StatusBuckets {
		value := b.Value
		op := "="
		if b.Match == MatchContains {
			value = "%" + b.Value + "%"
			op = "LIKE"
		}
		exprs = append(exprs, fmt.Sprintf("COUNT(*) FILTER (WHERE %s %s $%d)", statusExpr, op, next))
		args = append(args, value)
		next++
	}

	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(exprs, ", "), quoteIdentifier(s.Key), where), args
}

// distributionQuery counts rows per distinct value of expr.
func distributionQuery(s Schema, f StatsFilter, expr string) boundQuery {
	where, args := statsWhere(s, f).Build()
	return boundQuery{
		sql: fmt.Sprintf("SELECT COALESCE(%s, '') AS label, COUNT(*) AS n FROM %s%s GROUP BY 1 ORDER BY 2 DESC, 1",
			expr, quoteIdentifier(s.Key), where),
		args: args,
	}
}

// trendQuery counts rows per day of the time column.
func trendQuery(s Schema, f StatsFilter) boundQuery {
	wb := statsWhere(s, f)
	day := fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", s.timeExpr())
	wb.AddRaw(s.timeExpr() + " IS NOT NULL")
	where, args := wb.Build()
	return boundQuery{
		sql:  fmt.Sprintf("SELECT %s AS label, COUNT(*) AS n FROM %s%s GROUP BY 1 ORDER BY 1", day, quoteIdentifier(s.Key), where),
		args: args,
	}
}

// queryPoints runs a "label, count" query.
func queryPoints(ctx context.Context, db DBTX, q boundQuery) ([]Point, error) {
	rows, err := db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Point, error) {
		var p Point
		err := row.Scan(&p.Label, &p.Value)
		return p, err
	})
}

// queryGroupedPoints runs a "group, label, count" query.
func queryGroupedPoints(ctx context.Context, db DBTX, q boundQuery) ([]Point, error) {
	rows, err := db.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Point, error) {
		var p Point
		err := row.Scan(&p.Group, &p.Label, &p.Value)
		return p, err
	})
}

// columnTitle turns "tipe_laporan" into "Tipe Laporan".
func columnTitle(col string) string {
	words := strings.Fields(strings.ReplaceAll(col, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
