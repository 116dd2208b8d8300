package core

import (
	"context"
	"fmt"
	"strings"
)

// TopN is how many values the dashboard's breakdown charts show.
const TopN = 10

// Dashboard is the landing page summary across every schema.
type Dashboard struct {
	GrandTotal     int64         `json:"grand_total"`
	Done           int64         `json:"done"`
	Totals         []Point       `json:"totals"`
	StatusByTable  []ChartSeries `json:"status_by_table"`
	CombinedStatus ChartSeries   `json:"combined_status"`
	Monthly        ChartSeries   `json:"monthly"`
	Trend          ChartSeries   `json:"trend"`
	Top            []ChartSeries `json:"top"`
}

// Empty reports whether no table holds any rows.
func (d *Dashboard) Empty() bool {
	return d.GrandTotal == 0
}

// Dashboard computes the summary. The filter only narrows the top-N charts.
func (s *Service) Dashboard(ctx context.Context, f DashboardFilter) (*Dashboard, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	schemas := All()
	d := &Dashboard{}
	if len(schemas) == 0 {
		return d, nil
	}

	totals, err := queryPoints(ctx, s.pool, totalsQuery(schemas))
	if err != nil {
		return nil, fmt.Errorf("table totals: %w", err)
	}
	d.Totals = totals
	for _, p := range totals {
		d.GrandTotal += p.Value
	}

	q := doneQuery(schemas)
	if err := s.pool.QueryRow(ctx, q.sql, q.args...).Scan(&d.Done); err != nil {
		return nil, fmt.Errorf("done total: %w", err)
	}

	for _, schema := range schemas {
		points, err := queryPoints(ctx, s.pool, boundQuery{
			sql: fmt.Sprintf(`SELECT COALESCE("status", '') AS label, COUNT(*) AS n FROM %s GROUP BY 1 ORDER BY 2 DESC, 1`,
				quoteIdentifier(schema.Key)),
		})
		if err != nil {
			return nil, fmt.Errorf("status %s: %w", schema.Key, err)
		}
		d.StatusByTable = append(d.StatusByTable, ChartSeries{
			Title:  "Distribusi Status " + schema.Label,
			Kind:   ChartPie,
			Points: points,
		})
	}

	combined, err := queryGroupedPoints(ctx, s.pool, combinedStatusQuery(schemas))
	if err != nil {
		return nil, fmt.Errorf("combined status: %w", err)
	}
	d.CombinedStatus = ChartSeries{Title: "Distribusi Status Gabungan", Kind: ChartPie, Points: combined}

	var monthly []Point
	if q := monthlyQuery(schemas); q.sql != "" {
		if monthly, err = queryGroupedPoints(ctx, s.pool, q); err != nil {
			return nil, fmt.Errorf("monthly counts: %w", err)
		}
	}
	d.Monthly = ChartSeries{Title: "Jumlah Data Masuk Tiap Bulan", Kind: ChartBar, Points: monthly}
	d.Trend = ChartSeries{Title: "Tren Jumlah Data per Bulan", Kind: ChartLine, Points: monthly}

	period := f.period()
	for _, schema := range schemas {
		for _, col := range schema.Breakdowns {
			points, err := queryPoints(ctx, s.pool, topQuery(schema, col, period))
			if err != nil {
				return nil, fmt.Errorf("top %s.%s: %w", schema.Key, col, err)
			}
			d.Top = append(d.Top, ChartSeries{
				Title:  fmt.Sprintf("Top %d %s", TopN, columnTitle(col)),
				Kind:   ChartPie,
				Points: points,
			})
		}
	}

	return d, nil
}

// totalsQuery counts every table, labelled with bound display names.
func totalsQuery(schemas []Schema) boundQuery {
	parts := make([]string, len(schemas))
	args := make([]any, len(schemas))
	for i, s := range schemas {
		parts[i] = fmt.Sprintf("SELECT $%d::text AS label, COUNT(*) AS n FROM %s", i+1, quoteIdentifier(s.Key))
		args[i] = s.Label
	}
	return boundQuery{sql: strings.Join(parts, " UNION ALL "), args: args}
}

// doneQuery counts rows of any table whose stored status is exactly StatusDone.
func doneQuery(schemas []Schema) boundQuery {
	parts := make([]string, len(schemas))
	for i, s := range schemas {
		parts[i] = fmt.Sprintf(`SELECT "status" FROM %s`, quoteIdentifier(s.Key))
	}
	return boundQuery{
		sql:  fmt.Sprintf(`SELECT COUNT(*) FROM (%s) AS all_status WHERE "status" = $1`, strings.Join(parts, " UNION ALL ")),
		args: []any{StatusDone},
	}
}

// combinedStatusQuery counts status per table in one series.
func combinedStatusQuery(schemas []Schema) boundQuery {
	parts := make([]string, len(schemas))
	args := make([]any, len(schemas))
	for i, s := range schemas {
		parts[i] = fmt.Sprintf(`SELECT $%d::text AS grp, COALESCE("status", '') AS label, COUNT(*) AS n FROM %s GROUP BY 2`,
			i+1, quoteIdentifier(s.Key))
		args[i] = s.Label
	}
	return boundQuery{sql: strings.Join(parts, " UNION ALL ") + " ORDER BY 1, 3 DESC", args: args}
}

// monthlyQuery counts rows per month of each table's time column.
// Returns an empty query when no schema has a time column.
func monthlyQuery(schemas []Schema) boundQuery {
	var parts []string
	var args []any
	for _, s := range schemas {
		if s.TimeColumn == "" {
			continue
		}
		args = append(args, s.Label)
		expr := s.timeExpr()
		parts = append(parts, fmt.Sprintf(
			"SELECT $%d::text AS grp, to_char(date_trunc('month', %s), 'YYYY-MM') AS label, COUNT(*) AS n FROM %s WHERE %s IS NOT NULL GROUP BY 2",
			len(args), expr, quoteIdentifier(s.Key), expr))
	}
	if len(parts) == 0 {
		return boundQuery{}
	}
	return boundQuery{sql: strings.Join(parts, " UNION ALL ") + " ORDER BY 2, 1", args: args}
}

// topQuery returns the TopN values of col, skipping the placeholder.
func topQuery(s Schema, col string, period DateRange) boundQuery {
	wb := NewWhereBuilder()
	wb.AddExpr(quoteIdentifier(col)+" <> %s", Placeholder)
	if s.TimeColumn != "" {
		wb.addRange(s.timeExpr(), period)
	}
	where, args := wb.Build()
	args = append(args, TopN)
	return boundQuery{
		sql: fmt.Sprintf("SELECT %s AS label, COUNT(*) AS n FROM %s%s GROUP BY 1 ORDER BY 2 DESC, 1 LIMIT $%d",
			quoteIdentifier(col), quoteIdentifier(s.Key), where, wb.NextArgIndex()),
		args: args,
	}
}
