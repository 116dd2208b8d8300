package core

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// WhereBuilder assembles a WHERE clause with numbered placeholders.
// Values are always bound, never written into the SQL text.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// bind records a value and returns its placeholder.
func (wb *WhereBuilder) bind(v any) string {
	p := fmt.Sprintf("$%d", wb.argIndex)
	wb.args = append(wb.args, v)
	wb.argIndex++
	return p
}

// Add adds "column = value".
func (wb *WhereBuilder) Add(column string, value any) {
	wb.conditions = append(wb.conditions, column+" = "+wb.bind(value))
}

// AddExpr adds a condition whose single %s is replaced by the value's placeholder.
func (wb *WhereBuilder) AddExpr(expr string, value any) {
	wb.conditions = append(wb.conditions, fmt.Sprintf(expr, wb.bind(value)))
}

// AddRaw adds a condition with no bound values.
func (wb *WhereBuilder) AddRaw(expr string) {
	wb.conditions = append(wb.conditions, expr)
}

// AddContainsAny adds "(e1 ILIKE $n OR e2 ILIKE $n ...)" matching term anywhere.
func (wb *WhereBuilder) AddContainsAny(exprs []string, term string) {
	if len(exprs) == 0 {
		return
	}
	p := wb.bind("%" + term + "%")
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e + " ILIKE " + p
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// AddRangeAny adds a condition true when any expression falls in [from, to).
func (wb *WhereBuilder) AddRangeAny(exprs []string, from, to any) {
	if len(exprs) == 0 {
		return
	}
	pf := wb.bind(from)
	pt := wb.bind(to)
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = fmt.Sprintf("(%s >= %s AND %s < %s)", e, pf, e, pt)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// Build returns the clause (with leading " WHERE ") and its arguments.
// Returns "" and nil when no conditions were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the number of the next placeholder.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// quoteColumns quotes each column name.
func quoteColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdentifier(c)
	}
	return out
}
