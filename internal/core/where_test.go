package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder_Empty(t *testing.T) {
	where, args := NewWhereBuilder().Build()
	assert.Equal(t, "", where)
	assert.Nil(t, args)
}

func TestWhereBuilder_Numbering(t *testing.T) {
	wb := NewWhereBuilder()
	wb.Add(`"dinas"`, "DLH")
	wb.AddExpr(`lower("status") = ANY(%s)`, []string{"aktif"})
	wb.AddRaw(`"x" IS NOT NULL`)

	where, args := wb.Build()
	assert.Equal(t, ` WHERE "dinas" = $1 AND lower("status") = ANY($2) AND "x" IS NOT NULL`, where)
	assert.Equal(t, []any{"DLH", []string{"aktif"}}, args)
	assert.Equal(t, 3, wb.NextArgIndex())
}

func TestWhereBuilder_ContainsAnySharesOnePlaceholder(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddContainsAny([]string{"a", "b"}, "term")

	where, args := wb.Build()
	assert.Equal(t, " WHERE (a ILIKE $1 OR b ILIKE $1)", where)
	assert.Equal(t, []any{"%term%"}, args)
}

func TestWhereBuilder_RangeAny(t *testing.T) {
	from := day(2023, 1, 1)
	to := day(2023, 2, 1)

	wb := NewWhereBuilder()
	wb.AddRangeAny([]string{"x", "y"}, from, to)

	where, args := wb.Build()
	assert.Equal(t, " WHERE ((x >= $1 AND x < $2) OR (y >= $1 AND y < $2))", where)
	assert.Equal(t, []any{from, to}, args)
}

func TestDateRangeBounds(t *testing.T) {
	r := DateRange{From: time.Date(2023, 1, 1, 15, 0, 0, 0, time.UTC), To: day(2023, 1, 31)}
	start, end := r.bounds()
	assert.Equal(t, day(2023, 1, 1), start)
	assert.Equal(t, day(2023, 2, 1), end, "To covers its whole day")

	open := DateRange{To: day(2023, 1, 31)}
	assert.True(t, open.Set())
	start, _ = open.bounds()
	assert.Equal(t, 1, start.Year())

	assert.False(t, DateRange{}.Set())
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"laporan"`, quoteIdentifier("laporan"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
