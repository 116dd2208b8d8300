package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logRows() []Row {
	return []Row{
		{"L1", "T1", "aktif", "2023-01-02", "diterima"},
		{"L9", "T1", "aktif", "2023-01-05", "diterima"}, // same identity, other report
		{"L1", "T1", "selesai", "2023-01-09", "ditutup"},
	}
}

func TestWrite_InBatchDuplicate(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(db)

	res, err := w.Write(context.Background(), testLog, logRows())
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Inserted: 2, Duplicates: 1}, res)
	assert.True(t, db.lastTx.committed)
	assert.Len(t, db.committed["test_log"], 2)
}

func TestWrite_ReimportSkipsEverything(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(db)
	ctx := context.Background()

	_, err := w.Write(ctx, testLog, logRows())
	require.NoError(t, err)

	res, err := w.Write(ctx, testLog, logRows())
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Inserted: 0, Duplicates: 3}, res)
	assert.Len(t, db.committed["test_log"], 2)
}

func TestWrite_AbsentNotesCompareEqual(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(db)

	rows := []Row{
		{"L1", "T1", "aktif", nil, nil},
		{"L1", "T1", "aktif", nil, nil},
	}
	res, err := w.Write(context.Background(), testLog, rows)
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Inserted: 1, Duplicates: 1}, res)
}

func TestWrite_ReportsInsertedUnconditionally(t *testing.T) {
	db := newFakeDB()
	w := NewWriter(db)

	when := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []Row{
		{"L1", when, "a", "Baru"},
		{"L1", when, "a", "Baru"},
	}
	res, err := w.Write(context.Background(), testReport, rows)
	require.NoError(t, err)
	assert.Equal(t, WriteResult{Inserted: 2}, res)
	assert.Zero(t, db.lastTx.lookups, "no duplicate lookups without an identity key")
}

func TestWrite_EmptyBatch(t *testing.T) {
	db := newFakeDB()
	res, err := NewWriter(db).Write(context.Background(), testLog, nil)
	require.NoError(t, err)
	assert.Equal(t, WriteResult{}, res)
	assert.Zero(t, db.begins, "no transaction for an empty batch")
}

func TestWrite_UniqueViolationRollsBack(t *testing.T) {
	db := newFakeDB()
	db.copyErr = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	_, err := NewWriter(db).Write(context.Background(), testReport, []Row{{"L1", nil, "a", "Baru"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateBatch)

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr, "driver error stays in the chain")
	assert.False(t, db.lastTx.committed)
	assert.True(t, db.lastTx.rolledBack)
	assert.Empty(t, db.committed["test_report"])
}

func TestWrite_OtherErrorRollsBack(t *testing.T) {
	db := newFakeDB()
	db.copyErr = errors.New("connection reset by peer")

	_, err := NewWriter(db).Write(context.Background(), testReport, []Row{{"L1", nil, "a", "Baru"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateBatch)
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, db.lastTx.rolledBack)
}

func TestLookupSQL(t *testing.T) {
	assert.Equal(t,
		`SELECT EXISTS (SELECT 1 FROM "test_log" WHERE "no_tiket_dinas" IS NOT DISTINCT FROM $1 AND "status" IS NOT DISTINCT FROM $2 AND "catatan" IS NOT DISTINCT FROM $3)`,
		testLog.lookupSQL())
}

func TestIdentityKey(t *testing.T) {
	assert.NotEqual(t, identityKey([]any{"a", nil}), identityKey([]any{"a", ""}))
	assert.NotEqual(t, identityKey([]any{"ab", "c"}), identityKey([]any{"a", "bc"}))
	assert.Equal(t, identityKey([]any{"a", nil}), identityKey([]any{"a", nil}))

	tests := []struct {
		name string
		a, b []any
	}{
		{"separator inside value", []any{"a\x1fb", "c"}, []any{"a", "b\x1fc"}},
		{"prefix-like value", []any{"1:a", "b"}, []any{"1", ":ab"}},
		{"absent marker as text", []any{"n;", nil}, []any{nil, "n;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, identityKey(tt.a), identityKey(tt.b))
		})
	}
}
