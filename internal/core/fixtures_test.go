package core

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schemas shaped like the call-center tables, registered under test keys.
var (
	testReport = Schema{
		Key:   "test_report",
		Label: "Report",
		Columns: []Column{
			{Header: "no_laporan", Name: "no_laporan"},
			{Header: "waktu_lapor", Name: "waktu_lapor", Kind: KindTimestamp},
			{Header: "deskripsi", Name: "deskripsi"},
			{Header: "status", Name: "status"},
		},
		TimeColumn: "waktu_lapor",
		StatusBuckets: []StatusBucket{
			{Label: "Selesai", Value: "selesai", Match: MatchExact},
			{Label: "Proses", Value: "proses", Match: MatchContains},
		},
		Breakdowns: []string{"deskripsi"},
	}

	testLog = Schema{
		Key:   "test_log",
		Label: "Log",
		Columns: []Column{
			{Header: "no.laporan", Aliases: []string{"no_laporan"}, Name: "no_laporan"},
			{Header: "no.tiket_dinas", Aliases: []string{"no_tiket_dinas"}, Name: "no_tiket_dinas"},
			{Header: "status", Name: "status"},
			{Header: "waktu_proses", Name: "waktu_proses"},
			{Header: "catatan", Name: "catatan"},
		},
		IdentityKey: []string{"no_tiket_dinas", "status", "catatan"},
		TimeColumn:  "waktu_proses",
	}
)

var registerOnce sync.Once

func registerTestSchemas() {
	registerOnce.Do(func() {
		Register(testReport)
		Register(testLog)
	})
}

// fakeDB is an in-memory Pool. Committed rows are visible to later
// duplicate lookups; every other query fails.
type fakeDB struct {
	mu        sync.Mutex
	committed map[string][][]any
	copyErr   error
	begins    int
	lastTx    *fakeTx
}

func newFakeDB() *fakeDB {
	registerTestSchemas()
	return &fakeDB{committed: make(map[string][][]any)}
}

var errNotFaked = errors.New("query not supported by fake")

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.begins++
	d.lastTx = &fakeTx{db: d}
	return d.lastTx, nil
}

func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNotFaked
}

func (d *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errNotFaked
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{errNotFaked}
}

// fakeTx implements the pgx.Tx methods the writer uses. The embedded
// interface is nil, so any other call panics.
type fakeTx struct {
	pgx.Tx
	db *fakeDB

	table      string
	pending    [][]any
	lookups    int
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	tx.lookups++
	want := identityKey(args)
	for table, rows := range tx.db.committed {
		s, ok := Get(table)
		if !ok || !s.HasIdentity() {
			continue
		}
		idx := s.identityIndexes()
		for _, row := range rows {
			vals := make([]any, len(idx))
			for i, p := range idx {
				vals[i] = row[p]
			}
			if identityKey(vals) == want {
				return boolRow(true)
			}
		}
	}
	return boolRow(false)
}

func (tx *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if tx.db.copyErr != nil {
		return 0, tx.db.copyErr
	}
	tx.table = table[0]
	var n int64
	for src.Next() {
		v, err := src.Values()
		if err != nil {
			return n, err
		}
		tx.pending = append(tx.pending, v)
		n++
	}
	return n, src.Err()
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.committed[tx.table] = append(tx.db.committed[tx.table], tx.pending...)
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type boolRow bool

func (r boolRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = bool(r)
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
