package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// WriteResult counts what a write did.
type WriteResult struct {
	Inserted   int
	Duplicates int
}

// Writer persists normalized rows for one schema per call.
type Writer struct {
	db TxBeginner
}

// NewWriter creates a Writer.
func NewWriter(db TxBeginner) *Writer {
	return &Writer{db: db}
}

// Write inserts rows in a single transaction.
//
// Schemas with an identity key skip rows that already exist, either in the
// table or earlier in the same batch. Every remaining row is sent in one COPY.
// Any failure rolls back the whole batch: a uniqueness violation returns an
// error wrapping ErrDuplicateBatch, anything else is returned wrapped.
func (w *Writer) Write(ctx context.Context, s Schema, rows []Row) (WriteResult, error) {
	var result WriteResult
	if len(rows) == 0 {
		return result, nil
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	queued := rows
	if s.HasIdentity() {
		queued, result.Duplicates, err = filterDuplicates(ctx, tx, s, rows)
		if err != nil {
			return WriteResult{}, err
		}
	}

	if len(queued) > 0 {
		values := make([][]any, len(queued))
		for i, row := range queued {
			values[i] = row
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{s.Key}, s.ColumnNames(), pgx.CopyFromRows(values))
		if err != nil {
			return WriteResult{}, classifyWriteError(fmt.Errorf("insert into %s: %w", s.Key, err))
		}
		result.Inserted = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return WriteResult{}, classifyWriteError(fmt.Errorf("commit: %w", err))
	}

	return result, nil
}

// filterDuplicates drops rows whose identity key already exists.
func filterDuplicates(ctx context.Context, db DBTX, s Schema, rows []Row) ([]Row, int, error) {
	query := s.lookupSQL()
	idx := s.identityIndexes()
	seen := make(map[string]struct{}, len(rows))

	queued := make([]Row, 0, len(rows))
	duplicates := 0

	for _, row := range rows {
		args := make([]any, len(idx))
		for i, pos := range idx {
			args[i] = row[pos]
		}

		key := identityKey(args)
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}

		var exists bool
		if err := db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
			return nil, 0, fmt.Errorf("lookup existing %s: %w", s.Key, err)
		}
		seen[key] = struct{}{}
		if exists {
			duplicates++
			continue
		}

		queued = append(queued, row)
	}

	return queued, duplicates, nil
}

// identityKey flattens identity values into a map key. Each value is
// length-prefixed and absent values are written as "n;", so no two
// distinct tuples share a key.
func identityKey(values []any) string {
	var b strings.Builder
	for _, v := range values {
		var s string
		switch val := v.(type) {
		case nil:
			b.WriteString("n;")
			continue
		case string:
			s = val
		case time.Time:
			s = val.Format(time.RFC3339Nano)
		default:
			s = fmt.Sprint(val)
		}
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}

// classifyWriteError marks uniqueness violations with ErrDuplicateBatch.
func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", ErrDuplicateBatch, err)
	}
	return err
}
