package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sidoarjo/callcenter/internal/core"
	_ "github.com/sidoarjo/callcenter/internal/core/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	sql []string
	err error
}

func (e *execRecorder) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	e.sql = append(e.sql, sql)
	return pgconn.CommandTag{}, e.err
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := Select([]string{"log_dinas"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "log_dinas", some[0].Key)

	_, err = Select([]string{"sfdc_customers"})
	assert.ErrorIs(t, err, core.ErrUnknownSchema)
}

func TestReset(t *testing.T) {
	schemas, err := Select([]string{"laporan", "tiket_dinas"})
	require.NoError(t, err)

	db := &execRecorder{}
	require.NoError(t, Reset(context.Background(), db, schemas))
	assert.Equal(t, []string{`TRUNCATE TABLE "laporan", "tiket_dinas" RESTART IDENTITY`}, db.sql)

	db = &execRecorder{err: errors.New("permission denied")}
	assert.ErrorContains(t, Reset(context.Background(), db, schemas), "permission denied")

	db = &execRecorder{}
	require.NoError(t, Reset(context.Background(), db, nil))
	assert.Empty(t, db.sql)
}

func TestResetSQL_QuotesNames(t *testing.T) {
	got := resetSQL([]core.Schema{{Key: `odd"name`}, {Key: "log_dinas"}})
	assert.Equal(t, `TRUNCATE TABLE "odd""name", "log_dinas" RESTART IDENTITY`, got)
}
