package tables_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/sidoarjo/callcenter/internal/core"
	_ "github.com/sidoarjo/callcenter/internal/core/tables"
	"github.com/sidoarjo/callcenter/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// migratedPool connects to TEST_DATABASE_URL, migrates a fresh schema and
// points search_path at it.
func migratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	const schema = "it_core"

	conn, err := pgx.Connect(ctx, url)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE; CREATE SCHEMA "+schema)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	pc, err := database.PoolConfig(config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	pc.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	m, err := database.NewMigrator(pool)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())
	return pool
}

func integrationService(t *testing.T) (*core.Service, *pgxpool.Pool) {
	pool := migratedPool(t)
	svc, err := core.NewService(pool, &config.Config{
		Import: config.ImportConfig{Timeout: time.Minute, PreviewRows: 5},
		Search: config.SearchConfig{MaxResults: 100},
	})
	require.NoError(t, err)
	return svc, pool
}

// csvFor renders rows under the schema's full header; missing cells are empty.
func csvFor(t *testing.T, key string, rows ...map[string]string) *bytes.Buffer {
	t.Helper()
	s, err := core.Lookup(key)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Header
	}
	require.NoError(t, w.Write(header))
	for _, row := range rows {
		record := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			record[i] = row[c.Name]
		}
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return &buf
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	require.NoError(t, err)
	return n
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE laporan, tiket_dinas, log_dinas RESTART IDENTITY")
	require.NoError(t, err)
}

func TestImport_Postgres(t *testing.T) {
	svc, pool := integrationService(t)
	ctx := context.Background()

	t.Run("log entries deduplicate on ticket, status and notes", func(t *testing.T) {
		truncateAll(t, pool)
		logs := func() *bytes.Buffer {
			return csvFor(t, "log_dinas",
				map[string]string{"no_laporan": "L-1", "no_tiket_dinas": "T-1", "status": "aktif", "catatan": "diterima", "waktu_proses": "15/01/2023 09:00"},
				map[string]string{"no_laporan": "L-1", "no_tiket_dinas": "T-1", "status": "aktif", "catatan": "diterima", "waktu_proses": "15/01/2023 09:05"},
				map[string]string{"no_laporan": "L-1", "no_tiket_dinas": "T-1", "status": "selesai"},
			)
		}

		first, err := svc.Import(ctx, "log_dinas", "log.csv", logs())
		require.NoError(t, err)
		assert.Equal(t, 3, first.Rows)
		assert.Equal(t, 2, first.Inserted)
		assert.Equal(t, 1, first.Duplicates)

		second, err := svc.Import(ctx, "log_dinas", "log.csv", logs())
		require.NoError(t, err)
		assert.Equal(t, 0, second.Inserted)
		assert.Equal(t, 3, second.Duplicates)
		assert.Equal(t, 2, countRows(t, pool, "log_dinas"))

		var catatan string
		err = pool.QueryRow(ctx, "SELECT catatan FROM log_dinas WHERE status = 'selesai'").Scan(&catatan)
		require.NoError(t, err)
		assert.Equal(t, core.Placeholder, catatan, "absent identity value is stored as the placeholder")
	})

	t.Run("report re-import rolls back on unique report number", func(t *testing.T) {
		truncateAll(t, pool)
		reports := func() *bytes.Buffer {
			return csvFor(t, "laporan",
				map[string]string{"no_laporan": "L-1", "waktu_lapor": "2023-01-15 08:00:00", "status": "Baru"},
				map[string]string{"no_laporan": "L-2", "waktu_lapor": "not-a-date", "status": "Baru"},
			)
		}

		res, err := svc.Import(ctx, "laporan", "laporan.csv", reports())
		require.NoError(t, err)
		assert.Equal(t, 2, res.Inserted)

		_, err = svc.Import(ctx, "laporan", "laporan.csv", reports())
		assert.ErrorIs(t, err, core.ErrDuplicateBatch)
		assert.Equal(t, 2, countRows(t, pool, "laporan"))

		var stored *time.Time
		err = pool.QueryRow(ctx, "SELECT waktu_lapor FROM laporan WHERE no_laporan = 'L-2'").Scan(&stored)
		require.NoError(t, err)
		assert.Nil(t, stored, "unparseable date is stored as null")
	})

	t.Run("agency tickets are not deduplicated", func(t *testing.T) {
		truncateAll(t, pool)
		tickets := func() *bytes.Buffer {
			return csvFor(t, "tiket_dinas",
				map[string]string{"no_laporan": "L-1", "no_tiket_dinas": "T-1", "status": "aktif"},
			)
		}
		for i := 0; i < 2; i++ {
			res, err := svc.Import(ctx, "tiket_dinas", "tiket.csv", tickets())
			require.NoError(t, err)
			assert.Equal(t, 1, res.Inserted)
		}
		assert.Equal(t, 2, countRows(t, pool, "tiket_dinas"))
	})

	t.Run("header only", func(t *testing.T) {
		res, err := svc.Import(ctx, "log_dinas", "empty.csv", csvFor(t, "log_dinas"))
		require.NoError(t, err)
		assert.Zero(t, res.Inserted)
		assert.Zero(t, res.Duplicates)
	})
}

func TestSearch_Postgres(t *testing.T) {
	svc, pool := integrationService(t)
	ctx := context.Background()
	truncateAll(t, pool)

	_, err := svc.Import(ctx, "laporan", "laporan.csv", csvFor(t, "laporan",
		map[string]string{"no_laporan": "L-0115", "waktu_lapor": "2023-01-15 08:00:00", "status": "Selesai", "kecamatan": "Buduran"},
		map[string]string{"no_laporan": "L-0120", "waktu_lapor": "2023-01-20 10:00:00", "status": "Baru"},
		map[string]string{"no_laporan": "L-0310", "waktu_lapor": "2023-03-10 09:00:00", "status": "Selesai"},
		map[string]string{"no_laporan": "L-0201", "waktu_lapor": "2024-02-01 09:00:00", "status": "Baru"},
	))
	require.NoError(t, err)
	_, err = svc.Import(ctx, "tiket_dinas", "tiket.csv", csvFor(t, "tiket_dinas",
		map[string]string{"no_laporan": "L-0115", "no_tiket_dinas": "T-1", "dinas": "DPUBMSDA", "status": "selesai",
			"tiket_dibuat": "15/01/2023 09:00", "tiket_selesai": "17/01/2023 10:30"},
		map[string]string{"no_laporan": "L-0120", "no_tiket_dinas": "T-2", "dinas": "DLHK", "status": "aktif",
			"tiket_dibuat": "20/01/2023 11:00"},
	))
	require.NoError(t, err)
	_, err = svc.Import(ctx, "log_dinas", "log.csv", csvFor(t, "log_dinas",
		map[string]string{"no_laporan": "L-0115", "no_tiket_dinas": "T-1", "status": "selesai", "waktu_proses": "17/01/2023 10:30"},
	))
	require.NoError(t, err)

	t.Run("term and date range", func(t *testing.T) {
		results, err := svc.Search(ctx, core.SearchFilter{
			Term: "Selesai",
			DateRange: core.DateRange{
				From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		got := results[0]
		assert.Equal(t, "L-0115", got.NoLaporan)
		assert.Equal(t, "T-1", got.NoTiketDinas)
		assert.Equal(t, "2023-01-15 08:00:00", got.WaktuLapor)
		assert.Equal(t, "2 days, 2:30:00", got.Durasi)
		assert.Equal(t, core.StatusInProgress, got.StatusLaporan)
	})

	t.Run("latest timestamp after window is done", func(t *testing.T) {
		results, err := svc.Search(ctx, core.SearchFilter{Term: "L-0201"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, core.StatusDone, results[0].StatusLaporan)
		assert.Equal(t, core.Placeholder, results[0].Durasi)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		results, err := svc.Search(ctx, core.SearchFilter{Term: "%"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := svc.ExportSearch(ctx, core.SearchFilter{Term: "Buduran"}, &buf)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Contains(t, buf.String(), "L-0115")
	})

	t.Run("statistics and dashboard queries run", func(t *testing.T) {
		for _, key := range []string{"laporan", "tiket_dinas", "log_dinas"} {
			st, err := svc.Statistics(ctx, core.StatsFilter{
				Schema:    key,
				DateRange: core.DateRange{From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
			})
			require.NoError(t, err, key)
			assert.Positive(t, st.Total, key)
		}

		dash, err := svc.Dashboard(ctx, core.DashboardFilter{Year: 2023})
		require.NoError(t, err)
		assert.EqualValues(t, 7, dash.GrandTotal)
	})
}
