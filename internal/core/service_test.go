package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Import: config.ImportConfig{Timeout: time.Minute, PreviewRows: 2},
		Search: config.SearchConfig{MaxResults: 100},
	}
}

func newTestService(t *testing.T, db *fakeDB) *Service {
	t.Helper()
	svc, err := NewService(db, testConfig())
	require.NoError(t, err)
	return svc
}

const logCSV = "No.Laporan,No.Tiket_Dinas,Status,Waktu_Proses,Catatan\n" +
	"L1,T1,aktif,2023-01-02,diterima\n" +
	"L1,T1,aktif,2023-01-02,diterima\n" +
	"L1,T1,selesai,2023-01-09,ditutup\n"

func TestImport_EndToEnd(t *testing.T) {
	db := newFakeDB()
	svc := newTestService(t, db)
	ctx := ContextWithUser(context.Background(), "admin")

	res, err := svc.Import(ctx, "test_log", "log.csv", strings.NewReader(logCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, "test_log", res.Schema)
	assert.Equal(t, "log.csv", res.FileName)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)

	again, err := svc.Import(ctx, "test_log", "log.csv", strings.NewReader(logCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Inserted)
	assert.Equal(t, 3, again.Duplicates)
	assert.NotEqual(t, res.ImportID, again.ImportID)
}

func TestImport_Errors(t *testing.T) {
	svc := newTestService(t, newFakeDB())
	ctx := context.Background()

	_, err := svc.Import(ctx, "unknown", "x.csv", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrUnknownSchema)

	_, err = svc.Import(ctx, "test_log", "x.csv", strings.NewReader("no.laporan\nL1\n"))
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = svc.Import(ctx, "test_log", "x.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalidCSV)
}

func TestImport_HeaderOnly(t *testing.T) {
	db := newFakeDB()
	svc := newTestService(t, db)

	res, err := svc.Import(context.Background(), "test_log", "x.csv",
		strings.NewReader("no.laporan,no.tiket_dinas,status,waktu_proses,catatan\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, res.Duplicates)
	assert.Zero(t, db.begins)
}

func TestPreview(t *testing.T) {
	svc := newTestService(t, newFakeDB())

	p, err := svc.Preview(context.Background(), "test_report",
		strings.NewReader("no_laporan,waktu_lapor,deskripsi,status\nL1,01/02/2023,,Baru\nL2,,d,Proses\nL3,,d,Baru\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, p.TotalRows)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, []string{"L1", "2023-02-01 00:00:00", "-", "Baru"}, p.Rows[0])
	assert.Equal(t, "", p.Rows[1][1], "absent timestamp renders empty")
	assert.Equal(t, testReport.ColumnNames(), p.Columns)
}

func TestNewService_NilConfig(t *testing.T) {
	_, err := NewService(newFakeDB(), nil)
	assert.Error(t, err)
}
