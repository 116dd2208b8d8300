package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sidoarjo/callcenter/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeImporter struct {
	calls []string
	fail  string
}

func (f *fakeImporter) Import(_ context.Context, schema, name string, r io.Reader) (*core.ImportResult, error) {
	if name == f.fail {
		return nil, core.ErrInvalidCSV
	}
	body, _ := io.ReadAll(r)
	f.calls = append(f.calls, schema+"/"+name)
	rows := strings.Count(string(body), "\n") - 1
	return &core.ImportResult{Schema: schema, FileName: name, Rows: rows, Inserted: rows}, nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "h\n1\n2\n")
	b := writeFile(t, dir, "b.csv", "h\n1\n")

	var out bytes.Buffer
	imp := &fakeImporter{}
	require.NoError(t, importFiles(context.Background(), imp, "laporan", []string{a, b}, &out))

	assert.Equal(t, []string{"laporan/a.csv", "laporan/b.csv"}, imp.calls)
	assert.Contains(t, out.String(), "a.csv: 2 rows, 2 inserted, 0 duplicates")
	assert.Contains(t, out.String(), "total: 3 inserted, 0 duplicates")
}

func TestImportFiles_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "h\n1\n")
	bad := writeFile(t, dir, "bad.csv", "x")
	c := writeFile(t, dir, "c.csv", "h\n1\n")

	imp := &fakeImporter{fail: "bad.csv"}
	err := importFiles(context.Background(), imp, "laporan", []string{a, bad, c}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMP002")
	assert.Equal(t, []string{"laporan/a.csv"}, imp.calls)

	err = importFiles(context.Background(), imp, "laporan", []string{filepath.Join(dir, "missing.csv")}, io.Discard)
	assert.True(t, errors.Is(err, os.ErrNotExist) || strings.Contains(err.Error(), "missing.csv"))
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("rahasia\n"))
	cmd.SetArgs([]string{"--env-file", "", "hash-password", "admin"})
	require.NoError(t, cmd.Execute())

	name, hash, ok := strings.Cut(strings.TrimSpace(out.String()), ":")
	require.True(t, ok)
	assert.Equal(t, "admin", name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("rahasia")))
}

func TestImportCommand_UnknownSchema(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--env-file", "", "import", "--schema", "nope", "x.csv"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, core.ErrUnknownSchema)
}

func TestResetCommand_RequiresConfirmation(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--env-file", "", "reset"})
	assert.ErrorContains(t, cmd.Execute(), "--yes")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	p := writeFile(t, t.TempDir(), "test.env", "CALLCENTER_TEST_VAR=loaded\n")
	t.Setenv("CALLCENTER_TEST_VAR", "before")
	require.NoError(t, loadEnvFile(p))
	assert.Equal(t, "loaded", os.Getenv("CALLCENTER_TEST_VAR"))
}
