package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root, a := newRootCommand()
	defer a.teardown()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("LOG_LEVEL", "error")
	return filepath.Join(dir, "warehouse.db")
}

func TestInitCreatesDatabase(t *testing.T) {
	db := setup(t)

	out, err := run(t, "init", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "database ready at "+db)
	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestProductAndAdjustCommands(t *testing.T) {
	db := setup(t)

	out, err := run(t, "product", "add", "--db", db, "--code", "A1", "--name", "Widget", "--price", "9.99", "--min-stock", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "added #1 A1 - Widget (stock: 0)")

	_, err = run(t, "product", "add", "--db", db, "--code", "A1", "--name", "Clone")
	assert.ErrorContains(t, err, "code")

	_, err = run(t, "product", "add", "--db", db, "--code", "B1", "--name", "Bad", "--price", "cheap")
	assert.ErrorContains(t, err, "invalid --price")

	out, err = run(t, "adjust", "--db", db, "A1", "in", "3", "--remark", "delivery")
	require.NoError(t, err)
	assert.Contains(t, out, "inbound 3: A1 - Widget (stock: 3)")

	_, err = run(t, "adjust", "--db", db, "A1", "out", "5")
	assert.EqualError(t, err, "insufficient stock: current 3, requested 5")

	_, err = run(t, "adjust", "--db", db, "A1", "sideways", "1")
	assert.Error(t, err)

	_, err = run(t, "adjust", "--db", db, "A1", "out", "many")
	assert.ErrorContains(t, err, "invalid count")

	out, err = run(t, "product", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Widget")
	assert.NotContains(t, lines[1], "LOW")

	_, err = run(t, "adjust", "--db", db, "A1", "out", "2")
	require.NoError(t, err)
	out, err = run(t, "product", "list", "--db", db, "--low")
	require.NoError(t, err)
	assert.Contains(t, out, "LOW")
}

func TestExportThenImportIntoFreshDatabase(t *testing.T) {
	db := setup(t)
	_, err := run(t, "product", "add", "--db", db, "--code", "A1", "--name", "Widget", "--quantity", "4")
	require.NoError(t, err)
	_, err = run(t, "adjust", "--db", db, "A1", "in", "1")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "stock.csv")
	out, err := run(t, "export", "stock", "--db", db, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1/1 (100%)")
	assert.Contains(t, out, "exported 1 products")

	records := filepath.Join(t.TempDir(), "records.csv")
	out, err = run(t, "export", "records", "--db", db, "--file", records)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 stock records")

	fresh := filepath.Join(t.TempDir(), "fresh.db")
	out, err = run(t, "import", "stock", "--db", fresh, "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 products")

	out, err = run(t, "product", "list", "--db", fresh)
	require.NoError(t, err)
	assert.Contains(t, out, "A1")
	assert.Contains(t, out, "5")
}

func TestImportMissingFileFails(t *testing.T) {
	db := setup(t)

	_, err := run(t, "import", "stock", "--db", db, "--file", filepath.Join(t.TempDir(), "none.csv"))
	assert.ErrorContains(t, err, "cannot open file")

	_, err = run(t, "import", "stock", "--db", db)
	assert.Error(t, err, "--file is required")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
