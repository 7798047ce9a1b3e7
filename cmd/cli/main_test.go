package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/benpsk/stockview/internal/inventory"
	"github.com/benpsk/stockview/internal/inventory/inventorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, srv *inventorytest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("INVENTORY_API_URL", srv.URL)
	t.Setenv("INVENTORY_RESOURCE", inventorytest.Resource)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"stockview"}, args...))
	return out.String(), err
}

func TestItemsList(t *testing.T) {
	srv := inventorytest.NewServer(inventory.Item{ID: 1, Name: "Apple", Price: 100, Stock: 5})
	defer srv.Close()

	out, err := runCLI(t, srv, "items", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID  NAME")
	assert.Regexp(t, `1\s+Apple\s+100\s+5`, out)
	assert.Equal(t, 1, srv.Calls("list"))
}

func TestItemsAddPrintsRefreshedCollection(t *testing.T) {
	srv := inventorytest.NewServer()
	defer srv.Close()

	out, err := runCLI(t, srv, "items", "add", "--name", "Pear", "--price", "200", "--stock", "10")
	require.NoError(t, err)
	assert.Regexp(t, `1\s+Pear\s+200\s+10`, out)
	assert.Equal(t, 1, srv.Calls("list"))
}

func TestItemsAddRejected(t *testing.T) {
	srv := inventorytest.NewServer()
	defer srv.Close()
	srv.FailWith("add", 500)

	_, err := runCLI(t, srv, "items", "add", "--name", "Pear", "--price", "200", "--stock", "10")
	require.ErrorIs(t, err, inventory.ErrServerRejected)
	assert.Zero(t, srv.Calls("list"))
}

func TestItemsAddInvalidInput(t *testing.T) {
	srv := inventorytest.NewServer()
	defer srv.Close()

	_, err := runCLI(t, srv, "items", "add", "--name", "Pear", "--price", "cheap", "--stock", "10")
	require.ErrorIs(t, err, inventory.ErrInvalidInput)
	assert.Zero(t, srv.Calls("add"))
}

func TestItemsDelete(t *testing.T) {
	srv := inventorytest.NewServer(
		inventory.Item{ID: 1, Name: "Apple", Price: 100, Stock: 5},
		inventory.Item{ID: 3, Name: "Grape", Price: 300, Stock: 2},
	)
	defer srv.Close()

	out, err := runCLI(t, srv, "items", "delete", "--id", "3")
	require.NoError(t, err)
	assert.NotContains(t, out, "Grape")
	require.Len(t, srv.Payloads("delete"), 1)
	assert.Equal(t, float64(3), srv.Payloads("delete")[0]["id"])
}

func TestMigrationsFS(t *testing.T) {
	t.Parallel()

	fsys, err := migrationsFS("")
	require.NoError(t, err)
	_, err = fsys.Open("0001_create_inventory_mutations.sql")
	assert.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_x.sql"), []byte("select 1;"), 0o644))
	fsys, err = migrationsFS(dir)
	require.NoError(t, err)
	_, err = fsys.Open("0001_x.sql")
	assert.NoError(t, err)

	_, err = migrationsFS(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = migrationsFS(filepath.Join(dir, "0001_x.sql"))
	assert.Error(t, err)
}
