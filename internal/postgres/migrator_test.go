package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/benpsk/stockview/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrationsSortsAndChecksums(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte("select 2;\n")},
		"0001_first.sql":  {Data: []byte("  select 1;  ")},
		"README.md":       {Data: []byte("ignored")},
		"nested/0003.sql": {Data: []byte("select 3;")},
	}

	migrations, err := ReadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_first.sql", migrations[0].Name)
	assert.Equal(t, "select 1;", migrations[0].Statement)
	assert.Equal(t, "0002_second.sql", migrations[1].Name)
	assert.Len(t, migrations[0].Checksum, 64)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestBundledMigrationsAreReadable(t *testing.T) {
	t.Parallel()

	migrations, err := ReadMigrations(db.Migrations())
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "0001_create_inventory_mutations.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].Statement, "inventory_mutations")
}
