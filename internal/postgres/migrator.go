package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ErrMigrationDrift means an applied migration file was edited afterwards.
var ErrMigrationDrift = errors.New("applied migration changed on disk")

type Migration struct {
	Name      string
	Statement string
	Checksum  string
}

// Migrator applies .sql files in lexicographic order, one transaction per
// file, and records each in schema_migrations with its checksum.
type Migrator struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
}

func NewMigrator(pool *pgxpool.Pool, log logrus.FieldLogger) *Migrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Migrator{pool: pool, log: log.WithField("component", "migrator")}
}

// EnsureTable creates the bookkeeping table.
func (m *Migrator) EnsureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		create table if not exists schema_migrations (
			name text primary key,
			checksum text not null default '',
			applied_at timestamptz not null default now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// Pending lists migrations in fsys that have not been applied yet. It
// fails with ErrMigrationDrift when an applied file no longer matches.
func (m *Migrator) Pending(ctx context.Context, fsys fs.FS) ([]Migration, error) {
	all, err := ReadMigrations(fsys)
	if err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range all {
		checksum, ok := applied[mig.Name]
		if !ok {
			pending = append(pending, mig)
			continue
		}
		if checksum != "" && checksum != mig.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrMigrationDrift, mig.Name)
		}
	}
	return pending, nil
}

// Apply runs every pending migration and returns the names applied.
func (m *Migrator) Apply(ctx context.Context, fsys fs.FS) ([]string, error) {
	if err := m.EnsureTable(ctx); err != nil {
		return nil, err
	}
	pending, err := m.Pending(ctx, fsys)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, mig := range pending {
		if err := m.run(ctx, mig); err != nil {
			return names, err
		}
		m.log.WithField("migration", mig.Name).Info("applied")
		names = append(names, mig.Name)
	}
	return names, nil
}

// ReadMigrations loads the .sql files at the root of fsys, sorted by name.
func ReadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("migrations not found: %w", err)
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var out []Migration
	for _, name := range listSQLFiles(entries) {
		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		sum := sha256.Sum256(contents)
		out = append(out, Migration{
			Name:      name,
			Statement: strings.TrimSpace(string(contents)),
			Checksum:  hex.EncodeToString(sum[:]),
		})
	}
	return out, nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]string, error) {
	rows, err := m.pool.Query(ctx, `select name, checksum from schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, checksum string
		if err := rows.Scan(&name, &checksum); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		out[name] = checksum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return out, nil
}

func (m *Migrator) run(ctx context.Context, mig Migration) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", mig.Name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck - safe to ignore rollback errors

	if mig.Statement != "" {
		if _, err := tx.Exec(ctx, mig.Statement); err != nil {
			return fmt.Errorf("exec migration %s: %w", mig.Name, err)
		}
	}
	if err := recordMigration(ctx, tx, mig); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", mig.Name, err)
	}
	return nil
}

func recordMigration(ctx context.Context, tx pgx.Tx, mig Migration) error {
	_, err := tx.Exec(ctx, `insert into schema_migrations (name, checksum) values ($1, $2)`, mig.Name, mig.Checksum)
	if err != nil {
		return fmt.Errorf("record migration %s: %w", mig.Name, err)
	}
	return nil
}

func listSQLFiles(entries []fs.DirEntry) []string {
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files
}
