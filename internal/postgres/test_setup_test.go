package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/benpsk/stockview/db"
	"github.com/benpsk/stockview/internal/config"
	"github.com/benpsk/stockview/internal/testenv"
	"github.com/jackc/pgx/v5/pgxpool"
)

// integrationPool stays nil when no .env.test is found; integration tests
// skip themselves in that case.
var integrationPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if err := testenv.Load(); err != nil {
		if !errors.Is(err, testenv.ErrNoEnvFile) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(m.Run())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !cfg.Database.Enabled() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	unlock, err := testenv.LockIntegrationDB(ctx, pool, testenv.PostgresLockID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := NewMigrator(pool, nil).Apply(ctx, db.Migrations()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	integrationPool = pool
	code := m.Run()
	unlock()
	pool.Close()
	os.Exit(code)
}

func withTx(t *testing.T) (context.Context, func()) {
	t.Helper()
	if integrationPool == nil {
		t.Skip("no integration database configured (.env.test)")
	}

	ctx := context.Background()
	tx, err := integrationPool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	return WithDBTX(ctx, tx), func() {
		_ = tx.Rollback(ctx)
	}
}
