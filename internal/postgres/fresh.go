package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var resetStatements = []string{
	`drop schema if exists public cascade`,
	`create schema public`,
	`grant all on schema public to public`,
	`grant all on schema public to current_user`,
}

// ResetSchema drops and recreates the public schema, removing the journal
// and migration bookkeeping with it.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return InTx(ctx, pool, func(ctx context.Context) error {
		db := DBFromContext(ctx, pool)
		for _, stmt := range resetStatements {
			if _, err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("reset schema (%s): %w", stmt, err)
			}
		}
		return nil
	})
}
