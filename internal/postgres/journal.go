package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benpsk/stockview/internal/inventory"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultJournalLimit = 50

// MutationJournal stores one row per add or delete attempt.
type MutationJournal struct {
	db DBTX
}

var _ inventory.Journal = (*MutationJournal)(nil)

func NewMutationJournal(pool *pgxpool.Pool) *MutationJournal {
	return &MutationJournal{db: pool}
}

func (j *MutationJournal) Record(ctx context.Context, entry inventory.JournalEntry) error {
	db := DBFromContext(ctx, j.db)

	var payload []byte
	if entry.Payload != nil {
		raw, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("encode mutation payload: %w", err)
		}
		payload = raw
	}

	_, err := db.Exec(ctx, `
		insert into inventory_mutations (id, kind, item_id, payload, outcome, status, error, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, string(entry.Kind), entry.ItemID, payload, string(entry.Outcome), entry.Status, entry.Error, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("record mutation %s: %w", entry.ID, err)
	}
	return nil
}

// Recent lists entries newest first.
func (j *MutationJournal) Recent(ctx context.Context, limit int) ([]inventory.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	db := DBFromContext(ctx, j.db)
	rows, err := db.Query(ctx, `
		select id, kind, item_id, payload, outcome, status, error, created_at
		from inventory_mutations
		order by created_at desc, id
		limit $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer rows.Close()

	entries := make([]inventory.JournalEntry, 0)
	for rows.Next() {
		var (
			entry   inventory.JournalEntry
			kind    string
			outcome string
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.ItemID, &payload, &outcome, &entry.Status, &entry.Error, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		entry.Kind = inventory.MutationKind(kind)
		entry.Outcome = inventory.Phase(outcome)
		if len(payload) > 0 {
			entry.Payload = json.RawMessage(payload)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}
	return entries, nil
}
