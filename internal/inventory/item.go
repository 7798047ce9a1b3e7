package inventory

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Item is one row of the remote collection. ID is assigned by the remote
// service and never changes.
type Item struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Stock int    `json:"stock"`
}

func (i Item) IDString() string {
	return strconv.FormatInt(i.ID, 10)
}

// NewItemInput is the payload for an add; the id is left to the server.
type NewItemInput struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Stock int    `json:"stock"`
}

// DeleteRequest is the body of a delete call. Only the id is sent unless
// the item was read back first, in which case the whole record is echoed.
type DeleteRequest struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Price *int    `json:"price,omitempty"`
	Stock *int    `json:"stock,omitempty"`
}

func DeleteByID(id int64) DeleteRequest {
	return DeleteRequest{ID: id}
}

// DeleteResolved echoes item in full, zero values included.
func DeleteResolved(item Item) DeleteRequest {
	return DeleteRequest{ID: item.ID, Name: &item.Name, Price: &item.Price, Stock: &item.Stock}
}

// Client is the boundary to the remote inventory service.
type Client interface {
	FetchAll(ctx context.Context) ([]Item, error)
	FetchOne(ctx context.Context, id int64) (Item, error)
	Add(ctx context.Context, in NewItemInput) error
	Delete(ctx context.Context, req DeleteRequest) error
}

type MutationKind string

const (
	MutationAdd    MutationKind = "add"
	MutationDelete MutationKind = "delete"
)

// Phase follows a mutation through
// idle -> requesting -> {succeeded -> refetching -> idle, failed -> idle}.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRequesting Phase = "requesting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseRefetching Phase = "refetching"
	PhaseFailed     Phase = "failed"
)

type MutationResult struct {
	ID     uuid.UUID
	Kind   MutationKind
	ItemID int64
	// Payload is the body that was sent, or would have been had the
	// request been built. It is nil when input was rejected locally.
	Payload any
	Phase   Phase
	// Refetched is set once the triggered refetch has completed, whether or
	// not it succeeded.
	Refetched  bool
	RefetchErr error
	Err        error
}

func (r MutationResult) Succeeded() bool {
	return r.Err == nil
}

// JournalEntry is the durable record of one mutation outcome.
type JournalEntry struct {
	ID        uuid.UUID
	Kind      MutationKind
	ItemID    *int64
	Payload   any
	Outcome   Phase
	Status    int
	Error     string
	CreatedAt time.Time
}

type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)
}
