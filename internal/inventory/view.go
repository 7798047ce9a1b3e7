package inventory

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/benpsk/stockview/internal/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const collectionKey = "collection"

type Options struct {
	// KeepOnLoadFailure preserves the last good collection when a load or
	// refetch fails. The default clears it.
	KeepOnLoadFailure bool
	// SerialMutations runs each mutation and its refetch to completion
	// before the next mutation starts.
	SerialMutations bool
	// ResolveBeforeDelete reads the full item before deleting it, for
	// services that expect the whole record echoed back.
	ResolveBeforeDelete bool
	Journal             Journal
	Logger              logrus.FieldLogger
	Now                 func() time.Time
}

// View owns the inventory page state and sequences every fetch and
// mutation against the remote collection.
type View struct {
	client              Client
	state               *Collection
	journal             Journal
	log                 logrus.FieldLogger
	keepOnLoadFailure   bool
	serialMutations     bool
	resolveBeforeDelete bool
	now                 func() time.Time

	loads     singleflight.Group
	mutations sync.Mutex
}

// OptionsFromConfig maps the INVENTORY_* settings onto view options.
func OptionsFromConfig(cfg config.InventoryConfig) Options {
	return Options{
		KeepOnLoadFailure:   cfg.LoadFailure == config.LoadFailureKeep,
		SerialMutations:     cfg.Mutations == config.MutationsSerial,
		ResolveBeforeDelete: cfg.ResolveBeforeDelete,
	}
}

func NewView(client Client, opts Options) *View {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &View{
		client:              client,
		state:               NewCollection(),
		journal:             opts.Journal,
		log:                 log.WithField("component", "inventory_view"),
		keepOnLoadFailure:   opts.KeepOnLoadFailure,
		serialMutations:     opts.SerialMutations,
		resolveBeforeDelete: opts.ResolveBeforeDelete,
		now:                 now,
	}
}

func (v *View) Collection() *Collection {
	return v.state
}

func (v *View) Items() []Item {
	return v.state.Items()
}

// Mount performs the initial load for a page view. Concurrent mounts share
// one in-flight fetch. The fetch is not cancelled when the caller goes away.
func (v *View) Mount(ctx context.Context) []Item {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = v.loads.Do(collectionKey, func() (any, error) {
		return nil, v.load(ctx, "mount")
	})
	return v.state.Items()
}

// Refresh re-reads the whole collection.
func (v *View) Refresh(ctx context.Context) error {
	return v.load(context.WithoutCancel(ctx), "refetch")
}

// SubmitForm maps the add form and runs the add flow. Input that cannot be
// mapped never reaches the service.
func (v *View) SubmitForm(ctx context.Context, form url.Values) MutationResult {
	in, err := ParseNewItemForm(form)
	if err != nil {
		res := v.begin(MutationAdd, 0)
		res.Err = err
		res = v.transition(res, PhaseFailed)
		v.log.WithFields(logrus.Fields{
			"mutation_id": res.ID,
			"op":          res.Kind,
			"error":       err,
		}).Warn("add form rejected")
		v.record(ctx, res)
		return res
	}
	return v.Add(ctx, in)
}

func (v *View) Add(ctx context.Context, in NewItemInput) MutationResult {
	res := v.begin(MutationAdd, 0)
	return v.run(ctx, res, func(ctx context.Context) (any, error) {
		return in, v.client.Add(ctx, in)
	})
}

// Delete removes the item with the given id. The id is the delete key; the
// full record is only read first when ResolveBeforeDelete is set.
func (v *View) Delete(ctx context.Context, id int64) MutationResult {
	res := v.begin(MutationDelete, id)
	return v.run(ctx, res, func(ctx context.Context) (any, error) {
		req := DeleteByID(id)
		if v.resolveBeforeDelete {
			resolved, err := v.client.FetchOne(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolve item %d: %w", id, err)
			}
			resolved.ID = id
			req = DeleteResolved(resolved)
		}
		return req, v.client.Delete(ctx, req)
	})
}

// Activity lists recent journal entries, newest first. Without a journal it
// returns nothing.
func (v *View) Activity(ctx context.Context, limit int) ([]JournalEntry, error) {
	if v.journal == nil {
		return nil, nil
	}
	return v.journal.Recent(ctx, limit)
}

func (v *View) JournalEnabled() bool {
	return v.journal != nil
}

func (v *View) run(ctx context.Context, res MutationResult, call func(context.Context) (any, error)) MutationResult {
	if v.serialMutations {
		v.mutations.Lock()
		defer v.mutations.Unlock()
	}
	ctx = context.WithoutCancel(ctx)

	res = v.transition(res, PhaseRequesting)
	payload, err := call(ctx)
	res.Payload = payload
	res.Err = err
	if err != nil {
		res = v.transition(res, PhaseFailed)
	} else {
		res = v.transition(res, PhaseSucceeded)
	}

	res = v.refreshAfter(ctx, res)
	v.record(ctx, res)
	return res
}

// refreshAfter is the only place a mutation triggers a refetch: exactly one
// after success, none after failure.
func (v *View) refreshAfter(ctx context.Context, res MutationResult) MutationResult {
	entry := v.log.WithFields(logrus.Fields{
		"mutation_id": res.ID,
		"op":          res.Kind,
		"item_id":     res.ItemID,
	})
	if res.Err != nil {
		entry.WithFields(logrus.Fields{
			"status": StatusOf(res.Err),
			"error":  res.Err,
		}).Errorf("%s failed", res.Kind)
		v.transition(res, PhaseIdle)
		return res
	}

	v.transition(res, PhaseRefetching)
	res.RefetchErr = v.load(ctx, "refetch")
	res.Refetched = true
	v.transition(res, PhaseIdle)
	return res
}

func (v *View) load(ctx context.Context, op string) error {
	items, err := v.client.FetchAll(ctx)
	if err != nil {
		entry := v.log.WithFields(logrus.Fields{
			"op":     op,
			"status": StatusOf(err),
			"error":  err,
		})
		if v.keepOnLoadFailure {
			entry.WithField("kept", v.state.Len()).Error("collection load failed, keeping last known state")
			return err
		}
		v.state.clear()
		entry.Error("collection load failed, cleared")
		return err
	}
	v.state.replace(items, v.now())
	v.log.WithFields(logrus.Fields{"op": op, "count": len(items)}).Debug("collection loaded")
	return nil
}

func (v *View) begin(kind MutationKind, itemID int64) MutationResult {
	return MutationResult{ID: uuid.New(), Kind: kind, ItemID: itemID, Phase: PhaseIdle}
}

// transition returns res in phase to; the returned copy records the
// outcome phase while idle is only logged.
func (v *View) transition(res MutationResult, to Phase) MutationResult {
	v.log.WithFields(logrus.Fields{
		"mutation_id": res.ID,
		"op":          res.Kind,
		"from":        res.Phase,
		"to":          to,
	}).Debug("mutation phase")
	if to != PhaseIdle && to != PhaseRefetching {
		res.Phase = to
	}
	return res
}

func (v *View) record(ctx context.Context, res MutationResult) {
	if v.journal == nil {
		return
	}
	entry := JournalEntry{
		ID:        res.ID,
		Kind:      res.Kind,
		Payload:   res.Payload,
		Outcome:   res.Phase,
		Status:    StatusOf(res.Err),
		CreatedAt: v.now(),
	}
	if res.ItemID != 0 {
		id := res.ItemID
		entry.ItemID = &id
	}
	if res.Err != nil {
		entry.Error = res.Err.Error()
	}
	if err := v.journal.Record(ctx, entry); err != nil {
		v.log.WithFields(logrus.Fields{
			"mutation_id": res.ID,
			"error":       err,
		}).Warn("journal record failed")
	}
}
