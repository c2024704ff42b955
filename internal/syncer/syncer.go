// Package syncer reconciles each rendered dataset against the backend using
// a stale-while-revalidate cycle: render the cached copy instantly, fetch
// the remote truth in the background, redraw only when a cheap comparison
// says the view actually differs, and refresh the cache unconditionally.
package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mpetrenko/leadglass/internal/backend"
	"github.com/mpetrenko/leadglass/internal/cache"
	"github.com/mpetrenko/leadglass/internal/lead"
	"github.com/mpetrenko/leadglass/internal/state"
)

// DefaultReadyTimeout bounds how long one sync invocation waits for the
// backend to become reachable before giving up.
const DefaultReadyTimeout = 5 * time.Second

// binding ties one dataset variant to its transform, change check, and
// render sink. The bindings are built once at construction; Sync dispatches
// over them instead of switching on strings at call sites.
type binding[T any] struct {
	kind      state.Dataset
	transform func([]lead.Record) []T
	changed   func(prev, next []T) bool
	rendered  func() ([]T, state.Meta)
	render    func([]T, state.Source)
}

// Controller drives the sync cycle for all three datasets.
type Controller struct {
	client       backend.Store
	cache        *cache.Store
	store        *state.Store
	maxAge       time.Duration
	readyTimeout time.Duration
	log          *zap.Logger

	results  binding[lead.Record]
	history  binding[lead.TaskAggregate]
	contacts binding[lead.Record]
}

// New builds a Controller. maxAge <= 0 falls back to the cache default; a
// nil logger is replaced with a no-op one.
func New(client backend.Store, cacheStore *cache.Store, store *state.Store, maxAge time.Duration, log *zap.Logger) *Controller {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		client:       client,
		cache:        cacheStore,
		store:        store,
		maxAge:       maxAge,
		readyTimeout: DefaultReadyTimeout,
		log:          log,
	}
	c.results = binding[lead.Record]{
		kind:      state.Results,
		transform: func(records []lead.Record) []lead.Record { return records },
		changed:   lead.Changed,
		rendered:  store.Results,
		render:    store.SetResults,
	}
	c.history = binding[lead.TaskAggregate]{
		kind:      state.History,
		transform: lead.GroupByTask,
		changed:   lead.HistoryChanged,
		rendered:  store.History,
		render:    store.SetHistory,
	}
	c.contacts = binding[lead.Record]{
		kind:      state.Contacts,
		transform: lead.WithEmail,
		changed:   lead.ContactsChanged,
		rendered:  store.Contacts,
		render:    store.SetContacts,
	}
	return c
}

// Sync runs one cache-then-remote cycle for the dataset. It never returns
// an error: failures are terminal for the invocation, logged, and reflected
// in the state store. Overlapping invocations for the same dataset are not
// de-duplicated; the last one to finish wins the render and the cache write.
func (c *Controller) Sync(ctx context.Context, d state.Dataset) {
	switch d {
	case state.History:
		sync(ctx, c, c.history)
	case state.Contacts:
		sync(ctx, c, c.contacts)
	default:
		sync(ctx, c, c.results)
	}
}

// SyncAll runs the cycle for every dataset, sequentially. The shared fetch
// is not coalesced; each dataset keeps its independent cycle.
func (c *Controller) SyncAll(ctx context.Context) {
	for _, d := range []state.Dataset{state.Results, state.History, state.Contacts} {
		c.Sync(ctx, d)
	}
}

// InvalidateAll drops every dataset's cache entry. Called after a mutation
// so the next visit runs a full fetch-compare cycle. The three removals are
// independent, not atomic.
func (c *Controller) InvalidateAll() {
	for _, d := range []state.Dataset{state.Results, state.History, state.Contacts} {
		c.cache.Invalidate(d.Key())
	}
}

func sync[T any](ctx context.Context, c *Controller, b binding[T]) {
	log := c.log.With(zap.String("dataset", b.kind.String()), zap.String("sync_id", uuid.NewString()))

	// Cache first, no network involved. A hit renders immediately so the
	// user sees data while the fetch runs.
	var cached []T
	if c.cache.Read(b.kind.Key(), c.maxAge, &cached) && len(cached) > 0 {
		b.render(cached, state.SourceCache)
		log.Debug("rendered from cache", zap.Int("records", len(cached)))
	}

	readyCtx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	err := c.client.Ready(readyCtx)
	cancel()
	if err != nil {
		c.failSync(b.kind, log, err)
		return
	}

	records, err := c.client.ListResults(ctx)
	if err != nil {
		c.failSync(b.kind, log, err)
		return
	}
	next := b.transform(records)

	prev, _ := b.rendered()
	if b.changed(prev, next) {
		b.render(next, state.SourceRemote)
		log.Debug("rendered from remote", zap.Int("records", len(next)))
	} else {
		log.Debug("no visible change, render skipped")
	}

	// Cache freshness tracks remote reality even when the UI was not
	// disturbed.
	c.cache.Write(b.kind.Key(), next)
}

// failSync ends the invocation: log, leave any rendered data standing, and
// record the error so the UI can show a placeholder when it has nothing
// else. No retry; the next navigation starts a fresh cycle.
func (c *Controller) failSync(d state.Dataset, log *zap.Logger, err error) {
	log.Warn("sync failed", zap.Error(err))
	c.store.SetError(d, err)
}
