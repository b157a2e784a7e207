package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/projectsync/internal/logging"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// RemoteStore is the primary document store. Implementations report every
// transport, auth or quota failure as domain.ErrRemoteUnavailable.
type RemoteStore interface {
	Get(ctx context.Context, id string) (domain.Project, bool, error)
	List(ctx context.Context) ([]domain.Project, error)
	Put(ctx context.Context, id string, p domain.Project) error
	Delete(ctx context.Context, id string) error
}

// LocalCache mirrors the project collection on the local medium.
type LocalCache interface {
	ReadAll(ctx context.Context) ([]domain.Project, error)
	ReplaceAll(ctx context.Context, projects []domain.Project) error
	MergeUpsert(ctx context.Context, projects []domain.Project) error
	Prune(ctx context.Context, keep, alwaysKeep map[string]struct{}) error
	Get(ctx context.Context, id string) (domain.Project, bool, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, p domain.Project) error
}

// PendingQueues holds ids whose mutations still have to reach the remote store.
type PendingQueues interface {
	EnqueueUpdate(ctx context.Context, id string) error
	ClearUpdate(ctx context.Context, id string) error
	PendingUpdates(ctx context.Context) ([]string, error)
	EnqueueDelete(ctx context.Context, id string) error
	ClearDelete(ctx context.Context, id string) error
	PendingDeletes(ctx context.Context) ([]string, error)
}

// ModeListener is called with the new mode on every remote/local transition.
type ModeListener func(mode domain.PersistenceMode)

// FlushResult summarizes one pass over the pending queues.
type FlushResult struct {
	Skipped bool `json:"skipped"`
	Pushed  int  `json:"pushed"`
	Deleted int  `json:"deleted"`
	Dropped int  `json:"dropped"`
	Failed  int  `json:"failed"`
}

type Status struct {
	Mode           domain.PersistenceMode `json:"mode"`
	PendingUpdates int                    `json:"pendingUpdates"`
	PendingDeletes int                    `json:"pendingDeletes"`
	Flushing       bool                   `json:"flushing"`
	LastFlushAt    *time.Time             `json:"lastFlushAt,omitempty"`
}

type Option func(*SyncCoordinator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *SyncCoordinator) { c.logger = logging.OrNop(logger) }
}

// WithClock replaces the timestamp source used to stamp saves.
func WithClock(now func() time.Time) Option {
	return func(c *SyncCoordinator) { c.now = now }
}

// WithRemoteTimeout bounds every individual remote call. Zero means no extra bound.
func WithRemoteTimeout(d time.Duration) Option {
	return func(c *SyncCoordinator) { c.remoteTimeout = d }
}

func WithInitialMode(mode domain.PersistenceMode) Option {
	return func(c *SyncCoordinator) { c.mode.Store(mode) }
}

func WithModeListener(fn ModeListener) Option {
	return func(c *SyncCoordinator) { c.listeners = append(c.listeners, fn) }
}

// SyncCoordinator resolves each operation against the remote store first and falls
// back to the local cache and pending queues when the remote call fails. Pending
// mutations are flushed whenever a remote call succeeds after a local-mode period.
type SyncCoordinator struct {
	remote        RemoteStore
	cache         LocalCache
	pending       PendingQueues
	logger        *zap.Logger
	now           func() time.Time
	remoteTimeout time.Duration

	// transitionMu serializes mode changes together with their notifications,
	// so listeners observe transitions in the order they happened.
	transitionMu sync.Mutex
	mode         atomic.Value // domain.PersistenceMode

	listenersMu sync.RWMutex
	listeners   []ModeListener

	// localMu serializes multi-step cache and queue updates.
	localMu sync.Mutex

	// writes orders remote writes per id, so a push never lands after a newer one.
	writes idLocks

	flushMu   sync.Mutex
	flushing  bool
	lastFlush time.Time
}

func NewSyncCoordinator(remote RemoteStore, cache LocalCache, pending PendingQueues, opts ...Option) *SyncCoordinator {
	c := &SyncCoordinator{
		remote:  remote,
		cache:   cache,
		pending: pending,
		logger:  zap.NewNop(),
		now: func() time.Time {
			// truncated to the precision every remote backend stores
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	c.mode.Store(domain.ModeRemote)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode reports which path the most recent operation resolved through.
func (c *SyncCoordinator) Mode() domain.PersistenceMode {
	return c.mode.Load().(domain.PersistenceMode)
}

// OnModeChange registers fn to be called on every mode transition.
func (c *SyncCoordinator) OnModeChange(fn ModeListener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// List returns all projects, newest first. It never fails: with the remote store
// down it serves the local cache, and with both down it returns an empty list.
func (c *SyncCoordinator) List(ctx context.Context) []domain.Project {
	rctx, cancel := c.remoteCtx(ctx)
	remote, err := c.remote.List(rctx)
	cancel()
	if err != nil {
		c.remoteFailed("list", err)
		c.transition(domain.ModeLocal)

		local, lerr := c.cache.ReadAll(ctx)
		if lerr != nil {
			c.localFailed("list", lerr)
			return []domain.Project{}
		}
		domain.SortByUpdatedDesc(local)
		return local
	}

	prev := c.transition(domain.ModeRemote)

	c.localMu.Lock()
	updates, deletes, pendingOK := c.pendingSnapshot(ctx)
	reconcile := prev == domain.ModeLocal || len(updates) > 0 || len(deletes) > 0 || !pendingOK
	if len(deletes) > 0 {
		// tombstoned records stay hidden until their remote delete lands
		remote = slices.DeleteFunc(remote, func(p domain.Project) bool {
			_, gone := deletes[p.ID]
			return gone
		})
	}
	if reconcile {
		if err := c.cache.MergeUpsert(ctx, remote); err != nil {
			c.localFailed("list merge", err)
		}
		if pendingOK {
			keepPending := make(map[string]struct{}, len(updates)+len(deletes))
			for id := range updates {
				keepPending[id] = struct{}{}
			}
			for id := range deletes {
				keepPending[id] = struct{}{}
			}
			if err := c.cache.Prune(ctx, domain.IDs(remote), keepPending); err != nil {
				c.localFailed("list prune", err)
			}
		}
	} else if err := c.cache.ReplaceAll(ctx, remote); err != nil {
		c.localFailed("list replace", err)
	}
	c.localMu.Unlock()

	if prev == domain.ModeLocal {
		c.Flush(ctx)
	}

	result := remote
	if reconcile {
		// the reconciled cache also carries pending records the remote list predates
		if merged, err := c.cache.ReadAll(ctx); err == nil {
			result = merged
		} else {
			c.localFailed("list read merged", err)
		}
	}
	domain.SortByUpdatedDesc(result)
	return result
}

// Save stamps and persists p, assigning an id when it has none. It fails only when
// the remote write fails and the local fallback fails too.
func (c *SyncCoordinator) Save(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.ID == "" {
		p.ID = domain.NewProjectID()
	}
	unlock := c.writes.lock(p.ID)
	defer unlock()

	stamped := p.Stamp(c.now())
	log := c.logger.With(zap.String("project_id", stamped.ID))

	rctx, cancel := c.remoteCtx(ctx)
	err := c.remote.Put(rctx, stamped.ID, stamped)
	cancel()
	if err != nil {
		c.remoteFailed("save", err, zap.String("project_id", stamped.ID))

		c.localMu.Lock()
		lerr := c.cache.Upsert(ctx, stamped)
		if lerr == nil {
			lerr = c.pending.EnqueueUpdate(ctx, stamped.ID)
		}
		c.localMu.Unlock()
		unlock()
		c.transition(domain.ModeLocal)

		if lerr != nil {
			log.Error("project lost: remote and local writes failed", zap.Error(lerr))
			return domain.Project{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, errors.Join(err, lerr))
		}
		log.Debug("project saved locally and queued for push")
		return stamped, nil
	}

	c.localMu.Lock()
	if err := c.cache.Upsert(ctx, stamped); err != nil {
		c.localFailed("save upsert", err, zap.String("project_id", stamped.ID))
	}
	if err := c.pending.ClearUpdate(ctx, stamped.ID); err != nil {
		c.localFailed("save clear update", err, zap.String("project_id", stamped.ID))
	}
	if err := c.pending.ClearDelete(ctx, stamped.ID); err != nil {
		c.localFailed("save clear delete", err, zap.String("project_id", stamped.ID))
	}
	c.localMu.Unlock()
	unlock()

	if c.transition(domain.ModeRemote) == domain.ModeLocal {
		c.Flush(ctx)
	}
	return stamped, nil
}

// Delete removes the project. With the remote store down the record disappears from
// the cache at once and a tombstone is queued.
func (c *SyncCoordinator) Delete(ctx context.Context, id string) error {
	unlock := c.writes.lock(id)
	defer unlock()

	rctx, cancel := c.remoteCtx(ctx)
	err := c.remote.Delete(rctx, id)
	cancel()
	if err != nil {
		c.remoteFailed("delete", err, zap.String("project_id", id))

		c.localMu.Lock()
		lerr := c.cache.Delete(ctx, id)
		if lerr == nil {
			lerr = c.pending.EnqueueDelete(ctx, id)
		}
		c.localMu.Unlock()
		unlock()
		c.transition(domain.ModeLocal)

		if lerr != nil {
			c.logger.Error("delete lost: remote and local deletes failed",
				zap.String("project_id", id), zap.Error(lerr))
			return fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, errors.Join(err, lerr))
		}
		return nil
	}

	c.localMu.Lock()
	if err := c.cache.Delete(ctx, id); err != nil {
		c.localFailed("delete", err, zap.String("project_id", id))
	}
	if err := c.pending.ClearUpdate(ctx, id); err != nil {
		c.localFailed("delete clear update", err, zap.String("project_id", id))
	}
	if err := c.pending.ClearDelete(ctx, id); err != nil {
		c.localFailed("delete clear delete", err, zap.String("project_id", id))
	}
	c.localMu.Unlock()
	unlock()

	if c.transition(domain.ModeRemote) == domain.ModeLocal {
		c.Flush(ctx)
	}
	return nil
}

// Get returns the project and whether it exists. It never fails.
func (c *SyncCoordinator) Get(ctx context.Context, id string) (domain.Project, bool) {
	unlock := c.writes.lock(id)

	rctx, cancel := c.remoteCtx(ctx)
	remote, found, err := c.remote.Get(rctx, id)
	cancel()
	if err != nil {
		unlock()
		c.remoteFailed("get", err, zap.String("project_id", id))
		c.transition(domain.ModeLocal)

		p, ok, lerr := c.cache.Get(ctx, id)
		if lerr != nil {
			c.localFailed("get", lerr, zap.String("project_id", id))
			return domain.Project{}, false
		}
		return p, ok
	}

	p, ok := c.resolveGet(ctx, id, remote, found)
	unlock()

	if c.transition(domain.ModeRemote) == domain.ModeLocal {
		c.Flush(ctx)
	}
	return p, ok
}

// resolveGet reconciles a successful remote read with the pending queues and the
// cache. The caller holds the id's write lock.
func (c *SyncCoordinator) resolveGet(ctx context.Context, id string, remote domain.Project, found bool) (domain.Project, bool) {
	updates, deletes, _ := c.pendingSnapshot(ctx)
	if _, tombstoned := deletes[id]; tombstoned {
		return domain.Project{}, false
	}
	if _, queued := updates[id]; queued {
		// the local copy is newer than anything the remote store returned
		if p, ok, lerr := c.cache.Get(ctx, id); lerr == nil && ok {
			return p, true
		}
	}

	if !found {
		if err := c.cache.Delete(ctx, id); err != nil {
			c.localFailed("get evict", err, zap.String("project_id", id))
		}
		return domain.Project{}, false
	}

	if err := c.cache.Upsert(ctx, remote); err != nil {
		c.localFailed("get upsert", err, zap.String("project_id", id))
	}
	return remote, true
}

// Flush pushes queued updates and deletes to the remote store. Only one flush runs
// at a time; a call made while another is running returns with Skipped set.
// Items that fail stay queued for the next flush.
func (c *SyncCoordinator) Flush(ctx context.Context) FlushResult {
	c.flushMu.Lock()
	if c.flushing {
		c.flushMu.Unlock()
		c.logger.Debug("flush already running, skipping")
		return FlushResult{Skipped: true}
	}
	c.flushing = true
	c.flushMu.Unlock()

	defer func() {
		c.flushMu.Lock()
		c.flushing = false
		c.lastFlush = c.now()
		c.flushMu.Unlock()
	}()

	var res FlushResult

	updates, err := c.pending.PendingUpdates(ctx)
	if err != nil {
		c.localFailed("flush read updates", err)
	}
	for _, id := range updates {
		switch c.flushUpdate(ctx, id) {
		case flushDone:
			res.Pushed++
		case flushDropped:
			res.Dropped++
		default:
			res.Failed++
		}
	}

	deletes, err := c.pending.PendingDeletes(ctx)
	if err != nil {
		c.localFailed("flush read deletes", err)
	}
	for _, id := range deletes {
		if c.flushDelete(ctx, id) {
			res.Deleted++
		} else {
			res.Failed++
		}
	}

	if len(updates)+len(deletes) > 0 {
		c.logger.Info("flushed pending mutations",
			zap.Int("pushed", res.Pushed),
			zap.Int("deleted", res.Deleted),
			zap.Int("dropped", res.Dropped),
			zap.Int("failed", res.Failed),
		)
	}
	return res
}

type flushOutcome int

const (
	flushFailed flushOutcome = iota
	flushDone
	flushDropped
)

func (c *SyncCoordinator) flushUpdate(ctx context.Context, id string) flushOutcome {
	log := c.logger.With(zap.String("project_id", id))

	unlock := c.writes.lock(id)
	defer unlock()

	p, found, err := c.cache.Get(ctx, id)
	if err != nil {
		c.localFailed("flush read record", err, zap.String("project_id", id))
		return flushFailed
	}
	if !found {
		log.Warn("pending update has no cached record, dropping it")
		c.localMu.Lock()
		defer c.localMu.Unlock()
		if err := c.pending.ClearUpdate(ctx, id); err != nil {
			c.localFailed("flush clear update", err, zap.String("project_id", id))
		}
		return flushDropped
	}

	rctx, cancel := c.remoteCtx(ctx)
	err = c.remote.Put(rctx, id, p)
	cancel()
	if err != nil {
		log.Warn("flush push failed, keeping queued", zap.Error(err))
		return flushFailed
	}

	c.localMu.Lock()
	defer c.localMu.Unlock()
	if cur, ok, err := c.cache.Get(ctx, id); err == nil && ok && !cur.UpdatedAt.Equal(p.UpdatedAt) {
		if err := c.pending.EnqueueUpdate(ctx, id); err != nil {
			c.localFailed("flush requeue update", err, zap.String("project_id", id))
		}
		log.Debug("record changed while flushing, requeued")
		return flushDone
	}
	if err := c.pending.ClearUpdate(ctx, id); err != nil {
		c.localFailed("flush clear update", err, zap.String("project_id", id))
	}
	log.Debug("pushed pending update")
	return flushDone
}

func (c *SyncCoordinator) flushDelete(ctx context.Context, id string) bool {
	unlock := c.writes.lock(id)
	defer unlock()

	rctx, cancel := c.remoteCtx(ctx)
	err := c.remote.Delete(rctx, id)
	cancel()
	if err != nil {
		c.logger.Warn("flush delete failed, keeping tombstone",
			zap.String("project_id", id), zap.Error(err))
		return false
	}

	c.localMu.Lock()
	defer c.localMu.Unlock()
	if err := c.pending.ClearDelete(ctx, id); err != nil {
		c.localFailed("flush clear delete", err, zap.String("project_id", id))
	}
	return true
}

// Status reports the coordinator's mode, queue sizes and flush state.
func (c *SyncCoordinator) Status(ctx context.Context) Status {
	st := Status{Mode: c.Mode()}

	if ids, err := c.pending.PendingUpdates(ctx); err == nil {
		st.PendingUpdates = len(ids)
	} else {
		c.localFailed("status", err)
	}
	if ids, err := c.pending.PendingDeletes(ctx); err == nil {
		st.PendingDeletes = len(ids)
	} else {
		c.localFailed("status", err)
	}

	c.flushMu.Lock()
	st.Flushing = c.flushing
	if !c.lastFlush.IsZero() {
		t := c.lastFlush
		st.LastFlushAt = &t
	}
	c.flushMu.Unlock()

	return st
}

// Pending returns the queued update and delete ids in the order they were queued.
func (c *SyncCoordinator) Pending(ctx context.Context) (updates, deletes []string, err error) {
	if updates, err = c.pending.PendingUpdates(ctx); err != nil {
		return nil, nil, err
	}
	if deletes, err = c.pending.PendingDeletes(ctx); err != nil {
		return nil, nil, err
	}
	return updates, deletes, nil
}

// transition moves to mode `to` and returns the previous mode. Listeners run only
// when the mode actually changes.
func (c *SyncCoordinator) transition(to domain.PersistenceMode) domain.PersistenceMode {
	c.transitionMu.Lock()
	defer c.transitionMu.Unlock()

	prev := c.Mode()
	if prev == to {
		return prev
	}
	c.mode.Store(to)
	c.logger.Info("persistence mode changed",
		zap.String("from", string(prev)),
		zap.String("to", string(to)),
	)

	c.listenersMu.RLock()
	listeners := slices.Clone(c.listeners)
	c.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(to)
	}
	return prev
}

func (c *SyncCoordinator) pendingSnapshot(ctx context.Context) (updates, deletes map[string]struct{}, ok bool) {
	updates, deletes = map[string]struct{}{}, map[string]struct{}{}

	ups, err := c.pending.PendingUpdates(ctx)
	if err != nil {
		c.localFailed("read pending updates", err)
		return updates, deletes, false
	}
	dels, err := c.pending.PendingDeletes(ctx)
	if err != nil {
		c.localFailed("read pending deletes", err)
		return updates, deletes, false
	}

	for _, id := range ups {
		updates[id] = struct{}{}
	}
	for _, id := range dels {
		deletes[id] = struct{}{}
	}
	return updates, deletes, true
}

func (c *SyncCoordinator) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.remoteTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.remoteTimeout)
}

func (c *SyncCoordinator) remoteFailed(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	c.logger.Warn("remote store unavailable, using local cache", fields...)
}

func (c *SyncCoordinator) localFailed(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	c.logger.Error("local store failure ignored", fields...)
}
