package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
	"github.com/GoSim-25-26J-441/projectsync/internal/projects/repository"
	"github.com/GoSim-25-26J-441/projectsync/internal/storage/bolt"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock advances one second per reading so every save gets a distinct stamp.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// flakyRemote wraps a MemoryStore and can take the whole store down or fail
// writes independently of reads. Rejected calls never reach the MemoryStore.
type flakyRemote struct {
	*repository.MemoryStore

	mu         sync.Mutex
	down       bool
	failPut    bool
	failDelete bool
}

func (r *flakyRemote) setDown(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = v
}

func (r *flakyRemote) setFailPut(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failPut = v
}

func (r *flakyRemote) setFailDelete(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failDelete = v
}

func (r *flakyRemote) reject(write bool, writeFails bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down || (write && writeFails) {
		return fmt.Errorf("%w: remote rejected call", domain.ErrRemoteUnavailable)
	}
	return nil
}

func (r *flakyRemote) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	if err := r.reject(false, false); err != nil {
		return domain.Project{}, false, err
	}
	return r.MemoryStore.Get(ctx, id)
}

func (r *flakyRemote) List(ctx context.Context) ([]domain.Project, error) {
	if err := r.reject(false, false); err != nil {
		return nil, err
	}
	return r.MemoryStore.List(ctx)
}

func (r *flakyRemote) Put(ctx context.Context, id string, p domain.Project) error {
	r.mu.Lock()
	failPut := r.failPut
	r.mu.Unlock()
	if err := r.reject(true, failPut); err != nil {
		return err
	}
	return r.MemoryStore.Put(ctx, id, p)
}

func (r *flakyRemote) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	failDelete := r.failDelete
	r.mu.Unlock()
	if err := r.reject(true, failDelete); err != nil {
		return err
	}
	return r.MemoryStore.Delete(ctx, id)
}

type harness struct {
	remote  *flakyRemote
	cache   *repository.LocalCache
	pending *repository.PendingQueues
	coord   *SyncCoordinator
	repo    *ProjectRepository
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	kv, err := bolt.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	h := &harness{
		remote:  &flakyRemote{MemoryStore: repository.NewMemoryStore()},
		cache:   repository.NewLocalCache(kv, "test"),
		pending: repository.NewPendingQueues(kv, "test"),
	}
	clock := &stepClock{cur: epoch}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	h.coord = NewSyncCoordinator(h.remote, h.cache, h.pending, opts...)
	h.repo = NewProjectRepository(h.coord)
	return h
}

func (h *harness) pendingUpdates(t *testing.T) []string {
	t.Helper()
	ids, err := h.pending.PendingUpdates(context.Background())
	require.NoError(t, err)
	return ids
}

func (h *harness) pendingDeletes(t *testing.T) []string {
	t.Helper()
	ids, err := h.pending.PendingDeletes(context.Background())
	require.NoError(t, err)
	return ids
}

func (h *harness) cached(t *testing.T, id string) (domain.Project, bool) {
	t.Helper()
	p, ok, err := h.cache.Get(context.Background(), id)
	require.NoError(t, err)
	return p, ok
}

func (h *harness) remoteHas(t *testing.T, id string) (domain.Project, bool) {
	t.Helper()
	p, ok, err := h.remote.MemoryStore.Get(context.Background(), id)
	require.NoError(t, err)
	return p, ok
}

func quiz(id, title string) domain.Project {
	return domain.Project{
		ID:          id,
		Title:       title,
		Description: "warm-up",
		Type:        "quiz",
		Data:        map[string]any{"questions": "3"},
	}
}

// sameProject compares every field, using time equality for the timestamps.
func sameProject(t *testing.T, want, got domain.Project) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Type, got.Type)
	assert.Equal(t, want.Data, got.Data)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
}

func projectIDs(projects []domain.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

var errDiskGone = errors.New("disk gone")

// deadKV fails every call, standing in for an unusable local medium.
type deadKV struct{}

func (deadKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDiskGone }
func (deadKV) Set(context.Context, string, []byte) error         { return errDiskGone }
func (deadKV) Update(context.Context, string, func([]byte, bool) ([]byte, error)) error {
	return errDiskGone
}

// holders counts the callers holding or waiting for id.
func (l *idLocks) holders(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[id]; ok {
		return e.refs
	}
	return 0
}
