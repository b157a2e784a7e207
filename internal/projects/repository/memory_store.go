package repository

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

const (
	MethodGet    = "Get"
	MethodList   = "List"
	MethodPut    = "Put"
	MethodDelete = "Delete"
)

// MemoryStore is an in-process remote store. It can be switched offline, in which
// case every call fails with domain.ErrRemoteUnavailable, and it counts calls per method.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]domain.Project
	failing bool
	calls   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.Project),
		calls:   make(map[string]int),
	}
}

// SetFailing toggles simulated unavailability.
func (s *MemoryStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Calls reports how many times method was invoked, including failed calls.
func (s *MemoryStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *MemoryStore) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, MethodGet); err != nil {
		return domain.Project{}, false, err
	}
	p, ok := s.records[id]
	return clone(p), ok, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, MethodList); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(s.records))
	for _, p := range s.records {
		out = append(out, clone(p))
	}
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, id string, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, MethodPut); err != nil {
		return err
	}
	p.ID = id
	s.records[id] = clone(p)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, MethodDelete); err != nil {
		return err
	}
	delete(s.records, id)
	return nil
}

// caller holds s.mu
func (s *MemoryStore) enter(ctx context.Context, method string) error {
	s.calls[method]++
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	if s.failing {
		return fmt.Errorf("%w: memory store offline", domain.ErrRemoteUnavailable)
	}
	return nil
}

func clone(p domain.Project) domain.Project {
	p.Data = maps.Clone(p.Data)
	return p
}
