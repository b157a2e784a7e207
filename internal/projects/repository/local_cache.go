package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// LocalCache keeps the whole project collection as one JSON array under a single key.
type LocalCache struct {
	kv  KV
	key string
}

func NewLocalCache(kv KV, prefix string) *LocalCache {
	return &LocalCache{kv: kv, key: prefix + ":projects"}
}

func (c *LocalCache) ReadAll(ctx context.Context) ([]domain.Project, error) {
	projects, err := readJSON[[]domain.Project](ctx, c.kv, c.key)
	if err != nil {
		return nil, localErr("read cache", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (c *LocalCache) ReplaceAll(ctx context.Context, projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	if err := writeJSON(ctx, c.kv, c.key, projects); err != nil {
		return localErr("replace cache", err)
	}
	return nil
}

// MergeUpsert applies incoming records with last-write-wins on UpdatedAt.
// An incoming record replaces a stored one when its UpdatedAt is equal or later.
func (c *LocalCache) MergeUpsert(ctx context.Context, incoming []domain.Project) error {
	err := c.update(ctx, func(stored []domain.Project) []domain.Project {
		index := make(map[string]int, len(stored))
		for i, p := range stored {
			index[p.ID] = i
		}
		for _, in := range incoming {
			i, ok := index[in.ID]
			if !ok {
				index[in.ID] = len(stored)
				stored = append(stored, in)
				continue
			}
			if !in.UpdatedAt.Before(stored[i].UpdatedAt) {
				stored[i] = in
			}
		}
		return stored
	})
	if err != nil {
		return localErr("merge cache", err)
	}
	return nil
}

// Prune drops every record whose id is in neither keep nor alwaysKeep.
func (c *LocalCache) Prune(ctx context.Context, keep, alwaysKeep map[string]struct{}) error {
	err := c.update(ctx, func(stored []domain.Project) []domain.Project {
		out := stored[:0]
		for _, p := range stored {
			_, inKeep := keep[p.ID]
			_, inAlways := alwaysKeep[p.ID]
			if inKeep || inAlways {
				out = append(out, p)
			}
		}
		return out
	})
	if err != nil {
		return localErr("prune cache", err)
	}
	return nil
}

func (c *LocalCache) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	projects, err := c.ReadAll(ctx)
	if err != nil {
		return domain.Project{}, false, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, true, nil
		}
	}
	return domain.Project{}, false, nil
}

func (c *LocalCache) Delete(ctx context.Context, id string) error {
	err := c.update(ctx, func(stored []domain.Project) []domain.Project {
		out := stored[:0]
		for _, p := range stored {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out
	})
	if err != nil {
		return localErr("delete from cache", err)
	}
	return nil
}

// Upsert writes p unconditionally, replacing any stored record with the same id.
func (c *LocalCache) Upsert(ctx context.Context, p domain.Project) error {
	err := c.update(ctx, func(stored []domain.Project) []domain.Project {
		for i := range stored {
			if stored[i].ID == p.ID {
				stored[i] = p
				return stored
			}
		}
		return append(stored, p)
	})
	if err != nil {
		return localErr("upsert cache", err)
	}
	return nil
}

func (c *LocalCache) update(ctx context.Context, fn func([]domain.Project) []domain.Project) error {
	return updateJSON(ctx, c.kv, c.key, func(stored []domain.Project) []domain.Project {
		out := fn(stored)
		if out == nil {
			out = []domain.Project{}
		}
		return out
	})
}
