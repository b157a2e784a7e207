package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func project(id string, updated time.Time) domain.Project {
	return domain.Project{
		ID:        id,
		Title:     "title " + id,
		Type:      "quiz",
		Data:      map[string]any{"questions": "3"},
		CreatedAt: t0,
		UpdatedAt: updated,
	}
}

func ids(projects []domain.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func TestLocalCache(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cache := NewLocalCache(kv, "test")

			t.Run("empty cache reads as empty slice", func(t *testing.T) {
				all, err := cache.ReadAll(ctx)
				require.NoError(t, err)
				assert.NotNil(t, all)
				assert.Empty(t, all)
			})

			t.Run("replace all then get", func(t *testing.T) {
				require.NoError(t, cache.ReplaceAll(ctx, []domain.Project{project("a", t0), project("b", t0)}))

				p, found, err := cache.Get(ctx, "b")
				require.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "title b", p.Title)
				assert.Equal(t, "3", p.Data["questions"])

				_, found, err = cache.Get(ctx, "zzz")
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("upsert replaces unconditionally", func(t *testing.T) {
				older := project("a", t0.Add(-time.Hour))
				older.Title = "older"
				require.NoError(t, cache.Upsert(ctx, older))

				p, _, err := cache.Get(ctx, "a")
				require.NoError(t, err)
				assert.Equal(t, "older", p.Title)

				require.NoError(t, cache.Upsert(ctx, project("c", t0)))
				all, err := cache.ReadAll(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"a", "b", "c"}, ids(all))
			})

			t.Run("merge upsert is last write wins", func(t *testing.T) {
				require.NoError(t, cache.ReplaceAll(ctx, []domain.Project{project("a", t0), project("b", t0)}))

				newer := project("a", t0.Add(time.Minute))
				newer.Title = "remote newer"
				stale := project("b", t0.Add(-time.Minute))
				stale.Title = "remote stale"
				same := project("b", t0)
				same.Title = "remote same time"

				require.NoError(t, cache.MergeUpsert(ctx, []domain.Project{newer, stale, project("d", t0)}))

				a, _, _ := cache.Get(ctx, "a")
				b, _, _ := cache.Get(ctx, "b")
				assert.Equal(t, "remote newer", a.Title)
				assert.Equal(t, "title b", b.Title)

				require.NoError(t, cache.MergeUpsert(ctx, []domain.Project{same}))
				b, _, _ = cache.Get(ctx, "b")
				assert.Equal(t, "remote same time", b.Title)

				_, found, _ := cache.Get(ctx, "d")
				assert.True(t, found)
			})

			t.Run("prune keeps keep and always keep", func(t *testing.T) {
				require.NoError(t, cache.ReplaceAll(ctx, []domain.Project{
					project("remote", t0), project("pending", t0), project("orphan", t0),
				}))

				err := cache.Prune(ctx,
					map[string]struct{}{"remote": {}},
					map[string]struct{}{"pending": {}},
				)
				require.NoError(t, err)

				all, err := cache.ReadAll(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"remote", "pending"}, ids(all))
			})

			t.Run("delete removes only that id", func(t *testing.T) {
				require.NoError(t, cache.Delete(ctx, "remote"))
				require.NoError(t, cache.Delete(ctx, "never-existed"))

				all, err := cache.ReadAll(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"pending"}, ids(all))
			})
		})
	}
}

func TestLocalCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	cache := NewLocalCache(brokenKV{}, "test")

	_, err := cache.ReadAll(ctx)
	assert.ErrorIs(t, err, domain.ErrLocalUnavailable)
	assert.ErrorIs(t, err, errKVDown)

	assert.ErrorIs(t, cache.Upsert(ctx, project("a", t0)), domain.ErrLocalUnavailable)
	assert.ErrorIs(t, cache.ReplaceAll(ctx, nil), domain.ErrLocalUnavailable)
	assert.ErrorIs(t, cache.MergeUpsert(ctx, nil), domain.ErrLocalUnavailable)
	assert.ErrorIs(t, cache.Prune(ctx, nil, nil), domain.ErrLocalUnavailable)
	assert.ErrorIs(t, cache.Delete(ctx, "a"), domain.ErrLocalUnavailable)

	_, _, err = cache.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrLocalUnavailable)
}
