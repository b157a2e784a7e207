package repository

import (
	"context"
	"slices"
)

// IDSet is a persisted set of ids kept as a JSON array in insertion order.
// Add is idempotent.
type IDSet struct {
	kv  KV
	key string
}

func NewIDSet(kv KV, key string) *IDSet {
	return &IDSet{kv: kv, key: key}
}

func (s *IDSet) Add(ctx context.Context, id string) error {
	return s.update(ctx, func(ids []string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
}

func (s *IDSet) Remove(ctx context.Context, id string) error {
	return s.update(ctx, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(v string) bool { return v == id })
	})
}

func (s *IDSet) Members(ctx context.Context) ([]string, error) {
	ids, err := readJSON[[]string](ctx, s.kv, s.key)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *IDSet) update(ctx context.Context, fn func([]string) []string) error {
	return updateJSON(ctx, s.kv, s.key, func(ids []string) []string {
		out := fn(ids)
		if out == nil {
			out = []string{}
		}
		return out
	})
}
