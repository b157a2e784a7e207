package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// KV is the local key-value medium shared by the cache and the pending queues.
// Update must apply fn atomically with respect to other writers of the same key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error
}

func readJSON[T any](ctx context.Context, kv KV, key string) (T, error) {
	var out T
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if !found || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func writeJSON[T any](ctx context.Context, kv KV, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

func updateJSON[T any](ctx context.Context, kv KV, key string, fn func(T) T) error {
	return kv.Update(ctx, key, func(cur []byte, found bool) ([]byte, error) {
		var v T
		if found && len(cur) > 0 {
			if err := json.Unmarshal(cur, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		return json.Marshal(fn(v))
	})
}

func localErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrLocalUnavailable, op, err)
}
