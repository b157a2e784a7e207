package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// maxUpdateAttempts bounds optimistic WATCH retries when another writer touches the key.
const maxUpdateAttempts = 16

// KV stores blobs as plain Redis strings. Keys never expire.
type KV struct {
	client *goredis.Client
}

func NewKV(client *goredis.Client) *KV {
	return &KV{client: client}
}

func (s *KV) Close() error {
	return s.client.Close()
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Update runs fn against the current value under WATCH and writes the result in a
// MULTI/EXEC block, retrying when a concurrent writer invalidates the watch.
func (s *KV) Update(ctx context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error {
	txf := func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, goredis.Nil) {
			cur, found = nil, false
		} else if err != nil {
			return err
		}

		next, err := fn(cur, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("update %s: %w", key, err)
	}
	return fmt.Errorf("update %s: too many concurrent writers", key)
}
