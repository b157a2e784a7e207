package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/projectsync/internal/storage/bolt"
	redisstore "github.com/GoSim-25-26J-441/projectsync/internal/storage/redis"
)

// kvBackends returns one fresh KV per supported local medium.
func kvBackends(t *testing.T) map[string]KV {
	t.Helper()

	boltKV, err := bolt.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = boltKV.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return map[string]KV{
		"bolt":  boltKV,
		"redis": redisstore.NewKV(client),
	}
}

var errKVDown = errors.New("disk unavailable")

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errKVDown }
func (brokenKV) Set(context.Context, string, []byte) error         { return errKVDown }
func (brokenKV) Update(context.Context, string, func([]byte, bool) ([]byte, error)) error {
	return errKVDown
}
