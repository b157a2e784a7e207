package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestKV_GetSet(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "k", []byte(`["a"]`)))

	v, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["a"]`, string(v))
}

func TestKV_Update(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	t.Run("sees missing key", func(t *testing.T) {
		err := kv.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, error) {
			assert.False(t, found)
			return []byte("1"), nil
		})
		require.NoError(t, err)
	})

	t.Run("error aborts write", func(t *testing.T) {
		boom := errors.New("boom")
		err := kv.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, error) {
			return []byte("99"), boom
		})
		assert.ErrorIs(t, err, boom)

		v, _, err := kv.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = kv.Update(ctx, "counter", func(cur []byte, found bool) ([]byte, error) {
					n, _ := strconv.Atoi(string(cur))
					return []byte(strconv.Itoa(n + 1)), nil
				})
			}()
		}
		wg.Wait()

		v, _, err := kv.Get(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, "21", string(v))
	})
}

func TestKV_CanceledContext(t *testing.T) {
	kv := openTestKV(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, kv.Set(ctx, "k", nil), context.Canceled)
}
