package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseCache, tüm driver'ların sağlaması gereken davranışı test eder.
// elapse, driver'ın saatini d kadar ilerletir.
func exerciseCache(t *testing.T, c Cache, elapse func(d time.Duration)) {
	ctx := context.Background()

	t.Run("miss returns nil", func(t *testing.T) {
		data, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, data)

		ok, err := c.Has(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "users", []byte("payload"), time.Minute))

		data, err := c.Get(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)

		ok, err := c.Has(ctx, "users")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), 20*time.Millisecond))
		elapse(60 * time.Millisecond)

		data, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", []byte("x"), 0))
		require.NoError(t, c.Delete(ctx, "gone"))
		require.NoError(t, c.Delete(ctx, "never-existed"))

		data, err := c.Get(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("flush", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, c.Flush(ctx))

		for _, key := range []string{"a", "b"} {
			data, err := c.Get(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, data, key)
		}
	})
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(nil, time.Minute)
	defer c.Close()

	exerciseCache(t, c, time.Sleep)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(nil, time.Minute)
	defer c.Close()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'X'

	data, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
}

func TestMemoryCache_GarbageCollection(t *testing.T) {
	c := NewMemoryCache(nil, 10*time.Millisecond)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 5*time.Millisecond))

	assert.Eventually(t, func() bool {
		return c.Stats()["total_keys"] == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(nil, time.Minute)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), nil, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c, time.Sleep)
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileCache(dir, nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "rows", []byte("cached"), time.Hour))
	first.Close()

	second, err := NewFileCache(dir, nil, time.Minute)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Get(ctx, "rows")
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
	assert.Equal(t, 1, second.Stats()["files"])
}

// newTestRedis, süreç içi bir Redis sunucusu ve ona bağlı client döndürür.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisCache(t *testing.T) {
	mr, client := newTestRedis(t)

	c := NewRedisCache(client, nil, "dibi-test:")
	exerciseCache(t, c, mr.FastForward)
}

func TestRedisCache_KeysArePrefixed(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	c := NewRedisCache(client, nil, "dibi:")
	require.NoError(t, c.Set(ctx, "rows", []byte("cached"), time.Minute))

	assert.True(t, mr.Exists("dibi:rows"))
	assert.False(t, mr.Exists("rows"))
	assert.Equal(t, time.Minute, mr.TTL("dibi:rows"))
}

func TestRedisCache_FlushKeepsForeignKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:session", "keep"))
	c := NewRedisCache(client, nil, "dibi:")
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, key, []byte(key), 0))
	}

	require.NoError(t, c.Flush(ctx))

	assert.Equal(t, []string{"other:session"}, mr.Keys())
}

func TestRedisCache_FlushWithoutPrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:session", "x"))
	c := NewRedisCache(client, nil, "")
	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))

	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, mr.Keys())
}

func TestRedisCache_ServerErrors(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	c := NewRedisCache(client, nil, "dibi:")

	mr.SetError("ERR injected failure")
	defer mr.SetError("")

	_, err := c.Get(ctx, "rows")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "rows", []byte("x"), time.Minute))
	_, err = c.Has(ctx, "rows")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	config := DefaultRedisConfig()
	config.Host = mr.Host()
	config.Port = port

	client, err := NewRedisClient(context.Background(), config, nil)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client, nil, "dibi:")
	assert.Equal(t, "redis", c.Stats()["driver"])

	mr.Close()
	_, err = NewRedisClient(context.Background(), config, nil)
	assert.Error(t, err)
}

func TestRemember(t *testing.T) {
	c := NewMemoryCache(nil, time.Minute)
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fn := func() ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	for i := 0; i < 3; i++ {
		data, err := Remember(ctx, c, "key", time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, "computed", string(data))
	}
	assert.Equal(t, 1, calls)

	_, err := Remember(ctx, c, "other", time.Minute, func() ([]byte, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestKey(t *testing.T) {
	a := Key("sqlite", "SELECT 1")
	b := Key("sqlite", "SELECT 1")
	c := Key("sqlite", "SELECT 2")
	d := Key("sqlite", "SELECT", "1")

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Key("sqlite", "SELECT 1"), d)
}
