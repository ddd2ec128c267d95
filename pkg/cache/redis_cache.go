package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Birden fazla process'in aynı sorgu sonuçlarını paylaşması için. Tüm
// anahtarlar prefix ile saklanır; Flush sadece prefix'e ait anahtarları siler.
//
// Her çağrı, verilen context'e ek olarak en fazla opTimeout kadar bekler.
// -----------------------------------------------------------------------------

const opTimeout = 3 * time.Second

// RedisCache, Redis tabanlı cache.
type RedisCache struct {
	client redis.UniversalClient
	logger *slog.Logger
	prefix string
}

// NewRedisCache, Redis cache oluşturur.
//
// Parametreler:
//   - client: Hazır redis client (bkz. NewRedisClient)
//   - logger: nil ise loglama kapalı
//   - prefix: Anahtar namespace'i (örn: "dibi:")
func NewRedisCache(client redis.UniversalClient, logger *slog.Logger, prefix string) *RedisCache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

func (r *RedisCache) prefixKey(key string) string {
	return r.prefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("❌ redis get hatası", "key", prefixedKey, "error", err)
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	if err := r.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		r.logger.Error("❌ redis set hatası", "key", prefixedKey, "error", err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	if err := r.client.Del(ctx, prefixedKey).Err(); err != nil {
		r.logger.Error("❌ redis delete hatası", "key", prefixedKey, "error", err)
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	count, err := r.client.Exists(ctx, r.prefixKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return count > 0, nil
}

// Flush, prefix tanımlıysa sadece prefix'li anahtarları, değilse tüm DB'yi siler.
func (r *RedisCache) Flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if r.prefix == "" {
		if err := r.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("redis flushdb failed: %w", err)
		}
		r.logger.Warn("⚠️ redis database tamamen temizlendi (FlushDB)")
		return nil
	}

	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis flush failed: %w", err)
		}
	}

	r.logger.Debug("⚠️ redis cache temizlendi", "prefix", r.prefix, "keys", len(keys))
	return nil
}

// Stats, bağlantı havuzu istatistiklerini döndürür.
func (r *RedisCache) Stats() map[string]any {
	pool := r.client.PoolStats()
	return map[string]any{
		"driver":      "redis",
		"prefix":      r.prefix,
		"hits":        pool.Hits,
		"misses":      pool.Misses,
		"timeouts":    pool.Timeouts,
		"total_conns": pool.TotalConns,
		"idle_conns":  pool.IdleConns,
	}
}
