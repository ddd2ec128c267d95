// -----------------------------------------------------------------------------
// Redis Connection Pool
// -----------------------------------------------------------------------------
// Redis cache driver'ının kullandığı bağlantı havuzunu kurar.
//
// Özellikler:
// - Connection pooling
// - Health check
// - Context timeout support
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host         string        // Redis sunucu adresi
	Port         int           // Redis port
	Password     string        // Redis şifresi (opsiyonel)
	DB           int           // Database numarası (0-15)
	PoolSize     int           // Connection pool boyutu
	MinIdleConns int           // Minimum idle connection sayısı
	MaxRetries   int           // Maksimum retry sayısı
	DialTimeout  time.Duration // Bağlantı timeout süresi
	ReadTimeout  time.Duration // Okuma timeout süresi
	WriteTimeout time.Duration // Yazma timeout süresi
}

// DefaultRedisConfig, varsayılan Redis yapılandırması.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr, host:port adresini döndürür.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewRedisClient, Redis bağlantı havuzunu açar ve Ping ile test eder.
//
// Parametreler:
//   - ctx: Ping için context (ayrıca en fazla 5 saniye beklenir)
//   - config: Redis yapılandırması
//   - logger: nil ise loglama kapalı
//
// Döndürür:
//   - *redis.Client: Hazır client (NewRedisCache'e verilir)
//   - error: Bağlantı hatası
//
// Örnek:
//
//	client, err := cache.NewRedisClient(ctx, cache.DefaultRedisConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	store := cache.NewRedisCache(client, logger, "dibi:")
func NewRedisClient(ctx context.Context, config RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("❌ Redis bağlantı hatası", "addr", config.Addr(), "error", err)
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("✅ Redis bağlantısı başarılı", "addr", config.Addr(), "db", config.DB)
	return client, nil
}
