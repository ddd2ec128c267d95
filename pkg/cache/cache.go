// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Sorgu sonuçlarını saklamak için kullanılan cache soyutlaması. Değerler
// []byte olarak saklanır; encode/decode çağıranın sorumluluğundadır (Connection
// sonuçları encoding/gob ile kodlar, böylece int64 gibi tipler kaybolmaz).
//
// Driver'lar:
// - MemoryCache: Process içi, TTL + arka plan temizliği
// - RedisCache: Paylaşılan cache (github.com/redis/go-redis/v9)
// - FileCache: Disk üzerinde, CLI çağrıları arasında kalıcı
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache, tüm cache driver'larının uyguladığı interface.
type Cache interface {
	// Get, cache'den veri okur. Key bulunamazsa (nil, nil) döner.
	//
	// Örnek:
	//   data, err := c.Get(ctx, "users:all")
	//   if data == nil {
	//       // Cache miss
	//   }
	Get(ctx context.Context, key string) ([]byte, error)

	// Set, cache'e veri yazar. ttl = 0 ise süresiz saklanır.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, key'i siler. Key yoksa hata vermez.
	Delete(ctx context.Context, key string) error

	// Has, key'in cache'de (ve süresi dolmamış) olup olmadığını döndürür.
	Has(ctx context.Context, key string) (bool, error)

	// Flush, tüm cache'i temizler.
	//
	// UYARI: Bu operasyon geri alınamaz!
	Flush(ctx context.Context) error
}

// Stats, istatistik sunan driver'lar tarafından uygulanır.
//
// Örnek:
//
//	if s, ok := c.(cache.Stats); ok {
//	    log.Printf("cache stats: %+v", s.Stats())
//	}
type Stats interface {
	Stats() map[string]any
}

// Remember, cache'den okur; bulamazsa fn'i çalıştırıp sonucu cache'ler.
// Cache'e yazma hatası fn'in sonucunu geçersiz kılmaz.
func Remember(ctx context.Context, c Cache, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		return data, nil
	}

	data, err = fn()
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, nil
}

// Key, parçalardan sabit uzunluklu bir cache anahtarı üretir (xxhash64).
//
// Örnek:
//
//	key := cache.Key("sqlite", "SELECT * FROM users WHERE id = ?", "1")
func Key(parts ...string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(parts, "\x00")))
}
