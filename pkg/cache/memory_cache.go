package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// Process içi cache. Tek instance uygulamalar ve testler için uygundur.
// Süresi dolan kayıtlar okunurken yok sayılır ve arka plandaki temizleyici
// tarafından silinir. Temizleyici Close ile durdurulur.
// -----------------------------------------------------------------------------

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero value = süresiz
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache, map tabanlı cache.
type MemoryCache struct {
	store  map[string]*memoryEntry
	mu     sync.RWMutex
	logger *slog.Logger
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewMemoryCache, memory cache oluşturur ve gcInterval aralıklarla süresi
// dolan kayıtları temizler. gcInterval <= 0 ise 5 dakika kullanılır.
//
// Örnek:
//
//	c := cache.NewMemoryCache(logger, time.Minute)
//	defer c.Close()
func NewMemoryCache(logger *slog.Logger, gcInterval time.Duration) *MemoryCache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if gcInterval <= 0 {
		gcInterval = 5 * time.Minute
	}

	mc := &MemoryCache{
		store:  make(map[string]*memoryEntry),
		logger: logger,
		stop:   make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.collect(gcInterval)

	return mc
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.store[key]
	if !ok || entry.expired(time.Now()) {
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[key] = &memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: expiresAt,
	}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, key)
	return nil
}

func (m *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	data, err := m.Get(ctx, key)
	return data != nil, err
}

func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*memoryEntry)
	m.logger.Debug("⚠️ memory cache temizlendi")
	return nil
}

// Stats, anahtar sayılarını döndürür.
func (m *MemoryCache) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	valid := 0
	for _, entry := range m.store {
		if !entry.expired(now) {
			valid++
		}
	}

	return map[string]any{
		"driver":       "memory",
		"total_keys":   len(m.store),
		"valid_keys":   valid,
		"expired_keys": len(m.store) - valid,
	}
}

// Close, arka plan temizleyicisini durdurur. Birden fazla çağrılabilir.
func (m *MemoryCache) Close() error {
	m.once.Do(func() { close(m.stop) })
	m.wg.Wait()
	return nil
}

func (m *MemoryCache) collect(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpired()
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryCache) cleanExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for key, entry := range m.store {
		if entry.expired(now) {
			delete(m.store, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Debug("🧹 memory cache temizliği", "removed", cleaned)
	}
}
