package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// -----------------------------------------------------------------------------
// File Cache Driver
// -----------------------------------------------------------------------------
// Her anahtar dir/<ilk 2 hex>/<hash> dosyasında saklanır. Dosya, 8 byte'lık
// bitiş zamanı (unix nano, 0 = süresiz) ve ardından ham veriden oluşur.
//
// CLI gibi kısa ömürlü process'lerin sonuçları çağrılar arasında paylaşması
// için kullanılır. Süresi dolan dosyalar okunurken silinir; arka plan
// temizleyici Close ile durdurulur.
// -----------------------------------------------------------------------------

const fileHeaderSize = 8

// FileCache, dosya sistemi tabanlı cache.
type FileCache struct {
	dir    string
	logger *slog.Logger
	mu     sync.RWMutex
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewFileCache, dizini oluşturur ve file cache'i başlatır.
func NewFileCache(dir string, logger *slog.Logger, gcInterval time.Duration) (*FileCache, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if gcInterval <= 0 {
		gcInterval = 10 * time.Minute
	}

	fc := &FileCache{
		dir:    dir,
		logger: logger,
		stop:   make(chan struct{}),
	}

	fc.wg.Add(1)
	go fc.collect(gcInterval)

	return fc, nil
}

func (f *FileCache) path(key string) string {
	name := fmt.Sprintf("%016x", xxhash.Sum64String(key))
	return filepath.Join(f.dir, name[:2], name)
}

func (f *FileCache) Get(_ context.Context, key string) ([]byte, error) {
	path := f.path(key)

	f.mu.RLock()
	data, err := os.ReadFile(path)
	f.mu.RUnlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file cache read failed: %w", err)
	}

	if len(data) < fileHeaderSize || fileExpired(data, time.Now()) {
		f.mu.Lock()
		os.Remove(path)
		f.mu.Unlock()
		return nil, nil
	}
	return data[fileHeaderSize:], nil
}

func fileExpired(data []byte, now time.Time) bool {
	expiresAt := int64(binary.BigEndian.Uint64(data[:fileHeaderSize]))
	return expiresAt > 0 && now.UnixNano() > expiresAt
}

func (f *FileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}

	buf := make([]byte, fileHeaderSize+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expiresAt))
	copy(buf[fileHeaderSize:], value)

	path := f.path(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("file cache write failed: %w", err)
	}
	return nil
}

func (f *FileCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file cache delete failed: %w", err)
	}
	return nil
}

func (f *FileCache) Has(ctx context.Context, key string) (bool, error) {
	data, err := f.Get(ctx, key)
	return data != nil, err
}

// Flush, cache dizinindeki tüm kayıtları siler.
func (f *FileCache) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("file cache flush failed: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(f.dir, entry.Name())); err != nil {
			return fmt.Errorf("file cache flush failed: %w", err)
		}
	}
	f.logger.Debug("⚠️ file cache temizlendi", "dir", f.dir)
	return nil
}

// Stats, dosya sayısını ve toplam boyutu döndürür.
func (f *FileCache) Stats() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()

	files := 0
	var size int64
	filepath.WalkDir(f.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			files++
			size += info.Size()
		}
		return nil
	})

	return map[string]any{
		"driver":     "file",
		"dir":        f.dir,
		"files":      files,
		"total_size": size,
	}
}

// Close, arka plan temizleyicisini durdurur.
func (f *FileCache) Close() error {
	f.once.Do(func() { close(f.stop) })
	f.wg.Wait()
	return nil
}

func (f *FileCache) collect(interval time.Duration) {
	defer f.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanExpired()
		case <-f.stop:
			return
		}
	}
}

func (f *FileCache) cleanExpired() {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	cleaned := 0
	filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if len(data) < fileHeaderSize || fileExpired(data, now) {
			if os.Remove(path) == nil {
				cleaned++
			}
		}
		return nil
	})

	if cleaned > 0 {
		f.logger.Debug("🧹 file cache temizliği", "removed", cleaned)
	}
}
