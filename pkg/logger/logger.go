// -----------------------------------------------------------------------------
// Logger Package
// -----------------------------------------------------------------------------
// Bu package, uygulamanın slog tabanlı logger'ını kurar. Metin çıktısı için
// renkli tint handler'ı, makine tarafından okunacak çıktı için JSON handler'ı
// kullanılır.
//
// Kütüphane kodu (pkg/database, pkg/cache, pkg/events) logger'ı dışarıdan
// *slog.Logger olarak alır; bu package sadece CLI ve uygulama tarafında
// kullanılır.
// -----------------------------------------------------------------------------

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Desteklenen çıktı formatları.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New, verilen seviye ve formatta bir logger oluşturur.
//
// Parametreler:
//   - level: debug, info, warn veya error (boşsa info)
//   - format: text veya json (boşsa text)
//   - w: Çıktı hedefi (nil ise os.Stderr)
//
// Döndürür:
//   - *slog.Logger: Yapılandırılmış logger
//   - error: Geçersiz seviye veya format
//
// Örnek:
//
//	log, err := logger.New("debug", "json", os.Stderr)
//	log.Info("✅ Hazır", "driver", "sqlite")
func New(level, format string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		})), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	default:
		return nil, fmt.Errorf("geçersiz log formatı: %s (text veya json olmalı)", format)
	}
}

// ParseLevel, seviye adını slog.Level'a çevirir. Boş değer info kabul edilir.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("geçersiz log seviyesi: %s", level)
	}
}

// Discard, hiçbir şey yazmayan logger döndürür.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Error, hata için yapılandırılmış alan üretir.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// isTerminal, w bir terminale bağlı *os.File ise true döner.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
