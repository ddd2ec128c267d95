// -----------------------------------------------------------------------------
// Event Dispatcher
// -----------------------------------------------------------------------------
// Event'leri ilgili listener'lara ileten merkezi yapı.
//
// Özellikler:
// - Senkron ve asenkron dispatch
// - "*" ile tüm event'leri dinleme
// - Graceful shutdown: bekleyen asenkron event'ler tamamlanana kadar beklenir
// - Thread-safe listener kaydı
// -----------------------------------------------------------------------------

package events

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher, event'leri listener'lara dağıtır.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    *slog.Logger
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDispatcher, yeni bir dispatcher oluşturur. logger nil ise loglama kapalıdır.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = discardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Listen, event için listener kaydeder. eventName "*" ise tüm event'ler dinlenir.
func (d *Dispatcher) Listen(eventName string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[eventName] = append(d.listeners[eventName], listener)
	d.logger.Debug("✅ listener kaydedildi", "event", eventName)
}

// Subscribe, aynı listener'ı birden fazla event için kaydeder.
func (d *Dispatcher) Subscribe(eventNames []string, listener Listener) {
	for _, eventName := range eventNames {
		d.Listen(eventName, listener)
	}
}

func (d *Dispatcher) listenersFor(name string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()

	named := d.listeners[name]
	wildcard := d.listeners[Wildcard]
	if name == Wildcard || len(wildcard) == 0 {
		return append([]Listener(nil), named...)
	}
	out := make([]Listener, 0, len(named)+len(wildcard))
	out = append(out, named...)
	return append(out, wildcard...)
}

// Dispatch, event'i senkron olarak tüm listener'lara iletir.
//
// Bir listener hata verse bile diğerleri çalışır; son hata döndürülür.
func (d *Dispatcher) Dispatch(event Event) error {
	listeners := d.listenersFor(event.Name())
	if len(listeners) == 0 {
		return nil
	}

	var lastError error
	for _, listener := range listeners {
		if err := listener.Handle(event); err != nil {
			lastError = err
			d.logger.Warn("❌ listener hatası", "event", event.Name(), "error", err)
		}
	}
	return lastError
}

// DispatchAsync, event'i arka planda iletir. Shutdown sonrası gelen
// event'ler yok sayılır.
func (d *Dispatcher) DispatchAsync(event Event) {
	d.spawn(event, func() {
		if err := d.Dispatch(event); err != nil {
			d.logger.Warn("❌ async dispatch hatası", "event", event.Name(), "error", err)
		}
	})
}

// spawn, fn'i Shutdown'ın beklediği bir goroutine'de çalıştırır. Dispatcher
// kapanıyorsa fn çalışmaz ve false döner.
func (d *Dispatcher) spawn(event Event, fn func()) bool {
	select {
	case <-d.ctx.Done():
		d.logger.Debug("⚠️ dispatcher kapanıyor, event yok sayıldı", "event", event.Name())
		return false
	default:
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		select {
		case <-d.ctx.Done():
			return
		default:
		}
		fn()
	}()
	return true
}

// Forget, event'in tüm listener'larını kaldırır.
func (d *Dispatcher) Forget(eventName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, eventName)
}

// HasListeners, event için (wildcard dahil) listener olup olmadığını döndürür.
func (d *Dispatcher) HasListeners(eventName string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.listeners[eventName]) > 0 || len(d.listeners[Wildcard]) > 0
}

// Clear, tüm listener'ları kaldırır.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners = make(map[string][]Listener)
}

// Stats, event başına listener sayısını döndürür.
func (d *Dispatcher) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int, len(d.listeners))
	for event, listeners := range d.listeners {
		stats[event] = len(listeners)
	}
	return stats
}

// Shutdown, yeni asenkron event'leri durdurur ve bekleyenlerin bitmesini bekler.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
	d.logger.Debug("✅ event dispatcher kapatıldı")
}

// ShutdownWithTimeout, Shutdown gibidir ama en fazla timeout kadar bekler.
func (d *Dispatcher) ShutdownWithTimeout(timeout time.Duration) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		d.logger.Warn("⚠️ event dispatcher kapanış süresi aşıldı", "timeout", timeout)
		return fmt.Errorf("events: shutdown timeout exceeded (%v)", timeout)
	}
}
