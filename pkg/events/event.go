// -----------------------------------------------------------------------------
// Event System
// -----------------------------------------------------------------------------
// Veritabanı katmanında olup bitenleri (sorgu çalıştı, sorgu hata verdi,
// transaction başladı/bitti, cache isabeti) dinleyicilere bildirmek için
// kullanılan basit observer altyapısı.
//
// Connection her SQL ifadesinden sonra "query.executed" veya "query.failed"
// event'i yayınlar. Dinleyiciler bu event'lerle yavaş sorgu loglama, metrik
// toplama veya audit gibi işleri çekirdek koda dokunmadan yapabilir.
//
// Örnek:
//
//	dispatcher := events.NewDispatcher(logger)
//	dispatcher.Listen(events.EventQueryFailed, events.ListenerFunc(func(e events.Event) error {
//	    info := e.Payload().(events.QueryInfo)
//	    log.Printf("sorgu hatası: %v", info.Err)
//	    return nil
//	}))
// -----------------------------------------------------------------------------

package events

import (
	"time"
)

// Event, sistemdeki tüm event'lerin implement etmesi gereken interface.
type Event interface {
	// Name, event'in benzersiz adını döndürür (örn: "query.executed").
	Name() string

	// OccurredAt, event'in oluştuğu zamanı döndürür.
	OccurredAt() time.Time

	// Payload, event verisini döndürür.
	Payload() any
}

// BaseEvent, tüm event'ler için temel implementasyon.
type BaseEvent struct {
	name       string
	occurredAt time.Time
	payload    any
}

// NewBaseEvent, yeni bir event oluşturur.
func NewBaseEvent(name string, payload any) *BaseEvent {
	return &BaseEvent{
		name:       name,
		occurredAt: time.Now(),
		payload:    payload,
	}
}

func (e *BaseEvent) Name() string {
	return e.name
}

func (e *BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e *BaseEvent) Payload() any {
	return e.payload
}

// Event adları
const (
	EventQueryExecuted = "query.executed"
	EventQueryFailed   = "query.failed"

	EventTransactionBegin    = "transaction.begin"
	EventTransactionCommit   = "transaction.commit"
	EventTransactionRollback = "transaction.rollback"

	EventCacheHit  = "cache.hit"
	EventCacheMiss = "cache.miss"
)

// Wildcard, tüm event'leri dinlemek için kullanılan ad.
const Wildcard = "*"

// QueryInfo, sorgu event'lerinin payload'ı.
type QueryInfo struct {
	ID            string        // Sorgu kimliği (uuid)
	TransactionID string        // Transaction içindeyse transaction kimliği
	SQL           string        // Çalıştırılan SQL
	Args          []any         // Bağlanan değerler
	Duration      time.Duration // Çalışma süresi
	Err           error         // Hata (query.failed için)
}

// TransactionInfo, transaction event'lerinin payload'ı.
type TransactionInfo struct {
	ID  string
	Err error
}

// CacheInfo, cache event'lerinin payload'ı.
type CacheInfo struct {
	Key string
	SQL string
}

// NewQueryEvent, sorgu sonucuna göre query.executed veya query.failed event'i oluşturur.
func NewQueryEvent(info QueryInfo) Event {
	if info.Err != nil {
		return NewBaseEvent(EventQueryFailed, info)
	}
	return NewBaseEvent(EventQueryExecuted, info)
}

// NewTransactionEvent, transaction event'i oluşturur.
func NewTransactionEvent(name, id string, err error) Event {
	return NewBaseEvent(name, TransactionInfo{ID: id, Err: err})
}

// NewCacheEvent, cache hit/miss event'i oluşturur.
func NewCacheEvent(hit bool, key, sql string) Event {
	name := EventCacheMiss
	if hit {
		name = EventCacheHit
	}
	return NewBaseEvent(name, CacheInfo{Key: key, SQL: sql})
}
