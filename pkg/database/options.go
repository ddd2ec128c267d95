package database

// -----------------------------------------------------------------------------
// Connection Options
// -----------------------------------------------------------------------------
// Connection davranışı With* fonksiyonları ile yapılandırılır. Hepsi
// opsiyoneldir; hiçbiri verilmezse loglama kapalı, event ve cache yok, rate
// limit yok demektir.
//
// Örnek:
//
//	conn, err := database.Open(ctx, cfg,
//	    database.WithLogger(logger),
//	    database.WithCache(cache.NewMemoryCache(logger, time.Minute)),
//	    database.WithSubstitution("prefix", "app_"),
//	)
// -----------------------------------------------------------------------------

import (
	"log/slog"

	"github.com/biyonik/dibi-go/pkg/cache"
	"github.com/biyonik/dibi-go/pkg/events"
	"golang.org/x/time/rate"
)

// Option, Connection üzerinde çalışan yapılandırma fonksiyonu.
type Option func(*Connection)

// WithLogger, sorguların ve transaction'ların loglanacağı logger'ı ayarlar.
// Sorgular Debug, hatalar Warn seviyesinde loglanır.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDispatcher, sorgu/transaction/cache event'lerinin yayınlanacağı dispatcher'ı ayarlar.
func WithDispatcher(dispatcher *events.Dispatcher) Option {
	return func(c *Connection) {
		c.dispatcher = dispatcher
	}
}

// WithCache, QueryCached tarafından kullanılacak cache'i ayarlar.
func WithCache(store cache.Cache) Option {
	return func(c *Connection) {
		c.cache = store
	}
}

// WithSubstitution, SQL parçalarındaki :name: ifadesinin yerine yazılacak değeri ayarlar.
//
// Örnek:
//
//	database.WithSubstitution("blog", "wp_")
//	conn.Query(ctx, "SELECT * FROM :blog:posts") // SELECT * FROM wp_posts
func WithSubstitution(name, value string) Option {
	return func(c *Connection) {
		c.subst[name] = value
	}
}

// WithRateLimit, saniyede en fazla qps ifade çalıştırılmasını sağlar. Limit
// aşıldığında çağrı context iptal olana kadar bekler. qps <= 0 limiti kapatır.
func WithRateLimit(qps float64, burst int) Option {
	return func(c *Connection) {
		if qps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}
