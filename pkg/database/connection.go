// -----------------------------------------------------------------------------
// Database Package
// -----------------------------------------------------------------------------
// Bu dosya, uygulamanın veritabanına bağlanmasını ve sorguların çalıştırılmasını
// sağlayan Connection tipini içerir.
//
// Connection; bir *sql.DB havuzunu, SQL lehçesini (Dialect) ve opsiyonel
// altyapıyı (logger, event dispatcher, cache, rate limiter) bir arada tutar.
// Tüm sorgular translator'dan geçer, ardından aynı çalıştırma yolunu kullanır:
//
//	rate limit -> uuid -> çalıştır -> hata çevirisi -> log -> event
//
// Örnek kullanım:
//
//	conn, err := database.Open(ctx, database.DefaultConfig("sqlite", "app.db"))
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	res, err := conn.Query(ctx, "SELECT * FROM %n", "users", "WHERE [active] = %b", true)
// -----------------------------------------------------------------------------

package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/biyonik/dibi-go/pkg/cache"
	"github.com/biyonik/dibi-go/pkg/events"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func init() {
	gob.Register(time.Time{})
}

// Config, bağlantı ve havuz ayarları.
type Config struct {
	Driver          string        // mysql, postgres, sqlite (bkz. DialectFor)
	DSN             string        // Sürücüye özgü bağlantı dizesi
	MaxOpenConns    int           // Maksimum açık bağlantı sayısı
	MaxIdleConns    int           // Maksimum idle bağlantı sayısı
	ConnMaxLifetime time.Duration // Bağlantı ömrü
	ConnMaxIdleTime time.Duration // Idle bağlantı ömrü (0 = sınırsız)
}

// DefaultConfig, havuz ayarları doldurulmuş bir Config döndürür.
func DefaultConfig(driver, dsn string) Config {
	return Config{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Connection, veritabanı bağlantısı.
//
// Eşzamanlı kullanım için güvenlidir. InsertID ve AffectedRows, bu
// Connection üzerinden yapılan son Exec çağrısını yansıtır.
type Connection struct {
	db         *sql.DB
	dialect    Dialect
	logger     *slog.Logger
	dispatcher *events.Dispatcher
	cache      cache.Cache
	subst      map[string]string
	limiter    *rate.Limiter
	capture    *ErrorCapture

	mu   sync.Mutex
	last ExecResult
}

// Open, Config ile veritabanına bağlanır.
// Bağlantı sırasında şu adımlar gerçekleştirilir:
//  1. Sürücü adından Dialect seçilir.
//  2. Havuz, sürücü uyarılarını ErrorCapture'a yönlendirecek şekilde açılır.
//  3. Havuz ayarları uygulanır.
//  4. Ping ile veritabanının ulaşılabilirliği kontrol edilir.
//  5. Hata varsa havuz kapatılır ve yakalanan uyarı hata mesajına eklenir.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Connection, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	capture := NewErrorCapture()
	db, err := dialect.OpenDB(cfg.DSN, capture.Handler())
	if err != nil {
		return nil, NewDriverError(err.Error(), 0, "", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	conn := New(db, dialect, opts...)
	conn.capture = capture

	conn.logger.Info("Veritabanına bağlanılıyor...", "driver", dialect.Name())

	capture.Try()
	err = db.PingContext(ctx)
	warning, warned := capture.Catch()
	if err != nil {
		db.Close()
		translated := dialect.TranslateError(err, "")
		if warned {
			return nil, NewDriverError(translated.Error()+": "+warning, 0, "", translated)
		}
		return nil, translated
	}
	if warned {
		conn.logger.Warn("⚠️ bağlantı uyarısı", "message", warning)
	}

	conn.logger.Info("✅ Veritabanı bağlantısı başarılı!", "driver", dialect.Name())
	return conn, nil
}

// New, hazır bir *sql.DB havuzunu Connection olarak sarar. Havuzun sahipliği
// Connection'a geçer; Close havuzu kapatır.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Connection {
	c := &Connection{
		db:      db,
		dialect: dialect,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		subst:   make(map[string]string),
		capture: NewErrorCapture(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DB, alttaki *sql.DB havuzunu döndürür.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Dialect, bağlantının SQL lehçesini döndürür.
func (c *Connection) Dialect() Dialect {
	return c.dialect
}

// ErrorCapture, bağlantıya ait ErrorCapture'ı döndürür.
func (c *Connection) ErrorCapture() *ErrorCapture {
	return c.capture
}

// Translate, argüman listesini parametreli SQL'e çevirir (çalıştırmaz).
func (c *Connection) Translate(args ...any) (string, []any, error) {
	return Translate(c.dialect, c.subst, args...)
}

// TestSQL, argüman listesini değerleri gömülü SQL olarak döndürür. Sorgu
// çalıştırılmaz.
//
// Örnek:
//
//	sql, _ := conn.TestSQL("SELECT * FROM %n", "users", "WHERE [id] = %i", 5)
//	// SELECT * FROM `users` WHERE `id` = 5
func (c *Connection) TestSQL(args ...any) (string, error) {
	return TranslateLiteral(c.dialect, c.subst, args...)
}

// Query, argüman listesini çevirir ve satır döndüren sorgu olarak çalıştırır.
//
// Örnek:
//
//	res, err := conn.Query(ctx, "SELECT * FROM %n", "users", "WHERE %and", database.NewRecord("active", true))
//	rows, err := res.FetchAll()
func (c *Connection) Query(ctx context.Context, args ...any) (*Result, error) {
	query, bound, err := c.Translate(args...)
	if err != nil {
		return nil, err
	}
	return c.query(ctx, c.db, "", query, bound)
}

// Exec, argüman listesini çevirir ve satır döndürmeyen ifade olarak çalıştırır.
//
// Örnek:
//
//	res, err := conn.Exec(ctx, "INSERT INTO %n", "users", database.NewRecord("name", "Ada"))
//	id, err := res.InsertID()
func (c *Connection) Exec(ctx context.Context, args ...any) (ExecResult, error) {
	query, bound, err := c.Translate(args...)
	if err != nil {
		return ExecResult{}, err
	}
	return c.exec(ctx, c.db, "", query, bound)
}

// InsertID, bu bağlantı üzerinden yapılan son Exec'in insert id'sini döndürür.
func (c *Connection) InsertID() (int64, error) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	return last.InsertID()
}

// AffectedRows, bu bağlantı üzerinden yapılan son Exec'in etkilediği satır
// sayısını döndürür.
func (c *Connection) AffectedRows() (int64, error) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	return last.AffectedRows()
}

// cachedRows, cache'e yazılan sonuç.
type cachedRows struct {
	Columns []string
	Rows    [][]any
}

// QueryCached, sorgu sonucunu cache'ten okur; yoksa sorguyu çalıştırır ve
// sonucu ttl süresiyle cache'e yazar. Cache ayarlı değilse Query gibi davranır.
//
// Anahtar; lehçe adı, çevrilmiş SQL ve bağlanan değerlerden üretilir. Cache
// okuma/yazma hataları sorguyu engellemez, sadece loglanır.
//
// Örnek:
//
//	res, err := conn.QueryCached(ctx, time.Minute, "SELECT * FROM %n", "countries")
func (c *Connection) QueryCached(ctx context.Context, ttl time.Duration, args ...any) (*Result, error) {
	if c.cache == nil {
		return c.Query(ctx, args...)
	}

	query, bound, err := c.Translate(args...)
	if err != nil {
		return nil, err
	}
	key := cache.Key(c.dialect.Name(), query, boundKey(bound))

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("⚠️ cache okuma hatası", "key", key, "error", err)
	}
	if data != nil {
		var cached cachedRows
		err := gob.NewDecoder(bytes.NewReader(data)).Decode(&cached)
		if err == nil {
			c.dispatch(events.NewCacheEvent(true, key, query))
			c.logger.Debug("cache isabeti", "key", key)
			res := newBufferedResult(cached.Columns, cached.Rows)
			res.sql = query
			return res, nil
		}
		c.logger.Warn("⚠️ bozuk cache kaydı", "key", key, "error", err)
	}
	c.dispatch(events.NewCacheEvent(false, key, query))

	res, err := c.query(ctx, c.db, "", query, bound)
	if err != nil {
		return nil, err
	}
	columns := res.Columns()
	rows, err := res.buffer()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cachedRows{Columns: columns, Rows: rows}); err != nil {
		c.logger.Warn("⚠️ sonuç cache'lenemedi", "key", key, "error", err)
	} else if err := c.cache.Set(ctx, key, buf.Bytes(), ttl); err != nil {
		c.logger.Warn("⚠️ cache yazma hatası", "key", key, "error", err)
	}

	buffered := newBufferedResult(columns, rows)
	buffered.sql = query
	return buffered, nil
}

func boundKey(bound []any) string {
	var b strings.Builder
	for _, v := range bound {
		fmt.Fprintf(&b, "%T:%v;", v, v)
	}
	return b.String()
}

// Call, stored procedure'ü çağırır. Procedure içinden yükselen hatalar
// KindProcedure olarak döner.
//
// MySQL ve PostgreSQL'de CALL kullanılır; SQLite procedure desteklemez.
//
// Örnek:
//
//	res, err := conn.Call(ctx, "close_order", 42, "shipped")
func (c *Connection) Call(ctx context.Context, procedure string, args ...any) (*Result, error) {
	if c.dialect.Name() == "sqlite" {
		return nil, NotSupported("dibi: stored procedures are not supported by sqlite")
	}
	if args == nil {
		args = []any{}
	}
	return c.Query(ctx, "CALL %n", procedure, "%l", args)
}

// Begin, yeni bir transaction başlatır. Dönen Transaction mutlaka Commit veya
// Rollback ile sonlandırılmalıdır.
func (c *Connection) Begin(ctx context.Context) (*Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, c.dialect.TranslateError(err, "")
	}

	t := &Transaction{conn: c, tx: tx, id: uuid.NewString()}
	c.logger.Debug("🔄 Transaction başladı.", "tx", t.id)
	c.dispatch(events.NewTransactionEvent(events.EventTransactionBegin, t.id, nil))
	return t, nil
}

// Transaction, fn'i bir transaction içinde çalıştırır. fn hata döndürürse
// veya panic olursa transaction geri alınır, aksi halde commit edilir.
//
// Örnek:
//
//	err := conn.Transaction(ctx, func(tx *database.Transaction) error {
//	    if _, err := tx.Exec(ctx, "UPDATE %n", "accounts", "SET [balance] = [balance] - %i", 10); err != nil {
//	        return err
//	    }
//	    _, err := tx.Exec(ctx, "INSERT INTO %n", "ledger", entry)
//	    return err
//	})
func (c *Connection) Transaction(ctx context.Context, fn func(tx *Transaction) error) (err error) {
	tx, err := c.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Warn("❌ rollback hatası", "tx", tx.id, "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}

// Capture, fn'i çalıştırır ve bu sırada sürücünün bildirdiği ilk
// uyarıyı döndürür.
//
// Döndürür:
//   - string: Yakalanan uyarı (yoksa boş)
//   - bool: Uyarı yakalandıysa true
//   - error: fn'in döndürdüğü hata
func (c *Connection) Capture(fn func() error) (string, bool, error) {
	c.capture.Try()
	err := fn()
	msg, ok := c.capture.Catch()
	return msg, ok, err
}

// Ping, veritabanının ulaşılabilir olduğunu kontrol eder.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return c.dialect.TranslateError(err, "")
	}
	return nil
}

// Stats, havuz istatistiklerini döndürür.
func (c *Connection) Stats() sql.DBStats {
	return c.db.Stats()
}

// Close, havuzu kapatır.
func (c *Connection) Close() error {
	if err := c.db.Close(); err != nil {
		c.logger.Warn("❌ Veritabanı kapatma hatası", "error", err)
		return err
	}
	c.logger.Info("✅ Veritabanı bağlantısı kapatıldı")
	return nil
}

// wait, rate limiter ayarlıysa izin gelene kadar bekler.
func (c *Connection) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Connection) query(ctx context.Context, q QueryExecutor, txID, query string, bound []any) (*Result, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, bound...)
	if err != nil {
		err = c.dialect.TranslateError(err, query)
		c.observe(id, txID, query, bound, time.Since(start), err)
		return nil, err
	}

	res, err := newRowsResult(rows, c.dialect, query)
	c.observe(id, txID, query, bound, time.Since(start), err)
	return res, err
}

func (c *Connection) exec(ctx context.Context, q QueryExecutor, txID, query string, bound []any) (ExecResult, error) {
	if err := c.wait(ctx); err != nil {
		return ExecResult{}, err
	}

	id := uuid.NewString()
	start := time.Now()
	res, err := q.ExecContext(ctx, query, bound...)
	if err != nil {
		err = c.dialect.TranslateError(err, query)
	}
	c.observe(id, txID, query, bound, time.Since(start), err)
	if err != nil {
		return ExecResult{}, err
	}

	result := ExecResult{result: res, dialect: c.dialect}
	c.mu.Lock()
	c.last = result
	c.mu.Unlock()
	return result, nil
}

// observe, çalışan ifadeyi loglar ve query event'ini yayınlar.
func (c *Connection) observe(id, txID, query string, bound []any, elapsed time.Duration, err error) {
	attrs := []any{"id", id, "sql", query, "args", len(bound), "duration", elapsed}
	if txID != "" {
		attrs = append(attrs, "tx", txID)
	}
	if err != nil {
		c.logger.Warn("❌ sorgu hatası", append(attrs, "error", err)...)
	} else {
		c.logger.Debug("sorgu çalıştı", attrs...)
	}

	c.dispatch(events.NewQueryEvent(events.QueryInfo{
		ID:            id,
		TransactionID: txID,
		SQL:           query,
		Args:          bound,
		Duration:      elapsed,
		Err:           err,
	}))
}

func (c *Connection) dispatch(event events.Event) {
	if c.dispatcher == nil {
		return
	}
	if err := c.dispatcher.Dispatch(event); err != nil {
		c.logger.Debug("event listener hatası", "event", event.Name(), "error", err)
	}
}
