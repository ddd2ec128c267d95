// -----------------------------------------------------------------------------
// CLI
// -----------------------------------------------------------------------------
// dibi komut satırı aracı. Translator, Connection ve Table facade'ını terminalden
// kullanmayı sağlar:
//
//	dibi translate "SELECT * FROM %n" users "WHERE %and" '{"active":true}'
//	dibi query --cache "SELECT * FROM users WHERE [id] = %i" 3
//	dibi exec "DELETE FROM users WHERE [id] IN (%i)" '[1,2]'
//	dibi table fetch users 3
//
// Her argüman ayrı bir translator argümanıdır. JSON olarak çözülebilen
// argümanlar (sayı, dizi, nesne, true/false/null) tipli değere çevrilir;
// nesneler kolon sırası korunarak Record olur.
// -----------------------------------------------------------------------------

package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/biyonik/dibi-go/internal/config"
	"github.com/biyonik/dibi-go/pkg/cache"
	"github.com/biyonik/dibi-go/pkg/database"
	"github.com/biyonik/dibi-go/pkg/events"
	"github.com/biyonik/dibi-go/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app, komutların paylaştığı durum.
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string
	cfg     *config.Config
	log     *slog.Logger
}

// NewRootCommand, tüm alt komutları eklenmiş kök komutu oluşturur.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper(), log: logger.Discard()}

	root := &cobra.Command{
		Use:   "dibi",
		Short: "SQL templating and database toolkit",
		Long: `dibi translates modifier-annotated SQL fragments (%s, %i, %n, %v, %a, %and ...)
into dialect-correct SQL and runs them against MySQL, PostgreSQL or SQLite.

Settings come from defaults, an optional YAML file, DIBI_* environment
variables and flags, in that order.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("driver", "", "database driver (mysql, postgres, sqlite)")
	flags.String("dsn", "", "data source name")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&a.format, "format", "o", formatTable, "output format (table, json, yaml)")

	_ = a.v.BindPFlag("db.driver", flags.Lookup("driver"))
	_ = a.v.BindPFlag("db.dsn", flags.Lookup("dsn"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		a.translateCommand(),
		a.queryCommand(),
		a.execCommand(),
		a.tableCommand(),
	)
	return root
}

// Execute, kök komutu çalıştırır. main.main tarafından çağrılır.
func Execute() error {
	return NewRootCommand().Execute()
}

// setup, config ve logger'ı hazırlar.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := validFormat(a.format); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.log.Debug("config yüklendi", "driver", cfg.DB.Driver, "env", cfg.App.Env)
	return nil
}

// connect, config'e göre bağlantıyı açar. useCache true ise yapılandırılmış
// cache driver'ı da bağlanır. Dönen fonksiyon tüm kaynakları kapatır.
func (a *app) connect(ctx context.Context, useCache bool) (*database.Connection, func(), error) {
	dispatcher := events.NewDispatcher(a.log)
	dispatcher.Subscribe([]string{events.EventCacheHit, events.EventCacheMiss}, events.ListenerFunc(func(e events.Event) error {
		info, _ := e.Payload().(events.CacheInfo)
		a.log.Debug("💾 "+e.Name(), "key", info.Key)
		return nil
	}))
	dispatcher.Listen(events.EventTransactionRollback, events.ListenerFunc(func(e events.Event) error {
		info, _ := e.Payload().(events.TransactionInfo)
		a.log.Warn("⚠️ transaction geri alındı", "id", info.ID)
		return nil
	}))

	if threshold := a.cfg.DB.SlowQuery; threshold > 0 {
		slow := events.ListenerFunc(func(e events.Event) error {
			info := e.Payload().(events.QueryInfo)
			a.log.Warn("🐢 yavaş sorgu", "sql", info.SQL, "duration", info.Duration, "threshold", threshold)
			return nil
		})
		isSlow := func(e events.Event) bool {
			info, ok := e.Payload().(events.QueryInfo)
			return ok && info.Duration >= threshold
		}
		dispatcher.Listen(events.EventQueryExecuted,
			events.NewConditionalListener(events.NewAsyncListener(dispatcher, slow), isSlow))
	}

	opts := []database.Option{
		database.WithLogger(a.log),
		database.WithDispatcher(dispatcher),
		database.WithRateLimit(a.cfg.DB.RateLimit, a.cfg.DB.RateBurst),
	}
	for name, value := range a.cfg.DB.Substitutions {
		opts = append(opts, database.WithSubstitution(name, value))
	}

	closers := []func() error{}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				a.log.Debug("kaynak kapatılamadı", logger.Error(err))
			}
		}
		if err := dispatcher.ShutdownWithTimeout(5 * time.Second); err != nil {
			a.log.Warn("⚠️ event dispatcher kapatılamadı", logger.Error(err))
		}
	}

	if useCache {
		store, closer, err := a.openCache(ctx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, closer)
		opts = append(opts, database.WithCache(store))
	}

	conn, err := database.Open(ctx, a.cfg.Database(), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, conn.Close)
	return conn, cleanup, nil
}

// openCache, cache.driver ayarına göre cache'i oluşturur.
func (a *app) openCache(ctx context.Context) (cache.Cache, func() error, error) {
	switch a.cfg.Cache.Driver {
	case "redis":
		client, err := cache.NewRedisClient(ctx, a.cfg.RedisConfig(), a.log)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, a.log, a.cfg.Cache.Prefix), client.Close, nil
	case "file":
		store, err := cache.NewFileCache(a.cfg.Cache.FileDir, a.log, 10*time.Minute)
		if err != nil {
			return nil, nil, errors.Wrap(err, "file cache açılamadı")
		}
		return store, store.Close, nil
	default:
		store := cache.NewMemoryCache(a.log, time.Minute)
		return store, store.Close, nil
	}
}

// stdout, komutun çıktı hedefi.
func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
