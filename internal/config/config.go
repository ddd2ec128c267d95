// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, dibi CLI'ının merkezi konfigürasyon yönetimini sağlar. Ayarlar
// sırasıyla varsayılan değerlerden, opsiyonel YAML dosyasından, DIBI_ önekli
// ortam değişkenlerinden ve komut satırı flag'lerinden okunur (sonraki
// öncekini ezer).
//
// Ortam değişkeni adları anahtar yolundan türetilir:
//
//	db.driver        -> DIBI_DB_DRIVER
//	cache.ttl        -> DIBI_CACHE_TTL
//	naming.primary   -> DIBI_NAMING_PRIMARY
// -----------------------------------------------------------------------------

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/biyonik/dibi-go/pkg/cache"
	"github.com/biyonik/dibi-go/pkg/database"
	"github.com/biyonik/dibi-go/pkg/logger"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix, ortam değişkenlerinin öneki.
const EnvPrefix = "DIBI"

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - App: Uygulama genel ayarları
//   - DB: Veritabanı bağlantısı ve havuz ayarları
//   - Redis: Redis bağlantı ayarları (cache.driver=redis)
//   - Cache: Sorgu sonucu cache ayarları
//   - Log: Log seviyesi ve formatı
//   - Naming: Table facade isimlendirme kuralları
type Config struct {
	App struct {
		Name string `mapstructure:"name"` // Uygulama adı
		Env  string `mapstructure:"env"`  // Ortam (development, production, test)
	} `mapstructure:"app"`

	DB struct {
		Driver          string            `mapstructure:"driver"`             // mysql, postgres, sqlite
		DSN             string            `mapstructure:"dsn"`                // Bağlantı string'i
		MaxOpenConns    int               `mapstructure:"max_open_conns"`     // Maksimum açık bağlantı
		MaxIdleConns    int               `mapstructure:"max_idle_conns"`     // Maksimum boşta bağlantı
		ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`  // Bağlantı ömrü
		ConnMaxIdleTime time.Duration     `mapstructure:"conn_max_idle_time"` // Boşta kalma süresi
		RateLimit       float64           `mapstructure:"rate_limit"`         // Saniyedeki ifade sayısı (0: sınırsız)
		RateBurst       int               `mapstructure:"rate_burst"`         // Anlık izin sayısı
		SlowQuery       time.Duration     `mapstructure:"slow_query"`         // Bu süreden uzun sorgular uyarı olarak loglanır (0: kapalı)
		Substitutions   map[string]string `mapstructure:"substitutions"`      // :name: yer değiştirmeleri
	} `mapstructure:"db"`

	Redis struct {
		Host     string `mapstructure:"host"`     // Redis host adresi
		Port     int    `mapstructure:"port"`     // Redis port
		Password string `mapstructure:"password"` // Redis şifresi (opsiyonel)
		DB       int    `mapstructure:"db"`       // Database numarası (0-15)
	} `mapstructure:"redis"`

	Cache struct {
		Driver  string        `mapstructure:"driver"` // memory, redis, file
		Prefix  string        `mapstructure:"prefix"` // Redis key öneki
		FileDir string        `mapstructure:"dir"`    // File cache dizini
		TTL     time.Duration `mapstructure:"ttl"`    // Varsayılan sonuç ömrü
	} `mapstructure:"cache"`

	Log struct {
		Level  string `mapstructure:"level"`  // debug, info, warn, error
		Format string `mapstructure:"format"` // text, json
	} `mapstructure:"log"`

	Naming struct {
		Primary   string `mapstructure:"primary"`    // Primary key maskesi (%p, %s)
		LowerCase bool   `mapstructure:"lower_case"` // Tablo adları küçük harfe çevrilsin mi
	} `mapstructure:"naming"`
}

// NewViper, varsayılan değerleri ve ortam değişkeni eşlemesini kurulmuş
// bir viper örneği döndürür. CLI flag'lerini bu örneğe bağlar.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("app.name", "dibi")
	v.SetDefault("app.env", "development")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "dibi.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 25)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db.conn_max_idle_time", time.Duration(0))
	v.SetDefault("db.rate_limit", 0.0)
	v.SetDefault("db.rate_burst", 1)
	v.SetDefault("db.slow_query", time.Second)
	v.SetDefault("db.substitutions", map[string]string{})

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "dibi:")
	v.SetDefault("cache.dir", "./storage/cache")
	v.SetDefault("cache.ttl", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatText)

	v.SetDefault("naming.primary", "id")
	v.SetDefault("naming.lower_case", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load, opsiyonel YAML dosyasını okuyup Config nesnesini döndürür.
//
// Parametreler:
//   - v: NewViper ile oluşturulmuş (ve flag'leri bağlanmış) viper örneği
//   - file: YAML dosya yolu; boşsa sadece varsayılanlar ve ortam kullanılır
//
// Döndürür:
//   - *Config: Doğrulanmış yapılandırma
//   - error: Dosya okunamazsa veya değerler geçersizse
//
// Örnek:
//
//	cfg, err := config.Load(config.NewViper(), "dibi.yaml")
//	if err != nil {
//	    return err
//	}
//	log.Printf("Driver: %s", cfg.DB.Driver)
func Load(v *viper.Viper, file string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config dosyası okunamadı: %s", file)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config çözümlenemedi")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
//
// Döndürür:
//   - error: Validation hatası (varsa)
func (c *Config) Validate() error {
	if _, err := database.DialectFor(c.DB.Driver); err != nil {
		return fmt.Errorf("geçersiz DIBI_DB_DRIVER: %s (mysql, postgres veya sqlite olmalı)", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("DIBI_DB_DSN boş olamaz")
	}
	if c.DB.RateLimit < 0 {
		return fmt.Errorf("DIBI_DB_RATE_LIMIT negatif olamaz")
	}

	validDrivers := map[string]bool{
		"redis":  true,
		"file":   true,
		"memory": true,
	}
	if !validDrivers[c.Cache.Driver] {
		return fmt.Errorf("geçersiz DIBI_CACHE_DRIVER: %s (redis, file veya memory olmalı)", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("DIBI_CACHE_TTL pozitif olmalı")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != logger.FormatText && c.Log.Format != logger.FormatJSON {
		return fmt.Errorf("geçersiz DIBI_LOG_FORMAT: %s (text veya json olmalı)", c.Log.Format)
	}

	if c.IsProduction() && c.Cache.Driver == "memory" {
		slog.Warn("⚠️  UYARI: Memory cache production ortamı için önerilmez!")
	}
	return nil
}

// IsProduction, uygulamanın production ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Database, bağlantı havuzu ayarlarını database.Config'e çevirir.
func (c *Config) Database() database.Config {
	cfg := database.DefaultConfig(c.DB.Driver, c.DB.DSN)
	cfg.MaxOpenConns = c.DB.MaxOpenConns
	cfg.MaxIdleConns = c.DB.MaxIdleConns
	cfg.ConnMaxLifetime = c.DB.ConnMaxLifetime
	cfg.ConnMaxIdleTime = c.DB.ConnMaxIdleTime
	return cfg
}

// RedisConfig, Redis ayarlarını cache.RedisConfig'e çevirir.
func (c *Config) RedisConfig() cache.RedisConfig {
	rc := cache.DefaultRedisConfig()
	rc.Host = c.Redis.Host
	rc.Port = c.Redis.Port
	rc.Password = c.Redis.Password
	rc.DB = c.Redis.DB
	return rc
}

// TableNaming, Table facade isimlendirme kurallarını döndürür.
func (c *Config) TableNaming() database.Naming {
	return database.Naming{PrimaryMask: c.Naming.Primary, LowerCase: c.Naming.LowerCase}
}
