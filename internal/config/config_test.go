package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "dibi.db", cfg.DB.DSN)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, time.Second, cfg.DB.SlowQuery)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "id", cfg.Naming.Primary)
	assert.True(t, cfg.Naming.LowerCase)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("DIBI_DB_DRIVER", "postgres")
	t.Setenv("DIBI_DB_DSN", "postgres://localhost/app")
	t.Setenv("DIBI_CACHE_TTL", "30s")
	t.Setenv("DIBI_NAMING_PRIMARY", "%s_id")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.DB.DSN)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "%s_id", cfg.TableNaming().PrimaryMask)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dibi.yaml")
	content := `
app:
  env: production
db:
  driver: mysql
  dsn: "root:secret@tcp(127.0.0.1:3306)/app"
  max_open_conns: 5
  rate_limit: 50
  substitutions:
    blog: wp_
cache:
  driver: redis
  prefix: "app:"
redis:
  port: 6380
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 50.0, cfg.DB.RateLimit)
	assert.Equal(t, map[string]string{"blog": "wp_"}, cfg.DB.Substitutions)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "json", cfg.Log.Format)

	db := cfg.Database()
	assert.Equal(t, 5, db.MaxOpenConns)
	assert.Equal(t, 25, db.MaxIdleConns)

	rc := cfg.RedisConfig()
	assert.Equal(t, "127.0.0.1:6380", rc.Addr())
	assert.Equal(t, 10, rc.PoolSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "yok.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"DIBI_DB_DRIVER": "oracle"}},
		{"dsn", map[string]string{"DIBI_DB_DSN": " "}},
		{"rate", map[string]string{"DIBI_DB_RATE_LIMIT": "-1"}},
		{"cache driver", map[string]string{"DIBI_CACHE_DRIVER": "memcached"}},
		{"cache ttl", map[string]string{"DIBI_CACHE_TTL": "0s"}},
		{"log level", map[string]string{"DIBI_LOG_LEVEL": "loud"}},
		{"log format", map[string]string{"DIBI_LOG_FORMAT": "xml"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(NewViper(), "")
			assert.Error(t, err)
		})
	}
}
