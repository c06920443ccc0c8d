package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DATABASE_URL",
		"FACTURAS_DATABASE_URL",
		"FACTURAS_DATABASE_MAX_CONNS",
		"FACTURAS_DATABASE_MIN_CONNS",
		"FACTURAS_SERVER_PORT",
		"FACTURAS_SERVER_ALLOWED_ORIGINS",
		"FACTURAS_SERVER_MAX_BODY_BYTES",
		"FACTURAS_INVOICE_DATE_LAYOUT",
		"FACTURAS_INVOICE_FAN_OUT_LIMIT",
		"FACTURAS_LOG_LEVEL",
		"FACTURAS_LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, ":8080", cfg.Server.Addr())
		assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "02/01/2006", cfg.Invoice.DateLayout)
		assert.Equal(t, 8, cfg.Invoice.FanOutLimit)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Empty(t, cfg.Database.URL)
		assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
		assert.Zero(t, cfg.Database.MaxConns)
	})

	t.Run("loads values from environment variables with FACTURAS prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FACTURAS_SERVER_PORT", "9000")
		t.Setenv("FACTURAS_INVOICE_FAN_OUT_LIMIT", "3")
		t.Setenv("FACTURAS_LOG_FORMAT", "console")
		t.Setenv("FACTURAS_DATABASE_URL", "postgres://app@db/facturas")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, 3, cfg.Invoice.FanOutLimit)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "postgres://app@db/facturas", cfg.Database.URL)
	})

	t.Run("splits allowed origins from the environment on commas", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FACTURAS_SERVER_ALLOWED_ORIGINS", "http://a.example, http://b.example,,")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	})

	t.Run("falls back to DATABASE_URL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://legacy@db/facturas")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "postgres://legacy@db/facturas", cfg.Database.URL)
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "facturas.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "7070"
write_timeout = "5s"
allowed_origins = ["https://facturas.example", "https://admin.example"]

[invoice]
date_layout = "2006-01-02"
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, "2006-01-02", cfg.Invoice.DateLayout)
		assert.Equal(t, []string{"https://facturas.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FACTURAS_INVOICE_FAN_OUT_LIMIT", "-1")
		_, err := Load("")
		assert.ErrorContains(t, err, "fan_out_limit")

		t.Setenv("FACTURAS_INVOICE_FAN_OUT_LIMIT", "")
		t.Setenv("FACTURAS_LOG_FORMAT", "xml")
		_, err = Load("")
		assert.ErrorContains(t, err, "log.format")

		t.Setenv("FACTURAS_LOG_FORMAT", "")
		t.Setenv("FACTURAS_DATABASE_MAX_CONNS", "2")
		t.Setenv("FACTURAS_DATABASE_MIN_CONNS", "5")
		_, err = Load("")
		assert.ErrorContains(t, err, "min_conns")
	})
}
