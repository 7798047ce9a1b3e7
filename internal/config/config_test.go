package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_NAME", "APP_ENV", "APP_URL", "LOG_LEVEL", "HTTP_ADDR", "SHUTDOWN_TIMEOUT",
	"INVENTORY_API_URL", "INVENTORY_RESOURCE", "INVENTORY_TIMEOUT", "INVENTORY_LOAD_FAILURE",
	"INVENTORY_MUTATIONS", "INVENTORY_RESOLVE_BEFORE_DELETE",
	"DATABASE_URL", "DATABASE_MAX_CONNS", "DATABASE_MAX_CONN_LIFETIME", "DATABASE_MAX_CONN_IDLE_TIME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		// Setenv registers the restore; envconfig treats set-but-empty as a value.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Stock View", cfg.AppName)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "http://127.0.0.1:3000", cfg.AppURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8080", cfg.Inventory.APIURL)
	assert.Equal(t, "fruits", cfg.Inventory.Resource)
	assert.Zero(t, cfg.Inventory.Timeout)
	assert.Equal(t, LoadFailureClear, cfg.Inventory.LoadFailure)
	assert.Equal(t, MutationsConcurrent, cfg.Inventory.Mutations)
	assert.False(t, cfg.Inventory.ResolveBeforeDelete)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, cfg.Database.MaxConnIdleTime)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVENTORY_API_URL", "http://inventory.internal:9090/")
	t.Setenv("INVENTORY_RESOURCE", "/produce/")
	t.Setenv("INVENTORY_TIMEOUT", "15")
	t.Setenv("INVENTORY_LOAD_FAILURE", "KEEP")
	t.Setenv("INVENTORY_MUTATIONS", "serial")
	t.Setenv("INVENTORY_RESOLVE_BEFORE_DELETE", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "750ms")
	t.Setenv("DATABASE_URL", "postgres://localhost/stockview")
	t.Setenv("DATABASE_MAX_CONNS", "9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://inventory.internal:9090", cfg.Inventory.APIURL)
	assert.Equal(t, "produce", cfg.Inventory.Resource)
	assert.Equal(t, 15*time.Second, cfg.Inventory.Timeout)
	assert.Equal(t, LoadFailureKeep, cfg.Inventory.LoadFailure)
	assert.Equal(t, MutationsSerial, cfg.Inventory.Mutations)
	assert.True(t, cfg.Inventory.ResolveBeforeDelete)
	assert.Equal(t, 750*time.Millisecond, cfg.ShutdownTimeout)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, int32(9), cfg.Database.MaxConns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "relative app url", key: "APP_URL", value: "/relative"},
		{name: "relative inventory url", key: "INVENTORY_API_URL", value: "localhost"},
		{name: "unknown load policy", key: "INVENTORY_LOAD_FAILURE", value: "retry"},
		{name: "unknown mutation mode", key: "INVENTORY_MUTATIONS", value: "parallel"},
		{name: "bad timeout", key: "INVENTORY_TIMEOUT", value: "soon"},
		{name: "negative timeout", key: "INVENTORY_TIMEOUT", value: "-1s"},
		{name: "zero max conns", key: "DATABASE_MAX_CONNS", value: "0"},
		{name: "non-numeric max conns", key: "DATABASE_MAX_CONNS", value: "many"},
		{name: "max conns overflow", key: "DATABASE_MAX_CONNS", value: "4294967296"},
		{name: "non-boolean resolve flag", key: "INVENTORY_RESOLVE_BEFORE_DELETE", value: "sometimes"},
		{name: "zero shutdown timeout", key: "SHUTDOWN_TIMEOUT", value: "0s"},
		{name: "empty http addr", key: "HTTP_ADDR", value: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresHTTPSInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_URL", "http://stock.example.com")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("APP_URL", "https://stock.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadParsesTypedFields(t *testing.T) {
	clearEnv(t)
	t.Setenv("INVENTORY_RESOLVE_BEFORE_DELETE", "1")
	t.Setenv("DATABASE_MAX_CONNS", "12")
	t.Setenv("DATABASE_MAX_CONN_LIFETIME", "1h")
	t.Setenv("DATABASE_MAX_CONN_IDLE_TIME", "90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Inventory.ResolveBeforeDelete)
	assert.Equal(t, int32(12), cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 90*time.Second, cfg.Database.MaxConnIdleTime)
}
