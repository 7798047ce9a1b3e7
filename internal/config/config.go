package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	LoadFailureClear = "clear"
	LoadFailureKeep  = "keep"

	MutationsConcurrent = "concurrent"
	MutationsSerial     = "serial"
)

type Config struct {
	AppName         string
	AppEnv          string
	AppURL          string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	Inventory       InventoryConfig
	Database        DatabaseConfig
}

type InventoryConfig struct {
	APIURL   string
	Resource string
	// Timeout of zero leaves remote calls unbounded.
	Timeout             time.Duration
	LoadFailure         string
	Mutations           string
	ResolveBeforeDelete bool
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database was configured. The journal is
// optional; without it mutation outcomes only reach the log.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// duration accepts Go duration syntax or a bare number of seconds.
type duration time.Duration

func (d *duration) Decode(value string) error {
	parsed, err := parseDuration(value)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

type env struct {
	AppName         string   `envconfig:"APP_NAME" default:"Stock View"`
	AppEnv          string   `envconfig:"APP_ENV" default:"development"`
	AppURL          string   `envconfig:"APP_URL" default:"http://127.0.0.1:3000"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr        string   `envconfig:"HTTP_ADDR" default:":3000"`
	ShutdownTimeout duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	InventoryAPIURL              string   `envconfig:"INVENTORY_API_URL" default:"http://localhost:8080"`
	InventoryResource            string   `envconfig:"INVENTORY_RESOURCE" default:"fruits"`
	InventoryTimeout             duration `envconfig:"INVENTORY_TIMEOUT"`
	InventoryLoadFailure         string   `envconfig:"INVENTORY_LOAD_FAILURE" default:"clear"`
	InventoryMutations           string   `envconfig:"INVENTORY_MUTATIONS" default:"concurrent"`
	InventoryResolveBeforeDelete bool     `envconfig:"INVENTORY_RESOLVE_BEFORE_DELETE"`

	DatabaseURL             string   `envconfig:"DATABASE_URL"`
	DatabaseMaxConns        int32    `envconfig:"DATABASE_MAX_CONNS" default:"4"`
	DatabaseMaxConnLifetime duration `envconfig:"DATABASE_MAX_CONN_LIFETIME" default:"30m"`
	DatabaseMaxConnIdleTime duration `envconfig:"DATABASE_MAX_CONN_IDLE_TIME" default:"5m"`
}

// Load reads the environment. Unset keys take the defaults above; the
// rest is normalized and checked here.
func Load() (Config, error) {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	cfg := Config{
		AppName:         strings.TrimSpace(e.AppName),
		AppEnv:          strings.TrimSpace(e.AppEnv),
		LogLevel:        strings.ToLower(strings.TrimSpace(e.LogLevel)),
		HTTPAddr:        strings.TrimSpace(e.HTTPAddr),
		ShutdownTimeout: time.Duration(e.ShutdownTimeout),
		Inventory: InventoryConfig{
			Resource:            strings.Trim(strings.TrimSpace(e.InventoryResource), "/"),
			Timeout:             time.Duration(e.InventoryTimeout),
			LoadFailure:         strings.ToLower(strings.TrimSpace(e.InventoryLoadFailure)),
			Mutations:           strings.ToLower(strings.TrimSpace(e.InventoryMutations)),
			ResolveBeforeDelete: e.InventoryResolveBeforeDelete,
		},
		Database: DatabaseConfig{
			URL:             strings.TrimSpace(e.DatabaseURL),
			MaxConns:        e.DatabaseMaxConns,
			MaxConnLifetime: time.Duration(e.DatabaseMaxConnLifetime),
			MaxConnIdleTime: time.Duration(e.DatabaseMaxConnIdleTime),
		},
	}

	appURL, err := url.Parse(strings.TrimSpace(e.AppURL))
	if err != nil || appURL.Scheme == "" || appURL.Host == "" {
		return Config{}, errors.New("APP_URL must be a valid absolute URL")
	}
	if cfg.IsProduction() && !strings.EqualFold(appURL.Scheme, "https") {
		return Config{}, errors.New("APP_URL must use https in production")
	}
	cfg.AppURL = appURL.String()

	apiURL, err := url.Parse(strings.TrimSpace(e.InventoryAPIURL))
	if err != nil || apiURL.Scheme == "" || apiURL.Host == "" {
		return Config{}, errors.New("INVENTORY_API_URL must be a valid absolute URL")
	}
	cfg.Inventory.APIURL = strings.TrimRight(apiURL.String(), "/")

	if cfg.HTTPAddr == "" {
		return Config{}, errors.New("HTTP_ADDR must not be empty")
	}
	if cfg.Inventory.Resource == "" {
		return Config{}, errors.New("INVENTORY_RESOURCE must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.Inventory.Timeout < 0 {
		return Config{}, errors.New("INVENTORY_TIMEOUT must not be negative")
	}
	switch cfg.Inventory.LoadFailure {
	case LoadFailureClear, LoadFailureKeep:
	default:
		return Config{}, fmt.Errorf("INVENTORY_LOAD_FAILURE must be %q or %q (got %q)", LoadFailureClear, LoadFailureKeep, cfg.Inventory.LoadFailure)
	}
	switch cfg.Inventory.Mutations {
	case MutationsConcurrent, MutationsSerial:
	default:
		return Config{}, fmt.Errorf("INVENTORY_MUTATIONS must be %q or %q (got %q)", MutationsConcurrent, MutationsSerial, cfg.Inventory.Mutations)
	}
	if cfg.Database.MaxConns <= 0 {
		return Config{}, errors.New("DATABASE_MAX_CONNS must be a positive integer")
	}

	return cfg, nil
}

func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
