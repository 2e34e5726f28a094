package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "pantry"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names shared with tests and deploy tooling.
const (
	EnvAppEnv      = "PANTRY_APP_ENV"
	EnvPort        = "PANTRY_APP_PORT"
	EnvStoreDriver = "PANTRY_STORE_DRIVER"
	EnvStorePath   = "PANTRY_STORE_PATH"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Barcode BarcodeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PANTRY_APP_ENV" default:"development"`
	Port         string `envconfig:"PANTRY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PANTRY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PANTRY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects and configures the durable snapshot store.
type StoreConfig struct {
	Driver string `envconfig:"PANTRY_STORE_DRIVER" default:"file"`
	Path   string `envconfig:"PANTRY_STORE_PATH" default:"pantry-state.json"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case "file", "sqlite", "memory":
		return nil
	default:
		return fmt.Errorf("unsupported store driver %q", s.Driver)
	}
}

// BarcodeConfig points at the external product-metadata lookup service.
type BarcodeConfig struct {
	BaseURL   string        `envconfig:"PANTRY_BARCODE_BASE_URL" default:"https://world.openfoodfacts.org"`
	Timeout   time.Duration `envconfig:"PANTRY_BARCODE_TIMEOUT" default:"5s"`
	UserAgent string        `envconfig:"PANTRY_BARCODE_USER_AGENT" default:"pantry-backend/1.0"`
}
