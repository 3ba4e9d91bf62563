// Package config handles loading and parsing application configuration.
// The config file path comes from (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every field can also be overridden by its env:"..." variable, which is
// how container deployments usually tune the validation policies.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing. env-default values are the policies the registration form ships
// with.
type Config struct {
	// Env controls log format. Valid values: "dev", "staging", "prod".
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// Locale selects the message catalog: "fr" or "en".
	Locale string `yaml:"locale" env:"LOCALE" env-default:"fr"`

	HTTPServer `yaml:"http_server"`

	Storage    Storage    `yaml:"storage"`
	Redis      Redis      `yaml:"redis"`
	Validation Validation `yaml:"validation"`
	FormErrors FormErrors `yaml:"form_errors"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects and configures the user store.
type Storage struct {
	// Driver is one of "sqlite", "kv" or "remote".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// Path is the SQLite .db file (driver sqlite).
	Path string `yaml:"path" env:"STORAGE_PATH"`

	// Key is the Redis key holding the user list (driver kv).
	Key string `yaml:"key" env:"STORAGE_KEY" env-default:"users"`

	// RemoteURL is the base URL of the remote collection (driver remote).
	RemoteURL string `yaml:"remote_url" env:"STORAGE_REMOTE_URL"`

	RemoteTimeout time.Duration `yaml:"remote_timeout" env:"STORAGE_REMOTE_TIMEOUT" env-default:"5s"`
}

// Redis is the shared connection used by the kv store and the redis form
// error store.
type Redis struct {
	URL string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

// Validation holds the registration policies.
type Validation struct {
	// PostalCodeFormat is "five" (12345) or "extended" (12345-6789).
	PostalCodeFormat string `yaml:"postal_code_format" env:"VALIDATION_POSTAL_CODE_FORMAT" env-default:"five"`

	// MinimumAge is the youngest accepted age in whole years. 0 disables
	// the gate.
	MinimumAge int `yaml:"minimum_age" env:"VALIDATION_MINIMUM_AGE" env-default:"18"`

	// IdentityMinLength rejects shorter names with INVALID_LENGTH. 0
	// disables the check.
	IdentityMinLength int `yaml:"identity_min_length" env:"VALIDATION_IDENTITY_MIN_LENGTH" env-default:"0"`
}

// FormErrors configures where per-field messages are mirrored.
type FormErrors struct {
	// Driver is "memory" or "redis".
	Driver string `yaml:"driver" env:"FORM_ERRORS_DRIVER" env-default:"memory"`

	// TTL is how long an idle form session's messages survive (redis only).
	TTL time.Duration `yaml:"ttl" env:"FORM_ERRORS_TTL" env-default:"24h"`
}

// ErrInvalid wraps every semantic config error returned by Load.
var ErrInvalid = errors.New("invalid config")

// Load reads the YAML file at path, applies env overrides and defaults, and
// checks the settings that depend on each other.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Locale {
	case "fr", "en":
	default:
		return fmt.Errorf("%w: locale %q", ErrInvalid, c.Locale)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for driver sqlite", ErrInvalid)
		}
	case "kv":
	case "remote":
		if c.Storage.RemoteURL == "" {
			return fmt.Errorf("%w: storage.remote_url is required for driver remote", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: storage.driver %q", ErrInvalid, c.Storage.Driver)
	}

	switch c.FormErrors.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: form_errors.driver %q", ErrInvalid, c.FormErrors.Driver)
	}

	if c.Validation.MinimumAge < 0 {
		return fmt.Errorf("%w: validation.minimum_age must not be negative", ErrInvalid)
	}
	if c.Validation.IdentityMinLength < 0 {
		return fmt.Errorf("%w: validation.identity_min_length must not be negative", ErrInvalid)
	}

	return nil
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Storage.Driver == "kv" || c.FormErrors.Driver == "redis"
}

// MustLoad reads, validates, and returns the application config.
//
// Functions prefixed with "Must" are allowed to exit on failure: if this
// returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/registration-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
