// Package config loads the server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvDSN overrides the Postgres DSN from the file.
const EnvDSN = "CALENDAR_DSN"

// Store backends.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config is the top-level server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// GRPCAddr enables the gRPC health listener when non-empty.
	GRPCAddr string `yaml:"grpc_addr"`
	// TLSCert and TLSKey switch both listeners to TLS when set together.
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
	// HealthSchedule is the cron spec of the store probe behind gRPC health.
	HealthSchedule string `yaml:"health_schedule"`

	Store      string `yaml:"store"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`

	// Timezone is the IANA zone used for day boundaries (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Dev enables development logging and gRPC reflection.
	Dev bool `yaml:"dev"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		Store:           StoreMemory,
		SQLitePath:      "data/calendar.db",
		Timezone:        "UTC",
		HealthSchedule:  "@every 15s",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.SQLitePath == "" {
		c.SQLitePath = d.SQLitePath
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.HealthSchedule == "" {
		c.HealthSchedule = d.HealthSchedule
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DSN == "" {
			return fmt.Errorf("store %q requires dsn or %s", c.Store, EnvDSN)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// TLS reports whether certificate files are configured.
func (c *Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the YAML file at path. An empty path or a missing file yields
// the defaults. The environment override is applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			cfg = &Config{}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		cfg.DSN = dsn
	}
	cfg.Normalize()
	return cfg, nil
}
