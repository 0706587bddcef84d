// Package config loads the YAML configuration of strata tools and
// opens the configured database.
//
//	database:
//	  dialect: postgres
//	  driver: pgx
//	  dsn: postgres://localhost:5432/blog?sslmode=disable
//	  max_open_conns: 10
//	schema_file: schema.yaml
//	log:
//	  level: info
//	  debug: false
//	stats:
//	  enabled: true
//	  slow_threshold: 250ms
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/schema"
)

type DatabaseConfig struct {
	Dialect      string `yaml:"dialect"`
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Debug logs every statement with its arguments.
	Debug bool `yaml:"debug"`
}

type StatsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

type Config struct {
	Database   DatabaseConfig `yaml:"database"`
	SchemaFile string         `yaml:"schema_file"`
	Log        LogConfig      `yaml:"log"`
	Stats      StatsConfig    `yaml:"stats"`

	// dir is the directory of the loaded file, relative paths resolve
	// against it.
	dir string
}

// Load reads the configuration file at path and applies the defaults.
// Environment variables in the DSN are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses a configuration document and applies the defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) normalize() error {
	c.Database.Dialect = normalizeDialect(c.Database.Dialect)
	if !dialect.Valid(c.Database.Dialect) {
		return fmt.Errorf("unsupported dialect %q", c.Database.Dialect)
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = c.Database.Dialect
	}
	if !compatible(c.Database.Dialect, c.Database.Driver) {
		return fmt.Errorf("driver %q cannot serve dialect %s", c.Database.Driver, c.Database.Dialect)
	}
	c.Database.DSN = os.ExpandEnv(c.Database.DSN)
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("max_open_conns must not be negative")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Stats.SlowThreshold == 0 {
		c.Stats.SlowThreshold = 100 * time.Millisecond
	}
	return nil
}

// SetDialect switches the configuration to the named dialect and its
// default driver.
func (c *Config) SetDialect(name string) error {
	c.Database.Dialect = name
	c.Database.Driver = ""
	return c.normalize()
}

// SchemaPath returns the path of the schema file, resolved against the
// directory of the configuration file.
func (c *Config) SchemaPath() string {
	if c.SchemaFile == "" || filepath.IsAbs(c.SchemaFile) {
		return c.SchemaFile
	}
	return filepath.Join(c.dir, c.SchemaFile)
}

// LoadSchema loads the registry of the configured schema file.
func (c *Config) LoadSchema() (*schema.Registry, error) {
	if c.SchemaFile == "" {
		return nil, fmt.Errorf("no schema_file configured")
	}
	return schema.LoadFile(c.SchemaPath())
}

func normalizeDialect(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "postgres", "postgresql", "pg", "pgx":
		return dialect.Postgres
	case "sqlite", "sqlite3":
		return dialect.SQLite
	case "mysql", "mariadb":
		return dialect.MySQL
	default:
		return name
	}
}

// compatible reports if the database/sql driver speaks the dialect.
func compatible(name, driver string) bool {
	switch name {
	case dialect.Postgres:
		return driver == "postgres" || driver == "pgx"
	case dialect.MySQL:
		return driver == "mysql"
	case dialect.SQLite:
		return driver == "sqlite"
	}
	return false
}
