package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultPort          = 8080
	defaultSQLitePath    = "slot-swapper.db"
	defaultSweepSchedule = "*/5 * * * *"
	defaultSessionTTL    = 24 * time.Hour
)

type StorageConfig struct {
	// Driver: memory | postgres | sqlite. Vacío => postgres si hay DSN, si no memory.
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`

	// DebugHeader habilita X-Debug-User-ID aunque haya sesiones (solo dev).
	DebugHeader bool `yaml:"debug_header"`
}

type IdentityConfig struct {
	// BaseURL vacío => los nombres salen del directorio local de usuarios.
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	APIKeyHeader string        `yaml:"api_key_header"`
	Timeout      time.Duration `yaml:"timeout"`
}

type SweeperConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type Config struct {
	Port     int            `yaml:"port"`
	SeedDemo bool           `yaml:"seed_demo"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Identity IdentityConfig `yaml:"identity"`
	Sweeper  SweeperConfig  `yaml:"sweeper"`
}

func Default() *Config {
	c := base()
	c.Normalize()
	return c
}

// base: los bool que arrancan en true; el resto lo completa Normalize.
func base() *Config {
	return &Config{
		Auth:    AuthConfig{DebugHeader: true},
		Sweeper: SweeperConfig{Enabled: true},
	}
}

// Normalize completa los valores vacíos con defaults.
func (c *Config) Normalize() {
	if c.Port <= 0 {
		c.Port = defaultPort
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		if strings.TrimSpace(c.Storage.DSN) != "" {
			c.Storage.Driver = DriverPostgres
		} else {
			c.Storage.Driver = DriverMemory
		}
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = defaultSQLitePath
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = defaultSessionTTL
	}
	if c.Sweeper.Schedule == "" {
		c.Sweeper.Schedule = defaultSweepSchedule
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("storage.dsn required for postgres")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load lee el YAML de path (si existe), aplica env overrides y normaliza.
// path vacío o inexistente => defaults + env.
func Load(path string) (*Config, error) {
	cfg := base()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be a number: %w", err)
		}
		c.Port = port
	}
	if v := strings.TrimSpace(getenv("DB_DSN")); v != "" {
		c.Storage.DSN = v
		if c.Storage.Driver == "" || c.Storage.Driver == DriverMemory {
			c.Storage.Driver = DriverPostgres
		}
	}
	if v := strings.TrimSpace(getenv("SQLITE_PATH")); v != "" {
		c.Storage.SQLitePath = v
		c.Storage.Driver = DriverSQLite
	}
	if v := strings.TrimSpace(getenv("STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(getenv("IDENTITY_BASE_URL")); v != "" {
		c.Identity.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("IDENTITY_API_KEY")); v != "" {
		c.Identity.APIKey = v
	}
	return nil
}
