package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	configDirName  = ".zettelkasten"
	configFileName = "config.json"
	dataDirName    = "zettelkasten"
	databaseName   = "database.db"
)

// Storage backends understood by the entry point.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

var ErrNotConfigured = errors.New("zettelkasten is not configured")

// Config stores the process-level settings. The system config that users can
// edit from inside the application lives in the database instead.
type Config struct {
	Backend      string `json:"backend"`
	DatabaseURL  string `json:"database_url,omitempty"`
	GlamourStyle string `json:"glamour_style,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
	LogFile      string `json:"log_file,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Backend:      BackendSQLite,
		GlamourStyle: "dark",
	}
}

// Validate checks the backend name and the fields it depends on.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSQLite, BackendPostgres, BackendMemory)),
		validation.Field(&c.DatabaseURL, validation.When(c.Backend == BackendPostgres, validation.Required)),
		validation.Field(&c.GlamourStyle, validation.In("", "auto", "dark", "light", "notty")),
		validation.Field(&c.LogLevel, validation.In("", "debug", "info", "warn", "warning", "error")),
	)
}

// ConfigPath returns the configuration file path.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// DefaultDatabasePath returns <user data dir>/zettelkasten/database.db,
// creating the directory when needed.
func DefaultDatabasePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, dataDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return filepath.Join(dir, databaseName), nil
}

// Exists reports whether the config file exists.
func Exists() (bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the saved configuration.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates the configuration stored at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotConfigured
		}
		return Config{}, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to disk.
func Save(cfg Config) error {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(path, data, 0o600)
}

// ResolveDatabaseURL picks the database location: an explicit override (flag
// or environment) wins over the config file, and sqlite falls back to the
// default data path.
func (c Config) ResolveDatabaseURL(override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return expandHome(v)
	}
	if v := strings.TrimSpace(c.DatabaseURL); v != "" {
		return expandHome(v)
	}
	switch c.Backend {
	case BackendSQLite:
		return DefaultDatabasePath()
	case BackendMemory:
		return "", nil
	default:
		return "", fmt.Errorf("%s backend requires a database url", c.Backend)
	}
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	c.GlamourStyle = strings.ToLower(strings.TrimSpace(c.GlamourStyle))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFile = strings.TrimSpace(c.LogFile)
}

func dataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share"), nil
}

func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}
