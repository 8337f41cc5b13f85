package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds application configuration.
type Config struct {
	// Server settings
	ListenAddr string `toml:"listen_addr"`
	LogLevel   string `toml:"log_level"`

	// User is the account all data is scoped under. Single-user
	// deployments leave this at the default.
	User string `toml:"user"`

	// DataDirectory is the root for the file store and the SQLite
	// database file.
	DataDirectory string `toml:"data_directory"`

	Store     StoreConfig     `toml:"store"`
	Ratios    RatioConfig     `toml:"ratios"`
	Recompute RecomputeConfig `toml:"recompute"`
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	// Backend is "file" (encrypted JSON documents) or "sqlite".
	Backend string `toml:"backend"`

	// SQLitePath overrides the database location for the sqlite
	// backend. Empty means <data_directory>/budgeteer.db.
	SQLitePath string `toml:"sqlite_path"`
}

// RatioConfig sets the default budget split used when no category
// carries an explicit percentage. Values are percentages of income.
type RatioConfig struct {
	Essentials float64 `toml:"essentials"`
	Wants      float64 `toml:"wants"`
	Savings    float64 `toml:"savings"`
}

// RecomputeConfig controls the background goal-progress recompute.
type RecomputeConfig struct {
	Enabled bool `toml:"enabled"`
	// Schedule is a cron expression or descriptor such as "@hourly".
	Schedule string `toml:"schedule"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	// Get working directory
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:    ":8080",
		LogLevel:      "info",
		User:          "default",
		DataDirectory: filepath.Join(wd, "data"),
		Store: StoreConfig{
			Backend: "file",
		},
		Ratios: RatioConfig{
			Essentials: 50,
			Wants:      30,
			Savings:    20,
		},
		Recompute: RecomputeConfig{
			Enabled:  true,
			Schedule: "@hourly",
		},
	}
}

// Load builds the effective configuration: defaults, then the TOML
// config file when present, then BUDGETEER_* environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("BUDGETEER_CONFIG")
	if path == "" {
		path = "budgeteer.toml"
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if os.Getenv("BUDGETEER_CONFIG") != "" {
		// An explicitly named config file must exist.
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.ensureDirectories()

	return cfg, nil
}

// applyEnv overrides file and default values from the environment.
func (c *Config) applyEnv() {
	if addr := os.Getenv("BUDGETEER_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if level := os.Getenv("BUDGETEER_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if user := os.Getenv("BUDGETEER_USER"); user != "" {
		c.User = user
	}
	if dataDir := os.Getenv("BUDGETEER_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("BUDGETEER_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if dbPath := os.Getenv("BUDGETEER_SQLITE_PATH"); dbPath != "" {
		c.Store.SQLitePath = dbPath
	}
	if schedule := os.Getenv("BUDGETEER_RECOMPUTE_SCHEDULE"); schedule != "" {
		c.Recompute.Schedule = schedule
	}
}

// SQLitePath returns the effective database path for the sqlite backend.
func (c *Config) SQLitePath() string {
	if c.Store.SQLitePath != "" {
		return c.Store.SQLitePath
	}
	return filepath.Join(c.DataDirectory, "budgeteer.db")
}

// Save writes the configuration as TOML, mirroring what Load reads.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// ensureDirectories creates required directories if they don't exist.
func (c *Config) ensureDirectories() {
	if err := os.MkdirAll(c.DataDirectory, 0o755); err != nil {
		log.Printf("Warning: could not create directory %s: %v", c.DataDirectory, err)
	}
}
