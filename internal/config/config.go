package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all nitpick configuration.
type Config struct {
	// Project name, used in reports
	Name string `yaml:"name"`

	// Exception list settings
	Exceptions ExceptionsConfig `yaml:"exceptions"`

	// Documentation sources to scan
	Docs DocsConfig `yaml:"docs"`

	// Object inventories to resolve against
	Inventories []InventorySource `yaml:"inventories"`

	// Inventory cache
	Cache CacheConfig `yaml:"cache"`

	// Checker behavior
	Check CheckConfig `yaml:"check"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ExceptionsConfig locates the exception list and sets the missing-file
// policy: when Required is false a missing file is an empty exception set,
// when true it fails the run.
type ExceptionsConfig struct {
	Path     string `yaml:"path"`
	Required bool   `yaml:"required"`
}

// DocsConfig selects which documentation files get scanned for references.
type DocsConfig struct {
	Roots   []string `yaml:"roots"`
	Include []string `yaml:"include"` // glob patterns on base name
	Exclude []string `yaml:"exclude"` // directory names skipped during walk
}

// InventorySource names one objects.inv, local or remote.
type InventorySource struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"` // file path or http(s) URL
}

// CacheConfig configures the SQLite inventory cache.
type CacheConfig struct {
	DatabasePath string `yaml:"database_path"`
	TTL          string `yaml:"ttl"` // refetch remote inventories older than this
}

// CheckConfig configures the reference checker.
type CheckConfig struct {
	Jobs           int  `yaml:"jobs"`             // parallel scan workers
	FailOnWarnings bool `yaml:"fail_on_warnings"` // non-zero exit when unresolved refs remain
	ScanHTML       bool `yaml:"scan_html"`        // also extract targets from built HTML
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "docs",

		Exceptions: ExceptionsConfig{
			Path:     "docs/nitpick-exceptions",
			Required: false,
		},

		Docs: DocsConfig{
			Roots:   []string{"docs"},
			Include: []string{"*.rst", "*.md"},
			Exclude: []string{"_build", "node_modules", ".git"},
		},

		Cache: CacheConfig{
			DatabasePath: ".nitpick/cache.db",
			TTL:          "24h",
		},

		Check: CheckConfig{
			Jobs:           4,
			FailOnWarnings: true,
			ScanHTML:       false,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// Returns defaults if the config file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("NITPICK_EXCEPTIONS"); path != "" {
		c.Exceptions.Path = path
	}
	if path := os.Getenv("NITPICK_CACHE_DB"); path != "" {
		c.Cache.DatabasePath = path
	}
	if jobs := os.Getenv("NITPICK_JOBS"); jobs != "" {
		if n, err := strconv.Atoi(jobs); err == nil && n > 0 {
			c.Check.Jobs = n
		}
	}
	if level := os.Getenv("NITPICK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Exceptions.Path == "" {
		return fmt.Errorf("exceptions.path must not be empty")
	}
	if len(c.Docs.Roots) == 0 {
		return fmt.Errorf("docs.roots must name at least one directory")
	}
	if c.Check.Jobs < 1 {
		return fmt.Errorf("check.jobs must be at least 1, got %d", c.Check.Jobs)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl is not a valid duration: %w", err)
		}
	}
	seen := make(map[string]bool, len(c.Inventories))
	for _, inv := range c.Inventories {
		if inv.Location == "" {
			return fmt.Errorf("inventory %q has no location", inv.Name)
		}
		if inv.Name != "" && seen[inv.Name] {
			return fmt.Errorf("duplicate inventory name %q", inv.Name)
		}
		seen[inv.Name] = true
	}
	return nil
}

// CacheTTL returns the parsed cache TTL, or the default when unset/invalid.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
