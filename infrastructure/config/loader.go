package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	YtDlp   YtDlpConfig   `yaml:"ytdlp" toml:"ytdlp"`
	Paths   PathsConfig   `yaml:"paths" toml:"paths"`
	Cleanup CleanupConfig `yaml:"cleanup" toml:"cleanup"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
}

// YtDlpConfig controls how the yt-dlp executable is located.
// Path wins when set; otherwise a platform binary from BundleDirectory is
// installed into CacheDirectory; otherwise yt-dlp is looked up on PATH.
type YtDlpConfig struct {
	Path            string `yaml:"path" toml:"path"`
	BundleDirectory string `yaml:"bundle_directory" toml:"bundle_directory"`
	CacheDirectory  string `yaml:"cache_directory" toml:"cache_directory"`
}

// PathsConfig contains working directories
type PathsConfig struct {
	TempDirectory string `yaml:"temp_directory" toml:"temp_directory"`
}

// CleanupConfig controls the sweep of abandoned subtitle files
type CleanupConfig struct {
	MaxAgeMinutes int `yaml:"max_age_minutes" toml:"max_age_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Address           string  `yaml:"address" toml:"address"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int     `yaml:"burst" toml:"burst"`
}

// CacheConfig contains result cache settings
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Path     string `yaml:"path" toml:"path"`
	TTLHours int    `yaml:"ttl_hours" toml:"ttl_hours"`
}

// MaxAge returns how old a temp file must be before the sweep removes it
func (c CleanupConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeMinutes) * time.Minute
}

// TTL returns how long a cached result stays valid
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// Defaults returns a configuration with every setting at its default value
func Defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			TempDirectory: "./temp-subtitles",
		},
		Cleanup: CleanupConfig{
			MaxAgeMinutes: 15,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Server: ServerConfig{
			Address:           ":8080",
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Cache: CacheConfig{
			Path:     "./cache/subtitles.db",
			TTLHours: 24,
		},
	}
}

// Load reads and parses the configuration from the specified file.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Settings missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified file, creating its directory
func Save(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be one of auto, text, json (got %q)", c.Log.Format)
	}
	if c.Cleanup.MaxAgeMinutes <= 0 {
		return errors.New("cleanup.max_age_minutes must be positive")
	}
	if c.Server.RequestsPerSecond <= 0 {
		return errors.New("server.requests_per_second must be positive")
	}
	if c.Server.Burst < 1 {
		return errors.New("server.burst must be at least 1")
	}
	if c.Cache.TTLHours <= 0 {
		return errors.New("cache.ttl_hours must be positive")
	}
	return nil
}

// applyDefaults fills settings left empty by a config file
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Paths.TempDirectory == "" {
		c.Paths.TempDirectory = d.Paths.TempDirectory
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Cache.Path == "" {
		c.Cache.Path = d.Cache.Path
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
