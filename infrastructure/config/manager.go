package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// setting binds a dotted key such as "server.burst" to a Config field
type setting struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

var settings = map[string]setting{
	"ytdlp.path":                 stringSetting(func(c *Config) *string { return &c.YtDlp.Path }),
	"ytdlp.bundle_directory":     stringSetting(func(c *Config) *string { return &c.YtDlp.BundleDirectory }),
	"ytdlp.cache_directory":      stringSetting(func(c *Config) *string { return &c.YtDlp.CacheDirectory }),
	"paths.temp_directory":       stringSetting(func(c *Config) *string { return &c.Paths.TempDirectory }),
	"cleanup.max_age_minutes":    intSetting(func(c *Config) *int { return &c.Cleanup.MaxAgeMinutes }),
	"log.level":                  stringSetting(func(c *Config) *string { return &c.Log.Level }),
	"log.format":                 stringSetting(func(c *Config) *string { return &c.Log.Format }),
	"server.address":             stringSetting(func(c *Config) *string { return &c.Server.Address }),
	"server.requests_per_second": floatSetting(func(c *Config) *float64 { return &c.Server.RequestsPerSecond }),
	"server.burst":               intSetting(func(c *Config) *int { return &c.Server.Burst }),
	"cache.enabled":              boolSetting(func(c *Config) *bool { return &c.Cache.Enabled }),
	"cache.path":                 stringSetting(func(c *Config) *string { return &c.Cache.Path }),
	"cache.ttl_hours":            intSetting(func(c *Config) *int { return &c.Cache.TTLHours }),
}

// Entry is a single key/value pair of the configuration
type Entry struct {
	Key   string
	Value string
}

// ConfigManager reads and updates individual config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every supported key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns all entries sorted by key
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: settings[k].get(m.config)})
	}
	return entries
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.get(m.config), nil
}

// Set updates key, validates the result and saves the config file.
// The in-memory config is left untouched when validation fails.
func (m *ConfigManager) Set(key, value string) error {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	updated := *m.config
	if err := s.set(&updated, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
	}
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// Reset restores key to its default value and saves the config file
func (m *ConfigManager) Reset(key string) error {
	s, ok := settings[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return m.Set(key, s.get(Defaults()))
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func stringSetting(field func(c *Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, value string) error {
			*field(c) = value
			return nil
		},
	}
}

func intSetting(field func(c *Config) *int) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, value string) error {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("expected an integer")
			}
			*field(c) = n
			return nil
		},
	}
}

func floatSetting(field func(c *Config) *float64) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, value string) error {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("expected a number")
			}
			*field(c) = f
			return nil
		},
	}
}

func boolSetting(field func(c *Config) *bool) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, value string) error {
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("expected true or false")
			}
			*field(c) = b
			return nil
		},
	}
}
