package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Config represents the phonemine configuration
type Config struct {
	file *ini.File
}

// DefaultPath returns ~/.phonemine/config
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".phonemine", "config"), nil
}

// Load reads the configuration file from ~/.phonemine/config
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile reads the configuration file at configPath
func LoadFile(configPath string) (*Config, error) {
	// If config file doesn't exist, return empty config (not an error)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{file: ini.Empty()}, nil
	}

	file, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return &Config{file: file}, nil
}

// GetString retrieves a string value from the config
// section.key format (e.g., "extract.sticker_base_url")
func (c *Config) GetString(key string) string {
	section, keyName := c.parseKey(key)
	if section == "" {
		return ""
	}

	sec := c.file.Section(section)
	if sec == nil {
		return ""
	}

	return sec.Key(keyName).String()
}

// GetInt retrieves an integer value from the config
func (c *Config) GetInt(key string) (int, error) {
	val := c.GetString(key)
	if val == "" {
		return 0, nil
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %w", key, err)
	}

	return intVal, nil
}

// GetBool retrieves a boolean value from the config
func (c *Config) GetBool(key string) bool {
	val := c.GetString(key)
	if val == "" {
		return false
	}

	val = strings.ToLower(val)
	return val == "true" || val == "yes" || val == "1" || val == "on"
}

// HasKey checks if a key exists in the config
func (c *Config) HasKey(key string) bool {
	section, keyName := c.parseKey(key)
	if section == "" {
		return false
	}

	sec := c.file.Section(section)
	if sec == nil {
		return false
	}

	return sec.HasKey(keyName)
}

// parseKey splits a dotted key into section and key name
// e.g., "extract.sticker_base_url" -> ("extract", "sticker_base_url")
// For Git config compatibility, we use the last dot as the separator
func (c *Config) parseKey(key string) (string, string) {
	lastDot := strings.LastIndex(key, ".")
	if lastDot == -1 {
		return "", ""
	}

	section := key[:lastDot]
	keyName := key[lastDot+1:]

	return section, keyName
}

// GetStringWithFallback retrieves a string value with a fallback default
func (c *Config) GetStringWithFallback(key, fallback string) string {
	if c.HasKey(key) {
		return c.GetString(key)
	}
	return fallback
}

// GetIntWithFallback retrieves an int value with a fallback default
func (c *Config) GetIntWithFallback(key string, fallback int) int {
	if c.HasKey(key) {
		val, err := c.GetInt(key)
		if err == nil {
			return val
		}
	}
	return fallback
}

// Settings are the values the CLI reads from the config file
type Settings struct {
	LogLevel       string
	StickerBaseURL string
	DBPath         string
	WatchDebounce  time.Duration
}

// Setting defaults
const (
	DefaultLogLevel        = "warn"
	DefaultWatchDebounceMS = 300
)

// Settings resolves the known keys, falling back to defaults. An empty
// StickerBaseURL or DBPath means the caller's own default applies.
func (c *Config) Settings() Settings {
	debounce := c.GetIntWithFallback("watch.debounce", DefaultWatchDebounceMS)
	if debounce < 0 {
		debounce = DefaultWatchDebounceMS
	}
	return Settings{
		LogLevel:       strings.ToLower(c.GetStringWithFallback("log.level", DefaultLogLevel)),
		StickerBaseURL: c.GetString("extract.sticker_base_url"),
		DBPath:         c.GetString("db.path"),
		WatchDebounce:  time.Duration(debounce) * time.Millisecond,
	}
}
