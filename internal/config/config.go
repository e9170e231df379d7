// Package config provides persistent configuration for the salah-times CLI.
//
// Configuration is stored as JSON at ~/.config/salah-times/config.json
// (XDG-compliant). Values can be overridden by SALAH_TIMES_* environment
// variables, optionally loaded from a .env file. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smokyabdulrahman/salah-times/internal/logger"
)

const (
	configDirName  = "salah-times"
	configFileName = "config.json"

	// EnvPrefix is prepended to upper-cased keys, e.g. SALAH_TIMES_METHOD.
	EnvPrefix = "SALAH_TIMES"

	// DefaultMethod is the Al Adhan calculation method used when unset (ISNA).
	DefaultMethod = 2

	// DefaultListenAddr is where `serve` listens when unset.
	DefaultListenAddr = "127.0.0.1:8765"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city",
	"latitude", "longitude",
	"method",
	"time_format",
	"cache_file", "state_file",
	"listen_addr", "cors_origins",
	"log_level",
}

// Config holds all user-configurable settings.
// Zero values and nil pointers mean "not set" (use defaults or auto-detect).
type Config struct {
	City        string   `json:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"` // pointers so 0 is a real coordinate
	Longitude   *float64 `json:"longitude,omitempty"`
	Method      *int     `json:"method,omitempty"`      // pointer so we can distinguish "not set" from 0
	TimeFormat  string   `json:"time_format,omitempty"` // "12h" or "24h"
	CacheFile   string   `json:"cache_file,omitempty"`
	StateFile   string   `json:"state_file,omitempty"`
	ListenAddr  string   `json:"listen_addr,omitempty"`
	CORSOrigins string   `json:"cors_origins,omitempty"` // comma-separated list
	LogLevel    string   `json:"log_level,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := DefaultMethod
	return Config{
		Method:      &method,
		TimeFormat:  "24h",
		ListenAddr:  DefaultListenAddr,
		CORSOrigins: "*",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Missing files are ignored and variables
// already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file from disk and applies environment overrides.
// If the file does not exist, only the environment is used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path and applies
// SALAH_TIMES_* environment overrides.
func LoadFrom(path string) (*Config, error) {
	return load(path, true)
}

// LoadFile reads only the config file, ignoring the environment. Commands
// that write the file back use it so overrides are not persisted.
func LoadFile(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, withEnv bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		for _, key := range ValidKeys {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Route every value through Set so file and environment share validation.
	var cfg Config
	for _, key := range ValidKeys {
		if !v.IsSet(key) {
			continue
		}
		if err := cfg.Set(key, v.GetString(key)); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "city":
		c.City = value
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = &v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = &v
	case "method":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid method %q: must be an integer", value)
		}
		if v < 0 || v > 23 {
			return fmt.Errorf("invalid method %q: must be between 0 and 23", value)
		}
		c.Method = &v
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "cache_file":
		c.CacheFile = value
	case "state_file":
		c.StateFile = value
	case "listen_addr":
		if !strings.Contains(value, ":") {
			return fmt.Errorf("invalid listen_addr %q: must be host:port", value)
		}
		c.ListenAddr = value
	case "cors_origins":
		for _, o := range strings.Split(value, ",") {
			if strings.TrimSpace(o) == "" {
				return fmt.Errorf("invalid cors_origins %q: empty origin in list", value)
			}
		}
		c.CORSOrigins = value
	case "log_level":
		if !logger.ValidLevel(value) {
			return fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", value)
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "latitude":
		if c.Latitude == nil {
			return "", nil
		}
		return strconv.FormatFloat(*c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == nil {
			return "", nil
		}
		return strconv.FormatFloat(*c.Longitude, 'f', -1, 64), nil
	case "method":
		if c.Method == nil {
			return "", nil
		}
		return strconv.Itoa(*c.Method), nil
	case "time_format":
		return c.TimeFormat, nil
	case "cache_file":
		return c.CacheFile, nil
	case "state_file":
		return c.StateFile, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "cors_origins":
		return c.CORSOrigins, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// HasCoordinates reports whether latitude or longitude is configured.
// An explicit 0 counts as configured.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != nil || c.Longitude != nil
}

// Coordinates returns the configured latitude and longitude. An unset
// half reads as 0.
func (c *Config) Coordinates() (lat, lon float64) {
	if c.Latitude != nil {
		lat = *c.Latitude
	}
	if c.Longitude != nil {
		lon = *c.Longitude
	}
	return lat, lon
}

// SetCoordinates stores both coordinates.
func (c *Config) SetCoordinates(lat, lon float64) {
	c.Latitude, c.Longitude = &lat, &lon
}

// ClearCoordinates marks both coordinates as unset.
func (c *Config) ClearCoordinates() {
	c.Latitude, c.Longitude = nil, nil
}

// MethodOrDefault returns the method value, falling back to the given default.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// ListenAddrOrDefault returns the configured listen address or DefaultListenAddr.
func (c *Config) ListenAddrOrDefault() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return DefaultListenAddr
}

// Origins splits CORSOrigins. Unset means all origins.
func (c *Config) Origins() []string {
	if c.CORSOrigins == "" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		out = append(out, strings.TrimSpace(o))
	}
	return out
}
