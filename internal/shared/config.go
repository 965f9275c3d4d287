package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the configuration file.
const (
	EnvClientID        = "SPOTIFY_CLIENT_ID"
	EnvClientSecret    = "SPOTIFY_CLIENT_SECRET"
	EnvDefaultTimezone = "SETLIST_DEFAULT_TIMEZONE"
)

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	LogLevel    string            `toml:"log_level" yaml:"log_level"`
	Credentials CredentialsConfig `toml:"credentials" yaml:"credentials"`
	Database    DatabaseConfig    `toml:"database" yaml:"database"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Schedule    ScheduleConfig    `toml:"schedule" yaml:"schedule"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify" yaml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" yaml:"client_id"`
	ClientSecret string `toml:"client_secret" yaml:"client_secret"`
}

// Validate reports [ErrMissingCredentials] when either credential is empty or still the template placeholder.
func (c SpotifyConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if strings.HasPrefix(c.ClientID, "your_") || strings.HasPrefix(c.ClientSecret, "your_") {
		return fmt.Errorf("%w: spotify credentials still hold template values", ErrMissingCredentials)
	}
	return nil
}

// DatabaseConfig contains database connection settings for the fetch cache.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScheduleConfig contains defaults for schedule computation.
type ScheduleConfig struct {
	DefaultTimezone  string `toml:"default_timezone" yaml:"default_timezone"`
	DefaultStart     string `toml:"default_start" yaml:"default_start"`
	CrossfadeSeconds int    `toml:"crossfade_seconds" yaml:"crossfade_seconds"`
	CacheTTL         string `toml:"cache_ttl" yaml:"cache_ttl"`
}

// Location resolves DefaultTimezone. An empty value or "local" selects [time.Local].
func (s ScheduleConfig) Location() (*time.Location, error) {
	return ResolveLocation(s.DefaultTimezone)
}

// CacheMaxAge parses CacheTTL. Zero disables the fetch cache.
func (s ScheduleConfig) CacheMaxAge() (time.Duration, error) {
	if s.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("%w: cache_ttl %q: %v", ErrInvalidConfig, s.CacheTTL, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}
	return d, nil
}

// ResolveLocation loads an IANA timezone by name. An empty name or "local" selects [time.Local].
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidArgument, name)
	}
	return loc, nil
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
// Values missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads the given dotenv files (missing files are skipped) and overlays credential and timezone variables onto the config.
//
// Variables already present in the process environment win over dotenv values.
func ApplyEnv(config *Config, envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvClientID); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(EnvDefaultTimezone); v != "" {
		config.Schedule.DefaultTimezone = v
	}
	return nil
}

var (
	settingsOnce sync.Once
	settings     *Config
	settingsErr  error
)

// Settings returns the process-wide configuration, loading it on first use.
//
// The file at path is optional; when it does not exist the embedded defaults are used.
// ".env" in the working directory is applied on top. Later calls ignore path and return the cached value.
func Settings(path string) (*Config, error) {
	settingsOnce.Do(func() {
		config := DefaultConfig()
		if path != "" {
			if _, err := os.Stat(path); err == nil {
				if config, settingsErr = LoadConfig(path); settingsErr != nil {
					return
				}
			}
		}
		if settingsErr = ApplyEnv(config, ".env"); settingsErr != nil {
			return
		}
		settings = config
	})
	return settings, settingsErr
}

// resetSettings clears the cached configuration. Used by tests.
func resetSettings() {
	settingsOnce = sync.Once{}
	settings = nil
	settingsErr = nil
}
