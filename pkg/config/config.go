// Package config loads client settings for cmislib tools.
//
// Settings come from a single YAML file named explicitly by the caller (or by
// the CMIS_CONFIG environment variable), then the CMIS_* variables are laid
// over it. There is no automatic discovery.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cmislib/cmislib.go/pkg/connection"
	"github.com/cmislib/cmislib.go/pkg/constants"
	"github.com/cmislib/cmislib.go/pkg/logger"
	zlog "github.com/cmislib/cmislib.go/pkg/logger/zerolog"
)

// Environment variables read by FromEnv and Load.
const (
	EnvConfig     = "CMIS_CONFIG"
	EnvURL        = "CMIS_URL"
	EnvUsername   = "CMIS_USERNAME"
	EnvPassword   = "CMIS_PASSWORD"
	EnvRepository = "CMIS_REPOSITORY"
)

// Log formats understood by Logger.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatZerolog = "zerolog"
)

var ErrNoURL = errors.New("config: no service url")

type Config struct {
	// URL is the CMIS service document URL.
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Repository selects a repository by id. Empty means the first one.
	Repository string `yaml:"repository"`
	// Timeout is a Go duration string, for example "45s".
	Timeout string    `yaml:"timeout"`
	Log     LogConfig `yaml:"log"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is one of text, json, zerolog.
	Format string `yaml:"format"`
}

// Default returns settings with every optional field filled.
func Default() *Config {
	return &Config{
		Timeout: constants.DefaultHTTPTimeout.String(),
		Log: LogConfig{
			Level:  "warn",
			Format: FormatText,
		},
	}
}

// Load reads the file named by CMIS_CONFIG, if any, and overlays the
// environment.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return FromEnv(Default()), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over Default and overlays the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return FromEnv(cfg), nil
}

// FromEnv overlays the CMIS_URL, CMIS_USERNAME, CMIS_PASSWORD and
// CMIS_REPOSITORY variables onto cfg and returns it.
func FromEnv(cfg *Config) *Config {
	cfg.URL = getEnvOrDefault(EnvURL, cfg.URL)
	cfg.Username = getEnvOrDefault(EnvUsername, cfg.Username)
	cfg.Password = getEnvOrDefault(EnvPassword, cfg.Password)
	cfg.Repository = getEnvOrDefault(EnvRepository, cfg.Repository)
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// Validate reports settings that Connection would reject.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrNoURL
	}
	if _, err := c.timeout(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", FormatText, FormatJSON, FormatZerolog:
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return constants.DefaultHTTPTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// Connection builds the transport settings. Credentials in the file win over
// user info embedded in URL.
func (c *Config) Connection() (*connection.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	conf, err := connection.ParseConfig(c.URL)
	if err != nil {
		return nil, err
	}
	if c.Username != "" {
		conf.WithCredentials(c.Username, c.Password)
	}
	conf.Timeout, _ = c.timeout()
	l, err := c.Logger()
	if err != nil {
		return nil, err
	}
	return conf.WithLogger(l), nil
}

// Logger builds a logger writing to stderr in the configured format.
func (c *Config) Logger() (logger.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "", FormatText:
		return logger.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case FormatJSON:
		return logger.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case FormatZerolog:
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerologLevel(level)).
			With().Timestamp().Logger()
		return zlog.New(zl), nil
	}
	return nil, fmt.Errorf("config: unknown log format %q", c.Log.Format)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log level %q", s)
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l <= slog.LevelDebug:
		return zerolog.DebugLevel
	case l <= slog.LevelInfo:
		return zerolog.InfoLevel
	case l <= slog.LevelWarn:
		return zerolog.WarnLevel
	}
	return zerolog.ErrorLevel
}
