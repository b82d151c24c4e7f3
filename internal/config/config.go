package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/coffersTech/logfilter/internal/log"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the logfilter configuration file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Parser  ParserConfig  `toml:"parser"`
	Library LibraryConfig `toml:"library"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// APIKeyHash is a bcrypt hash of the bearer token. Empty disables auth.
	APIKeyHash  string   `toml:"api_key_hash"`
	ReadTimeout Duration `toml:"read_timeout"`
}

type ParserConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type LibraryConfig struct {
	// Path of the saved-filter snapshot. Empty keeps filters in memory only.
	Path             string   `toml:"path"`
	AutosaveInterval Duration `toml:"autosave_interval"`
}

// Duration decodes TOML strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  log.LogLevelInfo,
			Format: log.LogFormatPlain,
		},
		Server: ServerConfig{
			Addr:        ":8089",
			ReadTimeout: Duration{10 * time.Second},
		},
		Parser: ParserConfig{
			MaxDepth: filterql.DefaultMaxDepth,
		},
		Library: LibraryConfig{
			Path:             "filters.lflt",
			AutosaveInterval: Duration{30 * time.Second},
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelError:
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case log.LogFormatPlain, log.LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout.Duration < 0 {
		return fmt.Errorf("%w: server.read_timeout can't be negative", ErrInvalidConfig)
	}
	if c.Parser.MaxDepth < 1 {
		return fmt.Errorf("%w: parser.max_depth must be at least 1, got %d", ErrInvalidConfig, c.Parser.MaxDepth)
	}
	if c.Library.AutosaveInterval.Duration < 0 {
		return fmt.Errorf("%w: library.autosave_interval can't be negative", ErrInvalidConfig)
	}
	return nil
}

// WriteFile writes c as TOML.
func (c *Config) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
