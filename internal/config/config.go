// Package config loads gridstorm settings.
//
// Settings come from three layers, each overriding the one before:
//
//  1. built-in defaults (Default)
//  2. a TOML file
//  3. GRIDSTORM_* environment variables
//
// Command-line flags are applied by the binaries on top of the result.
//
// A minimal file:
//
//	[table]
//	path = "orders.html"
//	id = "orders"
//
//	[dictionary]
//	path = "columns.toml"
//	watch = true
//
//	[backend]
//	url = "http://localhost:8080/change"
//	timeout = "5s"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidLevel indicates an unknown log level name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidValue indicates a setting outside its allowed range.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Config holds all settings.
type Config struct {
	Table      TableConfig      `toml:"table"`
	Dictionary DictionaryConfig `toml:"dictionary"`
	Validator  ValidatorConfig  `toml:"validator"`
	Backend    BackendConfig    `toml:"backend"`
	Log        LogConfig        `toml:"log"`
	UI         UIConfig         `toml:"ui"`
	Server     ServerConfig     `toml:"server"`
}

// TableConfig names the table document to edit.
type TableConfig struct {
	// Path is an HTML file holding the table.
	Path string `toml:"path"`

	// ID selects the table element; empty takes the first table.
	ID string `toml:"id"`
}

// DictionaryConfig locates the column dictionary.
type DictionaryConfig struct {
	Path string `toml:"path"`

	// Watch reloads the dictionary when the file changes.
	Watch bool `toml:"watch"`
}

// ValidatorConfig selects the validator.
type ValidatorConfig struct {
	// Script is a Lua file defining validate(value, rule). Empty uses
	// the built-in validator alone.
	Script string `toml:"script"`

	// BlockedDomains are rejected by email columns.
	BlockedDomains []string `toml:"blocked_domains"`
}

// BackendConfig configures the change transport. An empty URL commits
// locally without a backend.
type BackendConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
	Key     string   `toml:"key"`
	CSRF    string   `toml:"csrf"`
	Router  string   `toml:"router"`
	NoQueue bool     `toml:"no_queue"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File receives the log of the terminal editor.
	File string `toml:"file"`
}

// UIConfig configures the terminal view.
type UIConfig struct {
	MaxColWidth int `toml:"max_col_width"`

	// DateFormat is the calendar write-back format: de, en or sql.
	DateFormat string `toml:"date_format"`
}

// ServerConfig configures the reference backend.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Backend: BackendConfig{Timeout: Duration{10 * time.Second}},
		Log:     LogConfig{Level: "info", File: "gridstorm.log"},
		UI:      UIConfig{MaxColWidth: 24, DateFormat: "de"},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Line and Column locate the error when known.
	Line   int
	Column int

	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load returns the defaults overlaid with the file at path, if any, and
// the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := cfg.decode(path, data); err != nil {
				return cfg, err
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse overlays TOML data onto the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode("<input>", data); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// decode overlays data onto c. Unknown keys are errors so that typos
// do not go unnoticed.
func (c *Config) decode(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// Validate checks setting ranges.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Backend.Timeout.Duration < 0 {
		return fmt.Errorf("%w: backend.timeout %s", ErrInvalidValue, c.Backend.Timeout)
	}
	if c.UI.MaxColWidth < 1 {
		return fmt.Errorf("%w: ui.max_col_width %d", ErrInvalidValue, c.UI.MaxColWidth)
	}
	switch strings.ToLower(c.UI.DateFormat) {
	case "de", "en", "sql":
	default:
		return fmt.Errorf("%w: ui.date_format %q", ErrInvalidValue, c.UI.DateFormat)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
