package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRIDSTORM_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envSetting applies one environment variable to a config.
type envSetting func(c *Config, val string) error

func str(field func(c *Config) *string) envSetting {
	return func(c *Config, val string) error {
		*field(c) = val
		return nil
	}
}

func boolean(field func(c *Config) *bool) envSetting {
	return func(c *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// envMapping maps variable names, without prefix, to settings.
var envMapping = map[string]envSetting{
	"TABLE_PATH":       str(func(c *Config) *string { return &c.Table.Path }),
	"TABLE_ID":         str(func(c *Config) *string { return &c.Table.ID }),
	"DICTIONARY_PATH":  str(func(c *Config) *string { return &c.Dictionary.Path }),
	"DICTIONARY_WATCH": boolean(func(c *Config) *bool { return &c.Dictionary.Watch }),
	"VALIDATOR_SCRIPT": str(func(c *Config) *string { return &c.Validator.Script }),
	"VALIDATOR_BLOCKED_DOMAINS": func(c *Config, val string) error {
		c.Validator.BlockedDomains = splitList(val)
		return nil
	},
	"BACKEND_URL": str(func(c *Config) *string { return &c.Backend.URL }),
	"BACKEND_TIMEOUT": func(c *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		c.Backend.Timeout = Duration{d}
		return nil
	},
	"BACKEND_KEY":      str(func(c *Config) *string { return &c.Backend.Key }),
	"BACKEND_CSRF":     str(func(c *Config) *string { return &c.Backend.CSRF }),
	"BACKEND_ROUTER":   str(func(c *Config) *string { return &c.Backend.Router }),
	"BACKEND_NO_QUEUE": boolean(func(c *Config) *bool { return &c.Backend.NoQueue }),
	"LOG_LEVEL":        str(func(c *Config) *string { return &c.Log.Level }),
	"LOG_FILE":         str(func(c *Config) *string { return &c.Log.File }),
	"UI_MAX_COL_WIDTH": func(c *Config, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		c.UI.MaxColWidth = n
		return nil
	},
	"UI_DATE_FORMAT": str(func(c *Config) *string { return &c.UI.DateFormat }),
	"SERVER_ADDR":    str(func(c *Config) *string { return &c.Server.Addr }),
}

// ApplyEnv overlays GRIDSTORM_* variables found through lookup. Empty
// values count as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for name, set := range envMapping {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, val); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidValue, EnvPrefix, name, val, err)
		}
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
