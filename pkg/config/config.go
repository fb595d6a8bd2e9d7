// Package config loads user defaults for the CLI from a TOML file.
//
// The file is optional. It is read from the --config flag or, failing that,
// from nodegraph/config.toml under the user config directory
// ($XDG_CONFIG_HOME or ~/.config on Linux):
//
//	[convert]
//	projection = "lineage"
//	format = "yaml"
//	max_nodes = 50000
//
//	[cache]
//	ttl = "72h"
//
// Values from the file only replace built-in defaults; flags given on the
// command line always win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
)

// Config is the decoded configuration file.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Cache   CacheConfig   `toml:"cache"`
}

// ConvertConfig holds defaults for conversion flags.
type ConvertConfig struct {
	Projection string `toml:"projection" validate:"omitempty,oneof=hierarchy neighbors lineage groups graph"`
	Format     string `toml:"format" validate:"omitempty,oneof=json yaml yml dot"`
	Root       string `toml:"root"`
	MaxNodes   int    `toml:"max_nodes" validate:"gte=0"`
	NoCache    bool   `toml:"no_cache"`
}

// CacheConfig configures the conversion cache.
type CacheConfig struct {
	TTL Duration `toml:"ttl" validate:"gte=0"`
	Dir string   `toml:"dir"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in defaults. Format is left empty so the
// pipeline can pick the projection's natural format.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Projection: "neighbors",
		},
		Cache: CacheConfig{
			TTL: Duration{24 * time.Hour},
		},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nodegraph", "config.toml"), nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
	return v
}

// Load reads the config file at path over the defaults. An empty path
// means DefaultPath, and a missing default file is not an error. An
// explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, nerrors.Wrap(nerrors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return Default(), nil
		}
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, nerrors.New(nerrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nerrors.Wrap(nerrors.ErrCodeInvalidConfig, err, "validate config")
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", strings.ToLower(fe.StructNamespace()), fe.Tag(), fe.Param()))
		}
		return nerrors.New(nerrors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
	}
	return nil
}
