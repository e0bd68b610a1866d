// Package config loads npcpath settings from defaults, an optional YAML
// file, NPCPATH_* environment variables and explicit overrides, in that
// order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/npcpath/npcpath/internal/logging"
)

// EnvPrefix is the prefix of environment overrides. NPCPATH_RECORD_TICK
// sets record.tick.
const EnvPrefix = "NPCPATH_"

// Config is the full runtime configuration.
type Config struct {
	Paths  PathsConfig    `koanf:"paths"`
	Record RecordConfig   `koanf:"record"`
	Log    logging.Config `koanf:"log"`
	Serve  ServeConfig    `koanf:"serve"`
}

// PathsConfig locates the path directory.
type PathsConfig struct {
	Dir string `koanf:"dir"`
}

// RecordConfig holds recording limits.
type RecordConfig struct {
	MaxWaypoints int           `koanf:"max_waypoints"`
	Tick         time.Duration `koanf:"tick"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Defaults returns the built-in settings as a nested map.
func Defaults() map[string]any {
	return map[string]any{
		"paths": map[string]any{
			"dir": "paths",
		},
		"record": map[string]any{
			"max_waypoints": 2000,
			"tick":          "50ms",
		},
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"serve": map[string]any{
			"addr": "127.0.0.1:8089",
		},
	}
}

// Load reads configuration. file may be empty. overrides, keyed by dotted
// path, win over every other source.
func Load(file string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if file != "" {
		if err := loadFile(k, file); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

// envKey maps NPCPATH_RECORD_MAX_WAYPOINTS to record.max_waypoints. Only
// the first underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Paths.Dir) == "" {
		errs = append(errs, errors.New("paths.dir must not be empty"))
	}
	if c.Record.MaxWaypoints <= 0 {
		errs = append(errs, fmt.Errorf("record.max_waypoints must be positive, got %d", c.Record.MaxWaypoints))
	}
	if c.Record.Tick <= 0 {
		errs = append(errs, fmt.Errorf("record.tick must be positive, got %s", c.Record.Tick))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// mapProvider feeds a nested map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
