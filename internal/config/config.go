// Package config loads scopewalk settings from defaults, an optional YAML
// file, SCOPEWALK_* environment variables and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Settings controls a scopewalk run.
type Settings struct {
	LogLevel string `koanf:"log_level"`
	Color    string `koanf:"color"`
	Dump     bool   `koanf:"dump"`
	Parallel int    `koanf:"parallel"`
	Prelude  bool   `koanf:"prelude"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `koanf:"-"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		LogLevel: DefaultLogLevel,
		Color:    DefaultColor,
		Parallel: DefaultParallel,
		Prelude:  true,
	}
}

// FindConfigFile returns explicit if set, otherwise the first config file
// present in dir, or "" if there is none.
func FindConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds Settings with precedence flags > environment > file > defaults.
// Only flags that were explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Settings, error) {
	k := koanf.New(".")

	d := Defaults()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level": d.LogLevel,
		"color":     d.Color,
		"dump":      d.Dump,
		"parallel":  d.Parallel,
		"prelude":   d.Prelude,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := FindConfigFile(cfgFile, "")
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	s.ConfigFile = used

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, s.Color) {
		return fmt.Errorf("color: %q is not one of auto, always, never", s.Color)
	}
	if s.Parallel < 1 {
		return fmt.Errorf("parallel: must be at least 1, got %d", s.Parallel)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// ColorOverride reports whether color was forced on or off. ok is false in
// auto mode.
func (s *Settings) ColorOverride() (enabled, ok bool) {
	switch s.Color {
	case ColorAlways:
		return true, true
	case ColorNever:
		return false, true
	default:
		return false, false
	}
}
