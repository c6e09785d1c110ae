package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project and per-user configuration directory.
const DirName = ".outline"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user file → project file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	homeDir    string
	configFile string
}

// LoaderOption customizes a loader.
type LoaderOption func(*loader)

// WithConfigFile loads an explicit file instead of searching the project directory.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithHomeDir overrides the directory searched for the user config.
// An empty dir disables the user config.
func WithHomeDir(dir string) LoaderOption {
	return func(l *loader) {
		l.homeDir = dir
	}
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (OUTLINE_*)
// 2. Project config file (.outline/config.yml or .outline/config.yaml), or the explicit file
// 3. User config file (~/.outline/config.yml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OUTLINE")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., OUTLINE_WATCH_DEBOUNCE_MS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("outline.readonly_marker")
	v.BindEnv("outline.indent")
	v.BindEnv("watch.debounce_ms")
	v.BindEnv("cache.max_units")

	setDefaults(v, Default())

	if l.homeDir != "" {
		if err := mergeFile(v, filepath.Join(l.homeDir, DirName), false); err != nil {
			return nil, err
		}
	}

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	} else if err := mergeFile(v, filepath.Join(l.rootDir, DirName), true); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeFile merges config.yml or config.yaml from dir into v. A missing file
// is not an error.
func mergeFile(v *viper.Viper, dir string, project bool) error {
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat config file: %w", err)
		}

		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			scope := "user"
			if project {
				scope = "project"
			}
			return fmt.Errorf("failed to read %s config file: %w", scope, err)
		}
		return nil
	}
	return nil
}

// setDefaults configures viper with the values of defaults.
func setDefaults(v *viper.Viper, defaults *Config) {

	v.SetDefault("outline.readonly_marker", defaults.Outline.ReadonlyMarker)
	v.SetDefault("outline.indent", defaults.Outline.Indent)

	v.SetDefault("paths.code", defaults.Paths.Code)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("cache.max_units", defaults.Cache.MaxUnits)
}

// Apply returns a copy of cfg with settings merged over it. Settings use the
// config file layout, e.g. {"outline": {"readonly_marker": "#"}}. The result
// is validated; cfg is never modified.
func Apply(cfg *Config, settings map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v, cfg)

	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge settings: %w", err)
	}

	out := &Config{}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := Validate(out); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return out, nil
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string, opts ...LoaderOption) (*Config, error) {
	return NewLoader(rootDir, opts...).Load()
}
