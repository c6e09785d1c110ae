// Package config provides configuration loading for the outline tools.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (OUTLINE_*)
//  2. Project config (.outline/config.yml)
//  3. User config (~/.outline/config.yml)
//  4. Built-in defaults
//
// Nested keys map to environment variables with underscores, for example
// OUTLINE_OUTLINE_READONLY_MARKER or OUTLINE_WATCH_DEBOUNCE_MS.
package config

import (
	"strings"
	"time"

	"github.com/mvp-joe/project-outline/internal/outline"
)

// Config represents the complete outline configuration.
type Config struct {
	Outline OutlineConfig `yaml:"outline" mapstructure:"outline"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
}

// OutlineConfig controls tree building and skeleton emission.
type OutlineConfig struct {
	ReadonlyMarker string `yaml:"readonly_marker" mapstructure:"readonly_marker"` // prefix for read-only names
	Indent         int    `yaml:"indent" mapstructure:"indent"`                   // spaces per skeleton member line
}

// PathsConfig defines which files to outline and which to ignore.
type PathsConfig struct {
	Code   []string `yaml:"code" mapstructure:"code"`     // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to skip
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// CacheConfig bounds the extractor's tree cache.
type CacheConfig struct {
	MaxUnits int `yaml:"max_units" mapstructure:"max_units"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Outline: OutlineConfig{
			ReadonlyMarker: "@",
			Indent:         4,
		},
		Paths: PathsConfig{
			Code: []string{
				"**/*.ts",
				"**/*.tsx",
				"**/*.mts",
				"**/*.cts",
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.php",
			},
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"coverage/**",
				"**/*.d.ts",
				"**/*.min.js",
			},
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Cache: CacheConfig{
			MaxUnits: 1024,
		},
	}
}

// Options returns the outline options described by the configuration.
func (c *Config) Options() outline.Options {
	return outline.Options{
		ReadonlyMarker: c.Outline.ReadonlyMarker,
		Indent:         strings.Repeat(" ", c.Outline.Indent),
	}
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
