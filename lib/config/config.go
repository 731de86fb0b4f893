// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "ARZEDIT_CONFIG"

// Config is the complete arzedit configuration.
type Config struct {
	// TextEncoding is the code page of record text and container
	// strings: gbk, windows-1252 or utf-8.
	TextEncoding string `yaml:"text_encoding" json:"text_encoding"`

	Log       LogConfig       `yaml:"log" json:"log"`
	Templates TemplatesConfig `yaml:"templates" json:"templates"`
	Build     BuildConfig     `yaml:"build" json:"build"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	Tools     ToolsConfig     `yaml:"tools" json:"tools"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level" json:"level"`

	// Format is text, json or auto. Auto picks text on a terminal and
	// JSON otherwise. Default: auto
	Format string `yaml:"format" json:"format"`
}

// TemplatesConfig locates template sources beyond the mod folder.
type TemplatesConfig struct {
	// Roots are searched after the mod folder, in order. A later root
	// replaces templates with the same key.
	Roots []string `yaml:"roots" json:"roots"`

	// BuiltinArchive is an archive of stock templates consulted for
	// keys no folder provides.
	BuiltinArchive string `yaml:"builtin_archive" json:"builtin_archive"`
}

// BuildConfig configures the mod build.
type BuildConfig struct {
	// FillDefaults writes every template field a record omits, valued
	// with its default. Default: true
	FillDefaults bool `yaml:"fill_defaults" json:"fill_defaults"`

	SkipAssets    bool `yaml:"skip_assets" json:"skip_assets"`
	SkipDatabase  bool `yaml:"skip_database" json:"skip_database"`
	SkipResources bool `yaml:"skip_resources" json:"skip_resources"`

	Cache CacheConfig `yaml:"cache" json:"cache"`
}

// CacheConfig configures the record build cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Path is the cache file. Empty places it at .arzedit/build.cache
	// under the build folder.
	Path string `yaml:"path" json:"path"`
}

// DatabaseConfig configures database reading.
type DatabaseConfig struct {
	// RecordCacheCapacity bounds the decoded records kept in memory
	// while reading a database. Zero keeps them all. Default: 256
	RecordCacheCapacity int `yaml:"record_cache_capacity" json:"record_cache_capacity"`
}

// ToolsConfig locates the external asset compilers.
type ToolsConfig struct {
	// GameFolder holds MapCompiler.exe, TextureCompiler.exe and
	// ModelCompiler.exe. Empty resolves them through PATH.
	GameFolder string `yaml:"game_folder" json:"game_folder"`
}

// Default returns the configuration used when no file is given, and
// the base a file is merged into.
func Default() *Config {
	return &Config{
		TextEncoding: textenc.Default.Name(),
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Build: BuildConfig{
			FillDefaults: true,
		},
		Database: DatabaseConfig{
			RecordCacheCapacity: 256,
		},
	}
}

// Load loads the file named by ARZEDIT_CONFIG, or returns [Default]
// when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path, merged over [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		return yaml.Unmarshal(data, c)
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	for i, root := range c.Templates.Roots {
		c.Templates.Roots[i] = expandVars(root, vars)
	}
	c.Templates.BuiltinArchive = expandVars(c.Templates.BuiltinArchive, vars)
	c.Build.Cache.Path = expandVars(c.Build.Cache.Path, vars)
	c.Tools.GameFolder = expandVars(c.Tools.GameFolder, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if _, err := textenc.Lookup(c.TextEncoding); err != nil {
		errs = append(errs, fmt.Errorf("text_encoding: %w", err))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	formats := []string{"auto", "text", "json"}
	if !contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}
	for i, root := range c.Templates.Roots {
		if root == "" {
			errs = append(errs, fmt.Errorf("templates.roots[%d] is empty", i))
		}
	}
	if c.Database.RecordCacheCapacity < 0 {
		errs = append(errs, fmt.Errorf("database.record_cache_capacity must not be negative, got %d", c.Database.RecordCacheCapacity))
	}
	if c.Build.SkipAssets && c.Build.SkipDatabase && c.Build.SkipResources {
		errs = append(errs, errors.New("build: every stage is skipped"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Codec returns the configured text encoding, falling back to the
// default for a name [Config.Validate] would reject.
func (c *Config) Codec() textenc.Codec {
	codec, err := textenc.Lookup(c.TextEncoding)
	if err != nil {
		return textenc.Default
	}
	return codec
}

// LogLevel returns the configured log level, or info for an invalid
// name.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown level %q", name)
	}
	return level, nil
}

// CachePath returns the build cache file for a build folder.
func (c *Config) CachePath(buildDir string) string {
	if c.Build.Cache.Path != "" {
		return c.Build.Cache.Path
	}
	return filepath.Join(buildDir, ".arzedit", "build.cache")
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
