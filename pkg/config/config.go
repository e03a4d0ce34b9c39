// Package config provides layered configuration for lanegraph using koanf.
//
// Sources are applied in order, later ones winning:
//
//  1. Built-in defaults ([GetDefaults])
//  2. User config: $XDG_CONFIG_HOME/lanegraph/config.yml
//  3. Project config: .lanegraph.yml in the working directory, or --config
//  4. Environment: LANEGRAPH_* variables, with "__" separating nested keys
//     (LANEGRAPH_CACHE__REDIS_ADDR sets cache.redis_addr)
//
// Command-line flags override the loaded values in the CLI.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "LANEGRAPH_"

// Configuration is the merged configuration.
type Configuration struct {
	Cache  CacheConfig  `koanf:"cache"`
	Render RenderConfig `koanf:"render"`
	Layout LayoutConfig `koanf:"layout"`
	Server ServerConfig `koanf:"server"`
	Mongo  MongoConfig  `koanf:"mongo"`
}

// CacheConfig selects and tunes the layout and artifact cache.
type CacheConfig struct {
	Backend       string        `koanf:"backend" validate:"oneof=file redis none"`
	Dir           string        `koanf:"dir"` // Empty: user cache directory
	RedisAddr     string        `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"min=0,max=15"`
	TTL           time.Duration `koanf:"ttl" validate:"min=0"` // Layout and artifact lifetime
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Format   string  `koanf:"format" validate:"required"` // Comma-separated list
	Style    string  `koanf:"style" validate:"oneof=lanes nodelink"`
	CellSize float64 `koanf:"cell_size" validate:"gt=0,max=200"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	DepOrder string `koanf:"dep_order" validate:"oneof=priority first"`
	MaxRows  int    `koanf:"max_rows" validate:"min=0"`
}

// ServerConfig configures "lanegraph serve".
type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=0"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"min=1"`
}

// MongoConfig locates the event collection for "lanegraph mongo".
type MongoConfig struct {
	URI        string `koanf:"uri"`
	Database   string `koanf:"database" validate:"required"`
	Collection string `koanf:"collection" validate:"required"`
}

// LoadOptions configures [LoadWithOptions].
type LoadOptions struct {
	// ProjectConfigPath overrides .lanegraph.yml. A missing override is an
	// error; a missing default file is not.
	ProjectConfigPath string

	// SkipUserConfig ignores the user-level file.
	SkipUserConfig bool

	// WarningWriter receives non-fatal warnings. Defaults to stderr.
	WarningWriter io.Writer
}

// Load loads configuration with an optional project config path.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	warnInsecure(cfg, getWarningWriter(opts.WarningWriter))
	return cfg, nil
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level config if it exists.
func loadUserConfig(k *koanf.Koanf) error {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level config. An explicit path must
// exist.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	path := ProjectConfigPath()
	if customPath != "" {
		if !fileExists(customPath) {
			return fmt.Errorf("config file not found: %s", customPath)
		}
		path = customPath
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "project"); err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Cache.Dir = expandHomePath(cfg.Cache.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// warnInsecure flags credentials kept in plain configuration.
func warnInsecure(cfg *Configuration, w io.Writer) {
	if cfg.Cache.RedisPassword != "" && os.Getenv(EnvPrefix+"CACHE__REDIS_PASSWORD") == "" {
		fmt.Fprintf(w, "Warning: cache.redis_password is set in a config file; prefer %sCACHE__REDIS_PASSWORD\n", EnvPrefix)
	}
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: LANEGRAPH_CACHE__REDIS_ADDR -> cache.redis_addr
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return homeDir + path[1:]
		}
	}
	return path
}
