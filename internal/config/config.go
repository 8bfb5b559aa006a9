// Package config loads planboard's layered configuration.
//
// Values are resolved in this order, later layers winning:
//
//  1. Built-in defaults
//  2. The user config file ($XDG_CONFIG_HOME/planboard/config.toml, or
//     ~/.config/planboard/config.toml), if it exists
//  3. An explicit file passed with --config, which must exist
//  4. PLANBOARD_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/render/sink"
	"github.com/matzehuels/planboard/pkg/server"
	"github.com/matzehuels/planboard/pkg/source"
	"github.com/matzehuels/planboard/pkg/timeline"
)

const (
	appName  = "planboard"
	fileName = "config.toml"

	// EnvPrefix is the prefix of every environment override.
	EnvPrefix = "PLANBOARD_"
)

// Source kinds.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Cache kinds.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all configuration options.
type Config struct {
	Granularity string  `toml:"granularity"`
	TieBreak    string  `toml:"tie_break"`
	Collation   string  `toml:"collation"`
	Theme       string  `toml:"theme"`
	Width       float64 `toml:"width"`
	LaneHeight  float64 `toml:"lane_height"`

	Server ServerConfig `toml:"server"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`

	// Sources tracks which config files were loaded.
	Sources Sources `toml:"-"`
}

// ServerConfig configures `planboard serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SourceConfig selects where items come from.
type SourceConfig struct {
	Kind       string `toml:"kind"`
	Path       string `toml:"path,omitempty"`
	MongoURI   string `toml:"mongo_uri,omitempty"`
	Database   string `toml:"database,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Kind          string   `toml:"kind"`
	Dir           string   `toml:"dir,omitempty"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	TTL           Duration `toml:"ttl"`
}

// Sources records the config files that contributed to a Config.
type Sources struct {
	User     string // user config file, empty if absent
	Explicit string // --config file, empty if not given
}

// Duration is a time.Duration written as a Go duration string ("12h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Granularity: string(pipeline.DefaultGranularity),
		TieBreak:    string(timeline.TieBreakTitle),
		Collation:   timeline.DefaultCollation.String(),
		Theme:       pipeline.DefaultTheme,
		Width:       pipeline.DefaultWidth,
		LaneHeight:  pipeline.DefaultLaneHeight,
		Server:      ServerConfig{Addr: server.DefaultAddr},
		Source: SourceConfig{
			Kind:       SourceFile,
			MongoURI:   source.DefaultMongoURI,
			Database:   source.DefaultMongoDatabase,
			Collection: source.DefaultMongoCollection,
		},
		Cache: CacheConfig{
			Kind:      CacheFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
	}
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	ConfigPath string            // --config flag value
	Env        map[string]string // environment variables
}

// Load resolves the configuration layers and validates the result.
func Load(in LoadInput) (Config, error) {
	cfg := Default()

	if path := UserPath(in.Env); path != "" {
		loaded, err := decodeFile(&cfg, path, false)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			cfg.Sources.User = path
		}
	}

	if in.ConfigPath != "" {
		if _, err := decodeFile(&cfg, in.ConfigPath, true); err != nil {
			return Config{}, err
		}
		cfg.Sources.Explicit = in.ConfigPath
	}

	if err := applyEnv(&cfg, in.Env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UserPath returns the user config file location.
// Uses $XDG_CONFIG_HOME/planboard/config.toml if set, otherwise
// ~/.config/planboard/config.toml. Returns "" when neither is known.
func UserPath(env map[string]string) string {
	if dir := env["XDG_CONFIG_HOME"]; dir != "" {
		return filepath.Join(dir, appName, fileName)
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", appName, fileName)
	}
	return ""
}

// CacheDir returns the default cache directory for env: XDG_CACHE_HOME/planboard,
// else ~/.cache/planboard, or "" when neither variable is set.
func CacheDir(env map[string]string) string {
	if dir := env["XDG_CACHE_HOME"]; dir != "" {
		return filepath.Join(dir, appName)
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".cache", appName)
	}
	return ""
}

// decodeFile overlays the keys present in path onto cfg. Missing optional
// files are skipped and reported with loaded == false.
func decodeFile(cfg *Config, path string, mustExist bool) (loaded bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return false, fmt.Errorf("read config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return false, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return true, nil
}

// envVars maps each environment variable (without prefix) to its field.
func envVars(cfg *Config) map[string]any {
	return map[string]any{
		"GRANULARITY":      &cfg.Granularity,
		"TIE_BREAK":        &cfg.TieBreak,
		"COLLATION":        &cfg.Collation,
		"THEME":            &cfg.Theme,
		"WIDTH":            &cfg.Width,
		"LANE_HEIGHT":      &cfg.LaneHeight,
		"SERVER_ADDR":      &cfg.Server.Addr,
		"SOURCE_KIND":      &cfg.Source.Kind,
		"SOURCE_PATH":      &cfg.Source.Path,
		"MONGO_URI":        &cfg.Source.MongoURI,
		"MONGO_DATABASE":   &cfg.Source.Database,
		"MONGO_COLLECTION": &cfg.Source.Collection,
		"CACHE_KIND":       &cfg.Cache.Kind,
		"CACHE_DIR":        &cfg.Cache.Dir,
		"CACHE_TTL":        &cfg.Cache.TTL,
		"REDIS_ADDR":       &cfg.Cache.RedisAddr,
		"REDIS_PASSWORD":   &cfg.Cache.RedisPassword,
	}
}

func applyEnv(cfg *Config, env map[string]string) error {
	for name, dst := range envVars(cfg) {
		v, ok := env[EnvPrefix+name]
		if !ok || v == "" {
			continue
		}
		switch dst := dst.(type) {
		case *string:
			*dst = v
		case *float64:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s%s: invalid number %q", EnvPrefix, name, v)
			}
			*dst = f
		case *Duration:
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s%s: invalid duration %q", EnvPrefix, name, v)
			}
		}
	}
	return nil
}

// Validate checks every value and normalizes the enumerations.
func (c *Config) Validate() error {
	g, err := timeline.ParseGranularity(c.Granularity)
	if err != nil {
		return err
	}
	c.Granularity = string(g)

	tb, err := timeline.ParseTieBreak(c.TieBreak)
	if err != nil {
		return err
	}
	c.TieBreak = string(tb)

	if _, err := language.Parse(c.Collation); c.Collation != "" && err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid collation %q", c.Collation)
	}
	if _, err := sink.ParseTheme(c.Theme); err != nil {
		return err
	}
	if c.Width < 0 || c.LaneHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width and lane_height must not be negative")
	}

	c.Source.Kind = strings.ToLower(c.Source.Kind)
	switch c.Source.Kind {
	case SourceFile, SourceMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid source kind %q (must be file or mongo)", c.Source.Kind)
	}

	c.Cache.Kind = strings.ToLower(c.Cache.Kind)
	switch c.Cache.Kind {
	case CacheFile, CacheMemory, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache kind %q (must be file, memory, redis or none)", c.Cache.Kind)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}

// PipelineDefaults returns the pipeline options seeded from the config.
func (c Config) PipelineDefaults() pipeline.Options {
	return pipeline.Options{
		Granularity: c.Granularity,
		TieBreak:    c.TieBreak,
		Collation:   c.Collation,
		Theme:       c.Theme,
		Width:       c.Width,
		LaneHeight:  c.LaneHeight,
	}
}

// Encode writes the config as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Environ returns the process environment as a map for LoadInput.Env.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
