// Package config loads lanparty's TOML configuration file.
//
// The file is optional. Values it sets become the defaults for CLI flags and
// server options; explicit flags always win.
//
//	[analysis]
//	prefix = "t"
//	strategy = "greedy"
//	workers = 0
//	name_length = 2
//
//	[cache]
//	backend = "file"        # file, redis or none
//	dir = ""                # defaults to $XDG_CACHE_HOME/lanparty
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//	key_prefix = ""         # namespaces keys in a shared redis
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lanparty/pkg/cache"
	"github.com/matzehuels/lanparty/pkg/clique"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/netgraph"
)

// AppName names the per-user config and cache directories.
const AppName = "lanparty"

// Config is the decoded configuration file.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Analysis holds defaults for the analysis commands.
type Analysis struct {
	Prefix     string `toml:"prefix"`
	Strategy   string `toml:"strategy"`
	Workers    int    `toml:"workers"`
	NameLength int    `toml:"name_length"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
	KeyPrefix string        `toml:"key_prefix"`
}

// Server configures "lanparty serve".
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Analysis: Analysis{
			Prefix:     "t",
			Strategy:   string(clique.StrategyGreedy),
			NameLength: netgraph.DefaultNameLength,
		},
		Cache: Cache{
			Backend:   cache.BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       cache.TTLReport,
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lanparty/config.toml, falling back to
// ~/.config/lanparty/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/lanparty, falling back to
// ~/.cache/lanparty.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the file at path on top of [Default]. An empty path loads the
// default location, where a missing file is not an error. A missing file at
// an explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return Default(), nil
	case errors.Is(err, os.ErrNotExist):
		return cfg, lperrors.Wrap(lperrors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return cfg, lperrors.Wrap(lperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, lperrors.New(lperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and enum fields.
func (c Config) Validate() error {
	if c.Analysis.NameLength < 1 {
		return lperrors.New(lperrors.ErrCodeInvalidConfig, "analysis.name_length must be positive")
	}
	if err := lperrors.ValidatePrefix(c.Analysis.Prefix, c.Analysis.NameLength); err != nil {
		return lperrors.Wrap(lperrors.ErrCodeInvalidConfig, err, "analysis.prefix")
	}
	if _, err := clique.ParseStrategy(c.Analysis.Strategy); err != nil {
		return lperrors.Wrap(lperrors.ErrCodeInvalidConfig, err, "analysis.strategy")
	}
	if err := lperrors.ValidateWorkers(c.Analysis.Workers); err != nil {
		return lperrors.Wrap(lperrors.ErrCodeInvalidConfig, err, "analysis.workers")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return lperrors.New(lperrors.ErrCodeInvalidConfig, "cache.backend: %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return lperrors.New(lperrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// Keyer returns the cache keyer for the configured key prefix.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.KeyPrefix)
}

// CacheOptions resolves the cache section into [cache.Options], filling in
// the default directory for the file backend.
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		RedisAddr: c.Cache.RedisAddr,
	}
	if (opts.Backend == "" || opts.Backend == cache.BackendFile) && opts.Dir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return opts, fmt.Errorf("cache dir: %w", err)
		}
		opts.Dir = dir
	}
	return opts, nil
}
