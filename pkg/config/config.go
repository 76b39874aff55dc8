// Package config loads listgraph settings from TOML.
//
// Every field has a default (see [Default]); a file only needs the values it
// changes:
//
//	[debounce]
//	query = "400ms"
//
//	[server]
//	addr = ":9090"
//	session_ttl = "1h"
//
//	[redis]
//	addr = "localhost:6379"
//
// Unknown keys are rejected so typos do not go unnoticed.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/listgraph/pkg/controls"
	"github.com/matzehuels/listgraph/pkg/dag/transform"
	"github.com/matzehuels/listgraph/pkg/errors"
	"github.com/matzehuels/listgraph/pkg/events"
	"github.com/matzehuels/listgraph/pkg/interact"
	"github.com/matzehuels/listgraph/pkg/session"
	"github.com/matzehuels/listgraph/pkg/source/mongo"
)

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
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

// Config is the complete configuration.
type Config struct {
	Interaction Interaction `toml:"interaction"`
	Debounce    Debounce    `toml:"debounce"`
	Server      Server      `toml:"server"`
	Cache       Cache       `toml:"cache"`
	Redis       Redis       `toml:"redis"`
	Mongo       Mongo       `toml:"mongo"`
	Log         Log         `toml:"log"`
}

// Interaction configures hover highlighting and layout.
type Interaction struct {
	// Layering is "longest" or "shortest" path column assignment.
	Layering string `toml:"layering"`
	// Restriction is "none" or "direct-parents".
	Restriction string `toml:"restriction"`
	// IncludeClones highlights the clones of a hovered node as well.
	IncludeClones bool `toml:"include_clones"`
}

// Debounce configures the context-menu debounce windows.
type Debounce struct {
	Query    Duration `toml:"query"`
	Root     Duration `toml:"root"`
	Disabled bool     `toml:"disabled"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string   `toml:"addr"`
	SessionTTL      Duration `toml:"session_ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	Metrics         bool     `toml:"metrics"`
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `toml:"cors_origins"`
}

// Cache configures the render cache.
type Cache struct {
	// Backend is "none", "file" or "redis".
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// Redis configures the Redis connection shared by events and cache. An
// empty Addr disables Redis.
type Redis struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	Channel   string `toml:"channel"`
	KeyPrefix string `toml:"key_prefix"`
}

// Mongo configures the MongoDB graph store. An empty URI disables it.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interaction: Interaction{
			Layering:      "longest",
			Restriction:   "none",
			IncludeClones: true,
		},
		Debounce: Debounce{
			Query: Duration{controls.DefaultQueryWait},
			Root:  Duration{controls.DefaultRootWait},
		},
		Server: Server{
			Addr:            ":8080",
			SessionTTL:      Duration{session.DefaultTTL},
			CleanupInterval: Duration{time.Minute},
			ShutdownTimeout: Duration{10 * time.Second},
			Metrics:         true,
		},
		Cache: Cache{
			Backend: "none",
			TTL:     Duration{time.Hour},
		},
		Redis: Redis{
			Channel:   events.DefaultChannel,
			KeyPrefix: "listgraph:",
		},
		Mongo: Mongo{
			Database:   mongo.DefaultDatabase,
			Collection: mongo.DefaultCollection,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML data over the defaults and validates the result.
func Decode(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and durations.
func (c Config) Validate() error {
	if _, err := c.Layering(); err != nil {
		return err
	}
	if _, err := c.Restriction(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if !slices.Contains([]string{"none", "file", "redis"}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend redis requires redis.addr")
	}
	for name, d := range map[string]Duration{
		"debounce.query":     c.Debounce.Query,
		"debounce.root":      c.Debounce.Root,
		"server.session_ttl": c.Server.SessionTTL,
	} {
		if d.Duration < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative", name)
		}
	}
	if c.Server.CleanupInterval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.cleanup_interval must be positive")
	}
	return nil
}

// Layering returns the configured column assignment.
func (c Config) Layering() (transform.Layering, error) {
	switch c.Interaction.Layering {
	case "longest", "":
		return transform.LayeringLongestPath, nil
	case "shortest":
		return transform.LayeringShortestPath, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "interaction.layering must be longest or shortest, got %q", c.Interaction.Layering)
}

// Restriction returns the configured hover restriction.
func (c Config) Restriction() (interact.Restriction, error) {
	r, err := interact.ParseRestriction(c.Interaction.Restriction)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "interaction.restriction must be none or direct-parents, got %q", c.Interaction.Restriction)
	}
	return r, nil
}

// HoverOptions returns the highlight options used for hovering.
func (c Config) HoverOptions() interact.HighlightOptions {
	r, _ := c.Restriction()
	return interact.HighlightOptions{Restriction: r, ExcludeClones: !c.Interaction.IncludeClones}
}

// MenuOptions returns the context-menu settings.
func (c Config) MenuOptions() controls.MenuOptions {
	return controls.MenuOptions{
		QueryWait: c.Debounce.Query.Duration,
		RootWait:  c.Debounce.Root.Duration,
		Disabled:  c.Debounce.Disabled,
	}
}

// LogLevel returns the configured log level.
func (c Config) LogLevel() (log.Level, error) {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	return lvl, nil
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
