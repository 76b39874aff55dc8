// Package cli implements the listgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/listgraph/pkg/buildinfo"
	"github.com/matzehuels/listgraph/pkg/cache"
	"github.com/matzehuels/listgraph/pkg/config"
	"github.com/matzehuels/listgraph/pkg/source"
	"github.com/matzehuels/listgraph/pkg/source/file"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "listgraph"

	// configEnv names the environment variable holding the config file path.
	configEnv = "LISTGRAPH_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is read before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Listgraph explores layered graphs interactively",
		Long:         `Listgraph lays out directed graphs in columns, cloning nodes that span several columns, and lets you hover, lock, root and query nodes from a terminal UI, an HTTP API or one-shot renders.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $"+configEnv+" or ~/.config/listgraph/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level. --verbose
// always wins.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		if env := os.Getenv(configEnv); env != "" {
			path, explicit = env, true
		} else if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if !explicit {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}
	return nil
}

// =============================================================================
// Sources and Caches
// =============================================================================

// loadFile reads and lays out the graph file at path.
func (c *CLI) loadFile(ctx context.Context, path string) (*source.Result, *file.Source, error) {
	layering, err := c.cfg.Layering()
	if err != nil {
		return nil, nil, err
	}
	src := file.New(path, file.Options{Logger: c.Logger})
	prog := newProgress(c.Logger)
	res, err := source.Load(ctx, src, layering)
	if err != nil {
		return nil, nil, err
	}
	prog.done("Loaded "+src.Name(), "nodes", res.Graph.NodeCount(), "columns", res.Graph.Columns())
	return res, src, nil
}

// newCache returns the render cache selected by the configuration.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NullCache{}, nil
	}
	switch c.cfg.Cache.Backend {
	case "file":
		dir := c.cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NullCache{}, nil
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(c.redisClient(), c.cfg.Redis.KeyPrefix), nil
	}
	return cache.NullCache{}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/listgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/listgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
