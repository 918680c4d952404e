// Package cli implements the rfkit command-line interface.
//
// This package provides commands for fetching event waveforms from FDSN web
// services, rendering receiver function plots as SVG, serving stored figures
// over HTTP, and managing the waveform cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - fetch: Iterate events and download three-component waveforms
//   - plot: Render stack, profile, and map figures from fetched streams
//   - serve: Serve rendered figures and Prometheus metrics over HTTP
//   - cache: Manage the waveform cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rfkit/rfkit/pkg/buildinfo"
	"github.com/rfkit/rfkit/pkg/cache"

	// Registers the WGS84 geodesic solver used for piercing points.
	_ "github.com/rfkit/rfkit/pkg/geo/wgs84"
)

// appName is the application name used for directories and display.
const appName = "rfkit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and the on-disk
// configuration, if present.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	cfg, err := LoadConfig(configPath())
	if err != nil {
		c.Logger.Warn("ignoring config file", "err", err)
		cfg = DefaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "rfkit fetches and plots teleseismic receiver functions",
		Long:         `rfkit is a CLI tool for fetching three-component event seismograms from FDSN web services and rendering receiver function stack, profile, and map figures.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache builds the waveform cache backend. Redis is used when configured,
// the XDG file cache otherwise. Failures degrade to a null cache so fetches
// still work without one.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if addr := c.Config.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(addr, c.Config.Cache.RedisPassword, c.Config.Cache.RedisDB)
		if err == nil {
			return cache.Instrumented(rc)
		}
		c.Logger.Warn("redis cache unavailable, falling back to file cache", "err", err)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return cache.Instrumented(fc)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/rfkit/).
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

// configPath returns the config file path using XDG standard
// (~/.config/rfkit/config.toml).
func configPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
