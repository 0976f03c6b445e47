// Package cli implements the depsolve command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/pkg/buildinfo"
	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/graphio"
	"github.com/hferras/depsolve/pkg/manifest"
)

// appName is the application name used for directories and display.
const appName = "depsolve"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "depsolve",
		Short:        "Depsolve analyzes package dependency graphs",
		Long:         `Depsolve loads dependency graphs from manifest or graph files and answers the questions a package manager asks: which packages are safe to process first, where the cycles are, and in what order everything can be merged.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cyclesCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadGraph reads a dependency graph from path. TOML files are treated as
// package manifests, JSON files as serialized graphs.
func loadGraph(path string) (*depgraph.Graph[string], error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		m, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		return m.Graph(), nil
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open graph file: %w", err)
		}
		defer f.Close()
		return graphio.Read(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .toml or .json)", filepath.Ext(path))
	}
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depsolve/).
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
