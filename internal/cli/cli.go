// Package cli implements the patchplan command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchplan/pkg/buildinfo"
	"github.com/matzehuels/patchplan/pkg/cache"
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "patchplan"

	// catalogScopeLen is how many hex digits of the catalog hash scope plan
	// cache keys when a custom catalog is loaded.
	catalogScopeLen = 12
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

	catalogPath   string
	cacheLocation string
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
		Use:   appName,
		Short: "Patchplan lays out mining units over resource deposits",
		Long: `Patchplan plans mining outposts: it packs units over a deposit patch in
paired columns around transport lanes, then adds transporters, relays and
boosters, clearing or avoiding whatever already stands on the map.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.catalogPath, "catalog", "", "prototype catalog (TOML), default is the built-in catalog")
	root.PersistentFlags().StringVar(&c.cacheLocation, "cache", "", "plan cache: directory, redis://..., mongodb://... or none (default: user cache dir)")

	root.AddCommand(c.planCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Plans computed against a
// custom catalog are cached under a key scope derived from the catalog file,
// so editing prototype sizes never serves stale geometry.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cat, scope, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope != "" {
		keyer = cache.NewScopedKeyer(nil, "catalog:"+scope+":")
	}
	return pipeline.NewRunner(store, keyer, cat, c.Logger), nil
}

// loadCatalog returns the catalog selected by --catalog and its cache scope.
// The built-in catalog has an empty scope.
func (c *CLI) loadCatalog() (*catalog.Catalog, string, error) {
	if c.catalogPath == "" {
		return catalog.Default(), "", nil
	}
	cat, err := catalog.Load(c.catalogPath)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(c.catalogPath)
	if err != nil {
		return nil, "", fmt.Errorf("read catalog %s: %w", c.catalogPath, err)
	}
	return cat, cache.Hash(data)[:catalogScopeLen], nil
}

// openCache opens the --cache location, falling back to the user cache
// directory. A missing home directory disables caching rather than failing.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	location := c.cacheLocation
	if location == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		location = dir
	}
	store, err := cache.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", location, err)
	}
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/patchplan/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
