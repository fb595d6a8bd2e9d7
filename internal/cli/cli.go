// Package cli implements the nodegraph command-line interface.
//
// # Commands
//
//   - convert: convert a session into one of the projections
//   - hierarchy, neighbors, lineage, groups: shortcuts for convert -p
//   - inspect: summarise a session's graph
//   - watch: re-convert a session every time it changes
//   - cache: manage the conversion cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the CLI struct and is handed to the pipeline runner.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/buildinfo"
	"github.com/matzehuels/nodegraph/pkg/cache"
	"github.com/matzehuels/nodegraph/pkg/config"
	"github.com/matzehuels/nodegraph/pkg/observability/prom"
	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nodegraph"

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

	// Global flags
	verbose     bool
	configPath  string
	metricsFile string

	config  *config.Config
	metrics *prom.Hooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "nodegraph converts node-editor sessions into graph documents",
		Long: `nodegraph reads a node-editor session (nodes keyed by id plus port-to-port
connections) and converts it into name-keyed documents: a nested hierarchy,
a neighbor map, a neighbor map annotated with lineage, or the group layout.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.flushMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodegraph/config.toml)")
	pf.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(c.convertCommand())
	for _, p := range []string{
		pipeline.ProjectionHierarchy,
		pipeline.ProjectionNeighbors,
		pipeline.ProjectionLineage,
		pipeline.ProjectionGroups,
	} {
		root.AddCommand(c.projectionCommand(p))
	}
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and installs the metrics hooks.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "projection", cfg.Convert.Projection)

	if c.metricsFile != "" {
		c.metrics = prom.New()
		c.metrics.Register()
	}
	return nil
}

func (c *CLI) flushMetrics() error {
	if c.metrics == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return err
	}
	c.Logger.Debug("metrics written", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped
// by build so a new binary never serves an older binary's output.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.config.Convert.NoCache {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.config != nil && c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/nodegraph/).
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
