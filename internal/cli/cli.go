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

	"github.com/matzehuels/lanegraph/pkg/buildinfo"
	"github.com/matzehuels/lanegraph/pkg/cache"
	"github.com/matzehuels/lanegraph/pkg/config"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lanegraph"

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

	// Config is loaded lazily by [CLI.LoadConfig] before a command runs.
	Config *config.Configuration

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the layered configuration once. Later calls are no-ops.
func (c *CLI) LoadConfig() error {
	if c.Config != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lanegraph lays out event histories as lanes",
		Long:         `Lanegraph lays out event DAGs such as commit graphs or causal logs: every event gets a row, every open branch a lane, and the result renders to SVG, text or Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.LoadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.ProjectConfigPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.gitCommand())
	root.AddCommand(c.mongoCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	if err := c.LoadConfig(); err != nil {
		return nil, err
	}
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL
	return runner, nil
}

// newCache opens the backend selected by cache.backend. A file cache whose
// directory cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("file cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns cache.dir, or the user cache directory
// (~/.cache/lanegraph/ on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.DefaultCacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	frontiers []string
	depOrder  string
	maxRows   int
	strict    bool
	noCache   bool
	refresh   bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.frontiers, "frontier", nil, "frontier event id (repeatable, default: heads)")
	cmd.Flags().StringVar(&f.depOrder, "dep-order", "", "fork policy: priority (default), first")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "stop after this many rows (0: unlimited)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on unresolved references")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// renderFlags are the flags shared by every command that renders output.
type renderFlags struct {
	formats     string
	style       string
	cellSize    float64
	noLabels    bool
	detailed    bool
	interactive bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg, png, pdf, json, dot, txt (comma-separated)")
	cmd.Flags().StringVar(&f.style, "style", "", "visual style: lanes (default), nodelink")
	cmd.Flags().Float64Var(&f.cellSize, "cell-size", 0, "lane spacing in pixels")
	cmd.Flags().BoolVar(&f.noLabels, "no-labels", false, "hide event labels")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show lamport clocks and metadata (nodelink)")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "highlight lanes on hover (svg)")
}

// options merges flags over configuration. Flags win when set.
func (c *CLI) options(lf *layoutFlags, rf *renderFlags) pipeline.Options {
	cfg := c.Config
	opts := pipeline.Options{
		DepOrder: cfg.Layout.DepOrder,
		MaxRows:  cfg.Layout.MaxRows,
		Style:    cfg.Render.Style,
		CellSize: cfg.Render.CellSize,
		Formats:  cfg.Formats(),
		Logger:   c.Logger,
	}
	if lf != nil {
		opts.Frontiers = lf.frontiers
		opts.Strict = lf.strict
		opts.Refresh = lf.refresh
		if lf.depOrder != "" {
			opts.DepOrder = lf.depOrder
		}
		if lf.maxRows > 0 {
			opts.MaxRows = lf.maxRows
		}
	}
	if rf != nil {
		if rf.formats != "" {
			opts.Formats = pipeline.ParseFormats(rf.formats)
		}
		if rf.style != "" {
			opts.Style = rf.style
		}
		if rf.cellSize > 0 {
			opts.CellSize = rf.cellSize
		}
		opts.NoLabels = rf.noLabels
		opts.Detailed = rf.detailed
		opts.Interactive = rf.interactive
	}
	return opts
}

// outputPaths maps each format to a file. A single format writes to output
// as given; several formats use output (or input without extension) as the
// base name.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".layout.json"
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}
