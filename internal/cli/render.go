package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output string
		watch  bool
		lf     layoutFlags
		rf     renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset to SVG, PNG, PDF, DOT, text or layout JSON",
		Long: `Render a dataset to one or more output formats.

Formats are given as a comma-separated list (-f svg,txt). With one format the
output goes to -o as given; with several, -o is the base name and each format
gets its own extension.

The lanes style draws the computed layout. The nodelink style draws the plain
event graph with Graphviz and applies to svg, png and pdf.

With --watch the dataset is re-rendered every time the file changes. Each
change recomputes the whole layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return c.watchRender(cmd.Context(), args[0], output, &lf, &rf)
			}
			return c.runRender(cmd.Context(), args[0], output, &lf, &rf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the dataset changes")
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

// runRender executes the whole pipeline once and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input, output string, lf *layoutFlags, rf *renderFlags) error {
	ds, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	h, err := pipeline.DatasetHistory(ds)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	return c.execute(ctx, runner, h, c.options(lf, rf), input, output)
}

// execute runs the pipeline over h and writes the artifacts next to input.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, h pipeline.History, opts pipeline.Options, input, output string) error {
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, h, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(input, output, opts.Formats)
	formats := slices.Sorted(maps.Keys(result.Artifacts))

	printSuccess("Rendered %d file(s)", len(formats))
	for _, f := range formats {
		path := paths[f]
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if result.View.Truncated {
		printWarning("Layout truncated after %d rows", len(result.View.Rows))
	}
	return nil
}

// watchRender renders once, then again after every change to input until
// ctx is cancelled. Render failures are reported and the watch continues.
func (c *CLI) watchRender(ctx context.Context, input, output string, lf *layoutFlags, rf *renderFlags) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file on save, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	render := func() {
		if err := c.runRender(ctx, input, output, lf, rf); err != nil && ctx.Err() == nil {
			printError("%v", err)
		}
	}

	render()
	printInfo("Watching %s (ctrl+c to stop)", input)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			c.Logger.Debug("dataset changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-trigger:
			trigger = nil
			render()
		}
	}
}
