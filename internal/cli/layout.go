package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing lane layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Compute the lane layout of a dataset",
		Long: `Compute the lane layout of a dataset.

The dataset is a JSON, YAML or TOML file listing events with their
dependencies and optional lamport clocks. The output is a layout.json file
holding one row per event, newest first, with the lanes entering and leaving
each row. Render it with 'render' or inspect it with 'show'.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the dataset, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, flags *layoutFlags) error {
	ds, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	h, err := pipeline.DatasetHistory(ds)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.options(flags, nil)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	view, cacheHit, err := runner.LayoutWithCacheInfo(ctx, h, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		return lgio.WriteLayout(view, c.out)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if err := lgio.WriteLayout(view, f); err != nil {
		f.Close()
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(viewStats(view, h.EventCount, h.EdgeCount), cacheHit)
	if view.Truncated {
		printWarning("Layout truncated after %d rows", len(view.Rows))
	}
	if n := len(view.Unresolved); n > 0 {
		printWarning("%d unresolved reference(s): %s", n, strings.Join(view.Unresolved, ", "))
	}
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
