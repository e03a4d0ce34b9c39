package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
	"github.com/matzehuels/lanegraph/pkg/render/text"
)

// showCommand prints the lanes of a dataset to the terminal.
func (c *CLI) showCommand() *cobra.Command {
	var (
		flags   layoutFlags
		ids     bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "show [dataset]",
		Short: "Print the lane graph of a dataset to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := c.layoutFile(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			opts := []text.Option{text.WithColor(!noColor)}
			if ids {
				opts = append(opts, text.WithIDs())
			}
			return show(c.out, v, opts...)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&ids, "ids", false, "print event ids before messages")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable lane colours")

	return cmd
}

func show(w io.Writer, v *layout.View, opts ...text.Option) error {
	_, err := io.WriteString(w, text.Render(v, opts...))
	return err
}

// layoutFile loads a dataset and lays it out through the cached runner.
func (c *CLI) layoutFile(ctx context.Context, input string, flags *layoutFlags) (*layout.View, pipeline.History, error) {
	ds, err := pipeline.Load(ctx, input)
	if err != nil {
		return nil, pipeline.History{}, err
	}
	h, err := pipeline.DatasetHistory(ds)
	if err != nil {
		return nil, pipeline.History{}, err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, pipeline.History{}, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	v, err := runner.Layout(ctx, h, c.options(flags, nil))
	if err != nil {
		return nil, pipeline.History{}, err
	}
	return v, h, nil
}
