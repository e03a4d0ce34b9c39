package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/dag"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// validateCommand checks a dataset without laying it out.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check a dataset for missing dependencies, clock violations and cycles",
		Long: `Check a dataset for structural problems.

The layout tolerates dependencies that resolve to nothing, but a complete
dataset should not have any. validate reports them together with lamport
clocks that do not decrease along dependencies, dependency cycles and
frontiers that name unknown events.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := pipeline.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := validateDataset(ds); err != nil {
				printError("%s is invalid", args[0])
				return err
			}
			printSuccess("%s is valid", args[0])
			printSummary(c.out, ds.Graph)
			return nil
		},
	}
}

// validateDataset runs the structural checks and the frontier checks.
func validateDataset(ds *lgio.Dataset) error {
	if err := ds.Graph.Validate(); err != nil {
		return pipeline.Classify(err)
	}
	if err := errs.ValidateFrontiers(ds.Frontiers); err != nil {
		return err
	}
	var unknown []string
	for _, id := range ds.Frontiers {
		if _, ok := ds.Graph.Event(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return errs.New(errs.ErrCodeInvalidInput, "unknown frontier(s): %s", strings.Join(unknown, ", "))
	}
	return nil
}

func printSummary(w io.Writer, g *dag.DAG) {
	merges := 0
	for _, e := range g.Events() {
		if e.IsMerge() {
			merges++
		}
	}
	fmt.Fprintf(w, "  %d events · %d edges · %d roots · %d heads · %d merges\n",
		g.EventCount(), g.EdgeCount(), len(g.Roots()), len(g.Heads()), merges)
}
