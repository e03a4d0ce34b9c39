package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/cache"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
	"github.com/matzehuels/lanegraph/pkg/source/gitlog"
)

// gitOpts holds the command-line flags for the git command.
type gitOpts struct {
	output     string
	revisions  []string
	maxCommits int
	export     string
	lf         layoutFlags
	rf         renderFlags
}

// gitCommand lays out the commit graph of a git repository.
func (c *CLI) gitCommand() *cobra.Command {
	var opts gitOpts

	cmd := &cobra.Command{
		Use:   "git [path]",
		Short: "Lay out the commit history of a git repository",
		Long: `Lay out the commit history of a git repository.

Every local branch head is a frontier unless --rev names revisions
explicitly. Commits are read lazily from the object database; --max-commits
bounds how much history is loaded, and the layout is marked truncated where
it stops.

Use --export to write the collected history as a dataset file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return c.runGit(cmd.Context(), path, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringSliceVar(&opts.revisions, "rev", nil, "revision to start from (repeatable, default: all branches)")
	cmd.Flags().IntVar(&opts.maxCommits, "max-commits", 0, "load at most this many commits (0: unlimited)")
	cmd.Flags().StringVar(&opts.export, "export", "", "write the collected history to a dataset file")
	opts.lf.register(cmd)
	opts.rf.register(cmd)

	return cmd
}

func (c *CLI) runGit(ctx context.Context, path string, opts *gitOpts) error {
	for _, rev := range opts.revisions {
		if err := errs.ValidateRevision(rev); err != nil {
			return err
		}
	}

	prog := newProgress(c.Logger)
	repo, err := gitlog.Open(path, gitlog.Options{Revisions: opts.revisions, MaxCommits: opts.maxCommits})
	if err != nil {
		return errs.Wrap(errs.ErrCodeNotFound, err, "no git repository at %s", path)
	}
	frontiers, err := repo.Frontiers()
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "resolve revisions")
	}
	prog.done(fmt.Sprintf("Resolved %d frontier(s) in %s", len(frontiers), repo.Root()))

	if opts.export != "" {
		return c.exportGit(repo, frontiers, opts.export)
	}

	runner, err := c.newRunner(ctx, opts.lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	h := gitHistory(runner.Keyer, repo, frontiers, opts)
	base := opts.output
	if base == "" {
		base = filepath.Base(repo.Root())
	}
	return c.execute(ctx, runner, h, c.options(&opts.lf, &opts.rf), base, opts.output)
}

// gitHistory keys the history by repository and resolved frontier hashes.
// Commits are immutable, so the same hashes always lay out the same way.
func gitHistory(keyer cache.Keyer, repo *gitlog.Repository, frontiers []string, opts *gitOpts) pipeline.History {
	key := keyer.HistoryKey("git:"+repo.Root(), strings.Join(frontiers, ","), cache.HistoryKeyOpts{
		Revisions:  opts.revisions,
		MaxCommits: opts.maxCommits,
	})
	return pipeline.History{
		Key:       key,
		Resolver:  repo,
		Frontiers: frontiers,
	}
}

func (c *CLI) exportGit(repo *gitlog.Repository, frontiers []string, path string) error {
	prog := newProgress(c.Logger)
	g, err := repo.Collect(frontiers)
	if err != nil {
		return pipeline.Classify(err)
	}
	prog.done(fmt.Sprintf("Collected %d commits", g.EventCount()))

	if err := lgio.ExportDataset(&lgio.Dataset{Graph: g, Frontiers: frontiers}, path); err != nil {
		return pipeline.Classify(fmt.Errorf("export %s: %w", path, err))
	}
	printSuccess("History exported")
	printFile(path)
	printNewline()
	printNextStep("Render", appName+" render "+path)
	return nil
}
