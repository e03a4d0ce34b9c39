package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/cache"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
	"github.com/matzehuels/lanegraph/pkg/source/mongo"
)

// mongoFlags override the mongo section of the configuration.
type mongoFlags struct {
	uri        string
	database   string
	collection string
	limit      int64
}

func (f *mongoFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.uri, "uri", "", "MongoDB connection string (default: mongo.uri)")
	cmd.PersistentFlags().StringVar(&f.database, "database", "", "database name (default: mongo.database)")
	cmd.PersistentFlags().StringVar(&f.collection, "collection", "", "collection name (default: mongo.collection)")
}

// storeOptions merges flags over configuration.
func (c *CLI) storeOptions(f *mongoFlags) mongo.Options {
	opts := mongo.Options{
		URI:        c.Config.Mongo.URI,
		Database:   c.Config.Mongo.Database,
		Collection: c.Config.Mongo.Collection,
		Limit:      f.limit,
	}
	if f.uri != "" {
		opts.URI = f.uri
	}
	if f.database != "" {
		opts.Database = f.database
	}
	if f.collection != "" {
		opts.Collection = f.collection
	}
	return opts
}

// mongoCommand groups the MongoDB event store commands.
func (c *CLI) mongoCommand() *cobra.Command {
	var flags mongoFlags

	cmd := &cobra.Command{
		Use:   "mongo",
		Short: "Lay out or store events in a MongoDB collection",
		Long: `Lay out or store events in a MongoDB collection.

Each document is one event: {id, deps, lamport, message, meta}. Documents
without an id field use their _id. Connection settings come from the mongo
section of the configuration unless overridden by flags.`,
	}
	flags.register(cmd)

	cmd.AddCommand(c.mongoRenderCommand(&flags))
	cmd.AddCommand(c.mongoPushCommand(&flags))

	return cmd
}

// mongoRenderCommand creates the "mongo render" subcommand.
func (c *CLI) mongoRenderCommand(flags *mongoFlags) *cobra.Command {
	var (
		output string
		lf     layoutFlags
		rf     renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the events stored in a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMongoRender(cmd.Context(), flags, output, &lf, &rf)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().Int64Var(&flags.limit, "limit", 0, "read at most this many documents (0: all)")
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

func (c *CLI) runMongoRender(ctx context.Context, flags *mongoFlags, output string, lf *layoutFlags, rf *renderFlags) error {
	opts := c.storeOptions(flags)

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	source := mongo.SourceName(opts.Database, opts.Collection)
	key := runner.Keyer.HistoryKey(source, fmt.Sprintf("%s#%d", opts.URI, opts.Limit), cache.HistoryKeyOpts{})

	spinner := newSpinnerWithContext(ctx, "Loading "+source+"...")
	spinner.Start()
	ds, cached, err := runner.LoadHistory(ctx, key, lf.refresh, func(ctx context.Context) (*lgio.Dataset, error) {
		store, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		defer store.Close(context.WithoutCancel(ctx))
		return store.Load(ctx)
	})
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.Stop()
	c.Logger.Debug("loaded history", "source", source, "events", ds.Graph.EventCount(), "cached", cached)

	h, err := pipeline.DatasetHistory(ds)
	if err != nil {
		return err
	}
	base := output
	if base == "" {
		base = opts.Collection
	}
	return c.execute(ctx, runner, h, c.options(lf, rf), base, output)
}

// mongoPushCommand creates the "mongo push" subcommand.
func (c *CLI) mongoPushCommand(flags *mongoFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "push [dataset]",
		Short: "Insert the events of a dataset into a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := pipeline.Load(ctx, args[0])
			if err != nil {
				return err
			}

			store, err := mongo.Connect(ctx, c.storeOptions(flags))
			if err != nil {
				return err
			}
			defer store.Close(context.WithoutCancel(ctx))

			if err := store.Insert(ctx, ds.Graph.Events()); err != nil {
				return pipeline.Classify(err)
			}
			printSuccess("Inserted %d events into %s", ds.Graph.EventCount(), store.Source())
			return nil
		},
	}
}
