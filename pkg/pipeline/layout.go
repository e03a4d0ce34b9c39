package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/observability"
)

// History is a source the pipeline can lay out: a resolver, the frontiers
// used when none are requested, and a key identifying its content.
type History struct {
	// Key identifies the history in cache keys. Two histories with the same
	// key must resolve every ID to the same event.
	Key string

	// Resolver looks up events during layout.
	Resolver layout.Resolver

	// Frontiers are the default starting points.
	Frontiers []string

	// EventCount and EdgeCount are reported in [Stats] when known.
	EventCount int
	EdgeCount  int
}

// DatasetHistory wraps an in-memory dataset. Its key is the content hash.
func DatasetHistory(ds *lgio.Dataset) (History, error) {
	hash, err := datasetHash(ds)
	if err != nil {
		return History{}, errs.Wrap(errs.ErrCodeInternal, err, "hash dataset")
	}
	return History{
		Key:        hash,
		Resolver:   ds.Graph,
		Frontiers:  ds.Heads(),
		EventCount: ds.Graph.EventCount(),
		EdgeCount:  ds.Graph.EdgeCount(),
	}, nil
}

// frontiers returns the requested frontiers, or the history's defaults.
func (h History) frontiers(opts Options) []string {
	if len(opts.Frontiers) > 0 {
		return opts.Frontiers
	}
	return h.Frontiers
}

// ComputeLayout lays out the history reachable from frontiers without
// consulting any cache. Lane bookkeeping failures are returned as
// INTERNAL_ERROR instead of crashing the caller.
func ComputeLayout(ctx context.Context, r layout.Resolver, frontiers []string, opts Options) (view *layout.View, err error) {
	if err := ctx.Err(); err != nil {
		return nil, Classify(err)
	}
	policy, err := layout.PolicyByName(opts.DepOrder)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDepOrder, err, "invalid dep_order")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(frontiers))
	start := time.Now()

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		ie, ok := p.(*layout.InvariantError)
		if !ok {
			panic(p)
		}
		view, err = nil, errs.Wrap(errs.ErrCodeInternal, ie, "layout failed")
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
	}()

	view = layout.Compute(r, frontiers,
		layout.WithForkPolicy(policy),
		layout.WithMaxRows(opts.MaxRows))

	hooks.OnLayoutComplete(ctx, len(view.Rows), time.Since(start), view.Err())
	return view, nil
}

// checkUnresolved fails strict runs on unresolved references and logs them
// otherwise.
func checkUnresolved(view *layout.View, opts Options) error {
	err := view.Err()
	if err == nil {
		return nil
	}
	if opts.Strict {
		return Classify(err)
	}
	opts.Logger.Warn("history has unresolved references", "count", len(view.Unresolved), "err", err)
	return nil
}
