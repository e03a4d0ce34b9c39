package pipeline

import (
	"context"
	"fmt"
	"time"

	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/observability"
)

// Load reads a dataset file. The format follows the file extension.
func Load(ctx context.Context, path string) (*lgio.Dataset, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, "file", path)
	start := time.Now()

	ds, err := lgio.ImportDataset(path)
	if err != nil {
		hooks.OnLoadComplete(ctx, "file", 0, time.Since(start), err)
		return nil, Classify(fmt.Errorf("load dataset: %w", err))
	}

	hooks.OnLoadComplete(ctx, "file", ds.Graph.EventCount(), time.Since(start), nil)
	return ds, nil
}
