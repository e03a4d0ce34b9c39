// Package pkg provides the core libraries for lanegraph.
//
// # Overview
//
// Lanegraph lays out event DAGs (commit graphs, causal logs, CRDT
// histories) as lanes: every event gets a row, newest first, and every
// open line of history gets a column that persists from the row that
// opened it to the row that closed it. The pkg directory is organized into
// these areas:
//
//  1. [dag] - Event graph storage and validation
//  2. [layout] - The lane layout engine
//  3. [io] - Dataset and layout serialization (JSON, YAML, TOML)
//  4. [render] - SVG, text and Graphviz renderings of a layout
//  5. source - Histories read from git repositories and MongoDB
//  6. [pipeline] - Orchestration (load → layout → render) with caching
//
// # Architecture
//
// The typical data flow:
//
//	dataset file / git repository / MongoDB collection
//	         ↓
//	    [dag] or a [layout.Resolver] (events by id)
//	         ↓
//	    [layout] (rows and lanes)
//	         ↓
//	    [render] (svg, txt, dot, png, pdf) or [io] (layout JSON)
//
// # Quick Start
//
// Load a dataset and print its lanes:
//
//	import (
//	    "fmt"
//
//	    lgio "github.com/matzehuels/lanegraph/pkg/io"
//	    "github.com/matzehuels/lanegraph/pkg/layout"
//	    "github.com/matzehuels/lanegraph/pkg/render/text"
//	)
//
//	ds, _ := lgio.ImportDataset("history.json")
//	v := layout.Compute(ds.Graph, ds.Heads())
//	fmt.Print(text.Render(v))
//
// # Main Packages
//
// [dag] - An immutable-after-build graph of events with lamport clocks.
// Validates ids, dependencies, clock order and cycles.
//
// [layout] - Produces one row per reachable event, ordered by lamport clock
// with ties broken by id, and assigns lanes so that converging lines
// collapse and lane ids are reused. Fork policies decide which dependency
// continues the current lane.
//
// [io] - Reads and writes datasets and layout files.
//
// [render] - Lane SVG ([render/svg]), terminal text ([render/text]) and
// node-link Graphviz output ([render/nodelink]). PNG and PDF are converted
// from SVG.
//
// Sources: [source/gitlog] reads commit histories with go-git and
// [source/mongo] reads events stored in MongoDB.
//
// [pipeline] - The load → layout → render pipeline shared by the CLI and
// the HTTP server, with results cached through [cache].
//
// [cache] - File, Redis and no-op caches with content-derived keys.
//
// [config] - Layered configuration (defaults, user file, project file,
// environment).
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for metrics and tracing.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/dag
// [layout]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/layout
// [layout.Resolver]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/layout#Resolver
// [io]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/render/svg
// [render/text]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/render/text
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/render/nodelink
// [source/gitlog]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/source/gitlog
// [source/mongo]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/source/mongo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lanegraph/pkg/observability
package pkg
