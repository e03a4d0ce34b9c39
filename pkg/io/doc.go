// Package io reads and writes event histories and computed layouts.
//
// # Dataset Format
//
// A dataset is a list of events plus an optional list of frontiers:
//
//	{
//	  "nodes": [
//	    {"id": "1", "deps": [], "lamport": 1},
//	    {"id": "2", "deps": ["1"], "lamport": 2, "message": "fix parser"}
//	  ],
//	  "frontiers": ["2"]
//	}
//
// Node fields:
//   - id: Unique string identifier (required)
//   - deps: IDs of the direct predecessors; may reference unknown events
//   - lamport: Logical clock. Omit it on every node to have generation
//     numbers assigned; omitting it on only some nodes is an error
//   - message: Display label, stored under [dag.MetaMessage]
//   - meta: Freeform object carried through to renderers
//
// When "frontiers" is empty the heads of the history are used, see
// [Dataset.Heads].
//
// The same shape can be written as YAML or TOML (with [[nodes]] tables).
// [FormatFromPath] picks the format from a file extension.
//
// # Import and Export
//
//	ds, err := io.ImportDataset("history.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	view := layout.Compute(ds.Graph, ds.Heads())
//
// [ReadDataset] and [WriteDataset] work on any reader or writer. Malformed
// input, duplicate IDs and negative clocks are rejected; dangling
// dependencies are kept so the layout can report them.
//
// # Layout Format
//
// [WriteLayout] serializes a computed [layout.View] using the field names
// renderers consume:
//
//	{
//	  "rows": [
//	    {
//	      "active": {"tid": 0, "node": {"id": "2", "deps": ["1"], "lamport": 2}},
//	      "active_index": 0,
//	      "cur_tids": [0],
//	      "input": [{"tid": 0, "dep_on_active": true}],
//	      "output": [{"tid": 0, "dep_on_active": true}]
//	    }
//	  ],
//	  "unresolved": ["deadbeef"],
//	  "truncated": false
//	}
//
// [ReadLayout] restores a view from that form, which is how cached layouts
// are loaded back.
//
// [layout.View]: github.com/matzehuels/lanegraph/pkg/layout.View
package io
