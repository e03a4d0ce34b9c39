package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
)

const basicJSON = `{
  "nodes": [
    {"id": "1", "deps": [], "lamport": 1},
    {"id": "2", "deps": ["1"], "lamport": 2, "message": "left"},
    {"id": "3", "deps": ["1"], "lamport": 3, "meta": {"author": "ana"}},
    {"id": "4", "deps": ["2", "3"], "lamport": 4}
  ],
  "frontiers": ["4"]
}`

const basicYAML = `
nodes:
  - id: "1"
    deps: []
    lamport: 1
  - id: "2"
    deps: ["1"]
    lamport: 2
    message: left
  - id: "3"
    deps: ["1"]
    lamport: 3
    meta:
      author: ana
  - id: "4"
    deps: ["2", "3"]
    lamport: 4
frontiers: ["4"]
`

const basicTOML = `
frontiers = ["4"]

[[nodes]]
id = "1"
deps = []
lamport = 1

[[nodes]]
id = "2"
deps = ["1"]
lamport = 2
message = "left"

[[nodes]]
id = "3"
deps = ["1"]
lamport = 3
[nodes.meta]
author = "ana"

[[nodes]]
id = "4"
deps = ["2", "3"]
lamport = 4
`

func TestReadDatasetFormats(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatJSON, basicJSON},
		{FormatYAML, basicYAML},
		{FormatTOML, basicTOML},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			ds, err := ReadDataset(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadDataset: %v", err)
			}
			if ds.Graph.EventCount() != 4 || ds.Graph.EdgeCount() != 4 {
				t.Errorf("events=%d edges=%d, want 4 4", ds.Graph.EventCount(), ds.Graph.EdgeCount())
			}
			if !slices.Equal(ds.Frontiers, []string{"4"}) {
				t.Errorf("Frontiers = %v", ds.Frontiers)
			}
			two, _ := ds.Graph.Resolve("2")
			if two.Label() != "left" || two.Lamport != 2 {
				t.Errorf("event 2 = %+v", two)
			}
			three, _ := ds.Graph.Resolve("3")
			if three.Meta["author"] != "ana" {
				t.Errorf("event 3 meta = %v", three.Meta)
			}
		})
	}
}

func TestReadDatasetErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate", `{"nodes":[{"id":"a","lamport":1},{"id":"a","lamport":2}]}`, dag.ErrDuplicateEventID},
		{"empty id", `{"nodes":[{"id":"","lamport":1}]}`, dag.ErrInvalidEventID},
		{"negative", `{"nodes":[{"id":"a","lamport":-1}]}`, dag.ErrNegativeLamport},
		{"partial lamport", `{"nodes":[{"id":"a","lamport":1},{"id":"b","deps":["a"]}]}`, ErrPartialLamport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadDataset(strings.NewReader("{"), FormatJSON); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := ReadDataset(strings.NewReader("{}"), Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}

func TestReadDatasetAssignsLamport(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(`{"nodes":[{"id":"a"},{"id":"b","deps":["a"]},{"id":"c","deps":["b","ghost"]}]}`), FormatJSON)
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	for id, want := range map[string]int64{"a": 1, "b": 2, "c": 3} {
		if e, _ := ds.Graph.Resolve(id); e.Lamport != want {
			t.Errorf("lamport(%s) = %d, want %d", id, e.Lamport, want)
		}
	}
	if got := ds.Heads(); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Heads() = %v, want [c]", got)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			ds, err := ReadDataset(strings.NewReader(basicJSON), FormatJSON)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := WriteDataset(ds, &buf, format); err != nil {
				t.Fatalf("WriteDataset: %v", err)
			}
			back, err := ReadDataset(&buf, format)
			if err != nil {
				t.Fatalf("ReadDataset: %v\n%s", err, buf.String())
			}
			for _, e := range ds.Graph.Events() {
				got, ok := back.Graph.Resolve(e.ID)
				if !ok || got.Lamport != e.Lamport || !slices.Equal(got.Deps, e.Deps) || got.Label() != e.Label() {
					t.Errorf("event %s = %+v, want %+v", e.ID, got, e)
				}
			}
		})
	}
}

func TestImportExportDataset(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "history.json")
	if err := os.WriteFile(src, []byte(basicJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := ImportDataset(src)
	if err != nil {
		t.Fatalf("ImportDataset: %v", err)
	}
	dst := filepath.Join(dir, "history.yml")
	if err := ExportDataset(ds, dst); err != nil {
		t.Fatalf("ExportDataset: %v", err)
	}
	back, err := ImportDataset(dst)
	if err != nil {
		t.Fatalf("ImportDataset(yml): %v", err)
	}
	if back.Graph.EventCount() != 4 {
		t.Errorf("EventCount = %d", back.Graph.EventCount())
	}

	if _, err := ImportDataset(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := ImportDataset(filepath.Join(dir, "history.xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("bad extension error = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":    FormatJSON,
		"a.YAML":    FormatYAML,
		"dir/b.yml": FormatYAML,
		"c.toml":    FormatTOML,
	}
	for path, want := range tests {
		if got, err := FormatFromPath(path); err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v", path, got, err)
		}
	}
	if f, err := ParseFormat("yml"); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(yml) = %q, %v", f, err)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(basicJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Graph.AddEvent(dag.Event{ID: "5", Deps: []string{"4", "ghost"}, Lamport: 5}); err != nil {
		t.Fatal(err)
	}
	view := layout.Compute(ds.Graph, []string{"5"}, layout.WithMaxRows(3))

	data, err := MarshalLayout(view)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if len(back.Rows) != len(view.Rows) || !back.Truncated || !slices.Equal(back.Unresolved, []string{"ghost"}) {
		t.Fatalf("view = %+v", back)
	}
	for i := range view.Rows {
		a, b := view.Rows[i], back.Rows[i]
		if a.ID() != b.ID() || a.Active.Tid != b.Active.Tid || a.ActiveIndex != b.ActiveIndex ||
			!slices.Equal(a.CurTids, b.CurTids) || !slices.Equal(a.Input, b.Input) || !slices.Equal(a.Output, b.Output) {
			t.Errorf("row %d: got %+v, want %+v", i, b, a)
		}
	}
}

func TestWriteLayoutWireNames(t *testing.T) {
	g, _ := dag.FromEvents([]dag.Event{{ID: "a", Lamport: 1}})
	var buf bytes.Buffer
	if err := WriteLayout(layout.Compute(g, []string{"a"}), &buf); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"active"`, `"tid"`, `"node"`, `"active_index"`, `"cur_tids"`, `"input"`, `"output"`, `"dep_on_active"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("output missing %s:\n%s", key, buf.String())
		}
	}
	back, err := ReadLayout(&buf)
	if err != nil || len(back.Rows) != 1 {
		t.Errorf("ReadLayout = %+v, %v", back, err)
	}
}
