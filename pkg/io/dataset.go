package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// Format is a dataset serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions and format names that
// have no codec.
var ErrUnknownFormat = errors.New("unknown dataset format")

// ErrPartialLamport is returned when some nodes carry a lamport clock and
// others do not.
var ErrPartialLamport = errors.New("lamport set on some nodes but not all")

// FormatFromPath infers the dataset format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Dataset is a history together with the frontiers a layout starts from.
type Dataset struct {
	Graph     *dag.DAG
	Frontiers []string
}

// Heads returns the configured frontiers, or the heads of the graph when
// none were given.
func (d *Dataset) Heads() []string {
	if len(d.Frontiers) > 0 {
		return d.Frontiers
	}
	return d.Graph.Heads()
}

type dataset struct {
	Nodes     []node   `json:"nodes" yaml:"nodes" toml:"nodes"`
	Frontiers []string `json:"frontiers,omitempty" yaml:"frontiers,omitempty" toml:"frontiers,omitempty"`
}

type node struct {
	ID      string       `json:"id" yaml:"id" toml:"id"`
	Deps    []string     `json:"deps" yaml:"deps" toml:"deps"`
	Lamport *int64       `json:"lamport,omitempty" yaml:"lamport,omitempty" toml:"lamport,omitempty"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Meta    dag.Metadata `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty"`
}

func nodeFromEvent(e dag.Event) node {
	lamport := e.Lamport
	nd := node{ID: e.ID, Deps: e.Deps, Lamport: &lamport}
	if nd.Deps == nil {
		nd.Deps = []string{}
	}
	var meta dag.Metadata
	for k, v := range e.Meta {
		if k == dag.MetaMessage {
			if s, ok := v.(string); ok {
				nd.Message = s
				continue
			}
		}
		if meta == nil {
			meta = dag.Metadata{}
		}
		meta[k] = v
	}
	nd.Meta = meta
	return nd
}

func (n node) event() dag.Event {
	e := dag.Event{ID: n.ID, Deps: n.Deps, Meta: dag.Metadata{}}
	if n.Lamport != nil {
		e.Lamport = *n.Lamport
	}
	for k, v := range n.Meta {
		e.Meta[k] = v
	}
	if n.Message != "" {
		e.Meta[dag.MetaMessage] = n.Message
	}
	return e
}

// ReadDataset decodes a dataset from r in the given format.
//
// ReadDataset returns an error if the input is malformed, a node has an
// empty or duplicate ID or a negative lamport, or lamport is present on only
// some of the nodes. When no node has a lamport, generation numbers are
// assigned with [dag.DAG.AssignLamport]. ReadDataset does not close r.
func ReadDataset(r io.Reader, format Format) (*Dataset, error) {
	var data dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return build(data)
}

func build(data dataset) (*Dataset, error) {
	clocked := 0
	for _, n := range data.Nodes {
		if n.Lamport != nil {
			clocked++
		}
	}
	if clocked > 0 && clocked < len(data.Nodes) {
		return nil, fmt.Errorf("%w (%d of %d)", ErrPartialLamport, clocked, len(data.Nodes))
	}

	g := dag.New(nil)
	for _, n := range data.Nodes {
		if err := g.AddEvent(n.event()); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	if clocked == 0 {
		g.AssignLamport()
	}
	return &Dataset{Graph: g, Frontiers: data.Frontiers}, nil
}

// ImportDataset reads the dataset file at path, choosing the format from its
// extension.
func ImportDataset(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	ds, err := ReadDataset(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// WriteDataset encodes ds in the given format. Events are written in
// traversal priority order and always carry their lamport value, so the
// output reads back identically.
func WriteDataset(ds *Dataset, w io.Writer, format Format) error {
	events := ds.Graph.Events()
	out := dataset{Nodes: make([]node, len(events)), Frontiers: ds.Frontiers}
	for i, e := range events {
		out.Nodes[i] = nodeFromEvent(e)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(out); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// ExportDataset writes ds to path in the format implied by its extension.
func ExportDataset(ds *Dataset, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDataset(ds, f, format)
}
