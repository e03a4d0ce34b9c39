package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the lamport clock, lane and metadata to node labels and
	// draws unresolved dependencies as dashed placeholder nodes.
	Detailed bool
	// Colored fills every node with the colour of the lane it sits on.
	Colored bool
}

// ToDOT converts a layout to Graphviz DOT format. Only events present in the
// view become nodes, so a truncated view yields a truncated diagram. Edges
// point from an event to its dependencies.
func ToDOT(v *layout.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, r := range v.Rows {
		label := fmtLabel(r, opts.Detailed)
		attrs := fmtAttrs(r, label, opts.Colored)
		fmt.Fprintf(&buf, "  %q [%s];\n", r.ID(), strings.Join(attrs, ", "))
	}
	if opts.Detailed {
		for _, id := range v.Unresolved {
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=black];\n", id, id+"\n(unresolved)")
		}
	}

	present := make(map[string]bool, len(v.Rows))
	for _, r := range v.Rows {
		present[r.ID()] = true
	}
	missing := make(map[string]bool, len(v.Unresolved))
	for _, id := range v.Unresolved {
		missing[id] = true
	}

	buf.WriteString("\n")
	for _, r := range v.Rows {
		for _, dep := range uniq(r.Active.Event.Deps) {
			switch {
			case present[dep]:
				fmt.Fprintf(&buf, "  %q -> %q;\n", r.ID(), dep)
			case opts.Detailed && missing[dep]:
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", r.ID(), dep)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func uniq(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func fmtLabel(r layout.Row, detailed bool) string {
	e := r.Active.Event
	if !detailed {
		return e.Label()
	}

	parts := []string{fmt.Sprintf("lamport: %d", e.Lamport), fmt.Sprintf("lane: %d", r.Active.Tid)}
	for _, k := range slices.Sorted(maps.Keys(e.Meta)) {
		if k == dag.MetaMessage {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Meta[k]))
	}

	return e.Label() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(r layout.Row, label string, colored bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if colored {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", render.LaneHex(r.Active.Tid)), "fontcolor=white")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
