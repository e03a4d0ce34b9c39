// Package nodelink renders a layout as a traditional node-link diagram.
//
// # Overview
//
// Where the lane renderers show the history as columns, this package hands
// the event graph to Graphviz and lets it place the nodes. It is useful for
// small histories and for checking a dataset by eye.
//
// # Usage
//
// Convert a view to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(view, nodelink.Options{Colored: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the lamport clock, lane and metadata,
//     and unresolved dependencies appear as dashed placeholders
//   - Colored: nodes are filled with their lane colour, matching the SVG
//     lane drawing
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
