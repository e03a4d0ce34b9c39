// Package render holds what the lane renderers share.
//
// # Overview
//
// The subpackages turn a computed [layout.View] into output:
//
//   - [svg]: vector drawing of lanes, connectors and nodes
//   - [text]: coloured terminal drawing
//   - [nodelink]: Graphviz diagram of the event graph itself
//
// # Lane Colours
//
// [LaneHSL] assigns every lane id a colour by stepping the hue with the golden
// angle, so neighbouring lanes stay distinguishable however many there are.
// [LaneColor] formats it for SVG and [LaneHex] for tools that only accept
// RGB.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	doc := svg.Render(view)
//	pdf, err := render.ToPDF(doc)
//	png, err := render.ToPNG(doc, 2.0)  // 2x scale
//
// [layout.View]: github.com/matzehuels/lanegraph/pkg/layout.View
// [svg]: github.com/matzehuels/lanegraph/pkg/render/svg
// [text]: github.com/matzehuels/lanegraph/pkg/render/text
// [nodelink]: github.com/matzehuels/lanegraph/pkg/render/nodelink
package render
