// Package svg draws a lane layout as an SVG document.
//
// Each row is two cells tall: the upper half carries the input connectors
// into the node level, the lower half the output connectors out of it.
// Lanes keep one colour for their whole life (see [render.LaneColor]), the
// active event is drawn red and a label with the event's message or ID sits
// right of the widest column.
//
//	doc := svg.Render(view, svg.WithCellSize(16), svg.WithTooltips())
//
// The output can be converted to PDF or PNG with [render.ToPDF] and
// [render.ToPNG].
//
// [render.LaneColor]: github.com/matzehuels/lanegraph/pkg/render.LaneColor
// [render.ToPDF]: github.com/matzehuels/lanegraph/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/lanegraph/pkg/render.ToPNG
package svg
