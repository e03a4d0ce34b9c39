package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
)

const (
	DefaultCellSize = 20.0
	fontSize        = 12.0
	// charWidth approximates the advance of one label glyph at fontSize.
	charWidth = 7.0
)

const laneInteractionCSS = `
    .lane { transition: stroke-width 0.2s ease; }
    .lane.highlight { stroke-width: 4; }
    .node { cursor: default; }`

const laneInteractionJS = `
    function highlight(tid) {
      document.querySelectorAll('.lane').forEach(p => p.classList.toggle('highlight', p.dataset.tid === tid));
    }
    function clearHighlight() {
      document.querySelectorAll('.lane').forEach(p => p.classList.remove('highlight'));
    }
    document.querySelectorAll('.lane, .node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.tid));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	cell        float64
	labels      bool
	tooltips    bool
	interactive bool
}

// WithCellSize sets the width of one lane column in pixels. Rows are two
// cells apart and node markers scale with the cell.
func WithCellSize(px float64) Option {
	return func(r *renderer) {
		if px > 0 {
			r.cell = px
		}
	}
}

// WithLabels toggles the event label drawn right of each row.
func WithLabels(on bool) Option { return func(r *renderer) { r.labels = on } }

// WithTooltips adds a hover title with the event's ID, clock and metadata.
func WithTooltips() Option { return func(r *renderer) { r.tooltips = true } }

// WithInteractive embeds a script that highlights a lane on hover.
func WithInteractive() Option { return func(r *renderer) { r.interactive = true } }

// Render draws the view as a standalone SVG document.
//
// Row i occupies the band [2i*cell, 2(i+1)*cell) with its node level in the
// middle. Input connectors run from the input position at the top of the
// band to the node level, output connectors from the node level down to the
// output position at the bottom. Connectors are cubic curves coloured per lane; the active
// event is marked red, lanes passing the node level get a black dot.
func Render(v *layout.View, opts ...Option) []byte {
	r := renderer{cell: DefaultCellSize, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	width, height := r.size(v)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", laneInteractionCSS)
	}

	for i, row := range v.Rows {
		r.renderRow(&buf, row, i)
	}

	if r.interactive {
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", laneInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) size(v *layout.View) (float64, float64) {
	width := 0.0
	for _, row := range v.Rows {
		w := float64(row.Width()+3) * r.cell
		if r.labels {
			w = max(w, r.labelX(row)+float64(len([]rune(row.Active.Event.Label())))*charWidth+r.cell)
		}
		width = max(width, w)
	}
	return width, float64(len(v.Rows)) * r.cell * 2
}

func (r *renderer) labelX(row layout.Row) float64 {
	return float64(max(len(row.Input), len(row.CurTids)))*r.cell + 5
}

func (r *renderer) colX(col int) float64 { return float64(col)*r.cell + r.cell/2 }

func (r *renderer) renderRow(buf *bytes.Buffer, row layout.Row, index int) {
	y := float64(index) * r.cell * 2
	nodeY := y + r.cell

	r.renderConnectors(buf, row, row.Input, true, y)
	r.renderConnectors(buf, row, row.Output, false, nodeY)

	radius := r.cell / 4
	for col, tid := range row.CurTids {
		fill := "black"
		if tid == row.Active.Tid {
			fill = render.ActiveColor
		}
		fmt.Fprintf(buf, `  <circle class="node" data-tid="%d" cx="%.1f" cy="%.1f" r="%.1f" fill="%s">`,
			tid, r.colX(col), nodeY, radius, fill)
		if r.tooltips && tid == row.Active.Tid {
			fmt.Fprintf(buf, "<title>%s</title>", escape(tooltip(row.Active.Event)))
		}
		buf.WriteString("</circle>\n")
	}

	if r.labels {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%.0f" font-family="'Helvetica Neue', Arial, sans-serif">%s</text>`+"\n",
			r.labelX(row), nodeY+5, fontSize, escape(row.Active.Event.Label()))
	}
}

// renderConnectors draws one side of a row. top is the y of the upper end of
// the band: the row top for inputs and the node level for outputs.
func (r *renderer) renderConnectors(buf *bytes.Buffer, row layout.Row, threads []layout.Thread, input bool, top float64) {
	for i, th := range threads {
		pass := row.Column(th.Tid)
		if pass >= 0 {
			r.renderConnector(buf, th.Tid, i, pass, input, top)
		}
		if th.DepOnActive && pass != row.ActiveIndex {
			r.renderConnector(buf, th.Tid, i, row.ActiveIndex, input, top)
		}
	}
}

// renderConnector draws a curve between lane position from (on the input or
// output side) and node-level column to.
func (r *renderer) renderConnector(buf *bytes.Buffer, tid, from, to int, input bool, top float64) {
	startX, endX := r.colX(from), r.colX(to)
	startY, endY := top, top+r.cell
	if !input {
		startY, endY = top+r.cell, top
	}

	var c1x, c1y, c2x, c2y float64
	if startX > endX {
		c1x, c1y = startX, startY+(endY-startY)/2
		c2x, c2y = startX+(endX-startX)/2, endY
	} else {
		c1x, c1y = startX+(endX-startX)/2, startY
		c2x, c2y = endX, endY
	}

	fmt.Fprintf(buf, `  <path class="lane" data-tid="%d" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
		tid, startX, startY, c1x, c1y, c2x, c2y, endX, endY, render.LaneColor(tid))
}

func tooltip(e dag.Event) string {
	lines := []string{e.ID, fmt.Sprintf("lamport %d", e.Lamport)}
	for _, k := range slices.Sorted(maps.Keys(e.Meta)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, e.Meta[k]))
	}
	return strings.Join(lines, "\n")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
