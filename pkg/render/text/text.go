package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
)

const (
	glyphActive = '*'
	glyphLane   = '|'
	glyphRight  = '\\'
	glyphLeft   = '/'
	glyphRun    = '_'
)

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	color  bool
	labels bool
	ids    bool
}

// WithColor toggles lane colouring. Colours are still dropped when the
// output is not a colour terminal.
func WithColor(on bool) Option { return func(r *renderer) { r.color = on } }

// WithLabels toggles the label printed after each node line.
func WithLabels(on bool) Option { return func(r *renderer) { r.labels = on } }

// WithIDs prefixes labels with the event ID when the label is a message.
func WithIDs() Option { return func(r *renderer) { r.ids = true } }

var (
	styleActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(render.ActiveColor))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type cell struct {
	ch  rune
	tid int
}

type line []cell

func (l *line) put(pos int, ch rune, tid int) {
	for len(*l) <= pos {
		*l = append(*l, cell{ch: ' ', tid: -1})
	}
	(*l)[pos] = cell{ch: ch, tid: tid}
}

// Render draws the view as text, one node line per row with transition
// lines wherever lanes change column. Columns are two characters apart.
func Render(v *layout.View, opts ...Option) string {
	r := renderer{color: true, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var b strings.Builder
	for _, row := range v.Rows {
		if l, ok := transition(row, true); ok {
			r.write(&b, l, "")
		}
		r.write(&b, nodeLine(row), r.label(row))
		if l, ok := transition(row, false); ok {
			r.write(&b, l, "")
		}
	}
	if v.Truncated {
		b.WriteString(r.dim("... history truncated"))
		b.WriteByte('\n')
	}
	return b.String()
}

// target is the node-level column an input connector ends in.
func target(row layout.Row, th layout.Thread) int {
	if th.DepOnActive {
		return row.ActiveIndex
	}
	return row.Column(th.Tid)
}

// source is the node-level column an output connector starts from.
func source(row layout.Row, th layout.Thread) int {
	if c := row.Column(th.Tid); c >= 0 {
		return c
	}
	return row.ActiveIndex
}

func nodeLine(row layout.Row) line {
	var l line
	for col, tid := range row.CurTids {
		ch := glyphLane
		if tid == row.Active.Tid {
			ch = glyphActive
		}
		l.put(2*col, ch, tid)
	}
	return l
}

// transition draws the connectors of one side of a row. Input connectors
// run from their input position down to the node level, output connectors
// from the node level down to their output position. It reports false when
// every connector runs straight.
func transition(row layout.Row, input bool) (line, bool) {
	threads := row.Output
	if input {
		threads = row.Input
	}
	var l line
	bent := false
	for i, th := range threads {
		top, bottom := source(row, th), i
		if input {
			top, bottom = i, target(row, th)
		}
		if connect(&l, top, bottom, th.Tid) {
			bent = true
		}
	}
	return l, bent
}

// connect draws a connector from upper column a to lower column b and
// reports whether it bends.
func connect(l *line, a, b, tid int) bool {
	switch {
	case a == b:
		l.put(2*a, glyphLane, tid)
		return false
	case b > a:
		for p := 2*a + 1; p < 2*b-1; p++ {
			l.put(p, glyphRun, tid)
		}
		l.put(2*b-1, glyphRight, tid)
	default:
		for p := 2*b + 2; p < 2*a; p++ {
			l.put(p, glyphRun, tid)
		}
		l.put(2*b+1, glyphLeft, tid)
	}
	return true
}

func (r *renderer) label(row layout.Row) string {
	if !r.labels {
		return ""
	}
	e := row.Active.Event
	label := e.Label()
	if r.ids && label != e.ID {
		label = e.ID + " " + label
	}
	return label
}

func (r *renderer) write(b *strings.Builder, l line, label string) {
	for _, c := range l {
		s := string(c.ch)
		switch {
		case !r.color || c.tid < 0:
		case c.ch == glyphActive:
			s = styleActive.Render(s)
		default:
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(render.LaneHex(c.tid))).Render(s)
		}
		b.WriteString(s)
	}
	if label != "" {
		b.WriteString("  ")
		b.WriteString(label)
	}
	b.WriteByte('\n')
}

func (r *renderer) dim(s string) string {
	if !r.color {
		return s
	}
	return styleDim.Render(s)
}
