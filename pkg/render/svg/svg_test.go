package svg

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
)

func diamond(t *testing.T) *layout.View {
	t.Helper()
	g, err := dag.FromEvents([]dag.Event{
		{ID: "1", Lamport: 1},
		{ID: "2", Deps: []string{"1"}, Lamport: 2, Meta: dag.Metadata{dag.MetaMessage: "fix <parser>"}},
		{ID: "3", Deps: []string{"1"}, Lamport: 3},
		{ID: "4", Deps: []string{"2", "3"}, Lamport: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	return layout.Compute(g, []string{"4"})
}

func TestRenderWellFormed(t *testing.T) {
	out := Render(diamond(t), WithTooltips(), WithInteractive())
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
	}
}

func TestRenderGeometry(t *testing.T) {
	v := diamond(t)
	out := string(Render(v))

	if !strings.Contains(out, `viewBox="0 0 `) || !strings.Contains(out, `height="160"`) {
		t.Errorf("unexpected header: %s", strings.SplitN(out, "\n", 2)[0])
	}
	if got := strings.Count(out, `fill="`+render.ActiveColor+`"`); got != len(v.Rows) {
		t.Errorf("%d active markers, want %d", got, len(v.Rows))
	}
	// Row 0 forks: the active lane continues straight down and lane 1 curves
	// out of the node to column 1.
	if !strings.Contains(out, `d="M 10.0 40.0 C 10.0 40.0, 10.0 20.0, 10.0 20.0"`) {
		t.Errorf("missing straight output connector of row 0:\n%s", out)
	}
	if !strings.Contains(out, `d="M 30.0 40.0 C 30.0 30.0, 20.0 20.0, 10.0 20.0"`) {
		t.Errorf("missing fork connector of row 0:\n%s", out)
	}
	if !strings.Contains(out, render.LaneColor(1)) {
		t.Error("lane 1 colour not used")
	}
}

func TestRenderLabels(t *testing.T) {
	v := diamond(t)
	out := string(Render(v))
	if !strings.Contains(out, "fix &lt;parser&gt;") {
		t.Error("message label missing or unescaped")
	}
	if strings.Contains(string(Render(v, WithLabels(false))), "<text") {
		t.Error("WithLabels(false) still draws labels")
	}
}

func TestRenderCellSize(t *testing.T) {
	out := string(Render(diamond(t), WithCellSize(10), WithLabels(false)))
	if !strings.Contains(out, `height="80"`) {
		t.Errorf("cell size not applied: %s", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, `r="2.5"`) {
		t.Error("node radius does not follow cell size")
	}
}

func TestRenderEmpty(t *testing.T) {
	out := string(Render(&layout.View{}))
	if !strings.Contains(out, `width="0" height="0"`) || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("Render(empty) = %s", out)
	}
}
