package text

import (
	"strings"
	"testing"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
)

func compute(t *testing.T, frontiers []string, events ...dag.Event) *layout.View {
	t.Helper()
	g, err := dag.FromEvents(events)
	if err != nil {
		t.Fatal(err)
	}
	return layout.Compute(g, frontiers)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		events    []dag.Event
		frontiers []string
		want      string
	}{
		{
			name: "diamond",
			events: []dag.Event{
				{ID: "1", Lamport: 1},
				{ID: "2", Deps: []string{"1"}, Lamport: 2},
				{ID: "3", Deps: []string{"1"}, Lamport: 3},
				{ID: "4", Deps: []string{"2", "3"}, Lamport: 4},
			},
			frontiers: []string{"4"},
			want: `*  4
|\
* |  3
| *  2
|/
*  1
`,
		},
		{
			name: "multiple frontiers",
			events: []dag.Event{
				{ID: "X", Lamport: 1},
				{ID: "Y", Deps: []string{"X"}, Lamport: 2},
				{ID: "Z", Deps: []string{"X"}, Lamport: 3},
			},
			frontiers: []string{"Y", "Z"},
			want: `| *  Z
* |  Y
|/
*  X
`,
		},
		{
			name: "message labels",
			events: []dag.Event{
				{ID: "a", Lamport: 1, Meta: dag.Metadata{dag.MetaMessage: "init"}},
			},
			frontiers: []string{"a"},
			want:      "*  init\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(compute(t, tt.frontiers, tt.events...), WithColor(false))
			if got != tt.want {
				t.Errorf("Render() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderOptions(t *testing.T) {
	v := compute(t, []string{"b"},
		dag.Event{ID: "a", Lamport: 1},
		dag.Event{ID: "b", Deps: []string{"a"}, Lamport: 2, Meta: dag.Metadata{dag.MetaMessage: "fix"}},
	)
	if got := Render(v, WithColor(false), WithLabels(false)); got != "*\n*\n" {
		t.Errorf("without labels = %q", got)
	}
	if got := Render(v, WithColor(false), WithIDs()); !strings.HasPrefix(got, "*  b fix\n") {
		t.Errorf("with ids = %q", got)
	}
}

func TestRenderTruncated(t *testing.T) {
	g, _ := dag.FromEvents([]dag.Event{
		{ID: "a", Lamport: 1},
		{ID: "b", Deps: []string{"a"}, Lamport: 2},
	})
	got := Render(layout.Compute(g, []string{"b"}, layout.WithMaxRows(1)), WithColor(false))
	if !strings.HasSuffix(got, "... history truncated\n") {
		t.Errorf("Render() = %q", got)
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		a, b int
		want string
		bent bool
	}{
		{0, 0, "|", false},
		{0, 1, " \\", true},
		{1, 0, " /", true},
		{0, 2, " __\\", true},
		{2, 0, " /__", true},
	}
	for _, tt := range tests {
		var l line
		bent := connect(&l, tt.a, tt.b, 0)
		var sb strings.Builder
		for _, c := range l {
			sb.WriteRune(c.ch)
		}
		if sb.String() != tt.want || bent != tt.bent {
			t.Errorf("connect(%d, %d) = %q %v, want %q %v", tt.a, tt.b, sb.String(), bent, tt.want, tt.bent)
		}
	}
}
