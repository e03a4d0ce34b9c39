package dag

import (
	"errors"
	"slices"
	"strconv"
	"testing"
)

func diamond(t *testing.T) *DAG {
	t.Helper()
	g, err := FromEvents([]Event{
		{ID: "A", Lamport: 1},
		{ID: "B", Deps: []string{"A"}, Lamport: 2},
		{ID: "C", Deps: []string{"A"}, Lamport: 2},
		{ID: "D", Deps: []string{"B", "C"}, Lamport: 3},
	})
	if err != nil {
		t.Fatalf("FromEvents() error: %v", err)
	}
	return g
}

func TestAddEventErrors(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want error
	}{
		{"empty id", Event{ID: ""}, ErrInvalidEventID},
		{"duplicate", Event{ID: "A"}, ErrDuplicateEventID},
		{"negative lamport", Event{ID: "N", Lamport: -1}, ErrNegativeLamport},
	}

	g := New(nil)
	if err := g.AddEvent(Event{ID: "A"}); err != nil {
		t.Fatalf("AddEvent(A) error: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEvent(tt.ev); !errors.Is(err, tt.want) {
				t.Errorf("AddEvent() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAddEventCopiesDeps(t *testing.T) {
	deps := []string{"A"}
	g := New(nil)
	_ = g.AddEvent(Event{ID: "B", Deps: deps})
	deps[0] = "changed"

	e, _ := g.Event("B")
	if e.Deps[0] != "A" {
		t.Errorf("stored deps changed with caller slice: %v", e.Deps)
	}
	if e.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestResolve(t *testing.T) {
	g := diamond(t)

	e, ok := g.Resolve("D")
	if !ok {
		t.Fatal("Resolve(D) not found")
	}
	if !slices.Equal(e.Deps, []string{"B", "C"}) {
		t.Errorf("Resolve(D).Deps = %v", e.Deps)
	}
	if _, ok := g.Resolve("missing"); ok {
		t.Error("Resolve(missing) should report absent")
	}
}

func TestEventsPriorityOrder(t *testing.T) {
	g := diamond(t)
	var ids []string
	for _, e := range g.Events() {
		ids = append(ids, e.ID)
	}
	want := []string{"D", "B", "C", "A"}
	if !slices.Equal(ids, want) {
		t.Errorf("Events() order = %v, want %v", ids, want)
	}
}

func TestHeadsAndRoots(t *testing.T) {
	g := diamond(t)
	_ = g.AddEvent(Event{ID: "E", Deps: []string{"C"}, Lamport: 5})

	if got := g.Heads(); !slices.Equal(got, []string{"E", "D"}) {
		t.Errorf("Heads() = %v, want [E D]", got)
	}
	if got := g.Roots(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Roots() = %v, want [A]", got)
	}
	if got := g.Dependents("C"); !slices.Equal(got, []string{"D", "E"}) {
		t.Errorf("Dependents(C) = %v, want [D E]", got)
	}
	if g.EdgeCount() != 5 {
		t.Errorf("EdgeCount() = %d, want 5", g.EdgeCount())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   error
	}{
		{
			name: "valid diamond",
			events: []Event{
				{ID: "A", Lamport: 1},
				{ID: "B", Deps: []string{"A"}, Lamport: 2},
				{ID: "C", Deps: []string{"A"}, Lamport: 2},
				{ID: "D", Deps: []string{"B", "C"}, Lamport: 3},
			},
		},
		{
			name:   "dangling dependency",
			events: []Event{{ID: "B", Deps: []string{"A"}, Lamport: 2}},
			want:   ErrUnknownDependency,
		},
		{
			name: "lamport not increasing",
			events: []Event{
				{ID: "A", Lamport: 3},
				{ID: "B", Deps: []string{"A"}, Lamport: 3},
			},
			want: ErrLamportOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromEvents(tt.events)
			if err != nil {
				t.Fatalf("FromEvents() error: %v", err)
			}
			err = g.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	// Lamport values are left at zero so the ordering check does not fire first.
	g := New(nil)
	_ = g.AddEvent(Event{ID: "A", Deps: []string{"C"}})
	_ = g.AddEvent(Event{ID: "B", Deps: []string{"A"}})
	_ = g.AddEvent(Event{ID: "C", Deps: []string{"B"}})

	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want ErrGraphHasCycle", err)
	}
}

func TestAssignLamport(t *testing.T) {
	g := New(nil)
	_ = g.AddEvent(Event{ID: "D", Deps: []string{"B", "C"}})
	_ = g.AddEvent(Event{ID: "C", Deps: []string{"A"}})
	_ = g.AddEvent(Event{ID: "B", Deps: []string{"A", "ghost"}})
	_ = g.AddEvent(Event{ID: "A"})
	g.AssignLamport()

	want := map[string]int64{"A": 1, "B": 2, "C": 2, "D": 3}
	for id, lamport := range want {
		e, _ := g.Event(id)
		if e.Lamport != lamport {
			t.Errorf("%s.Lamport = %d, want %d", id, e.Lamport, lamport)
		}
	}
}

func TestAssignLamportDeepChain(t *testing.T) {
	g := New(nil)
	const n = 50000
	_ = g.AddEvent(Event{ID: "e0"})
	prev := "e0"
	for i := 1; i < n; i++ {
		id := "e" + strconv.Itoa(i)
		_ = g.AddEvent(Event{ID: id, Deps: []string{prev}})
		prev = id
	}
	g.AssignLamport()

	e, _ := g.Event(prev)
	if e.Lamport != n {
		t.Errorf("tip Lamport = %d, want %d", e.Lamport, n)
	}
}

func TestCompare(t *testing.T) {
	a := Event{ID: "a", Lamport: 2}
	b := Event{ID: "b", Lamport: 2}
	c := Event{ID: "c", Lamport: 5}

	if !Less(c, a) {
		t.Error("higher lamport should come first")
	}
	if !Less(a, b) {
		t.Error("equal lamport should break ties by smaller id")
	}
	if Compare(a, a) != 0 {
		t.Error("Compare(a, a) should be 0")
	}
}

func TestLabel(t *testing.T) {
	e := Event{ID: "abc"}
	if e.Label() != "abc" {
		t.Errorf("Label() = %q, want id", e.Label())
	}
	e.Meta = Metadata{MetaMessage: "initial commit"}
	if e.Label() != "initial commit" {
		t.Errorf("Label() = %q, want message", e.Label())
	}
}
