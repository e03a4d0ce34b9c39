package layout

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// history builds a DAG from events and fails the test on error.
func history(t *testing.T, events ...dag.Event) *dag.DAG {
	t.Helper()
	g, err := dag.FromEvents(events)
	if err != nil {
		t.Fatalf("FromEvents: %v", err)
	}
	return g
}

func ev(id string, lamport int64, deps ...string) dag.Event {
	return dag.Event{ID: id, Deps: deps, Lamport: lamport}
}

func describeThreads(ths []Thread) string {
	parts := make([]string, len(ths))
	for i, th := range ths {
		parts[i] = fmt.Sprint(th.Tid)
		if th.DepOnActive {
			parts[i] += "*"
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func tidsOf(ths []Thread) []int {
	out := make([]int, len(ths))
	for i, th := range ths {
		out[i] = th.Tid
	}
	return out
}

// describe renders a row as "ID tN in=[..] cur=[..]@idx out=[..]" where a
// star marks connectors attached to the active event.
func describe(r Row) string {
	return fmt.Sprintf("%s t%d in=%s cur=%v@%d out=%s",
		r.ID(), r.Active.Tid, describeThreads(r.Input), r.CurTids, r.ActiveIndex, describeThreads(r.Output))
}

func describeView(v *View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = describe(r)
	}
	return out
}

// randomHistory generates a consistent history of n events where event i may
// depend on up to three earlier events.
func randomHistory(t *testing.T, seed int64, n int) *dag.DAG {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	events := make([]dag.Event, n)
	for i := range n {
		e := dag.Event{ID: fmt.Sprintf("e%03d", i)}
		if i > 0 {
			k := rng.Intn(min(i, 3) + 1)
			for range k {
				e.Deps = append(e.Deps, events[rng.Intn(i)].ID)
			}
		}
		events[i] = e
	}
	g := history(t, events...)
	g.AssignLamport()
	return g
}

// checkView verifies the structural properties every layout must have.
func checkView(t *testing.T, g *dag.DAG, frontiers []string, v *View) {
	t.Helper()

	emitted := make(map[string]int)
	for i, r := range v.Rows {
		r.check(i)
		if prev, dup := emitted[r.ID()]; dup {
			t.Fatalf("event %s emitted at rows %d and %d", r.ID(), prev, i)
		}
		emitted[r.ID()] = i

		if i > 0 && dag.Less(r.Active.Event, v.Rows[i-1].Active.Event) {
			t.Errorf("row %d (%s) ordered before row %d (%s)", i, r.ID(), i-1, v.Rows[i-1].ID())
		}
		if i > 0 {
			if got, want := tidsOf(r.Input), tidsOf(v.Rows[i-1].Output); fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("row %d input %v does not continue previous output %v", i, got, want)
			}
		}
		if got, want := len(r.CurTids), len(r.Input)-r.Merges(); got != want {
			t.Errorf("row %d: %d lanes at node level, want %d", i, got, want)
		}
		ended := 0
		if !containsTid(r.Output, r.Active.Tid) {
			ended = 1
		}
		if got, want := len(r.Output), len(r.CurTids)-ended+r.Forks(); got != want {
			t.Errorf("row %d: %d output lanes, want %d", i, got, want)
		}
	}

	// Every resolvable event reachable from the frontiers appears exactly once.
	reach := make(map[string]bool)
	stack := append([]string(nil), frontiers...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, ok := g.Resolve(id)
		if !ok || reach[id] {
			continue
		}
		reach[id] = true
		stack = append(stack, e.Deps...)
	}
	if len(reach) != len(emitted) && !v.Truncated {
		t.Errorf("emitted %d events, %d reachable", len(emitted), len(reach))
	}
	for id := range emitted {
		if !reach[id] {
			t.Errorf("emitted unreachable event %s", id)
		}
	}

	if !v.Truncated && len(v.Rows) > 0 {
		if last := v.Rows[len(v.Rows)-1]; len(last.Output) != 0 {
			t.Errorf("final row leaves lanes open: %s", describe(last))
		}
	}
}

func containsTid(ths []Thread, tid int) bool {
	for _, th := range ths {
		if th.Tid == tid {
			return true
		}
	}
	return false
}
