package layout

import (
	"testing"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

func TestSchedulerOrder(t *testing.T) {
	s := newScheduler(MapResolver{
		"a": ev("a", 1),
		"b": ev("b", 3),
		"c": ev("c", 3),
		"d": ev("d", 2),
	})
	for _, id := range []string{"a", "d", "c", "b", "a"} {
		if _, ok := s.schedule(id); !ok {
			t.Fatalf("schedule(%s) = false", id)
		}
	}
	if s.pending() != 4 {
		t.Fatalf("pending() = %d, want 4", s.pending())
	}

	var got []string
	for {
		e, ok := s.next()
		if !ok {
			break
		}
		got = append(got, e.ID)
	}
	want := []string{"b", "c", "d", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("emission order = %v, want %v", got, want)
		}
	}

	if _, ok := s.schedule("b"); ok {
		t.Error("schedule of emitted id reported true")
	}
}

func TestSchedulerMemoisesMisses(t *testing.T) {
	calls := 0
	s := newScheduler(ResolverFunc(func(string) (dag.Event, bool) {
		calls++
		return dag.Event{}, false
	}))
	for range 3 {
		if _, ok := s.schedule("ghost"); ok {
			t.Fatal("unknown id scheduled")
		}
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
	if got := s.unresolved(); len(got) != 1 || got[0] != "ghost" {
		t.Errorf("unresolved() = %v", got)
	}
}
