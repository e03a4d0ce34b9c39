package dag_test

import (
	"fmt"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

func ExampleDAG_basic() {
	// A short history: root <- fix <- release
	g := dag.New(nil)
	_ = g.AddEvent(dag.Event{ID: "root", Lamport: 1})
	_ = g.AddEvent(dag.Event{ID: "fix", Deps: []string{"root"}, Lamport: 2})
	_ = g.AddEvent(dag.Event{ID: "release", Deps: []string{"fix"}, Lamport: 3})

	fmt.Println("Events:", g.EventCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Heads:", g.Heads())
	// Output:
	// Events: 3
	// Edges: 2
	// Heads: [release]
}

func ExampleDAG_Heads() {
	// Two concurrent branches off the same root
	g := dag.New(nil)
	_ = g.AddEvent(dag.Event{ID: "X", Lamport: 1})
	_ = g.AddEvent(dag.Event{ID: "Y", Deps: []string{"X"}, Lamport: 2})
	_ = g.AddEvent(dag.Event{ID: "Z", Deps: []string{"X"}, Lamport: 3})

	fmt.Println("Heads:", g.Heads())
	fmt.Println("Dependents of X:", g.Dependents("X"))
	// Output:
	// Heads: [Z Y]
	// Dependents of X: [Y Z]
}

func ExampleDAG_AssignLamport() {
	g := dag.New(nil)
	_ = g.AddEvent(dag.Event{ID: "merge", Deps: []string{"left", "right"}})
	_ = g.AddEvent(dag.Event{ID: "left", Deps: []string{"base"}})
	_ = g.AddEvent(dag.Event{ID: "right", Deps: []string{"mid"}})
	_ = g.AddEvent(dag.Event{ID: "mid", Deps: []string{"base"}})
	_ = g.AddEvent(dag.Event{ID: "base"})
	g.AssignLamport()

	for _, e := range g.Events() {
		fmt.Println(e.ID, e.Lamport)
	}
	// Output:
	// merge 4
	// right 3
	// left 2
	// mid 2
	// base 1
}
