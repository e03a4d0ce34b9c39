package layout_test

import (
	"fmt"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
)

func ExampleCompute() {
	// Two branches off a root, merged back together
	g, _ := dag.FromEvents([]dag.Event{
		{ID: "root", Lamport: 1},
		{ID: "left", Deps: []string{"root"}, Lamport: 2},
		{ID: "right", Deps: []string{"root"}, Lamport: 3},
		{ID: "merge", Deps: []string{"left", "right"}, Lamport: 4},
	})

	view := layout.Compute(g, g.Heads())
	for _, row := range view.Rows {
		fmt.Printf("%-5s lane %d of %v\n", row.ID(), row.Active.Tid, row.CurTids)
	}
	fmt.Println("Lanes:", view.Lanes())
	// Output:
	// merge lane 0 of [0]
	// right lane 0 of [0 1]
	// left  lane 1 of [0 1]
	// root  lane 0 of [0]
	// Lanes: 2
}

func ExampleWithMaxRows() {
	g, _ := dag.FromEvents([]dag.Event{
		{ID: "a", Lamport: 1},
		{ID: "b", Deps: []string{"a"}, Lamport: 2},
		{ID: "c", Deps: []string{"b"}, Lamport: 3},
	})

	view := layout.Compute(g, []string{"c"}, layout.WithMaxRows(2))
	fmt.Println("Rows:", len(view.Rows))
	fmt.Println("Truncated:", view.Truncated)
	// Output:
	// Rows: 2
	// Truncated: true
}

func ExampleView_Err() {
	view := layout.Compute(layout.MapResolver{}, []string{"deadbeef"})
	fmt.Println(view.Err())
	// Output:
	// 1 unresolved reference(s): deadbeef
}
