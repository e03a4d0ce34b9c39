package layout

import (
	"slices"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// Thread is a connector between one lane and the row's active event.
type Thread struct {
	Tid int // Lane the connector belongs to
	// DepOnActive is true when the connector's edge ends at the active event
	// (on the input side) or starts at it (on the output side). False means
	// the lane only passes through the row.
	DepOnActive bool
}

// Active is the event emitted by a row and the lane it is drawn on.
type Active struct {
	Tid   int
	Event dag.Event
}

// Row is the layout record for one emitted event.
//
// Input lists the lanes arriving from the row above in column order, Output
// the lanes leaving towards the row below. CurTids is the column order at
// the node itself: the input lanes minus those that collapsed into the
// active lane. ActiveIndex is the active lane's position in CurTids and the
// column where the node marker is drawn.
type Row struct {
	Active      Active
	ActiveIndex int
	CurTids     []int
	Input       []Thread
	Output      []Thread
}

// ID returns the ID of the row's active event.
func (r Row) ID() string { return r.Active.Event.ID }

// Width returns the number of columns needed to draw the row.
func (r Row) Width() int { return max(len(r.CurTids), len(r.Input), len(r.Output)) }

// Column returns the position of tid in CurTids, or -1 when the lane does not
// reach the node level of this row.
func (r Row) Column(tid int) int { return slices.Index(r.CurTids, tid) }

// Forks returns the number of lanes created at this row.
func (r Row) Forks() int {
	n := 0
	for _, th := range r.Output {
		if th.DepOnActive && th.Tid != r.Active.Tid {
			n++
		}
	}
	return n
}

// Merges returns the number of lanes that ended at this row in addition to
// the active one.
func (r Row) Merges() int {
	n := 0
	for _, th := range r.Input {
		if th.DepOnActive && th.Tid != r.Active.Tid {
			n++
		}
	}
	return n
}

func (r Row) check(index int) {
	if r.ActiveIndex < 0 || r.ActiveIndex >= len(r.CurTids) {
		panic(&InvariantError{Row: index, Tid: r.Active.Tid, Reason: "active index out of range"})
	}
	if r.CurTids[r.ActiveIndex] != r.Active.Tid {
		panic(&InvariantError{Row: index, Tid: r.Active.Tid, Reason: "active index does not point at active lane"})
	}
	if tid, dup := duplicate(r.CurTids); dup {
		panic(&InvariantError{Row: index, Tid: tid, Reason: "lane listed twice in cur_tids"})
	}
	for _, side := range [][]Thread{r.Input, r.Output} {
		tids := make([]int, len(side))
		for i, th := range side {
			tids[i] = th.Tid
		}
		if tid, dup := duplicate(tids); dup {
			panic(&InvariantError{Row: index, Tid: tid, Reason: "lane listed twice in connectors"})
		}
	}
}

func duplicate(tids []int) (int, bool) {
	seen := make(map[int]bool, len(tids))
	for _, tid := range tids {
		if seen[tid] {
			return tid, true
		}
		seen[tid] = true
	}
	return 0, false
}
