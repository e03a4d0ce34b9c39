package layout

import "slices"

// arena hands out small integer lane ids. Released ids are reused smallest
// first so the rendered lane count stays bounded by the widest point of the
// history rather than by its length.
type arena struct {
	free []int // sorted ascending
	next int   // high-water mark
}

func (a *arena) alloc() int {
	if len(a.free) > 0 {
		tid := a.free[0]
		a.free = a.free[1:]
		return tid
	}
	tid := a.next
	a.next++
	return tid
}

func (a *arena) release(tid int) {
	i, found := slices.BinarySearch(a.free, tid)
	if found {
		panic(&InvariantError{Reason: "lane released twice", Tid: tid})
	}
	a.free = slices.Insert(a.free, i, tid)
}

// lane is one live rendering column waiting for the event it leads to.
type lane struct {
	tid    int
	awaits string
}

// laneTable tracks live lanes in column order and which lanes await each
// pending event.
type laneTable struct {
	arena  arena
	live   []lane
	owners map[string][]int // awaited id -> tids in registration order
}

func newLaneTable() *laneTable {
	return &laneTable{owners: make(map[string][]int)}
}

// open allocates a lane awaiting id and inserts it at column at. A negative
// or out-of-range column appends it on the right.
func (t *laneTable) open(id string, at int) int {
	tid := t.arena.alloc()
	l := lane{tid: tid, awaits: id}
	if at < 0 || at >= len(t.live) {
		t.live = append(t.live, l)
	} else {
		t.live = slices.Insert(t.live, at, l)
	}
	t.owners[id] = append(t.owners[id], tid)
	return tid
}

// retarget makes the lane tid await id from now on.
func (t *laneTable) retarget(tid int, id string) {
	i := t.column(tid)
	t.live[i].awaits = id
	t.owners[id] = append(t.owners[id], tid)
}

// remove drops tid from the column order. The id stays reserved until it
// is released to the arena.
func (t *laneTable) remove(tid int) {
	i := t.column(tid)
	t.live = slices.Delete(t.live, i, i+1)
}

// settle forgets the owners of id after it has been emitted.
func (t *laneTable) settle(id string) { delete(t.owners, id) }

// awaiting returns the lanes waiting for id in registration order.
func (t *laneTable) awaiting(id string) []int { return t.owners[id] }

// column returns the position of tid in the live order, or -1.
func (t *laneTable) column(tid int) int {
	return slices.IndexFunc(t.live, func(l lane) bool { return l.tid == tid })
}

// tids returns a snapshot of the live lane ids in column order.
func (t *laneTable) tids() []int {
	out := make([]int, len(t.live))
	for i, l := range t.live {
		out[i] = l.tid
	}
	return out
}

// threads snapshots the live lanes as connectors; dep reports which lanes
// are connected to the active event.
func (t *laneTable) threads(dep func(lane) bool) []Thread {
	out := make([]Thread, len(t.live))
	for i, l := range t.live {
		out[i] = Thread{Tid: l.tid, DepOnActive: dep(l)}
	}
	return out
}
