package layout

import (
	"container/heap"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// worklist is a max-priority heap of events ordered by [dag.Less].
type worklist []dag.Event

func (w worklist) Len() int           { return len(w) }
func (w worklist) Less(i, j int) bool { return dag.Less(w[i], w[j]) }
func (w worklist) Swap(i, j int)      { w[i], w[j] = w[j], w[i] }

func (w *worklist) Push(x any) { *w = append(*w, x.(dag.Event)) }

func (w *worklist) Pop() any {
	old := *w
	n := len(old)
	e := old[n-1]
	old[n-1] = dag.Event{}
	*w = old[:n-1]
	return e
}

// scheduler decides emission order. Every id goes through the resolver at
// most once; results, including misses, are memoised for the whole pass.
type scheduler struct {
	resolver Resolver
	resolved map[string]dag.Event
	missing  map[string]bool
	queued   map[string]bool
	emitted  map[string]bool
	queue    worklist
}

func newScheduler(r Resolver) *scheduler {
	return &scheduler{
		resolver: r,
		resolved: make(map[string]dag.Event),
		missing:  make(map[string]bool),
		queued:   make(map[string]bool),
		emitted:  make(map[string]bool),
	}
}

// lookup resolves id through the memo. Misses are recorded as unresolved.
func (s *scheduler) lookup(id string) (dag.Event, bool) {
	if e, ok := s.resolved[id]; ok {
		return e, true
	}
	if s.missing[id] {
		return dag.Event{}, false
	}
	e, ok := s.resolver.Resolve(id)
	if !ok {
		s.missing[id] = true
		return dag.Event{}, false
	}
	// The resolver may hand back a record under a different key; the
	// requested id is what lanes and dependents refer to.
	e.ID = id
	s.resolved[id] = e
	return e, true
}

// schedule makes id a candidate for emission. It reports true, with the
// resolved event, when id still has to be emitted: the caller must then route
// a lane to it. Ids that are unknown or already emitted report false.
// An id is pushed onto the worklist once no matter how often it is scheduled.
func (s *scheduler) schedule(id string) (dag.Event, bool) {
	if s.emitted[id] {
		return dag.Event{}, false
	}
	e, ok := s.lookup(id)
	if !ok {
		return dag.Event{}, false
	}
	if !s.queued[id] {
		s.queued[id] = true
		heap.Push(&s.queue, e)
	}
	return e, true
}

// next pops the highest-priority pending event and marks it emitted.
func (s *scheduler) next() (dag.Event, bool) {
	if len(s.queue) == 0 {
		return dag.Event{}, false
	}
	e := heap.Pop(&s.queue).(dag.Event)
	s.emitted[e.ID] = true
	return e, true
}

// pending reports how many events are still waiting on the worklist.
func (s *scheduler) pending() int { return len(s.queue) }

// unresolved returns the recorded misses in no particular order.
func (s *scheduler) unresolved() []string {
	ids := make([]string, 0, len(s.missing))
	for id := range s.missing {
		ids = append(ids, id)
	}
	return ids
}
