package dag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidEventID is returned by [DAG.AddEvent] when the event ID is empty.
	// All events must have non-empty identifiers.
	ErrInvalidEventID = errors.New("event ID must not be empty")

	// ErrDuplicateEventID is returned by [DAG.AddEvent] when an event with the
	// same ID already exists in the graph. Event IDs must be unique.
	ErrDuplicateEventID = errors.New("duplicate event ID")

	// ErrNegativeLamport is returned by [DAG.AddEvent] when the Lamport
	// timestamp is below zero.
	ErrNegativeLamport = errors.New("lamport timestamp must not be negative")

	// ErrUnknownDependency is returned by [DAG.Validate] when an event depends
	// on an ID that is not part of the graph. The history is either corrupted
	// or truncated.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrLamportOrder is returned by [DAG.Validate] when a dependency carries a
	// Lamport timestamp greater than or equal to its dependent's.
	ErrLamportOrder = errors.New("dependency lamport not below dependent")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// DAG is an in-memory event history indexed by event ID.
//
// It keeps the reverse (dependent) index next to the events so heads can be
// found without a scan per query. DAG implements the resolver contract of the
// layout engine through [DAG.Resolve].
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	events     map[string]*Event
	order      []string            // insertion order
	dependents map[string][]string // dep ID -> IDs of events depending on it
	edges      int
	meta       Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		events:     make(map[string]*Event),
		dependents: make(map[string][]string),
		meta:       meta,
	}
}

// FromEvents builds a DAG from a slice of events, stopping at the first
// event that [DAG.AddEvent] rejects.
func FromEvents(events []Event) (*DAG, error) {
	g := New(nil)
	for _, e := range events {
		if err := g.AddEvent(e); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.ID, err)
		}
	}
	return g, nil
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// AddEvent adds an event to the graph.
// Returns ErrInvalidEventID if the ID is empty, ErrDuplicateEventID if an event
// with the same ID already exists, or ErrNegativeLamport for a negative clock.
//
// Dependencies do not have to exist yet; dangling references are reported by
// [DAG.Validate]. Duplicate entries in Deps are kept as given.
func (d *DAG) AddEvent(e Event) error {
	if e.ID == "" {
		return ErrInvalidEventID
	}
	if _, exists := d.events[e.ID]; exists {
		return ErrDuplicateEventID
	}
	if e.Lamport < 0 {
		return ErrNegativeLamport
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	e.Deps = slices.Clone(e.Deps)
	ev := &e
	d.events[e.ID] = ev
	d.order = append(d.order, e.ID)
	for _, dep := range e.Deps {
		d.dependents[dep] = append(d.dependents[dep], e.ID)
		d.edges++
	}
	return nil
}

// Event returns the event with the given ID and true, or nil and false if not
// found. The returned pointer refers to the stored event; callers must not
// change its ID or Deps.
func (d *DAG) Event(id string) (*Event, bool) {
	e, ok := d.events[id]
	return e, ok
}

// Resolve returns a copy of the event with the given ID.
// It satisfies the layout engine's resolver contract.
func (d *DAG) Resolve(id string) (Event, bool) {
	e, ok := d.events[id]
	if !ok {
		return Event{}, false
	}
	return *e, true
}

// Events returns all events sorted by traversal priority (see [Less]).
func (d *DAG) Events() []Event {
	out := make([]Event, 0, len(d.events))
	for _, id := range d.order {
		out = append(out, *d.events[id])
	}
	slices.SortFunc(out, Compare)
	return out
}

// IDs returns event IDs in insertion order.
func (d *DAG) IDs() []string { return slices.Clone(d.order) }

// EventCount returns the number of events in the graph.
func (d *DAG) EventCount() int { return len(d.events) }

// EdgeCount returns the number of dependency references, dangling ones included.
func (d *DAG) EdgeCount() int { return d.edges }

// Dependents returns the IDs of events that list id among their deps,
// in insertion order. The returned slice should not be modified.
func (d *DAG) Dependents(id string) []string { return d.dependents[id] }

// Heads returns the IDs of events no other event depends on, sorted by
// traversal priority. These are the natural frontier of the history.
func (d *DAG) Heads() []string {
	var heads []*Event
	for _, id := range d.order {
		if len(d.dependents[id]) == 0 {
			heads = append(heads, d.events[id])
		}
	}
	slices.SortFunc(heads, func(a, b *Event) int { return Compare(*a, *b) })
	ids := make([]string, len(heads))
	for i, e := range heads {
		ids[i] = e.ID
	}
	return ids
}

// Roots returns the IDs of events without dependencies, in insertion order.
func (d *DAG) Roots() []string {
	var roots []string
	for _, id := range d.order {
		if len(d.events[id].Deps) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// AssignLamport overwrites every event's Lamport timestamp with its generation
// number: roots get 1 and every other event gets one more than its highest
// dependency. Dangling dependencies count as 0. Use this for data sets that
// carry no logical clock. Events on a cycle keep their current value.
func (d *DAG) AssignLamport() {
	gen := make(map[string]int64, len(d.events))
	onStack := make(map[string]bool)

	for _, id := range d.order {
		if _, done := gen[id]; done {
			continue
		}
		// Iterative post-order walk; histories can be far deeper than the
		// goroutine stack would like for recursion.
		stack := []string{id}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			e := d.events[top]
			onStack[top] = true
			pushed := false
			for _, dep := range e.Deps {
				if _, done := gen[dep]; done {
					continue
				}
				if _, known := d.events[dep]; !known || onStack[dep] {
					continue
				}
				stack = append(stack, dep)
				pushed = true
				break
			}
			if pushed {
				continue
			}
			var g int64 = 1
			for _, dep := range e.Deps {
				if v, ok := gen[dep]; ok && v+1 > g {
					g = v + 1
				}
			}
			gen[top] = g
			onStack[top] = false
			stack = stack[:len(stack)-1]
		}
	}

	for id, g := range gen {
		d.events[id].Lamport = g
	}
}

// Validate checks history integrity and returns nil if valid.
// It verifies three constraints:
//
//  1. Every dependency refers to an event in the graph
//  2. Every dependency has a strictly lower Lamport timestamp than its dependent
//  3. The graph is acyclic
//
// Returns an error wrapping ErrUnknownDependency, ErrLamportOrder or
// ErrGraphHasCycle. The layout engine itself does not need a valid graph;
// Validate exists for callers who want to reject bad data up front.
func (d *DAG) Validate() error {
	if err := d.validateDeps(); err != nil {
		return err
	}
	return d.detectCycles()
}

func (d *DAG) validateDeps() error {
	var missing []string
	for _, id := range d.order {
		e := d.events[id]
		for _, dep := range e.Deps {
			de, ok := d.events[dep]
			if !ok {
				missing = append(missing, fmt.Sprintf("%s->%s", id, dep))
				continue
			}
			if de.Lamport >= e.Lamport {
				return fmt.Errorf("%w: %s (%d) -> %s (%d)", ErrLamportOrder, id, e.Lamport, dep, de.Lamport)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownDependency, strings.Join(missing, ", "))
	}
	return nil
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.events))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, dep := range d.events[id].Deps {
			if _, ok := d.events[dep]; !ok {
				continue
			}
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// Compare orders events by traversal priority: higher Lamport first, then
// lexicographically smaller ID first. It returns a negative number when a
// has priority over b.
func Compare(a, b Event) int {
	if c := cmp.Compare(b.Lamport, a.Lamport); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Less reports whether a is emitted before b by the layout traversal.
func Less(a, b Event) bool { return Compare(a, b) < 0 }
