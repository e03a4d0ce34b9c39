package layout

import (
	"slices"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// Resolver looks up events by ID. Implementations must be synchronous and
// deterministic for the duration of one [Compute] call; returning false
// marks the ID as unresolved.
type Resolver interface {
	Resolve(id string) (dag.Event, bool)
}

// ResolverFunc adapts a plain function to [Resolver].
type ResolverFunc func(id string) (dag.Event, bool)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id string) (dag.Event, bool) { return f(id) }

// MapResolver resolves IDs from an in-memory map.
type MapResolver map[string]dag.Event

// Resolve returns m[id].
func (m MapResolver) Resolve(id string) (dag.Event, bool) {
	e, ok := m[id]
	return e, ok
}

// View is a computed layout: one row per emitted event, newest first.
type View struct {
	Rows []Row
	// Unresolved holds frontier and dependency IDs the resolver did not
	// know, sorted. They are excluded from Rows.
	Unresolved []string
	// Truncated is set when the row budget stopped the traversal early.
	// Lanes still open on the last row's output lead to events not shown.
	Truncated bool
}

// Err returns an [*UnresolvedError] when the layout skipped unknown IDs, and
// nil otherwise.
func (v *View) Err() error {
	if len(v.Unresolved) == 0 {
		return nil
	}
	return &UnresolvedError{IDs: slices.Clone(v.Unresolved)}
}

// Width returns the number of columns needed to draw the widest row.
func (v *View) Width() int {
	w := 0
	for _, r := range v.Rows {
		w = max(w, r.Width())
	}
	return w
}

// Lanes returns the number of distinct lane ids used by the layout.
func (v *View) Lanes() int {
	seen := make(map[int]bool)
	for _, r := range v.Rows {
		for _, th := range r.Input {
			seen[th.Tid] = true
		}
		for _, th := range r.Output {
			seen[th.Tid] = true
		}
	}
	return len(seen)
}

// Index returns the row index of the event with the given ID.
func (v *View) Index(id string) (int, bool) {
	i := slices.IndexFunc(v.Rows, func(r Row) bool { return r.ID() == id })
	return i, i >= 0
}

// Option configures [Compute].
type Option func(*config)

type config struct {
	policy  ForkPolicy
	maxRows int
}

// WithForkPolicy sets the policy deciding which dependency of a merge event
// keeps its lane. The default is [PriorityFirst]. A nil policy is ignored.
func WithForkPolicy(p ForkPolicy) Option {
	return func(c *config) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithMaxRows stops the traversal after n rows and marks the view truncated.
// Zero or a negative n means no limit.
func WithMaxRows(n int) Option { return func(c *config) { c.maxRows = n } }

// computation is the whole mutable state of one layout pass.
type computation struct {
	cfg   config
	sched *scheduler
	lanes *laneTable
	rows  []Row
}

// Compute lays out the history reachable from frontiers.
//
// Events are emitted in descending Lamport order with ties broken by
// ascending ID; each emission produces one [Row]. Every distinct frontier that
// resolves gets its own lane, in the order given. Duplicate frontier IDs are
// ignored. IDs the resolver does not know are reported in View.Unresolved
// and traversal does not continue through them.
//
// Compute keeps no state between calls and is safe to run concurrently with
// independent resolvers. It panics with an [*InvariantError] if the lane
// bookkeeping is ever inconsistent.
func Compute(r Resolver, frontiers []string, opts ...Option) *View {
	c := &computation{
		cfg:   config{policy: PriorityFirst},
		sched: newScheduler(r),
		lanes: newLaneTable(),
	}
	for _, opt := range opts {
		opt(&c.cfg)
	}

	c.seed(frontiers)

	view := &View{}
	for {
		if c.cfg.maxRows > 0 && len(c.rows) >= c.cfg.maxRows {
			view.Truncated = c.sched.pending() > 0
			break
		}
		ev, ok := c.sched.next()
		if !ok {
			break
		}
		c.rows = append(c.rows, c.emit(ev))
	}

	view.Rows = c.rows
	view.Unresolved = c.sched.unresolved()
	slices.Sort(view.Unresolved)
	return view
}

func (c *computation) seed(frontiers []string) {
	seen := make(map[string]bool, len(frontiers))
	for _, id := range frontiers {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := c.sched.schedule(id); ok {
			c.lanes.open(id, -1)
		}
	}
}

// emit updates the lane table for ev and returns its row.
func (c *computation) emit(ev dag.Event) Row {
	index := len(c.rows)
	owners := slices.Clone(c.lanes.awaiting(ev.ID))
	if len(owners) == 0 {
		panic(&InvariantError{Row: index, Tid: -1, Reason: "emitted event " + ev.ID + " has no lane"})
	}
	c.lanes.settle(ev.ID)

	row := Row{
		Active: Active{Tid: owners[0], Event: ev},
		Input:  c.lanes.threads(func(l lane) bool { return l.awaits == ev.ID }),
	}

	// Lanes that reconverge at ev collapse into the first registered one.
	// Their ids are free again at once, so a fork below can pick them up.
	for _, tid := range owners[1:] {
		c.lanes.remove(tid)
		c.lanes.arena.release(tid)
	}
	row.CurTids = c.lanes.tids()
	row.ActiveIndex = c.lanes.column(row.Active.Tid)

	deps := c.admit(ev)
	fresh := make(map[int]bool, len(deps))
	switch len(deps) {
	case 0:
		c.lanes.remove(row.Active.Tid)
		c.lanes.arena.release(row.Active.Tid)
	case 1:
		c.lanes.retarget(row.Active.Tid, deps[0].ID)
	default:
		primary := c.cfg.policy(deps)
		if primary < 0 || primary >= len(deps) {
			panic(&InvariantError{Row: index, Tid: row.Active.Tid, Reason: "fork policy returned an invalid index"})
		}
		c.lanes.retarget(row.Active.Tid, deps[primary].ID)
		at := row.ActiveIndex + 1
		for i, d := range deps {
			if i == primary {
				continue
			}
			fresh[c.lanes.open(d.ID, at)] = true
			at++
		}
	}

	row.Output = c.lanes.threads(func(l lane) bool {
		return l.tid == row.Active.Tid || fresh[l.tid]
	})
	row.check(index)
	return row
}

// admit schedules ev's dependencies and returns those that need a lane:
// resolvable, not yet emitted, and listed for the first time.
func (c *computation) admit(ev dag.Event) []dag.Event {
	var deps []dag.Event
	seen := make(map[string]bool, len(ev.Deps))
	for _, id := range ev.Deps {
		if seen[id] {
			continue
		}
		seen[id] = true
		if d, ok := c.sched.schedule(id); ok {
			deps = append(deps, d)
		}
	}
	return deps
}
