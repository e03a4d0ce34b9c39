package layout

import (
	"fmt"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// ForkPolicy picks which dependency of a merge event continues the event's
// own lane. It receives the dependencies that still need a lane, in the
// order the event lists them, and returns an index into that slice. All
// other dependencies get new lanes right of the active column, keeping
// their listed order.
//
// The policy only runs for events with two or more such dependencies.
type ForkPolicy func(deps []dag.Event) int

// PriorityFirst continues the lane with the dependency the traversal will
// emit first (highest Lamport, then smallest ID). Long-lived branches tend
// to keep their column with this policy. It is the default.
func PriorityFirst(deps []dag.Event) int {
	best := 0
	for i := 1; i < len(deps); i++ {
		if dag.Less(deps[i], deps[best]) {
			best = i
		}
	}
	return best
}

// FirstListed continues the lane with the first listed dependency, which
// for git merges is the branch that was merged into.
func FirstListed([]dag.Event) int { return 0 }

// Policies maps policy names accepted by configuration and flags.
var Policies = map[string]ForkPolicy{
	"priority": PriorityFirst,
	"first":    FirstListed,
}

// DefaultPolicy is the name of the policy used when none is configured.
const DefaultPolicy = "priority"

// PolicyByName looks up a registered fork policy.
func PolicyByName(name string) (ForkPolicy, error) {
	if name == "" {
		name = DefaultPolicy
	}
	p, ok := Policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown fork policy %q (must be 'priority' or 'first')", name)
	}
	return p, nil
}
