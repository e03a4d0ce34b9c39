// Package layout assigns the events of a history to vertical lanes so the
// graph can be drawn as a sequence of rows, newest first.
//
// # Overview
//
// [Compute] walks the history backwards from a set of frontier events. At
// each step it emits the pending event with the highest priority (see
// [dag.Compare]) and records one [Row]: the lane the event sits on, the lanes
// arriving from the row above, the lanes at node level, and the lanes
// leaving towards the row below. A renderer needs nothing else to draw the
// graph; rows carry no coordinates.
//
// Events are looked up through a [Resolver]. A *dag.DAG is one, and so is a
// [MapResolver] or any function wrapped in [ResolverFunc]. Each id is
// resolved at most once per call.
//
// # Lanes
//
// A lane is identified by a small integer (its tid) and always awaits one
// pending event. When that event is emitted:
//
//   - Every other lane awaiting it collapses into the first lane that was
//     routed to it (a merge when read top to bottom).
//   - The surviving lane continues to one dependency, chosen by the
//     [ForkPolicy]; every further dependency gets a new lane inserted right
//     of it (a fork).
//   - An event without pending dependencies ends its lane.
//
// Lane ids are reused smallest first once their lane ends, so the number of
// distinct tids tracks the widest point of the history rather than its
// length. Two live lanes never share a tid.
//
// # Connectors
//
// Row.Input and Row.Output list every live lane in column order together
// with a DepOnActive flag. On the input side the flag marks lanes whose edge
// ends at the active event; on the output side it marks the lanes the active
// event feeds. Input lanes are drawn from their input position to their
// position in Row.CurTids, or to Row.ActiveIndex when flagged. Output lanes
// leave CurTids (or the active node, when flagged) towards their output
// position. Consecutive rows agree: the input of row i+1 equals the output of
// row i.
//
// # Errors
//
// Ids the resolver does not know are skipped and listed in View.Unresolved;
// [View.Err] turns them into an [*UnresolvedError]. Internal inconsistencies
// panic with an [*InvariantError] instead of producing a malformed row.
//
// # Bounding
//
// [WithMaxRows] stops the walk after a number of rows. The view is marked
// Truncated when events were left pending; the lanes on the last row's
// output then lead to history that is not shown.
package layout
