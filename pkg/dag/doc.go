// Package dag provides the event history model consumed by the lane layout.
//
// # Overview
//
// A history is a directed acyclic graph of versioned events. Each [Event]
// names its direct predecessors (Deps) and carries a Lamport timestamp that
// gives concurrent events a deterministic tie-break order. Commits in a git
// repository and operations in a CRDT log both fit this shape.
//
// # Basic Usage
//
// Create a history with [New] and add events with [DAG.AddEvent]. Dependencies
// may be added in any order; dangling references are allowed and reported by
// [DAG.Validate]:
//
//	g := dag.New(nil)
//	g.AddEvent(dag.Event{ID: "a", Lamport: 1})
//	g.AddEvent(dag.Event{ID: "b", Deps: []string{"a"}, Lamport: 2})
//
// [DAG.Heads] returns the events nobody depends on, which is the natural
// frontier to start a layout from. [DAG.Resolve] satisfies the layout
// engine's resolver contract, so a DAG can be passed straight to
// layout.Compute.
//
// # Priority
//
// [Compare] and [Less] define the traversal priority shared by every package:
// higher Lamport first, ties broken by the lexicographically smaller ID.
//
// # Lamport Assignment
//
// Data sets without a logical clock can call [DAG.AssignLamport], which sets
// every event's timestamp to its generation number (longest path from a root
// plus one). Generation numbers always satisfy the Lamport condition.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph. A fully built
// DAG that is no longer modified can be resolved from many goroutines.
package dag
