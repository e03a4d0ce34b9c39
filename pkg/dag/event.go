package dag

// Metadata stores arbitrary key-value pairs attached to events or the graph.
// It is commonly used to carry display data (commit message, author) that
// renderers pick up. Metadata maps are never nil after [DAG.AddEvent].
type Metadata map[string]any

// Well-known metadata keys recognized by renderers.
const (
	MetaMessage = "message"
	MetaAuthor  = "author"
	MetaTime    = "time"
)

// Event is one node of a versioned history: a commit, a CRDT operation, or
// anything else that names its direct predecessors.
//
// Events are owned by the caller and treated as immutable once created.
type Event struct {
	ID      string   // Unique, opaque identifier
	Deps    []string // Direct predecessors; empty for roots
	Lamport int64    // Logical clock; concurrent events may share a value
	Meta    Metadata // Display data, never interpreted by the layout engine
}

// Label returns the event's message metadata if it is a non-empty string,
// otherwise its ID.
func (e Event) Label() string {
	if m, ok := e.Meta[MetaMessage].(string); ok && m != "" {
		return m
	}
	return e.ID
}

// IsRoot reports whether the event has no dependencies.
func (e Event) IsRoot() bool { return len(e.Deps) == 0 }

// IsMerge reports whether the event has more than one dependency.
func (e Event) IsMerge() bool { return len(e.Deps) > 1 }
