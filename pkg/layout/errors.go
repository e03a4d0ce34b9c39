package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedReference is wrapped by [UnresolvedError].
var ErrUnresolvedReference = errors.New("unresolved reference")

// UnresolvedError lists frontier or dependency ids the resolver did not know.
// A layout with unresolved ids is still complete for the reachable part of
// the history; whether that is fatal is the caller's decision.
type UnresolvedError struct {
	IDs []string
}

func (e *UnresolvedError) Error() string {
	const shown = 5
	ids := e.IDs
	suffix := ""
	if len(ids) > shown {
		suffix = fmt.Sprintf(" (+%d more)", len(ids)-shown)
		ids = ids[:shown]
	}
	return fmt.Sprintf("%d unresolved reference(s): %s%s", len(e.IDs), strings.Join(ids, ", "), suffix)
}

// Unwrap returns ErrUnresolvedReference so errors.Is works on the sentinel.
func (e *UnresolvedError) Unwrap() error { return ErrUnresolvedReference }

// InvariantError reports a lane bookkeeping bug in the engine. It is raised
// with panic, never returned: a malformed row must not reach a renderer.
type InvariantError struct {
	Row    int // Row index being assembled
	Tid    int // Lane involved
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("lane invariant violated at row %d (tid %d): %s", e.Row, e.Tid, e.Reason)
}
