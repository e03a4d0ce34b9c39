package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/matzehuels/lanegraph/pkg/cache"
	"github.com/matzehuels/lanegraph/pkg/dag"
	errs "github.com/matzehuels/lanegraph/pkg/errors"
	lgio "github.com/matzehuels/lanegraph/pkg/io"
	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/render"
)

// Classify attaches an error code to err so the CLI and the API can report
// it consistently. Errors that already carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errs.GetCode(err) != "" {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeTimeout, err, "operation timed out")
	case errors.Is(err, os.ErrNotExist):
		return errs.Wrap(errs.ErrCodeFileNotFound, err, "file not found")
	case errors.Is(err, layout.ErrUnresolvedReference):
		return errs.Wrap(errs.ErrCodeUnresolved, err, "history has unresolved references")
	case errors.Is(err, lgio.ErrUnknownFormat):
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "unsupported dataset format")
	case errors.Is(err, render.ErrNoConverter):
		return errs.Wrap(errs.ErrCodeUnsupported, err, "format needs rsvg-convert")
	case errors.Is(err, cache.ErrNetwork):
		return errs.Wrap(errs.ErrCodeNetwork, err, "backend unavailable")
	case errors.Is(err, dag.ErrInvalidEventID),
		errors.Is(err, dag.ErrDuplicateEventID),
		errors.Is(err, dag.ErrNegativeLamport),
		errors.Is(err, dag.ErrUnknownDependency),
		errors.Is(err, dag.ErrLamportOrder),
		errors.Is(err, dag.ErrGraphHasCycle),
		errors.Is(err, lgio.ErrPartialLamport):
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid history")
	default:
		return errs.Wrap(errs.ErrCodeInternal, err, "internal error")
	}
}
