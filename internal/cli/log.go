// Package cli implements the lanegraph command-line interface.
//
// Commands load an event history (a dataset file, a git repository or a
// MongoDB collection), lay it out into rows and lanes, and write the result
// as layout JSON or a rendering. The CLI is built using cobra and logs via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute layout JSON from a dataset file
//   - render: Generate SVG, PNG, PDF, DOT or text output, optionally on every file change
//   - show, view: Print the lanes to the terminal or browse them interactively
//   - git, mongo: Lay out histories from a repository or a collection
//   - validate: Check a dataset for structural problems
//   - serve: Run the HTTP API
//   - cache, config, completion: Housekeeping
//
// # Configuration
//
// Defaults come from the layered configuration in [config]; flags override
// it. Use --config to point at a project file other than .lanegraph.yml.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// e.g. "Resolved 42 commits (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
