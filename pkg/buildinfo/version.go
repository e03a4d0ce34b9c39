// Package buildinfo holds the version stamped into the lanegraph binary.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/lanegraph/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/lanegraph/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/lanegraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/lanegraph
package buildinfo

import "fmt"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Fields returns the build information keyed by name, as reported by the
// HTTP health endpoint.
func Fields() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"built":   Date,
	}
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
