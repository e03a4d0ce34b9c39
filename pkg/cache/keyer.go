package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Every option that changes the cached bytes must
// be part of the key.
type Keyer interface {
	// HistoryKey identifies a history loaded from an external source, such
	// as a git repository path or a MongoDB collection.
	HistoryKey(source, ref string, opts HistoryKeyOpts) string
	// LayoutKey identifies a layout of the dataset with the given hash.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendering of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// HistoryKeyOpts are the source options that affect a loaded history.
type HistoryKeyOpts struct {
	Revisions  []string `json:"revisions,omitempty"`
	MaxCommits int      `json:"max_commits,omitempty"`
}

// LayoutKeyOpts are the layout options that affect the computed view.
type LayoutKeyOpts struct {
	Frontiers []string `json:"frontiers,omitempty"`
	DepOrder  string   `json:"dep_order"`
	MaxRows   int      `json:"max_rows,omitempty"`
}

// ArtifactKeyOpts are the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	CellSize float64 `json:"cell_size,omitempty"`
	Labels   bool    `json:"labels"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HistoryKey returns "history:<hash>".
func (DefaultKeyer) HistoryKey(source, ref string, opts HistoryKeyOpts) string {
	return hashKey("history", source, ref, opts)
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey returns prefix + ":" + the SHA-256 of the JSON-encoded parts.
// Key structs only hold strings, numbers and slices, so encoding cannot fail.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data. Datasets and layouts are keyed by
// the hash of their canonical JSON encoding.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
