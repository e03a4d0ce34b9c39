package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys of the staging server
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HistoryKey generates a prefixed key for loaded histories.
func (k *ScopedKeyer) HistoryKey(source, ref string, opts HistoryKeyOpts) string {
	return k.prefix + k.inner.HistoryKey(source, ref, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
