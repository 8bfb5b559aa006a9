package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each item source
// its own namespace in a shared backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mongo:planner:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(revision string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(revision, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
