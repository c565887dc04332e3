package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. Use it to share one
// Redis database between projects:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "constellation:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RegistryKey implements [Keyer].
func (k *ScopedKeyer) RegistryKey(source string) string {
	return k.prefix + k.inner.RegistryKey(source)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(registryHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(registryHash, opts)
}
