package cache

// ScopedKeyer wraps a Keyer with a prefix. Runs that use a custom catalog
// scope their keys by the catalog hash so that plans computed with different
// prototype sizes never collide.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "catalog:"+Hash(data)[:12]+":")
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

// PlanKey generates a prefixed key for plan caching.
func (k *ScopedKeyer) PlanKey(fieldHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(fieldHash, opts)
}
