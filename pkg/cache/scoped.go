package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (staging,
// production) can share one Redis without reading each other's entries.
//
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

// RoutineKey generates a prefixed key for a rendered routine.
func (k *ScopedKeyer) RoutineKey(opts RoutineKeyOpts) string {
	return k.prefix + k.inner.RoutineKey(opts)
}

// FormationKey generates a prefixed key for a formation diagram.
func (k *ScopedKeyer) FormationKey(opts FormationKeyOpts) string {
	return k.prefix + k.inner.FormationKey(opts)
}
