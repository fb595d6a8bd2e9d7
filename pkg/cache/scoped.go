package cache

// ScopedKeyer prefixes every key produced by an inner Keyer. The CLI scopes
// keys by build version so that entries written by an older binary, whose
// output format may differ, are never served.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ConversionKey returns the inner key with the prefix prepended.
func (k *ScopedKeyer) ConversionKey(inputHash string, opts ConversionKeyOpts) string {
	return k.prefix + k.inner.ConversionKey(inputHash, opts)
}
