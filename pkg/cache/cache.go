// Package cache stores encoded conversion results between runs.
//
// A conversion is a pure function of the session bytes and the conversion
// options, so its output can be reused until either changes. Keys are built
// by a [Keyer] from a content hash of the input and the options; values are
// the encoded output bytes.
//
// Two backends are provided: [FileCache] for the CLI (one compressed file per
// entry under the user cache directory) and [NullCache] when caching is
// disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss or when
	// the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ConversionKeyOpts are the options that change a conversion's output.
type ConversionKeyOpts struct {
	Projection string `json:"projection"`
	Format     string `json:"format"`
	Root       string `json:"root,omitempty"`
	AllRoots   bool   `json:"all_roots,omitempty"`
	MaxNodes   int    `json:"max_nodes,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ConversionKey returns the key for converting the input with the given
	// content hash under opts.
	ConversionKey(inputHash string, opts ConversionKeyOpts) string
}

// DefaultKeyer builds keys of the form "conv:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ConversionKey hashes the input hash together with opts.
func (DefaultKeyer) ConversionKey(inputHash string, opts ConversionKeyOpts) string {
	return hashKey("conv", inputHash, opts)
}
