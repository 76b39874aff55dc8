package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RenderKeyOpts are the render settings that change the output.
type RenderKeyOpts struct {
	Format     string  `json:"format"`
	Detailed   bool    `json:"detailed,omitempty"`
	ShowHidden bool    `json:"show_hidden,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey identifies a rendering of a graph document in a given
	// interaction state. state must be JSON serializable.
	RenderKey(graphHash string, state any, opts RenderKeyOpts) string
}

// DefaultKeyer hashes all key components.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(graphHash string, state any, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, state, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, so that several
// deployments can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(graphHash string, state any, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, state, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
