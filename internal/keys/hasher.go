package keys

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// cacheKeyHasher computes stable fingerprints for cache key components
// using Hash64.
type cacheKeyHasher struct {
	hasher *xxhash.Digest
}

func newCacheKeyHasher() *cacheKeyHasher {
	return &cacheKeyHasher{hasher: xxhash.New()}
}

// WriteString writes the provided string to the hash.
func (c *cacheKeyHasher) WriteString(value string) {
	// WriteString always returns a nil error
	_, _ = c.hasher.WriteString(value)
}

// WriteInt64 writes the decimal form of value to the hash with a trailing
// separator so adjacent values cannot collide.
func (c *cacheKeyHasher) WriteInt64(value int64) {
	_, _ = c.hasher.WriteString(strconv.FormatInt(value, 10))
	_, _ = c.hasher.WriteString(",")
}

// Sum returns the stable fingerprint accumulated so far.
func (c *cacheKeyHasher) Sum() string {
	return strconv.FormatUint(c.hasher.Sum64(), 16)
}
