// Package cache provides the fetch-layer content cache. Fetched page
// text is cached by URL so repeated scans of the same target do not
// re-download it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the fetch-layer cache interface.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KeyForURL derives the cache key for a fetched URL. The version
// segment invalidates old entries when the cached representation
// changes.
func KeyForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "veridex:v1:" + hex.EncodeToString(sum[:])
}
