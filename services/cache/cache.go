package cache

import (
	"time"
)

// CacheService represents a generic cache service. The pipeline uses it as
// the per-site fetch block store: a site that rate-limited us gets a block
// key with an expiry, and no listing fetch happens while the key lives.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
