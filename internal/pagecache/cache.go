// Package pagecache holds rendered feed artifacts for a fixed TTL.
//
// Entries are only ever removed by expiry or by Clear. Writes to the record
// store do not evict anything; readers see the cached artifact until the TTL
// window closes.
package pagecache

import (
	"context"
	"time"
)

// Cache is a time-expiring byte store. Every entry lives for the TTL given
// at construction.
type Cache interface {
	// Get reports the cached value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Clear drops every entry regardless of TTL.
	Clear(ctx context.Context) error
	TTL() time.Duration
}
