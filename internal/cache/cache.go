// Package cache provides a small byte cache used for encoded API responses.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cache stores encoded values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NoopCache never stores anything. It is used when Redis is not configured.
type NoopCache struct{}

// NewNoop creates a cache that always misses.
func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *NoopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// processEpoch scopes keys to this process. Store versions restart at zero
// on every boot, so a shared Redis must not serve another run's entries.
var processEpoch = uuid.NewString()

// StatsStamp identifies the data a stats payload was computed from.
type StatsStamp struct {
	Version     uint64
	LastUpdated *time.Time
	Fallback    float64
}

// StatsKey identifies a computed stats payload. Stats depend on the data
// stamp and the current minute.
func StatsKey(stamp StatsStamp, now time.Time) string {
	var updated int64
	if stamp.LastUpdated != nil {
		updated = stamp.LastUpdated.UnixNano()
	}
	return fmt.Sprintf("dashboard:stats:%s:v%d:u%d:f%g:m%d",
		processEpoch, stamp.Version, updated, stamp.Fallback, now.Unix()/60)
}
