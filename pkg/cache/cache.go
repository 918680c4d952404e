// Package cache provides the caching layer for fetched waveforms and
// rendered figures. Backends share a small byte-oriented interface so the
// CLI can run against local files, a redis instance, or nothing at all.
package cache

import (
	"context"
	"time"

	"github.com/rfkit/rfkit/pkg/observability"
)

// Cache is the backend interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. The boolean reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer builds cache keys for the things rfkit caches.
type Keyer interface {
	// WaveformKey identifies one waveform request.
	WaveformKey(network, station, location, channel string, start, end time.Time) string

	// FigureKey identifies a rendered figure by kind, the hash of the input
	// stream, and the render options.
	FigureKey(kind, streamHash string, opts any) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// WaveformKey implements Keyer.
func (*DefaultKeyer) WaveformKey(network, station, location, channel string, start, end time.Time) string {
	return hashKey("waveform", network, station, location, channel,
		start.UTC().UnixNano(), end.UTC().UnixNano())
}

// FigureKey implements Keyer.
func (*DefaultKeyer) FigureKey(kind, streamHash string, opts any) string {
	return hashKey("figure:"+kind, streamHash, opts)
}

// Instrumented wraps a cache with the registered observability hooks, so
// hits, misses and writes show up in metrics.
func Instrumented(inner Cache) Cache {
	return &instrumented{inner: inner}
}

type instrumented struct {
	inner Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, key)
		} else {
			observability.Cache().OnCacheMiss(ctx, key)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, key, len(data))
	}
	return err
}

func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *instrumented) Close() error {
	return c.inner.Close()
}
