package cache

import "time"

// ScopedKeyer wraps a Keyer with a prefix so several datasets or users can
// share one backend without key collisions.
//
// Example usage:
//
//	// Keys for one field campaign
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "alps2023:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// WaveformKey generates a prefixed waveform-request key.
func (k *ScopedKeyer) WaveformKey(network, station, location, channel string, start, end time.Time) string {
	return k.prefix + k.inner.WaveformKey(network, station, location, channel, start, end)
}

// FigureKey generates a prefixed figure key.
func (k *ScopedKeyer) FigureKey(kind, streamHash string, opts any) string {
	return k.prefix + k.inner.FigureKey(kind, streamHash, opts)
}
