package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rfkit/rfkit/pkg/events"
	"github.com/rfkit/rfkit/pkg/seis"
)

// Waveforms wraps a fetch function so repeated event iteration over the same
// catalog reuses cached data instead of refetching. Only successful fetches
// are cached; skippable absences keep going to the source so transient
// outages heal.
func Waveforms(c Cache, k Keyer, ttl time.Duration, fetch events.WaveformFunc) events.WaveformFunc {
	if k == nil {
		k = NewDefaultKeyer()
	}
	return func(ctx context.Context, network, station, location, channel string,
		start, end time.Time) (seis.Stream, error) {
		key := k.WaveformKey(network, station, location, channel, start, end)

		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			var st seis.Stream
			if err := json.Unmarshal(data, &st); err == nil {
				return st, nil
			}
			// Corrupt entry, drop it and refetch.
			_ = c.Delete(ctx, key)
		}

		st, err := fetch(ctx, network, station, location, channel, start, end)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(st); err == nil {
			_ = c.Set(ctx, key, data, ttl)
		}
		return st, nil
	}
}
