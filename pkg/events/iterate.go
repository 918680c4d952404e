package events

import (
	"context"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/observability"
	"github.com/rfkit/rfkit/pkg/seis"
)

// WaveformFunc fetches waveform data for one channel group. The channel
// argument carries a trailing "?" wildcard matching any component, e.g.
// "BH?". Implementations return an UNAVAILABLE_WAVEFORM error (or any error
// satisfying errors.IsSkippable) when no data exists for the request.
type WaveformFunc func(ctx context.Context, network, station, location, channel string,
	start, end time.Time) (seis.Stream, error)

// RequestWindow is the fetched time span in seconds around the phase onset.
type RequestWindow struct {
	Start float64
	End   float64
}

// IterOptions configures IterEvents.
type IterOptions struct {
	Phase string // default "P"

	// Window around the onset; default (-50, 150) for P legs and
	// (-100, 50) for S legs.
	Window *RequestWindow

	// Pad widens the fetch request on both sides, in seconds, before the
	// stream is trimmed back to the window. Default 10.
	Pad float64

	DistRange *[2]float64
	Model     ArrivalModel

	Logger *log.Logger

	// Progress is called after each event/station pair with the number of
	// pairs handled so far and the total.
	Progress func(done, total int)
}

func (o *IterOptions) setDefaults() {
	if o.Phase == "" {
		o.Phase = "P"
	}
	if o.Window == nil {
		if phaseMethod(o.Phase) == "S" {
			o.Window = &RequestWindow{Start: -100, End: 50}
		} else {
			o.Window = &RequestWindow{Start: -50, End: 150}
		}
	}
	if o.Pad == 0 {
		o.Pad = 10
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// IterEvents yields one merged three-component stream per event and station
// group, each trace annotated with the attributes computed by RFStats.
//
// Pairs without data are skipped, not failed: stations outside their
// availability window, distances without a phase arrival and fetches
// reporting a skippable absence all continue silently. Streams with the
// wrong component count or gapped samples are skipped with a logged warning.
// Anything else (inconsistent metadata, invalid inputs) stops the sequence
// with a non-nil error.
func IterEvents(ctx context.Context, cat Catalog, inv *Inventory, fetch WaveformFunc,
	opts IterOptions) iter.Seq2[seis.Stream, error] {
	opts.setDefaults()
	groups := inv.channelGroups()
	total := len(cat) * len(groups)

	return func(yield func(seis.Stream, error) bool) {
		done := 0
		for _, ev := range cat {
			for _, g := range groups {
				if ctx.Err() != nil {
					yield(nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "iteration canceled"))
					return
				}
				st, err := fetchPair(ctx, ev, g, fetch, &opts)
				done++
				if opts.Progress != nil {
					opts.Progress(done, total)
				}
				if err != nil {
					yield(nil, err)
					return
				}
				if st == nil {
					continue
				}
				if !yield(st, nil) {
					return
				}
			}
		}
	}
}

// fetchPair handles one event/station-group pair. A nil stream with nil
// error means skip.
func fetchPair(ctx context.Context, ev Event, g channelGroup, fetch WaveformFunc,
	opts *IterOptions) (seis.Stream, error) {
	seedID := g.seedID()
	hooks := observability.Fetch()
	hooks.OnEventStart(ctx, ev.ID, seedID)
	start := time.Now()

	lat, lon, err := g.coordinates(ev.Origin.Time)
	if err != nil {
		hooks.OnSkip(ctx, ev.ID, seedID, "station unavailable")
		return nil, nil
	}
	stats, err := RFStats(lat, lon, ev, StatsOptions{
		Phase:     opts.Phase,
		DistRange: opts.DistRange,
		Model:     opts.Model,
	})
	if err != nil {
		hooks.OnEventComplete(ctx, ev.ID, seedID, 0, time.Since(start), err)
		return nil, err
	}
	if stats == nil {
		hooks.OnSkip(ctx, ev.ID, seedID, "no phase arrival")
		return nil, nil
	}

	winStart := stats.Onset.Add(secs(opts.Window.Start))
	winEnd := stats.Onset.Add(secs(opts.Window.End))
	pad := secs(opts.Pad)
	st, err := fetch(ctx, g.station.Network, g.station.Code, g.loc, g.band+"?",
		winStart.Add(-pad), winEnd.Add(pad))
	if err != nil {
		if errors.IsSkippable(err) {
			hooks.OnSkip(ctx, ev.ID, seedID, "no waveform data")
			return nil, nil
		}
		hooks.OnEventComplete(ctx, ev.ID, seedID, 0, time.Since(start), err)
		return nil, err
	}

	st.Trim(winStart, winEnd)
	st, err = st.Merge()
	if err != nil {
		hooks.OnEventComplete(ctx, ev.ID, seedID, 0, time.Since(start), err)
		return nil, err
	}
	if len(st) != 3 {
		opts.Logger.Warn("need 3 component seismograms",
			"components", len(st), "event", ev.ID, "station", seedID)
		hooks.OnSkip(ctx, ev.ID, seedID, "wrong component count")
		return nil, nil
	}
	if st.HasGaps() {
		opts.Logger.Warn("gaps or overlaps detected",
			"event", ev.ID, "station", seedID)
		hooks.OnSkip(ctx, ev.ID, seedID, "gapped data")
		return nil, nil
	}

	for _, tr := range st {
		applyStats(&tr.Stats, stats)
	}
	hooks.OnEventComplete(ctx, ev.ID, seedID, len(st), time.Since(start), nil)
	return st, nil
}

// applyStats copies the event attributes onto a trace, keeping the trace's
// own identity and timing fields.
func applyStats(dst *seis.Stats, src *seis.Stats) {
	dst.Phase = src.Phase
	dst.Distance = src.Distance
	dst.Azimuth = src.Azimuth
	dst.BackAzimuth = src.BackAzimuth
	dst.Slowness = src.Slowness
	dst.Onset = src.Onset
	dst.EventID = src.EventID
	dst.StationLatitude = src.StationLatitude
	dst.StationLongitude = src.StationLongitude
	dst.EventLatitude = src.EventLatitude
	dst.EventLongitude = src.EventLongitude
	dst.EventDepthKM = src.EventDepthKM
	dst.EventMagnitude = src.EventMagnitude
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
