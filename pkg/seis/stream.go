package seis

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
)

// Stream is an ordered collection of traces. Insertion order is listing
// order; nothing requires the traces to share metadata.
type Stream []*Trace

// IDs returns the seed identifier of every trace, in stream order.
func (st Stream) IDs() []string {
	out := make([]string, len(st))
	for i, tr := range st {
		out[i] = tr.ID()
	}
	return out
}

// Copy returns a deep copy of the stream.
func (st Stream) Copy() Stream {
	out := make(Stream, len(st))
	for i, tr := range st {
		out[i] = tr.Copy()
	}
	return out
}

// Trim cuts every trace to [start, end] in place.
func (st Stream) Trim(start, end time.Time) {
	for _, tr := range st {
		tr.Trim(start, end)
	}
}

// Decimate decimates every trace in place.
func (st Stream) Decimate(factor int) {
	for _, tr := range st {
		tr.Decimate(factor)
	}
}

// HasGaps reports whether any trace contains NaN samples.
func (st Stream) HasGaps() bool {
	for _, tr := range st {
		if tr.HasGaps() {
			return true
		}
	}
	return false
}

// MaxAbs returns the largest absolute sample over the whole stream.
func (st Stream) MaxAbs() float64 {
	m := 0.0
	for _, tr := range st {
		if a := tr.MaxAbs(); a > m {
			m = a
		}
	}
	return m
}

// Merge combines traces sharing a seed identifier into single traces.
// Segments are placed on a common time base; any span not covered by data is
// filled with NaN, which HasGaps later reports. Traces with distinct IDs pass
// through untouched. Merging traces with differing sampling rates is a
// precondition violation.
func (st Stream) Merge() (Stream, error) {
	byID := make(map[string]Stream)
	var order []string
	for _, tr := range st {
		id := tr.ID()
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = append(byID[id], tr)
	}

	out := make(Stream, 0, len(order))
	for _, id := range order {
		segs := byID[id]
		if len(segs) == 1 {
			out = append(out, segs[0])
			continue
		}
		merged, err := mergeSegments(id, segs)
		if err != nil {
			return nil, err
		}
		out = append(out, merged)
	}
	return out, nil
}

func mergeSegments(id string, segs Stream) (*Trace, error) {
	rate := segs[0].Stats.SamplingRate
	for _, s := range segs[1:] {
		if s.Stats.SamplingRate != rate {
			return nil, errors.New(errors.ErrCodeInvalidStream,
				"cannot merge %s: sampling rates differ (%g vs %g)", id, rate, s.Stats.SamplingRate)
		}
	}
	sorted := slices.Clone(segs)
	slices.SortFunc(sorted, func(a, b *Trace) int {
		return a.Stats.StartTime.Compare(b.Stats.StartTime)
	})

	start := sorted[0].Stats.StartTime
	end := sorted[0].EndTime()
	for _, s := range sorted[1:] {
		if e := s.EndTime(); e.After(end) {
			end = e
		}
	}
	n := int(math.Round(end.Sub(start).Seconds()*rate)) + 1
	data := make([]float64, n)
	for i := range data {
		data[i] = math.NaN()
	}
	for _, s := range sorted {
		off := int(math.Round(s.Stats.StartTime.Sub(start).Seconds() * rate))
		for i, v := range s.Data {
			if off+i < n {
				data[off+i] = v
			}
		}
	}

	merged := sorted[0].Copy()
	merged.Stats.StartTime = start
	merged.Data = data
	return merged, nil
}

// Stack averages traces sample-wise per distinct seed identifier and returns
// one trace per identifier, sorted by identifier. Traces are aligned by
// sample index; the result is truncated to the shortest member. A stream
// spanning several stations therefore stacks into several traces, which the
// stack plot warns about.
func (st Stream) Stack() Stream {
	byID := make(map[string]Stream)
	for _, tr := range st {
		byID[tr.ID()] = append(byID[tr.ID()], tr)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make(Stream, 0, len(ids))
	for _, id := range ids {
		group := byID[id]
		n := group[0].NPts()
		for _, tr := range group[1:] {
			if tr.NPts() < n {
				n = tr.NPts()
			}
		}
		stacked := group[0].Copy()
		stacked.Data = make([]float64, n)
		for i := 0; i < n; i++ {
			sum, cnt := 0.0, 0
			for _, tr := range group {
				if v := tr.Data[i]; !math.IsNaN(v) {
					sum += v
					cnt++
				}
			}
			if cnt > 0 {
				stacked.Data[i] = sum / float64(cnt)
			} else {
				stacked.Data[i] = math.NaN()
			}
		}
		stacked.Stats.Num = len(group)
		out = append(out, stacked)
	}
	return out
}

// Stations returns the distinct NET.STA.LOC prefixes in the stream.
func (st Stream) Stations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tr := range st {
		id := tr.ID()
		if i := strings.LastIndexByte(id, '.'); i >= 0 {
			id = id[:i]
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
