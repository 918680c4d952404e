package seis

import (
	"fmt"
	"math"
	"time"
)

// Trace is a single evenly sampled time series with metadata.
// Missing samples are NaN (see Merge / HasGaps).
type Trace struct {
	Stats Stats     `json:"stats" bson:"stats"`
	Data  []float64 `json:"data" bson:"data"`
}

// ID returns the NET.STA.LOC.CHA seed identifier of the trace.
// The final character of the channel code is the component.
func (t *Trace) ID() string {
	s := &t.Stats
	return fmt.Sprintf("%s.%s.%s.%s", s.Network, s.Station, s.Location, s.Channel)
}

// Component returns the component code, the last character of the channel.
// Empty channel yields an empty component.
func (t *Trace) Component() string {
	if t.Stats.Channel == "" {
		return ""
	}
	return t.Stats.Channel[len(t.Stats.Channel)-1:]
}

// NPts returns the sample count.
func (t *Trace) NPts() int { return len(t.Data) }

// Delta returns the sampling interval.
func (t *Trace) Delta() time.Duration {
	if t.Stats.SamplingRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / t.Stats.SamplingRate)
}

// EndTime returns the time of the last sample.
func (t *Trace) EndTime() time.Time {
	if len(t.Data) == 0 {
		return t.Stats.StartTime
	}
	return t.Stats.StartTime.Add(time.Duration(len(t.Data)-1) * t.Delta())
}

// Times returns the sample times as offsets in seconds relative to ref.
// Plot code uses ref = onset so the x axis is lag time.
func (t *Trace) Times(ref time.Time) []float64 {
	out := make([]float64, len(t.Data))
	t0 := t.Stats.StartTime.Sub(ref).Seconds()
	dt := 1.0 / t.Stats.SamplingRate
	for i := range out {
		out[i] = t0 + float64(i)*dt
	}
	return out
}

// Copy returns a deep copy of the trace.
func (t *Trace) Copy() *Trace {
	c := &Trace{Stats: t.Stats, Data: make([]float64, len(t.Data))}
	copy(c.Data, t.Data)
	if t.Stats.Extra != nil {
		c.Stats.Extra = make(map[string]any, len(t.Stats.Extra))
		for k, v := range t.Stats.Extra {
			c.Stats.Extra[k] = v
		}
	}
	return c
}

// Trim cuts the trace to the closed window [start, end] in place.
// Samples outside the window are dropped; the window is clamped to the data.
func (t *Trace) Trim(start, end time.Time) {
	if len(t.Data) == 0 || t.Stats.SamplingRate <= 0 {
		return
	}
	dt := t.Delta()
	lo := 0
	if start.After(t.Stats.StartTime) {
		lo = int(math.Ceil(start.Sub(t.Stats.StartTime).Seconds() * t.Stats.SamplingRate))
	}
	hi := len(t.Data) - 1
	if end.Before(t.EndTime()) {
		hi = int(math.Floor(end.Sub(t.Stats.StartTime).Seconds() * t.Stats.SamplingRate))
	}
	if lo < 0 {
		lo = 0
	}
	if hi >= len(t.Data) {
		hi = len(t.Data) - 1
	}
	if lo > hi {
		t.Data = t.Data[:0]
		return
	}
	t.Stats.StartTime = t.Stats.StartTime.Add(time.Duration(lo) * dt)
	t.Data = t.Data[lo : hi+1]
}

// Decimate keeps every factor-th sample, reducing the sampling rate
// accordingly. No anti-alias filtering is applied. factor < 2 is a no-op.
func (t *Trace) Decimate(factor int) {
	if factor < 2 || len(t.Data) == 0 {
		return
	}
	n := (len(t.Data) + factor - 1) / factor
	for i := 0; i < n; i++ {
		t.Data[i] = t.Data[i*factor]
	}
	t.Data = t.Data[:n]
	t.Stats.SamplingRate /= float64(factor)
}

// HasGaps reports whether any sample is NaN.
func (t *Trace) HasGaps() bool {
	for _, v := range t.Data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// MaxAbs returns the largest absolute sample value, ignoring NaN gaps.
func (t *Trace) MaxAbs() float64 {
	m := 0.0
	for _, v := range t.Data {
		if math.IsNaN(v) {
			continue
		}
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
