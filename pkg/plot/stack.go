package plot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/observability"
	"github.com/rfkit/rfkit/pkg/seis"
)

// InfoField describes one attribute shown as a dot column next to the traces.
type InfoField struct {
	Key   string // stats attribute name, e.g. "back_azimuth"
	Label string
	Color string
}

// DefaultInfo returns the standard info columns: back-azimuth and epicentral
// distance. A fresh slice is returned on every call so callers may modify it.
func DefaultInfo() []InfoField {
	return []InfoField{
		{Key: "back_azimuth", Label: "baz (deg)", Color: "#3465a4"},
		{Key: "distance", Label: "dist (deg)", Color: "#cc0000"},
	}
}

// Window is a time span in seconds relative to the onset.
type Window struct {
	Start float64
	End   float64
}

// StackOptions configures RenderStack. The zero value is usable; call
// ValidateAndSetDefaults to fill in defaults explicitly.
type StackOptions struct {
	// Scale is the peak amplitude in trace rows. Default 1.
	Scale float64

	// FigWidth, TraceHeight and StackHeight are in inches.
	FigWidth    float64 // default 7
	TraceHeight float64 // default 0.5
	StackHeight float64 // default 0.5

	// FillPos and FillNeg fill the positive and negative lobes of every
	// trace with the given color. Empty strings disable the fill.
	FillPos string
	FillNeg string

	// Trim restricts plotting to a window around the onset.
	Trim *Window

	// Downsample decimates traces to at most this rate in Hz before
	// plotting. Zero disables downsampling.
	Downsample float64

	NoTitle bool
	NoInfo  bool

	// Info columns; nil means DefaultInfo(). Set NoInfo to drop the panel.
	Info []InfoField

	Logger *log.Logger
}

// ValidateAndSetDefaults fills zero values with defaults and rejects
// nonsensical settings.
func (o *StackOptions) ValidateAndSetDefaults() error {
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive")
	}
	if o.FigWidth < 0 || o.TraceHeight < 0 || o.StackHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "figure dimensions must be positive")
	}
	if o.Trim != nil && o.Trim.End <= o.Trim.Start {
		return errors.New(errors.ErrCodeInvalidConfig, "trim window must end after it starts")
	}
	if o.Downsample < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "downsample rate must be positive")
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.FigWidth == 0 {
		o.FigWidth = 7
	}
	if o.TraceHeight == 0 {
		o.TraceHeight = 0.5
	}
	if o.StackHeight == 0 {
		o.StackHeight = 0.5
	}
	if o.Info == nil {
		o.Info = DefaultInfo()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// RenderStack draws one trace row per stream member plus a stacked summary
// band on top and returns the figure as SVG. An empty stream yields a nil
// figure and no error.
func RenderStack(ctx context.Context, stream seis.Stream, opts StackOptions) ([]byte, error) {
	if len(stream) == 0 {
		return nil, nil
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Plot().OnRenderStart(ctx, KindStack, len(stream))
	svg, err := renderStack(stream, opts)
	observability.Plot().OnRenderComplete(ctx, KindStack, len(stream), time.Since(start), err)
	return svg, err
}

func renderStack(stream seis.Stream, opts StackOptions) ([]byte, error) {
	st := stream.Copy()
	for _, tr := range st {
		if tr.Stats.SamplingRate <= 0 || tr.NPts() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidStream,
				"trace %s has no plottable samples", tr.ID())
		}
		if opts.Trim != nil {
			onset := tr.Stats.Onset
			tr.Trim(onset.Add(secs(opts.Trim.Start)), onset.Add(secs(opts.Trim.End)))
		}
		if opts.Downsample > 0 && tr.Stats.SamplingRate > opts.Downsample {
			factor := int(tr.Stats.SamplingRate / opts.Downsample)
			if factor > 1 {
				tr.Decimate(factor)
			}
		}
		if tr.NPts() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidStream,
				"trace %s is empty after trimming", tr.ID())
		}
	}

	n := len(st)
	layout := NewStackLayout(n, Geometry{
		FigWidth:    opts.FigWidth,
		TraceHeight: opts.TraceHeight,
		StackHeight: opts.StackHeight,
		Info:        !opts.NoInfo && len(opts.Info) > 0,
	})
	c := newCanvas(layout.FigWidth, layout.FigHeight)

	tmin, tmax := timeRange(st)
	max := st.MaxAbs()
	if max == 0 {
		max = 1
	}

	main := newFrame(layout.Main, layout.FigWidth, layout.FigHeight)
	main.setXLim(tmin, tmax)
	main.setYLim(-0.5, float64(n)+1.5)

	for i, tr := range st {
		offset := float64(i + 1)
		times := tr.Times(tr.Stats.Onset)
		scaled := make([]float64, len(tr.Data))
		for j, v := range tr.Data {
			scaled[j] = v / max * opts.Scale
		}
		if opts.FillPos != "" {
			fillLobes(c, main, times, scaled, offset, true, opts.FillPos)
		}
		if opts.FillNeg != "" {
			fillLobes(c, main, times, scaled, offset, false, opts.FillNeg)
		}
		pts := make([]point, len(times))
		for j := range times {
			pts[j] = point{main.x(times[j]), main.y(offset + scaled[j])}
		}
		c.polyline(pts, "black", 0.6)
	}
	main.border(c)
	main.xTicks(c, tickSteps(tmin, tmax), "%g")
	c.text(main.px+main.pw/2, main.py+main.ph+32, "time (s)", "middle", "black", 11)

	stackFrame := newFrame(layout.Stack, layout.FigWidth, layout.FigHeight)
	stackFrame.setXLim(tmin, tmax)
	drawStackBand(c, stackFrame, st, opts)
	stackFrame.border(c)

	if !opts.NoTitle {
		title := fmt.Sprintf("%d traces  %s", n, st[0].ID())
		c.text(stackFrame.px+stackFrame.pw, stackFrame.py-6, title, "end", "black", 11)
	}

	if !opts.NoInfo && len(opts.Info) > 0 {
		info := newFrame(layout.Info, layout.FigWidth, layout.FigHeight)
		info.setYLim(-0.5, float64(n)+1.5)
		drawInfoColumns(c, info, st, opts.Info)
	}
	return c.close(), nil
}

// drawStackBand stacks the stream and draws the result. A stream spanning
// several station IDs cannot be stacked into one summary trace; the band is
// left empty and a warning is logged.
func drawStackBand(c *canvas, f *frame, st seis.Stream, opts StackOptions) {
	stack := st.Stack()
	if len(stack) != 1 {
		opts.Logger.Warn("different stations in one receiver function plot, skipping stack",
			"stations", len(stack))
		return
	}
	tr := stack[0]
	m := tr.MaxAbs()
	if m == 0 {
		m = 1
	}
	f.setYLim(-1.1*m, 1.1*m)

	times := tr.Times(tr.Stats.Onset)
	if opts.FillPos != "" {
		fillLobes(c, f, times, tr.Data, 0, true, opts.FillPos)
	}
	if opts.FillNeg != "" {
		fillLobes(c, f, times, tr.Data, 0, false, opts.FillNeg)
	}
	pts := make([]point, len(times))
	for j := range times {
		pts[j] = point{f.x(times[j]), f.y(tr.Data[j])}
	}
	c.polyline(pts, "black", 0.6)
}

func drawInfoColumns(c *canvas, f *frame, st seis.Stream, fields []InfoField) {
	f.border(c)
	for fi, field := range fields {
		vals := make([]float64, len(st))
		any := false
		for i, tr := range st {
			if v, ok := tr.Stats.Float(field.Key); ok {
				vals[i] = v
				any = true
			} else {
				vals[i] = math.NaN()
			}
		}
		if !any {
			continue
		}

		lo, hi, ticks, labels := infoAxis(field.Key, vals)
		f.setXLim(lo, hi)
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			c.circle(f.x(v), f.y(float64(i+1)), 2, field.Color)
		}

		// First field labels along the bottom, second along the top.
		labelY := f.py + f.ph + 16
		nameY := f.py + f.ph + 32
		tickY0, tickY1 := f.py+f.ph, f.py+f.ph+4
		if fi == 1 {
			labelY = f.py - 8
			nameY = f.py - 22
			tickY0, tickY1 = f.py, f.py-4
		}
		for i, tk := range ticks {
			x := f.x(tk)
			c.line(x, tickY0, x, tickY1, field.Color, 0.8)
			if labels[i] != "" {
				c.text(x, labelY, labels[i], "middle", field.Color, 9)
			}
		}
		c.text(f.px+f.pw/2, nameY, field.Label, "middle", field.Color, 10)
		if fi == 1 {
			break
		}
	}
}

// infoAxis picks axis limits and tick labels for an info column. The
// back-azimuth column always spans the full circle with fixed ticks.
func infoAxis(key string, vals []float64) (lo, hi float64, ticks []float64, labels []string) {
	if key == "back_azimuth" {
		return 0, 360,
			[]float64{0, 90, 180, 270, 360},
			[]string{"0", "", "180", "", "360"}
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	lo, hi = lo-pad, hi+pad
	ticks = tickSteps(lo, hi)
	labels = make([]string, len(ticks))
	for i, t := range ticks {
		labels[i] = fmt.Sprintf("%g", t)
	}
	return lo, hi, ticks, labels
}

// fillLobes fills the regions where the scaled samples are positive (or
// negative) relative to the baseline, interpolating the zero crossings so the
// fill ends exactly where the curve does.
func fillLobes(c *canvas, f *frame, times, d []float64, base float64, positive bool, color string) {
	sign := 1.0
	if !positive {
		sign = -1
	}
	var poly []point
	closeAt := func(x float64) {
		poly = append(poly, point{f.x(x), f.y(base)})
		c.polygon(poly, color)
		poly = nil
	}
	for i := range d {
		v := d[i]
		if math.IsNaN(v) {
			if poly != nil {
				closeAt(times[i-1])
			}
			continue
		}
		if sign*v > 0 {
			if poly == nil {
				x := times[i]
				if i > 0 && !math.IsNaN(d[i-1]) {
					x = crossing(times[i-1], times[i], d[i-1], v)
				}
				poly = append(poly, point{f.x(x), f.y(base)})
			}
			poly = append(poly, point{f.x(times[i]), f.y(base + v)})
		} else if poly != nil {
			closeAt(crossing(times[i-1], times[i], d[i-1], v))
		}
	}
	if poly != nil {
		closeAt(times[len(times)-1])
	}
}

// crossing interpolates the x position where the segment (x0,v0)-(x1,v1)
// crosses zero.
func crossing(x0, x1, v0, v1 float64) float64 {
	if v1 == v0 {
		return x0
	}
	return x0 + (x1-x0)*(-v0)/(v1-v0)
}

func timeRange(st seis.Stream) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, tr := range st {
		times := tr.Times(tr.Stats.Onset)
		if len(times) == 0 {
			continue
		}
		lo = math.Min(lo, times[0])
		hi = math.Max(hi, times[len(times)-1])
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
