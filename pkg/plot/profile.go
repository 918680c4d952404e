package plot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/observability"
	"github.com/rfkit/rfkit/pkg/seis"
)

// DepthTick annotates the profile time axis with the depth a converted phase
// at that delay originates from. The caller supplies the travel-time
// conversion; see events.ArrivalModel.
type DepthTick struct {
	DepthKM float64
	TimeS   float64
}

// ProfileOptions configures RenderProfile.
type ProfileOptions struct {
	// Scale is the peak amplitude in units of the narrowest box width.
	// Default 1.
	Scale float64

	FigWidth  float64 // default 7 inches
	FigHeight float64 // default 5 inches

	FillPos string
	FillNeg string

	// Trim restricts the time axis to a window around the onset.
	Trim *Window

	// TopHist draws a histogram band above the profile showing how many
	// traces were stacked into each box.
	TopHist bool

	// DepthTicks label the right-hand axis with depths.
	DepthTicks []DepthTick
}

func (o *ProfileOptions) ValidateAndSetDefaults() error {
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be positive")
	}
	if o.FigWidth < 0 || o.FigHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "figure dimensions must be positive")
	}
	if o.Trim != nil && o.Trim.End <= o.Trim.Start {
		return errors.New(errors.ErrCodeInvalidConfig, "trim window must end after it starts")
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.FigWidth == 0 {
		o.FigWidth = 7
	}
	if o.FigHeight == 0 {
		o.FigHeight = 5
	}
	return nil
}

// RenderProfile draws box-stacked traces along a profile line, amplitude
// deflecting horizontally around each box position and time increasing
// downward. An empty stream yields a nil figure and no error.
func RenderProfile(ctx context.Context, boxes seis.Stream, opts ProfileOptions) ([]byte, error) {
	if len(boxes) == 0 {
		return nil, nil
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Plot().OnRenderStart(ctx, KindProfile, len(boxes))
	svg, err := renderProfile(boxes, opts)
	observability.Plot().OnRenderComplete(ctx, KindProfile, len(boxes), time.Since(start), err)
	return svg, err
}

func renderProfile(boxes seis.Stream, opts ProfileOptions) ([]byte, error) {
	st := boxes.Copy()
	minWidth := math.Inf(1)
	posMin, posMax := math.Inf(1), math.Inf(-1)
	for _, tr := range st {
		if tr.Stats.BoxLength <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidStream,
				"trace %s has no box geometry", tr.ID())
		}
		if opts.Trim != nil {
			onset := tr.Stats.Onset
			tr.Trim(onset.Add(secs(opts.Trim.Start)), onset.Add(secs(opts.Trim.End)))
		}
		if tr.NPts() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidStream,
				"trace %s is empty after trimming", tr.ID())
		}
		minWidth = math.Min(minWidth, tr.Stats.BoxLength)
		posMin = math.Min(posMin, tr.Stats.BoxPos)
		posMax = math.Max(posMax, tr.Stats.BoxPos)
	}

	c := newCanvas(opts.FigWidth, opts.FigHeight)

	// Panel geometry in figure fractions, histogram band on top when asked.
	histBand := 0.0
	if opts.TopHist {
		histBand = 0.8 // inches
	}
	mainRect := Rect{
		X:      marginLeft / opts.FigWidth,
		Y:      marginBottom / opts.FigHeight,
		Width:  (opts.FigWidth - marginLeft - marginRight - infoWidth) / opts.FigWidth,
		Height: (opts.FigHeight - marginBottom - marginTop - histBand) / opts.FigHeight,
	}

	pad := math.Max(1, opts.Scale) * minWidth
	main := newFrame(mainRect, opts.FigWidth, opts.FigHeight)
	main.setXLim(posMin-pad, posMax+pad)
	tmin, tmax := timeRange(st)
	main.setYLim(tmin, tmax)
	main.flipY = true // time grows downward

	max := st.MaxAbs()
	if max == 0 {
		max = 1
	}

	for _, tr := range st {
		pos := tr.Stats.BoxPos
		times := tr.Times(tr.Stats.Onset)
		defl := make([]float64, len(tr.Data))
		for j, v := range tr.Data {
			defl[j] = opts.Scale * v / max * minWidth / 2
		}
		if opts.FillPos != "" {
			fillLobesVertical(c, main, times, defl, pos, true, opts.FillPos)
		}
		if opts.FillNeg != "" {
			fillLobesVertical(c, main, times, defl, pos, false, opts.FillNeg)
		}
		pts := make([]point, len(times))
		for j := range times {
			pts[j] = point{main.x(pos + defl[j]), main.y(times[j])}
		}
		c.polyline(pts, "black", 0.6)
	}
	main.border(c)
	main.xTicks(c, tickSteps(main.xmin, main.xmax), "%g")
	c.text(main.px+main.pw/2, main.py+main.ph+32, "distance (km)", "middle", "black", 11)
	drawTimeAxis(c, main)

	if len(opts.DepthTicks) > 0 {
		drawDepthTicks(c, main, opts.DepthTicks)
	}
	if opts.TopHist {
		drawBoxHist(c, main, st, histBand, opts)
	}
	return c.close(), nil
}

// drawTimeAxis draws left-hand ticks on a flipped (time down) frame.
func drawTimeAxis(c *canvas, f *frame) {
	for _, t := range tickSteps(f.ymin, f.ymax) {
		y := f.y(t)
		c.line(f.px, y, f.px-4, y, "black", 0.8)
		c.text(f.px-7, y+3, fmt.Sprintf("%g", t), "end", "black", 10)
	}
	c.text(f.px-34, f.py+f.ph/2, "time (s)", "middle", "black", 11)
}

func drawDepthTicks(c *canvas, f *frame, ticks []DepthTick) {
	right := f.px + f.pw
	for _, dt := range ticks {
		if dt.TimeS < f.ymin || dt.TimeS > f.ymax {
			continue
		}
		y := f.y(dt.TimeS)
		c.line(right, y, right+4, y, "black", 0.8)
		c.text(right+7, y+3, fmt.Sprintf("%g", dt.DepthKM), "start", "black", 10)
	}
	c.text(right+34, f.py+f.ph/2, "depth (km)", "middle", "black", 11)
}

// drawBoxHist draws the per-box trace counts as bars above the main panel.
func drawBoxHist(c *canvas, main *frame, st seis.Stream, bandIn float64, opts ProfileOptions) {
	maxNum := 0
	for _, tr := range st {
		if tr.Stats.Num > maxNum {
			maxNum = tr.Stats.Num
		}
	}
	if maxNum == 0 {
		return
	}
	bandPx := bandIn * dpi
	base := main.py - 0.1*dpi // small gap above the panel
	for _, tr := range st {
		h := float64(tr.Stats.Num) / float64(maxNum) * (bandPx - 0.1*dpi)
		x0 := main.x(tr.Stats.BoxPos - tr.Stats.BoxLength/2)
		x1 := main.x(tr.Stats.BoxPos + tr.Stats.BoxLength/2)
		c.rect(x0, base-h, x1-x0, h, "black", "#d0d0d0")
	}
	c.text(main.px, base-bandPx+4, fmt.Sprintf("max %d traces per box", maxNum),
		"start", "black", 9)
}

// fillLobesVertical fills deflections around a vertical baseline at x=base,
// the profile analogue of fillLobes.
func fillLobesVertical(c *canvas, f *frame, times, d []float64, base float64, positive bool, color string) {
	sign := 1.0
	if !positive {
		sign = -1
	}
	var poly []point
	closeAt := func(t float64) {
		poly = append(poly, point{f.x(base), f.y(t)})
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
				t := times[i]
				if i > 0 && !math.IsNaN(d[i-1]) {
					t = crossing(times[i-1], times[i], d[i-1], v)
				}
				poly = append(poly, point{f.x(base), f.y(t)})
			}
			poly = append(poly, point{f.x(base + v), f.y(times[i])})
		} else if poly != nil {
			closeAt(crossing(times[i-1], times[i], d[i-1], v))
		}
	}
	if poly != nil {
		closeAt(times[len(times)-1])
	}
}
