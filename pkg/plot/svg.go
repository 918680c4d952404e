package plot

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Figure kinds, used by hooks and the figure store.
const (
	KindStack       = "stack"
	KindProfile     = "profile"
	KindStationMap  = "station_map"
	KindPiercingMap = "piercing_map"
)

// dpi converts the inch-based layout into canvas pixels.
const dpi = 100

type point struct{ x, y float64 }

// canvas accumulates SVG elements for a figure of the given size in inches.
type canvas struct {
	buf  bytes.Buffer
	w, h float64 // pixels
}

func newCanvas(widthIn, heightIn float64) *canvas {
	c := &canvas{w: widthIn * dpi, h: heightIn * dpi}
	fmt.Fprintf(&c.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.w, c.h, c.w, c.h)
	fmt.Fprintf(&c.buf, `<rect x="0" y="0" width="%.1f" height="%.1f" fill="white"/>`+"\n", c.w, c.h)
	return c
}

func (c *canvas) close() []byte {
	c.buf.WriteString("</svg>\n")
	return c.buf.Bytes()
}

func (c *canvas) line(x1, y1, x2, y2 float64, stroke string, width float64) {
	fmt.Fprintf(&c.buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		x1, y1, x2, y2, stroke, width)
}

func (c *canvas) rect(x, y, w, h float64, stroke, fill string) {
	fmt.Fprintf(&c.buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" stroke="%s" fill="%s" stroke-width="0.8"/>`+"\n",
		x, y, w, h, stroke, fill)
}

// polyline draws pts as one or more line strips, breaking at NaN points.
func (c *canvas) polyline(pts []point, stroke string, width float64) {
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			fmt.Fprintf(&c.buf, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
				b.String(), stroke, width)
			b.Reset()
		}
	}
	for _, p := range pts {
		if math.IsNaN(p.x) || math.IsNaN(p.y) {
			flush()
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.x, p.y)
	}
	flush()
}

func (c *canvas) polygon(pts []point, fill string) {
	if len(pts) < 3 {
		return
	}
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.x, p.y)
	}
	fmt.Fprintf(&c.buf, `<polygon points="%s" fill="%s" stroke="none"/>`+"\n", b.String(), fill)
}

func (c *canvas) circle(x, y, r float64, fill string) {
	fmt.Fprintf(&c.buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n", x, y, r, fill)
}

// text anchors: "start", "middle", "end".
func (c *canvas) text(x, y float64, s, anchor, fill string, size float64) {
	fmt.Fprintf(&c.buf, `<text x="%.2f" y="%.2f" text-anchor="%s" fill="%s" font-size="%.1f" font-family="Helvetica, Arial, sans-serif">%s</text>`+"\n",
		x, y, anchor, fill, size, escape(s))
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// =============================================================================
// Frame - panel-local data coordinates
// =============================================================================

// frame maps data coordinates into the pixel rectangle of one panel.
// SVG y grows downward; by default larger data y draws upward. flipY inverts
// that for time-depth panels where time grows downward.
type frame struct {
	px, py, pw, ph         float64 // pixel rect, top-left origin
	xmin, xmax, ymin, ymax float64
	flipY                  bool
}

// newFrame converts a figure-fraction rect into a pixel frame on a canvas of
// the given figure size (inches).
func newFrame(r Rect, figW, figH float64) *frame {
	return &frame{
		px: r.X * figW * dpi,
		py: (1 - r.Top()) * figH * dpi,
		pw: r.Width * figW * dpi,
		ph: r.Height * figH * dpi,
	}
}

func (f *frame) setXLim(lo, hi float64) { f.xmin, f.xmax = lo, hi }
func (f *frame) setYLim(lo, hi float64) { f.ymin, f.ymax = lo, hi }

func (f *frame) x(v float64) float64 {
	if f.xmax == f.xmin {
		return f.px + f.pw/2
	}
	return f.px + (v-f.xmin)/(f.xmax-f.xmin)*f.pw
}

func (f *frame) y(v float64) float64 {
	if f.ymax == f.ymin {
		return f.py + f.ph/2
	}
	frac := (v - f.ymin) / (f.ymax - f.ymin)
	if f.flipY {
		return f.py + frac*f.ph
	}
	return f.py + f.ph - frac*f.ph
}

// border draws the panel outline.
func (f *frame) border(c *canvas) {
	c.rect(f.px, f.py, f.pw, f.ph, "black", "none")
}

// xTicks draws bottom tick marks and labels at the given data positions.
func (f *frame) xTicks(c *canvas, ticks []float64, format string) {
	for _, t := range ticks {
		if t < f.xmin || t > f.xmax {
			continue
		}
		x := f.x(t)
		c.line(x, f.py+f.ph, x, f.py+f.ph+4, "black", 0.8)
		c.text(x, f.py+f.ph+16, fmt.Sprintf(format, t), "middle", "black", 10)
	}
}

// tickSteps picks a round step producing roughly 5 ticks over the range, and
// returns the tick positions.
func tickSteps(lo, hi float64) []float64 {
	span := hi - lo
	if span <= 0 {
		return nil
	}
	raw := span / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	var step float64
	switch {
	case raw/mag >= 5:
		step = 5 * mag
	case raw/mag >= 2:
		step = 2 * mag
	default:
		step = mag
	}
	var ticks []float64
	for t := math.Ceil(lo/step) * step; t <= hi+step/1e6; t += step {
		ticks = append(ticks, t)
	}
	return ticks
}
