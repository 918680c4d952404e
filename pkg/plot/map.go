package plot

import (
	"context"
	"math"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/geo"
	"github.com/rfkit/rfkit/pkg/observability"
)

// StationMark is one labeled station on a map.
type StationMark struct {
	Label    string
	Lat, Lon float64
}

// ProfileBox outlines one profile bin on a map, corners as lat/lon pairs.
type ProfileBox struct {
	Corners [][2]float64
}

// MapOptions configures the map renderers.
type MapOptions struct {
	// FigSize is the square figure edge in inches. Default 5.
	FigSize float64

	// Projector maps lat/lon to planar kilometers. Nil uses an azimuthal
	// equidistant projection centered on the plotted points.
	Projector geo.Projector

	// Boxes are drawn as outlines, e.g. the bins of a profile.
	Boxes []ProfileBox

	NoLabels bool
}

func (o *MapOptions) ValidateAndSetDefaults() error {
	if o.FigSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "figure size must be positive")
	}
	if o.FigSize == 0 {
		o.FigSize = 5
	}
	return nil
}

// RenderStationMap draws stations as triangles with their labels.
// No stations yields a nil figure and no error.
func RenderStationMap(ctx context.Context, stations []StationMark, opts MapOptions) ([]byte, error) {
	if len(stations) == 0 {
		return nil, nil
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Plot().OnRenderStart(ctx, KindStationMap, len(stations))
	svg, err := renderMap(stations, nil, opts)
	observability.Plot().OnRenderComplete(ctx, KindStationMap, len(stations), time.Since(start), err)
	return svg, err
}

// RenderPiercingMap draws piercing points as x markers together with the
// stations they belong to. No points yields a nil figure and no error.
func RenderPiercingMap(ctx context.Context, points [][2]float64, stations []StationMark, opts MapOptions) ([]byte, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Plot().OnRenderStart(ctx, KindPiercingMap, len(points))
	svg, err := renderMap(stations, points, opts)
	observability.Plot().OnRenderComplete(ctx, KindPiercingMap, len(points), time.Since(start), err)
	return svg, err
}

func renderMap(stations []StationMark, points [][2]float64, opts MapOptions) ([]byte, error) {
	latlons := make([][2]float64, 0, len(stations)+len(points))
	for _, s := range stations {
		latlons = append(latlons, [2]float64{s.Lat, s.Lon})
	}
	latlons = append(latlons, points...)
	for _, b := range opts.Boxes {
		latlons = append(latlons, b.Corners...)
	}

	proj := opts.Projector
	if proj == nil {
		proj = geo.NewAzimuthalEquidistant(latlons)
	}

	// Project everything and frame it with equal x/y scale.
	xs := make([]float64, len(latlons))
	ys := make([]float64, len(latlons))
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, ll := range latlons {
		x, y := proj.Forward(ll[0], ll[1])
		xs[i], ys[i] = x, y
		xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
		ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
	}
	span := math.Max(xmax-xmin, ymax-ymin)
	if span == 0 {
		span = 2 * geo.DEG2KM // degenerate single point, show ~1 degree around it
	}
	span *= 1.15
	cx, cy := (xmin+xmax)/2, (ymin+ymax)/2

	c := newCanvas(opts.FigSize, opts.FigSize)
	panel := Rect{
		X:      marginLeft / opts.FigSize,
		Y:      marginBottom / opts.FigSize,
		Width:  (opts.FigSize - marginLeft - marginRight) / opts.FigSize,
		Height: (opts.FigSize - marginBottom - marginTop) / opts.FigSize,
	}
	f := newFrame(panel, opts.FigSize, opts.FigSize)
	f.setXLim(cx-span/2, cx+span/2)
	f.setYLim(cy-span/2, cy+span/2)

	for _, b := range opts.Boxes {
		pts := make([]point, 0, len(b.Corners)+1)
		for _, corner := range b.Corners {
			x, y := proj.Forward(corner[0], corner[1])
			pts = append(pts, point{f.x(x), f.y(y)})
		}
		if len(pts) > 1 {
			pts = append(pts, pts[0])
			c.polyline(pts, "#888888", 0.8)
		}
	}

	for i := len(stations); i < len(stations)+len(points); i++ {
		drawCross(c, f.x(xs[i]), f.y(ys[i]), 3, "#3465a4")
	}

	for i, s := range stations {
		x, y := f.x(xs[i]), f.y(ys[i])
		drawTriangle(c, x, y, 6, "#cc0000")
		if !opts.NoLabels && s.Label != "" {
			c.text(x, y-9, s.Label, "middle", "black", 9)
		}
	}

	f.border(c)
	f.xTicks(c, tickSteps(f.xmin, f.xmax), "%g")
	c.text(f.px+f.pw/2, f.py+f.ph+32, "east (km)", "middle", "black", 11)
	for _, t := range tickSteps(f.ymin, f.ymax) {
		y := f.y(t)
		c.line(f.px, y, f.px-4, y, "black", 0.8)
	}
	return c.close(), nil
}

func drawTriangle(c *canvas, x, y, r float64, fill string) {
	c.polygon([]point{
		{x, y - r},
		{x - r*0.87, y + r*0.5},
		{x + r*0.87, y + r*0.5},
	}, fill)
}

func drawCross(c *canvas, x, y, r float64, stroke string) {
	c.line(x-r, y-r, x+r, y+r, stroke, 1)
	c.line(x-r, y+r, x+r, y-r, stroke, 1)
}
