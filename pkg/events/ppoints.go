package events

import (
	"math"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/geo"
	"github.com/rfkit/rfkit/pkg/seis"
)

// Near-surface velocities used for the incidence angle, km/s.
const (
	surfaceVP = 5.8
	surfaceVS = 3.36
)

// PiercingPoints returns the lat/lon where each trace's ray crosses the
// given depth, projected from the station along the back-azimuth. The
// incidence angle follows from the trace slowness and a near-surface
// velocity picked by phase leg.
//
// Requires a registered geodesic solver (import rfkit/pkg/geo/wgs84).
func PiercingPoints(st seis.Stream, depthKM float64, phase string) ([][2]float64, error) {
	if depthKM <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "piercing depth must be positive")
	}
	v := surfaceVP
	if phaseMethod(phase) == "S" {
		v = surfaceVS
	}
	points := make([][2]float64, 0, len(st))
	for _, tr := range st {
		s := &tr.Stats
		if s.Slowness <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"trace %s has no slowness", tr.ID())
		}
		sinInc := math.Min(1, s.Slowness/geo.DEG2KM*v)
		dist := depthKM * math.Tan(math.Asin(sinInc))
		lat, lon, err := geo.Direct(s.StationLatitude, s.StationLongitude, s.BackAzimuth, dist)
		if err != nil {
			return nil, err
		}
		points = append(points, [2]float64{lat, lon})
	}
	return points, nil
}
