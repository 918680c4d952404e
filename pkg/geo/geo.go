// Package geo provides the geodesy boundary for rfkit.
//
// The direct geodetic problem (project a point along an azimuth over a given
// distance on the WGS84 ellipsoid) is delegated to a pluggable [Solver] so
// that programs which never touch maps or piercing points carry no geodesy
// dependency. The rfkit/pkg/geo/wgs84 subpackage registers a solver backed
// by geographiclib; blank-import it to enable:
//
//	import _ "github.com/rfkit/rfkit/pkg/geo/wgs84"
//
// Epicentral distance and azimuth helpers used by the event iterator are
// spherical approximations, which is the seismological convention for travel
// time lookups.
package geo

import (
	"math"
	"sync"

	"github.com/rfkit/rfkit/pkg/errors"
)

// DEG2KM is the conversion factor from degrees of epicentral distance to km.
const DEG2KM = 111.2

// Solver solves the direct geodetic problem on the WGS84 ellipsoid.
type Solver interface {
	// Direct projects from (lat, lon) along azimuth azi (degrees, clockwise
	// from north) over distKM kilometers, returning the end point.
	Direct(lat, lon, azi, distKM float64) (lat2, lon2 float64, err error)
}

var (
	solverMu sync.RWMutex
	solver   Solver
)

// RegisterSolver installs the geodesic solver used by Direct.
// Typically called from an adapter package's init.
func RegisterSolver(s Solver) {
	solverMu.Lock()
	defer solverMu.Unlock()
	solver = s
}

// Direct solves the direct geodetic problem with the registered solver.
// Returns a NO_GEODESIC_SOLVER error when none is registered.
func Direct(lat, lon, azi, distKM float64) (float64, float64, error) {
	solverMu.RLock()
	s := solver
	solverMu.RUnlock()
	if s == nil {
		return 0, 0, errors.New(errors.ErrCodeNoSolver,
			"no geodesic solver registered (import rfkit/pkg/geo/wgs84)")
	}
	return s.Direct(lat, lon, azi, distKM)
}

// Degrees returns the epicentral distance between two points in degrees of
// arc on a sphere (the locations2degrees convention).
func Degrees(lat1, lon1, lat2, lon2 float64) float64 {
	p1, l1 := rad(lat1), rad(lon1)
	p2, l2 := rad(lat2), rad(lon2)
	c := math.Sin(p1)*math.Sin(p2) + math.Cos(p1)*math.Cos(p2)*math.Cos(l2-l1)
	// Clamp against rounding before Acos.
	c = math.Max(-1, math.Min(1, c))
	return deg(math.Acos(c))
}

// Azimuths returns the azimuth from point 1 to point 2 and the back-azimuth
// from point 2 to point 1, both in degrees [0, 360), on a sphere.
func Azimuths(lat1, lon1, lat2, lon2 float64) (azi, backAzi float64) {
	azi = bearing(lat1, lon1, lat2, lon2)
	backAzi = bearing(lat2, lon2, lat1, lon1)
	return azi, backAzi
}

// Kilometers converts degrees of epicentral distance to kilometers.
func Kilometers(degrees float64) float64 { return degrees * DEG2KM }

func bearing(lat1, lon1, lat2, lon2 float64) float64 {
	p1, p2 := rad(lat1), rad(lat2)
	dl := rad(lon2 - lon1)
	y := math.Sin(dl) * math.Cos(p2)
	x := math.Cos(p1)*math.Sin(p2) - math.Sin(p1)*math.Cos(p2)*math.Cos(dl)
	b := deg(math.Atan2(y, x))
	return math.Mod(b+360, 360)
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
