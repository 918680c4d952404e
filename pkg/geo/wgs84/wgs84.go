// Package wgs84 registers a geodesic solver backed by geographiclib's WGS84
// ellipsoid. Blank-import it to make geo.Direct available:
//
//	import _ "github.com/rfkit/rfkit/pkg/geo/wgs84"
//
// The adapter converts kilometers to the meters geographiclib expects and
// nothing else.
package wgs84

import (
	"github.com/pymaxion/geographiclib-go/geodesic"

	"github.com/rfkit/rfkit/pkg/geo"
)

type solver struct{}

// Direct implements geo.Solver on the WGS84 ellipsoid.
func (solver) Direct(lat, lon, azi, distKM float64) (float64, float64, error) {
	r := geodesic.WGS84.Direct(lat, lon, azi, distKM*1000)
	return r.Lat2, r.Lon2, nil
}

func init() {
	geo.RegisterSolver(solver{})
}
