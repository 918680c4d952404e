package geo

import "math"

// Projector maps geographic coordinates onto a planar canvas for map plots.
// x grows eastward and y northward, both in kilometers from the projection
// origin; the map renderer flips y for screen coordinates.
type Projector interface {
	Forward(lat, lon float64) (x, y float64)
}

// earthRadiusKM is the mean spherical radius used by the built-in projection.
const earthRadiusKM = 6371.0

// AzimuthalEquidistant is a spherical azimuthal equidistant projection about
// a reference point. Distances and azimuths from the reference are true,
// which suits station maps spanning up to a few tens of degrees.
type AzimuthalEquidistant struct {
	Lat0, Lon0 float64
}

// NewAzimuthalEquidistant creates a projection centered on the median of the
// given points, matching how maps pick their frame when no projection is
// supplied.
func NewAzimuthalEquidistant(latlons [][2]float64) *AzimuthalEquidistant {
	lats := make([]float64, len(latlons))
	lons := make([]float64, len(latlons))
	for i, ll := range latlons {
		lats[i], lons[i] = ll[0], ll[1]
	}
	return &AzimuthalEquidistant{Lat0: median(lats), Lon0: median(lons)}
}

// Forward implements Projector.
func (p *AzimuthalEquidistant) Forward(lat, lon float64) (float64, float64) {
	p0, l0 := rad(p.Lat0), rad(p.Lon0)
	p1, l1 := rad(lat), rad(lon)

	c := math.Acos(math.Max(-1, math.Min(1,
		math.Sin(p0)*math.Sin(p1)+math.Cos(p0)*math.Cos(p1)*math.Cos(l1-l0))))
	if c == 0 {
		return 0, 0
	}
	k := c / math.Sin(c)
	x := earthRadiusKM * k * math.Cos(p1) * math.Sin(l1-l0)
	y := earthRadiusKM * k * (math.Cos(p0)*math.Sin(p1) - math.Sin(p0)*math.Cos(p1)*math.Cos(l1-l0))
	return x, y
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := make([]float64, len(v))
	copy(s, v)
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	if len(s)%2 == 1 {
		return s[len(s)/2]
	}
	return (s[len(s)/2-1] + s[len(s)/2]) / 2
}
