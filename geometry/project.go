package geometry

import "math"

// earthRadiusKm is the mean spherical earth radius used by the local
// projection. Rupture-to-site distances in directivity work stay under a few
// hundred km, where the spherical approximation error is far below the
// resolution of the empirical model.
const earthRadiusKm = 6371.0

const kmPerDegree = earthRadiusKm * math.Pi / 180

// Point is a position in the local projected frame, km east and north of the
// projection origin.
type Point struct {
	X float64
	Y float64
}

// Projection is a flat-earth equirectangular projection centred on a rupture.
// Longitude spacing is scaled by the cosine of the origin latitude once, so
// projecting is two multiplies per coordinate.
type Projection struct {
	lon0   float64
	lat0   float64
	cosLat float64
}

// NewProjection builds a local projection centred at (lon0, lat0) degrees.
func NewProjection(lon0, lat0 float64) Projection {
	return Projection{
		lon0:   lon0,
		lat0:   lat0,
		cosLat: math.Cos(lat0 * math.Pi / 180),
	}
}

// ToLocal projects WGS-84 degrees into km east/north of the origin.
func (p Projection) ToLocal(lon, lat float64) Point {
	return Point{
		X: (lon - p.lon0) * kmPerDegree * p.cosLat,
		Y: (lat - p.lat0) * kmPerDegree,
	}
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
