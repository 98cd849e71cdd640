// Package geometry converts WGS-84 rupture geometry and observation sites
// into the fault-relative coordinates consumed by directivity models.
//
// The central construct is the GC2 coordinate system of Spudich & Chiou
// (2015, USGS Open-File Report 2015-1028): a strike-normal/strike-parallel
// frame (T, U) generalized to multi-segment ruptures by weighting every
// trace segment with an inverse-distance kernel. On the trace itself U
// reduces to arc length and T to zero, so coordinates stay continuous across
// segment joins.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/seismoworks/directivity/seismic"
)

// ErrDegenerateTrace reports a rupture trace without usable along-strike
// extent. Test with errors.Is.
var ErrDegenerateTrace = errors.New("degenerate rupture trace")

// minSegmentKm drops trace segments shorter than ~1 m; SRF meshes sometimes
// repeat a vertex at segment joins.
const minSegmentKm = 1e-3

// onTraceTol is the perpendicular distance in km below which a point counts
// as lying on a trace segment, switching the GC2 kernel to its exact
// on-segment form.
const onTraceTol = 1e-9

// Coord holds the GC2 coordinates of one point: U km along strike from the
// trace start, T km perpendicular, positive on the hanging-wall side.
type Coord struct {
	U float64
	T float64
}

type segment struct {
	origin Point
	ux, uy float64 // unit along-strike direction
	length float64
	arc    float64 // cumulative trace length before this segment
}

// Trace is a rupture top trace projected into a local km frame, prepared for
// GC2 coordinate queries.
type Trace struct {
	proj   Projection
	segs   []segment
	length float64
	first  seismic.SurfacePoint
	last   seismic.SurfacePoint

	// endUMin and endUMax are the GC2 U coordinates of the nominal-strike
	// endpoints, fixed at construction. SMax queries shift them per origin
	// instead of re-projecting the endpoints through the kernel.
	endUMin float64
	endUMax float64
}

// NewTrace projects the ordered top-trace points into a local frame centred
// on their mean position and precomputes per-segment geometry. Consecutive
// duplicate vertices are dropped; if fewer than two distinct vertices remain
// the trace is degenerate.
func NewTrace(points []seismic.SurfacePoint) (*Trace, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerateTrace, len(points))
	}

	var meanLon, meanLat float64
	for _, pt := range points {
		meanLon += pt.Lon
		meanLat += pt.Lat
	}
	meanLon /= float64(len(points))
	meanLat /= float64(len(points))
	proj := NewProjection(meanLon, meanLat)

	tr := &Trace{proj: proj, first: points[0], last: points[len(points)-1]}
	prev := proj.ToLocal(points[0].Lon, points[0].Lat)
	for _, pt := range points[1:] {
		cur := proj.ToLocal(pt.Lon, pt.Lat)
		l := dist(prev, cur)
		if l < minSegmentKm {
			continue
		}
		tr.segs = append(tr.segs, segment{
			origin: prev,
			ux:     (cur.X - prev.X) / l,
			uy:     (cur.Y - prev.Y) / l,
			length: l,
			arc:    tr.length,
		})
		tr.length += l
		prev = cur
	}
	if len(tr.segs) == 0 {
		return nil, fmt.Errorf("%w: no along-strike extent", ErrDegenerateTrace)
	}

	a, b := tr.NominalStrike()
	ua := tr.Coords(a.Lon, a.Lat).U
	ub := tr.Coords(b.Lon, b.Lat).U
	tr.endUMin = math.Min(ua, ub)
	tr.endUMax = math.Max(ua, ub)
	return tr, nil
}

// Length returns the total trace length in km.
func (t *Trace) Length() float64 { return t.length }

// Coords returns the GC2 coordinates of a WGS-84 position.
//
// Each segment contributes its in-segment coordinates (u, t) weighted by the
// closed-form line integral of 1/r² along the segment:
//
//	w = (1/t)·[atan((l−u)/t) − atan(−u/t)]        t ≠ 0
//	w = 1/(u−l) − 1/u                              t = 0, u outside [0, l]
//
// A point on a segment itself (t = 0, 0 ≤ u ≤ l) carries infinite weight, so
// its coordinates are returned directly; this is what collapses U to arc
// length on the trace.
func (t *Trace) Coords(lon, lat float64) Coord {
	p := t.proj.ToLocal(lon, lat)

	var sumW, sumWT, sumWU float64
	for _, s := range t.segs {
		dx := p.X - s.origin.X
		dy := p.Y - s.origin.Y
		u := dx*s.ux + dy*s.uy
		tt := dx*s.uy - dy*s.ux // positive right of strike

		if math.Abs(tt) < onTraceTol {
			if u >= 0 && u <= s.length {
				return Coord{U: s.arc + u, T: 0}
			}
			w := 1/(u-s.length) - 1/u
			sumW += w
			sumWU += w * (u + s.arc)
			continue
		}

		w := (math.Atan((s.length-u)/tt) - math.Atan(-u/tt)) / tt
		sumW += w
		sumWT += w * tt
		sumWU += w * (u + s.arc)
	}
	return Coord{U: sumWU / sumW, T: sumWT / sumW}
}

// NominalStrike returns the trace endpoints ordered so the larger-longitude
// end comes first (larger latitude breaks ties). The fixed ordering keeps
// the along-strike extent reproducible for ruptures whose catalog point
// order differs between releases.
func (t *Trace) NominalStrike() (a, b seismic.SurfacePoint) {
	a, b = t.first, t.last
	if a.Lon < b.Lon || (a.Lon == b.Lon && a.Lat < b.Lat) {
		a, b = b, a
	}
	return a, b
}

// SMax returns the along-strike extent of the rupture relative to an origin
// at u = originU: the GC2 U coordinates of the two nominal-strike endpoints,
// ordered (min, max). With the origin at a hypocentre, SMax brackets how far
// rupture can propagate toward either end of the fault. The endpoint
// coordinates are origin-independent, so the query is a pair of subtractions.
func (t *Trace) SMax(originU float64) (sMin, sMax float64) {
	return t.endUMin - originU, t.endUMax - originU
}
