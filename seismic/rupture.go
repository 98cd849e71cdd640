package seismic

import (
	"errors"
	"fmt"
	"math"
)

// traceDepthTol is the tolerance in km when deciding whether a surface point
// sits on the top edge of the rupture.
const traceDepthTol = 1e-6

// ErrGeometry reports rupture geometry that cannot support directivity
// computation. Wrapped by validation errors; test with errors.Is.
var ErrGeometry = errors.New("invalid rupture geometry")

// SurfacePoint is one sample of the rupture surface mesh.
type SurfacePoint struct {
	// Lon and Lat are WGS-84 degrees.
	Lon float64
	Lat float64
	// Depth is km, positive down.
	Depth float64
}

// Site is an observation point queried for a directivity adjustment.
type Site struct {
	Lon float64
	Lat float64
}

// FaultPlane is one rectangular rupture segment. Multi-plane ruptures list
// segments in along-strike order.
type FaultPlane struct {
	// Strike is degrees clockwise from north.
	Strike float64
	// Dip is degrees from horizontal, in (0, 90].
	Dip float64
	// DTop is the depth of the top edge in km.
	DTop float64
	// Width is the down-dip width in km.
	Width float64
	// Length is the along-strike length in km.
	Length float64
}

// BottomDepth returns the depth of the plane's bottom edge in km.
func (p FaultPlane) BottomDepth() float64 {
	return p.DTop + p.Width*math.Sin(p.Dip*math.Pi/180)
}

// FixedHypocentre pins the hypocentre to one fractional position over the
// whole rupture, replacing the legacy per-plane sentinel offsets. Fractions
// are open-interval: the hypocentre cannot sit exactly on a rupture edge.
type FixedHypocentre struct {
	// StrikeFraction positions the hypocentre along the full combined trace
	// length, in (0, 1).
	StrikeFraction float64
	// DipFraction positions the hypocentre down-dip within its plane,
	// in (0, 1).
	DipFraction float64
}

// Validate rejects fractions outside the open unit interval.
func (h FixedHypocentre) Validate() error {
	if !(h.StrikeFraction > 0 && h.StrikeFraction < 1) {
		return fmt.Errorf("%w: hypocentre strike fraction %.4f outside (0, 1)", ErrGeometry, h.StrikeFraction)
	}
	if !(h.DipFraction > 0 && h.DipFraction < 1) {
		return fmt.Errorf("%w: hypocentre dip fraction %.4f outside (0, 1)", ErrGeometry, h.DipFraction)
	}
	return nil
}

// RuptureGeometry is the full geometric description of one rupture: its
// rectangular planes plus the surface point cloud they were meshed from.
type RuptureGeometry struct {
	Planes []FaultPlane
	Points []SurfacePoint
	// FixedHypocentre pins the nucleation point when non-nil. Nil means the
	// hypocentre is unknown and gets swept by a sampler.
	FixedHypocentre *FixedHypocentre
}

// TotalLength returns the combined along-strike length of all planes in km.
func (g RuptureGeometry) TotalLength() float64 {
	var sum float64
	for _, p := range g.Planes {
		sum += p.Length
	}
	return sum
}

// TopTrace returns the ordered surface points lying on the shallowest edge
// of the rupture, preserving catalog order. These points define the
// along-strike axis for fault-relative site coordinates.
func (g RuptureGeometry) TopTrace() []SurfacePoint {
	if len(g.Points) == 0 {
		return nil
	}
	minDepth := g.Points[0].Depth
	for _, pt := range g.Points[1:] {
		if pt.Depth < minDepth {
			minDepth = pt.Depth
		}
	}
	var trace []SurfacePoint
	for _, pt := range g.Points {
		if pt.Depth <= minDepth+traceDepthTol {
			trace = append(trace, pt)
		}
	}
	return trace
}

// Validate rejects geometry that cannot support directivity computation:
// no planes, non-finite or out-of-range plane parameters, fewer than two
// distinct top-trace points, or a malformed pinned hypocentre.
func (g RuptureGeometry) Validate() error {
	if len(g.Planes) == 0 {
		return fmt.Errorf("%w: no fault planes", ErrGeometry)
	}
	for i, p := range g.Planes {
		if err := validatePlane(p); err != nil {
			return fmt.Errorf("plane %d: %w", i, err)
		}
	}
	if len(g.Points) < 2 {
		return fmt.Errorf("%w: %d surface points, need at least 2", ErrGeometry, len(g.Points))
	}
	if n := countDistinct(g.TopTrace()); n < 2 {
		return fmt.Errorf("%w: top trace has %d distinct points, need at least 2", ErrGeometry, n)
	}
	if g.FixedHypocentre != nil {
		if err := g.FixedHypocentre.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validatePlane(p FaultPlane) error {
	for _, v := range []float64{p.Strike, p.Dip, p.DTop, p.Width, p.Length} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite plane parameter", ErrGeometry)
		}
	}
	if p.Dip <= 0 || p.Dip > 90 {
		return fmt.Errorf("%w: dip %.1f outside (0, 90]", ErrGeometry, p.Dip)
	}
	if p.DTop < 0 {
		return fmt.Errorf("%w: negative top depth %.2f", ErrGeometry, p.DTop)
	}
	if p.Width <= 0 {
		return fmt.Errorf("%w: non-positive width %.2f", ErrGeometry, p.Width)
	}
	if p.Length <= 0 {
		return fmt.Errorf("%w: non-positive length %.2f", ErrGeometry, p.Length)
	}
	return nil
}

// countDistinct counts trace points with distinct (lon, lat) positions.
// A trace collapsing to a single map position has no along-strike extent.
func countDistinct(trace []SurfacePoint) int {
	type key struct{ lon, lat float64 }
	seen := make(map[key]struct{}, len(trace))
	for _, pt := range trace {
		seen[key{pt.Lon, pt.Lat}] = struct{}{}
	}
	return len(seen)
}
