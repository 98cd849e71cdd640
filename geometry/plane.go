package geometry

import (
	"math"

	"github.com/seismoworks/directivity/seismic"
)

// BottomEdge returns the position of a plane's bottom edge in the
// strike-normal cross-section: horizontal distance from the surface trace in
// km (hanging-wall side positive) and depth in km. A buried top edge shifts
// the surface trace up-dip, hence the DTop/tan(dip) term.
func BottomEdge(p seismic.FaultPlane) (tBot, dBot float64) {
	rad := p.Dip * math.Pi / 180
	tBot = p.DTop/math.Tan(rad) + p.Width*math.Cos(rad)
	dBot = p.BottomDepth()
	return tBot, dBot
}

// HypocentreDepth returns the depth in km of a hypocentre placed at the
// given down-dip fraction of the plane.
func HypocentreDepth(p seismic.FaultPlane, dipFraction float64) float64 {
	return p.DTop + dipFraction*p.Width*math.Sin(p.Dip*math.Pi/180)
}

// DownDipDistance returns the in-plane distance in km from the plane's top
// edge to a hypocentre at the given depth.
func DownDipDistance(p seismic.FaultPlane, hypoDepth float64) float64 {
	return (hypoDepth - p.DTop) / math.Sin(p.Dip*math.Pi/180)
}
