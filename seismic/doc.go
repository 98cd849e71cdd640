// Package seismic models fault-rupture sources and observation sites for
// near-source directivity computation.
//
// # Geometry Source
//
// Rupture geometry arrives from the fault catalog as SRF-style data: an
// ordered list of rectangular fault planes plus a point cloud of (lon, lat,
// depth) samples over the rupture surface. The top trace of the rupture is
// the ordered subsequence of surface points at the minimum depth (1e-6 km
// tolerance); it defines the along-strike axis for all site-relative
// coordinates.
//
// # Units And Conventions
//
// Angles:
//
//	Strike and dip are in degrees; strike is measured clockwise from north,
//	dip from horizontal, in (0, 90]. Rake follows the Aki & Richards (1980)
//	convention in [-180, 180]: 0 left-lateral strike slip, 90 reverse,
//	-90 normal, ±180 right-lateral strike slip.
//
// Distances and depths:
//
//	Kilometres throughout. Depth is positive down. Plane Width is measured
//	down-dip, Length along strike.
//
// # Event Type Classification
//
// The rake bands select which empirical nucleation distributions govern
// hypocentre placement when averaging directivity over candidate hypocentres:
//
//	|rake| ≤ 30 or |rake| ≥ 150  → strike slip
//	60 ≤ |rake| ≤ 120            → dip slip
//	otherwise                    → oblique (all)
//
// Rake is normalized modulo 360 into [-180, 180] before classification, so
// rake and rake+360 always classify identically. See [EventTypeFromRake].
//
// # Hypocentre Pinning
//
// Legacy SRF planes mark the hypocentre-bearing plane with sentinel
// along-strike/down-dip offsets (-999 meaning "not on this plane"). Here the
// sentinel is replaced by the explicit optional [RuptureGeometry.FixedHypocentre]:
// nil means the hypocentre is swept by the sampler, non-nil pins it to a
// fractional position over the whole rupture.
package seismic
