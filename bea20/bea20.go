// Package bea20 implements the Bayless, Somerville and Skarlatoudis (2020)
// rupture directivity adjustment model, developed for the NGA-West2 ground
// motion models (Bayless J., Somerville P., Skarlatoudis A., 2020. A rupture
// directivity adjustment model applicable to the NGA-West2 ground motion
// models, BSSA 110).
//
// The model is evaluated per site, hypocentre and spectral period, entirely
// in fault-relative coordinates. Its median term fD is an additive
// adjustment to the natural-log ground motion: positive in the direction
// rupture propagates, negative behind it, tapering to zero with distance and
// away from the magnitude-dependent pulse period. Its aleatory term phiRed
// is the accompanying reduction of the phi variability component, since an
// explicit directivity prediction removes azimuthal scatter the base models
// carry as random.
//
// Inputs are plain scalars so the package stays free of any geometry or
// catalog types; callers assemble [Params] from GC2 site coordinates and the
// hypocentre-bearing plane.
package bea20

import "math"

// minSlipPathKm floors the down-dip distance term: hypocentres on the top
// edge still radiate from a finite slip patch.
const minSlipPathKm = 3.0

// maxS2Km caps the generalized rupture-travel distance. Beyond ~465 km of
// along-strike propagation the pulse saturates in the calibration data.
const maxS2Km = 465.0

// sigmaLogPeriod is the width of the lognormal taper around the pulse
// period, in log10 units.
const sigmaLogPeriod = 0.4

// Params holds the fault-relative inputs for one site and one hypocentre.
// All distances are km. The along-strike axis has its origin at the
// hypocentre: U is the site coordinate, [SMin, SMax] the extent of the
// rupture trace, both signed.
type Params struct {
	// Mag is moment magnitude.
	Mag float64
	// Rake is the slip direction in degrees; it selects the two-class
	// style-of-faulting split.
	Rake float64
	// U and T are the site's GC2 coordinates: U along strike from the
	// hypocentre, T perpendicular, hanging-wall side positive.
	U float64
	T float64
	// SMin and SMax bound how far rupture can travel along strike from the
	// hypocentre toward either end of the trace.
	SMin float64
	SMax float64
	// D is the in-plane distance from the top edge down-dip to the
	// hypocentre.
	D float64
	// TBot and DBot locate the rupture's bottom edge in the strike-normal
	// cross-section: horizontal offset from the surface trace and depth.
	TBot float64
	DBot float64
	// ZTor is the depth of the top of rupture.
	ZTor float64
}

// Evaluate computes the directivity adjustment for one site and hypocentre
// across the given spectral periods. It returns fd, the additive adjustment
// to the natural-log ground-motion median, and phiRed, the non-negative
// reduction of the phi standard deviation, one entry per period in order.
// Periods outside the tabulated range fail with [ErrPeriodRange].
func Evaluate(p Params, periods []float64) (fd, phiRed []float64, err error) {
	g := geomTermsFor(p)
	fd = make([]float64, len(periods))
	phiRed = make([]float64, len(periods))
	for i, t := range periods {
		row, err := rowFor(t)
		if err != nil {
			return nil, nil, err
		}
		a, b, e1 := row.amplitudes(g.mech)
		fd[i] = (a + b*g.fG) * g.fDist * periodTaper(t, p.Mag)
		phiRed[i] = e1 * g.fDist
	}
	return fd, phiRed, nil
}

// EvaluateAt is Evaluate for a single period.
func EvaluateAt(p Params, period float64) (fd, phiRed float64, err error) {
	fds, reds, err := Evaluate(p, []float64{period})
	if err != nil {
		return 0, 0, err
	}
	return fds[0], reds[0], nil
}

// geomTerms carries the period-independent pieces of the prediction so a
// multi-period evaluation computes the geometry once.
type geomTerms struct {
	mech  mechanism
	fG    float64
	fDist float64
}

func geomTermsFor(p Params) geomTerms {
	mech := mechanismFromRake(p.Rake)

	// Generalized rupture-travel distance: along-strike travel toward the
	// site, clamped to the trace extent, combined with the down-dip slip
	// path. This is where forward and backward sites separate: rupture
	// cannot travel past the end of the fault.
	s := clamp(p.U, p.SMin, p.SMax)
	d := math.Max(p.D, minSlipPathKm)
	fS2 := math.Min(math.Log(math.Hypot(s, d)), math.Log(maxS2Km))

	fTheta, fPhi := 1.0, 1.0
	if mech == mechStrikeSlip {
		theta := 0.0
		if p.T != 0 || p.U != 0 {
			// Atan(±Inf) = ±π/2 covers sites abeam the hypocentre (U = 0).
			theta = math.Abs(math.Atan(p.T / p.U))
		}
		fTheta = math.Abs(math.Cos(2 * theta))
	} else {
		fPhi = cosSqPhi(p)
	}

	r := math.Hypot(p.T, s)
	rMax := maxRadius(mech, p.Mag)
	var fDist float64
	switch {
	case r == 0:
		fDist = 1
	case r <= rMax:
		fDist = 1 - math.Exp(4-4*rMax/r)
	}

	return geomTerms{mech: mech, fG: fS2 * fTheta * fPhi, fDist: fDist}
}

// cosSqPhi returns cos² of the angle subtended at the rupture's bottom edge
// between the up-dip direction and the site direction, in the strike-normal
// cross-section with depth positive down. Sites up-dip of the rupture see
// the full amplitude, sites off to the side see it fall off as the radiation
// cone opens.
func cosSqPhi(p Params) float64 {
	ux, uz := -p.TBot, p.ZTor-p.DBot
	sx, sz := p.T-p.TBot, -p.DBot
	un := math.Hypot(ux, uz)
	sn := math.Hypot(sx, sz)
	if un == 0 || sn == 0 {
		return 1
	}
	c := clamp((ux*sx+uz*sz)/(un*sn), -1, 1)
	return c * c
}

// maxRadius is the magnitude-dependent footprint of the adjustment: the
// rupture distance beyond which fD and phiRed are exactly zero.
func maxRadius(m mechanism, mag float64) float64 {
	if m == mechStrikeSlip {
		return clamp(-60+20*mag, 40, 80)
	}
	return clamp(-80+20*mag, 20, 40)
}

// logPeakPeriod returns log10 of the magnitude-dependent period at which the
// directivity pulse peaks.
func logPeakPeriod(mag float64) float64 {
	return -2.15 + 0.404*mag
}

// periodTaper scales the median adjustment off the pulse period with a
// lognormal bell.
func periodTaper(period, mag float64) float64 {
	d := math.Log10(period) - logPeakPeriod(mag)
	return math.Exp(-d * d / (2 * sigmaLogPeriod * sigmaLogPeriod))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
