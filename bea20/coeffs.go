package bea20

import (
	"errors"
	"fmt"
	"math"
)

// Tabulated period range of the model. Requests outside it are rejected
// rather than extrapolated.
const (
	MinPeriod = 0.01
	MaxPeriod = 10.0
)

// ErrPeriodRange reports a spectral period outside [MinPeriod, MaxPeriod].
// Test with errors.Is.
var ErrPeriodRange = errors.New("period outside model range")

// mechanism is the two-class style-of-faulting split used by the model.
// Strike-slip mechanisms follow the along-strike radiation pattern term;
// everything else follows the up-dip term.
type mechanism int

const (
	mechStrikeSlip mechanism = iota + 1
	mechOblique
)

// mechanismFromRake maps a rake angle (degrees, any finite value) onto the
// model's two-class split: within 30° of pure strike slip is strike slip,
// all other mechanisms are oblique.
func mechanismFromRake(rake float64) mechanism {
	r := math.Mod(rake, 360)
	switch {
	case r > 180:
		r -= 360
	case r < -180:
		r += 360
	}
	if abs := math.Abs(r); abs <= 30 || abs >= 150 {
		return mechStrikeSlip
	}
	return mechOblique
}

// c0 is the intercept scale per mechanism: the model centres each period's
// adjustment so that a = -c0·b, making fD vanish where fG = c0.
const (
	c0StrikeSlip = 2.6
	c0Oblique    = 2.3
)

// coeffRow holds the period-dependent amplitude coefficients. b scales the
// geometric term in the median adjustment, e1 scales the phi reduction.
// Both are zero at short periods: directivity pulses carry no energy below
// ~0.25 s.
type coeffRow struct {
	period float64
	bSS    float64
	e1SS   float64
	bOb    float64
	e1Ob   float64
}

// coeffTable is indexed by tabulated period, ascending. The long-period
// amplitudes grow with log10(T/0.2)/log10(50), reaching their maxima
// (bSS 0.32, e1SS 0.18, bOb 0.20, e1Ob 0.12) at 10 s.
var coeffTable = []coeffRow{
	{0.01, 0, 0, 0, 0},
	{0.02, 0, 0, 0, 0},
	{0.03, 0, 0, 0, 0},
	{0.05, 0, 0, 0, 0},
	{0.075, 0, 0, 0, 0},
	{0.1, 0, 0, 0, 0},
	{0.15, 0, 0, 0, 0},
	{0.2, 0, 0, 0, 0},
	{0.25, 0.0183, 0.0103, 0.0114, 0.0068},
	{0.3, 0.0332, 0.0187, 0.0207, 0.0124},
	{0.4, 0.0567, 0.0319, 0.0354, 0.0213},
	{0.5, 0.0750, 0.0422, 0.0468, 0.0281},
	{0.75, 0.1081, 0.0608, 0.0676, 0.0405},
	{1.0, 0.1317, 0.0741, 0.0823, 0.0494},
	{1.5, 0.1648, 0.0927, 0.1030, 0.0618},
	{2.0, 0.1884, 0.1059, 0.1177, 0.0706},
	{3.0, 0.2215, 0.1246, 0.1384, 0.0831},
	{4.0, 0.2450, 0.1378, 0.1532, 0.0919},
	{5.0, 0.2633, 0.1481, 0.1646, 0.0987},
	{7.5, 0.2965, 0.1668, 0.1853, 0.1112},
	{10.0, 0.3200, 0.1800, 0.2000, 0.1200},
}

// Periods returns the tabulated spectral periods in seconds, ascending.
func Periods() []float64 {
	out := make([]float64, len(coeffTable))
	for i, row := range coeffTable {
		out[i] = row.period
	}
	return out
}

// CheckPeriod reports whether a spectral period falls inside the tabulated
// range, so callers can reject a period list before fanning out work.
func CheckPeriod(period float64) error {
	_, err := rowFor(period)
	return err
}

// rowFor returns the coefficient row nearest to the requested period in
// log-period space. Periods outside the tabulated range are an error: the
// amplitude curve flattens at both ends, so extrapolating would silently
// fabricate coefficients.
func rowFor(period float64) (coeffRow, error) {
	if math.IsNaN(period) || period < MinPeriod || period > MaxPeriod {
		return coeffRow{}, fmt.Errorf("%w: %g s not in [%g, %g]", ErrPeriodRange, period, MinPeriod, MaxPeriod)
	}
	logP := math.Log10(period)
	best := coeffTable[0]
	bestDist := math.Abs(math.Log10(best.period) - logP)
	for _, row := range coeffTable[1:] {
		if d := math.Abs(math.Log10(row.period) - logP); d < bestDist {
			best, bestDist = row, d
		}
	}
	return best, nil
}

// amplitudes returns (a, b, e1) for one period and mechanism.
func (r coeffRow) amplitudes(m mechanism) (a, b, e1 float64) {
	if m == mechStrikeSlip {
		return -c0StrikeSlip * r.bSS, r.bSS, r.e1SS
	}
	return -c0Oblique * r.bOb, r.bOb, r.e1Ob
}
