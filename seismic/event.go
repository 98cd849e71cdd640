package seismic

import (
	"errors"
	"fmt"
	"math"
)

// Magnitude bounds accepted by [EventParameters.Validate]. Ruptures outside
// this range are outside the calibration range of the directivity model and
// almost always indicate a corrupt catalog entry.
const (
	MinMagnitude = 3.0
	MaxMagnitude = 9.5
)

// ErrEventParams reports event parameters (magnitude, rake) outside their
// documented ranges. Wrapped by validation errors; test with errors.Is.
var ErrEventParams = errors.New("invalid event parameters")

// EventType classifies a rupture mechanism from its rake angle. The class
// selects the empirical along-strike and down-dip nucleation distributions
// used when sweeping candidate hypocentres over the rupture surface.
type EventType int

const (
	// StrikeSlip covers near-horizontal slip: |rake| ≤ 30° or |rake| ≥ 150°.
	StrikeSlip EventType = iota
	// DipSlip covers near-vertical slip: 60° ≤ |rake| ≤ 120°.
	DipSlip
	// All covers oblique mechanisms falling between the two bands.
	All
)

// String returns the catalog spelling of the event type.
func (t EventType) String() string {
	switch t {
	case StrikeSlip:
		return "strike_slip"
	case DipSlip:
		return "dip_slip"
	case All:
		return "all"
	default:
		return fmt.Sprintf("event_type(%d)", int(t))
	}
}

// EventTypeFromRake classifies a mechanism by its rake angle in degrees.
// Rake is normalized modulo 360 into [-180, 180] first, so any finite input
// classifies and rake+360 is equivalent to rake. Band edges are inclusive:
// rake 30 is strike slip, rake 60 is dip slip.
func EventTypeFromRake(rake float64) EventType {
	abs := math.Abs(NormalizeRake(rake))
	switch {
	case abs <= 30 || abs >= 150:
		return StrikeSlip
	case abs >= 60 && abs <= 120:
		return DipSlip
	default:
		return All
	}
}

// NormalizeRake reduces a rake angle in degrees to the canonical [-180, 180]
// range. NaN passes through and is rejected later by validation.
func NormalizeRake(rake float64) float64 {
	r := math.Mod(rake, 360)
	switch {
	case r > 180:
		r -= 360
	case r < -180:
		r += 360
	}
	return r
}

// EventParameters carries the scalar source properties of one rupture
// scenario. Geometry lives separately in [RuptureGeometry] so that one
// geometry can be evaluated under several magnitude/rake hypotheses.
type EventParameters struct {
	// Mw is moment magnitude.
	Mw float64
	// Rake is the slip direction in degrees, Aki & Richards convention,
	// in [-180, 180].
	Rake float64
}

// Type returns the mechanism classification for the parameters' rake.
func (p EventParameters) Type() EventType {
	return EventTypeFromRake(p.Rake)
}

// Validate rejects non-finite values, magnitudes outside
// [MinMagnitude, MaxMagnitude] and rakes outside [-180, 180]. Rake is
// deliberately not auto-normalized here: an out-of-range rake in a catalog
// feed has always meant a unit or parsing bug upstream, so it fails fast.
func (p EventParameters) Validate() error {
	if math.IsNaN(p.Mw) || math.IsInf(p.Mw, 0) {
		return fmt.Errorf("%w: magnitude is not finite", ErrEventParams)
	}
	if p.Mw < MinMagnitude || p.Mw > MaxMagnitude {
		return fmt.Errorf("%w: magnitude %.2f outside [%.1f, %.1f]", ErrEventParams, p.Mw, MinMagnitude, MaxMagnitude)
	}
	if math.IsNaN(p.Rake) || math.IsInf(p.Rake, 0) {
		return fmt.Errorf("%w: rake is not finite", ErrEventParams)
	}
	if p.Rake < -180 || p.Rake > 180 {
		return fmt.Errorf("%w: rake %.1f outside [-180, 180]", ErrEventParams, p.Rake)
	}
	return nil
}
