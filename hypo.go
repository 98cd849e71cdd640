package directivity

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seismoworks/directivity/seismic"
)

// ErrConfig reports an unusable engine configuration: unknown sweep method,
// non-positive resolution, empty site or period lists. Test with errors.Is.
var ErrConfig = errors.New("invalid directivity configuration")

// HypoMethod selects how candidate hypocentres are placed on the rupture.
type HypoMethod int

const (
	// UniformGrid places hypocentres at even open-interval fractions
	// i/(n+1); deterministic, no seed involved.
	UniformGrid HypoMethod = iota
	// UniformGridJitter stratifies each axis into even cells and draws one
	// seeded uniform position per cell.
	UniformGridJitter
	// LatinHypercube permutes one stratum per draw on each axis, then maps
	// the stratified uniforms through the nucleation distributions.
	LatinHypercube
	// MonteCarlo draws independent positions from the nucleation
	// distributions.
	MonteCarlo
)

var methodNames = map[HypoMethod]string{
	UniformGrid:       "uniform_grid",
	UniformGridJitter: "uniform_grid_jitter",
	LatinHypercube:    "latin_hypercube",
	MonteCarlo:        "monte_carlo",
}

// String returns the catalog spelling of the method.
func (m HypoMethod) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("hypo_method(%d)", int(m))
}

// ParseHypoMethod maps a catalog spelling back onto its method.
func ParseHypoMethod(s string) (HypoMethod, error) {
	for m, name := range methodNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hypocentre method %q", ErrConfig, s)
}

// HypoConfig describes one hypocentre sweep. Grid methods size the sweep
// with NStrike × NDip; stochastic methods with NHypo. Seed drives every
// random choice, so equal configs reproduce equal sweeps.
type HypoConfig struct {
	Method  HypoMethod
	NStrike int
	NDip    int
	NHypo   int
	Seed    int64
}

// GridConfig sweeps a deterministic nStrike × nDip hypocentre grid.
func GridConfig(nStrike, nDip int) HypoConfig {
	return HypoConfig{Method: UniformGrid, NStrike: nStrike, NDip: nDip}
}

// GridJitterConfig sweeps an nStrike × nDip grid with seeded in-cell jitter.
func GridJitterConfig(nStrike, nDip int, seed int64) HypoConfig {
	return HypoConfig{Method: UniformGridJitter, NStrike: nStrike, NDip: nDip, Seed: seed}
}

// LatinHypercubeConfig sweeps n stratified draws from the nucleation
// distributions.
func LatinHypercubeConfig(n int, seed int64) HypoConfig {
	return HypoConfig{Method: LatinHypercube, NHypo: n, Seed: seed}
}

// MonteCarloConfig sweeps n independent draws from the nucleation
// distributions.
func MonteCarloConfig(n int, seed int64) HypoConfig {
	return HypoConfig{Method: MonteCarlo, NHypo: n, Seed: seed}
}

// Total returns the number of hypocentres the sweep will place.
func (c HypoConfig) Total() int {
	switch c.Method {
	case UniformGrid, UniformGridJitter:
		return c.NStrike * c.NDip
	default:
		return c.NHypo
	}
}

// Validate rejects configurations that cannot produce a sweep.
func (c HypoConfig) Validate() error {
	switch c.Method {
	case UniformGrid, UniformGridJitter:
		if c.NStrike < 1 || c.NDip < 1 {
			return fmt.Errorf("%w: grid %d×%d, both axes need at least 1", ErrConfig, c.NStrike, c.NDip)
		}
	case LatinHypercube, MonteCarlo:
		if c.NHypo < 1 {
			return fmt.Errorf("%w: %d hypocentres, need at least 1", ErrConfig, c.NHypo)
		}
	default:
		return fmt.Errorf("%w: unknown hypocentre method %d", ErrConfig, int(c.Method))
	}
	return nil
}

// Hypocentre is one placed nucleation candidate.
type Hypocentre struct {
	// StrikeFraction and DipFraction are the fractional position: along the
	// full combined trace and down-dip within the containing plane.
	StrikeFraction float64
	DipFraction    float64
	// PlaneIndex identifies the plane the candidate nucleates on.
	PlaneIndex int
	// Depth is km below the surface.
	Depth float64
	// U is the arc-length coordinate along the rupture trace in km; it
	// becomes the along-strike origin when the candidate is evaluated.
	U float64
}

// position is a raw fractional placement before geometry is attached.
type position struct {
	strike float64
	dip    float64
}

// samplePositions places the sweep's fractional positions. The stochastic
// methods own a private RNG seeded from the config, so concurrent sweeps
// never share random state.
func samplePositions(cfg HypoConfig, event seismic.EventType) []position {
	switch cfg.Method {
	case UniformGrid:
		return gridPositions(cfg.NStrike, cfg.NDip, nil)
	case UniformGridJitter:
		return gridPositions(cfg.NStrike, cfg.NDip, rand.New(rand.NewSource(cfg.Seed)))
	case LatinHypercube:
		return latinPositions(cfg.NHypo, cfg.Seed, event)
	default:
		return montePositions(cfg.NHypo, cfg.Seed, event)
	}
}

// gridPositions lays out an even grid. With an RNG each cell centre is
// replaced by a uniform draw within the cell; without one the fractions are
// the open-interval sequence i/(n+1).
func gridPositions(nStrike, nDip int, rng *rand.Rand) []position {
	strike := axisFractions(nStrike, rng)
	dip := axisFractions(nDip, rng)

	out := make([]position, 0, nStrike*nDip)
	for _, s := range strike {
		for _, d := range dip {
			out = append(out, position{strike: s, dip: d})
		}
	}
	return out
}

func axisFractions(n int, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng == nil {
			out[i] = float64(i+1) / float64(n+1)
		} else {
			out[i] = openUnit((float64(i) + rng.Float64()) / float64(n))
		}
	}
	return out
}

// edgeTol keeps sampled fractions strictly inside the unit interval. A
// uniform draw of exactly 0 would otherwise place a hypocentre on the
// rupture edge, a position [seismic.FixedHypocentre] rejects as degenerate.
const edgeTol = 1e-12

// openUnit clamps a fraction to the open unit interval.
func openUnit(v float64) float64 {
	return math.Min(math.Max(v, edgeTol), 1-edgeTol)
}

// latinPositions stratifies both axes into n cells, pairs the strata with a
// shuffled permutation, jitters within each cell and maps the uniforms
// through the nucleation distributions.
func latinPositions(n int, seed int64, event seismic.EventType) []position {
	rng := rand.New(rand.NewSource(seed))
	strikeT, dipT := nucleationDists(event)

	perm := rng.Perm(n)
	out := make([]position, n)
	for i := range out {
		us := (float64(i) + rng.Float64()) / float64(n)
		ud := (float64(perm[i]) + rng.Float64()) / float64(n)
		out[i] = position{strike: strikeT.transform(us), dip: dipT.transform(ud)}
	}
	return out
}

func montePositions(n int, seed int64, event seismic.EventType) []position {
	rng := rand.New(rand.NewSource(seed))
	strikeT, dipT := nucleationDists(event)

	out := make([]position, n)
	for i := range out {
		out[i] = position{
			strike: strikeT.transform(rng.Float64()),
			dip:    dipT.transform(rng.Float64()),
		}
	}
	return out
}

// quantiler is the slice of distuv distributions the samplers need.
type quantiler interface {
	CDF(x float64) float64
	Quantile(p float64) float64
}

// truncated restricts a distribution to an interval by mapping uniform draws
// into the CDF mass between the bounds before inverting.
type truncated struct {
	dist    quantiler
	cdfLo   float64
	cdfSpan float64
}

func newTruncated(d quantiler, lo, hi float64) truncated {
	cdfLo := d.CDF(lo)
	return truncated{dist: d, cdfLo: cdfLo, cdfSpan: d.CDF(hi) - cdfLo}
}

// transform maps u ∈ [0, 1) to a draw from the truncated distribution,
// clamped strictly inside the unit interval so edge draws stay usable as
// hypocentre fractions.
func (t truncated) transform(u float64) float64 {
	return openUnit(t.dist.Quantile(t.cdfLo + u*t.cdfSpan))
}

// nucleationDists returns the empirical hypocentre position distributions
// truncated to the unit interval: along strike a Normal centred mid-fault
// for every mechanism; down dip a Weibull for strike slip and a Gamma
// otherwise, both skewed toward the lower half of the plane.
func nucleationDists(event seismic.EventType) (strike, dip truncated) {
	strike = newTruncated(distuv.Normal{Mu: 0.5, Sigma: 0.23}, 0, 1)
	if event == seismic.StrikeSlip {
		dip = newTruncated(distuv.Weibull{K: 3.353, Lambda: 0.612}, 0, 1)
	} else {
		dip = newTruncated(distuv.Gamma{Alpha: 7.364, Beta: 1 / 0.072}, 0, 1)
	}
	return strike, dip
}
