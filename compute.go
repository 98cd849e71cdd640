package directivity

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/seismoworks/directivity/bea20"
	"github.com/seismoworks/directivity/geometry"
	"github.com/seismoworks/directivity/seismic"
)

// Option tunes a computation without widening the call signature.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers caps the number of concurrent site workers. Values below 1
// keep the default of GOMAXPROCS. Worker count never changes results, only
// wall time.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ComputeFaultDirectivity evaluates the hypocentre-averaged directivity
// adjustment for one rupture at every site and period. The sweep follows
// cfg unless the rupture carries a pinned hypocentre, which short-circuits
// sampling to that single position (cfg is then ignored and may be zero).
//
// Validation failures surface as wrapped [seismic.ErrEventParams],
// [seismic.ErrGeometry], [ErrConfig] or [bea20.ErrPeriodRange] before any
// evaluation starts.
func ComputeFaultDirectivity(rupture seismic.RuptureGeometry, sites []seismic.Site, event seismic.EventParameters, cfg HypoConfig, periods []float64, opts ...Option) (*Result, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := rupture.Validate(); err != nil {
		return nil, err
	}
	if err := validateInputs(sites, periods); err != nil {
		return nil, err
	}

	var positions []position
	if rupture.FixedHypocentre != nil {
		h := rupture.FixedHypocentre
		positions = []position{{strike: h.StrikeFraction, dip: h.DipFraction}}
	} else {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		positions = samplePositions(cfg, event.Type())
	}

	return compute(rupture, sites, event, positions, periods, newOptions(opts))
}

// ComputeDirectivityAtHypocentre evaluates the adjustment for a scenario
// with a known nucleation point: a single sweep position, no averaging. The
// returned result has one hypocentre and FD equal to FDArray's only column.
func ComputeDirectivityAtHypocentre(rupture seismic.RuptureGeometry, sites []seismic.Site, event seismic.EventParameters, hypo seismic.FixedHypocentre, periods []float64, opts ...Option) (*Result, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := rupture.Validate(); err != nil {
		return nil, err
	}
	if err := hypo.Validate(); err != nil {
		return nil, err
	}
	if err := validateInputs(sites, periods); err != nil {
		return nil, err
	}

	positions := []position{{strike: hypo.StrikeFraction, dip: hypo.DipFraction}}
	return compute(rupture, sites, event, positions, periods, newOptions(opts))
}

func validateInputs(sites []seismic.Site, periods []float64) error {
	if len(sites) == 0 {
		return fmt.Errorf("%w: no sites", ErrConfig)
	}
	if len(periods) == 0 {
		return fmt.Errorf("%w: no spectral periods", ErrConfig)
	}
	for _, p := range periods {
		if err := bea20.CheckPeriod(p); err != nil {
			return err
		}
	}
	return nil
}

func compute(rupture seismic.RuptureGeometry, sites []seismic.Site, event seismic.EventParameters, positions []position, periods []float64, o options) (*Result, error) {
	trace, err := geometry.NewTrace(rupture.TopTrace())
	if err != nil {
		return nil, err
	}

	hypos := make([]Hypocentre, len(positions))
	params := make([]bea20.Params, len(positions))
	for i, pos := range positions {
		h := locateHypocentre(rupture, trace, pos)
		hypos[i] = h

		plane := rupture.Planes[h.PlaneIndex]
		sMin, sMax := trace.SMax(h.U)
		tBot, dBot := geometry.BottomEdge(plane)
		params[i] = bea20.Params{
			Mag:  event.Mw,
			Rake: event.Rake,
			SMin: sMin,
			SMax: sMax,
			D:    geometry.DownDipDistance(plane, h.Depth),
			TBot: tBot,
			DBot: dBot,
			ZTor: plane.DTop,
		}
	}

	// GC2 site coordinates do not depend on the hypocentre; compute them
	// once and shift the along-strike origin per candidate.
	coords := make([]geometry.Coord, len(sites))
	for i, s := range sites {
		coords[i] = trace.Coords(s.Lon, s.Lat)
	}

	res := newResult(periods, len(sites), hypos)

	var g errgroup.Group
	g.SetLimit(o.workers)
	for si := range sites {
		g.Go(func() error {
			return evaluateSite(res, si, coords[si], hypos, params, periods)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// evaluateSite runs the full sweep for one site. It writes only that site's
// result slots, so concurrent site workers never share state, and it walks
// hypocentres in sweep order, so the averages are reproducible bit for bit
// at any worker count.
func evaluateSite(res *Result, si int, c geometry.Coord, hypos []Hypocentre, params []bea20.Params, periods []float64) error {
	phiByPeriod := make([][]float64, len(periods))
	for pi := range phiByPeriod {
		phiByPeriod[pi] = make([]float64, len(hypos))
	}

	for hi, p := range params {
		p.U = c.U - hypos[hi].U
		p.T = c.T
		fd, phiRed, err := bea20.Evaluate(p, periods)
		if err != nil {
			return err
		}
		for pi := range periods {
			res.FDArray[si][pi][hi] = fd[pi]
			phiByPeriod[pi][hi] = phiRed[pi]
		}
	}

	res.averageSite(si, phiByPeriod)
	return nil
}

// locateHypocentre attaches geometry to a fractional position: the plane it
// falls on by cumulative along-strike length, its depth down that plane, and
// its arc-length coordinate on the trace.
func locateHypocentre(rupture seismic.RuptureGeometry, trace *geometry.Trace, pos position) Hypocentre {
	target := pos.strike * rupture.TotalLength()
	idx := len(rupture.Planes) - 1
	var cum float64
	for i, p := range rupture.Planes {
		if target <= cum+p.Length {
			idx = i
			break
		}
		cum += p.Length
	}

	return Hypocentre{
		StrikeFraction: pos.strike,
		DipFraction:    pos.dip,
		PlaneIndex:     idx,
		Depth:          geometry.HypocentreDepth(rupture.Planes[idx], pos.dip),
		U:              pos.strike * trace.Length(),
	}
}
