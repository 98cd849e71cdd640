package directivity

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Result carries the directivity adjustments for one rupture scenario.
// Averaged values are plain means over the hypocentre sweep; the
// per-hypocentre values are retained so callers can weight or bootstrap
// their own statistics.
type Result struct {
	// Periods are the evaluated spectral periods, in request order.
	Periods []float64
	// FD[si][pi] is the hypocentre-averaged natural-log adjustment for
	// site si at period pi.
	FD [][]float64
	// PhiRed[si][pi] is the averaged non-negative reduction of the phi
	// variability term; consumers subtract it from their base model's phi.
	PhiRed [][]float64
	// FDArray[si][pi][hi] is the adjustment at each swept hypocentre before
	// averaging, in sweep order.
	FDArray [][][]float64
	// Hypocentres is the sweep that produced the averages.
	Hypocentres []Hypocentre
	// NHypo is len(Hypocentres), carried explicitly so combined results
	// keep their weighting after serialization strips the sweep.
	NHypo int
}

func newResult(periods []float64, nSites int, hypos []Hypocentre) *Result {
	r := &Result{
		Periods:     append([]float64(nil), periods...),
		FD:          make([][]float64, nSites),
		PhiRed:      make([][]float64, nSites),
		FDArray:     make([][][]float64, nSites),
		Hypocentres: hypos,
		NHypo:       len(hypos),
	}
	for si := 0; si < nSites; si++ {
		r.FD[si] = make([]float64, len(periods))
		r.PhiRed[si] = make([]float64, len(periods))
		r.FDArray[si] = make([][]float64, len(periods))
		for pi := range periods {
			r.FDArray[si][pi] = make([]float64, len(hypos))
		}
	}
	return r
}

// averageSite fills one site's averaged slices from its per-hypocentre
// values.
func (r *Result) averageSite(si int, phiByPeriod [][]float64) {
	for pi := range r.Periods {
		r.FD[si][pi] = stat.Mean(r.FDArray[si][pi], nil)
		r.PhiRed[si][pi] = stat.Mean(phiByPeriod[pi], nil)
	}
}

// PeriodIndex returns the index of an exactly matching period, or -1.
func (r *Result) PeriodIndex(period float64) int {
	for i, p := range r.Periods {
		if p == period {
			return i
		}
	}
	return -1
}

// NSites returns the number of sites in the result.
func (r *Result) NSites() int {
	return len(r.FD)
}

// CombineBatches merges results computed over disjoint hypocentre subsets of
// the same scenario into the result of the full sweep. Averages are blended
// weighted by each batch's hypocentre count, which reproduces the
// single-sweep average exactly; per-hypocentre values and sweeps are
// concatenated in batch order.
//
// All batches must share periods and site count, or the merge fails with
// [ErrConfig].
func CombineBatches(batches []*Result) (*Result, error) {
	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: no batches to combine", ErrConfig)
	}
	first := batches[0]
	if first.NHypo < 1 {
		return nil, fmt.Errorf("batch 0: %w: empty batch", ErrConfig)
	}
	for bi, b := range batches[1:] {
		if err := compatible(first, b); err != nil {
			return nil, fmt.Errorf("batch %d: %w", bi+1, err)
		}
	}

	totalHypos := 0
	weights := make([]float64, len(batches))
	hasArrays := true
	for bi, b := range batches {
		totalHypos += b.NHypo
		weights[bi] = float64(b.NHypo)
		if b.FDArray == nil {
			hasArrays = false
		}
	}

	hypos := make([]Hypocentre, 0, totalHypos)
	for _, b := range batches {
		hypos = append(hypos, b.Hypocentres...)
	}

	out := newResult(first.Periods, first.NSites(), hypos)
	// Serialized batches arrive with their sweeps stripped; the explicit
	// count keeps the weighting correct either way.
	out.NHypo = totalHypos
	fdVals := make([]float64, len(batches))
	phiVals := make([]float64, len(batches))
	for si := 0; si < first.NSites(); si++ {
		for pi := range first.Periods {
			for bi, b := range batches {
				fdVals[bi] = b.FD[si][pi]
				phiVals[bi] = b.PhiRed[si][pi]
			}
			out.FD[si][pi] = stat.Mean(fdVals, weights)
			out.PhiRed[si][pi] = stat.Mean(phiVals, weights)

			if hasArrays {
				col := out.FDArray[si][pi][:0]
				for _, b := range batches {
					col = append(col, b.FDArray[si][pi]...)
				}
				out.FDArray[si][pi] = col
			}
		}
	}
	// Serialized batches may arrive without per-hypocentre columns; the
	// averages still combine, the concatenation does not.
	if !hasArrays {
		out.FDArray = nil
	}
	return out, nil
}

func compatible(a, b *Result) error {
	if b.NHypo < 1 {
		return fmt.Errorf("%w: empty batch", ErrConfig)
	}
	if a.NSites() != b.NSites() {
		return fmt.Errorf("%w: %d sites vs %d", ErrConfig, b.NSites(), a.NSites())
	}
	if len(a.Periods) != len(b.Periods) {
		return fmt.Errorf("%w: %d periods vs %d", ErrConfig, len(b.Periods), len(a.Periods))
	}
	for i := range a.Periods {
		if a.Periods[i] != b.Periods[i] {
			return fmt.Errorf("%w: period %g vs %g at index %d", ErrConfig, b.Periods[i], a.Periods[i], i)
		}
	}
	return nil
}
