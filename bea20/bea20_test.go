package bea20

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forwardParams places a strike-slip site 30 km ahead of a hypocentre that
// sits 5 km from the rear end of the trace, nearly on strike.
func forwardParams() Params {
	return Params{
		Mag:  7.0,
		Rake: 0,
		U:    30,
		T:    1,
		SMin: -5,
		SMax: 35,
		D:    8,
	}
}

func TestEvaluateStrikeSlip(t *testing.T) {
	t.Run("forward site spot value at 3 s", func(t *testing.T) {
		fd, phiRed, err := EvaluateAt(forwardParams(), 3.0)

		require.NoError(t, err)
		assert.InDelta(t, 0.16145, fd, 1e-3)
		assert.InDelta(t, 0.12444, phiRed, 2e-4)
	})

	t.Run("backward site is deamplified", func(t *testing.T) {
		p := forwardParams()
		p.U = -30

		fd, phiRed, err := EvaluateAt(p, 3.0)

		require.NoError(t, err)
		assert.InDelta(t, -0.07042, fd, 1e-3)
		assert.Greater(t, phiRed, 0.0)
	})

	t.Run("forward exceeds backward", func(t *testing.T) {
		fwd, _, err := EvaluateAt(forwardParams(), 3.0)
		require.NoError(t, err)

		p := forwardParams()
		p.U = -30
		bwd, _, err := EvaluateAt(p, 3.0)
		require.NoError(t, err)

		assert.Greater(t, fwd, bwd)
	})

	t.Run("site abeam the hypocentre", func(t *testing.T) {
		p := forwardParams()
		p.U = 0
		p.T = 10

		fd, phiRed, err := EvaluateAt(p, 3.0)

		require.NoError(t, err)
		assert.False(t, math.IsNaN(fd))
		assert.False(t, math.IsNaN(phiRed))
	})

	t.Run("site at the hypocentre surface point", func(t *testing.T) {
		p := forwardParams()
		p.U = 0
		p.T = 0
		p.SMin = -20
		p.SMax = 20

		fd, phiRed, err := EvaluateAt(p, 3.0)

		require.NoError(t, err)
		assert.False(t, math.IsNaN(fd))
		assert.GreaterOrEqual(t, phiRed, 0.0)
	})
}

func TestEvaluateFootprint(t *testing.T) {
	t.Run("zero beyond the magnitude-dependent radius", func(t *testing.T) {
		p := forwardParams()
		p.T = 100 // hypot(100, 30) is past the M7 strike-slip radius of 80

		fd, phiRed, err := EvaluateAt(p, 3.0)

		require.NoError(t, err)
		assert.Zero(t, fd)
		assert.Zero(t, phiRed)
	})

	t.Run("fades toward the radius", func(t *testing.T) {
		near := forwardParams()
		near.T = 5
		far := forwardParams()
		far.T = 70

		nearFd, nearRed, err := EvaluateAt(near, 3.0)
		require.NoError(t, err)
		farFd, farRed, err := EvaluateAt(far, 3.0)
		require.NoError(t, err)

		assert.Greater(t, math.Abs(nearFd), math.Abs(farFd))
		assert.Greater(t, nearRed, farRed)
	})
}

func TestEvaluatePeriods(t *testing.T) {
	t.Run("short periods carry no adjustment", func(t *testing.T) {
		fd, phiRed, err := Evaluate(forwardParams(), []float64{0.01, 0.05, 0.1, 0.2})

		require.NoError(t, err)
		for i := range fd {
			assert.Zero(t, fd[i])
			assert.Zero(t, phiRed[i])
		}
	})

	t.Run("full tabulated range", func(t *testing.T) {
		fd, phiRed, err := Evaluate(forwardParams(), Periods())

		require.NoError(t, err)
		assert.Len(t, fd, 21)
		assert.Len(t, phiRed, 21)
		for i, v := range phiRed {
			assert.GreaterOrEqual(t, v, 0.0, "period index %d", i)
		}
	})

	t.Run("out of range period fails", func(t *testing.T) {
		_, _, err := Evaluate(forwardParams(), []float64{1.0, 12.0})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPeriodRange)
	})

	t.Run("single period matches batch", func(t *testing.T) {
		fd, phiRed, err := Evaluate(forwardParams(), []float64{0.5, 3.0})
		require.NoError(t, err)

		fdOne, redOne, err := EvaluateAt(forwardParams(), 3.0)
		require.NoError(t, err)

		assert.Equal(t, fd[1], fdOne)
		assert.Equal(t, phiRed[1], redOne)
	})
}

func TestEvaluateOblique(t *testing.T) {
	// Dip 45, width 14.142, surface-rupturing: bottom edge at (10, 10).
	base := Params{
		Mag:  6.5,
		Rake: 90,
		U:    5,
		T:    0,
		SMin: -10,
		SMax: 10,
		D:    7,
		TBot: 10,
		DBot: 10,
		ZTor: 0,
	}

	t.Run("site on the trace sees full up-dip term", func(t *testing.T) {
		assert.InDelta(t, 1.0, cosSqPhi(base), 1e-12)
	})

	t.Run("site on the radiation null", func(t *testing.T) {
		p := base
		p.T = 20 // bottom edge to site is perpendicular to up-dip
		assert.InDelta(t, 0.0, cosSqPhi(p), 1e-12)
	})

	t.Run("up-dip site beats far hanging-wall site", func(t *testing.T) {
		onTrace, _, err := EvaluateAt(base, 3.0)
		require.NoError(t, err)

		p := base
		p.T = 20
		null, _, err := EvaluateAt(p, 3.0)
		require.NoError(t, err)

		assert.Greater(t, onTrace, null)
	})
}

func TestMaxRadius(t *testing.T) {
	tests := []struct {
		name     string
		mech     mechanism
		mag      float64
		expected float64
	}{
		{"strike slip floor", mechStrikeSlip, 5.0, 40},
		{"strike slip mid", mechStrikeSlip, 6.0, 60},
		{"strike slip cap", mechStrikeSlip, 7.0, 80},
		{"strike slip above cap", mechStrikeSlip, 8.5, 80},
		{"oblique floor", mechOblique, 4.5, 20},
		{"oblique mid", mechOblique, 5.5, 30},
		{"oblique cap", mechOblique, 6.0, 40},
		{"oblique above cap", mechOblique, 7.5, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, maxRadius(tt.mech, tt.mag), 1e-12)
		})
	}
}

func TestPeriodTaper(t *testing.T) {
	// mag chosen so the pulse period is exactly 3 s
	mag := (math.Log10(3.0) + 2.15) / 0.404

	t.Run("unity at the pulse period", func(t *testing.T) {
		assert.InDelta(t, 1.0, periodTaper(3.0, mag), 1e-12)
	})

	t.Run("symmetric in log period", func(t *testing.T) {
		assert.InDelta(t, periodTaper(1.5, mag), periodTaper(6.0, mag), 1e-12)
	})

	t.Run("decays away from the pulse", func(t *testing.T) {
		assert.Greater(t, periodTaper(2.0, mag), periodTaper(0.5, mag))
	})

	t.Run("larger magnitudes peak at longer periods", func(t *testing.T) {
		assert.Greater(t, logPeakPeriod(8.0), logPeakPeriod(6.0))
	})
}
