package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seismoworks/directivity/seismic"
)

func TestBottomEdge(t *testing.T) {
	t.Run("45 degree dip from surface", func(t *testing.T) {
		p := seismic.FaultPlane{Dip: 45, DTop: 0, Width: 10}
		tBot, dBot := BottomEdge(p)
		assert.InDelta(t, 10/math.Sqrt2, tBot, 1e-9)
		assert.InDelta(t, 10/math.Sqrt2, dBot, 1e-9)
	})

	t.Run("buried top edge shifts bottom edge out", func(t *testing.T) {
		p := seismic.FaultPlane{Dip: 45, DTop: 2, Width: 10}
		tBot, dBot := BottomEdge(p)
		assert.InDelta(t, 2+10/math.Sqrt2, tBot, 1e-9)
		assert.InDelta(t, 2+10/math.Sqrt2, dBot, 1e-9)
	})

	t.Run("vertical plane has no horizontal offset", func(t *testing.T) {
		p := seismic.FaultPlane{Dip: 90, DTop: 1, Width: 12}
		tBot, dBot := BottomEdge(p)
		assert.InDelta(t, 0, tBot, 1e-9)
		assert.InDelta(t, 13, dBot, 1e-9)
	})
}

func TestHypocentreDepth(t *testing.T) {
	p := seismic.FaultPlane{Dip: 30, DTop: 1, Width: 10}

	assert.InDelta(t, 3.5, HypocentreDepth(p, 0.5), 1e-9)
	assert.InDelta(t, 1, HypocentreDepth(p, 0), 1e-9)
	assert.InDelta(t, 6, HypocentreDepth(p, 1), 1e-9)
}

func TestDownDipDistance(t *testing.T) {
	p := seismic.FaultPlane{Dip: 30, DTop: 1, Width: 10}

	t.Run("inverts hypocentre depth", func(t *testing.T) {
		for _, frac := range []float64{0.1, 0.5, 0.9} {
			depth := HypocentreDepth(p, frac)
			assert.InDelta(t, frac*p.Width, DownDipDistance(p, depth), 1e-9)
		}
	})

	t.Run("vertical plane", func(t *testing.T) {
		v := seismic.FaultPlane{Dip: 90, DTop: 2, Width: 8}
		assert.InDelta(t, 6, DownDipDistance(v, 8), 1e-9)
	})
}
