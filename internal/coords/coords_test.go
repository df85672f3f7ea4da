package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestICRSToGalacticReferencePoints(t *testing.T) {
	t.Parallel()

	t.Run("north galactic pole", func(t *testing.T) {
		t.Parallel()
		g := ICRSToGalactic(192.85948, 27.12825)
		assert.InDelta(t, 90.0, g.B, 1e-4)
	})

	t.Run("galactic center", func(t *testing.T) {
		t.Parallel()
		g := ICRSToGalactic(266.40499, -28.93617)
		assert.InDelta(t, 0.0, g.B, 1e-4)
		// longitude wraps at 0/360
		if g.L > 180 {
			g.L -= 360
		}
		assert.InDelta(t, 0.0, g.L, 1e-4)
	})

	t.Run("bootes target", func(t *testing.T) {
		t.Parallel()
		g := ICRSToGalactic(222.5, 46.0)
		assert.InDelta(t, 79.658, g.L, 1e-2)
		assert.InDelta(t, 59.922, g.B, 1e-2)
	})
}

func TestLongitudeRange(t *testing.T) {
	t.Parallel()

	for ra := 0.0; ra < 360.0; ra += 15.0 {
		for _, dec := range []float64{-80, -30, 0, 30, 80} {
			g := ICRSToGalactic(ra, dec)
			assert.GreaterOrEqual(t, g.L, 0.0)
			assert.Less(t, g.L, 360.0)
			assert.GreaterOrEqual(t, g.B, -90.0)
			assert.LessOrEqual(t, g.B, 90.0)
		}
	}
}
