package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timvw/horza/internal/geom"
)

func params() Params {
	return Params{
		Monitor:         geom.Vec{X: 1000, Y: 500},
		Scale:           0.7,
		DisplayScale:    0.7,
		Gap:             16,
		Current:         1,
		InactivePercent: 100,
	}
}

func TestClampScale(t *testing.T) {
	assert.Equal(t, 0.7, ClampScale(0.2, 0.7))
	assert.Equal(t, 1.0, ClampScale(1.4, 0.7))
	assert.Equal(t, 1.5, ClampScale(2, 1.5))
	assert.Equal(t, 1.0, ClampScale(0.5, 1.5))
}

func TestCurrentTileIsCentred(t *testing.T) {
	for _, o := range []Orientation{Horizontal, Vertical} {
		p := params()
		p.Orientation = o
		for cur := 0; cur < 3; cur++ {
			p.Current = cur
			b := p.TileBox(cur)
			assert.InDelta(t, 500.0, b.Center().X, 1e-9, "%s current=%d", o, cur)
			assert.InDelta(t, 250.0, b.Center().Y, 1e-9, "%s current=%d", o, cur)
		}
	}
}

func TestTilesArePitchedByTileAndGap(t *testing.T) {
	p := params()
	b0, b1 := p.TileBox(0), p.TileBox(1)
	assert.InDelta(t, 700.0, b0.W, 1e-9)
	assert.InDelta(t, 716.0, b1.X-b0.X, 1e-9)
}

func TestGapScalesWithAnimatedScale(t *testing.T) {
	p := params()
	p.Scale = 1
	assert.InDelta(t, 16/0.7, p.GapScaled(), 1e-9)
	p.Gap = -3
	assert.Equal(t, 0.0, p.GapScaled())
}

func TestRecenterDeltaKeepsTilesInPlace(t *testing.T) {
	p := params()
	before := p.Boxes(3)

	p.Offset += p.RecenterDelta(1, 2)
	p.Current = 2
	after := p.Boxes(3)
	for i := range before {
		assert.InDelta(t, before[i].X, after[i].X, 1e-9)
	}

	p.Offset = 0
	assert.InDelta(t, 500.0, p.TileBox(2).Center().X, 1e-9)
}

func TestShrinkFalloff(t *testing.T) {
	p := params()
	p.InactivePercent = 80

	centre := p.TileBox(1)
	assert.InDelta(t, 700.0, centre.W, 1e-9)

	neighbour := p.TileBox(2)
	assert.InDelta(t, 560.0, neighbour.W, 1e-9)
	assert.InDelta(t, 280.0, neighbour.H, 1e-9)
	assert.InDelta(t, p.BaseBox(2).Center().X, neighbour.Center().X, 1e-9)

	far := p.TileBox(3)
	assert.InDelta(t, 560.0, far.W, 1e-9, "falloff saturates after one step")

	p.Offset = p.Step() / 2
	half := p.TileBox(1)
	assert.InDelta(t, 700*0.9, half.W, 1e-9)
}

func TestLayoutIsDeterministic(t *testing.T) {
	p := params()
	p.InactivePercent = 85
	p.Offset = 37.5
	p.CrossOffset = -12
	assert.Equal(t, p.Boxes(5), p.Boxes(5))
}

func TestCrossOffsetMovesCrossAxisOnly(t *testing.T) {
	p := params()
	base := p.TileBox(1)
	p.CrossOffset = 40
	moved := p.TileBox(1)
	assert.Equal(t, base.X, moved.X)
	assert.InDelta(t, base.Y+40, moved.Y, 1e-9)
}

func TestOnScreen(t *testing.T) {
	mon := geom.Vec{X: 100, Y: 100}
	assert.True(t, OnScreen(geom.Box{X: 90, Y: 10, W: 50, H: 50}, mon))
	assert.False(t, OnScreen(geom.Box{X: 100, Y: 10, W: 50, H: 50}, mon))
	assert.False(t, OnScreen(geom.Box{X: 10, Y: 10, W: 0, H: 50}, mon))
}
