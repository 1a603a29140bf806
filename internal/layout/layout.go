// Package layout computes where each tile of the filmstrip sits on screen.
//
// Everything here is a pure function of Params: the same inputs always give
// the same boxes, so the session can recompute layout at any point of a
// frame without caching it.
package layout

import (
	"math"

	"github.com/timvw/horza/internal/geom"
)

// Orientation is the direction the strip scrolls in.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Params is the complete input of the layout.
type Params struct {
	// Monitor is the logical monitor size.
	Monitor geom.Vec
	// Scale is the current animated scale. It is clamped with ClampScale.
	Scale float64
	// DisplayScale is the resting scale of an open overview.
	DisplayScale float64
	// Gap is the configured gap between tiles at DisplayScale.
	Gap         float64
	Orientation Orientation
	// Offset is the animated scroll offset on the primary axis.
	Offset float64
	// CrossOffset is the animated centre offset on the cross axis.
	CrossOffset float64
	// Current is the index of the centred tile.
	Current int
	// InactivePercent is the size of a tile one step away from the centre,
	// in percent of the centred tile. 100 disables shrinking.
	InactivePercent float64
}

// ClampScale limits s to the range between 1 and the display scale.
func ClampScale(s, displayScale float64) float64 {
	return geom.Clamp(s, math.Min(1, displayScale), math.Max(1, displayScale))
}

func (p Params) scale() float64 { return ClampScale(p.Scale, p.DisplayScale) }

func (p Params) primary(v geom.Vec) float64 {
	if p.Orientation == Vertical {
		return v.Y
	}
	return v.X
}

// TileSize is the unshrunk size of every tile.
func (p Params) TileSize() geom.Vec { return p.Monitor.Scale(p.scale()) }

// GapScaled is the gap at the current scale.
func (p Params) GapScaled() float64 {
	ds := p.DisplayScale
	if ds <= 0 {
		ds = 1
	}
	return math.Max(0, p.Gap) * p.scale() / ds
}

// Step is the primary-axis pitch between consecutive tiles.
func (p Params) Step() float64 {
	return p.primary(p.TileSize()) + p.GapScaled()
}

// Center returns the primary-axis start of tile 0 that puts tile idx in the
// middle of the monitor with a zero offset.
func (p Params) Center(idx int) float64 {
	tile := p.primary(p.TileSize())
	return p.primary(p.Monitor)/2 - (float64(idx)*(tile+p.GapScaled()) + tile/2)
}

// RecenterDelta is the amount to add to the scroll offset when the current
// index moves from oldIdx to newIdx so that nothing moves on screen; the
// offset can then animate back to zero.
func (p Params) RecenterDelta(oldIdx, newIdx int) float64 {
	return p.Center(oldIdx) - p.Center(newIdx)
}

// BaseBox is the unshrunk box of tile i.
func (p Params) BaseBox(i int) geom.Box {
	tile := p.TileSize()
	pos := p.Center(p.Current) + p.Offset + float64(i)*p.Step()
	if p.Orientation == Vertical {
		return geom.Box{X: (p.Monitor.X-tile.X)/2 + p.CrossOffset, Y: pos, W: tile.X, H: tile.Y}
	}
	return geom.Box{X: pos, Y: (p.Monitor.Y-tile.Y)/2 + p.CrossOffset, W: tile.X, H: tile.Y}
}

// ShrinkFactor returns the inactive-tile size factor for a tile whose
// unshrunk box is base.
func (p Params) ShrinkFactor(base geom.Box) float64 {
	pct := geom.Clamp(p.InactivePercent, 0, 100)
	step := p.Step()
	norm := 1.0
	if step > 0.001 {
		dist := math.Abs(p.primary(base.Center()) - p.primary(p.Monitor)/2)
		norm = geom.Clamp(dist/step, 0, 1)
	}
	return 1 - (1-pct/100)*norm
}

// TileBox is the final box of tile i, shrunk around its own centre.
func (p Params) TileBox(i int) geom.Box {
	base := p.BaseBox(i)
	return base.ScaleAround(p.ShrinkFactor(base))
}

// Boxes returns TileBox for n tiles.
func (p Params) Boxes(n int) []geom.Box {
	out := make([]geom.Box, n)
	for i := range out {
		out[i] = p.TileBox(i)
	}
	return out
}

// OnScreen reports whether b has positive area and overlaps a monitor of
// the given logical size.
func OnScreen(b geom.Box, monitor geom.Vec) bool {
	if b.Empty() {
		return false
	}
	return b.Intersects(geom.Box{W: monitor.X, H: monitor.Y})
}
