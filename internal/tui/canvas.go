package tui

import (
	"math"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

// Glyph and cover thresholds. A glyph drawn below glyphAlpha leaves the
// cell's rune alone; a fill at or above coverAlpha erases it.
const (
	glyphAlpha = 0.35
	coverAlpha = 0.5
)

// Canvas draws into an Image. Coordinates are logical units of
// mux.CellSize per cell; a cell is painted when its centre lies inside the
// destination.
type Canvas struct {
	im   *Image
	unit geom.Vec
}

func newCanvas(im *Image) *Canvas {
	return &Canvas{im: im, unit: mux.CellSize}
}

func (c *Canvas) Clear(col host.Color) {
	fill := fromHost(col)
	for i := range c.im.cells {
		c.im.cells[i] = Cell{Rune: ' ', FG: fill, BG: fill, Alpha: 1}
	}
}

func (c *Canvas) DrawRect(dst geom.Box, col host.Color, round float64) {
	a := geom.Clamp(col.A, 0, 1)
	if a <= 0 {
		return
	}
	fill := fromHost(col)
	c.each(dst, geom.Box{}, round, func(x, y int, _ geom.Vec) {
		cell := c.im.At(x, y)
		cell.BG = cell.BG.BlendRgb(fill, a)
		cell.FG = cell.FG.BlendRgb(fill, a)
		if a >= 0.95 {
			cell.Rune = ' '
		}
		c.im.Set(x, y, cell)
	})
}

func (c *Canvas) DrawImage(img host.Image, dst geom.Box, opts host.DrawOptions) {
	src, ok := img.(*Image)
	if !ok || src.cols == 0 || src.rows == 0 || dst.Empty() {
		return
	}
	a := geom.Clamp(opts.Alpha, 0, 1)
	if a <= 0 {
		return
	}
	uv := geom.Box{W: 1, H: 1}
	if opts.Source != nil {
		uv = *opts.Source
	}
	c.each(dst, opts.Damage, opts.Round, func(x, y int, p geom.Vec) {
		u := uv.X + (p.X-dst.X)/dst.W*uv.W
		v := uv.Y + (p.Y-dst.Y)/dst.H*uv.H
		s := src.At(int(math.Floor(u*float64(src.cols))), int(math.Floor(v*float64(src.rows))))

		cell := c.im.At(x, y)
		if cover := a * s.Alpha; cover > 0 {
			cell.BG = cell.BG.BlendRgb(s.BG, cover)
			cell.FG = cell.FG.BlendRgb(s.BG, cover)
			if cover >= coverAlpha {
				cell.Rune = ' '
			}
		}
		if s.glyph() && a >= glyphAlpha {
			cell.Rune = s.Rune
			cell.FG = cell.BG.BlendRgb(s.FG, a)
		}
		c.im.Set(x, y, cell)
	})
}

// each calls fn for every cell of the target whose centre is inside dst,
// inside clip when clip is not empty, and inside the rounded corners.
func (c *Canvas) each(dst, clip geom.Box, round float64, fn func(x, y int, centre geom.Vec)) {
	if dst.Empty() {
		return
	}
	x0 := max(0, int(math.Floor(dst.X/c.unit.X)))
	y0 := max(0, int(math.Floor(dst.Y/c.unit.Y)))
	x1 := min(c.im.cols, int(math.Ceil((dst.X+dst.W)/c.unit.X)))
	y1 := min(c.im.rows, int(math.Ceil((dst.Y+dst.H)/c.unit.Y)))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := geom.Vec{X: (float64(x) + 0.5) * c.unit.X, Y: (float64(y) + 0.5) * c.unit.Y}
			if !insideRounded(dst, round, p) {
				continue
			}
			if !clip.Empty() && !clip.Contains(p) {
				continue
			}
			fn(x, y, p)
		}
	}
}

func insideRounded(b geom.Box, r float64, p geom.Vec) bool {
	if !b.Contains(p) {
		return false
	}
	r = math.Min(r, math.Min(b.W, b.H)/2)
	if r <= 0 {
		return true
	}
	cx := geom.Clamp(p.X, b.X+r, b.X+b.W-r)
	cy := geom.Clamp(p.Y, b.Y+r, b.Y+b.H-r)
	return math.Hypot(p.X-cx, p.Y-cy) <= r
}
