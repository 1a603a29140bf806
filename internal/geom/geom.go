// Package geom holds the small amount of 2D geometry shared by the layout
// engine, the overview session and the renderers.
package geom

import "math"

// Vec is a point or a size in logical monitor units.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }

// Len returns the euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Box is an axis-aligned rectangle with its origin at the top-left corner.
type Box struct {
	X, Y, W, H float64
}

// BoxAt builds a box from a position and a size.
func BoxAt(pos, size Vec) Box { return Box{pos.X, pos.Y, size.X, size.Y} }

func (b Box) Pos() Vec { return Vec{b.X, b.Y} }

func (b Box) Size() Vec { return Vec{b.W, b.H} }

func (b Box) Center() Vec { return Vec{b.X + b.W/2, b.Y + b.H/2} }

// Empty reports whether b has no positive area. NaN sizes count as empty.
func (b Box) Empty() bool { return !(b.W > 0 && b.H > 0) }

// Contains reports whether p lies inside b, edges included.
func (b Box) Contains(p Vec) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// Intersects reports whether b and o overlap with positive area.
func (b Box) Intersects(o Box) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

func (b Box) Translate(v Vec) Box { return Box{b.X + v.X, b.Y + v.Y, b.W, b.H} }

// Expand grows b by d on every side. Negative d shrinks it.
func (b Box) Expand(d float64) Box { return Box{b.X - d, b.Y - d, b.W + 2*d, b.H + 2*d} }

// ScaleAround scales the size of b by f keeping its centre fixed.
func (b Box) ScaleAround(f float64) Box {
	w, h := b.W*f, b.H*f
	return Box{b.X - (w-b.W)/2, b.Y - (h-b.H)/2, w, h}
}

// Round snaps every component to the nearest integer.
func (b Box) Round() Box {
	return Box{math.Round(b.X), math.Round(b.Y), math.Round(b.W), math.Round(b.H)}
}

// Clamp limits v to [lo, hi]. A NaN v returns lo.
func Clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
