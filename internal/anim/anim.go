// Package anim provides explicit interpolation descriptors for the few
// scalars the overview animates (scale, scroll offset, centre offset).
//
// A Scalar holds its start value, target, start time, duration, curve and an
// optional completion callback. Nothing advances on its own: the owner calls
// Step once per frame, and the callback fires from inside the Step call that
// observes the end of the animation.
package anim

import (
	"time"

	"github.com/timvw/horza/internal/geom"
)

// Curve maps linear progress in [0, 1] to eased progress.
type Curve int

const (
	Linear Curve = iota
	// EaseOut is the quadratic 1-(1-t)^2.
	EaseOut
	// EaseOutCubic is 1-(1-t)^3, used for layout motion.
	EaseOutCubic
)

// Apply evaluates the curve at t. t is clamped to [0, 1].
func (c Curve) Apply(t float64) float64 {
	t = geom.Clamp(t, 0, 1)
	switch c {
	case EaseOut:
		u := 1 - t
		return 1 - u*u
	case EaseOutCubic:
		u := 1 - t
		return 1 - u*u*u
	default:
		return t
	}
}

// Scalar is an animated float64.
type Scalar struct {
	value float64
	from  float64
	to    float64

	start     time.Time
	duration  time.Duration
	curve     Curve
	animating bool
	onDone    func()
}

// NewScalar returns a resting scalar at v.
func NewScalar(v float64) *Scalar {
	return &Scalar{value: v, from: v, to: v}
}

// Value is the value computed by the last Step, or the warped value.
func (s *Scalar) Value() float64 { return s.value }

// Goal is the target of the current animation, or the value when resting.
func (s *Scalar) Goal() float64 { return s.to }

// Animating reports whether an animation is in flight.
func (s *Scalar) Animating() bool { return s.animating }

// Warp jumps to v, cancelling any animation and dropping its callback.
func (s *Scalar) Warp(v float64) {
	s.value, s.from, s.to = v, v, v
	s.animating = false
	s.onDone = nil
}

// AnimateTo starts an animation from the current value to target. A
// non-positive duration warps immediately. Any previous callback is dropped.
func (s *Scalar) AnimateTo(target float64, now time.Time, d time.Duration, c Curve) {
	if d <= 0 {
		s.Warp(target)
		return
	}
	s.from = s.value
	s.to = target
	s.start = now
	s.duration = d
	s.curve = c
	s.animating = true
	s.onDone = nil
}

// OnDone sets the callback fired once when the current animation finishes.
// It is discarded by Warp and by the next AnimateTo.
func (s *Scalar) OnDone(fn func()) { s.onDone = fn }

// Step advances the animation to now. It returns true while the animation
// is still running after the step.
func (s *Scalar) Step(now time.Time) bool {
	if !s.animating {
		return false
	}
	elapsed := now.Sub(s.start)
	if elapsed >= s.duration {
		s.value = s.to
		s.from = s.to
		s.animating = false
		if fn := s.onDone; fn != nil {
			s.onDone = nil
			fn()
		}
		return false
	}
	p := s.curve.Apply(float64(elapsed) / float64(s.duration))
	s.value = s.from + (s.to-s.from)*p
	return true
}
