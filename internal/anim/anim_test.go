package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurve_Apply(t *testing.T) {
	assert.Equal(t, 0.5, Linear.Apply(0.5))
	assert.Equal(t, 0.75, EaseOut.Apply(0.5))
	assert.Equal(t, 0.875, EaseOutCubic.Apply(0.5))
	assert.Equal(t, 1.0, EaseOut.Apply(3))
	assert.Equal(t, 0.0, Linear.Apply(-1))
}

func TestScalar_StepReachesTargetAndFiresOnce(t *testing.T) {
	t0 := time.Unix(100, 0)
	s := NewScalar(0)
	fired := 0
	s.AnimateTo(10, t0, 100*time.Millisecond, Linear)
	s.OnDone(func() { fired++ })

	assert.True(t, s.Animating())
	assert.Equal(t, 0.0, s.Value(), "value only moves on Step")

	assert.True(t, s.Step(t0.Add(50*time.Millisecond)))
	assert.InDelta(t, 5.0, s.Value(), 1e-9)

	assert.False(t, s.Step(t0.Add(100*time.Millisecond)))
	assert.Equal(t, 10.0, s.Value())
	assert.Equal(t, 1, fired)

	assert.False(t, s.Step(t0.Add(time.Second)))
	assert.Equal(t, 1, fired)
}

func TestScalar_WarpDropsCallback(t *testing.T) {
	t0 := time.Unix(100, 0)
	s := NewScalar(1)
	s.AnimateTo(2, t0, time.Second, EaseOut)
	s.OnDone(func() { t.Fatal("callback must not fire after warp") })
	s.Warp(3)
	assert.False(t, s.Animating())
	assert.Equal(t, 3.0, s.Goal())
	s.Step(t0.Add(2 * time.Second))
	assert.Equal(t, 3.0, s.Value())
}

func TestScalar_ZeroDurationWarps(t *testing.T) {
	s := NewScalar(0)
	s.AnimateTo(4, time.Unix(0, 0), 0, Linear)
	assert.False(t, s.Animating())
	assert.Equal(t, 4.0, s.Value())
}

func TestScalar_CallbackMayRestart(t *testing.T) {
	t0 := time.Unix(0, 0)
	s := NewScalar(0)
	s.AnimateTo(1, t0, time.Millisecond, Linear)
	s.OnDone(func() { s.AnimateTo(0, t0.Add(time.Millisecond), time.Millisecond, Linear) })
	s.Step(t0.Add(time.Millisecond))
	assert.True(t, s.Animating())
	assert.Equal(t, 0.0, s.Goal())
}
