package overview

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/anim"
	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/layout"
)

// scaleDoneThreshold is how close to full size the closing zoom has to be
// before the final crossfade starts.
const scaleDoneThreshold = 0.995

// dropDelay defers teardown so the host renders one more frame first.
const dropDelay = time.Millisecond

// Close starts the closing transition. It is a no-op while already closing.
func (s *Session) Close() {
	if s.closing || s.dropped {
		return
	}
	now := s.deps.Clock.Now()
	s.closing = true
	s.closeStartedAt = now
	s.closeAnimFinishedAt = time.Time{}
	s.handoffActive = false
	s.finalCrossfade = false
	s.overlayAlpha = 1
	s.openAnimPending = false
	s.drag.clear()
	s.scrollAcc = 0
	s.cancelDrop()

	s.log.Info("overview closing", zap.Int64("workspace", s.currentWorkspaceID()))
	s.deps.Metrics.RecordSession(s.ctx, "closed")

	if len(s.tiles) == 0 {
		s.scheduleDrop()
		return
	}
	s.offset.Warp(0)
	if s.transit {
		s.scheduleDrop()
		return
	}

	d := s.cfg().AnimationDuration()
	s.cross.AnimateTo(0, now, d, anim.EaseOutCubic)
	s.scale.AnimateTo(1, now, d, anim.EaseOutCubic)
	s.scale.OnDone(func() {
		if s.closing && s.closeAnimFinishedAt.IsZero() {
			s.closeAnimFinishedAt = s.deps.Clock.Now()
		}
	})
	s.damage()
}

// Reopen cancels a close in progress and runs the opening transition
// again. Only a closing overview can be reopened.
func (s *Session) Reopen() {
	if !s.closing || s.dropped || s.transit {
		return
	}
	now := s.deps.Clock.Now()
	cfg := s.cfg()

	s.closing = false
	s.closeStartedAt = time.Time{}
	s.closeAnimFinishedAt = time.Time{}
	s.handoffActive = false
	s.finalCrossfade = false
	s.overlayAlpha = 1
	s.cancelDrop()

	d := cfg.AnimationDuration()
	s.offset.AnimateTo(0, now, d, anim.EaseOutCubic)
	s.cross.AnimateTo(cfg.CenterOffset, now, d, anim.EaseOutCubic)
	s.scale.AnimateTo(layout.ClampScale(cfg.DisplayScale, cfg.DisplayScale), now, d, anim.EaseOutCubic)
	s.openAnimPending = false
	s.damageDirty = true

	s.log.Info("overview reopened")
	s.deps.Metrics.RecordSession(s.ctx, "reopened")
	s.damage()
}

func (s *Session) currentWorkspaceID() int64 {
	if s.current >= 0 && s.current < len(s.tiles) {
		return int64(s.tiles[s.current].ws.ID)
	}
	return -1
}

// handoffAlpha is the overlay alpha while the live frame shows through.
func handoffAlpha(scale float64, cfg *config.Config) float64 {
	start := cfg.AsyncCloseFadeStart
	t := (geom.Clamp(scale, start, 1) - start) / math.Max(0.001, 1-start)
	if cfg.AsyncCloseFadeCurve == config.FadeEaseOut {
		t = anim.EaseOut.Apply(t)
	}
	lo := geom.Clamp(cfg.AsyncCloseMinAlpha, 0, 1)
	return geom.Clamp(1-(1-lo)*t, lo, 1)
}

// advanceClose runs one tick of the closing transition.
func (s *Session) advanceClose(now time.Time, cfg *config.Config) {
	s.overlayAlpha = 1
	if cfg.AsyncCloseHandoff && s.scale.Value() >= cfg.AsyncCloseFadeStart {
		s.handoffActive = true
	}
	if s.handoffActive {
		s.overlayAlpha = handoffAlpha(s.scale.Value(), cfg)
	}

	scaleDone := !s.scale.Animating() && s.scale.Value() >= scaleDoneThreshold
	if scaleDone && s.closeAnimFinishedAt.IsZero() {
		s.closeAnimFinishedAt = now
	}
	if !s.closeAnimFinishedAt.IsZero() {
		if !s.finalCrossfade {
			s.finalCrossfade = true
			s.finalCrossfadeAt = now
			s.finalCrossfadeAlpha = s.overlayAlpha
		}
		fade := cfg.CloseDropDelay()
		elapsed := now.Sub(s.finalCrossfadeAt)
		if fade <= 0 || elapsed >= fade {
			s.overlayAlpha = 0
			s.scheduleDrop()
			return
		}
		t := anim.EaseOut.Apply(float64(elapsed) / float64(fade))
		s.overlayAlpha = s.finalCrossfadeAlpha * (1 - t)
	}

	if now.Sub(s.closeStartedAt) >= cfg.CloseHardTimeout() {
		s.log.Warn("close transition timed out, dropping overview",
			zap.Duration("elapsed", now.Sub(s.closeStartedAt)))
		s.scheduleDrop()
		return
	}
	s.damage()
}

// scheduleDrop arms the teardown timer once.
func (s *Session) scheduleDrop() {
	if s.dropScheduled || s.dropped {
		return
	}
	s.dropScheduled = true
	s.dropTimer = s.deps.Timers.AfterFunc(dropDelay, s.destroy)
	s.damage()
}

func (s *Session) cancelDrop() {
	if s.dropTimer != nil {
		s.dropTimer.Stop()
		s.dropTimer = nil
	}
	s.dropScheduled = false
}

// destroy tears the session down. Tile images go back into the snapshot
// cache for the next session.
func (s *Session) destroy() {
	if s.dropped {
		return
	}
	s.dropped = true
	s.cancelDrop()
	s.saveTiles()
	if s.deps.Cache != nil {
		s.deps.Cache.Prune()
	}
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.deps.Renderer.Damage(s.monitor)
	s.deps.Renderer.ScheduleFrame(s.monitor)
	s.deps.Metrics.RecordSession(s.ctx, "dropped")
	s.log.Info("overview dropped")
	if s.deps.OnDrop != nil {
		s.deps.OnDrop(s)
	}
}
