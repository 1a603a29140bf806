package overview

import (
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/layout"
)

// Capture reasons, used as the metrics "reason" attribute.
const (
	reasonDamage  = "damage"
	reasonVisible = "visible"
	reasonLive    = "live"
	reasonFocus   = "focus"
	reasonPrewarm = "prewarm"
	reasonTransit = "transit"
)

// captureSize is the offscreen size of a workspace capture in pixels.
func captureSize(mon host.Monitor, cfg *config.Config) (int, int) {
	scale := cfg.CaptureScale
	if !(scale > 0) {
		scale = 1
	}
	px := mon.PixelSize().Scale(scale)
	return max(1, int(math.Round(px.X))), max(1, int(math.Round(px.Y)))
}

// captureTile renders the workspace of tile idx offscreen. A failed or
// degenerate capture leaves the tile as it was and reports false.
func (s *Session) captureTile(idx int, reason string) bool {
	if idx < 0 || idx >= len(s.tiles) {
		return false
	}
	mon, ok := s.monitorInfo()
	if !ok {
		return false
	}
	t := s.tiles[idx]
	w, h := captureSize(mon, s.cfg())

	ctx, span := s.deps.Tracer.Start(s.ctx, "overview.capture", trace.WithAttributes(
		attribute.Int64("workspace.id", int64(t.ws.ID)),
		attribute.String("capture.reason", reason),
	))
	defer span.End()

	start := s.deps.Clock.Now()
	img, err := s.deps.Renderer.CaptureWorkspace(host.CaptureRequest{
		Monitor:   s.monitor,
		Workspace: t.ws.ID,
		Width:     w,
		Height:    h,
	})
	if err == nil && host.Degenerate(img) {
		err = errDegenerateCapture
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.deps.Metrics.RecordCaptureFailure(ctx, reason)
		s.log.Debug("capture failed",
			zap.Int64("workspace", int64(t.ws.ID)),
			zap.String("reason", reason),
			zap.Error(err))
		return false
	}

	now := s.deps.Clock.Now()
	t.setCapture(img, now)
	s.deps.Metrics.RecordCapture(ctx, reason, now.Sub(start))
	return true
}

// prewarm captures every tile that has neither a capture nor a cached image.
func (s *Session) prewarm() {
	for i, t := range s.tiles {
		if !t.captured && t.cached == nil {
			s.captureTile(i, reasonPrewarm)
		}
	}
	s.pendingCapture = false
}

// captureBudget tracks the optional captures allowed in one tick.
type captureBudget struct {
	clock    host.Clock
	start    time.Time
	limit    time.Duration
	maxCount int
	count    int
}

func (b *captureBudget) exhausted() bool {
	if b.count >= b.maxCount {
		return true
	}
	return b.limit > 0 && b.clock.Now().Sub(b.start) >= b.limit
}

func (b *captureBudget) spend() { b.count++ }

// scheduleCaptures is the per-tick capture pass of an active session.
func (s *Session) scheduleCaptures(mon host.Monitor, cfg *config.Config) {
	forced := false
	if s.damageDirty {
		s.damageDirty = false
		if s.captureTile(s.current, reasonDamage) {
			forced = true
			s.damage()
		}
	}

	budget := &captureBudget{
		clock:    s.deps.Clock,
		start:    s.deps.Clock.Now(),
		limit:    cfg.CaptureBudget(),
		maxCount: max(0, cfg.MaxCapturesPerFrame),
	}

	captured := 0
	if s.pendingCapture {
		failed := map[int]bool{}
		for !budget.exhausted() {
			idx := s.nearestUncaptured(mon, failed)
			if idx < 0 {
				break
			}
			budget.spend()
			if s.captureTile(idx, reasonVisible) {
				captured++
			} else {
				failed[idx] = true
			}
		}
		s.pendingCapture = s.nearestUncaptured(mon, nil) >= 0
		if s.pendingCapture {
			s.deps.Renderer.ScheduleFrame(s.monitor)
		}
	}

	if !forced && captured == 0 && !s.pendingCapture && !budget.exhausted() {
		if idx := s.livePreviewTarget(mon, cfg); idx >= 0 && s.captureTile(idx, reasonLive) {
			captured++
		}
	}

	if forced || captured > 0 {
		s.damage()
	}
	if cfg.LivePreviewFPS > 0 {
		// Keep ticking so stale tiles get their rolling refresh.
		s.deps.Renderer.ScheduleFrame(s.monitor)
	}
}

// nearestUncaptured returns the on-screen uncaptured tile closest to the
// current index, skipping indices in skip, or -1.
func (s *Session) nearestUncaptured(mon host.Monitor, skip map[int]bool) int {
	best, bestDist := -1, 0
	for i, t := range s.tiles {
		if t.captured || skip[i] || !layout.OnScreen(t.box, mon.Size) {
			continue
		}
		d := i - s.current
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// livePreviewTarget picks the stalest captured, visible, non-current tile
// that is due for a refresh, or -1.
func (s *Session) livePreviewTarget(mon host.Monitor, cfg *config.Config) int {
	if cfg.LivePreviewFPS <= 0 {
		return -1
	}
	interval := time.Duration(float64(time.Second) / float64(cfg.LivePreviewFPS))
	now := s.deps.Clock.Now()
	best := -1
	for i, t := range s.tiles {
		if i == s.current || !t.captured || !layout.OnScreen(t.box, mon.Size) {
			continue
		}
		if r := cfg.LivePreviewRadius; r > 0 && absInt(i-s.current) > r {
			continue
		}
		if now.Sub(t.lastCaptureAt) < interval {
			continue
		}
		if best < 0 || t.lastCaptureAt.Before(s.tiles[best].lastCaptureAt) {
			best = i
		}
	}
	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
