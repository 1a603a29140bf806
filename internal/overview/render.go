package overview

import (
	"math"

	"github.com/timvw/horza/internal/anim"
	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/layout"
)

var (
	black = host.Color{A: 1}
	white = host.Color{R: 1, G: 1, B: 1, A: 1}
)

// Minimum size of the drag ghost, in logical units.
const (
	ghostMinW = 24
	ghostMinH = 18
)

// Render queues at most one draw pass per frame. A session whose drop is
// already scheduled is torn down instead.
func (s *Session) Render() {
	if s.dropped {
		return
	}
	if s.dropScheduled {
		s.destroy()
		return
	}
	if s.passQueued {
		return
	}
	s.passQueued = true
	s.deps.Renderer.Submit(s.monitor, s.draw)
}

// draw renders the whole overview into c.
func (s *Session) draw(c host.Canvas) {
	if s.dropped {
		return
	}
	mon, ok := s.monitorInfo()
	if !ok {
		return
	}
	cfg := s.cfg()

	if s.openAnimPending && !s.closing {
		s.startOpenAnimation(cfg)
	}
	s.layoutTiles(mon, cfg)

	a := geom.Clamp(s.overlayAlpha, 0, 1)
	underlay := s.closing && (s.handoffActive || s.finalCrossfade)
	s.drawBackground(c, mon, a, underlay)

	corner := math.Max(0, cfg.CornerRadius)
	visibleUncaptured := false
	for i, t := range s.tiles {
		box := t.box
		if box.W <= 0 || box.H <= 0 {
			continue
		}
		onScreen := layout.OnScreen(box, mon.Size)
		img := t.texture()
		if host.Degenerate(img) {
			if img != nil {
				t.invalidate()
			}
			if onScreen {
				visibleUncaptured = true
			}
			continue
		}
		if !t.captured && onScreen {
			visibleUncaptured = true
		}
		if !onScreen {
			continue
		}

		if !s.transit {
			s.drawShadow(c, box, cfg, corner, a)
		}
		c.DrawImage(img, box, host.DrawOptions{Alpha: a, Round: corner, Damage: box})
		if s.drag.dragging && i == s.drag.target && i != s.drag.source {
			s.drawDropRing(c, box, corner, a)
		}
		if !s.transit {
			s.drawTitle(c, t, mon, cfg, a)
		}
	}
	if !s.transit {
		s.drawGhost(c, mon, corner, a)
	}
	s.pendingCapture = visibleUncaptured
}

// startOpenAnimation zooms from full size to the display scale.
func (s *Session) startOpenAnimation(cfg *config.Config) {
	s.openAnimPending = false
	now := s.deps.Clock.Now()
	d := cfg.AnimationDuration()
	s.scale.AnimateTo(layout.ClampScale(cfg.DisplayScale, cfg.DisplayScale), now, d, anim.EaseOutCubic)
	s.cross.AnimateTo(cfg.CenterOffset, now, d, anim.EaseOutCubic)
	s.offset.AnimateTo(0, now, d, anim.EaseOutCubic)
	s.deps.Renderer.ScheduleFrame(s.monitor)
}

func (s *Session) drawBackground(c host.Canvas, mon host.Monitor, a float64, underlay bool) {
	full := geom.BoxAt(geom.Vec{}, mon.Size)
	switch {
	case s.bg.image != nil && !s.transit:
		alpha := 1.0
		if underlay {
			alpha = a
		}
		c.DrawImage(s.bg.image, full, host.DrawOptions{Alpha: alpha, Damage: full})
	case underlay:
		c.DrawRect(full, black.WithAlpha(a), 0)
	default:
		c.Clear(black)
	}
}

func (s *Session) drawDropRing(c host.Canvas, box geom.Box, corner, a float64) {
	scale := s.scale.Value()
	c.DrawRect(box.Expand(2), white.WithAlpha(0.20*a), corner+math.Max(1, 2*scale))
	c.DrawRect(box, white.WithAlpha(0.10*a), corner)
}

// drawGhost draws the dragged window under the pointer, cropped out of its
// source tile.
func (s *Session) drawGhost(c host.Canvas, mon host.Monitor, corner, a float64) {
	d := s.drag
	if !d.dragging || !d.hasWindow || d.source < 0 || d.source >= len(s.tiles) {
		return
	}
	img := s.tiles[d.source].texture()
	if host.Degenerate(img) || mon.Size.X <= 0 || mon.Size.Y <= 0 {
		return
	}

	ref := s.current
	switch {
	case d.target >= 0 && d.target < len(s.tiles):
		ref = d.target
	case d.source >= 0:
		ref = d.source
	}
	refBox := s.tiles[ref].box
	if refBox.Empty() {
		return
	}
	sc := refBox.W / mon.Size.X

	size := geom.Vec{
		X: math.Max(ghostMinW, d.winSize.X*sc),
		Y: math.Max(ghostMinH, d.winSize.Y*sc),
	}
	pos := s.pointer.Sub(d.grab.Scale(sc))
	dst := geom.BoxAt(pos, size)

	x0 := geom.Clamp(d.winPos.X/mon.Size.X, 0, 1)
	y0 := geom.Clamp(d.winPos.Y/mon.Size.Y, 0, 1)
	x1 := geom.Clamp((d.winPos.X+d.winSize.X)/mon.Size.X, 0, 1)
	y1 := geom.Clamp((d.winPos.Y+d.winSize.Y)/mon.Size.Y, 0, 1)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	src := geom.Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	c.DrawImage(img, dst, host.DrawOptions{
		Alpha:  a,
		Round:  math.Max(corner, 8),
		Damage: dst,
		Source: &src,
	})
}
