package overview

import (
	"math"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// backdrop is the blurred, tinted desktop background drawn behind the tiles.
type backdrop struct {
	image host.Image
}

// blurTap is one sample of the directional blur kernel.
type blurTap struct {
	dir    geom.Vec
	weight float64
}

// blurKernel is the centre, an inner ring at 0.55 of the radius (0.39 on
// the diagonals) and an outer ring at the full radius. Weights sum to 1.
var blurKernel = []blurTap{
	{geom.Vec{}, 0.20},

	{geom.Vec{X: 0.55}, 0.07},
	{geom.Vec{X: -0.55}, 0.07},
	{geom.Vec{Y: 0.55}, 0.07},
	{geom.Vec{Y: -0.55}, 0.07},
	{geom.Vec{X: 0.39, Y: 0.39}, 0.05},
	{geom.Vec{X: -0.39, Y: 0.39}, 0.05},
	{geom.Vec{X: 0.39, Y: -0.39}, 0.05},
	{geom.Vec{X: -0.39, Y: -0.39}, 0.05},

	{geom.Vec{X: 1}, 0.055},
	{geom.Vec{X: -1}, 0.055},
	{geom.Vec{Y: 1}, 0.055},
	{geom.Vec{Y: -1}, 0.055},
	{geom.Vec{X: 0.7071, Y: 0.7071}, 0.025},
	{geom.Vec{X: -0.7071, Y: 0.7071}, 0.025},
	{geom.Vec{X: 0.7071, Y: -0.7071}, 0.025},
	{geom.Vec{X: -0.7071, Y: -0.7071}, 0.025},
}

// captureBackground renders the monitor background once, blurred and
// tinted, in device pixels. Failures leave the session on a black clear.
func (s *Session) captureBackground(mon host.Monitor, cfg *config.Config) {
	s.bg = backdrop{}
	px := mon.PixelSize()
	w, h := max(1, int(math.Round(px.X))), max(1, int(math.Round(px.Y)))
	raw, err := s.deps.Renderer.CaptureBackground(mon.ID, w, h)
	if err != nil || host.Degenerate(raw) {
		s.log.Debug("background capture unavailable", zap.Error(err))
		return
	}

	scale := mon.Scale
	if scale <= 0 {
		scale = 1
	}
	radius := cfg.BackgroundBlurRadius * scale
	full := geom.Box{W: float64(w), H: float64(h)}
	blur := radius > 0 && cfg.BackgroundBlurPasses > 0 && cfg.BackgroundBlurStrength > 0

	img, err := s.deps.Renderer.Compose(w, h, func(c host.Canvas) {
		c.Clear(black)
		if !blur {
			c.DrawImage(raw, full, host.DrawOptions{Alpha: 1, Damage: full})
		} else {
			spread := math.Max(0.25, cfg.BackgroundBlurSpread)
			for pass := 0; pass < cfg.BackgroundBlurPasses; pass++ {
				r := radius * (1 + float64(pass)*spread)
				for _, tap := range blurKernel {
					alpha := geom.Clamp(tap.weight*cfg.BackgroundBlurStrength, 0, 1)
					c.DrawImage(raw, full.Translate(tap.dir.Scale(r)), host.DrawOptions{Alpha: alpha, Damage: full})
				}
			}
		}
		if tint := geom.Clamp(cfg.BackgroundTint, 0, 1); tint > 0 {
			c.DrawRect(full, black.WithAlpha(tint), 0)
		}
	})
	if err != nil || host.Degenerate(img) {
		s.log.Debug("background compose failed", zap.Error(err))
		return
	}
	s.bg.image = img
}
