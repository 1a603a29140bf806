package overview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// builtinShadowSize is the edge length of the generated shadow texture.
const builtinShadowSize = 256

// shadowTexture is the image used by the texture shadow mode.
type shadowTexture struct {
	loaded   bool
	path     string
	image    host.Image
	disabled bool
	warned   bool
}

// shadowLayers are the (spread, alpha) multipliers of the fast mode.
var shadowLayers = [...]struct{ spread, alpha float64 }{
	{1.25, 0.35},
	{0.55, 1.0},
}

func (s *Session) drawShadow(c host.Canvas, box geom.Box, cfg *config.Config, corner, a float64) {
	if !cfg.CardShadow || cfg.CardShadowAlpha <= 0 || a <= 0 {
		return
	}
	size := math.Max(0, cfg.CardShadowSize)
	offset := geom.Vec{Y: cfg.CardShadowOffsetY}

	if cfg.CardShadowMode == config.ShadowTexture {
		s.refreshShadow(cfg)
		if s.shadow.disabled || s.shadow.image == nil {
			return
		}
		dst := box.Expand(size).Translate(offset)
		c.DrawImage(s.shadow.image, dst, host.DrawOptions{Alpha: cfg.CardShadowAlpha * a, Damage: dst})
		return
	}

	for _, l := range shadowLayers {
		spread := size * l.spread
		dst := box.Expand(spread).Translate(offset)
		c.DrawRect(dst, black.WithAlpha(cfg.CardShadowAlpha*l.alpha*a), corner+spread)
	}
}

// refreshShadow loads the shadow texture when the configured path changed.
// An unreadable file falls back to the generated texture; if that fails
// too, shadows stay off until the path changes.
func (s *Session) refreshShadow(cfg *config.Config) {
	path := strings.TrimSpace(cfg.CardShadowTexture)
	if s.shadow.loaded && s.shadow.path == path {
		return
	}
	warned := s.shadow.warned && s.shadow.path == path
	s.shadow = shadowTexture{loaded: true, path: path, warned: warned}

	if path != "" {
		var tex host.Image
		src, err := loadShadowPNG(path)
		if err == nil {
			tex, err = s.deps.Renderer.Upload(src)
		}
		if err == nil && !host.Degenerate(tex) {
			s.shadow.image = tex
			return
		}
		if err == nil {
			err = fmt.Errorf("shadow texture %s uploaded empty", path)
		}
		if !s.shadow.warned {
			s.shadow.warned = true
			s.log.Warn("shadow texture unusable, using builtin", zap.String("path", path), zap.Error(err))
		}
	}

	img, err := s.deps.Renderer.Upload(builtinShadow(builtinShadowSize))
	if err != nil || host.Degenerate(img) {
		s.log.Warn("builtin shadow texture failed, shadows disabled", zap.Error(err))
		s.shadow.disabled = true
		return
	}
	s.shadow.image = img
}

func loadShadowPNG(path string) (image.Image, error) {
	f, err := os.Open(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("opening shadow texture: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding shadow texture %s: %w", path, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("shadow texture %s is empty", path)
	}
	return img, nil
}

// expandHome replaces a leading ~ with $HOME.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := os.Getenv("HOME")
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// builtinShadow generates a square black texture that is opaque in the
// middle and fades out quadratically over the outer quarter.
func builtinShadow(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	edge := float64(size) / 4
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			dx := math.Max(0, math.Max(edge-fx, fx-(float64(size)-edge)))
			dy := math.Max(0, math.Max(edge-fy, fy-(float64(size)-edge)))
			d := geom.Clamp(math.Hypot(dx, dy)/edge, 0, 1)
			u := 1 - d
			img.SetNRGBA(x, y, color.NRGBA{A: uint8(math.Round(255 * u * u))})
		}
	}
	return img
}
