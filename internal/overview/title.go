package overview

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// Title pill geometry, in logical units.
const (
	titlePadX = 10
	titlePadY = 4
	titleGap  = 12
)

// titleText picks the label of a tile: the title of the last focused (or
// else the first) window, that window's class, then the workspace name.
func (s *Session) titleText(ws host.Workspace) string {
	w, ok := s.deps.Registry.LastFocusedWindow(ws.ID)
	if !ok {
		if wins := s.deps.Registry.Windows(ws.ID); len(wins) > 0 {
			w, ok = wins[0], true
		}
	}
	if ok {
		if w.Title != "" {
			return w.Title
		}
		if w.Class != "" {
			return w.Class
		}
	}
	if ws.Name != "" {
		return ws.Name
	}
	return fmt.Sprintf("Workspace %d", ws.ID)
}

func (s *Session) drawTitle(c host.Canvas, t *tile, mon host.Monitor, cfg *config.Config, a float64) {
	if !cfg.ShowWindowTitles {
		t.title = titleCache{}
		return
	}
	if a <= 0 || t.box.W <= 8 || t.box.H <= 8 {
		return
	}

	monScale := mon.Scale
	if monScale <= 0 {
		monScale = 1
	}
	text := s.titleText(t.ws)
	size := geom.ClampInt(cfg.TitleFontSize, 6, 64)
	maxPx := int(math.Max(64, math.Round(math.Max(64, mon.Size.X*0.9)*monScale)))

	if !t.title.matches(text, size, cfg.TitleFontFamily, maxPx) {
		img, err := s.deps.Renderer.RenderText(host.TextRequest{
			Text:       text,
			Color:      white,
			FontSize:   int(math.Round(float64(size) * monScale)),
			FontFamily: cfg.TitleFontFamily,
			MaxWidth:   maxPx,
		})
		if err != nil || host.Degenerate(img) {
			s.log.Debug("title render failed", zap.Int64("workspace", int64(t.ws.ID)), zap.Error(err))
			t.title = titleCache{}
			return
		}
		t.title = titleCache{text: text, size: size, family: cfg.TitleFontFamily, maxWidth: maxPx, image: img}
	}

	pw, ph := t.title.image.Size()
	w, h := float64(pw)/monScale, float64(ph)/monScale
	bgW, bgH := w+2*titlePadX, h+2*titlePadY
	pill := geom.Box{
		X: t.box.X + (t.box.W-bgW)/2,
		Y: t.box.Y + t.box.H + titleGap,
		W: bgW,
		H: bgH,
	}
	c.DrawRect(pill, black.WithAlpha(geom.Clamp(cfg.TitleBackgroundAlpha*a, 0, 1)), bgH/2)
	textBox := geom.Box{X: pill.X + titlePadX, Y: pill.Y + titlePadY, W: w, H: h}
	c.DrawImage(t.title.image, textBox, host.DrawOptions{Alpha: a, Damage: textBox})
}
