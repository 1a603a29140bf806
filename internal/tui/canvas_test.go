package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

var (
	hostBlack = host.Color{A: 1}
	hostWhite = host.Color{R: 1, G: 1, B: 1, A: 1}
)

func newTestCanvas(cols, rows int) (*Image, *Canvas) {
	im := NewImage(cols, rows, mux.CellSize)
	c := newCanvas(im)
	c.Clear(hostBlack)
	return im, c
}

func glyphImage(text string) *Image {
	im := NewImage(len([]rune(text)), 1, mux.CellSize)
	for i, r := range []rune(text) {
		im.Set(i, 0, Cell{Rune: r, FG: fromHost(hostWhite), BG: fromHost(hostBlack), Alpha: 1})
	}
	return im
}

func TestCanvasClear(t *testing.T) {
	im, c := newTestCanvas(3, 2)
	c.Clear(hostWhite)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, "#ffffff", im.At(x, y).BG.Hex())
			assert.Equal(t, ' ', im.At(x, y).Rune)
		}
	}
}

func TestCanvasDrawRectCoversCellCentres(t *testing.T) {
	im, c := newTestCanvas(4, 2)
	c.DrawRect(geom.Box{X: 8, Y: 0, W: 16, H: 16}, hostWhite, 0)

	assert.Equal(t, "#000000", im.At(0, 0).BG.Hex())
	assert.Equal(t, "#ffffff", im.At(1, 0).BG.Hex())
	assert.Equal(t, "#ffffff", im.At(2, 0).BG.Hex())
	assert.Equal(t, "#000000", im.At(3, 0).BG.Hex())
	assert.Equal(t, "#000000", im.At(1, 1).BG.Hex())
}

func TestCanvasDrawRectTranslucent(t *testing.T) {
	im, c := newTestCanvas(1, 1)
	c.DrawRect(geom.Box{W: 8, H: 16}, hostWhite.WithAlpha(0.5), 0)
	assert.InDelta(t, 0.5, im.At(0, 0).BG.R, 0.01)
}

func TestCanvasDrawRectRounded(t *testing.T) {
	im, c := newTestCanvas(10, 5)
	c.DrawRect(geom.Box{W: 80, H: 80}, hostWhite, 40)

	assert.Equal(t, "#000000", im.At(0, 0).BG.Hex(), "corner outside the radius")
	assert.Equal(t, "#ffffff", im.At(5, 2).BG.Hex())
}

func TestCanvasDrawImageSamplesNearest(t *testing.T) {
	im, c := newTestCanvas(4, 1)
	c.DrawImage(glyphImage("ab"), geom.Box{W: 32, H: 16}, host.DrawOptions{Alpha: 1})
	assert.Equal(t, "aabb", im.Text())
}

func TestCanvasDrawImageSourceCrop(t *testing.T) {
	im, c := newTestCanvas(4, 1)
	src := geom.Box{X: 0.5, Y: 0, W: 0.5, H: 1}
	c.DrawImage(glyphImage("ab"), geom.Box{W: 32, H: 16}, host.DrawOptions{Alpha: 1, Source: &src})
	assert.Equal(t, "bbbb", im.Text())
}

func TestCanvasDrawImageDamageClip(t *testing.T) {
	im, c := newTestCanvas(4, 1)
	c.DrawImage(glyphImage("abcd"), geom.Box{W: 32, H: 16}, host.DrawOptions{Alpha: 1, Damage: geom.Box{W: 8, H: 16}})
	assert.Equal(t, "a   ", im.Text())
}

func TestCanvasDrawImageFaintGlyphsKeepRune(t *testing.T) {
	im, c := newTestCanvas(2, 1)
	text := textImage(host.TextRequest{Text: "xy", Color: hostWhite})
	c.DrawImage(text, geom.Box{W: 16, H: 16}, host.DrawOptions{Alpha: 0.2})
	assert.Equal(t, "  ", im.Text())

	c.DrawImage(text, geom.Box{W: 16, H: 16}, host.DrawOptions{Alpha: 1})
	assert.Equal(t, "xy", im.Text())
	assert.Equal(t, "#000000", im.At(0, 0).BG.Hex(), "glyph-only cells keep the background")
}

type foreignImage struct{}

func (foreignImage) Size() (int, int) { return 8, 16 }

func TestCanvasIgnoresForeignImages(t *testing.T) {
	im, c := newTestCanvas(1, 1)
	c.DrawImage(foreignImage{}, geom.Box{W: 8, H: 16}, host.DrawOptions{Alpha: 1})
	assert.Equal(t, " ", im.Text())
}

func TestInsideRounded(t *testing.T) {
	b := geom.Box{W: 100, H: 100}
	assert.True(t, insideRounded(b, 0, geom.Vec{X: 1, Y: 1}))
	assert.False(t, insideRounded(b, 20, geom.Vec{X: 1, Y: 1}))
	assert.True(t, insideRounded(b, 20, geom.Vec{X: 50, Y: 1}))
	assert.False(t, insideRounded(b, 20, geom.Vec{X: 101, Y: 50}))
	require.True(t, insideRounded(b, 500, geom.Vec{X: 50, Y: 50}), "radius is capped at half the box")
}
