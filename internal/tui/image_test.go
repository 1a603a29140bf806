package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

func testGrid() *mux.Grid {
	panes := []mux.PaneInfo{
		{ID: "%1", Width: 2, Height: 2, Active: true},
		{ID: "%2", Left: 3, Width: 1, Height: 2},
	}
	return mux.ComposeGrid(4, 2, panes, map[string]string{"%1": "ab\ncd", "%2": "x\ny"})
}

func TestGridImageOneToOne(t *testing.T) {
	pal := newPalette(DarkTheme())
	im := gridImage(testGrid(), 32, 32, pal)

	cols, rows := im.Cells()
	require.Equal(t, 4, cols)
	require.Equal(t, 2, rows)
	assert.Equal(t, "ab│x\ncd│y", im.Text())
	assert.Equal(t, pal.text, im.At(0, 0).FG, "active pane text")
	assert.Equal(t, pal.muted, im.At(3, 0).FG)
	assert.Equal(t, pal.border, im.At(2, 0).FG)
	assert.Equal(t, 1.0, im.At(1, 1).Alpha)
}

func TestGridImageReportsPixelSize(t *testing.T) {
	im := gridImage(testGrid(), 20, 20, newPalette(DarkTheme()))
	w, h := im.Size()
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h)
	assert.False(t, host.Degenerate(im))
}

func TestGridImageWithoutGrid(t *testing.T) {
	pal := newPalette(DarkTheme())
	im := gridImage(nil, 16, 16, pal)
	assert.Equal(t, pal.background, im.At(0, 0).BG)
}

func TestWideRunesAreSubstituted(t *testing.T) {
	assert.Equal(t, 'a', singleWidth('a'))
	assert.Equal(t, ' ', singleWidth(0))
	assert.Equal(t, wideSubstitute, singleWidth('日'))
}

func TestTextImageTruncates(t *testing.T) {
	im := textImage(host.TextRequest{Text: "hello world", Color: hostWhite, MaxWidth: 40})
	cols, rows := im.Cells()
	assert.LessOrEqual(t, cols, 5)
	assert.Equal(t, 1, rows)
	assert.True(t, strings.HasPrefix(im.Text(), "hell"))
	assert.Equal(t, 0.0, im.At(0, 0).Alpha, "text cells are glyph only")
}

func TestUploadImageAveragesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			a := uint8(0)
			if x < 8 {
				a = 255
			}
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: a})
		}
	}
	im := uploadImage(src)

	cols, rows := im.Cells()
	require.Equal(t, 2, cols)
	require.Equal(t, 1, rows)
	assert.InDelta(t, 1.0, im.At(0, 0).Alpha, 0.001)
	assert.InDelta(t, 1.0, im.At(0, 0).BG.R, 0.001)
	assert.Equal(t, 0.0, im.At(1, 0).Alpha)
}

func TestBackdropGradient(t *testing.T) {
	pal := newPalette(DarkTheme())
	im := backdropImage(80, 64, pal)
	assert.Equal(t, pal.backdropTop.Hex(), im.At(0, 0).BG.Hex())
	assert.Equal(t, pal.backdropBottom.Hex(), im.At(0, 3).BG.Hex())
}

func TestRenderKeepsText(t *testing.T) {
	im := gridImage(testGrid(), 32, 32, newPalette(DarkTheme()))
	assert.Equal(t, im.Text(), ansi.Strip(im.Render()))
}

func TestCellsFor(t *testing.T) {
	cols, rows := cellsFor(0, 10)
	assert.Zero(t, cols)
	assert.Zero(t, rows)
	cols, rows = cellsFor(3, 3)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
	cols, rows = cellsFor(800, 640)
	assert.Equal(t, 100, cols)
	assert.Equal(t, 40, rows)
}
