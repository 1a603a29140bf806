package tui

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

// wideSubstitute replaces runes that do not occupy exactly one cell, which
// would otherwise shift every following cell of the row.
const wideSubstitute = '#'

// Cell is one terminal cell of an Image.
type Cell struct {
	Rune  rune
	FG    colorful.Color
	BG    colorful.Color
	Alpha float64 // coverage of BG; 0 for glyph-only cells
}

func (c Cell) glyph() bool { return c.Rune != ' ' && c.Rune != 0 }

// Image is a rectangle of cells. It implements host.Image; its reported
// size is in device pixels, each cell standing for px pixels.
type Image struct {
	cols, rows int
	px         geom.Vec
	cells      []Cell
}

// NewImage returns a blank, fully transparent image.
func NewImage(cols, rows int, px geom.Vec) *Image {
	cols, rows = max(0, cols), max(0, rows)
	im := &Image{cols: cols, rows: rows, px: px, cells: make([]Cell, cols*rows)}
	for i := range im.cells {
		im.cells[i].Rune = ' '
	}
	return im
}

func (im *Image) Size() (w, h int) {
	return int(math.Round(float64(im.cols) * im.px.X)), int(math.Round(float64(im.rows) * im.px.Y))
}

// Cells returns the image dimensions in cells.
func (im *Image) Cells() (cols, rows int) { return im.cols, im.rows }

// At returns the cell at x, y, clamped to the image.
func (im *Image) At(x, y int) Cell {
	if im.cols == 0 || im.rows == 0 {
		return Cell{Rune: ' '}
	}
	x = geom.ClampInt(x, 0, im.cols-1)
	y = geom.ClampInt(y, 0, im.rows-1)
	return im.cells[y*im.cols+x]
}

func (im *Image) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= im.cols || y >= im.rows {
		return
	}
	im.cells[y*im.cols+x] = c
}

// Text returns the runes of the image, one line per row.
func (im *Image) Text() string {
	var b strings.Builder
	for y := 0; y < im.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < im.cols; x++ {
			r := im.At(x, y).Rune
			if r == 0 {
				r = ' '
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render draws the image as styled terminal lines. Runs of cells sharing
// colors are rendered with one style.
func (im *Image) Render() string {
	var b strings.Builder
	var run strings.Builder
	var fg, bg string
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
		b.WriteString(style.Render(run.String()))
		run.Reset()
	}
	for y := 0; y < im.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		fg, bg = "", ""
		for x := 0; x < im.cols; x++ {
			c := im.At(x, y)
			f, g := c.FG.Clamped().Hex(), c.BG.Clamped().Hex()
			if f != fg || g != bg {
				flush()
				fg, bg = f, g
			}
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			run.WriteRune(r)
		}
		flush()
	}
	return b.String()
}

// cellsFor converts a pixel size to whole cells.
func cellsFor(w, h int) (cols, rows int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return max(1, int(math.Round(float64(w)/mux.CellSize.X))), max(1, int(math.Round(float64(h)/mux.CellSize.Y)))
}

// pixelsPerCell returns the pixel size of one cell of a cols x rows image
// covering w x h pixels.
func pixelsPerCell(w, h, cols, rows int) geom.Vec {
	if cols == 0 || rows == 0 {
		return mux.CellSize
	}
	return geom.Vec{X: float64(w) / float64(cols), Y: float64(h) / float64(rows)}
}

func singleWidth(r rune) rune {
	if r == 0 {
		return ' '
	}
	if ansi.StringWidth(string(r)) != 1 {
		return wideSubstitute
	}
	return r
}

// gridImage resamples a captured tmux window to a w x h pixel image.
func gridImage(g *mux.Grid, w, h int, pal palette) *Image {
	cols, rows := cellsFor(w, h)
	im := NewImage(cols, rows, pixelsPerCell(w, h, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell := Cell{Rune: ' ', FG: pal.muted, BG: pal.background, Alpha: 1}
			if g != nil && g.Width > 0 && g.Height > 0 {
				src := g.At((2*x+1)*g.Width/(2*cols), (2*y+1)*g.Height/(2*rows))
				cell.Rune = singleWidth(src.Rune)
				switch {
				case src.Pane == mux.NoPane:
					cell.FG = pal.border
				case g.Panes[src.Pane].Active:
					cell.FG = pal.text
				}
			}
			im.Set(x, y, cell)
		}
	}
	return im
}

// backdropImage paints the terminal's stand-in for a desktop background: a
// vertical gradient between the two backdrop colors.
func backdropImage(w, h int, pal palette) *Image {
	cols, rows := cellsFor(w, h)
	im := NewImage(cols, rows, pixelsPerCell(w, h, cols, rows))
	for y := 0; y < rows; y++ {
		t := 0.0
		if rows > 1 {
			t = float64(y) / float64(rows-1)
		}
		col := pal.backdropTop.BlendLab(pal.backdropBottom, t).Clamped()
		for x := 0; x < cols; x++ {
			im.Set(x, y, Cell{Rune: ' ', FG: col, BG: col, Alpha: 1})
		}
	}
	return im
}

// textImage renders req as a single row of glyph-only cells.
func textImage(req host.TextRequest) *Image {
	maxCols := int(float64(req.MaxWidth) / mux.CellSize.X)
	text := req.Text
	if maxCols > 0 {
		text = ansi.Truncate(text, maxCols, "…")
	}
	runes := []rune(ansi.Strip(text))
	im := NewImage(len(runes), 1, mux.CellSize)
	fg := fromHost(req.Color)
	for i, r := range runes {
		if r < 0x20 {
			r = ' '
		}
		im.Set(i, 0, Cell{Rune: singleWidth(r), FG: fg})
	}
	return im
}

// uploadImage averages src over cell-sized blocks.
func uploadImage(src image.Image) *Image {
	b := src.Bounds()
	cols, rows := cellsFor(b.Dx(), b.Dy())
	im := NewImage(cols, rows, pixelsPerCell(b.Dx(), b.Dy(), cols, rows))
	for cy := 0; cy < rows; cy++ {
		y0, y1 := b.Min.Y+cy*b.Dy()/rows, b.Min.Y+(cy+1)*b.Dy()/rows
		for cx := 0; cx < cols; cx++ {
			x0, x1 := b.Min.X+cx*b.Dx()/cols, b.Min.X+(cx+1)*b.Dx()/cols
			var r, g, bl, a, n float64
			for y := y0; y < max(y1, y0+1); y++ {
				for x := x0; x < max(x1, x0+1); x++ {
					pr, pg, pb, pa := src.At(x, y).RGBA()
					r += float64(pr)
					g += float64(pg)
					bl += float64(pb)
					a += float64(pa)
					n++
				}
			}
			cell := Cell{Rune: ' '}
			if a > 0 {
				// RGBA is premultiplied; dividing by the summed alpha
				// recovers the straight color.
				cell.BG = colorful.Color{R: r / a, G: g / a, B: bl / a}.Clamped()
				cell.FG = cell.BG
				cell.Alpha = a / (n * 0xffff)
			}
			im.Set(cx, cy, cell)
		}
	}
	return im
}
