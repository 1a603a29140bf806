package mux

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// NoPane marks grid cells that belong to no pane (borders and gaps).
const NoPane = -1

// Cell is one terminal cell of a Grid. Rune is 0 for the second half of a
// wide character.
type Cell struct {
	Rune rune
	Pane int // index into Grid.Panes, or NoPane
}

// Grid is the visible content of one tmux window assembled from its panes.
type Grid struct {
	Width, Height int
	Cells         []Cell // row major
	Panes         []PaneInfo
}

// At returns the cell at x, y. Out of range positions read as blank border.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return Cell{Rune: ' ', Pane: NoPane}
	}
	return g.Cells[y*g.Width+x]
}

// Line returns row y as plain text.
func (g *Grid) Line(y int) string {
	var b strings.Builder
	for x := 0; x < g.Width; x++ {
		if r := g.At(x, y).Rune; r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (g *Grid) set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Cells[y*g.Width+x] = c
}

// ComposeGrid lays the captured content of panes out on a width x height
// grid. content maps pane IDs to capture-pane output. Cells between panes
// become box-drawing borders.
func ComposeGrid(width, height int, panes []PaneInfo, content map[string]string) *Grid {
	width, height = max(0, width), max(0, height)
	g := &Grid{Width: width, Height: height, Cells: make([]Cell, width*height), Panes: panes}
	for i := range g.Cells {
		g.Cells[i] = Cell{Rune: ' ', Pane: NoPane}
	}

	for i, p := range panes {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				g.set(p.Left+x, p.Top+y, Cell{Rune: ' ', Pane: i})
			}
		}
		lines := strings.Split(strings.TrimRight(content[p.ID], "\n"), "\n")
		for y := 0; y < p.Height && y < len(lines); y++ {
			g.writeLine(p.Left, p.Top+y, p.Width, i, lines[y])
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if g.At(x, y).Pane == NoPane {
				g.set(x, y, Cell{Rune: g.borderRune(x, y), Pane: NoPane})
			}
		}
	}
	return g
}

func (g *Grid) writeLine(left, y, width, pane int, line string) {
	line = strings.ReplaceAll(ansi.Strip(line), "\t", " ")
	line = ansi.Truncate(line, width, "")
	x := 0
	for _, r := range line {
		if r < 0x20 || r == 0x7f {
			continue
		}
		w := ansi.StringWidth(string(r))
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		g.set(left+x, y, Cell{Rune: r, Pane: pane})
		if w == 2 {
			g.set(left+x+1, y, Cell{Rune: 0, Pane: pane})
		}
		x += w
	}
}

func (g *Grid) borderRune(x, y int) rune {
	horiz := g.At(x-1, y).Pane != NoPane || g.At(x+1, y).Pane != NoPane
	vert := g.At(x, y-1).Pane != NoPane || g.At(x, y+1).Pane != NoPane
	switch {
	case horiz && vert:
		return '┼'
	case horiz:
		return '│'
	case vert:
		return '─'
	}
	return ' '
}
