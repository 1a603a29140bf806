package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeGridSplitsPanes(t *testing.T) {
	panes := []PaneInfo{
		{ID: "%1", Left: 0, Top: 0, Width: 4, Height: 2},
		{ID: "%2", Left: 5, Top: 0, Width: 3, Height: 2},
	}
	g := ComposeGrid(8, 2, panes, map[string]string{
		"%1": "abcdef\nxy\n",
		"%2": "123\n",
	})

	assert.Equal(t, "abcd│123", g.Line(0))
	assert.Equal(t, "xy  │   ", g.Line(1))
	assert.Equal(t, 0, g.At(1, 0).Pane)
	assert.Equal(t, NoPane, g.At(4, 0).Pane)
	assert.Equal(t, 1, g.At(7, 1).Pane)
}

func TestComposeGridHorizontalBorder(t *testing.T) {
	panes := []PaneInfo{
		{ID: "%1", Left: 0, Top: 0, Width: 3, Height: 1},
		{ID: "%2", Left: 0, Top: 2, Width: 3, Height: 1},
	}
	g := ComposeGrid(3, 3, panes, nil)
	assert.Equal(t, "───", g.Line(1))
}

func TestComposeGridStripsEscapes(t *testing.T) {
	panes := []PaneInfo{{ID: "%1", Width: 6, Height: 1}}
	g := ComposeGrid(6, 1, panes, map[string]string{"%1": "\x1b[31mred\x1b[0m\tx"})
	assert.Equal(t, "red x ", g.Line(0))
}

func TestComposeGridWideRunes(t *testing.T) {
	panes := []PaneInfo{{ID: "%1", Width: 3, Height: 1}}
	g := ComposeGrid(3, 1, panes, map[string]string{"%1": "日本"})

	assert.Equal(t, '日', g.At(0, 0).Rune)
	assert.Equal(t, rune(0), g.At(1, 0).Rune)
	// The second wide rune does not fit in the remaining cell.
	assert.Equal(t, ' ', g.At(2, 0).Rune)
}

func TestGridAtOutOfRange(t *testing.T) {
	g := ComposeGrid(2, 2, nil, nil)
	assert.Equal(t, Cell{Rune: ' ', Pane: NoPane}, g.At(-1, 0))
	assert.Equal(t, Cell{Rune: ' ', Pane: NoPane}, g.At(2, 2))
}
