package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindows(t *testing.T) {
	out := "0\t@1\t0\t120\t40\t2\t1700000000\teditor\n" +
		"1\t@4\t1\t120\t40\t1\t1700000005\tlogs\tand more\n" +
		"garbage line\n" +
		"x\t@5\t0\t1\t1\t1\t0\tbad index\n" +
		"\n"

	windows := parseWindows(out)
	require.Len(t, windows, 2)
	assert.Equal(t, WindowInfo{Index: 0, ID: "@1", Name: "editor", Width: 120, Height: 40, Panes: 2, Activity: 1700000000}, windows[0])
	assert.Equal(t, "logs\tand more", windows[1].Name)
	assert.True(t, windows[1].Active)
}

func TestParsePanes(t *testing.T) {
	out := "%3\t1\t@4\t0\t0\t0\t60\t40\t1\t4242\tvim\tmain.go\n" +
		"%7\t1\t@4\t1\t61\t0\t59\t40\t0\t4243\tzsh\ttitle\twith tab\n" +
		"3\t1\t@4\t1\t61\t0\t59\t40\t0\t4243\tzsh\tno percent\n"

	panes := parsePanes(out)
	require.Len(t, panes, 2)
	assert.Equal(t, PaneInfo{
		ID: "%3", WindowIndex: 1, WindowID: "@4", Index: 0,
		Left: 0, Top: 0, Width: 60, Height: 40, Active: true,
		PID: 4242, Command: "vim", Title: "main.go",
	}, panes[0])
	assert.Equal(t, "title\twith tab", panes[1].Title)
	assert.Equal(t, 61, panes[1].Left)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, parseWindows(""))
	assert.Empty(t, parsePanes("\n\n"))
}
