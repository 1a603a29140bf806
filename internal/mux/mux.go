// Package mux connects horza to tmux. It is pure transport: it lists the
// windows and panes of the current session, captures pane content and
// performs the few mutations the overview needs (switch window, focus
// pane, move pane).
//
// tmux windows are exposed to the overview as workspaces of a single
// monitor, and panes as the windows living on those workspaces.
package mux

import (
	"context"

	"github.com/timvw/horza/internal/geom"
)

// CellSize is the logical size of one terminal cell. Monitor and pane
// geometry handed to the overview is measured in these units.
var CellSize = geom.Vec{X: 8, Y: 16}

// Client abstracts the tmux commands the registry needs.
// Tmux is the real implementation; tests supply their own.
type Client interface {
	// Name returns the multiplexer name (e.g., "tmux").
	Name() string

	// CurrentSession returns the name of the session horza runs in.
	CurrentSession(ctx context.Context) (string, error)
	ListWindows(ctx context.Context, session string) ([]WindowInfo, error)
	// ListPanes returns every pane of every window in session.
	ListPanes(ctx context.Context, session string) ([]PaneInfo, error)
	// CapturePane returns the visible content of a pane, one line per row.
	CapturePane(ctx context.Context, pane string) (string, error)

	SelectWindow(ctx context.Context, window string) error
	SelectPane(ctx context.Context, pane string) error
	// JoinPane moves pane into window without changing the active window.
	JoinPane(ctx context.Context, pane, window string) error
}

// WindowInfo is one line of list-windows.
type WindowInfo struct {
	Index    int
	ID       string // "@3", stable for the lifetime of the window
	Name     string
	Active   bool
	Width    int
	Height   int
	Panes    int
	// Activity is the unix time of the last output in the window.
	Activity int64
}

// PaneInfo is one line of list-panes.
type PaneInfo struct {
	ID          string // "%5"
	WindowIndex int
	WindowID    string
	Index       int
	Left, Top   int
	Width       int
	Height      int
	Active      bool
	PID         int
	Command     string
	Title       string
}

// Box returns the pane rectangle in cells.
func (p PaneInfo) Box() geom.Box {
	return geom.Box{X: float64(p.Left), Y: float64(p.Top), W: float64(p.Width), H: float64(p.Height)}
}
