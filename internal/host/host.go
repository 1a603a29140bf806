// Package host defines what the overview session needs from the program
// that embeds it: a workspace registry, a renderer, a clock, a timer
// facility and an event source.
//
// The overview core only ever talks to these interfaces. The tmux backed
// terminal host lives in internal/tui and internal/mux; tests use the
// in-memory implementations in internal/host/hostfake.
package host

import (
	"image"
	"time"

	"github.com/timvw/horza/internal/geom"
)

// MonitorID identifies a monitor for the lifetime of the host process.
type MonitorID int64

// WorkspaceID is the ordering identity of a workspace. Tiles are sorted by it.
type WorkspaceID int64

// WindowID identifies a window inside the registry.
type WindowID string

// Monitor is a snapshot of one output.
type Monitor struct {
	ID       MonitorID
	Name     string
	Position geom.Vec // global position of the top-left corner
	Size     geom.Vec // logical size
	Scale    float64  // device pixels per logical unit

	ActiveWorkspace WorkspaceID
	HasActive       bool
}

// PixelSize returns the monitor size in device pixels.
func (m Monitor) PixelSize() geom.Vec {
	s := m.Scale
	if s <= 0 {
		s = 1
	}
	return m.Size.Scale(s)
}

// Box returns the monitor rectangle in global coordinates.
func (m Monitor) Box() geom.Box { return geom.BoxAt(m.Position, m.Size) }

// Workspace describes one workspace on a monitor. Key identifies the
// underlying object: a workspace that is destroyed and recreated under the
// same ID gets a new Key.
type Workspace struct {
	ID      WorkspaceID
	Key     string
	Name    string
	Monitor MonitorID
}

// Window is a mapped window. Box is the unified hit box in global
// coordinates, including reserved and input extents.
type Window struct {
	ID        WindowID
	Workspace WorkspaceID
	Box       geom.Box
	Title     string
	Class     string
}

// Registry is the compositor's view of monitors, workspaces and windows.
type Registry interface {
	FocusedMonitor() (Monitor, bool)
	Monitor(id MonitorID) (Monitor, bool)

	// Workspaces returns the workspaces currently on mon, in any order.
	Workspaces(mon MonitorID) []Workspace

	// Windows returns the windows of ws from bottom to top of the stack.
	Windows(ws WorkspaceID) []Window
	LastFocusedWindow(ws WorkspaceID) (Window, bool)

	MoveWindow(win WindowID, ws WorkspaceID) error
	FocusWindow(win WindowID) error
	ActivateWorkspace(mon MonitorID, ws WorkspaceID) error
}

// Freezer is an optional capability of the scene: snap every animated
// property of the entities on a monitor to its target value.
type Freezer interface {
	Freeze(mon MonitorID)
}

// Image is an opaque renderer-owned image. It may be shared between a tile
// and the snapshot cache.
type Image interface {
	Size() (w, h int)
}

// Degenerate reports whether img is missing or has no area.
func Degenerate(img Image) bool {
	if img == nil {
		return true
	}
	w, h := img.Size()
	return w <= 0 || h <= 0
}

// Color is a straight-alpha RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// DrawOptions modifies a textured draw.
type DrawOptions struct {
	Alpha  float64
	Round  float64
	Damage geom.Box
	// Source selects a sub-rectangle of the image in normalised [0, 1]
	// coordinates. Nil draws the whole image.
	Source *geom.Box
}

// Canvas is a render target receiving draw calls in logical coordinates.
type Canvas interface {
	Clear(c Color)
	DrawImage(img Image, dst geom.Box, opts DrawOptions)
	DrawRect(dst geom.Box, c Color, round float64)
}

// CaptureRequest asks the renderer to draw a workspace offscreen.
type CaptureRequest struct {
	Monitor   MonitorID
	Workspace WorkspaceID
	Width     int
	Height    int
}

// TextRequest asks the renderer to shape a single line of text.
type TextRequest struct {
	Text       string
	Color      Color
	FontSize   int
	FontFamily string
	MaxWidth   int
}

// Renderer is the drawing side of the host.
type Renderer interface {
	CaptureWorkspace(req CaptureRequest) (Image, error)
	// CaptureBackground renders the monitor's background and bottom layers.
	CaptureBackground(mon MonitorID, width, height int) (Image, error)
	// Compose renders draw into a new offscreen image.
	Compose(width, height int, draw func(Canvas)) (Image, error)
	RenderText(req TextRequest) (Image, error)
	Upload(img image.Image) (Image, error)

	// Submit queues a render pass for the next frame of mon.
	Submit(mon MonitorID, draw func(Canvas))
	Damage(mon MonitorID)
	ScheduleFrame(mon MonitorID)
}

// Clock reports the current time. Hosts and tests supply their own.
type Clock interface {
	Now() time.Time
}

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was still
	// pending.
	Stop() bool
}

// Timers schedules callbacks on the host's event thread.
type Timers interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
