// Package hostfake provides in-memory implementations of the host
// interfaces for tests: a manual clock, manually fired timers, a scripted
// registry and a renderer that records what it is asked to do.
package hostfake

import (
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// Clock is a manually advanced clock.
type Clock struct {
	T time.Time
}

func NewClock() *Clock { return &Clock{T: time.Unix(1_700_000_000, 0)} }

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Timers fires callbacks only when Fire is called.
type Timers struct {
	Clock   *Clock
	pending []*timer
}

type timer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (ts *Timers) AfterFunc(d time.Duration, fn func()) host.Timer {
	t := &timer{at: ts.Clock.Now().Add(d), fn: fn}
	ts.pending = append(ts.pending, t)
	return t
}

// Pending counts timers that are neither stopped nor fired.
func (ts *Timers) Pending() int {
	n := 0
	for _, t := range ts.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Fire runs every live timer due at the current clock time.
func (ts *Timers) Fire() int {
	due := ts.pending
	ts.pending = nil
	n := 0
	for _, t := range due {
		switch {
		case t.stopped || t.fired:
		case t.at.After(ts.Clock.Now()):
			ts.pending = append(ts.pending, t)
		default:
			t.fired = true
			n++
			t.fn()
		}
	}
	return n
}

// Image is a sized, labelled image.
type Image struct {
	W, H  int
	Label string
}

func (i *Image) Size() (int, int) { return i.W, i.H }

// Registry is a scripted compositor registry.
type Registry struct {
	Monitors    map[host.MonitorID]*host.Monitor
	Focused     host.MonitorID
	Spaces      []host.Workspace
	Wins        map[host.WorkspaceID][]host.Window
	LastFocused map[host.WorkspaceID]host.WindowID

	MoveErr     error
	Moves       []Move
	FocusCalls  []host.WindowID
	Activations []host.WorkspaceID
}

// Move records a MoveWindow call.
type Move struct {
	Window host.WindowID
	To     host.WorkspaceID
}

// NewRegistry builds a registry with one monitor of the given logical size
// and workspaces 1..n, the first one active.
func NewRegistry(size geom.Vec, n int) *Registry {
	r := &Registry{
		Monitors:    map[host.MonitorID]*host.Monitor{},
		Wins:        map[host.WorkspaceID][]host.Window{},
		LastFocused: map[host.WorkspaceID]host.WindowID{},
		Focused:     1,
	}
	r.Monitors[1] = &host.Monitor{ID: 1, Name: "M1", Size: size, Scale: 1, ActiveWorkspace: 1, HasActive: n > 0}
	for i := 1; i <= n; i++ {
		r.AddWorkspace(host.WorkspaceID(i))
	}
	return r
}

// AddWorkspace adds a workspace to monitor 1.
func (r *Registry) AddWorkspace(id host.WorkspaceID) {
	r.Spaces = append(r.Spaces, host.Workspace{
		ID: id, Key: fmt.Sprintf("ws-%d", id), Name: fmt.Sprintf("%d", id), Monitor: 1,
	})
}

// RemoveWorkspace drops a workspace and its windows.
func (r *Registry) RemoveWorkspace(id host.WorkspaceID) {
	out := r.Spaces[:0]
	for _, ws := range r.Spaces {
		if ws.ID != id {
			out = append(out, ws)
		}
	}
	r.Spaces = out
	delete(r.Wins, id)
}

// AddWindow places a window on a workspace, on top of the stack.
func (r *Registry) AddWindow(ws host.WorkspaceID, id host.WindowID, box geom.Box) {
	r.Wins[ws] = append(r.Wins[ws], host.Window{ID: id, Workspace: ws, Box: box, Title: string(id), Class: "term"})
}

func (r *Registry) FocusedMonitor() (host.Monitor, bool) {
	m, ok := r.Monitors[r.Focused]
	if !ok {
		return host.Monitor{}, false
	}
	return *m, true
}

func (r *Registry) Monitor(id host.MonitorID) (host.Monitor, bool) {
	m, ok := r.Monitors[id]
	if !ok {
		return host.Monitor{}, false
	}
	return *m, true
}

func (r *Registry) Workspaces(mon host.MonitorID) []host.Workspace {
	var out []host.Workspace
	for _, ws := range r.Spaces {
		if ws.Monitor == mon {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *Registry) Windows(ws host.WorkspaceID) []host.Window {
	return append([]host.Window(nil), r.Wins[ws]...)
}

func (r *Registry) LastFocusedWindow(ws host.WorkspaceID) (host.Window, bool) {
	id, ok := r.LastFocused[ws]
	if !ok {
		return host.Window{}, false
	}
	for _, w := range r.Wins[ws] {
		if w.ID == id {
			return w, true
		}
	}
	return host.Window{}, false
}

func (r *Registry) MoveWindow(win host.WindowID, to host.WorkspaceID) error {
	if r.MoveErr != nil {
		return r.MoveErr
	}
	for ws, wins := range r.Wins {
		for i, w := range wins {
			if w.ID != win {
				continue
			}
			r.Wins[ws] = append(wins[:i:i], wins[i+1:]...)
			w.Workspace = to
			r.Wins[to] = append(r.Wins[to], w)
			r.Moves = append(r.Moves, Move{Window: win, To: to})
			return nil
		}
	}
	return fmt.Errorf("window %s not found", win)
}

func (r *Registry) FocusWindow(win host.WindowID) error {
	r.FocusCalls = append(r.FocusCalls, win)
	return nil
}

func (r *Registry) ActivateWorkspace(mon host.MonitorID, ws host.WorkspaceID) error {
	m, ok := r.Monitors[mon]
	if !ok {
		return fmt.Errorf("monitor %d not found", mon)
	}
	m.ActiveWorkspace = ws
	m.HasActive = true
	r.Activations = append(r.Activations, ws)
	return nil
}

// Op is one recorded draw call.
type Op struct {
	Kind  string // "clear", "image", "rect"
	Image host.Image
	Dst   geom.Box
	Opts  host.DrawOptions
	Color host.Color
}

// Canvas records draw calls.
type Canvas struct {
	Ops []Op
}

func (c *Canvas) Clear(col host.Color) { c.Ops = append(c.Ops, Op{Kind: "clear", Color: col}) }

func (c *Canvas) DrawImage(img host.Image, dst geom.Box, opts host.DrawOptions) {
	c.Ops = append(c.Ops, Op{Kind: "image", Image: img, Dst: dst, Opts: opts})
}

func (c *Canvas) DrawRect(dst geom.Box, col host.Color, round float64) {
	c.Ops = append(c.Ops, Op{Kind: "rect", Dst: dst, Color: col, Opts: host.DrawOptions{Round: round}})
}

// Images returns the image draw calls.
func (c *Canvas) Images() []Op {
	var out []Op
	for _, op := range c.Ops {
		if op.Kind == "image" {
			out = append(out, op)
		}
	}
	return out
}

// Renderer records captures and passes. Submitted passes run on Flush.
type Renderer struct {
	Captures      []host.CaptureRequest
	CaptureErr    error
	ZeroCaptures  bool
	Texts         []host.TextRequest
	Uploads       int
	Backgrounds   int
	NoBackground  bool
	Composed      []*Canvas
	Submitted     int
	Damages       int
	Frames        int
	pending       []func(host.Canvas)
	captureSerial int
}

func (r *Renderer) CaptureWorkspace(req host.CaptureRequest) (host.Image, error) {
	r.Captures = append(r.Captures, req)
	if r.CaptureErr != nil {
		return nil, r.CaptureErr
	}
	r.captureSerial++
	w, h := req.Width, req.Height
	if r.ZeroCaptures {
		w = 0
	}
	return &Image{W: w, H: h, Label: fmt.Sprintf("ws%d#%d", req.Workspace, r.captureSerial)}, nil
}

func (r *Renderer) CaptureBackground(_ host.MonitorID, w, h int) (host.Image, error) {
	r.Backgrounds++
	if r.NoBackground {
		return nil, fmt.Errorf("no background")
	}
	return &Image{W: w, H: h, Label: "background"}, nil
}

func (r *Renderer) Compose(w, h int, draw func(host.Canvas)) (host.Image, error) {
	c := &Canvas{}
	draw(c)
	r.Composed = append(r.Composed, c)
	return &Image{W: w, H: h, Label: "composed"}, nil
}

func (r *Renderer) RenderText(req host.TextRequest) (host.Image, error) {
	r.Texts = append(r.Texts, req)
	w := len(req.Text) * req.FontSize / 2
	if req.MaxWidth > 0 && w > req.MaxWidth {
		w = req.MaxWidth
	}
	return &Image{W: w, H: req.FontSize, Label: "text:" + req.Text}, nil
}

func (r *Renderer) Upload(img image.Image) (host.Image, error) {
	r.Uploads++
	b := img.Bounds()
	return &Image{W: b.Dx(), H: b.Dy(), Label: "upload"}, nil
}

func (r *Renderer) Submit(_ host.MonitorID, draw func(host.Canvas)) {
	r.Submitted++
	r.pending = append(r.pending, draw)
}

func (r *Renderer) Damage(host.MonitorID) { r.Damages++ }

func (r *Renderer) ScheduleFrame(host.MonitorID) { r.Frames++ }

// Flush runs the submitted passes into a fresh canvas and returns it.
func (r *Renderer) Flush() *Canvas {
	c := &Canvas{}
	passes := r.pending
	r.pending = nil
	for _, p := range passes {
		p(c)
	}
	return c
}

// Freezer counts Freeze calls per monitor.
type Freezer struct {
	Calls map[host.MonitorID]int
}

func (f *Freezer) Freeze(mon host.MonitorID) {
	if f.Calls == nil {
		f.Calls = map[host.MonitorID]int{}
	}
	f.Calls[mon]++
}
