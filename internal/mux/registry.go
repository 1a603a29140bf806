package mux

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// MonitorID is the only monitor of a tmux registry: the terminal horza
// draws into.
const MonitorID host.MonitorID = 1

// commandTimeout bounds each tmux mutation issued from the UI goroutine.
const commandTimeout = 2 * time.Second

// Snapshot is the state of one tmux session at a point in time.
type Snapshot struct {
	Session string
	Windows []WindowInfo // sorted by index
	Panes   []PaneInfo
}

// Registry implements host.Registry on top of a tmux session. Windows map to
// workspaces numbered 1..n in window index order; the window ID is the
// workspace key, so a window recreated at the same position is a new
// workspace. Panes map to host windows.
//
// Registry is not safe for concurrent use: Load may run anywhere, but Apply
// and every host.Registry method belong to the UI goroutine.
type Registry struct {
	client Client
	log    *zap.Logger

	snap       Snapshot
	cols, rows int
}

// NewRegistry creates a registry reading from client.
func NewRegistry(client Client, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{client: client, log: log}
}

// Load queries tmux for the current session. It does not touch the
// registry and may be called from any goroutine.
func (r *Registry) Load(ctx context.Context) (Snapshot, error) {
	session, err := r.client.CurrentSession(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Session: session}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		windows, err := r.client.ListWindows(gctx, session)
		snap.Windows = windows
		return err
	})
	g.Go(func() error {
		panes, err := r.client.ListPanes(gctx, session)
		snap.Panes = panes
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	sort.SliceStable(snap.Windows, func(i, j int) bool { return snap.Windows[i].Index < snap.Windows[j].Index })
	return snap, nil
}

// Apply replaces the registry state with snap.
func (r *Registry) Apply(snap Snapshot) { r.snap = snap }

// Refresh loads and applies a fresh snapshot.
func (r *Registry) Refresh(ctx context.Context) error {
	snap, err := r.Load(ctx)
	if err != nil {
		return err
	}
	r.Apply(snap)
	return nil
}

// Snapshot returns the state last applied.
func (r *Registry) Snapshot() Snapshot { return r.snap }

// SetViewport sets the terminal area, in cells, the overview draws into.
func (r *Registry) SetViewport(cols, rows int) {
	r.cols, r.rows = max(0, cols), max(0, rows)
}

// Viewport returns the area set by SetViewport.
func (r *Registry) Viewport() (cols, rows int) { return r.cols, r.rows }

func (r *Registry) FocusedMonitor() (host.Monitor, bool) {
	return r.Monitor(MonitorID)
}

func (r *Registry) Monitor(id host.MonitorID) (host.Monitor, bool) {
	if id != MonitorID || r.snap.Session == "" || r.cols == 0 || r.rows == 0 {
		return host.Monitor{}, false
	}
	mon := host.Monitor{
		ID:    MonitorID,
		Name:  r.snap.Session,
		Size:  geom.Vec{X: float64(r.cols) * CellSize.X, Y: float64(r.rows) * CellSize.Y},
		Scale: 1,
	}
	for i, w := range r.snap.Windows {
		if w.Active {
			mon.ActiveWorkspace = host.WorkspaceID(i + 1)
			mon.HasActive = true
		}
	}
	return mon, true
}

func (r *Registry) Workspaces(mon host.MonitorID) []host.Workspace {
	if mon != MonitorID {
		return nil
	}
	out := make([]host.Workspace, 0, len(r.snap.Windows))
	for i, w := range r.snap.Windows {
		out = append(out, host.Workspace{
			ID:      host.WorkspaceID(i + 1),
			Key:     w.ID,
			Name:    w.Name,
			Monitor: MonitorID,
		})
	}
	return out
}

// WindowFor returns the tmux window behind workspace ws.
func (r *Registry) WindowFor(ws host.WorkspaceID) (WindowInfo, bool) {
	i := int(ws) - 1
	if i < 0 || i >= len(r.snap.Windows) {
		return WindowInfo{}, false
	}
	return r.snap.Windows[i], true
}

// WorkspaceOf returns the workspace of the tmux window with the given ID
// ("@3") or index ("3").
func (r *Registry) WorkspaceOf(window string) (host.WorkspaceID, bool) {
	for i, w := range r.snap.Windows {
		if w.ID == window || fmt.Sprint(w.Index) == window {
			return host.WorkspaceID(i + 1), true
		}
	}
	return 0, false
}

// panesOf returns the panes of w ordered by pane index.
func (r *Registry) panesOf(w WindowInfo) []PaneInfo {
	var panes []PaneInfo
	for _, p := range r.snap.Panes {
		if p.WindowID == w.ID {
			panes = append(panes, p)
		}
	}
	sort.SliceStable(panes, func(i, j int) bool { return panes[i].Index < panes[j].Index })
	return panes
}

// paneBox converts a pane rectangle from window cells to monitor units.
func (r *Registry) paneBox(p PaneInfo, w WindowInfo) geom.Box {
	sx, sy := CellSize.X, CellSize.Y
	if w.Width > 0 && r.cols > 0 {
		sx = float64(r.cols) * CellSize.X / float64(w.Width)
	}
	if w.Height > 0 && r.rows > 0 {
		sy = float64(r.rows) * CellSize.Y / float64(w.Height)
	}
	b := p.Box()
	return geom.Box{X: b.X * sx, Y: b.Y * sy, W: b.W * sx, H: b.H * sy}
}

func (r *Registry) toWindow(ws host.WorkspaceID, w WindowInfo, p PaneInfo) host.Window {
	return host.Window{
		ID:        host.WindowID(p.ID),
		Workspace: ws,
		Box:       r.paneBox(p, w),
		Title:     p.Title,
		Class:     p.Command,
	}
}

func (r *Registry) Windows(ws host.WorkspaceID) []host.Window {
	w, ok := r.WindowFor(ws)
	if !ok {
		return nil
	}
	panes := r.panesOf(w)
	out := make([]host.Window, 0, len(panes))
	for _, p := range panes {
		out = append(out, r.toWindow(ws, w, p))
	}
	return out
}

func (r *Registry) LastFocusedWindow(ws host.WorkspaceID) (host.Window, bool) {
	w, ok := r.WindowFor(ws)
	if !ok {
		return host.Window{}, false
	}
	for _, p := range r.panesOf(w) {
		if p.Active {
			return r.toWindow(ws, w, p), true
		}
	}
	return host.Window{}, false
}

func (r *Registry) MoveWindow(win host.WindowID, ws host.WorkspaceID) error {
	w, ok := r.WindowFor(ws)
	if !ok {
		return fmt.Errorf("moving pane %s: no workspace %d", win, ws)
	}
	for _, p := range r.snap.Panes {
		if p.ID == string(win) && p.WindowID == w.ID {
			return fmt.Errorf("pane %s is already in window %s", win, w.ID)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return r.client.JoinPane(ctx, string(win), w.ID)
}

func (r *Registry) FocusWindow(win host.WindowID) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return r.client.SelectPane(ctx, string(win))
}

func (r *Registry) ActivateWorkspace(mon host.MonitorID, ws host.WorkspaceID) error {
	if mon != MonitorID {
		return fmt.Errorf("no monitor %d", mon)
	}
	w, ok := r.WindowFor(ws)
	if !ok {
		return fmt.Errorf("no workspace %d", ws)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := r.client.SelectWindow(ctx, w.ID); err != nil {
		return err
	}
	// Reflect the switch right away; the next refresh confirms it.
	for i := range r.snap.Windows {
		r.snap.Windows[i].Active = r.snap.Windows[i].ID == w.ID
	}
	return nil
}

// CaptureWorkspace captures every pane of workspace ws and composes them
// into one grid of the window's size.
func (r *Registry) CaptureWorkspace(ctx context.Context, ws host.WorkspaceID) (*Grid, error) {
	w, ok := r.WindowFor(ws)
	if !ok {
		return nil, fmt.Errorf("capturing workspace %d: no such workspace", ws)
	}
	panes := r.panesOf(w)
	content := make(map[string]string, len(panes))
	for _, p := range panes {
		out, err := r.client.CapturePane(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("capturing workspace %d: %w", ws, err)
		}
		content[p.ID] = out
	}
	r.log.Debug("captured window", zap.String("window", w.ID), zap.Int("panes", len(panes)))
	return ComposeGrid(w.Width, w.Height, panes, content), nil
}
