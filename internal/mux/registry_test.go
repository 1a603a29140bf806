package mux

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

type fakeClient struct {
	session string
	windows []WindowInfo
	panes   []PaneInfo
	content map[string]string
	err     error

	calls []string
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) CurrentSession(context.Context) (string, error) { return f.session, f.err }

func (f *fakeClient) ListWindows(context.Context, string) ([]WindowInfo, error) {
	return f.windows, nil
}

func (f *fakeClient) ListPanes(context.Context, string) ([]PaneInfo, error) { return f.panes, nil }

func (f *fakeClient) CapturePane(_ context.Context, pane string) (string, error) {
	return f.content[pane], nil
}

func (f *fakeClient) SelectWindow(_ context.Context, w string) error {
	f.calls = append(f.calls, "select-window "+w)
	return nil
}

func (f *fakeClient) SelectPane(_ context.Context, p string) error {
	f.calls = append(f.calls, "select-pane "+p)
	return nil
}

func (f *fakeClient) JoinPane(_ context.Context, p, w string) error {
	f.calls = append(f.calls, "join-pane "+p+" "+w)
	return nil
}

func newTestRegistry(t *testing.T) (*Registry, *fakeClient) {
	t.Helper()
	client := &fakeClient{
		session: "work",
		windows: []WindowInfo{
			{Index: 3, ID: "@9", Name: "logs", Width: 50, Height: 20, Panes: 1},
			{Index: 1, ID: "@2", Name: "code", Active: true, Width: 50, Height: 20, Panes: 2},
		},
		panes: []PaneInfo{
			{ID: "%5", WindowID: "@2", Index: 1, Left: 26, Width: 24, Height: 20, Active: true, Command: "zsh"},
			{ID: "%1", WindowID: "@2", Index: 0, Width: 25, Height: 20, Command: "vim", Title: "main.go"},
			{ID: "%8", WindowID: "@9", Index: 0, Width: 50, Height: 20, Command: "tail"},
		},
		content: map[string]string{"%1": "hello", "%5": "$", "%8": "log line"},
	}
	r := NewRegistry(client, nil)
	r.SetViewport(100, 40)
	require.NoError(t, r.Refresh(context.Background()))
	return r, client
}

func TestRegistryWorkspacesFollowWindowOrder(t *testing.T) {
	r, _ := newTestRegistry(t)

	ws := r.Workspaces(MonitorID)
	require.Len(t, ws, 2)
	assert.Equal(t, host.Workspace{ID: 1, Key: "@2", Name: "code", Monitor: MonitorID}, ws[0])
	assert.Equal(t, host.Workspace{ID: 2, Key: "@9", Name: "logs", Monitor: MonitorID}, ws[1])
	assert.Empty(t, r.Workspaces(7))
}

func TestRegistryMonitor(t *testing.T) {
	r, _ := newTestRegistry(t)

	mon, ok := r.FocusedMonitor()
	require.True(t, ok)
	assert.Equal(t, geom.Vec{X: 800, Y: 640}, mon.Size)
	assert.Equal(t, "work", mon.Name)
	assert.True(t, mon.HasActive)
	assert.Equal(t, host.WorkspaceID(1), mon.ActiveWorkspace)

	r.SetViewport(0, 0)
	_, ok = r.FocusedMonitor()
	assert.False(t, ok, "no monitor without a viewport")
}

func TestRegistryWindowsScaledToViewport(t *testing.T) {
	r, _ := newTestRegistry(t)

	wins := r.Windows(1)
	require.Len(t, wins, 2)
	assert.Equal(t, host.WindowID("%1"), wins[0].ID, "ordered by pane index")
	// 100 columns over a 50 column window: two viewport cells per pane cell.
	assert.Equal(t, geom.Box{X: 0, Y: 0, W: 400, H: 640}, wins[0].Box)
	assert.Equal(t, geom.Box{X: 416, Y: 0, W: 384, H: 640}, wins[1].Box)
	assert.Equal(t, "main.go", wins[0].Title)
	assert.Equal(t, "vim", wins[0].Class)

	last, ok := r.LastFocusedWindow(1)
	require.True(t, ok)
	assert.Equal(t, host.WindowID("%5"), last.ID)

	assert.Nil(t, r.Windows(5))
}

func TestRegistryMutations(t *testing.T) {
	r, client := newTestRegistry(t)

	require.NoError(t, r.ActivateWorkspace(MonitorID, 2))
	mon, _ := r.FocusedMonitor()
	assert.Equal(t, host.WorkspaceID(2), mon.ActiveWorkspace, "switch is visible before the next refresh")

	require.NoError(t, r.FocusWindow("%8"))
	require.NoError(t, r.MoveWindow("%1", 2))
	assert.Error(t, r.MoveWindow("%8", 2), "pane already in target window")
	assert.Error(t, r.MoveWindow("%8", 9))
	assert.Error(t, r.ActivateWorkspace(2, 1))

	assert.Equal(t, []string{"select-window @9", "select-pane %8", "join-pane %1 @9"}, client.calls)
}

func TestRegistryCaptureWorkspace(t *testing.T) {
	r, _ := newTestRegistry(t)

	g, err := r.CaptureWorkspace(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 50, g.Width)
	assert.Equal(t, 20, g.Height)
	assert.Equal(t, "hello", g.Line(0)[:5])
	assert.Equal(t, '│', g.At(25, 0).Rune)
	assert.Equal(t, '$', g.At(26, 0).Rune)

	_, err = r.CaptureWorkspace(context.Background(), 3)
	assert.Error(t, err)
}

func TestRegistryLookups(t *testing.T) {
	r, _ := newTestRegistry(t)

	ws, ok := r.WorkspaceOf("@9")
	assert.True(t, ok)
	assert.Equal(t, host.WorkspaceID(2), ws)
	ws, ok = r.WorkspaceOf("1")
	assert.True(t, ok)
	assert.Equal(t, host.WorkspaceID(1), ws)
	_, ok = r.WorkspaceOf("@77")
	assert.False(t, ok)
}

func TestRegistryRefreshError(t *testing.T) {
	client := &fakeClient{err: errors.New("no server running")}
	r := NewRegistry(client, nil)
	r.SetViewport(80, 24)

	assert.Error(t, r.Refresh(context.Background()))
	_, ok := r.FocusedMonitor()
	assert.False(t, ok)
}
