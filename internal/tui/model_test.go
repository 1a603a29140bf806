package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
	"github.com/timvw/horza/internal/host/hostfake"
	"github.com/timvw/horza/internal/mux"
)

type tmuxStub struct {
	windows []mux.WindowInfo
	panes   []mux.PaneInfo
	selects []string
}

func (s *tmuxStub) Name() string { return "stub" }

func (s *tmuxStub) CurrentSession(context.Context) (string, error) { return "main", nil }

func (s *tmuxStub) ListWindows(context.Context, string) ([]mux.WindowInfo, error) {
	return append([]mux.WindowInfo(nil), s.windows...), nil
}

func (s *tmuxStub) ListPanes(context.Context, string) ([]mux.PaneInfo, error) {
	return append([]mux.PaneInfo(nil), s.panes...), nil
}

func (s *tmuxStub) CapturePane(context.Context, string) (string, error) {
	return "$ make test\nok\n", nil
}

func (s *tmuxStub) SelectWindow(_ context.Context, w string) error {
	s.selects = append(s.selects, w)
	for i := range s.windows {
		s.windows[i].Active = s.windows[i].ID == w
	}
	return nil
}

func (s *tmuxStub) SelectPane(context.Context, string) error { return nil }

func (s *tmuxStub) JoinPane(context.Context, string, string) error { return nil }

func newStub() *tmuxStub {
	return &tmuxStub{
		windows: []mux.WindowInfo{
			{Index: 1, ID: "@1", Name: "code", Active: true, Width: 80, Height: 24, Panes: 1},
			{Index: 2, ID: "@2", Name: "logs", Width: 80, Height: 24, Panes: 1},
			{Index: 3, ID: "@3", Name: "mail", Width: 80, Height: 24, Panes: 1},
		},
		panes: []mux.PaneInfo{
			{ID: "%1", WindowID: "@1", Width: 80, Height: 24, Active: true, Command: "zsh"},
			{ID: "%2", WindowID: "@2", Width: 80, Height: 24, Active: true, Command: "tail"},
			{ID: "%3", WindowID: "@3", Width: 80, Height: 24, Active: true, Command: "mutt"},
		},
	}
}

// newTestModel returns a model on a manual clock, sized and loaded so the
// session is open.
func newTestModel(t *testing.T, stub *tmuxStub, opts Options) (*model, *hostfake.Clock) {
	t.Helper()
	reg := mux.NewRegistry(stub, nil)
	opts.Registry = reg
	if opts.Config == nil {
		opts.Config = config.NewHolder(config.Defaults())
	}
	opts.Theme = DarkTheme()

	m := newModel(context.Background(), opts)
	clk := hostfake.NewClock()
	m.clock = clk
	m.timers = NewTimers(clk)
	m.deps.Clock = clk
	m.deps.Timers = m.timers

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	snap, err := reg.Load(context.Background())
	require.NoError(t, err)
	m.Update(snapshotMsg{snap: snap})
	return m, clk
}

func TestModelOpensSessionOnceSizedAndLoaded(t *testing.T) {
	m, _ := newTestModel(t, newStub(), Options{})

	require.True(t, m.started)
	require.NotNil(t, m.session)
	assert.True(t, m.live())
	assert.Len(t, m.session.Workspaces(), 3)
	assert.Equal(t, 0, m.session.Current())

	m.frameTick()
	require.NotNil(t, m.renderer.Frame())
	cols, rows := m.renderer.Frame().Cells()
	assert.Equal(t, 80, cols)
	assert.Equal(t, 24, rows)
	assert.NotEmpty(t, m.frame)
	assert.Contains(t, m.View(), "horza")
}

func TestModelWaitsForViewport(t *testing.T) {
	stub := newStub()
	reg := mux.NewRegistry(stub, nil)
	m := newModel(context.Background(), Options{Registry: reg})

	snap, err := reg.Load(context.Background())
	require.NoError(t, err)
	m.Update(snapshotMsg{snap: snap})
	assert.False(t, m.started, "no terminal size yet")
	assert.Equal(t, "Loading...", m.View())
}

func TestModelRefreshErrorBeforeStartQuits(t *testing.T) {
	reg := mux.NewRegistry(newStub(), nil)
	m := newModel(context.Background(), Options{Registry: reg})

	_, cmd := m.Update(snapshotMsg{err: assert.AnError})
	assert.True(t, m.done)
	assert.Error(t, m.err)
	assert.NotNil(t, cmd)
}

func TestModelKeysScrollAndClose(t *testing.T) {
	m, clk := newTestModel(t, newStub(), Options{})
	m.frameTick()

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.session.Current())
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.session.Current())

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.session.Closing())

	for i := 0; i < 20 && !m.done; i++ {
		clk.Advance(100 * time.Millisecond)
		m.frameTick()
	}
	assert.True(t, m.done, "session drops after closing")
	assert.True(t, m.session.Dropped())
}

func TestModelSelectSwitchesWindow(t *testing.T) {
	stub := newStub()
	m, _ := newTestModel(t, stub, Options{})
	m.frameTick()

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"@2"}, stub.selects)
	assert.True(t, m.session.Closing())
}

func TestModelGoToPrompt(t *testing.T) {
	stub := newStub()
	m, _ := newTestModel(t, stub, Options{})
	m.frameTick()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	require.True(t, m.prompting)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.prompting)
	assert.Equal(t, []string{"@3"}, stub.selects)
	assert.True(t, m.live(), "switching from the prompt keeps the overview open")
}

func TestModelTransitOption(t *testing.T) {
	stub := newStub()
	m, clk := newTestModel(t, stub, Options{Transit: "+1"})

	require.NotNil(t, m.session)
	assert.True(t, m.session.Transit())
	assert.Equal(t, []string{"@2"}, stub.selects)

	for i := 0; i < 20 && !m.done; i++ {
		clk.Advance(50 * time.Millisecond)
		m.frameTick()
	}
	assert.True(t, m.done)
}

func TestModelHooksForwardToSession(t *testing.T) {
	queue := events.NewQueue(0)
	m, _ := newTestModel(t, newStub(), Options{Hooks: queue})
	m.frameTick()

	queue.Push(events.Event{Kind: events.KindDamage, TS: time.Now()})
	assert.False(t, m.drainHooks(), "damage is not structural")

	queue.Push(events.Event{Kind: events.KindWorkspaceAdded, Target: "@4", TS: time.Now()})
	assert.True(t, m.drainHooks())
	assert.Zero(t, queue.Len())
}

func TestModelConfigReload(t *testing.T) {
	holder := config.NewHolder(config.Defaults())
	m, _ := newTestModel(t, newStub(), Options{Config: holder})

	next := config.Defaults()
	next.EscOnly = !holder.Current().EscOnly
	m.Update(configMsg{cfg: next})
	assert.Same(t, next, holder.Current())
}

func TestTopologyAndActivityChanges(t *testing.T) {
	base := mux.Snapshot{
		Windows: []mux.WindowInfo{{ID: "@1", Name: "a", Activity: 10}},
		Panes:   []mux.PaneInfo{{ID: "%1", WindowID: "@1"}},
	}
	same := base
	assert.False(t, topologyChanged(base, same))
	assert.False(t, activityChanged(base, same))

	renamed := mux.Snapshot{Windows: []mux.WindowInfo{{ID: "@1", Name: "b", Activity: 10}}, Panes: base.Panes}
	assert.True(t, topologyChanged(base, renamed))

	moved := mux.Snapshot{Windows: base.Windows, Panes: []mux.PaneInfo{{ID: "%1", WindowID: "@2"}}}
	assert.True(t, topologyChanged(base, moved))

	busy := mux.Snapshot{Windows: []mux.WindowInfo{{ID: "@1", Name: "a", Activity: 11}}, Panes: base.Panes}
	assert.True(t, activityChanged(base, busy))
	assert.False(t, topologyChanged(base, busy))
}
