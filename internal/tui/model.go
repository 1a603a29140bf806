// Package tui hosts the overview in a terminal. A bubbletea program plays
// the compositor: it owns the frame loop, turns terminal input into host
// events, keeps the tmux registry fresh and draws each pass the session
// submits.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
	telem "github.com/timvw/horza/internal/otel"
	"github.com/timvw/horza/internal/overview"
	"github.com/timvw/horza/internal/snapcache"
)

const (
	frameInterval   = 16 * time.Millisecond
	idleInterval    = 100 * time.Millisecond
	refreshInterval = 250 * time.Millisecond
	refreshTimeout  = 2 * time.Second
)

// Options configure Run.
type Options struct {
	Registry *mux.Registry
	Config   *config.Holder
	Cache    *snapcache.Cache
	Theme    Theme

	Log     *zap.Logger
	Metrics *telem.Metrics
	Tracer  trace.Tracer

	// Hooks receives tmux hook notifications; HookNotify signals new ones.
	Hooks      *events.Queue
	HookNotify <-chan struct{}
	// ConfigChanges delivers reloaded configuration.
	ConfigChanges <-chan *config.Config

	// Transit, when set, slides to this workspace argument instead of
	// opening the overview.
	Transit string
}

type tickMsg time.Time

type snapshotMsg struct {
	snap mux.Snapshot
	err  error
}

type hookMsg struct{}

type configMsg struct{ cfg *config.Config }

type model struct {
	opts     Options
	ctx      context.Context
	log      *zap.Logger
	reg      *mux.Registry
	renderer *Renderer
	timers   *Timers
	bus      *host.Bus
	clock    host.Clock
	deps     overview.Deps

	session *overview.Session
	started bool
	done    bool
	err     error

	refreshing  bool
	lastRefresh time.Time
	mouse       mouseTracker

	width, height int
	frame         string
	message       string

	keys      keyMap
	help      help.Model
	input     textinput.Model
	prompting bool
	styles    styles
}

// Run shows the overview until the session ends or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Registry == nil {
		return fmt.Errorf("tui: registry is required")
	}
	m := newModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return m.err
}

func newModel(ctx context.Context, opts Options) *model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Prompt = "go to: "
	ti.Placeholder = "workspace, +N or -N"
	ti.CharLimit = 16

	m := &model{
		opts:   opts,
		ctx:    ctx,
		log:    log,
		reg:    opts.Registry,
		bus:    &host.Bus{},
		clock:  host.SystemClock{},
		keys:   defaultKeyMap(),
		help:   help.New(),
		input:  ti,
		styles: newStyles(opts.Theme),
	}
	m.renderer = NewRenderer(ctx, opts.Registry, opts.Theme)
	m.timers = NewTimers(m.clock)
	m.deps = overview.Deps{
		Registry: m.reg,
		Renderer: m.renderer,
		Events:   m.bus,
		Timers:   m.timers,
		Clock:    m.clock,
		Cache:    opts.Cache,
		Log:      log,
		Metrics:  opts.Metrics,
		Tracer:   opts.Tracer,
		OnDrop:   func(*overview.Session) { m.done = true },
	}
	if opts.Config != nil {
		m.deps.Config = opts.Config
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitHook(), m.waitConfig(), m.tick(frameInterval))
}

func (m *model) tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh loads a registry snapshot off the UI goroutine.
func (m *model) refresh() tea.Cmd {
	if m.refreshing {
		return nil
	}
	m.refreshing = true
	reg, ctx := m.reg, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		snap, err := reg.Load(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m *model) waitHook() tea.Cmd {
	ch, ctx := m.opts.HookNotify, m.ctx
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return hookMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *model) waitConfig() tea.Cmd {
	ch, ctx := m.opts.ConfigChanges, m.ctx
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg, ok := <-ch:
			if !ok {
				return nil
			}
			return configMsg{cfg: cfg}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ensureSession()
		return m, m.quitIfDone()

	case snapshotMsg:
		m.refreshing = false
		m.lastRefresh = m.clock.Now()
		m.applySnapshot(msg)
		m.ensureSession()
		return m, m.quitIfDone()

	case hookMsg:
		var cmds []tea.Cmd
		if m.drainHooks() {
			cmds = append(cmds, m.refresh())
		}
		cmds = append(cmds, m.waitHook())
		return m, tea.Batch(cmds...)

	case configMsg:
		m.reloadConfig(msg.cfg)
		return m, m.waitConfig()

	case tickMsg:
		return m, m.frameTick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m *model) quitIfDone() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return nil
}

// chromeRows is the number of rows below the frame: status and help.
func (m *model) chromeRows() int {
	if m.help.ShowAll {
		rows := 0
		for _, group := range m.keys.FullHelp() {
			rows = max(rows, len(group))
		}
		return 1 + rows
	}
	return 2
}

func (m *model) resize() {
	rows := max(0, m.height-m.chromeRows())
	m.reg.SetViewport(m.width, rows)
	m.renderer.Resize(m.width, rows)
	m.help.Width = m.width
	m.input.Width = max(0, m.width-len(m.input.Prompt)-1)
	if m.session != nil {
		m.bus.Dispatch(host.Structure{Kind: host.MonitorAdded, Monitor: mux.MonitorID})
	}
}

// applySnapshot installs a fresh snapshot and tells the session what
// changed since the previous one.
func (m *model) applySnapshot(msg snapshotMsg) {
	if msg.err != nil {
		m.log.Warn("tmux refresh failed", zap.Error(msg.err))
		m.message = msg.err.Error()
		if !m.started {
			m.err = fmt.Errorf("reading tmux session: %w", msg.err)
			m.done = true
		}
		return
	}
	prev := m.reg.Snapshot()
	m.reg.Apply(msg.snap)
	m.message = ""
	if m.session == nil {
		return
	}
	if topologyChanged(prev, msg.snap) {
		m.bus.Dispatch(host.Structure{Kind: host.WorkspaceMoved})
	}
	if activityChanged(prev, msg.snap) {
		m.bus.Dispatch(host.DamageReported{Monitor: mux.MonitorID})
	}
}

// topologyChanged reports whether windows or their panes differ.
func topologyChanged(a, b mux.Snapshot) bool {
	if len(a.Windows) != len(b.Windows) || len(a.Panes) != len(b.Panes) {
		return true
	}
	for i := range a.Windows {
		if a.Windows[i].ID != b.Windows[i].ID || a.Windows[i].Name != b.Windows[i].Name {
			return true
		}
	}
	for i := range a.Panes {
		if a.Panes[i].ID != b.Panes[i].ID || a.Panes[i].WindowID != b.Panes[i].WindowID {
			return true
		}
	}
	return false
}

// activityChanged reports whether any window produced output.
func activityChanged(a, b mux.Snapshot) bool {
	seen := make(map[string]int64, len(a.Windows))
	for _, w := range a.Windows {
		seen[w.ID] = w.Activity
	}
	for _, w := range b.Windows {
		if act, ok := seen[w.ID]; ok && act != w.Activity {
			return true
		}
	}
	return false
}

// drainHooks forwards queued hook events to the session. It reports
// whether any of them changed the topology.
func (m *model) drainHooks() bool {
	if m.opts.Hooks == nil {
		return false
	}
	structural := false
	for _, e := range m.opts.Hooks.Drain(time.Now().UTC()) {
		m.log.Debug("hook event", zap.String("kind", e.Kind), zap.String("target", e.Target))
		if e.Structural() {
			structural = true
		}
		if m.session != nil {
			m.bus.Dispatch(e.Host(mux.MonitorID))
		}
	}
	return structural
}

func (m *model) reloadConfig(cfg *config.Config) {
	if cfg == nil || m.opts.Config == nil {
		return
	}
	m.opts.Config.Set(cfg)
	if m.opts.Cache != nil {
		m.opts.Cache.SetPolicy(overview.CachePolicy(cfg))
	}
	for _, w := range cfg.Warnings {
		m.log.Warn("config", zap.String("warning", w))
	}
	m.log.Info("configuration reloaded", zap.String("file", cfg.ConfigFile))
	m.bus.Dispatch(host.ConfigReloaded{})
}

// ensureSession opens the session once tmux and the terminal size are
// both known.
func (m *model) ensureSession() {
	if m.started || m.done {
		return
	}
	if _, ok := m.reg.FocusedMonitor(); !ok {
		return
	}
	m.started = true

	var err error
	if m.opts.Transit != "" {
		m.session, err = overview.Transit(m.deps, nil, m.opts.Transit)
	} else {
		m.session, err = overview.Toggle(m.deps, nil)
	}
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if m.session == nil {
		// A transit that only switched windows has nothing to show.
		m.done = true
	}
}

func (m *model) live() bool {
	return m.session != nil && !m.session.Dropped()
}

func (m *model) frameTick() tea.Cmd {
	m.timers.Fire()
	if m.live() {
		m.bus.Dispatch(host.PreRender{Monitor: mux.MonitorID})
		m.session.Render()
		if m.renderer.RunPass() {
			m.frame = m.renderer.Frame().Render()
		}
	}
	if m.done {
		return tea.Quit
	}

	var cmds []tea.Cmd
	if m.clock.Now().Sub(m.lastRefresh) >= refreshInterval {
		cmds = append(cmds, m.refresh())
	}
	interval := idleInterval
	if m.renderer.TakeFrameRequest() {
		interval = frameInterval
	}
	if next, ok := m.timers.Next(); ok {
		interval = min(interval, max(time.Millisecond, next.Sub(m.clock.Now())))
	}
	cmds = append(cmds, m.tick(interval))
	return tea.Batch(cmds...)
}

// centre is the middle of the frame, used as the position of
// keyboard-driven scrolls.
func (m *model) centre() host.PointerMove {
	cols, rows := m.reg.Viewport()
	return host.PointerMove{Pos: cellPoint(cols/2, rows/2)}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKey(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	if !m.live() {
		return m, tea.Quit
	}
	pos := m.centre().Pos
	switch {
	case key.Matches(msg, m.keys.Prev):
		m.bus.Dispatch(stepAxis(host.AxisHorizontal, -1, pos))
	case key.Matches(msg, m.keys.Next):
		m.bus.Dispatch(stepAxis(host.AxisHorizontal, 1, pos))
	case key.Matches(msg, m.keys.Up):
		m.bus.Dispatch(stepAxis(host.AxisVertical, -1, pos))
	case key.Matches(msg, m.keys.Down):
		m.bus.Dispatch(stepAxis(host.AxisVertical, 1, pos))
	case key.Matches(msg, m.keys.Select):
		m.selectCurrent()
	case key.Matches(msg, m.keys.GoTo):
		if m.session.Transit() {
			return m, nil
		}
		m.prompting = true
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Dismiss):
		esc := host.Key{Name: host.KeyEscape, Pressed: true}
		if !m.bus.Dispatch(esc) {
			m.session.Close()
		}
		m.bus.Dispatch(host.Key{Name: host.KeyEscape})
	default:
		if !m.currentConfig().EscOnly {
			m.session.Close()
		}
	}
	return m, nil
}

func (m *model) currentConfig() *config.Config {
	if m.opts.Config == nil {
		return config.Defaults()
	}
	return m.opts.Config.Current()
}

// selectCurrent switches to the centred workspace and closes.
func (m *model) selectCurrent() {
	wss := m.session.Workspaces()
	if cur := m.session.Current(); cur >= 0 && cur < len(wss) {
		if err := m.reg.ActivateWorkspace(mux.MonitorID, wss[cur].ID); err != nil {
			m.log.Warn("switching workspace failed", zap.Error(err))
			m.message = err.Error()
		}
	}
	m.session.Close()
}

func (m *model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompting = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.prompting = false
		m.input.Blur()
		arg := m.input.Value()
		if _, err := overview.Transit(m.deps, m.session, arg); err != nil {
			m.message = err.Error()
		}
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.live() || m.prompting {
		return m, nil
	}
	if _, rows := m.reg.Viewport(); msg.Y >= rows && msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	for _, e := range m.mouse.translate(msg) {
		m.bus.Dispatch(e)
	}
	return m, nil
}
