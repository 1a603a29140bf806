// Package overview implements the workspace overview session: a filmstrip
// of workspace snapshots drawn over one monitor.
//
// A Session is single-threaded. The host dispatches its events (including
// the per-frame PreRender) and runs submitted render passes on one
// goroutine; nothing in this package locks. Each PreRender runs workspace
// sync, then the lifecycle, then capture scheduling, so rendering always
// sees a reconciled tile list.
package overview

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/anim"
	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/layout"
	"github.com/timvw/horza/internal/snapcache"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseActive
	PhaseClosing
	PhaseDropped
)

func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseActive:
		return "active"
	case PhaseClosing:
		return "closing"
	case PhaseDropped:
		return "dropped"
	}
	return "unknown"
}

// Session is one open overview on one monitor.
type Session struct {
	deps    Deps
	log     *zap.Logger
	ctx     context.Context
	monitor host.MonitorID
	transit bool

	tiles   []*tile
	current int

	scale  *anim.Scalar
	offset *anim.Scalar
	cross  *anim.Scalar

	openAnimPending bool

	closing             bool
	closeStartedAt      time.Time
	closeAnimFinishedAt time.Time
	handoffActive       bool
	finalCrossfade      bool
	finalCrossfadeAt    time.Time
	finalCrossfadeAlpha float64
	overlayAlpha        float64
	dropScheduled       bool
	dropTimer           host.Timer
	dropped             bool

	pendingCapture bool
	damageDirty    bool
	passQueued     bool

	syncDirty  bool
	nextSyncAt time.Time
	lastActive host.WorkspaceID
	hadActive  bool

	pointer   geom.Vec // monitor-local
	drag      dragState
	scrollAcc float64

	bg     backdrop
	shadow shadowTexture

	sub host.Subscription
}

// Toggle opens an overview on the focused monitor, or closes or reopens
// current when it is still alive. It returns the session the caller should
// hold from now on.
func Toggle(deps Deps, current *Session) (*Session, error) {
	if current != nil && !current.dropped {
		if current.closing {
			current.Reopen()
		} else {
			current.Close()
		}
		return current, nil
	}

	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	mon, ok := deps.Registry.FocusedMonitor()
	if !ok {
		return nil, reject(deps, ErrNoMonitor)
	}
	if !mon.HasActive {
		return nil, reject(deps, ErrNoActiveWorkspace)
	}
	return open(deps, mon, mon.ActiveWorkspace, false, 0)
}

func reject(deps Deps, err error) error {
	deps.Log.Warn("cannot open overview", zap.Error(err))
	deps.Metrics.RecordSession(context.Background(), "rejected")
	return fmt.Errorf("opening overview: %w", err)
}

// eligibleWorkspaces returns the normal workspaces of mon sorted by ID.
func eligibleWorkspaces(reg host.Registry, mon host.MonitorID) []host.Workspace {
	var out []host.Workspace
	for _, ws := range reg.Workspaces(mon) {
		if ws.ID >= 0 && ws.Monitor == mon {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func open(deps Deps, mon host.Monitor, startedOn host.WorkspaceID, transit bool, dest host.WorkspaceID) (*Session, error) {
	ctx, span := deps.Tracer.Start(context.Background(), "overview.open",
		trace.WithAttributes(
			attribute.Int64("monitor.id", int64(mon.ID)),
			attribute.Bool("overview.transit", transit),
		))
	defer span.End()

	wss := eligibleWorkspaces(deps.Registry, mon.ID)
	if len(wss) == 0 {
		span.RecordError(ErrNoWorkspaces)
		return nil, reject(deps, ErrNoWorkspaces)
	}

	s := &Session{
		deps:         deps,
		log:          deps.Log.With(zap.Int64("monitor", int64(mon.ID)), zap.Bool("transit", transit)),
		ctx:          ctx,
		monitor:      mon.ID,
		transit:      transit,
		scale:        anim.NewScalar(1),
		offset:       anim.NewScalar(0),
		cross:        anim.NewScalar(0),
		overlayAlpha: 1,
		lastActive:   mon.ActiveWorkspace,
		hadActive:    mon.HasActive,
		nextSyncAt:   deps.Clock.Now(),
	}
	s.drag.clear()
	for i, ws := range wss {
		s.tiles = append(s.tiles, &tile{ws: ws})
		if ws.ID == startedOn {
			s.current = i
		}
	}
	cfg := s.cfg()

	if transit {
		s.captureTile(s.current, reasonTransit)
		if dest != startedOn {
			if i := s.indexOf(dest); i >= 0 && !s.tiles[i].captured {
				s.captureTile(i, reasonTransit)
			}
		}
		s.layoutTiles(mon, cfg)
		s.sub = deps.Events.Subscribe(s.handle)
		s.afterOpen(mon)
		return s, nil
	}

	if cfg.FreezeAnimations && deps.Freezer != nil {
		deps.Freezer.Freeze(mon.ID)
	}

	for i := range s.tiles {
		s.restoreTile(i)
	}
	if s.tiles[s.current].cached == nil {
		s.captureTile(s.current, reasonFocus)
	} else {
		// A cached snapshot is shown right away and refreshed on the first tick.
		s.damageDirty = true
	}
	if cfg.BackgroundSource == config.BackgroundWallpaper {
		s.captureBackground(mon, cfg)
	}
	if cfg.PrewarmAll {
		s.prewarm()
	}
	s.pendingCapture = !cfg.PrewarmAll
	s.openAnimPending = true
	s.layoutTiles(mon, cfg)

	s.sub = deps.Events.Subscribe(s.handle)
	s.afterOpen(mon)
	return s, nil
}

func (s *Session) afterOpen(mon host.Monitor) {
	s.log.Info("overview opened",
		zap.Int("tiles", len(s.tiles)),
		zap.Int64("workspace", int64(s.tiles[s.current].ws.ID)))
	s.deps.Metrics.RecordSession(s.ctx, "opened")
	s.deps.Renderer.Damage(mon.ID)
	s.deps.Renderer.ScheduleFrame(mon.ID)
}

func (s *Session) cfg() *config.Config { return s.deps.Config.Current() }

func (s *Session) monitorInfo() (host.Monitor, bool) {
	return s.deps.Registry.Monitor(s.monitor)
}

func (s *Session) indexOf(ws host.WorkspaceID) int {
	for i, t := range s.tiles {
		if t.ws.ID == ws {
			return i
		}
	}
	return -1
}

func (s *Session) cacheKey(ws host.WorkspaceID) snapcache.Key {
	return snapcache.Key{Monitor: s.monitor, Workspace: ws}
}

// restoreTile borrows the cached snapshot of tile i, if any.
func (s *Session) restoreTile(i int) bool {
	if s.deps.Cache == nil {
		return false
	}
	t := s.tiles[i]
	img, capturedAt, ok := s.deps.Cache.Restore(s.cacheKey(t.ws.ID))
	if !ok {
		return false
	}
	t.cached = img
	t.lastCaptureAt = capturedAt
	t.captured = false
	return true
}

// saveTiles pushes every tile image back into the snapshot cache.
func (s *Session) saveTiles() {
	if s.deps.Cache == nil {
		return
	}
	for _, t := range s.tiles {
		img := t.texture()
		if img == nil {
			continue
		}
		s.deps.Cache.Store(s.cacheKey(t.ws.ID), img, t.lastCaptureAt)
	}
}

// params is the layout input for the current animated state.
func (s *Session) params(mon host.Monitor, cfg *config.Config) layout.Params {
	if s.transit {
		return layout.Params{
			Monitor:         mon.Size,
			Scale:           1,
			DisplayScale:    1,
			Orientation:     layout.Horizontal,
			Offset:          s.offset.Value(),
			Current:         s.current,
			InactivePercent: 100,
		}
	}
	return layout.Params{
		Monitor:         mon.Size,
		Scale:           s.scale.Value(),
		DisplayScale:    displayScale(cfg),
		Gap:             cfg.OverviewGap,
		Orientation:     cfg.Orientation,
		Offset:          s.offset.Value(),
		CrossOffset:     s.cross.Value(),
		Current:         s.current,
		InactivePercent: cfg.InactiveTileSizePercent,
	}
}

// displayScale is the configured resting scale, guarded against zero.
func displayScale(cfg *config.Config) float64 {
	if cfg.DisplayScale < 0.0001 {
		return 0.0001
	}
	return cfg.DisplayScale
}

// layoutTiles recomputes every tile box.
func (s *Session) layoutTiles(mon host.Monitor, cfg *config.Config) {
	p := s.params(mon, cfg)
	for i, t := range s.tiles {
		t.box = p.TileBox(i)
	}
}

// hitTile returns the first tile whose box contains p, or -1.
func (s *Session) hitTile(p geom.Vec) int {
	for i, t := range s.tiles {
		if t.box.Contains(p) {
			return i
		}
	}
	return -1
}

// recenter makes idx the current tile without moving anything on screen,
// then animates the scroll offset back to zero.
func (s *Session) recenter(mon host.Monitor, cfg *config.Config, idx int) {
	delta := s.params(mon, cfg).RecenterDelta(s.current, idx)
	s.current = idx
	s.offset.Warp(s.offset.Value() + delta)
	s.offset.AnimateTo(0, s.deps.Clock.Now(), cfg.AnimationDuration(), anim.EaseOutCubic)
}

// shiftBy moves the current index by step, clamped to the strip. It
// reports whether the index changed.
func (s *Session) shiftBy(step int) bool {
	if step == 0 || len(s.tiles) < 2 {
		return false
	}
	mon, ok := s.monitorInfo()
	if !ok {
		return false
	}
	target := geom.ClampInt(s.current+step, 0, len(s.tiles)-1)
	if target == s.current {
		return false
	}
	s.recenter(mon, s.cfg(), target)

	t := s.tiles[s.current]
	switch {
	case !t.captured && t.cached == nil:
		s.captureTile(s.current, reasonFocus)
	case !t.captured:
		s.damageDirty = true
	}
	s.damage()
	return true
}

func (s *Session) damage() {
	s.deps.Renderer.Damage(s.monitor)
	s.deps.Renderer.ScheduleFrame(s.monitor)
}

// RequestResync marks the workspace list dirty so the next tick reconciles
// it, and forces a refresh of the current tile.
func (s *Session) RequestResync() {
	if s.dropped {
		return
	}
	s.syncDirty = true
	s.nextSyncAt = s.deps.Clock.Now()
	s.pendingCapture = true
	s.damageDirty = true
	s.damage()
}

// Monitor is the monitor the session is drawn on.
func (s *Session) Monitor() host.MonitorID { return s.monitor }

// Transit reports whether the session is a workspace transit.
func (s *Session) Transit() bool { return s.transit }

// Current is the index of the centred tile.
func (s *Session) Current() int { return s.current }

// Workspaces returns the workspaces of the strip in scroll order.
func (s *Session) Workspaces() []host.Workspace {
	out := make([]host.Workspace, len(s.tiles))
	for i, t := range s.tiles {
		out[i] = t.ws
	}
	return out
}

func (s *Session) Closing() bool { return s.closing }
func (s *Session) Dropped() bool { return s.dropped }
func (s *Session) Dragging() bool { return s.drag.dragging }

// Phase reports the lifecycle state.
func (s *Session) Phase() Phase {
	switch {
	case s.dropped:
		return PhaseDropped
	case s.closing:
		return PhaseClosing
	case s.openingInProgress():
		return PhaseOpening
	}
	return PhaseActive
}

// handle is the session's event subscription.
func (s *Session) handle(e host.Event) bool {
	if s.dropped {
		return false
	}
	switch ev := e.(type) {
	case host.PreRender:
		if ev.Monitor == s.monitor {
			s.preRender()
		}
	case host.PointerMove:
		if !s.transit {
			s.onPointerMove(ev)
		}
	case host.PointerButton:
		if s.transit || s.closing {
			return false
		}
		s.onPointerButton(ev)
		return true
	case host.PointerAxis:
		if !s.transit {
			return s.onPointerAxis(ev)
		}
	case host.Key:
		if !s.transit {
			return s.onKey(ev)
		}
	case host.Structure:
		if !s.transit {
			s.log.Debug("structure changed", zap.Stringer("kind", ev.Kind))
			s.RequestResync()
		}
	case host.DamageReported:
		if !s.transit && ev.Monitor == s.monitor {
			s.damageDirty = true
			s.damage()
		}
	case host.ConfigReloaded:
		s.onConfigReloaded()
	}
	return false
}

func (s *Session) onConfigReloaded() {
	cfg := s.cfg()
	for _, t := range s.tiles {
		t.title = titleCache{}
	}
	if cfg.BackgroundSource == config.BackgroundWallpaper && !s.transit {
		if mon, ok := s.monitorInfo(); ok {
			s.captureBackground(mon, cfg)
		}
	} else {
		s.bg = backdrop{}
	}
	if !s.transit {
		s.RequestResync()
	}
}

// preRender is the per-frame tick.
func (s *Session) preRender() {
	s.passQueued = false
	now := s.deps.Clock.Now()

	animating := false
	for _, v := range []*anim.Scalar{s.scale, s.offset, s.cross} {
		if v.Step(now) {
			animating = true
		}
	}
	if s.dropped {
		// An animation callback closed a transit session.
		return
	}
	if animating {
		s.damage()
	}

	mon, ok := s.monitorInfo()
	if !ok {
		s.scheduleDrop()
		return
	}
	cfg := s.cfg()

	if !s.closing && cfg.FreezeAnimations && s.deps.Freezer != nil && !s.transit {
		s.deps.Freezer.Freeze(s.monitor)
	}

	if !s.closing && (s.syncDirty || s.needsSync(now)) && s.syncWorkspaces(mon, cfg) {
		if len(s.tiles) == 0 {
			s.log.Info("no workspaces left, dropping overview")
			s.scheduleDrop()
			return
		}
		s.layoutTiles(mon, cfg)
		s.damage()
		return
	}
	if len(s.tiles) == 0 {
		s.scheduleDrop()
		return
	}

	if s.closing {
		s.advanceClose(now, cfg)
		return
	}

	s.layoutTiles(mon, cfg)
	s.followActiveWorkspace(mon, cfg)

	if s.transit || s.openingInProgress() {
		s.deps.Renderer.ScheduleFrame(s.monitor)
		return
	}
	s.scheduleCaptures(mon, cfg)
}

// openingInProgress reports whether the opening zoom is still running.
func (s *Session) openingInProgress() bool {
	if s.closing {
		return false
	}
	if s.openAnimPending {
		return true
	}
	target := 1.0
	if !s.transit {
		cfg := s.cfg()
		target = layout.ClampScale(cfg.DisplayScale, cfg.DisplayScale)
	}
	d := s.scale.Value() - target
	return d > 0.02 || d < -0.02
}

// followActiveWorkspace recentres on the monitor's active workspace when it
// changed outside the overview.
func (s *Session) followActiveWorkspace(mon host.Monitor, cfg *config.Config) {
	if mon.ActiveWorkspace == s.lastActive && mon.HasActive == s.hadActive {
		return
	}
	s.lastActive, s.hadActive = mon.ActiveWorkspace, mon.HasActive
	if !mon.HasActive || s.tiles[s.current].ws.ID == mon.ActiveWorkspace {
		return
	}
	idx := s.indexOf(mon.ActiveWorkspace)
	if idx < 0 || idx == s.current {
		return
	}
	s.recenter(mon, cfg, idx)

	if s.transit {
		if s.offset.Animating() {
			s.offset.OnDone(func() {
				if s.transit {
					s.Close()
				}
			})
		} else {
			defer s.Close()
		}
	}

	if !s.tiles[s.current].captured {
		reason := reasonFocus
		if s.transit {
			reason = reasonTransit
		}
		s.captureTile(s.current, reason)
	}
	s.damageDirty = true
	s.damage()
}
