package overview

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// dragState follows a left-button press from press to release. Window
// geometry is kept in workspace-local coordinates so it survives the tile
// moving underneath the pointer.
type dragState struct {
	pressed  bool
	dragging bool

	source, target     int
	sourceWS, targetWS host.WorkspaceID

	window    host.Window
	hasWindow bool

	start   geom.Vec // monitor-local press point
	winPos  geom.Vec
	winSize geom.Vec
	grab    geom.Vec

	nextHoverJumpAt time.Time
}

func (d *dragState) clear() {
	*d = dragState{source: -1, target: -1}
}

// toLocal converts a global position to monitor-local coordinates.
func (s *Session) toLocal(p geom.Vec) (geom.Vec, host.Monitor, bool) {
	mon, ok := s.monitorInfo()
	if !ok {
		return p, mon, false
	}
	return p.Sub(mon.Position), mon, true
}

// workspacePoint maps a monitor-local point inside tile idx to the
// workspace's own coordinate space.
func (s *Session) workspacePoint(mon host.Monitor, idx int, p geom.Vec) geom.Vec {
	b := s.tiles[idx].box
	if b.Empty() {
		return geom.Vec{}
	}
	return geom.Vec{
		X: (p.X - b.X) / b.W * mon.Size.X,
		Y: (p.Y - b.Y) / b.H * mon.Size.Y,
	}
}

// pickWindow finds the window under wsPos on the workspace of tile idx,
// topmost first, falling back to the last focused and then the first
// window of that workspace.
func (s *Session) pickWindow(mon host.Monitor, idx int, wsPos geom.Vec) (host.Window, bool) {
	ws := s.tiles[idx].ws.ID
	wins := s.deps.Registry.Windows(ws)
	global := wsPos.Add(mon.Position)
	for i := len(wins) - 1; i >= 0; i-- {
		if wins[i].Workspace == ws && wins[i].Box.Contains(global) {
			return wins[i], true
		}
	}
	if w, ok := s.deps.Registry.LastFocusedWindow(ws); ok && w.Workspace == ws {
		return w, true
	}
	if len(wins) > 0 && wins[0].Workspace == ws {
		return wins[0], true
	}
	return host.Window{}, false
}

func (s *Session) onPointerMove(ev host.PointerMove) {
	p, mon, ok := s.toLocal(ev.Pos)
	if !ok {
		return
	}
	s.pointer = p
	if s.closing || !s.drag.pressed || !s.drag.hasWindow || s.drag.source < 0 {
		return
	}
	cfg := s.cfg()

	if !s.drag.dragging && p.Sub(s.drag.start).Len() >= cfg.DragThreshold {
		s.drag.dragging = true
		s.log.Debug("drag started",
			zap.String("window", string(s.drag.window.ID)),
			zap.Int64("workspace", int64(s.drag.sourceWS)))
	}
	if !s.drag.dragging {
		return
	}

	now := s.deps.Clock.Now()
	if hit := s.hitTile(p); hit >= 0 && hit != s.current && !now.Before(s.drag.nextHoverJumpAt) {
		s.drag.nextHoverJumpAt = now.Add(cfg.DragHoverJumpDelay())
		s.shiftBy(hit - s.current)
		s.layoutTiles(mon, cfg)
	}

	s.drag.target = s.hitTile(p)
	if s.drag.target >= 0 {
		s.drag.targetWS = s.tiles[s.drag.target].ws.ID
	}
	s.damage()
}

func (s *Session) onPointerButton(ev host.PointerButton) {
	if ev.Button != host.ButtonLeft {
		return
	}
	p, mon, ok := s.toLocal(ev.Pos)
	if !ok {
		return
	}
	s.pointer = p
	if ev.Pressed {
		s.press(mon, p)
	} else {
		s.release(mon, p)
	}
}

func (s *Session) press(mon host.Monitor, p geom.Vec) {
	s.drag.clear()
	s.drag.pressed = true
	s.drag.start = p

	hit := s.hitTile(p)
	s.drag.source, s.drag.target = hit, hit
	if hit < 0 {
		return
	}
	s.drag.sourceWS = s.tiles[hit].ws.ID
	s.drag.targetWS = s.drag.sourceWS

	wsPos := s.workspacePoint(mon, hit, p)
	win, ok := s.pickWindow(mon, hit, wsPos)
	if !ok {
		return
	}
	size := geom.Vec{X: math.Max(1, win.Box.W), Y: math.Max(1, win.Box.H)}
	pos := win.Box.Pos().Sub(mon.Position)
	grab := wsPos.Sub(pos)

	s.drag.window = win
	s.drag.hasWindow = true
	s.drag.winSize = size
	s.drag.winPos = pos
	s.drag.grab = geom.Vec{
		X: geom.Clamp(grab.X, 0, size.X),
		Y: geom.Clamp(grab.Y, 0, size.Y),
	}
}

func (s *Session) release(mon host.Monitor, p geom.Vec) {
	if !s.drag.pressed {
		return
	}
	d := s.drag
	s.drag.clear()

	hit := s.hitTile(p)
	if d.dragging {
		target := hit
		if target < 0 {
			target = d.target
		}
		s.finishDrag(d, target)
		return
	}

	if hit < 0 {
		s.Close()
		return
	}
	cfg := s.cfg()
	ws := s.tiles[hit].ws.ID
	if hit != s.current {
		s.recenter(mon, cfg, hit)
	}
	if !mon.HasActive || mon.ActiveWorkspace != ws {
		if err := s.deps.Registry.ActivateWorkspace(s.monitor, ws); err != nil {
			s.log.Warn("activating workspace failed", zap.Int64("workspace", int64(ws)), zap.Error(err))
		}
	}
	if win, ok := s.pickWindow(mon, hit, s.workspacePoint(mon, hit, p)); ok {
		if err := s.deps.Registry.FocusWindow(win.ID); err != nil {
			s.log.Warn("focusing window failed", zap.String("window", string(win.ID)), zap.Error(err))
		}
	}
	s.Close()
}

// finishDrag moves the dragged window to the target tile's workspace.
func (s *Session) finishDrag(d dragState, target int) {
	if !d.hasWindow || target < 0 || target >= len(s.tiles) {
		s.damage()
		return
	}
	dest := s.tiles[target].ws.ID
	if dest == d.window.Workspace {
		s.damage()
		return
	}
	if err := s.deps.Registry.MoveWindow(d.window.ID, dest); err != nil {
		s.log.Warn("moving window failed",
			zap.String("window", string(d.window.ID)),
			zap.Int64("workspace", int64(dest)),
			zap.Error(err))
		s.damage()
		return
	}
	s.log.Info("window moved",
		zap.String("window", string(d.window.ID)),
		zap.Int64("from", int64(d.window.Workspace)),
		zap.Int64("to", int64(dest)))

	for _, idx := range []int{d.source, target} {
		if idx < 0 || idx >= len(s.tiles) {
			continue
		}
		s.tiles[idx].invalidate()
		if s.deps.Cache != nil {
			s.deps.Cache.Invalidate(s.cacheKey(s.tiles[idx].ws.ID))
		}
	}
	s.syncDirty = true
	s.damageDirty = true
	s.pendingCapture = true
	s.damage()
}

func (s *Session) onPointerAxis(ev host.PointerAxis) bool {
	if s.closing || len(s.tiles) < 2 {
		return false
	}
	mon, ok := s.monitorInfo()
	if !ok || !mon.Box().Contains(ev.Pos) {
		return false
	}

	step := 0
	if ev.Discrete {
		switch {
		case ev.Delta > 0:
			step = 1
		case ev.Delta < 0:
			step = -1
		}
	} else {
		if (s.scrollAcc > 0 && ev.Delta < 0) || (s.scrollAcc < 0 && ev.Delta > 0) {
			s.scrollAcc = 0
		}
		s.scrollAcc += ev.Delta
		if threshold := s.cfg().ScrollStepThreshold; math.Abs(s.scrollAcc) >= threshold {
			if s.scrollAcc > 0 {
				step = 1
			} else {
				step = -1
			}
			s.scrollAcc = 0
		}
	}
	if step != 0 {
		s.shiftBy(step)
	}
	return true
}

func (s *Session) onKey(ev host.Key) bool {
	if s.closing || !s.cfg().EscOnly || ev.Name != host.KeyEscape {
		return false
	}
	if ev.Pressed {
		s.Close()
	}
	return true
}
