package overview

import (
	"time"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/host"
)

// syncInterval throttles the polling comparison in needsSync.
const syncInterval = 80 * time.Millisecond

// needsSync polls the registry at most every syncInterval and reports
// whether the eligible workspace set differs from the tiles.
func (s *Session) needsSync(now time.Time) bool {
	if now.Before(s.nextSyncAt) {
		return false
	}
	s.nextSyncAt = now.Add(syncInterval)
	return !sameWorkspaces(s.tiles, eligibleWorkspaces(s.deps.Registry, s.monitor))
}

func sameWorkspaces(tiles []*tile, wss []host.Workspace) bool {
	if len(tiles) != len(wss) {
		return false
	}
	for i, t := range tiles {
		if t.ws.ID != wss[i].ID || t.ws.Key != wss[i].Key {
			return false
		}
	}
	return true
}

// syncWorkspaces rebuilds the tile list from the registry, keeping the
// images of workspaces that survived. It reports whether anything changed.
func (s *Session) syncWorkspaces(mon host.Monitor, cfg *config.Config) bool {
	s.syncDirty = false
	s.nextSyncAt = s.deps.Clock.Now().Add(syncInterval)

	wss := eligibleWorkspaces(s.deps.Registry, s.monitor)
	if sameWorkspaces(s.tiles, wss) {
		return false
	}

	var prevCenter host.WorkspaceID
	hadCenter := s.current >= 0 && s.current < len(s.tiles)
	if hadCenter {
		prevCenter = s.tiles[s.current].ws.ID
	}
	oldCurrent := s.current

	byID := make(map[host.WorkspaceID]*tile, len(s.tiles))
	for _, t := range s.tiles {
		byID[t.ws.ID] = t
	}

	s.saveTiles()
	next := make([]*tile, 0, len(wss))
	for _, ws := range wss {
		t, ok := byID[ws.ID]
		switch {
		case !ok:
			t = &tile{ws: ws}
		case t.ws.Key != ws.Key:
			// Same ID, different workspace object.
			t.invalidate()
			if s.deps.Cache != nil {
				s.deps.Cache.Invalidate(s.cacheKey(ws.ID))
			}
			t.ws = ws
		default:
			t.ws = ws
		}
		next = append(next, t)
	}

	s.remapDrag(next)
	s.tiles = next
	s.deps.Metrics.RecordWorkspaceSync(s.ctx, len(next))
	s.log.Debug("workspaces synced", zap.Int("tiles", len(next)))

	if len(next) == 0 {
		s.current = 0
		return true
	}

	s.current = -1
	if hadCenter {
		s.current = s.indexOf(prevCenter)
	}
	if s.current < 0 && mon.HasActive {
		s.current = s.indexOf(mon.ActiveWorkspace)
	}
	if s.current < 0 {
		s.current = clampIndex(oldCurrent, len(next))
	}

	for i, t := range s.tiles {
		if t.texture() == nil {
			s.restoreTile(i)
		}
	}
	if cfg.PrewarmAll {
		s.prewarm()
	} else {
		s.pendingCapture = true
	}
	if cur := s.tiles[s.current]; !cur.captured && cur.cached != nil {
		s.damageDirty = true
	}
	return true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// remapDrag follows the drag source and target to their new indices. A drag
// whose source or target workspace disappeared is abandoned.
func (s *Session) remapDrag(next []*tile) {
	if !s.drag.pressed {
		return
	}
	find := func(id host.WorkspaceID) int {
		for i, t := range next {
			if t.ws.ID == id {
				return i
			}
		}
		return -1
	}
	src := find(s.drag.sourceWS)
	dst := -1
	if s.drag.target >= 0 {
		dst = find(s.drag.targetWS)
	}
	if src < 0 || (s.drag.target >= 0 && dst < 0) {
		s.log.Debug("drag abandoned, workspace removed")
		s.drag.clear()
		return
	}
	s.drag.source = src
	s.drag.target = dst
}
