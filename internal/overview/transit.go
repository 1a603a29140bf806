package overview

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/timvw/horza/internal/host"
)

// parseWorkspaceArg interprets "+N" and "-N" relative to active and
// anything else as an absolute workspace ID.
func parseWorkspaceArg(arg string, active host.WorkspaceID) (host.WorkspaceID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("empty workspace argument: %w", ErrNoTarget)
	}
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid workspace argument %q: %w", arg, ErrNoTarget)
	}
	if arg[0] == '+' || arg[0] == '-' {
		return active + host.WorkspaceID(n), nil
	}
	return host.WorkspaceID(n), nil
}

// ResolveTransitTarget resolves arg to a workspace on mon that a transit
// can slide to: positive, not the active one, and on the same monitor.
func ResolveTransitTarget(reg host.Registry, mon host.Monitor, arg string) (host.WorkspaceID, error) {
	if !mon.HasActive {
		return 0, ErrNoActiveWorkspace
	}
	id, err := parseWorkspaceArg(arg, mon.ActiveWorkspace)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("workspace %d is not a normal workspace: %w", id, ErrNoTarget)
	}
	if id == mon.ActiveWorkspace {
		return 0, fmt.Errorf("workspace %d is already active: %w", id, ErrNoTarget)
	}
	for _, ws := range eligibleWorkspaces(reg, mon.ID) {
		if ws.ID == id {
			return id, nil
		}
	}
	return 0, fmt.Errorf("workspace %d is not on monitor %s: %w", id, mon.Name, ErrNoTarget)
}

// Transit switches the focused monitor to the workspace named by arg,
// sliding the strip from the active workspace to the destination. When a
// session is already open, or the destination is not a workspace on the
// focused monitor, it only switches workspaces. It returns the session the
// caller should hold from now on.
func Transit(deps Deps, current *Session, arg string) (*Session, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return current, err
	}
	mon, ok := deps.Registry.FocusedMonitor()
	if !ok {
		return current, reject(deps, ErrNoMonitor)
	}

	busy := current != nil && !current.dropped
	var target host.WorkspaceID
	if !busy {
		target, err = ResolveTransitTarget(deps.Registry, mon, arg)
	}
	if busy || err != nil {
		if err != nil {
			deps.Log.Debug("transit target unresolved, switching directly", zap.String("arg", arg), zap.Error(err))
		}
		return current, dispatchWorkspace(deps, mon, arg)
	}

	s, err := open(deps, mon, mon.ActiveWorkspace, true, target)
	if err != nil {
		return current, err
	}
	if err := deps.Registry.ActivateWorkspace(mon.ID, target); err != nil {
		s.log.Warn("activating transit target failed", zap.Int64("workspace", int64(target)), zap.Error(err))
		s.Close()
	}
	return s, nil
}

// dispatchWorkspace is the plain workspace switch used when no transit runs.
func dispatchWorkspace(deps Deps, mon host.Monitor, arg string) error {
	id, err := parseWorkspaceArg(arg, mon.ActiveWorkspace)
	if err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("workspace %d: %w", id, ErrNoTarget)
	}
	if err := deps.Registry.ActivateWorkspace(mon.ID, id); err != nil {
		return fmt.Errorf("activating workspace %d: %w", id, err)
	}
	return nil
}
