// Package events receives change notifications from tmux hooks.
//
// tmux runs `horza notify <kind> [target]` from set-hook; the command sends
// one JSON datagram to the overview's unix socket, where a Collector queues
// it until the UI loop drains the queue and turns each event into a host
// event.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/timvw/horza/internal/host"
)

const (
	KindWorkspaceAdded   = "workspace-added"
	KindWorkspaceRemoved = "workspace-removed"
	KindWorkspaceMoved   = "workspace-moved"
	KindMonitorAdded     = "monitor-added"
	KindMonitorRemoved   = "monitor-removed"
	KindDamage           = "damage"
)

// Kinds lists every accepted kind, in the order `horza hooks` prints them.
var Kinds = []string{
	KindWorkspaceAdded,
	KindWorkspaceRemoved,
	KindWorkspaceMoved,
	KindMonitorAdded,
	KindMonitorRemoved,
	KindDamage,
}

// Event is the hook payload sent over the socket.
type Event struct {
	Kind   string    `json:"kind"`
	Target string    `json:"target,omitempty"` // tmux target, e.g. "@3" or "%5"
	TS     time.Time `json:"ts"`
}

func (e Event) Validate() error {
	if !IsValidKind(e.Kind) {
		return fmt.Errorf("invalid kind %q", e.Kind)
	}
	if strings.ContainsAny(e.Target, " \t\r\n") {
		return fmt.Errorf("invalid target %q", e.Target)
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	return nil
}

func IsValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Host converts e into the host event the overview understands. Monitor
// events carry mon.
func (e Event) Host(mon host.MonitorID) host.Event {
	switch e.Kind {
	case KindWorkspaceAdded:
		return host.Structure{Kind: host.WorkspaceAdded}
	case KindWorkspaceRemoved:
		return host.Structure{Kind: host.WorkspaceRemoved}
	case KindWorkspaceMoved:
		return host.Structure{Kind: host.WorkspaceMoved}
	case KindMonitorAdded:
		return host.Structure{Kind: host.MonitorAdded, Monitor: mon}
	case KindMonitorRemoved:
		return host.Structure{Kind: host.MonitorRemoved, Monitor: mon}
	}
	return host.DamageReported{Monitor: mon}
}

// Structural reports whether e changes the window topology.
func (e Event) Structural() bool {
	return e.Kind != KindDamage
}
