package events

import (
	"testing"
	"time"

	"github.com/timvw/horza/internal/host"
)

func TestValidate_MinimalValidEvent(t *testing.T) {
	e := Event{Kind: KindDamage, TS: time.Now().UTC()}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestValidate_InvalidKind(t *testing.T) {
	e := Event{Kind: "window-resized", TS: time.Now().UTC()}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected invalid kind validation error")
	}
}

func TestValidate_InvalidTarget(t *testing.T) {
	e := Event{Kind: KindDamage, Target: "a b", TS: time.Now().UTC()}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected invalid target validation error")
	}
}

func TestValidate_MissingTimestamp(t *testing.T) {
	e := Event{Kind: KindWorkspaceAdded, Target: "@1"}
	if err := e.Validate(); err == nil {
		t.Fatalf("expected missing timestamp validation error")
	}
}

func TestEvent_Host(t *testing.T) {
	tests := []struct {
		kind string
		want host.Event
	}{
		{KindWorkspaceAdded, host.Structure{Kind: host.WorkspaceAdded}},
		{KindWorkspaceRemoved, host.Structure{Kind: host.WorkspaceRemoved}},
		{KindWorkspaceMoved, host.Structure{Kind: host.WorkspaceMoved}},
		{KindMonitorAdded, host.Structure{Kind: host.MonitorAdded, Monitor: 4}},
		{KindMonitorRemoved, host.Structure{Kind: host.MonitorRemoved, Monitor: 4}},
		{KindDamage, host.DamageReported{Monitor: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			e := Event{Kind: tt.kind, TS: time.Now()}
			if got := e.Host(4); got != tt.want {
				t.Fatalf("Host() = %#v, want %#v", got, tt.want)
			}
			if e.Structural() != (tt.kind != KindDamage) {
				t.Fatalf("Structural() wrong for %s", tt.kind)
			}
		})
	}
}
