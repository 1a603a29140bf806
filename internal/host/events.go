package host

import "github.com/timvw/horza/internal/geom"

// Event is a typed host notification. Payloads are decoded once at the
// boundary; the session only switches on the concrete type.
type Event interface {
	eventName() string
}

// PreRender fires once per frame for a monitor, before anything is drawn.
type PreRender struct {
	Monitor MonitorID
}

// PointerMove carries the pointer position in global coordinates.
type PointerMove struct {
	Pos geom.Vec
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

type PointerButton struct {
	Button  Button
	Pressed bool
	Pos     geom.Vec
}

type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// PointerAxis is a scroll event. Discrete events come from wheel detents and
// move by one step in the direction of Delta; continuous events carry raw
// touchpad deltas.
type PointerAxis struct {
	Axis     Axis
	Delta    float64
	Discrete bool
	Pos      geom.Vec
}

// KeyEscape is the name of the dismiss key.
const KeyEscape = "esc"

type Key struct {
	Name    string
	Pressed bool
}

// StructureKind names a change in the monitor/workspace topology.
type StructureKind int

const (
	WorkspaceAdded StructureKind = iota
	WorkspaceRemoved
	WorkspaceMoved
	MonitorAdded
	MonitorRemoved
)

func (k StructureKind) String() string {
	switch k {
	case WorkspaceAdded:
		return "workspace-added"
	case WorkspaceRemoved:
		return "workspace-removed"
	case WorkspaceMoved:
		return "workspace-moved"
	case MonitorAdded:
		return "monitor-added"
	case MonitorRemoved:
		return "monitor-removed"
	}
	return "unknown"
}

// Structure reports a topology change. Monitor is set for monitor events.
type Structure struct {
	Kind    StructureKind
	Monitor MonitorID
}

// DamageReported signals that content on a monitor changed.
type DamageReported struct {
	Monitor MonitorID
}

// ConfigReloaded signals that configuration values changed.
type ConfigReloaded struct{}

func (PreRender) eventName() string      { return "pre-render" }
func (PointerMove) eventName() string    { return "pointer-move" }
func (PointerButton) eventName() string  { return "pointer-button" }
func (PointerAxis) eventName() string    { return "pointer-axis" }
func (Key) eventName() string            { return "key" }
func (Structure) eventName() string      { return "structure" }
func (DamageReported) eventName() string { return "damage" }
func (ConfigReloaded) eventName() string { return "config-reloaded" }

// Name returns a short label for e, used in logs.
func Name(e Event) string { return e.eventName() }
