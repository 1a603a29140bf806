package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

// cellPoint returns the logical position of the centre of cell x, y.
func cellPoint(x, y int) geom.Vec {
	return geom.Vec{X: (float64(x) + 0.5) * mux.CellSize.X, Y: (float64(y) + 0.5) * mux.CellSize.Y}
}

// mouseTracker remembers the pressed button, since terminals do not
// always report which button was released.
type mouseTracker struct {
	held    host.Button
	holding bool
}

// translate converts a terminal mouse event into host events.
func (t *mouseTracker) translate(msg tea.MouseMsg) []host.Event {
	pos := cellPoint(msg.X, msg.Y)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return []host.Event{host.PointerAxis{Axis: host.AxisVertical, Delta: -1, Discrete: true, Pos: pos}}
	case tea.MouseButtonWheelDown:
		return []host.Event{host.PointerAxis{Axis: host.AxisVertical, Delta: 1, Discrete: true, Pos: pos}}
	case tea.MouseButtonWheelLeft:
		return []host.Event{host.PointerAxis{Axis: host.AxisHorizontal, Delta: -1, Discrete: true, Pos: pos}}
	case tea.MouseButtonWheelRight:
		return []host.Event{host.PointerAxis{Axis: host.AxisHorizontal, Delta: 1, Discrete: true, Pos: pos}}
	}

	move := host.PointerMove{Pos: pos}
	switch msg.Action {
	case tea.MouseActionMotion:
		return []host.Event{move}
	case tea.MouseActionPress:
		b, ok := hostButton(msg.Button)
		if !ok {
			return []host.Event{move}
		}
		t.held, t.holding = b, true
		return []host.Event{move, host.PointerButton{Button: b, Pressed: true, Pos: pos}}
	case tea.MouseActionRelease:
		b, ok := hostButton(msg.Button)
		if !ok {
			if !t.holding {
				return []host.Event{move}
			}
			b = t.held
		}
		t.holding = false
		return []host.Event{move, host.PointerButton{Button: b, Pressed: false, Pos: pos}}
	}
	return nil
}

func hostButton(b tea.MouseButton) (host.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return host.ButtonLeft, true
	case tea.MouseButtonRight:
		return host.ButtonRight, true
	case tea.MouseButtonMiddle:
		return host.ButtonMiddle, true
	}
	return 0, false
}

// stepAxis is the discrete scroll a navigation key stands for.
func stepAxis(axis host.Axis, delta float64, pos geom.Vec) host.PointerAxis {
	return host.PointerAxis{Axis: axis, Delta: delta, Discrete: true, Pos: pos}
}
