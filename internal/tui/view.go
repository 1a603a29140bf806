package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

func (m *model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	_, rows := m.reg.Viewport()
	frame := m.frame
	if frame == "" {
		frame = strings.Repeat("\n", max(0, rows-1))
	}
	b.WriteString(frame)
	b.WriteByte('\n')

	if m.prompting {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(ansi.Truncate(m.statusLine(), m.width, "…"))
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *model) statusLine() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("horza"))
	snap := m.reg.Snapshot()
	if snap.Session != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.dim.Render(snap.Session))
	}
	if m.session != nil {
		wss := m.session.Workspaces()
		if cur := m.session.Current(); cur >= 0 && cur < len(wss) {
			ws := wss[cur]
			b.WriteString("  ")
			b.WriteString(m.styles.active.Render(fmt.Sprintf("%d/%d", cur+1, len(wss))))
			if ws.Name != "" {
				b.WriteString(" ")
				b.WriteString(m.styles.status.Render(ws.Name))
			}
		}
		if m.session.Dragging() {
			b.WriteString("  ")
			b.WriteString(m.styles.dim.Render("dragging pane"))
		}
	}
	if m.message != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.err.Render(m.message))
	}
	return b.String()
}
