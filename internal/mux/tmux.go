package mux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	windowFormat = "#{window_index}\t#{window_id}\t#{window_active}\t#{window_width}\t#{window_height}\t#{window_panes}\t#{window_activity}\t#{window_name}"
	paneFormat   = "#{pane_id}\t#{window_index}\t#{window_id}\t#{pane_index}\t#{pane_left}\t#{pane_top}\t#{pane_width}\t#{pane_height}\t#{pane_active}\t#{pane_pid}\t#{pane_current_command}\t#{pane_title}"
)

// Tmux implements Client by shelling out to the tmux binary.
type Tmux struct {
	// Socket selects a server with -L. Empty uses the default server.
	Socket string
}

// NewTmux creates a new tmux client.
func NewTmux() *Tmux {
	return &Tmux{}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// CurrentSession returns the session of the calling client.
func (t *Tmux) CurrentSession(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", fmt.Errorf("tmux display-message: %w", err)
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "", fmt.Errorf("tmux display-message: no current session")
	}
	return name, nil
}

// ListWindows returns the windows of session in index order.
func (t *Tmux) ListWindows(ctx context.Context, session string) ([]WindowInfo, error) {
	out, err := t.run(ctx, "list-windows", "-t", session, "-F", windowFormat)
	if err != nil {
		return nil, fmt.Errorf("tmux list-windows -t %s: %w", session, err)
	}
	return parseWindows(out), nil
}

// ListPanes returns the panes of every window of session.
func (t *Tmux) ListPanes(ctx context.Context, session string) ([]PaneInfo, error) {
	out, err := t.run(ctx, "list-panes", "-s", "-t", session, "-F", paneFormat)
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes -s -t %s: %w", session, err)
	}
	return parsePanes(out), nil
}

// CapturePane captures the visible content of a tmux pane.
// Lines are not joined so that rows keep their on-screen geometry.
func (t *Tmux) CapturePane(ctx context.Context, pane string) (string, error) {
	out, err := t.run(ctx, "capture-pane", "-t", pane, "-p")
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane -t %s: %w", pane, err)
	}
	return out, nil
}

func (t *Tmux) SelectWindow(ctx context.Context, window string) error {
	if _, err := t.run(ctx, "select-window", "-t", window); err != nil {
		return fmt.Errorf("tmux select-window -t %s: %w", window, err)
	}
	return nil
}

func (t *Tmux) SelectPane(ctx context.Context, pane string) error {
	if _, err := t.run(ctx, "select-pane", "-t", pane); err != nil {
		return fmt.Errorf("tmux select-pane -t %s: %w", pane, err)
	}
	return nil
}

func (t *Tmux) JoinPane(ctx context.Context, pane, window string) error {
	if _, err := t.run(ctx, "join-pane", "-d", "-s", pane, "-t", window); err != nil {
		return fmt.Errorf("tmux join-pane -s %s -t %s: %w", pane, window, err)
	}
	return nil
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	if t.Socket != "" {
		args = append([]string{"-L", t.Socket}, args...)
	}
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// parseWindows parses list-windows output in windowFormat. Malformed lines
// are skipped.
func parseWindows(out string) []WindowInfo {
	var windows []WindowInfo
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 8)
		if len(parts) != 8 {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil || !strings.HasPrefix(parts[1], "@") {
			continue
		}
		windows = append(windows, WindowInfo{
			Index:    index,
			ID:       parts[1],
			Active:   parts[2] == "1",
			Width:    atoi(parts[3]),
			Height:   atoi(parts[4]),
			Panes:    atoi(parts[5]),
			Activity: int64(atoi(parts[6])),
			Name:     parts[7],
		})
	}
	return windows
}

// parsePanes parses list-panes output in paneFormat. The title comes last
// so that tabs inside it survive.
func parsePanes(out string) []PaneInfo {
	var panes []PaneInfo
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 12)
		if len(parts) != 12 || !strings.HasPrefix(parts[0], "%") {
			continue
		}
		windowIndex, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		panes = append(panes, PaneInfo{
			ID:          parts[0],
			WindowIndex: windowIndex,
			WindowID:    parts[2],
			Index:       atoi(parts[3]),
			Left:        atoi(parts[4]),
			Top:         atoi(parts[5]),
			Width:       atoi(parts[6]),
			Height:      atoi(parts[7]),
			Active:      parts[8] == "1",
			PID:         atoi(parts[9]),
			Command:     parts[10],
			Title:       parts[11],
		})
	}
	return panes
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
