package mux

import (
	"fmt"
	"os"
	"os/exec"
)

// Detect returns a tmux client when horza runs inside tmux or a tmux
// server is reachable.
func Detect() (*Tmux, error) {
	if os.Getenv("TMUX") != "" {
		return NewTmux(), nil
	}
	if os.Getenv("ZELLIJ") != "" {
		return nil, fmt.Errorf("zellij is not supported")
	}

	// Fall back to checking for running tmux server.
	if tmuxPath, err := exec.LookPath("tmux"); err == nil && tmuxPath != "" {
		cmd := exec.Command("tmux", "list-sessions")
		if err := cmd.Run(); err == nil {
			return NewTmux(), nil
		}
	}

	return nil, fmt.Errorf("no tmux server detected (run horza inside tmux)")
}
