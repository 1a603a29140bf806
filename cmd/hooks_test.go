package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
)

func TestTmuxHooksCoverEveryKind(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range tmuxHooks {
		require.True(t, events.IsValidKind(h.Kind), "hook %s maps to unknown kind %q", h.Hook, h.Kind)
		seen[h.Kind] = true
	}
	for _, k := range events.Kinds {
		assert.True(t, seen[k], "no tmux hook sends %q", k)
	}
}

func TestWriteHooks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHooks(&buf, "/usr/local/bin/horza", "o"))
	out := buf.String()

	assert.Contains(t, out, `set-hook -ga window-linked 'run-shell -b "/usr/local/bin/horza notify workspace-added #{window_id}"'`)
	assert.Contains(t, out, `set-hook -ga client-detached 'run-shell -b "/usr/local/bin/horza notify monitor-removed"'`)
	assert.Contains(t, out, `bind-key o display-popup -E -w 100% -h 100% "/usr/local/bin/horza overview"`)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(tmuxHooks)+2)
}

func TestWriteHooksWithoutBinding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHooks(&buf, "horza", ""))
	assert.NotContains(t, buf.String(), "bind-key")
}

func TestNoListener(t *testing.T) {
	err := events.Send("/nonexistent/horza-test.sock", events.Event{Kind: events.KindDamage, TS: time.Now()})
	require.Error(t, err)
	assert.True(t, noListener(err))
}

func TestResolveSocketPathPrefersConfig(t *testing.T) {
	assert.Equal(t, "/tmp/x.sock", socketPath(&config.Config{EventSocket: "/tmp/x.sock"}))
	assert.Equal(t, events.DefaultSocketPath(), socketPath(nil))
}
