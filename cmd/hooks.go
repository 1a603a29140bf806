package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/timvw/horza/internal/events"
)

// tmuxHook maps a tmux hook to the notification it triggers. Target is a
// tmux format expanded when the hook runs.
type tmuxHook struct {
	Hook   string
	Kind   string
	Target string
}

var tmuxHooks = []tmuxHook{
	{Hook: "window-linked", Kind: events.KindWorkspaceAdded, Target: "#{window_id}"},
	{Hook: "window-unlinked", Kind: events.KindWorkspaceRemoved, Target: "#{window_id}"},
	{Hook: "window-renamed", Kind: events.KindWorkspaceMoved, Target: "#{window_id}"},
	{Hook: "window-layout-changed", Kind: events.KindWorkspaceMoved, Target: "#{window_id}"},
	{Hook: "session-window-changed", Kind: events.KindWorkspaceMoved, Target: "#{window_id}"},
	{Hook: "client-attached", Kind: events.KindMonitorAdded},
	{Hook: "client-resized", Kind: events.KindMonitorAdded},
	{Hook: "client-detached", Kind: events.KindMonitorRemoved},
	{Hook: "pane-exited", Kind: events.KindDamage, Target: "#{window_id}"},
	{Hook: "after-split-window", Kind: events.KindDamage, Target: "#{window_id}"},
	{Hook: "pane-focus-out", Kind: events.KindDamage, Target: "#{window_id}"},
}

var flagBindKey string

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Print tmux configuration that feeds the overview",
	Long: `Print set-hook lines that forward tmux changes to a running overview,
plus a key binding that opens it in a full-size popup.

Add the output to ~/.tmux.conf, or load it directly:

  horza hooks > ~/.config/horza/hooks.tmux
  tmux source-file ~/.config/horza/hooks.tmux`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeHooks(cmd.OutOrStdout(), "horza", flagBindKey)
	},
}

func init() {
	hooksCmd.Flags().StringVar(&flagBindKey, "bind", "o", "prefix key that opens the overview; empty skips the binding")
	rootCmd.AddCommand(hooksCmd)
}

// writeHooks writes the tmux configuration for the binary at exe.
func writeHooks(w io.Writer, exe, bindKey string) error {
	if _, err := fmt.Fprintln(w, "# horza: forward session changes to a running overview"); err != nil {
		return err
	}
	for _, h := range tmuxHooks {
		notify := exe + " notify " + h.Kind
		if h.Target != "" {
			notify += " " + h.Target
		}
		if _, err := fmt.Fprintf(w, "set-hook -ga %s 'run-shell -b \"%s\"'\n", h.Hook, notify); err != nil {
			return err
		}
	}
	if bindKey == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "bind-key %s display-popup -E -w 100%% -h 100%% \"%s overview\"\n", bindKey, exe)
	return err
}
