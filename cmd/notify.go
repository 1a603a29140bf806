package cmd

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
)

var flagStrict bool

var notifyCmd = &cobra.Command{
	Use:   "notify <kind> [target]",
	Short: "Tell a running overview that the session changed",
	Long: `Send a change notification to the running overview. tmux hooks call this;
see "horza hooks" for a ready-made configuration.

Kinds: workspace-added, workspace-removed, workspace-moved, monitor-added,
monitor-removed, damage. The optional target is a tmux window or pane ID.

When no overview is running the notification is dropped silently unless
--strict is given.`,
	Example: `  horza notify damage @3
  horza notify workspace-added`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := events.Event{Kind: args[0], TS: time.Now().UTC()}
		if len(args) == 2 {
			e.Target = args[1]
		}
		if err := e.Validate(); err != nil {
			return err
		}

		// Hooks fire on every tmux change; skip the config file and
		// logger unless the socket has to be resolved from them.
		path := flagSocket
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				cfg = config.Defaults()
			}
			path = socketPath(cfg)
		}

		err := events.Send(path, e)
		if err != nil && !flagStrict && noListener(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("notify %s: %w", e.Kind, err)
		}
		return nil
	},
}

func init() {
	notifyCmd.Flags().BoolVar(&flagStrict, "strict", false, "fail when no overview is listening")
	rootCmd.AddCommand(notifyCmd)
}

// noListener reports whether err means nothing is bound to the socket.
func noListener(err error) bool {
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED)
}
