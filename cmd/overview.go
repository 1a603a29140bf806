package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
	"github.com/timvw/horza/internal/overview"
	"github.com/timvw/horza/internal/snapcache"
	"github.com/timvw/horza/internal/tui"
)

// hookTTL bounds how long an undelivered hook event stays queued.
const hookTTL = 5 * time.Second

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Open the workspace overview",
	Long: `Open the zoomed-out strip of every window in the current tmux session.

Keys: left/right (h/l) scroll, enter switches to the centred window, g opens
a go-to prompt, esc or q closes. Any other key closes too unless esc_only is
set. Click a window to switch to it, drag a pane onto another window to move
it there.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverview(cmd, "")
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

// runOverview runs the interactive overview. A non-empty transit slides to
// that workspace argument instead of opening the strip.
func runOverview(cmd *cobra.Command, transit string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rt.close(shutdownCtx)
	}()
	log := rt.log

	client, err := getTmux()
	if err != nil {
		return err
	}
	reg := mux.NewRegistry(client, log)

	// Hook events from tmux arrive over a unix datagram socket. Running
	// without them only loses latency: the snapshot poll catches up.
	queue := events.NewQueue(hookTTL)
	collector := events.NewCollector(queue, socketPath(rt.cfg), log, rt.metrics)
	var hookNotify <-chan struct{}
	switch err := collector.Start(ctx); {
	case errors.Is(err, events.ErrSocketInUse):
		log.Info("another overview owns the hook socket, polling only", zap.Error(err))
	case err != nil:
		log.Warn("hook collector unavailable", zap.Error(err))
	default:
		hookNotify = collector.Notify()
	}

	var configChanges <-chan *config.Config
	if path := configPath(rt.cfg); path != "" {
		w, err := config.Watch(path, log)
		if err != nil {
			log.Warn("config watch failed", zap.String("path", path), zap.Error(err))
		} else {
			defer w.Close()
			configChanges = w.Changes()
		}
	}

	log.Info("overview starting",
		zap.String("version", Version),
		zap.String("mux", client.Name()),
		zap.String("transit", transit),
		zap.Bool("otel", rt.tel.Exporting()),
	)

	err = tui.Run(ctx, tui.Options{
		Registry:      reg,
		Config:        config.NewHolder(rt.cfg),
		Cache:         snapcache.New(overview.CachePolicy(rt.cfg), host.SystemClock{}),
		Theme:         tui.ThemeByName(rt.cfg.Theme),
		Log:           log,
		Metrics:       rt.metrics,
		Tracer:        rt.tracer,
		Hooks:         queue,
		HookNotify:    hookNotify,
		ConfigChanges: configChanges,
		Transit:       transit,
	})
	if err != nil {
		log.Error("overview failed", zap.Error(err))
	}
	return err
}

// configPath is the file to watch for live reloads.
func configPath(cfg *config.Config) string {
	if flagConfig != "" {
		return flagConfig
	}
	if cfg.ConfigFile != "" {
		return cfg.ConfigFile
	}
	return config.SearchPath()
}
