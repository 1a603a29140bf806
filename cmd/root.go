package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/events"
	"github.com/timvw/horza/internal/logging"
	"github.com/timvw/horza/internal/mux"
	telem "github.com/timvw/horza/internal/otel"
)

var (
	// Global flags.
	flagConfig     string
	flagLogFile    string
	flagLogLevel   string
	flagSocket     string
	flagTheme      string
	flagTmuxSocket string
)

var rootCmd = &cobra.Command{
	Use:   "horza",
	Short: "Zoomed-out workspace overview for tmux",
	Long: `horza shows every window of the current tmux session side by side as a
strip of live thumbnails. Scroll or use the arrow keys to move along the
strip, click a window to switch to it, drag a pane onto another window to
move it there.

Run it inside tmux, usually from a popup:

  bind-key o display-popup -E -w 100% -h 100% "horza overview"

Configuration is loaded from .horza.yaml, ~/.config/horza/config.yaml or
HORZA_* environment variables and reloaded while the overview runs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverview(cmd, "")
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", envOrDefault("HORZA_CONFIG", ""), "config file (default: search .horza.yaml, ~/.config/horza/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log destination (default: $XDG_STATE_HOME/horza/horza.log)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagSocket, "socket", "", "unix datagram socket for tmux hook events")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "color theme: dark, light")
	rootCmd.PersistentFlags().StringVar(&flagTmuxSocket, "tmux-socket", envOrDefault("HORZA_TMUX_SOCKET", ""), "tmux server socket name (tmux -L)")
}

// app bundles what every long-running command needs.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	tel     *telem.Telemetry
	metrics *telem.Metrics
	tracer  trace.Tracer
}

func (rt *app) close(ctx context.Context) {
	if err := rt.tel.Shutdown(ctx); err != nil {
		rt.log.Debug("telemetry shutdown", zap.Error(err))
	}
	_ = rt.log.Sync()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagSocket != "" {
		cfg.EventSocket = flagSocket
	}
	if flagTheme != "" {
		cfg.Theme = flagTheme
	}
	return cfg, nil
}

// setup loads configuration and starts logging and telemetry.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.ConfigFile != "" {
		log.Info("config loaded", zap.String("file", cfg.ConfigFile))
	}
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		log.Warn("otel init failed", zap.Error(err))
	}

	rt := &app{cfg: cfg, log: log, tel: tel}
	if tel != nil {
		rt.metrics = tel.Metrics
		rt.tracer = tel.Tracer
	}
	return rt, nil
}

// getTmux returns a client for the configured or detected tmux server.
func getTmux() (*mux.Tmux, error) {
	if flagTmuxSocket != "" {
		return &mux.Tmux{Socket: flagTmuxSocket}, nil
	}
	return mux.Detect()
}

// loadRegistry connects to tmux and loads the current session.
func loadRegistry(ctx context.Context, log *zap.Logger) (*mux.Registry, error) {
	client, err := getTmux()
	if err != nil {
		return nil, err
	}
	reg := mux.NewRegistry(client, log)
	if err := reg.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("reading tmux session: %w", err)
	}
	return reg, nil
}

func socketPath(cfg *config.Config) string {
	if cfg != nil && cfg.EventSocket != "" {
		return cfg.EventSocket
	}
	return events.DefaultSocketPath()
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
