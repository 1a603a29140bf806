package overview

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/config"
	"github.com/timvw/horza/internal/host"
	telem "github.com/timvw/horza/internal/otel"
	"github.com/timvw/horza/internal/snapcache"
)

// Construction failures. They are returned wrapped; test with errors.Is.
var (
	ErrNoMonitor         = errors.New("no focused monitor")
	ErrNoActiveWorkspace = errors.New("focused monitor has no active workspace")
	ErrNoWorkspaces      = errors.New("no eligible workspaces on monitor")
	ErrNoTarget          = errors.New("no transit target")

	errDegenerateCapture = errors.New("capture has no area")
)

// Deps are the collaborators a session needs from its host.
type Deps struct {
	Registry host.Registry
	Renderer host.Renderer
	Events   host.Events
	Timers   host.Timers

	// Optional.
	Clock   host.Clock
	Freezer host.Freezer
	Cache   *snapcache.Cache
	Config  config.Source
	Log     *zap.Logger
	Metrics *telem.Metrics
	Tracer  trace.Tracer

	// OnDrop is called once after the session has been torn down.
	OnDrop func(*Session)
}

func (d Deps) withDefaults() (Deps, error) {
	switch {
	case d.Registry == nil:
		return d, fmt.Errorf("overview: registry is required")
	case d.Renderer == nil:
		return d, fmt.Errorf("overview: renderer is required")
	case d.Events == nil:
		return d, fmt.Errorf("overview: event source is required")
	case d.Timers == nil:
		return d, fmt.Errorf("overview: timers are required")
	}
	if d.Clock == nil {
		d.Clock = host.SystemClock{}
	}
	if d.Config == nil {
		d.Config = config.Static(config.Defaults())
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Tracer == nil {
		d.Tracer = noop.NewTracerProvider().Tracer("horza/overview")
	}
	return d, nil
}

// CachePolicy derives the snapshot cache policy from cfg.
func CachePolicy(cfg *config.Config) snapcache.Policy {
	return snapcache.Policy{
		Enabled:    cfg.PersistentCache,
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.CacheMaxEntries,
	}
}
