package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "horza"

// Metrics holds all OTEL metric instruments for horza.
// All counters are cumulative (monotonic) and safe for concurrent use.
// Every Record method is a no-op on a nil *Metrics.
type Metrics struct {
	// Workspace captures (partitioned by reason: damage, visible, focus,
	// live, prewarm, transit)
	Captures        metric.Int64Counter
	CaptureFailures metric.Int64Counter
	CaptureDuration metric.Float64Histogram

	// Snapshot cache events (hit, miss, store, evict, expire)
	SnapshotCache metric.Int64Counter

	// Session lifecycle (opened, closed, reopened, dropped, rejected)
	Sessions metric.Int64Counter

	// Workspace list reconciliations
	WorkspaceSyncs metric.Int64Counter

	// Hook notifications received on the event socket
	Hooks metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- Capture instruments ---

	m.Captures, err = meter.Int64Counter("overview.captures",
		metric.WithDescription("Workspace captures partitioned by the reason they were scheduled"))
	if err != nil {
		return nil, err
	}

	m.CaptureFailures, err = meter.Int64Counter("overview.capture_failures",
		metric.WithDescription("Workspace captures skipped because the renderer failed or the output had no area"))
	if err != nil {
		return nil, err
	}

	m.CaptureDuration, err = meter.Float64Histogram("overview.capture_duration",
		metric.WithDescription("Wall time spent in a single workspace capture"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	// --- Snapshot cache ---

	m.SnapshotCache, err = meter.Int64Counter("snapshot_cache.events",
		metric.WithDescription("Snapshot cache hits, misses, stores, evictions and expiries"))
	if err != nil {
		return nil, err
	}

	// --- Session lifecycle ---

	m.Sessions, err = meter.Int64Counter("overview.sessions",
		metric.WithDescription("Overview session lifecycle transitions"))
	if err != nil {
		return nil, err
	}

	m.WorkspaceSyncs, err = meter.Int64Counter("overview.workspace_syncs",
		metric.WithDescription("Workspace list reconciliations that changed the tile list"))
	if err != nil {
		return nil, err
	}

	m.Hooks, err = meter.Int64Counter("hooks.received",
		metric.WithDescription("Hook notifications accepted by the event collector"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCapture records a successful capture and its duration.
func (m *Metrics) RecordCapture(ctx context.Context, reason string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("capture.reason", reason))
	m.Captures.Add(ctx, 1, attrs)
	m.CaptureDuration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}

// RecordCaptureFailure records a skipped capture.
func (m *Metrics) RecordCaptureFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.CaptureFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("capture.reason", reason),
	))
}

// RecordSnapshotCache records a snapshot cache event.
func (m *Metrics) RecordSnapshotCache(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.SnapshotCache.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.event", event),
	))
}

// RecordSession records a session lifecycle transition.
func (m *Metrics) RecordSession(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.Sessions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("session.event", event),
	))
}

// RecordWorkspaceSync records a reconciliation of the tile list.
func (m *Metrics) RecordWorkspaceSync(ctx context.Context, tiles int) {
	if m == nil {
		return
	}
	m.WorkspaceSyncs.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("overview.tiles", tiles),
	))
}

// RecordHook records an accepted hook notification.
func (m *Metrics) RecordHook(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.Hooks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("hook.kind", kind),
	))
}
