package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" Authorization=Basic abc , x-team = infra,broken,=nokey")
	assert.Equal(t, map[string]string{
		"Authorization": "Basic abc",
		"x-team":        "infra",
	}, got)
	assert.Empty(t, parseHeaders(""))
}

func TestInit_NoEndpointIsNoop(t *testing.T) {
	tel, err := Init(context.Background(), OTELConfig{})
	require.NoError(t, err)
	assert.False(t, tel.Exporting())
	require.NotNil(t, tel.Metrics)
	require.NotNil(t, tel.Tracer)

	// Instruments work without a provider.
	tel.Metrics.RecordCapture(context.Background(), "visible", 3*time.Millisecond)
	tel.Metrics.RecordSnapshotCache(context.Background(), "hit")
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestParseEndpoint(t *testing.T) {
	ep, err := parseEndpoint("http://collector:4318/otlp/", "Authorization=Basic abc")
	require.NoError(t, err)
	assert.Equal(t, "collector:4318", ep.host)
	assert.Equal(t, "/otlp", ep.path)
	assert.True(t, ep.insecure)
	assert.Equal(t, map[string]string{"Authorization": "Basic abc"}, ep.headers)

	ep, err = parseEndpoint("https://otel.example.com", "")
	require.NoError(t, err)
	assert.False(t, ep.insecure)
	assert.Empty(t, ep.path)

	_, err = parseEndpoint("collector", "")
	assert.Error(t, err)
}

func TestInit_InvalidEndpoint(t *testing.T) {
	_, err := Init(context.Background(), OTELConfig{Endpoint: "://bad"})
	assert.Error(t, err)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordCapture(context.Background(), "damage", time.Millisecond)
	m.RecordCaptureFailure(context.Background(), "damage")
	m.RecordSnapshotCache(context.Background(), "miss")
	m.RecordSession(context.Background(), "opened")
	m.RecordWorkspaceSync(context.Background(), 3)
	m.RecordHook(context.Background(), "damage")

	var tel *Telemetry
	assert.False(t, tel.Exporting())
	assert.NoError(t, tel.Shutdown(context.Background()))
}
