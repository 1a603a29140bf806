package tui

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

type gridSource struct {
	grids map[host.WorkspaceID]*mux.Grid
}

func (s gridSource) CaptureWorkspace(_ context.Context, ws host.WorkspaceID) (*mux.Grid, error) {
	g, ok := s.grids[ws]
	if !ok {
		return nil, errors.New("no such window")
	}
	return g, nil
}

func newTestRenderer() *Renderer {
	src := gridSource{grids: map[host.WorkspaceID]*mux.Grid{1: testGrid()}}
	return NewRenderer(context.Background(), src, DarkTheme())
}

func TestRendererCaptureWorkspace(t *testing.T) {
	r := newTestRenderer()

	img, err := r.CaptureWorkspace(host.CaptureRequest{Monitor: 1, Workspace: 1, Width: 32, Height: 32})
	require.NoError(t, err)
	w, h := img.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 32, h)

	img, err = r.CaptureWorkspace(host.CaptureRequest{Workspace: 2, Width: 32, Height: 32})
	assert.Error(t, err)
	assert.Nil(t, img)

	_, err = r.CaptureWorkspace(host.CaptureRequest{Workspace: 1})
	assert.Error(t, err)
}

func TestRendererCompose(t *testing.T) {
	r := newTestRenderer()
	img, err := r.Compose(16, 16, func(c host.Canvas) {
		c.Clear(hostWhite)
		c.DrawRect(geom.Box{W: 8, H: 16}, hostBlack, 0)
	})
	require.NoError(t, err)
	im := img.(*Image)
	assert.Equal(t, "#000000", im.At(0, 0).BG.Hex())
	assert.Equal(t, "#ffffff", im.At(1, 0).BG.Hex())

	_, err = r.Compose(0, 16, func(host.Canvas) {})
	assert.Error(t, err)
}

func TestRendererUploadAndText(t *testing.T) {
	r := newTestRenderer()

	_, err := r.Upload(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
	img, err := r.Upload(image.NewNRGBA(image.Rect(0, 0, 32, 32)))
	require.NoError(t, err)
	assert.False(t, host.Degenerate(img))

	_, err = r.RenderText(host.TextRequest{Text: ""})
	assert.Error(t, err)
	img, err = r.RenderText(host.TextRequest{Text: "vim", Color: hostWhite})
	require.NoError(t, err)
	w, h := img.Size()
	assert.Equal(t, 24, w)
	assert.Equal(t, 16, h)
}

func TestRendererPasses(t *testing.T) {
	r := newTestRenderer()
	r.Resize(4, 2)
	assert.True(t, r.TakeFrameRequest(), "resize asks for a frame")
	assert.False(t, r.TakeFrameRequest())

	assert.False(t, r.RunPass(), "nothing queued")

	calls := 0
	r.Submit(1, func(c host.Canvas) {
		calls++
		c.DrawRect(geom.Box{W: 8, H: 16}, hostWhite, 0)
	})
	assert.True(t, r.RunPass())
	assert.False(t, r.RunPass(), "a pass runs once")
	assert.Equal(t, 1, calls)
	require.NotNil(t, r.Frame())
	assert.Equal(t, "#ffffff", r.Frame().At(0, 0).BG.Hex())
	assert.Equal(t, "#000000", r.Frame().At(1, 0).BG.Hex())
	assert.True(t, r.TakeFrameRequest())

	r.Damage(1)
	assert.True(t, r.TakeFrameRequest())
	r.ScheduleFrame(1)
	assert.True(t, r.TakeFrameRequest())
}
