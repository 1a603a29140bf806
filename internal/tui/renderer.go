package tui

import (
	"context"
	"fmt"
	"image"

	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

// CaptureSource provides the content of a workspace as a cell grid.
// *mux.Registry is the production implementation.
type CaptureSource interface {
	CaptureWorkspace(ctx context.Context, ws host.WorkspaceID) (*mux.Grid, error)
}

// Renderer implements host.Renderer for a terminal. Draw passes queued
// with Submit run when the frame loop calls RunPass, producing the frame
// shown by the model's View.
type Renderer struct {
	ctx context.Context
	src CaptureSource
	pal palette

	cols, rows int
	pass       func(host.Canvas)
	frame      *Image

	damaged   bool
	wantFrame bool
}

func NewRenderer(ctx context.Context, src CaptureSource, theme Theme) *Renderer {
	return &Renderer{ctx: ctx, src: src, pal: newPalette(theme)}
}

// Resize sets the frame size in cells.
func (r *Renderer) Resize(cols, rows int) {
	r.cols, r.rows = max(0, cols), max(0, rows)
	r.damaged = true
}

func (r *Renderer) CaptureWorkspace(req host.CaptureRequest) (host.Image, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("capture size %dx%d has no area", req.Width, req.Height)
	}
	g, err := r.src.CaptureWorkspace(r.ctx, req.Workspace)
	if err != nil {
		return nil, err
	}
	return gridImage(g, req.Width, req.Height, r.pal), nil
}

func (r *Renderer) CaptureBackground(_ host.MonitorID, width, height int) (host.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("background size %dx%d has no area", width, height)
	}
	return backdropImage(width, height, r.pal), nil
}

func (r *Renderer) Compose(width, height int, draw func(host.Canvas)) (host.Image, error) {
	cols, rows := cellsFor(width, height)
	if cols == 0 {
		return nil, fmt.Errorf("compose size %dx%d has no area", width, height)
	}
	im := NewImage(cols, rows, pixelsPerCell(width, height, cols, rows))
	draw(newCanvas(im))
	return im, nil
}

func (r *Renderer) RenderText(req host.TextRequest) (host.Image, error) {
	im := textImage(req)
	if im.cols == 0 {
		return nil, fmt.Errorf("empty text")
	}
	return im, nil
}

func (r *Renderer) Upload(img image.Image) (host.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	im := uploadImage(img)
	if im.cols == 0 {
		return nil, fmt.Errorf("image has no area")
	}
	return im, nil
}

func (r *Renderer) Submit(_ host.MonitorID, draw func(host.Canvas)) {
	r.pass = draw
	r.wantFrame = true
}

func (r *Renderer) Damage(host.MonitorID) { r.damaged = true }

func (r *Renderer) ScheduleFrame(host.MonitorID) { r.wantFrame = true }

// RunPass runs the queued draw pass into a fresh frame. It reports whether
// a pass was queued.
func (r *Renderer) RunPass() bool {
	if r.pass == nil {
		return false
	}
	draw := r.pass
	r.pass = nil
	im := NewImage(r.cols, r.rows, mux.CellSize)
	c := newCanvas(im)
	c.Clear(host.Color{A: 1})
	draw(c)
	r.frame = im
	return true
}

// Frame returns the last frame produced by RunPass.
func (r *Renderer) Frame() *Image { return r.frame }

// TakeFrameRequest reports and clears whether anything asked for another
// frame since the last call.
func (r *Renderer) TakeFrameRequest() bool {
	want := r.wantFrame || r.damaged
	r.wantFrame, r.damaged = false, false
	return want
}
