package overview

import (
	"time"

	"github.com/timvw/horza/internal/geom"
	"github.com/timvw/horza/internal/host"
)

// tile is one workspace in the strip.
type tile struct {
	ws host.Workspace

	// captured is set while image holds a capture taken by this session.
	captured bool
	image    host.Image
	// cached is borrowed from the snapshot cache until the first capture.
	cached        host.Image
	lastCaptureAt time.Time

	// box is the display box computed by the last layout pass, in
	// monitor-local logical coordinates.
	box geom.Box

	title titleCache
}

// titleCache remembers the inputs of the last rendered title so it is
// re-shaped only when one of them changes.
type titleCache struct {
	text     string
	size     int
	family   string
	maxWidth int
	image    host.Image
}

func (c titleCache) matches(text string, size int, family string, maxWidth int) bool {
	return c.image != nil && c.text == text && c.size == size && c.family == family && c.maxWidth == maxWidth
}

// texture is the image to draw: the capture, else the cached snapshot.
func (t *tile) texture() host.Image {
	if t.captured {
		return t.image
	}
	return t.cached
}

// invalidate drops every image and the title so the tile is recaptured.
func (t *tile) invalidate() {
	t.captured = false
	t.image = nil
	t.cached = nil
	t.title = titleCache{}
}

func (t *tile) setCapture(img host.Image, at time.Time) {
	t.image = img
	t.captured = true
	t.cached = nil
	t.lastCaptureAt = at
}
