// Package capture grabs screenshots for the detection pipeline.
package capture

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

// Capturer takes full-screen screenshots, caching the most recent one
// briefly so rapid consecutive requests don't hammer the display server.
type Capturer struct {
	mu       sync.Mutex
	ttl      time.Duration
	last     *image.RGBA
	lastTime time.Time

	now func() time.Time
}

// New creates a capturer with the given cache lifetime. A zero ttl
// disables caching.
func New(ttl time.Duration) *Capturer {
	return &Capturer{ttl: ttl, now: time.Now}
}

// Screenshot captures the primary display, or returns the cached capture
// if it is recent enough.
func (c *Capturer) Screenshot() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && c.now().Sub(c.lastTime) < c.ttl {
		return c.last, nil
	}

	if screenshot.NumActiveDisplays() < 1 {
		return nil, fmt.Errorf("no active display")
	}
	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, fmt.Errorf("capture display: %w", err)
	}

	c.last = img
	c.lastTime = c.now()
	return img, nil
}

// Rect captures an arbitrary screen region, bypassing the cache.
func (c *Capturer) Rect(bounds image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture rect %v: %w", bounds, err)
	}
	return img, nil
}

// DownscaleByLongestEdge resizes an image so its longest edge matches the
// target, preserving aspect ratio. Images already at or below the target
// pass through unchanged. Detection runs faster on the smaller image and
// the merge rescales text coordinates back.
func DownscaleByLongestEdge(img image.Image, target int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if target <= 0 || (w <= target && h <= target) {
		return img
	}
	if w >= h {
		return imaging.Resize(img, target, 0, imaging.Linear)
	}
	return imaging.Resize(img, 0, target, imaging.Linear)
}
