package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenSource grabs live frames from a physical display.
type ScreenSource struct {
	// Display is the display index, zero for the primary monitor.
	Display int
	// Region, when non-empty, restricts the grab to a screen rectangle in
	// absolute coordinates.
	Region image.Rectangle
}

func (s ScreenSource) Frame() (image.Image, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if !s.Region.Empty() {
		return screenshot.CaptureRect(s.Region)
	}
	if s.Display < 0 || s.Display >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d out of range", s.Display)
	}
	return screenshot.CaptureDisplay(s.Display)
}

// Origin is the screen position frames from this source start at, used to
// translate region-relative button positions into click coordinates.
func (s ScreenSource) Origin() (int, int) {
	if !s.Region.Empty() {
		return s.Region.Min.X, s.Region.Min.Y
	}
	if s.Display < 0 || s.Display >= screenshot.NumActiveDisplays() {
		return 0, 0
	}
	bounds := screenshot.GetDisplayBounds(s.Display)
	return bounds.Min.X, bounds.Min.Y
}
