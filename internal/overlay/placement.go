package overlay

import (
	"image"

	"crosshair/internal/monitor"
)

// Placement returns the top-left corner that centers a w×h image on m. The
// result is not clamped: an image larger than the monitor gets an origin
// outside it.
func Placement(m monitor.Rect, w, h int) image.Point {
	return image.Point{
		X: m.Left + (m.Width()-w)/2,
		Y: m.Top + (m.Height()-h)/2,
	}
}
