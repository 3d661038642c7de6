package monitor

import (
	"image"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"
)

// ErrNoDisplays is reported when the platform lists no active display
var ErrNoDisplays = errors.New("no active displays")

// ScreenEnumerator queries the platform display topology
type ScreenEnumerator struct {
	count  func() int
	bounds func(int) image.Rectangle
}

// NewScreenEnumerator returns an enumerator over the attached displays
func NewScreenEnumerator() *ScreenEnumerator {
	return &ScreenEnumerator{
		count:  screenshot.NumActiveDisplays,
		bounds: screenshot.GetDisplayBounds,
	}
}

// Monitors returns one rectangle per active display, in platform order
func (e *ScreenEnumerator) Monitors() ([]Rect, error) {
	n := e.count()
	if n <= 0 {
		return nil, &EnumerationError{Err: ErrNoDisplays}
	}

	rects := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		r := FromRectangle(i, e.bounds(i))
		if !r.Valid() {
			return nil, &EnumerationError{Err: errors.Errorf("display %d has empty bounds %v", i, r.Rectangle())}
		}
		rects = append(rects, r)
	}
	return rects, nil
}
