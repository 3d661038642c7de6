package monitor

import (
	"fmt"
	"image"
)

// Rect is the screen-coordinate bounds of one display
type Rect struct {
	Index  int
	Left   int
	Top    int
	Right  int
	Bottom int
}

// FromRectangle converts display bounds as reported by the platform
func FromRectangle(index int, r image.Rectangle) Rect {
	return Rect{
		Index:  index,
		Left:   r.Min.X,
		Top:    r.Min.Y,
		Right:  r.Max.X,
		Bottom: r.Max.Y,
	}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Valid reports whether the rectangle has a positive area
func (r Rect) Valid() bool {
	return r.Right > r.Left && r.Bottom > r.Top
}

// Rectangle returns the bounds as an image.Rectangle
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string {
	return fmt.Sprintf("#%d (%d,%d)-(%d,%d)", r.Index, r.Left, r.Top, r.Right, r.Bottom)
}

// Enumerator returns the rectangles of all attached displays
type Enumerator interface {
	Monitors() ([]Rect, error)
}

// EnumerationError reports a failed display topology query
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("monitor enumeration failed: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

func (e *EnumerationError) Cause() error { return e.Err }

// Static is an Enumerator over a fixed list of rectangles
type Static []Rect

func (s Static) Monitors() ([]Rect, error) {
	out := make([]Rect, len(s))
	copy(out, s)
	return out, nil
}
