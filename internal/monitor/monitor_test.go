package monitor

import (
	"image"
	"testing"

	"github.com/pkg/errors"
)

func TestFromRectangle(t *testing.T) {
	r := FromRectangle(1, image.Rect(1920, 0, 3840, 1080))

	if r.Left != 1920 || r.Top != 0 || r.Right != 3840 || r.Bottom != 1080 {
		t.Errorf("FromRectangle() = %+v", r)
	}
	if r.Width() != 1920 || r.Height() != 1080 {
		t.Errorf("size = %dx%d, want 1920x1080", r.Width(), r.Height())
	}
	if r.Index != 1 {
		t.Errorf("Index = %d, want 1", r.Index)
	}
	if r.Rectangle() != image.Rect(1920, 0, 3840, 1080) {
		t.Errorf("Rectangle() = %v", r.Rectangle())
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"normal", Rect{Right: 10, Bottom: 10}, true},
		{"negative origin", Rect{Left: -1280, Top: -200, Right: 0, Bottom: 824}, true},
		{"zero width", Rect{Left: 5, Right: 5, Bottom: 10}, false},
		{"inverted height", Rect{Top: 10, Right: 10, Bottom: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func fakeScreens(bounds ...image.Rectangle) *ScreenEnumerator {
	return &ScreenEnumerator{
		count:  func() int { return len(bounds) },
		bounds: func(i int) image.Rectangle { return bounds[i] },
	}
}

func TestScreenEnumerator(t *testing.T) {
	e := fakeScreens(image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080))

	rects, err := e.Monitors()
	if err != nil {
		t.Fatalf("Monitors() error: %v", err)
	}
	if len(rects) != 2 {
		t.Fatalf("Monitors() returned %d rects, want 2", len(rects))
	}
	if rects[1].Index != 1 || rects[1].Left != 1920 {
		t.Errorf("second monitor = %v", rects[1])
	}
}

func TestScreenEnumeratorErrors(t *testing.T) {
	tests := []struct {
		name   string
		bounds []image.Rectangle
	}{
		{"no displays", nil},
		{"empty bounds", []image.Rectangle{image.Rect(0, 0, 1920, 1080), {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rects, err := fakeScreens(tt.bounds...).Monitors()
			if err == nil {
				t.Fatalf("Monitors() = %v, want error", rects)
			}

			var enumErr *EnumerationError
			if !errors.As(err, &enumErr) {
				t.Errorf("Monitors() error = %T, want *EnumerationError", err)
			}
		})
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	s := Static{{Right: 10, Bottom: 10}}

	rects, _ := s.Monitors()
	rects[0].Right = 99

	if s[0].Right != 10 {
		t.Error("Monitors() leaked the backing slice")
	}
}

func TestNewScreenEnumerator(t *testing.T) {
	rects, err := NewScreenEnumerator().Monitors()
	if err != nil {
		t.Logf("Monitors() error (expected without a display): %v", err)
		return
	}
	for _, r := range rects {
		t.Logf("Display %v", r)
		if !r.Valid() {
			t.Errorf("invalid display rect %v", r)
		}
	}
}
