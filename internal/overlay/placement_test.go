package overlay

import (
	"image"
	"testing"

	"crosshair/internal/monitor"
)

func TestPlacement(t *testing.T) {
	tests := []struct {
		name string
		mon  monitor.Rect
		w, h int
		want image.Point
	}{
		{"primary 1080p", monitor.Rect{Right: 1920, Bottom: 1080}, 100, 100, image.Pt(910, 490)},
		{"secondary to the right", monitor.Rect{Left: 1920, Right: 3840, Bottom: 1080}, 100, 100, image.Pt(2830, 490)},
		{"monitor left of primary", monitor.Rect{Left: -1280, Top: -200, Right: 0, Bottom: 824}, 64, 64, image.Pt(-672, 280)},
		{"odd remainder truncates", monitor.Rect{Right: 101, Bottom: 101}, 10, 10, image.Pt(45, 45)},
		{"image fills monitor", monitor.Rect{Right: 800, Bottom: 600}, 800, 600, image.Pt(0, 0)},
		{"image larger than monitor", monitor.Rect{Right: 100, Bottom: 100}, 300, 101, image.Pt(-100, 0)},
		{"larger with odd overflow truncates toward zero", monitor.Rect{Right: 100, Bottom: 100}, 103, 103, image.Pt(-1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Placement(tt.mon, tt.w, tt.h); got != tt.want {
				t.Errorf("Placement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlacementStaysWithinMonitor(t *testing.T) {
	monitors := []monitor.Rect{
		{Right: 1920, Bottom: 1080},
		{Left: 1920, Right: 3840, Bottom: 1080},
		{Left: -1080, Top: -420, Right: 0, Bottom: 1500},
		{Left: 7, Top: 3, Right: 8, Bottom: 4},
		{Left: 100, Top: 50, Right: 1379, Bottom: 1073},
	}

	for _, m := range monitors {
		for _, w := range []int{1, 2, 3, m.Width() / 3, m.Width() - 1, m.Width()} {
			for _, h := range []int{1, 2, 5, m.Height() / 2, m.Height() - 1, m.Height()} {
				if w < 1 || h < 1 || w > m.Width() || h > m.Height() {
					continue
				}

				p := Placement(m, w, h)
				if p.X < m.Left || p.X > m.Right-w {
					t.Errorf("%v %dx%d: x = %d outside [%d, %d]", m, w, h, p.X, m.Left, m.Right-w)
				}
				if p.Y < m.Top || p.Y > m.Bottom-h {
					t.Errorf("%v %dx%d: y = %d outside [%d, %d]", m, w, h, p.Y, m.Top, m.Bottom-h)
				}
				if p.X+w > m.Right || p.Y+h > m.Bottom {
					t.Errorf("%v %dx%d: far corner (%d,%d) outside monitor", m, w, h, p.X+w, p.Y+h)
				}
			}
		}
	}
}
