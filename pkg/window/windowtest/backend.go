// Package windowtest provides an in-memory window.Backend for tests. It keeps
// a z-ordered window list, routes simulated clicks the way a compositor does
// and lets tests inject failures at each step.
package windowtest

import (
	"fmt"
	"image"

	"crosshair/pkg/window"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindForeign Kind = iota
	KindControl
	KindOverlay
)

// Window is the recorded state of one simulated window
type Window struct {
	Handle           window.Handle
	Kind             Kind
	Title            string
	Bounds           image.Rectangle
	Topmost          bool
	InputTransparent bool
	ShownInTaskbar   bool
	Pix              []byte
	Clicks           int
}

// Backend is a scripted window.Backend
type Backend struct {
	// Failures injected by tests
	RegisterErr error
	ControlErr  error
	RunErr      error
	OverlayErrs map[int]error // keyed by CreateOverlay call number, from 0

	Registered []string
	Destroyed  []window.Handle
	Quits      int
	Closed     bool

	// Screen is used to center the control window
	Screen image.Rectangle

	windows      map[window.Handle]*Window
	zorder       []window.Handle // bottom to top
	focus        window.Handle
	next         window.Handle
	overlayCalls int
	queue        []func(h window.EventHandler)
	handler      window.EventHandler
	quit         bool
}

// New returns an empty backend with a 1920x1080 primary screen
func New() *Backend {
	return &Backend{
		OverlayErrs: make(map[int]error),
		Screen:      image.Rect(0, 0, 1920, 1080),
		windows:     make(map[window.Handle]*Window),
	}
}

func (b *Backend) Name() string { return "test" }

func (b *Backend) RegisterClasses(overlayClass, controlClass string) error {
	if b.RegisterErr != nil {
		return b.RegisterErr
	}
	b.Registered = append(b.Registered, overlayClass, controlClass)
	return nil
}

func (b *Backend) CreateControl(spec window.ControlSpec) (window.Handle, error) {
	if b.ControlErr != nil {
		return 0, b.ControlErr
	}

	origin := image.Pt(
		b.Screen.Min.X+(b.Screen.Dx()-spec.Width)/2,
		b.Screen.Min.Y+(b.Screen.Dy()-spec.Height)/2,
	)
	w := b.add(&Window{
		Kind:           KindControl,
		Title:          spec.Title,
		Bounds:         image.Rectangle{Min: origin, Max: origin.Add(image.Pt(spec.Width, spec.Height))},
		ShownInTaskbar: true,
	})
	b.focus = w.Handle
	return w.Handle, nil
}

func (b *Backend) CreateOverlay(spec window.OverlaySpec) (window.Handle, error) {
	call := b.overlayCalls
	b.overlayCalls++

	if err := b.OverlayErrs[call]; err != nil {
		return 0, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return 0, errors.Errorf("invalid overlay size %dx%d", spec.Width, spec.Height)
	}
	if len(spec.Pix) != spec.Width*spec.Height*4 {
		return 0, errors.Errorf("pixel buffer is %d bytes, want %d", len(spec.Pix), spec.Width*spec.Height*4)
	}

	w := b.add(&Window{
		Kind:             KindOverlay,
		Bounds:           image.Rectangle{Min: spec.Origin, Max: spec.Origin.Add(image.Pt(spec.Width, spec.Height))},
		Topmost:          true,
		InputTransparent: true,
		Pix:              spec.Pix,
	})
	return w.Handle, nil
}

// AddForeign places another application's window on the desktop
func (b *Backend) AddForeign(bounds image.Rectangle) window.Handle {
	w := b.add(&Window{Kind: KindForeign, Bounds: bounds, ShownInTaskbar: true})
	b.focus = w.Handle
	return w.Handle
}

func (b *Backend) add(w *Window) *Window {
	b.next++
	w.Handle = b.next
	b.windows[w.Handle] = w
	b.zorder = append(b.zorder, w.Handle)
	return w
}

func (b *Backend) Destroy(h window.Handle) error {
	w, ok := b.windows[h]
	if !ok {
		return errors.Errorf("window %d does not exist", h)
	}

	delete(b.windows, h)
	for i, z := range b.zorder {
		if z == h {
			b.zorder = append(b.zorder[:i], b.zorder[i+1:]...)
			break
		}
	}
	if b.focus == h {
		b.focus = 0
	}
	b.Destroyed = append(b.Destroyed, h)

	if w.Kind == KindOverlay && b.handler != nil {
		b.handler.OverlayDestroyed(h)
	}
	return nil
}

// QueueClose schedules a click on the control window's close button
func (b *Backend) QueueClose() {
	b.queue = append(b.queue, func(h window.EventHandler) { h.CloseRequested() })
}

// QueueExternalDestroy schedules the platform destroying a window on its own
func (b *Backend) QueueExternalDestroy(handle window.Handle) {
	b.queue = append(b.queue, func(window.EventHandler) { _ = b.Destroy(handle) })
}

// QueueFunc schedules arbitrary work on the dispatch loop
func (b *Backend) QueueFunc(fn func()) {
	b.queue = append(b.queue, func(window.EventHandler) { fn() })
}

// Run drains the event queue. Running out of events before Quit is an error
// so a broken teardown cannot hang a test.
func (b *Backend) Run(handler window.EventHandler) error {
	if b.RunErr != nil {
		return b.RunErr
	}

	b.handler = handler
	defer func() { b.handler = nil }()

	for !b.quit {
		if len(b.queue) == 0 {
			return fmt.Errorf("event queue drained without quit")
		}
		ev := b.queue[0]
		b.queue = b.queue[1:]
		ev(handler)
	}
	return nil
}

func (b *Backend) Quit() {
	b.Quits++
	b.quit = true
}

func (b *Backend) Close() error {
	b.Closed = true
	return nil
}

// Window returns the state of a live window
func (b *Backend) Window(h window.Handle) (*Window, bool) {
	w, ok := b.windows[h]
	return w, ok
}

// Overlays returns the live overlay windows in creation order
func (b *Backend) Overlays() []*Window {
	var out []*Window
	for _, h := range b.zorder {
		if w := b.windows[h]; w.Kind == KindOverlay {
			out = append(out, w)
		}
	}
	return out
}

// Live reports how many windows exist
func (b *Backend) Live() int {
	return len(b.windows)
}

// Focus returns the window holding keyboard focus
func (b *Backend) Focus() window.Handle {
	return b.focus
}

// WindowAt returns the window that receives pointer input at p: the highest
// window containing p that is not input-transparent. Topmost windows stack
// above the rest.
func (b *Backend) WindowAt(p image.Point) (window.Handle, bool) {
	for _, topmost := range []bool{true, false} {
		for i := len(b.zorder) - 1; i >= 0; i-- {
			w := b.windows[b.zorder[i]]
			if w.Topmost != topmost || w.InputTransparent {
				continue
			}
			if p.In(w.Bounds) {
				return w.Handle, true
			}
		}
	}
	return 0, false
}

// Click delivers a pointer click at p and returns the receiving window
func (b *Backend) Click(p image.Point) (window.Handle, bool) {
	h, ok := b.WindowAt(p)
	if ok {
		b.windows[h].Clicks++
	}
	return h, ok
}
