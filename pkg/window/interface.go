package window

import "image"

// Handle identifies a platform window (HWND on Windows, XID on X11)
type Handle uintptr

// OverlaySpec describes one overlay surface
type OverlaySpec struct {
	Origin image.Point // Top-left corner in screen coordinates
	Width  int
	Height int
	Pix    []byte // Premultiplied BGRA, top-down, len == Width*Height*4
}

// ControlSpec describes the control window
type ControlSpec struct {
	Title  string
	Width  int
	Height int
}

// EventHandler receives platform events from the dispatch loop. Calls are
// made on the dispatch goroutine, one at a time.
type EventHandler interface {
	// OverlayDestroyed is called once an overlay window is gone, whoever
	// destroyed it
	OverlayDestroyed(h Handle)

	// CloseRequested is called when the user closes the control window
	CloseRequested()
}

// Backend is the interface that all windowing implementations must satisfy
type Backend interface {
	// Name returns the display server type ("win32" or "x11")
	Name() string

	// RegisterClasses prepares the overlay and control window classes
	RegisterClasses(overlayClass, controlClass string) error

	// CreateControl creates and shows the fixed-size control window,
	// centered on the primary display
	CreateControl(spec ControlSpec) (Handle, error)

	// CreateOverlay creates a borderless, topmost, input-transparent,
	// non-activating window showing spec.Pix with per-pixel alpha. On error
	// nothing created by the call is left behind.
	CreateOverlay(spec OverlaySpec) (Handle, error)

	// Destroy destroys a window created by this backend
	Destroy(h Handle) error

	// Run dispatches events to handler until Quit is called
	Run(handler EventHandler) error

	// Quit makes Run return after the current event
	Quit()

	// Close releases the connection to the display server
	Close() error
}
