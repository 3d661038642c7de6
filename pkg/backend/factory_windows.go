//go:build windows

package backend

import (
	"crosshair/pkg/integrations/win32"
	"crosshair/pkg/window"
)

// New returns the Win32 backend. It must be called from the goroutine that
// will run the event loop.
func New() (window.Backend, error) {
	return win32.NewBackend()
}
