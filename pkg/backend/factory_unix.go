//go:build !windows

package backend

import (
	"fmt"
	"os"

	"crosshair/pkg/integrations/x11"
	"crosshair/pkg/window"
)

// New returns the X11 backend. Wayland sessions are served through XWayland
// when $DISPLAY is set.
func New() (window.Backend, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("no X11 display available (session: %s)", DetectDisplayServer())
	}

	b, err := x11.NewBackend()
	if err != nil {
		return nil, err
	}
	return b, nil
}
