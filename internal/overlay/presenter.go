package overlay

import (
	"fmt"

	"crosshair/internal/imageload"
	"crosshair/internal/monitor"
	"crosshair/pkg/window"

	"github.com/pkg/errors"
)

// PresentError reports an overlay that could not be shown on one monitor
type PresentError struct {
	Monitor int
	Err     error
}

func (e *PresentError) Error() string {
	return fmt.Sprintf("present overlay on monitor %d: %v", e.Monitor, e.Err)
}

func (e *PresentError) Unwrap() error { return e.Err }

func (e *PresentError) Cause() error { return e.Err }

// Presenter creates overlay surfaces and records them in a registry
type Presenter struct {
	backend  window.Backend
	registry *Registry
}

// NewPresenter creates a presenter drawing through backend
func NewPresenter(backend window.Backend, registry *Registry) *Presenter {
	return &Presenter{backend: backend, registry: registry}
}

// Present shows img centered on m
func (p *Presenter) Present(m monitor.Rect, img *imageload.DecodedImage) (*Surface, error) {
	if img == nil {
		return nil, &PresentError{Monitor: m.Index, Err: errors.New("no decoded image")}
	}
	if !m.Valid() {
		return nil, &PresentError{Monitor: m.Index, Err: errors.Errorf("invalid monitor bounds %v", m.Rectangle())}
	}

	origin := Placement(m, img.Width, img.Height)

	h, err := p.backend.CreateOverlay(window.OverlaySpec{
		Origin: origin,
		Width:  img.Width,
		Height: img.Height,
		Pix:    img.Pix,
	})
	if err != nil {
		return nil, &PresentError{Monitor: m.Index, Err: err}
	}

	s := &Surface{
		Handle:  h,
		Monitor: m.Index,
		Origin:  origin,
		Size:    img.Size(),
	}
	p.registry.Add(s)
	return s, nil
}

// PresentAll presents img on every monitor. A failure on one monitor is
// collected and the loop moves on to the next.
func (p *Presenter) PresentAll(monitors []monitor.Rect, img *imageload.DecodedImage) ([]*Surface, []error) {
	var (
		surfaces []*Surface
		errs     []error
	)
	for _, m := range monitors {
		s, err := p.Present(m, img)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, errs
}
