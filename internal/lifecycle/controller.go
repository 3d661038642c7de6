package lifecycle

import (
	"log"

	"crosshair/internal/config"
	"crosshair/internal/imageload"
	"crosshair/internal/models"
	"crosshair/internal/monitor"
	"crosshair/internal/overlay"
	"crosshair/internal/reporter"
	"crosshair/pkg/window"

	"github.com/pkg/errors"
)

// Reporter is the diagnostic stream non-fatal failures are sent to
type Reporter interface {
	Report(kind string, monitor int, err error)
	Summary() (map[string]int64, error)
	Diagnostics() ([]*models.Diagnostic, error)
	Close() error
}

// Controller owns the control window, the overlay registry and the teardown
// order. It is the event handler of the dispatch loop.
type Controller struct {
	cfg       *config.Config
	backend   window.Backend
	monitors  monitor.Enumerator
	loader    *imageload.Loader
	reporter  Reporter
	registry  *overlay.Registry
	presenter *overlay.Presenter

	control  window.Handle
	image    *imageload.DecodedImage
	shutdown bool
}

// New creates a controller. It takes ownership of loader and rep, both are
// released during shutdown.
func New(cfg *config.Config, backend window.Backend, monitors monitor.Enumerator, loader *imageload.Loader, rep Reporter) *Controller {
	registry := overlay.NewRegistry()
	return &Controller{
		cfg:       cfg,
		backend:   backend,
		monitors:  monitors,
		loader:    loader,
		reporter:  rep,
		registry:  registry,
		presenter: overlay.NewPresenter(backend, registry),
	}
}

// Start registers the window classes, creates the control window and shows
// the overlays. Only the first two steps can fail; everything after them is
// reported and skipped.
func (c *Controller) Start() error {
	if err := c.backend.RegisterClasses(c.cfg.Classes.Overlay, c.cfg.Classes.Control); err != nil {
		return &ClassRegistrationError{Err: err}
	}

	control, err := c.backend.CreateControl(window.ControlSpec{
		Title:  c.cfg.Control.Title,
		Width:  c.cfg.Control.Width,
		Height: c.cfg.Control.Height,
	})
	if err != nil {
		return &ControlWindowCreationError{Err: err}
	}
	c.control = control

	c.showOverlays()
	return nil
}

func (c *Controller) showOverlays() {
	path, err := c.cfg.ImagePath()
	if err != nil {
		c.reporter.Report(KindDecode, reporter.NoMonitor, &imageload.DecodeError{Path: c.cfg.Image.FileName, Err: err})
		return
	}

	img, err := c.loader.Decode(path)
	if err != nil {
		c.reporter.Report(KindDecode, reporter.NoMonitor, err)
		return
	}
	c.image = img

	rects, err := c.monitors.Monitors()
	if err != nil {
		c.reporter.Report(KindMonitor, reporter.NoMonitor, err)
		return
	}

	surfaces, errs := c.presenter.PresentAll(rects, img)
	for _, err := range errs {
		idx := reporter.NoMonitor
		var presentErr *overlay.PresentError
		if errors.As(err, &presentErr) {
			idx = presentErr.Monitor
		}
		c.reporter.Report(KindPresent, idx, err)
	}

	log.Printf("Showing %dx%d overlay on %d of %d monitor(s)", img.Width, img.Height, len(surfaces), len(rects))
}

// Run dispatches events until shutdown and returns the exit code
func (c *Controller) Run() int {
	if err := c.backend.Run(c); err != nil {
		log.Printf("Event loop error: %v", err)
		c.Shutdown()
		return 1
	}
	return 0
}

// OverlayDestroyed drops one surface without touching its siblings
func (c *Controller) OverlayDestroyed(h window.Handle) {
	s, ok := c.registry.RemoveHandle(h)
	if ok && !c.shutdown {
		log.Printf("Overlay on monitor %d was destroyed, %d remaining", s.Monitor, c.registry.Len())
	}
}

// CloseRequested shuts everything down
func (c *Controller) CloseRequested() {
	c.Shutdown()
}

// Shutdown destroys all overlays, then the control window, then releases the
// codec session and the diagnostics store, then stops the event loop. Calling
// it again does nothing.
func (c *Controller) Shutdown() {
	if c.shutdown {
		return
	}
	c.shutdown = true

	if err := c.registry.Teardown(c.backend.Destroy); err != nil {
		c.reporter.Report(KindTeardown, reporter.NoMonitor, errors.Wrap(err, "failed to destroy overlay"))
	}

	if c.control != 0 {
		if err := c.backend.Destroy(c.control); err != nil {
			c.reporter.Report(KindTeardown, reporter.NoMonitor, errors.Wrap(err, "failed to destroy control window"))
		}
		c.control = 0
	}

	if err := c.loader.Close(); err != nil {
		log.Printf("Failed to release codec session: %v", err)
	}

	if summary, err := c.reporter.Summary(); err == nil {
		log.Printf("Shutting down: %s", reporter.FormatSummary(summary))
	}
	if diags, err := c.reporter.Diagnostics(); err == nil {
		for _, d := range diags {
			log.Printf("  %s", reporter.FormatDiagnostic(d))
		}
	}
	if err := c.reporter.Close(); err != nil {
		log.Printf("Failed to close diagnostics store: %v", err)
	}

	c.backend.Quit()
}

// Registry returns the active overlay surfaces
func (c *Controller) Registry() *overlay.Registry {
	return c.registry
}

// Control returns the control window handle, zero once destroyed
func (c *Controller) Control() window.Handle {
	return c.control
}

// Image returns the decoded overlay image, nil if decoding failed
func (c *Controller) Image() *imageload.DecodedImage {
	return c.image
}
