//go:build !windows

package x11

import (
	"fmt"
	"image"
	"log"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
	"github.com/kbinani/screenshot"

	"crosshair/pkg/window"
)

type windowKind int

const (
	kindControl windowKind = iota + 1
	kindOverlay
)

// Backend implements window.Backend on top of an X11 connection. Overlays are
// override-redirect ARGB windows with an empty input shape so pointer events
// fall through to whatever lies beneath. Nobody manages override-redirect
// windows, so the backend raises an overlay again whenever it gets obscured.
type Backend struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
	atoms  map[string]xproto.Atom

	overlayClass string
	controlClass string

	argbVisual xproto.Visualid
	colormap   xproto.Colormap
	shapeErr   error

	windows  map[xproto.Window]windowKind
	overlays map[xproto.Window]image.Rectangle
	control  xproto.Window
	quit    bool
}

var atomNames = []string{
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"_NET_WM_NAME",
	"UTF8_STRING",
}

// NewBackend connects to the X server named by $DISPLAY
func NewBackend() (*Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	b := &Backend{
		conn:    conn,
		setup:   setup,
		screen:  setup.DefaultScreen(conn),
		atoms:   make(map[string]xproto.Atom),
		windows:  make(map[xproto.Window]windowKind),
		overlays: make(map[xproto.Window]image.Rectangle),
	}

	// Without SHAPE an overlay would swallow clicks, so overlay creation
	// fails instead of the whole backend
	if err := shape.Init(conn); err != nil {
		b.shapeErr = fmt.Errorf("SHAPE extension unavailable: %w", err)
	}
	b.argbVisual = findARGBVisual(b.screen)

	return b, nil
}

// Name returns "x11"
func (b *Backend) Name() string {
	return "x11"
}

// RegisterClasses interns the atoms both window kinds need. X11 has no window
// classes; the names end up in WM_CLASS.
func (b *Backend) RegisterClasses(overlayClass, controlClass string) error {
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		b.atoms[name] = reply.Atom
	}

	b.overlayClass = overlayClass
	b.controlClass = controlClass
	return nil
}

// primaryBounds returns the bounds of the primary display, falling back to
// the whole root window when RandR/Xinerama report nothing
func (b *Backend) primaryBounds() image.Rectangle {
	if screenshot.NumActiveDisplays() > 0 {
		if r := screenshot.GetDisplayBounds(0); !r.Empty() {
			return r
		}
	}
	return image.Rect(0, 0, int(b.screen.WidthInPixels), int(b.screen.HeightInPixels))
}

// CreateControl creates the fixed-size control window centered on the
// primary display
func (b *Backend) CreateControl(spec window.ControlSpec) (window.Handle, error) {
	if err := checkSize(spec.Width, spec.Height); err != nil {
		return 0, err
	}

	wid, err := xproto.NewWindowId(b.conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	primary := b.primaryBounds()
	origin := image.Pt(
		primary.Min.X+(primary.Dx()-spec.Width)/2,
		primary.Min.Y+(primary.Dy()-spec.Height)/2,
	)

	err = xproto.CreateWindowChecked(b.conn, b.screen.RootDepth, wid, b.screen.Root,
		int16(origin.X), int16(origin.Y), uint16(spec.Width), uint16(spec.Height), 0,
		xproto.WindowClassInputOutput, b.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{b.screen.WhitePixel, xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create control window: %w", err)
	}

	props := []struct {
		prop   xproto.Atom
		typ    xproto.Atom
		format byte
		data   []byte
	}{
		{xproto.AtomWmName, xproto.AtomString, 8, []byte(spec.Title)},
		{b.atoms["_NET_WM_NAME"], b.atoms["UTF8_STRING"], 8, []byte(spec.Title)},
		{xproto.AtomWmClass, xproto.AtomString, 8, wmClass(b.controlClass)},
		{xproto.AtomWmNormalHints, xproto.AtomWmSizeHints, 32, fixedSizeHints(origin, spec.Width, spec.Height)},
		{b.atoms["WM_PROTOCOLS"], xproto.AtomAtom, 32, atomList(b.atoms["WM_DELETE_WINDOW"])},
	}
	for _, p := range props {
		if err := b.setProperty(wid, p.prop, p.typ, p.format, p.data); err != nil {
			xproto.DestroyWindow(b.conn, wid)
			return 0, err
		}
	}

	if err := xproto.MapWindowChecked(b.conn, wid).Check(); err != nil {
		xproto.DestroyWindow(b.conn, wid)
		return 0, fmt.Errorf("failed to map control window: %w", err)
	}

	b.windows[wid] = kindControl
	b.control = wid
	return window.Handle(wid), nil
}

func (b *Backend) setProperty(wid xproto.Window, prop, typ xproto.Atom, format byte, data []byte) error {
	length := uint32(len(data)) / uint32(format/8)
	err := xproto.ChangePropertyChecked(b.conn, xproto.PropModeReplace, wid, prop, typ, format, length, data).Check()
	if err != nil {
		return fmt.Errorf("failed to set window property %d: %w", prop, err)
	}
	return nil
}

// CreateOverlay creates one click-through overlay showing spec.Pix
func (b *Backend) CreateOverlay(spec window.OverlaySpec) (window.Handle, error) {
	if err := checkOverlay(spec); err != nil {
		return 0, err
	}
	if b.shapeErr != nil {
		return 0, b.shapeErr
	}
	if b.argbVisual == 0 {
		return 0, fmt.Errorf("no 32-bit TrueColor visual on screen")
	}
	if err := b.ensureColormap(); err != nil {
		return 0, err
	}

	wid, err := xproto.NewWindowId(b.conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// Value order follows the mask bit order
	err = xproto.CreateWindowChecked(b.conn, 32, wid, b.screen.Root,
		int16(spec.Origin.X), int16(spec.Origin.Y), uint16(spec.Width), uint16(spec.Height), 0,
		xproto.WindowClassInputOutput, b.argbVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{0, 0, 1, xproto.EventMaskStructureNotify | xproto.EventMaskVisibilityChange, uint32(b.colormap)}).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create overlay window: %w", err)
	}

	if err := b.decorateOverlay(wid, spec); err != nil {
		xproto.DestroyWindow(b.conn, wid)
		return 0, err
	}

	b.windows[wid] = kindOverlay
	b.overlays[wid] = image.Rectangle{Min: spec.Origin, Max: spec.Origin.Add(image.Pt(spec.Width, spec.Height))}
	return window.Handle(wid), nil
}

func (b *Backend) ensureColormap() error {
	if b.colormap != 0 {
		return nil
	}

	cmap, err := xproto.NewColormapId(b.conn)
	if err != nil {
		return fmt.Errorf("failed to allocate colormap id: %w", err)
	}
	err = xproto.CreateColormapChecked(b.conn, xproto.ColormapAllocNone, cmap, b.screen.Root, b.argbVisual).Check()
	if err != nil {
		return fmt.Errorf("failed to create ARGB colormap: %w", err)
	}

	b.colormap = cmap
	return nil
}

// decorateOverlay clears the input shape, clips the window to its opaque
// pixels when no compositor blends it, uploads the pixels and maps the window
// on top of the stack
func (b *Backend) decorateOverlay(wid xproto.Window, spec window.OverlaySpec) error {
	err := shape.RectanglesChecked(b.conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, wid, 0, 0, nil).Check()
	if err != nil {
		return fmt.Errorf("failed to clear input shape: %w", err)
	}

	composited, err := b.compositorRunning()
	if err != nil {
		return err
	}
	if rects, clip := boundingMask(spec, composited); clip {
		if err := b.setBoundingShape(wid, rects); err != nil {
			return err
		}
	}

	err = xproto.ChangePropertyChecked(b.conn, xproto.PropModeReplace, wid, xproto.AtomWmClass, xproto.AtomString,
		8, uint32(len(wmClass(b.overlayClass))), wmClass(b.overlayClass)).Check()
	if err != nil {
		return fmt.Errorf("failed to set overlay class: %w", err)
	}

	if err := b.uploadBackground(wid, spec); err != nil {
		return err
	}

	if err := xproto.MapWindowChecked(b.conn, wid).Check(); err != nil {
		return fmt.Errorf("failed to map overlay window: %w", err)
	}

	err = xproto.ConfigureWindowChecked(b.conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
	if err != nil {
		return fmt.Errorf("failed to raise overlay window: %w", err)
	}
	return nil
}

// uploadBackground draws the pixels into a 32-bit pixmap and installs it as
// the window background, so the server repaints exposures on its own
func (b *Backend) uploadBackground(wid xproto.Window, spec window.OverlaySpec) error {
	stride := spec.Width * 4
	rows := chunkRows(b.setup.MaximumRequestLength, stride)
	if rows == 0 {
		return fmt.Errorf("overlay row of %d bytes exceeds the maximum request length", stride)
	}

	pid, err := xproto.NewPixmapId(b.conn)
	if err != nil {
		return fmt.Errorf("failed to allocate pixmap id: %w", err)
	}
	err = xproto.CreatePixmapChecked(b.conn, 32, pid, xproto.Drawable(wid), uint16(spec.Width), uint16(spec.Height)).Check()
	if err != nil {
		return fmt.Errorf("failed to create overlay pixmap: %w", err)
	}
	defer xproto.FreePixmap(b.conn, pid)

	gc, err := xproto.NewGcontextId(b.conn)
	if err != nil {
		return fmt.Errorf("failed to allocate graphics context id: %w", err)
	}
	if err := xproto.CreateGCChecked(b.conn, gc, xproto.Drawable(pid), 0, nil).Check(); err != nil {
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	defer xproto.FreeGC(b.conn, gc)

	pix := serverPixels(spec.Pix, b.setup.ImageByteOrder == xproto.ImageOrderLSBFirst)
	for y := 0; y < spec.Height; y += rows {
		n := min(rows, spec.Height-y)
		err := xproto.PutImageChecked(b.conn, xproto.ImageFormatZPixmap, xproto.Drawable(pid), gc,
			uint16(spec.Width), uint16(n), 0, int16(y), 0, 32, pix[y*stride:(y+n)*stride]).Check()
		if err != nil {
			return fmt.Errorf("failed to upload overlay rows %d-%d: %w", y, y+n, err)
		}
	}

	err = xproto.ChangeWindowAttributesChecked(b.conn, wid, xproto.CwBackPixmap, []uint32{uint32(pid)}).Check()
	if err != nil {
		return fmt.Errorf("failed to set overlay background: %w", err)
	}
	return nil
}

// compositorRunning reports whether a compositing manager owns the
// _NET_WM_CM_S<screen> selection. Without one the server ignores the alpha
// channel of ARGB windows.
func (b *Backend) compositorRunning() (bool, error) {
	name := fmt.Sprintf("_NET_WM_CM_S%d", b.conn.DefaultScreen)
	atom, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to intern atom %s: %w", name, err)
	}

	reply, err := xproto.GetSelectionOwner(b.conn, atom.Atom).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to query compositor selection: %w", err)
	}
	return reply.Owner != 0, nil
}

// setBoundingShape replaces the window's bounding region with rects, split
// across as many requests as the server's request length needs
func (b *Backend) setBoundingShape(wid xproto.Window, rects []xproto.Rectangle) error {
	per := shapeChunk(b.setup.MaximumRequestLength)
	op := shape.Op(shape.SoSet)
	for start := 0; start == 0 || start < len(rects); start += per {
		end := min(start+per, len(rects))
		err := shape.RectanglesChecked(b.conn, op, shape.SkBounding, xproto.ClipOrderingYXSorted, wid, 0, 0, rects[start:end]).Check()
		if err != nil {
			return fmt.Errorf("failed to set bounding shape: %w", err)
		}
		op = shape.SoUnion
	}
	return nil
}

// Destroy destroys a window. The DestroyNotify that follows is what reports
// overlays gone to the event handler.
func (b *Backend) Destroy(h window.Handle) error {
	wid := xproto.Window(h)
	if _, ok := b.windows[wid]; !ok {
		return fmt.Errorf("unknown window 0x%x", uint32(wid))
	}
	if err := xproto.DestroyWindowChecked(b.conn, wid).Check(); err != nil {
		return fmt.Errorf("failed to destroy window 0x%x: %w", uint32(wid), err)
	}
	return nil
}

// Run reads events from the server until Quit is called
func (b *Backend) Run(handler window.EventHandler) error {
	b.quit = false
	for !b.quit {
		ev, err := b.conn.WaitForEvent()
		if ev == nil && err == nil {
			return fmt.Errorf("X server connection closed")
		}
		if err != nil {
			log.Printf("X11 error: %v", err)
			continue
		}

		switch e := ev.(type) {
		case xproto.ClientMessageEvent:
			if b.isDeleteRequest(e) {
				handler.CloseRequested()
			}
		case xproto.VisibilityNotifyEvent:
			if shouldRaise(e.Window, e.State, b.overlays) {
				xproto.ConfigureWindow(b.conn, e.Window, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
			}
		case xproto.DestroyNotifyEvent:
			kind, ok := b.windows[e.Window]
			if !ok {
				continue
			}
			delete(b.windows, e.Window)
			delete(b.overlays, e.Window)

			switch kind {
			case kindOverlay:
				handler.OverlayDestroyed(window.Handle(e.Window))
			case kindControl:
				b.control = 0
				handler.CloseRequested()
			}
		}
	}
	return nil
}

func (b *Backend) isDeleteRequest(e xproto.ClientMessageEvent) bool {
	if e.Window != b.control || e.Format != 32 || e.Type != b.atoms["WM_PROTOCOLS"] {
		return false
	}
	data := e.Data.Data32
	return len(data) > 0 && xproto.Atom(data[0]) == b.atoms["WM_DELETE_WINDOW"]
}

// Quit makes Run return once the current event is handled
func (b *Backend) Quit() {
	b.quit = true
}

// Close frees the colormap and closes the connection
func (b *Backend) Close() error {
	if b.colormap != 0 {
		xproto.FreeColormap(b.conn, b.colormap)
		b.colormap = 0
	}
	b.conn.Close()
	return nil
}

// findARGBVisual returns the first 32-bit TrueColor visual, 0 if none
func findARGBVisual(screen *xproto.ScreenInfo) xproto.Visualid {
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, v := range depth.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				return v.VisualId
			}
		}
	}
	return 0
}
