//go:build windows

package win32

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"crosshair/pkg/window"
)

const (
	errorClassAlreadyExists = 1410
	maNoActivate            = 3
)

const (
	overlayExStyle = win.WS_EX_LAYERED | win.WS_EX_TRANSPARENT | win.WS_EX_TOPMOST | win.WS_EX_NOACTIVATE | win.WS_EX_TOOLWINDOW
	controlStyle   = win.WS_OVERLAPPEDWINDOW &^ win.WS_MAXIMIZEBOX &^ win.WS_THICKFRAME
)

// Backend implements window.Backend with layered Win32 windows. Windows
// belong to the thread that created them, so the backend pins the calling
// goroutine to its OS thread and every method must be called from it.
type Backend struct {
	instance win.HINSTANCE
	wndProc  uintptr

	overlayClass *uint16
	controlClass *uint16
	registered   []*uint16

	control  win.HWND
	overlays map[win.HWND]bool
	handler  window.EventHandler
	quitting bool
}

// NewBackend locks the calling goroutine to its thread and prepares the
// window procedure
func NewBackend() (*Backend, error) {
	runtime.LockOSThread()

	instance := win.GetModuleHandle(nil)
	if instance == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("GetModuleHandle failed: %w", lastError())
	}

	b := &Backend{
		instance: instance,
		overlays: make(map[win.HWND]bool),
	}
	b.wndProc = windows.NewCallback(b.windowProc)
	return b, nil
}

// Name returns "win32"
func (b *Backend) Name() string {
	return "win32"
}

// RegisterClasses registers both window classes. A class left registered
// by an earlier instance in the same process is reused.
func (b *Backend) RegisterClasses(overlayClass, controlClass string) error {
	overlayName, err := syscall.UTF16PtrFromString(overlayClass)
	if err != nil {
		return fmt.Errorf("invalid overlay class name: %w", err)
	}
	controlName, err := syscall.UTF16PtrFromString(controlClass)
	if err != nil {
		return fmt.Errorf("invalid control class name: %w", err)
	}

	cursor := win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW))

	overlay := win.WNDCLASSEX{
		LpfnWndProc:   b.wndProc,
		HInstance:     b.instance,
		HCursor:       cursor,
		LpszClassName: overlayName,
	}
	if err := b.register(&overlay); err != nil {
		return fmt.Errorf("failed to register %s: %w", overlayClass, err)
	}
	b.overlayClass = overlayName

	control := win.WNDCLASSEX{
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   b.wndProc,
		HInstance:     b.instance,
		HIcon:         win.LoadIcon(0, win.MAKEINTRESOURCE(win.IDI_APPLICATION)),
		HCursor:       cursor,
		HbrBackground: win.HBRUSH(win.COLOR_WINDOW + 1),
		LpszClassName: controlName,
	}
	if err := b.register(&control); err != nil {
		return fmt.Errorf("failed to register %s: %w", controlClass, err)
	}
	b.controlClass = controlName

	return nil
}

func (b *Backend) register(class *win.WNDCLASSEX) error {
	class.CbSize = uint32(unsafe.Sizeof(*class))
	if win.RegisterClassEx(class) != 0 {
		b.registered = append(b.registered, class.LpszClassName)
		return nil
	}

	code := win.GetLastError()
	if code == errorClassAlreadyExists {
		return nil
	}
	return syscall.Errno(code)
}

// CreateControl creates and shows the control window centered on the
// primary display
func (b *Backend) CreateControl(spec window.ControlSpec) (window.Handle, error) {
	title, err := syscall.UTF16PtrFromString(spec.Title)
	if err != nil {
		return 0, fmt.Errorf("invalid window title: %w", err)
	}

	x := (win.GetSystemMetrics(win.SM_CXSCREEN) - int32(spec.Width)) / 2
	y := (win.GetSystemMetrics(win.SM_CYSCREEN) - int32(spec.Height)) / 2

	hwnd := win.CreateWindowEx(0, b.controlClass, title, controlStyle,
		x, y, int32(spec.Width), int32(spec.Height), 0, 0, b.instance, nil)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %w", lastError())
	}

	b.control = hwnd
	win.ShowWindow(hwnd, win.SW_SHOW)
	win.UpdateWindow(hwnd)

	return window.Handle(hwnd), nil
}

// CreateOverlay creates a layered popup and pushes spec.Pix into it with
// per-pixel alpha
func (b *Backend) CreateOverlay(spec window.OverlaySpec) (window.Handle, error) {
	if spec.Width <= 0 || spec.Height <= 0 || len(spec.Pix) != spec.Width*spec.Height*4 {
		return 0, fmt.Errorf("invalid overlay %dx%d with %d bytes", spec.Width, spec.Height, len(spec.Pix))
	}

	hwnd := win.CreateWindowEx(overlayExStyle, b.overlayClass, nil, win.WS_POPUP,
		int32(spec.Origin.X), int32(spec.Origin.Y), int32(spec.Width), int32(spec.Height),
		0, 0, b.instance, nil)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %w", lastError())
	}

	if err := b.present(hwnd, spec); err != nil {
		win.DestroyWindow(hwnd)
		return 0, err
	}

	b.overlays[hwnd] = true
	return window.Handle(hwnd), nil
}

// present copies the pixels into a top-down 32bpp DIB, hands it to
// UpdateLayeredWindow and shows the window without activating it. Every GDI
// object is released before returning.
func (b *Backend) present(hwnd win.HWND, spec window.OverlaySpec) error {
	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return fmt.Errorf("GetDC failed: %w", lastError())
	}
	defer win.ReleaseDC(0, screenDC)

	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		return fmt.Errorf("CreateCompatibleDC failed: %w", lastError())
	}
	defer win.DeleteDC(memDC)

	header := win.BITMAPINFOHEADER{
		BiWidth:       int32(spec.Width),
		BiHeight:      -int32(spec.Height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	header.BiSize = uint32(unsafe.Sizeof(header))

	var bits unsafe.Pointer
	bitmap := win.CreateDIBSection(screenDC, &header, win.DIB_RGB_COLORS, &bits, 0, 0)
	if bitmap == 0 || bits == nil {
		return fmt.Errorf("CreateDIBSection failed: %w", lastError())
	}
	defer win.DeleteObject(win.HGDIOBJ(bitmap))

	copy(unsafe.Slice((*byte)(bits), len(spec.Pix)), spec.Pix)

	old := win.SelectObject(memDC, win.HGDIOBJ(bitmap))
	defer win.SelectObject(memDC, old)

	dst := win.POINT{X: int32(spec.Origin.X), Y: int32(spec.Origin.Y)}
	size := win.SIZE{CX: int32(spec.Width), CY: int32(spec.Height)}
	if err := updateLayeredWindow(hwnd, screenDC, &dst, &size, memDC, &win.POINT{}, opaqueBlend()); err != nil {
		return err
	}

	flags := uint32(win.SWP_NOMOVE | win.SWP_NOSIZE | win.SWP_NOACTIVATE | win.SWP_SHOWWINDOW)
	if !win.SetWindowPos(hwnd, win.HWND_TOPMOST, 0, 0, 0, 0, flags) {
		return fmt.Errorf("SetWindowPos failed: %w", lastError())
	}
	return nil
}

// Destroy destroys a window. WM_DESTROY reaches the event handler before
// this returns.
func (b *Backend) Destroy(h window.Handle) error {
	if !win.DestroyWindow(win.HWND(h)) {
		return fmt.Errorf("DestroyWindow failed: %w", lastError())
	}
	return nil
}

func (b *Backend) windowProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_MOUSEACTIVATE:
		if b.overlays[hwnd] {
			return maNoActivate
		}

	case win.WM_CLOSE:
		if hwnd == b.control && b.handler != nil {
			b.handler.CloseRequested()
			return 0
		}

	case win.WM_DESTROY:
		if b.overlays[hwnd] {
			delete(b.overlays, hwnd)
			if b.handler != nil {
				b.handler.OverlayDestroyed(window.Handle(hwnd))
			}
			return 0
		}
		if hwnd == b.control {
			b.control = 0
			if !b.quitting && b.handler != nil {
				b.handler.CloseRequested()
			}
			return 0
		}
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// Run pumps the thread's message queue until WM_QUIT
func (b *Backend) Run(handler window.EventHandler) error {
	b.handler = handler
	defer func() { b.handler = nil }()

	var msg win.MSG
	for {
		switch win.GetMessage(&msg, 0, 0, 0) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessage failed: %w", lastError())
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// Quit posts WM_QUIT to the thread's queue
func (b *Backend) Quit() {
	b.quitting = true
	win.PostQuitMessage(0)
}

// Close unregisters the classes this backend registered and releases the
// thread lock
func (b *Backend) Close() error {
	for _, name := range b.registered {
		win.UnregisterClass(name)
	}
	b.registered = nil
	runtime.UnlockOSThread()
	return nil
}

func lastError() error {
	if code := win.GetLastError(); code != 0 {
		return syscall.Errno(code)
	}
	return fmt.Errorf("unknown error")
}
