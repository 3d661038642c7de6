//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// ULW_ALPHA and AC_SRC_OVER are missing from lxn/win
const (
	ulwAlpha  = 0x00000002
	acSrcOver = 0x00
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procUpdateLayeredWindow = user32.NewProc("UpdateLayeredWindow")
)

// opaqueBlend blends with the bitmap's own premultiplied alpha and no extra
// constant fade
func opaqueBlend() *win.BLENDFUNCTION {
	return &win.BLENDFUNCTION{
		BlendOp:             acSrcOver,
		BlendFlags:          0,
		SourceConstantAlpha: 255,
		AlphaFormat:         win.AC_SRC_ALPHA,
	}
}

func updateLayeredWindow(hwnd win.HWND, dst win.HDC, dstPt *win.POINT, size *win.SIZE, src win.HDC, srcPt *win.POINT, blend *win.BLENDFUNCTION) error {
	r, _, err := procUpdateLayeredWindow.Call(
		uintptr(hwnd),
		uintptr(dst),
		uintptr(unsafe.Pointer(dstPt)),
		uintptr(unsafe.Pointer(size)),
		uintptr(src),
		uintptr(unsafe.Pointer(srcPt)),
		0,
		uintptr(unsafe.Pointer(blend)),
		ulwAlpha,
	)
	if r == 0 {
		return fmt.Errorf("UpdateLayeredWindow failed: %w", err)
	}
	return nil
}
