//go:build !windows

package x11

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/jezek/xgb/xproto"

	"crosshair/pkg/window"
)

// Request sizes without their variable-length payload
const (
	putImageHeader        = 24
	shapeRectanglesHeader = 16
)

// alphaThreshold splits pixels into shown and clipped when no compositor
// blends them
const alphaThreshold = 0x80

// WM_SIZE_HINTS flags (ICCCM 4.1.2.3)
const (
	hintUSPosition = 1 << 0
	hintPPosition  = 1 << 2
	hintPMinSize   = 1 << 4
	hintPMaxSize   = 1 << 5
)

// chunkRows returns how many rows of stride bytes fit in one PutImage request.
// maxRequestLen is in 4-byte units as reported by the server setup.
func chunkRows(maxRequestLen uint16, stride int) int {
	if stride <= 0 {
		return 0
	}
	return (int(maxRequestLen)*4 - putImageHeader) / stride
}

// shapeChunk returns how many rectangles fit in one ShapeRectangles request
func shapeChunk(maxRequestLen uint16) int {
	return max((int(maxRequestLen)*4-shapeRectanglesHeader)/8, 1)
}

// boundingMask decides how an overlay is clipped. A compositor blends the
// alpha channel itself and the window keeps its full rectangle. Without one
// the window is cut down to the pixels whose alpha reaches alphaThreshold,
// since the server would otherwise paint transparent pixels opaque.
func boundingMask(spec window.OverlaySpec, composited bool) ([]xproto.Rectangle, bool) {
	if composited {
		return nil, false
	}
	return opaqueRuns(spec.Pix, spec.Width, spec.Height), true
}

// opaqueRuns returns one rectangle per horizontal run of shown pixels, sorted
// by row then column. Runs repeated on consecutive rows are merged.
func opaqueRuns(pix []byte, w, h int) []xproto.Rectangle {
	var (
		rects []xproto.Rectangle
		prev  []int // indexes into rects of the previous row's runs
	)
	for y := 0; y < h; y++ {
		row := pix[y*w*4 : (y+1)*w*4]
		var cur []int
		for x := 0; x < w; {
			if row[x*4+3] < alphaThreshold {
				x++
				continue
			}
			start := x
			for x < w && row[x*4+3] >= alphaThreshold {
				x++
			}

			merged := false
			for _, i := range prev {
				r := &rects[i]
				if int(r.X) == start && int(r.Width) == x-start && int(r.Y)+int(r.Height) == y {
					r.Height++
					cur = append(cur, i)
					merged = true
					break
				}
			}
			if !merged {
				rects = append(rects, xproto.Rectangle{X: int16(start), Y: int16(y), Width: uint16(x - start), Height: 1})
				cur = append(cur, len(rects)-1)
			}
		}
		prev = cur
	}
	return rects
}

// shouldRaise reports whether an obscured overlay has to be put back on top.
// Overlays that overlap another overlay (mirrored displays) are left alone so
// they do not keep raising each other.
func shouldRaise(wid xproto.Window, state byte, overlays map[xproto.Window]image.Rectangle) bool {
	bounds, ok := overlays[wid]
	if !ok || state == xproto.VisibilityUnobscured {
		return false
	}
	for other, r := range overlays {
		if other != wid && r.Overlaps(bounds) {
			return false
		}
	}
	return true
}

// serverPixels converts premultiplied BGRA bytes into the server's 32-bit
// ZPixmap byte order. On LSBFirst servers the layout already matches.
func serverPixels(pix []byte, lsbFirst bool) []byte {
	if lsbFirst {
		return pix
	}

	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = pix[i+3], pix[i+2], pix[i+1], pix[i]
	}
	return out
}

// wmClass encodes the WM_CLASS instance and class strings
func wmClass(name string) []byte {
	data := make([]byte, 0, 2*len(name)+2)
	data = append(data, name...)
	data = append(data, 0)
	data = append(data, name...)
	return append(data, 0)
}

// fixedSizeHints encodes WM_NORMAL_HINTS pinning the window to one size
func fixedSizeHints(origin image.Point, w, h int) []byte {
	hints := make([]uint32, 18)
	hints[0] = hintUSPosition | hintPPosition | hintPMinSize | hintPMaxSize
	hints[1], hints[2] = uint32(int32(origin.X)), uint32(int32(origin.Y))
	hints[3], hints[4] = uint32(w), uint32(h)
	hints[5], hints[6] = uint32(w), uint32(h)
	hints[7], hints[8] = uint32(w), uint32(h)
	return put32(hints...)
}

func atomList(atoms ...xproto.Atom) []byte {
	values := make([]uint32, len(atoms))
	for i, a := range atoms {
		values[i] = uint32(a)
	}
	return put32(values...)
}

func put32(values ...uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// checkSize rejects sizes the protocol cannot carry
func checkSize(w, h int) error {
	if w <= 0 || h <= 0 || w > math.MaxUint16 || h > math.MaxUint16 {
		return fmt.Errorf("window size %dx%d out of range", w, h)
	}
	return nil
}

func checkOverlay(spec window.OverlaySpec) error {
	if err := checkSize(spec.Width, spec.Height); err != nil {
		return err
	}
	if spec.Origin.X < math.MinInt16 || spec.Origin.X > math.MaxInt16 ||
		spec.Origin.Y < math.MinInt16 || spec.Origin.Y > math.MaxInt16 {
		return fmt.Errorf("overlay origin %v out of range", spec.Origin)
	}
	if len(spec.Pix) != spec.Width*spec.Height*4 {
		return fmt.Errorf("pixel buffer is %d bytes, want %d", len(spec.Pix), spec.Width*spec.Height*4)
	}
	return nil
}
