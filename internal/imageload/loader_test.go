package imageload

import (
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "overlay.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return path
}

// pngHeaderOnly returns a PNG whose IHDR declares w×h RGBA pixels and whose
// image data is empty
func pngHeaderOnly(w, h uint32) []byte {
	chunk := func(kind string, data []byte) []byte {
		out := make([]byte, 8, 12+len(data))
		binary.BigEndian.PutUint32(out, uint32(len(data)))
		copy(out[4:], kind)
		out = append(out, data...)
		return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[4:]))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 6 // 8-bit RGBA

	data := []byte("\x89PNG\r\n\x1a\n")
	data = append(data, chunk("IHDR", ihdr)...)
	data = append(data, chunk("IDAT", nil)...)
	return append(data, chunk("IEND", nil)...)
}

func TestDecodeDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"square", 100, 100},
		{"wide", 37, 5},
		{"tall", 3, 41},
		{"single pixel", 1, 1},
	}

	loader, err := Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer loader.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t, image.NewNRGBA(image.Rect(0, 0, tt.width, tt.height)))

			img, err := loader.Decode(path)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}

			if img.Width != tt.width || img.Height != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", img.Width, img.Height, tt.width, tt.height)
			}
			if want := tt.width * tt.height * 4; len(img.Pix) != want {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), want)
			}
			if img.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", img.Stride(), tt.width*4)
			}
		})
	}
}

func TestDecodeChannelOrderAndPremultiply(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	src.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 0})

	loader, _ := Open()
	defer loader.Close()

	img, err := loader.Decode(writePNG(t, src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	px := func(x, y int) []byte {
		off := y*img.Stride() + x*4
		return img.Pix[off : off+4]
	}

	tests := []struct {
		name string
		x, y int
		want [4]byte // B, G, R, A
	}{
		{"opaque red is last color byte", 0, 0, [4]byte{0, 0, 255, 255}},
		{"opaque blue is first byte", 1, 0, [4]byte{255, 0, 0, 255}},
		{"half white is premultiplied", 0, 1, [4]byte{128, 128, 128, 128}},
		{"transparent carries no color", 1, 1, [4]byte{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := px(tt.x, tt.y)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
				}
			}
		})
	}
}

func TestDecodeRowsAreTopDown(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 3))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 255})
	src.SetNRGBA(0, 2, color.NRGBA{R: 3, A: 255})

	loader, _ := Open()
	defer loader.Close()

	img, err := loader.Decode(writePNG(t, src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if img.Pix[2] != 1 {
		t.Errorf("first row red = %d, want 1", img.Pix[2])
	}
	if img.Pix[2*img.Stride()+2] != 3 {
		t.Errorf("last row red = %d, want 3", img.Pix[2*img.Stride()+2])
	}
}

func TestDecodeErrors(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("\x89PNG\r\n\x1a\nthis is not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	huge := filepath.Join(dir, "huge.png")
	if err := os.WriteFile(huge, pngHeaderOnly(1000000, 1000000), 0644); err != nil {
		t.Fatal(err)
	}

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.png")},
		{"corrupt container", corrupt},
		{"header claims huge dimensions", huge},
		{"not an image", text},
		{"directory", dir},
	}

	loader, _ := Open()
	defer loader.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := loader.Decode(tt.path)
			if err == nil {
				t.Fatalf("Decode() = %+v, want error", img)
			}
			if img != nil {
				t.Errorf("Decode() returned an image alongside the error")
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode() error = %T, want *DecodeError", err)
			}
			if decodeErr.Path != tt.path {
				t.Errorf("DecodeError.Path = %s, want %s", decodeErr.Path, tt.path)
			}
		})
	}
}

func TestDecodeDimensionLimit(t *testing.T) {
	dir := t.TempDir()
	loader, _ := Open()
	defer loader.Close()

	tests := []struct {
		name   string
		w, h   uint32
		tooBig bool
	}{
		{"wide", MaxDimension + 1, 1, true},
		{"tall", 1, MaxDimension + 1, true},
		{"both huge", 1000000, 1000000, true},
		{"at limit", MaxDimension, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".png")
			if err := os.WriteFile(path, pngHeaderOnly(tt.w, tt.h), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := loader.Decode(path)
			if err == nil {
				t.Fatal("Decode() of a header-only file succeeded")
			}
			if got := errors.Is(err, ErrTooLarge); got != tt.tooBig {
				t.Errorf("Decode() error = %v, ErrTooLarge = %v, want %v", err, got, tt.tooBig)
			}
		})
	}
}

func TestDecodeAfterClose(t *testing.T) {
	loader, _ := Open()
	path := writePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4)))

	if err := loader.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := loader.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
	if !loader.Closed() {
		t.Error("Closed() = false after Close")
	}

	_, err := loader.Decode(path)
	if errors.Cause(err) != ErrClosed {
		t.Errorf("Decode() after Close error = %v, want cause %v", err, ErrClosed)
	}
}

func TestDecodesCounter(t *testing.T) {
	loader, _ := Open()
	defer loader.Close()

	path := writePNG(t, image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	if _, err := loader.Decode(path); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if loader.Decodes() != 1 {
		t.Errorf("Decodes() = %d, want 1", loader.Decodes())
	}
}

func TestFromImagePalette(t *testing.T) {
	pal := color.Palette{color.NRGBA{A: 0}, color.NRGBA{G: 255, A: 255}}
	src := image.NewPaletted(image.Rect(5, 5, 7, 6), pal)
	src.SetColorIndex(6, 5, 1)

	img := FromImage(src)
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", img.Width, img.Height)
	}

	want := []byte{0, 0, 0, 0, 0, 255, 0, 255}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
}
