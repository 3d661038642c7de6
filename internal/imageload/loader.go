package imageload

import (
	"image"
	"io"
	"os"

	// Codecs reachable through image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one B-G-R-A pixel
const BytesPerPixel = 4

// MaxDimension caps width and height. Headers are checked against it before
// any pixel buffer is allocated.
const MaxDimension = 16384

// DecodedImage is an immutable premultiplied BGRA pixel buffer
type DecodedImage struct {
	Width  int
	Height int
	Pix    []byte // len == Width*Height*BytesPerPixel, row-major, top-down
}

// Size returns the image dimensions as a point
func (d *DecodedImage) Size() image.Point {
	return image.Pt(d.Width, d.Height)
}

// Stride returns the number of bytes per row
func (d *DecodedImage) Stride() int {
	return d.Width * BytesPerPixel
}

// Loader is a codec session. The Go codecs hold no process-wide state, so
// the session owns no resource: it tracks whether it was released and how
// many decodes it ran.
type Loader struct {
	closed  bool
	decodes int
}

// Open starts a codec session. It allocates nothing and never fails today;
// the error return keeps the acquire/release pairing explicit for callers.
func Open() (*Loader, error) {
	return &Loader{}, nil
}

// Decode reads and converts the image at path
func (l *Loader) Decode(path string) (*DecodedImage, error) {
	if l.closed {
		return nil, &DecodeError{Path: path, Err: ErrClosed}
	}
	l.decodes++

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: errors.Wrap(err, "failed to open image")}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: errors.Wrap(err, "failed to read image header")}
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, &DecodeError{Path: path, Err: errors.Wrapf(ErrTooLarge, "%s header declares %dx%d", format, cfg.Width, cfg.Height)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, &DecodeError{Path: path, Err: errors.Wrap(err, "failed to rewind image")}
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: errors.Wrap(err, "failed to decode image")}
	}

	if img.Bounds().Empty() {
		return nil, &DecodeError{Path: path, Err: errors.Wrapf(ErrEmpty, "%s container", format)}
	}

	return FromImage(img), nil
}

// Decodes reports how many decodes this session has run
func (l *Loader) Decodes() int {
	return l.decodes
}

// Closed reports whether the session was released
func (l *Loader) Closed() bool {
	return l.closed
}

// Close releases the session. Closing twice is a no-op.
func (l *Loader) Close() error {
	l.closed = true
	return nil
}

// FromImage converts any image to a premultiplied BGRA buffer. Palette,
// gray and 16-bit sources are normalized by the draw conversion.
func FromImage(src image.Image) *DecodedImage {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	pix := dst.Pix
	for i := 0; i+3 < len(pix); i += BytesPerPixel {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}

	return &DecodedImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    pix,
	}
}
