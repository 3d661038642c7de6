package imageload

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned when decoding through a released session
	ErrClosed = errors.New("codec session closed")

	// ErrEmpty is returned for images with no pixels
	ErrEmpty = errors.New("image has no pixels")

	// ErrTooLarge is returned when the header announces more than MaxDimension
	// pixels on a side
	ErrTooLarge = errors.New("image dimensions exceed limit")
)

// DecodeError reports a file that is missing, unreadable or not an image
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Cause() error { return e.Err }
