// Package imageload decodes the overlay image into the pixel layout per-pixel
// alpha compositors expect: 32 bits per pixel, top-down rows, B-G-R-A byte
// order with alpha premultiplied into the color channels.
//
// A Loader is a scoped codec session. Open it once at startup, decode as
// often as needed, and Close it exactly once at teardown.
package imageload
