// Package encoder provides per-format image encoders behind a common
// interface. WebP and AVIF shell out to external tools, which keeps the
// build CGO-free; availability is probed once and unavailable encoders
// simply drop out of the registry.
package encoder

import (
	"image"

	"github.com/AnyUserName/imgpipe/internal/format"
)

// Encoder encodes a decoded image to a specific output format.
type Encoder interface {
	// Format returns the output encoding.
	Format() format.Format

	// Encode converts the image to bytes at the given quality (1-100).
	// Out-of-range quality values are clamped, never rejected.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool
}

// ClampQuality forces quality into [1, 100].
func ClampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
