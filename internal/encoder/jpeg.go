package encoder

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/AnyUserName/imgpipe/internal/format"
)

// JPEGEncoder encodes images to JPEG using Go's standard library.
// It is the guaranteed terminal fallback encoder.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() format.Format { return format.JPEG }
func (e *JPEGEncoder) Available() bool       { return true }

func (e *JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024) // pre-alloc 256KB — avoids repeated grow for typical photos

	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ClampQuality(quality)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
