// Package convert implements the stateless pixel transform of the
// pipeline: decode a buffer, optionally resize preserving aspect ratio,
// re-encode at a target quality and format. It performs no caching and
// no URL logic.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/imgpipe/internal/encoder"
	"github.com/AnyUserName/imgpipe/internal/format"
)

// DecodeError reports input bytes that could not be decoded as any
// recognized raster format. It is fatal for the single request only.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Engine is the stateless conversion engine. The zero value is not
// usable; construct with New.
type Engine struct {
	registry *encoder.Registry
}

// New creates an engine backed by the probed encoder registry.
func New() *Engine {
	return &Engine{registry: encoder.NewRegistry()}
}

// Registry exposes the probed encoder set.
func (e *Engine) Registry() *encoder.Registry {
	return e.registry
}

// Decode decodes input as any registered raster format.
func (e *Engine) Decode(input []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// Convert re-encodes input at the given quality in the target format,
// keeping the source pixel dimensions.
func (e *Engine) Convert(ctx context.Context, input []byte, target format.Format, quality int) ([]byte, error) {
	return e.Resize(ctx, input, 0, 0, target, quality)
}

// Resize decodes input, computes output dimensions, and re-encodes.
//
// Dimension rule: both width and height given — used as-is (distortion is
// the caller's responsibility); one given — the other preserves the input
// aspect ratio, rounded to nearest, minimum 1px; neither — pure re-encode
// at source dimensions. Quality is clamped to [1, 100].
func (e *Engine) Resize(ctx context.Context, input []byte, width, height int, target format.Format, quality int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := e.Decode(input)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	outW, outH := OutputDimensions(b.Dx(), b.Dy(), width, height)
	if outW != b.Dx() || outH != b.Dy() {
		img = imaging.Resize(img, outW, outH, imaging.Lanczos)
	}

	enc := e.registry.Get(target)
	if enc == nil {
		return nil, fmt.Errorf("no encoder available for %s", target)
	}
	return enc.Encode(img, encoder.ClampQuality(quality))
}

// OutputDimensions applies the resize dimension rule to a source size
// and a (possibly partial) target request. Zero means absent.
func OutputDimensions(srcW, srcH, width, height int) (int, int) {
	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0:
		return width, scale(srcH, width, srcW)
	case height > 0:
		return scale(srcW, height, srcH), height
	default:
		return srcW, srcH
	}
}

// scale computes dim * num / den rounded to nearest, minimum 1.
func scale(dim, num, den int) int {
	if den == 0 {
		return 1
	}
	v := int(math.Round(float64(dim) * float64(num) / float64(den)))
	if v < 1 {
		return 1
	}
	return v
}
