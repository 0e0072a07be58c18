// Package placeholder derives tiny loading placeholders from decoded
// images: an average color for solid fills and a blurred micro-preview
// embedded as a data URI.
package placeholder

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// previewQuality keeps the data URI small; the preview is blurred anyway.
const previewQuality = 40

// AvgColor calculates the average RGB color of an image.
func AvgColor(img image.Image) [3]uint8 {
	bounds := img.Bounds()
	w := uint64(bounds.Dx())
	h := uint64(bounds.Dy())
	count := w * h
	if count == 0 {
		return [3]uint8{0, 0, 0}
	}
	var rSum, gSum, bSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
		}
	}
	return [3]uint8{
		uint8(rSum / count),
		uint8(gSum / count),
		uint8(bSum / count),
	}
}

// BlurPreview shrinks img to size pixels wide (aspect preserved), applies
// a gaussian blur, and returns the result as a jpeg data URI suitable for
// inline use while the real asset loads. size below 1 is treated as 1.
func BlurPreview(img image.Image, size int) (string, error) {
	if size < 1 {
		size = 1
	}
	tiny := imaging.Resize(img, size, 0, imaging.Lanczos)
	tiny = imaging.Blur(tiny, 1.5)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, tiny, &jpeg.Options{Quality: previewQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
