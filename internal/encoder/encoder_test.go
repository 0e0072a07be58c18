package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/AnyUserName/imgpipe/internal/format"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 7 % 256), G: uint8(y * 13 % 256), B: 96, A: 255,
			})
		}
	}
	return img
}

func TestClampQuality(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {100, 100}, {101, 100}, {1000, 100},
	}
	for _, tt := range tests {
		if got := ClampQuality(tt.in); got != tt.want {
			t.Errorf("ClampQuality(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestJPEGEncoder(t *testing.T) {
	enc := &JPEGEncoder{}
	if !enc.Available() {
		t.Fatal("stdlib jpeg encoder must always be available")
	}

	data, err := enc.Encode(testImage(20, 10), 80)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 20 || cfg.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", cfg.Width, cfg.Height)
	}
}

func TestJPEGEncoder_ClampsQuality(t *testing.T) {
	enc := &JPEGEncoder{}
	if _, err := enc.Encode(testImage(4, 4), 500); err != nil {
		t.Fatalf("out-of-range quality should be clamped, got error: %v", err)
	}
	if _, err := enc.Encode(testImage(4, 4), -1); err != nil {
		t.Fatalf("negative quality should be clamped, got error: %v", err)
	}
}

func TestPNGEncoder(t *testing.T) {
	enc := &PNGEncoder{}
	data, err := enc.Encode(testImage(8, 8), 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("dimensions: got %dx%d, want 8x8", cfg.Width, cfg.Height)
	}
}

func TestRegistry_BaselineAlwaysPresent(t *testing.T) {
	r := NewRegistry()
	if r.Get(format.JPEG) == nil {
		t.Error("jpeg encoder missing from registry")
	}
	if r.Get(format.PNG) == nil {
		t.Error("png encoder missing from registry")
	}

	avail := r.Available()
	last := avail[len(avail)-1]
	if last != format.PNG {
		t.Errorf("png should close the priority order, got %q", last)
	}
}
