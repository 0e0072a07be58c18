package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/AnyUserName/imgpipe/internal/format"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// WebPEncoder encodes images to WebP by shelling out to cwebp.
// This approach avoids CGO while still producing optimized WebP.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) Format() format.Format { return format.WebP }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("cwebp")
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("cwebp not found in PATH; install with: brew install webp")
	}

	srcPath, dstPath, cleanup, err := tempPair("webp", img)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cmd := exec.Command(e.cwebpPath,
		"-q", fmt.Sprintf("%d", ClampQuality(quality)),
		"-m", "6", // compression method (0=fast, 6=best)
		"-mt",     // multi-threaded
		"-quiet",
		srcPath,
		"-o", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("cwebp: %w: %s", err, string(out))
	}

	return os.ReadFile(dstPath)
}

// AVIFEncoder encodes images to AVIF by shelling out to avifenc.
// Install: brew install libavif / apt install libavif-bin
type AVIFEncoder struct {
	once        sync.Once
	available   bool
	avifencPath string
}

func (e *AVIFEncoder) Format() format.Format { return format.AVIF }

func (e *AVIFEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("avifenc")
		if err == nil {
			e.available = true
			e.avifencPath = path
		}
	})
	return e.available
}

func (e *AVIFEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("avifenc not found in PATH; install with: brew install libavif")
	}

	// avifenc uses an inverted quality scale: lower = better, 0-63.
	avifQ := 63 - (ClampQuality(quality) * 63 / 100)
	speed := 6 // 0=slowest, 10=fastest

	srcPath, dstPath, cleanup, err := tempPair("avif", img)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cmd := exec.Command(e.avifencPath,
		"--min", fmt.Sprintf("%d", avifQ),
		"--max", fmt.Sprintf("%d", avifQ),
		"--speed", fmt.Sprintf("%d", speed),
		"-j", "all",
		srcPath,
		dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("avifenc: %w: %s", err, string(out))
	}

	return os.ReadFile(dstPath)
}

// tempPair writes img as a PNG temp file (the external tools read files,
// not pipes) and reserves a destination temp file. The atomic counter
// keeps filenames unique across concurrent encodes.
func tempPair(ext string, img image.Image) (srcPath, dstPath string, cleanup func(), err error) {
	id := tempCounter.Add(1)

	srcFile, err := os.CreateTemp("", fmt.Sprintf("imgpipe_src_%d_*.png", id))
	if err != nil {
		return "", "", nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath = srcFile.Name()

	dstFile, err := os.CreateTemp("", fmt.Sprintf("imgpipe_dst_%d_*.%s", id, ext))
	if err != nil {
		srcFile.Close()
		os.Remove(srcPath)
		return "", "", nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath = dstFile.Name()
	dstFile.Close()

	cleanup = func() {
		os.Remove(srcPath)
		os.Remove(dstPath)
	}

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		cleanup()
		return "", "", nil, fmt.Errorf("encode temp png: %w", err)
	}
	srcFile.Close()

	return srcPath, dstPath, cleanup, nil
}
