package format

import (
	"bytes"
	"context"
	"encoding/base64"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/webp"
)

// webpSampleB64 is a minimal 1x1 lossy WebP image. Decoding it proves the
// runtime carries a working WebP decoder.
const webpSampleB64 = "UklGRiIAAABXRUJQVlA4IBYAAAAwAQCdASoBAAEADsD+JaQAA3AAAAAA"

// Probe detects runtime decode capability for advanced formats.
// Detection runs at most once per process; every later call returns
// the memoized result. The probe itself never fails: any decode
// error, dimension mismatch, or missing tool marks the format
// unsupported.
type Probe struct {
	once    sync.Once
	support Support
	log     *logrus.Logger
}

// NewProbe creates a probe. log may be nil.
func NewProbe(log *logrus.Logger) *Probe {
	return &Probe{log: log}
}

// Detect returns the runtime's format support, probing on first call.
// Baseline formats (jpeg, png, gif) are hard-coded true without probing.
func (p *Probe) Detect(ctx context.Context) Support {
	p.once.Do(func() {
		p.support = Support{JPEG: true, PNG: true, GIF: true}
		p.support.WebP = p.probeWebP()
		p.support.AVIF = p.probeAVIF()
		if p.log != nil {
			p.log.WithFields(logrus.Fields{
				"avif": p.support.AVIF,
				"webp": p.support.WebP,
			}).Debug("format capability probe complete")
		}
	})
	return p.support
}

// probeWebP decodes the embedded sample and checks its dimensions.
func (p *Probe) probeWebP() bool {
	sample, err := base64.StdEncoding.DecodeString(webpSampleB64)
	if err != nil {
		p.warn("webp", err)
		return false
	}
	img, err := webp.Decode(bytes.NewReader(sample))
	if err != nil {
		p.warn("webp", err)
		return false
	}
	b := img.Bounds()
	if b.Dx() != 1 || b.Dy() != 1 {
		p.warn("webp", nil)
		return false
	}
	return true
}

// probeAVIF checks for the external libavif tools. There is no pure-Go
// AVIF decoder, so tool presence is the capability signal, mirroring
// how the encoders shell out for AVIF work.
func (p *Probe) probeAVIF() bool {
	for _, tool := range []string{"avifdec", "avifenc"} {
		if _, err := exec.LookPath(tool); err == nil {
			return true
		}
	}
	return false
}

func (p *Probe) warn(name string, err error) {
	if p.log == nil {
		return
	}
	e := p.log.WithField("format", name)
	if err != nil {
		e = e.WithError(err)
	}
	e.Warn("capability probe inconclusive, marking unsupported")
}
