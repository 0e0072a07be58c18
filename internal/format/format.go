// Package format models raster encodings, runtime capability probing,
// and the format-negotiation rules of the optimization pipeline.
package format

import "strings"

// Format identifies a raster encoding.
type Format string

const (
	AVIF Format = "avif"
	WebP Format = "webp"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
)

// priority is the negotiation order for lossy delivery formats.
// JPEG is the guaranteed terminal fallback.
var priority = []Format{AVIF, WebP, JPEG}

// chain is the full fallback chain used to populate per-format outputs.
var chain = []Format{AVIF, WebP, JPEG, PNG}

// Parse normalizes a format name ("jpg" maps to jpeg). Unknown names
// are rejected rather than passed through.
func Parse(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "avif":
		return AVIF, true
	case "webp":
		return WebP, true
	case "jpeg", "jpg":
		return JPEG, true
	case "png":
		return PNG, true
	case "gif":
		return GIF, true
	}
	return "", false
}

// Extension returns the file extension without dot.
func (f Format) Extension() string {
	return string(f)
}

// Support records which encodings the runtime can decode.
// JPEG, PNG and GIF are baseline-guaranteed and always true
// on a well-formed value; AVIF and WebP are probed.
type Support struct {
	AVIF bool `json:"avif"`
	WebP bool `json:"webp"`
	JPEG bool `json:"jpeg"`
	PNG  bool `json:"png"`
	GIF  bool `json:"gif"`
}

// Has reports whether the given format is supported.
func (s Support) Has(f Format) bool {
	switch f {
	case AVIF:
		return s.AVIF
	case WebP:
		return s.WebP
	case JPEG:
		return s.JPEG
	case PNG:
		return s.PNG
	case GIF:
		return s.GIF
	}
	return false
}

// SelectBest returns the first of [avif, webp, jpeg] the runtime supports.
// JPEG is baseline-guaranteed, so the fallback is unconditional.
func SelectBest(s Support) Format {
	for _, f := range priority {
		if s.Has(f) {
			return f
		}
	}
	return JPEG
}

// Negotiate resolves the delivery formats for one request. A requested
// format narrows the chain to just that format when the runtime
// supports it and it is a chain member; anything else (empty, gif,
// unsupported) falls back to the full fallback chain.
func Negotiate(requested Format, s Support) []Format {
	if requested != "" && s.Has(requested) {
		for _, f := range chain {
			if f == requested {
				return []Format{requested}
			}
		}
	}
	return FallbackChain(s)
}

// FallbackChain returns the supported ordered subsequence of
// [avif, webp, jpeg, png]. A consuming renderer walks this list
// and picks the first entry it can display.
func FallbackChain(s Support) []Format {
	var result []Format
	for _, f := range chain {
		if s.Has(f) {
			result = append(result, f)
		}
	}
	return result
}
