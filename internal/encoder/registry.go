package encoder

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/imgpipe/internal/format"
)

// Registry holds all available encoders keyed by output format.
type Registry struct {
	encoders map[format.Format]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[format.Format]Encoder),
	}

	// Register all encoders. Only available ones are kept.
	all := []Encoder{
		&AVIFEncoder{},
		&WebPEncoder{},
		&JPEGEncoder{},
		&PNGEncoder{},
	}

	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}

	return r
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(f format.Format) Encoder {
	return r.encoders[f]
}

// Available returns all available output formats in priority order.
func (r *Registry) Available() []format.Format {
	var result []format.Format
	for _, f := range []format.Format{format.AVIF, format.WebP, format.JPEG, format.PNG} {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	names := make([]string, len(avail))
	for i, f := range avail {
		names[i] = string(f)
	}
	return fmt.Sprintf("encoders: %s", strings.Join(names, ", "))
}
