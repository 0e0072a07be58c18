package optimizer

import (
	"fmt"

	"github.com/AnyUserName/imgpipe/internal/encoder"
	"github.com/AnyUserName/imgpipe/internal/format"
)

// Options are per-request optimization parameters. Zero values mean
// "absent": width/height default to the source dimensions, quality to
// the configured default. A set Format narrows the output to that
// format alone when supported; empty means runtime negotiation.
// Concurrency only affects batch scheduling and is not part of the
// cache identity.
type Options struct {
	Width       int
	Height      int
	Quality     int
	Format      format.Format
	Concurrency int
}

// normalized is the canonical form of Options used for cache keying.
// Two option sets that normalize identically are the same request.
type normalized struct {
	Width   int
	Height  int
	Quality int
	Format  format.Format
}

// normalizeOptions fills defaults from cfg, clamps quality into [1,100],
// and caps width at cfg.MaxWidth. The requested format is normalized
// through format.Parse (jpg folds into jpeg); unknown names normalize
// to absent so they cannot split cache keys.
func normalizeOptions(opts *Options, cfg Config) normalized {
	var n normalized
	if opts != nil {
		n.Width = opts.Width
		n.Height = opts.Height
		n.Quality = opts.Quality
		if f, ok := format.Parse(string(opts.Format)); ok {
			n.Format = f
		}
	}
	if n.Quality == 0 {
		n.Quality = cfg.Quality
	}
	n.Quality = encoder.ClampQuality(n.Quality)
	if n.Width < 0 {
		n.Width = 0
	}
	if n.Height < 0 {
		n.Height = 0
	}
	if cfg.MaxWidth > 0 && n.Width > cfg.MaxWidth {
		n.Width = cfg.MaxWidth
	}
	return n
}

// canonical renders the normalized options with fixed field ordering so
// the cache key derivation is deterministic.
func (n normalized) canonical() string {
	return fmt.Sprintf("f=%s|h=%d|q=%d|w=%d", n.Format, n.Height, n.Quality, n.Width)
}
