// Package optimizer composes the probe, format selector, URL builder,
// conversion engine, cache, and batch scheduler into the public
// optimization surface.
package optimizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/imgpipe/internal/asset"
	"github.com/AnyUserName/imgpipe/internal/batch"
	"github.com/AnyUserName/imgpipe/internal/cache"
	"github.com/AnyUserName/imgpipe/internal/convert"
	"github.com/AnyUserName/imgpipe/internal/format"
	"github.com/AnyUserName/imgpipe/internal/hasher"
	"github.com/AnyUserName/imgpipe/internal/placeholder"
	"github.com/AnyUserName/imgpipe/internal/urlgen"
)

// Stats is a point-in-time snapshot of pipeline state.
type Stats struct {
	CachedImages  int            `json:"cached_images"`
	FormatSupport format.Support `json:"format_support"`
	Config        Config         `json:"config"`
}

// Orchestrator owns the pipeline's mutable state (config, cache) and
// exposes the optimization operations. Safe for concurrent use.
type Orchestrator struct {
	mu  sync.RWMutex // guards cfg
	cfg Config

	probe  *format.Probe
	engine *convert.Engine
	cache  *cache.Cache
	log    *logrus.Logger
}

// New creates an orchestrator. Zero cfg fields fall back to defaults;
// log may be nil, which discards pipeline logging.
func New(cfg Config, log *logrus.Logger) *Orchestrator {
	def := DefaultConfig()
	if cfg.Quality == 0 {
		cfg.Quality = def.Quality
	}
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.DefaultConcurrency == 0 {
		cfg.DefaultConcurrency = def.DefaultConcurrency
	}
	if cfg.Breakpoints == nil {
		cfg.Breakpoints = def.Breakpoints
	}
	if cfg.PlaceholderSize == 0 {
		cfg.PlaceholderSize = def.PlaceholderSize
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Orchestrator{
		cfg:    cfg.clone(),
		probe:  format.NewProbe(log),
		engine: convert.New(),
		cache:  cache.New(),
		log:    log,
	}
}

// Initialize triggers the format capability probe. Calling it more than
// once is a no-op; the probe is memoized for the process lifetime.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	support := o.probe.Detect(ctx)
	o.log.WithFields(logrus.Fields{
		"avif": support.AVIF,
		"webp": support.WebP,
	}).Debug("optimizer initialized")
	return nil
}

// Engine exposes the conversion engine for callers that need raw pixel
// transforms outside the cached request path.
func (o *Orchestrator) Engine() *convert.Engine {
	return o.engine
}

// OptimizeImage resolves the optimized form of one asset locator.
// Identical requests (same URL, options normalizing identically) return
// the same cached *OptimizedAsset; concurrent identical requests share
// one computation.
func (o *Orchestrator) OptimizeImage(ctx context.Context, url string, opts *Options) (*asset.OptimizedAsset, error) {
	cfg := o.GetConfig()
	norm := normalizeOptions(opts, cfg)
	key := cache.DeriveKey(url, norm.canonical())

	return o.cache.GetOrCompute(ctx, key, url, func() (*asset.OptimizedAsset, error) {
		return o.buildAsset(ctx, url, norm, cfg, string(key)), nil
	})
}

// buildAsset produces the URL-level optimization result: negotiated
// per-format transformation locators plus a responsive source set. An
// explicitly requested format narrows both to that format alone.
// No pixel work happens here.
func (o *Orchestrator) buildAsset(ctx context.Context, url string, norm normalized, cfg Config, id string) *asset.OptimizedAsset {
	support := o.probe.Detect(ctx)
	targets := format.Negotiate(norm.Format, support)

	urls := make(map[format.Format]string)
	for _, f := range targets {
		urls[f] = urlgen.Build(url, urlgen.Params{
			Width:   norm.Width,
			Height:  norm.Height,
			Quality: norm.Quality,
			Format:  f,
		})
	}

	widths := breakpointsUpTo(cfg.Breakpoints, norm.Width, cfg.MaxWidth)
	set := urlgen.GenerateSourceSet(url, widths, norm.Quality, support)
	if len(targets) == 1 {
		if d, ok := set.ByFormat[targets[0]]; ok {
			set.ByFormat = map[format.Format]string{targets[0]: d}
		}
	}

	o.log.WithFields(logrus.Fields{
		"url":    url,
		"best":   format.SelectBest(support),
		"widths": widths,
	}).Debug("optimized image urls")

	return &asset.OptimizedAsset{
		ID:             id,
		OriginalURL:    url,
		OptimizedURLs:  urls,
		SrcSet:         set.ByFormat,
		SrcSetFallback: set.Fallback,
		Metadata: asset.Metadata{
			Width:  norm.Width,
			Height: norm.Height,
		},
	}
}

// OptimizeImages optimizes a batch of locators under a concurrency
// bound: options.Concurrency when set, the configured default otherwise.
// Results index-correspond to urls; per-item failures occupy their slot
// without aborting siblings.
func (o *Orchestrator) OptimizeImages(ctx context.Context, urls []string, opts *Options) []batch.Result {
	concurrency := o.GetConfig().DefaultConcurrency
	if opts != nil && opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}
	return batch.Run(ctx, len(urls), concurrency, func(ctx context.Context, i int) (*asset.OptimizedAsset, error) {
		a, err := o.OptimizeImage(ctx, urls[i], opts)
		if err != nil {
			o.log.WithError(err).WithField("url", urls[i]).Warn("batch item failed")
		}
		return a, err
	})
}

// OptimizeFile runs the full pixel pipeline over an on-disk source:
// decode, placeholder extraction, resize per the normalized options, and
// re-encode in every locally encodable chain format. It returns the
// cached asset plus the encoded variant bytes; variants are nil when the
// asset was already cached (the bytes were produced by an earlier call).
// The cache key is derived from the file content, streamed through the
// hasher, so editing a file invalidates its prior results and identical
// files under different names share one computation.
func (o *Orchestrator) OptimizeFile(ctx context.Context, path string, opts *Options) (*asset.OptimizedAsset, map[format.Format][]byte, error) {
	cfg := o.GetConfig()
	norm := normalizeOptions(opts, cfg)

	src, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	sum, err := hasher.ContentHashReader(src, 16)
	src.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("hash %s: %w", path, err)
	}
	key := cache.DeriveKey(sum, norm.canonical())

	var variants map[format.Format][]byte
	a, err := o.cache.GetOrCompute(ctx, key, path, func() (*asset.OptimizedAsset, error) {
		built, v, err := o.convertFile(ctx, path, norm, cfg, string(key))
		if err != nil {
			return nil, err
		}
		variants = v
		return built, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return a, variants, nil
}

func (o *Orchestrator) convertFile(ctx context.Context, path string, norm normalized, cfg Config, id string) (*asset.OptimizedAsset, map[format.Format][]byte, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	img, err := o.engine.Decode(input)
	if err != nil {
		return nil, nil, err
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	// Never upscale: a requested width beyond the source collapses to
	// the source width.
	width := norm.Width
	if width > srcW {
		width = srcW
	}
	outW, outH := convert.OutputDimensions(srcW, srcH, width, norm.Height)

	avg := placeholder.AvgColor(img)
	preview, err := placeholder.BlurPreview(img, cfg.PlaceholderSize)
	if err != nil {
		o.log.WithError(err).WithField("file", path).Warn("placeholder generation failed")
		preview = ""
	}

	support := o.probe.Detect(ctx)
	targets := format.Negotiate(norm.Format, support)
	if len(targets) == 1 && o.engine.Registry().Get(targets[0]) == nil {
		// A requested format we cannot encode locally falls back to
		// negotiation instead of producing nothing.
		targets = format.FallbackChain(support)
	}
	variants := make(map[format.Format][]byte)
	urls := make(map[format.Format]string)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var optimizedSize int64
	for _, f := range targets {
		if o.engine.Registry().Get(f) == nil {
			continue // decodable at use-time but not encodable here
		}
		data, err := o.engine.Resize(ctx, input, width, norm.Height, f, norm.Quality)
		if err != nil {
			o.log.WithError(err).WithFields(logrus.Fields{
				"file": path, "format": f,
			}).Warn("variant encode failed")
			continue
		}
		variants[f] = data
		contentHash := hasher.ContentHash(data, 16)
		urls[f] = fmt.Sprintf("%s.%d.%d.%s.%s", base, outW, outH, contentHash[:8], f.Extension())
		if optimizedSize == 0 || int64(len(data)) < optimizedSize {
			optimizedSize = int64(len(data))
		}
	}
	if len(variants) == 0 {
		return nil, nil, fmt.Errorf("no variant could be encoded for %s", path)
	}

	meta := asset.Metadata{
		Width:         outW,
		Height:        outH,
		OriginalSize:  int64(len(input)),
		OptimizedSize: optimizedSize,
		AvgColor:      &avg,
		Placeholder:   preview,
	}
	if meta.OriginalSize > 0 {
		meta.SavingsRatio = 1 - float64(meta.OptimizedSize)/float64(meta.OriginalSize)
	}

	return &asset.OptimizedAsset{
		ID:            id,
		OriginalURL:   path,
		OptimizedURLs: urls,
		Metadata:      meta,
	}, variants, nil
}

// UpdateConfig applies a partial configuration overlay. Cached assets
// are not invalidated; only later requests observe the new defaults.
func (o *Orchestrator) UpdateConfig(patch ConfigPatch) {
	o.mu.Lock()
	o.cfg.overlay(patch)
	o.mu.Unlock()
}

// GetConfig returns a copy of the current configuration.
func (o *Orchestrator) GetConfig() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg.clone()
}

// GetStats reports cache occupancy, probed format support, and the
// current configuration.
func (o *Orchestrator) GetStats(ctx context.Context) Stats {
	return Stats{
		CachedImages:  o.cache.Len(),
		FormatSupport: o.probe.Detect(ctx),
		Config:        o.GetConfig(),
	}
}

// ClearCache evicts all cached optimization results.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}

// RemoveFromCache evicts every cached variant of one original locator.
func (o *Orchestrator) RemoveFromCache(url string) {
	o.cache.Remove(url)
}

// breakpointsUpTo filters candidate widths to those within both the
// requested width (when set) and the configured maximum.
func breakpointsUpTo(breakpoints []int, requested, max int) []int {
	var out []int
	for _, w := range breakpoints {
		if requested > 0 && w > requested {
			continue
		}
		if max > 0 && w > max {
			continue
		}
		out = append(out, w)
	}
	return out
}
