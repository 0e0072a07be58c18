// Package asset defines the optimized-asset model shared by the cache,
// the orchestrator, and the CLI report.
package asset

import (
	"github.com/AnyUserName/imgpipe/internal/format"
)

// Metadata describes the dimensions and byte economics of an optimized
// asset. Sizes are zero when no local pixel work was performed.
type Metadata struct {
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	OriginalSize  int64     `json:"original_size,omitempty"`
	OptimizedSize int64     `json:"optimized_size,omitempty"`
	SavingsRatio  float64   `json:"savings_ratio,omitempty"`
	AvgColor      *[3]uint8 `json:"avg_color,omitempty"`
	Placeholder   string    `json:"placeholder,omitempty"` // blur-preview data URI
}

// OptimizedAsset is the result of one optimization request. Once
// inserted into the cache it is owned by the cache and shared with
// callers as a read-only view; callers wanting different options issue
// a new request instead of mutating the returned value.
type OptimizedAsset struct {
	ID             string                   `json:"id"`
	OriginalURL    string                   `json:"original_url"`
	OptimizedURLs  map[format.Format]string `json:"optimized_urls"`
	SrcSet         map[format.Format]string `json:"srcset,omitempty"`
	SrcSetFallback string                   `json:"srcset_fallback,omitempty"`
	Metadata       Metadata                 `json:"metadata"`
}
