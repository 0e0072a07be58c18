// Package urlgen builds transformation locators and responsive source
// sets for optimized assets. Everything here is a pure string function:
// no I/O, deterministic byte-for-byte output for identical inputs.
package urlgen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/AnyUserName/imgpipe/internal/format"
)

// Params are the transformation parameters appended to a base locator.
// A zero Width/Height/Quality or empty Format is treated as absent and
// omitted from the output.
type Params struct {
	Width   int
	Height  int
	Quality int
	Format  format.Format
}

// Build appends transformation query parameters to base using the fixed
// short keys w, h, q, f — always in that order so identical inputs yield
// byte-identical output.
func Build(base string, p Params) string {
	var pairs []string
	if p.Width > 0 {
		pairs = append(pairs, "w="+strconv.Itoa(p.Width))
	}
	if p.Height > 0 {
		pairs = append(pairs, "h="+strconv.Itoa(p.Height))
	}
	if p.Quality > 0 {
		pairs = append(pairs, "q="+strconv.Itoa(p.Quality))
	}
	if p.Format != "" {
		pairs = append(pairs, "f="+string(p.Format))
	}
	if len(pairs) == 0 {
		return base
	}

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(pairs, "&")
}

// SourceSet is a width-variant descriptor set per encoding. Fallback is
// the descriptor string for the terminal fallback format (jpeg);
// ByFormat holds one descriptor string per supported advanced encoding.
type SourceSet struct {
	Fallback string
	ByFormat map[format.Format]string
}

// GenerateSourceSet emits one "<url> <width>w" token per candidate width,
// joined by ", ", for each encoding in the supported fallback chain.
// Output widths are sorted ascending and deduplicated regardless of input
// order. An empty widths slice yields empty descriptor strings.
func GenerateSourceSet(base string, widths []int, quality int, support format.Support) SourceSet {
	sorted := sortWidths(widths)

	set := SourceSet{
		Fallback: descriptor(base, sorted, quality, format.JPEG),
		ByFormat: make(map[format.Format]string),
	}
	for _, f := range format.FallbackChain(support) {
		set.ByFormat[f] = descriptor(base, sorted, quality, f)
	}
	return set
}

func descriptor(base string, widths []int, quality int, f format.Format) string {
	tokens := make([]string, 0, len(widths))
	for _, w := range widths {
		u := Build(base, Params{Width: w, Quality: quality, Format: f})
		tokens = append(tokens, u+" "+strconv.Itoa(w)+"w")
	}
	return strings.Join(tokens, ", ")
}

func sortWidths(widths []int) []int {
	seen := make(map[int]bool, len(widths))
	out := make([]int, 0, len(widths))
	for _, w := range widths {
		if w > 0 && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out
}
