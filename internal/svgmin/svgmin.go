// Package svgmin minifies vector icon markup with a deterministic,
// idempotent text-rewrite pass. Each pass is an independent pure
// function over the document text; no DOM is built, so malformed input
// degrades to best-effort stripping instead of an error.
package svgmin

import (
	"regexp"
	"strconv"
	"strings"
)

// Options toggles individual minification passes. All passes are enabled
// by DefaultOptions; zero out a field to skip that pass.
type Options struct {
	StripComments      bool
	StripMetadata      bool // <metadata>, <title>, <desc> elements, children included
	StripEmptyGroups   bool
	StripDefaultAttrs  bool // fill="none", stroke="none", stroke-width="1" exact matches only
	MinifyStyles       bool
	RoundNumbers       bool
	Precision          int // decimal places kept by RoundNumbers
	CollapseWhitespace bool
}

// DefaultOptions enables every pass with 2-digit numeric precision.
func DefaultOptions() Options {
	return Options{
		StripComments:      true,
		StripMetadata:      true,
		StripEmptyGroups:   true,
		StripDefaultAttrs:  true,
		MinifyStyles:       true,
		RoundNumbers:       true,
		Precision:          2,
		CollapseWhitespace: true,
	}
}

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

	// One expression per stripped element so open and close tags match up.
	metadataRes = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<metadata\b[^>]*>.*?</metadata\s*>`),
		regexp.MustCompile(`(?s)<title\b[^>]*>.*?</title\s*>`),
		regexp.MustCompile(`(?s)<desc\b[^>]*>.*?</desc\s*>`),
		regexp.MustCompile(`<metadata\b[^>]*/>`),
		regexp.MustCompile(`<title\b[^>]*/>`),
		regexp.MustCompile(`<desc\b[^>]*/>`),
	}

	emptyGroupRe = regexp.MustCompile(`<g(\s[^>]*)?>\s*</g\s*>`)

	// Exact-value matches only: a closing quote right after the default
	// value keeps stroke-width="1.5" and fill="nonzero" intact.
	defaultAttrRes = []*regexp.Regexp{
		regexp.MustCompile(`\s+fill="none"`),
		regexp.MustCompile(`\s+stroke="none"`),
		regexp.MustCompile(`\s+stroke-width="1"`),
	}

	styleAttrRe  = regexp.MustCompile(`style="([^"]*)"`)
	styleColonRe = regexp.MustCompile(`\s*:\s*`)
	styleSemiRe  = regexp.MustCompile(`\s*;\s*`)

	numberRe     = regexp.MustCompile(`-?\d+\.\d+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Minify rewrites SVG content per the enabled passes. It is a pure
// function of (content, opts) and idempotent: minifying twice yields
// the same bytes as minifying once. The value-normalizing passes
// (styles, numbers) must run before default-attribute stripping so an
// attribute that normalizes into a default, like stroke-width="1.0",
// is removed in the same pass.
func Minify(content string, opts Options) string {
	if opts.StripComments {
		content = stripComments(content)
	}
	if opts.StripMetadata {
		content = stripMetadata(content)
	}
	if opts.StripEmptyGroups {
		content = stripEmptyGroups(content)
	}
	if opts.MinifyStyles {
		content = minifyStyles(content)
	}
	if opts.RoundNumbers {
		content = roundNumbers(content, opts.Precision)
	}
	if opts.StripDefaultAttrs {
		content = stripDefaultAttrs(content)
	}
	if opts.CollapseWhitespace {
		content = collapseWhitespace(content)
	}
	return content
}

func stripComments(s string) string {
	return commentRe.ReplaceAllString(s, "")
}

func stripMetadata(s string) string {
	for _, re := range metadataRes {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// stripEmptyGroups removes <g></g> and whitespace-only groups, repeating
// until a fixpoint so that removing an inner group exposes (and then
// removes) a newly empty parent.
func stripEmptyGroups(s string) string {
	for {
		next := emptyGroupRe.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}

func stripDefaultAttrs(s string) string {
	for _, re := range defaultAttrRes {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

// minifyStyles rewrites inline style attribute content: whitespace around
// ':' and ';' is dropped, as is a trailing semicolon.
func minifyStyles(s string) string {
	return styleAttrRe.ReplaceAllStringFunc(s, func(m string) string {
		inner := m[len(`style="`) : len(m)-1]
		inner = styleColonRe.ReplaceAllString(inner, ":")
		inner = styleSemiRe.ReplaceAllString(inner, ";")
		inner = strings.TrimSpace(inner)
		inner = strings.TrimSuffix(inner, ";")
		return `style="` + inner + `"`
	})
}

// roundNumbers rewrites decimal literals to at most precision places,
// stripping trailing zeros and a bare trailing decimal point. Integers
// are left untouched.
func roundNumbers(s string, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return numberRe.ReplaceAllStringFunc(s, func(m string) string {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return m
		}
		out := strconv.FormatFloat(v, 'f', precision, 64)
		if strings.Contains(out, ".") {
			out = strings.TrimRight(out, "0")
			out = strings.TrimSuffix(out, ".")
		}
		return out
	})
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
