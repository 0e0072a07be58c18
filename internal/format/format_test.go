package format

import (
	"context"
	"testing"
)

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name    string
		support Support
		want    Format
	}{
		{"all supported", Support{AVIF: true, WebP: true, JPEG: true, PNG: true, GIF: true}, AVIF},
		{"no avif", Support{WebP: true, JPEG: true, PNG: true, GIF: true}, WebP},
		{"baseline only", Support{JPEG: true, PNG: true, GIF: true}, JPEG},
		{"zero value still falls back to jpeg", Support{}, JPEG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectBest(tt.support); got != tt.want {
				t.Errorf("SelectBest: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackChain(t *testing.T) {
	s := Support{WebP: true, JPEG: true, PNG: true, GIF: true}
	got := FallbackChain(s)
	want := []Format{WebP, JPEG, PNG}
	if len(got) != len(want) {
		t.Fatalf("chain length: got %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chain[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNegotiate(t *testing.T) {
	all := Support{AVIF: true, WebP: true, JPEG: true, PNG: true, GIF: true}
	baseline := Support{JPEG: true, PNG: true, GIF: true}

	tests := []struct {
		name      string
		requested Format
		support   Support
		want      []Format
	}{
		{"supported request narrows", WebP, all, []Format{WebP}},
		{"empty request keeps chain", "", all, []Format{AVIF, WebP, JPEG, PNG}},
		{"unsupported request keeps chain", AVIF, baseline, []Format{JPEG, PNG}},
		{"gif is not a delivery format", GIF, all, []Format{AVIF, WebP, JPEG, PNG}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Negotiate(tt.requested, tt.support)
			if len(got) != len(tt.want) {
				t.Fatalf("length: got %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("[%d]: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"avif", AVIF, true},
		{"WEBP", WebP, true},
		{"jpg", JPEG, true},
		{"jpeg", JPEG, true},
		{"png", PNG, true},
		{"gif", GIF, true},
		{"tiff", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q): got (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDetect_BaselineGuarantee(t *testing.T) {
	p := NewProbe(nil)
	s := p.Detect(context.Background())
	if !s.JPEG || !s.PNG || !s.GIF {
		t.Errorf("baseline formats must always be supported: %+v", s)
	}
}

func TestDetect_Memoized(t *testing.T) {
	p := NewProbe(nil)
	first := p.Detect(context.Background())
	second := p.Detect(context.Background())
	if first != second {
		t.Errorf("probe result changed between calls: %+v vs %+v", first, second)
	}
}
