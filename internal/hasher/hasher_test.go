package hasher

import (
	"bytes"
	"testing"
)

func TestContentHash_Deterministic(t *testing.T) {
	data := []byte("https://cdn.example.com/banner.jpg")
	h1 := ContentHash(data, 16)
	h2 := ContentHash(data, 16)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("hash length: got %d, want 16", len(h1))
	}
}

func TestRequestKey_DistinguishesOptions(t *testing.T) {
	a := RequestKey("https://x/i.jpg", "f=webp|q=80|w=800")
	b := RequestKey("https://x/i.jpg", "f=webp|q=80|w=400")
	if a == b {
		t.Errorf("different options produced the same key %q", a)
	}
	if a != RequestKey("https://x/i.jpg", "f=webp|q=80|w=800") {
		t.Error("identical inputs produced different keys")
	}
}

func TestContentHashReader_MatchesSum(t *testing.T) {
	data := []byte("some image bytes")
	want := ContentHash(data, 0)
	got, err := ContentHashReader(bytes.NewReader(data), 0)
	if err != nil {
		t.Fatalf("reader hash: %v", err)
	}
	if got != want {
		t.Errorf("streaming hash mismatch: %q vs %q", got, want)
	}
}
