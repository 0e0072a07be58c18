package hasher

import (
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length. Asset ids use 16 hex chars (64 bits),
// collision-safe for practical asset counts.
func ContentHash(data []byte, hexLen int) string {
	return truncate(xxhash.Sum64(data), hexLen)
}

// RequestKey derives a deterministic cache key from an original asset
// locator and the canonical string form of its normalized options.
// Identical inputs always produce identical keys.
func RequestKey(originalURL, normalizedOptions string) string {
	d := xxhash.New()
	d.WriteString(originalURL)
	d.WriteString("\x00")
	d.WriteString(normalizedOptions)
	return truncate(d.Sum64(), 16)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(h.Sum64(), hexLen), nil
}

func truncate(v uint64, hexLen int) string {
	full := hex.EncodeToString(uint64ToBytes(v))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
	return b
}
