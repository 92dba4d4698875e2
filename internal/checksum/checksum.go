package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fingerprint is a fast, order-sensitive 64-bit polynomial hash of s. It
// detects content changes for cache entries and is not collision resistant.
func Fingerprint(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h = h*31 + uint64(s[i])
	}
	return h ^ uint64(len(s))
}
