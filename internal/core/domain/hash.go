package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentDigest returns the hex-encoded SHA-256 digest of raw document
// content. Identical bytes always produce the identical digest; collisions
// are treated as impossible for dedup purposes.
func ContentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
