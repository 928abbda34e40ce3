package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ContentHash returns the hex-encoded BLAKE2b-256 digest of content.
// The hash is stored alongside each transcript and backs the per-source
// duplicate guard, so two ingestions of the same material collide instead
// of producing near-identical rows.
func ContentHash(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// CountWords returns the number of whitespace-separated tokens in content.
func CountWords(content string) int {
	return len(strings.Fields(content))
}
