package idhash

import (
	"crypto/sha256"
	"strings"

	"github.com/mr-tron/base58"
)

// FindingID computes a deterministic finding identifier.
// Formula: base58(SHA256(kind|part1|part2|...)[:16])
// The same finding on the same input always hashes to the same ID, which
// keeps full pipeline runs bit-identical and lets append-only stores
// deduplicate across runs.
func FindingID(kind string, parts ...string) string {
	data := kind + "|" + strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}
