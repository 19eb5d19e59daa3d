// Package hashing implements the canonical hash function H of the Cloak
// protocol: BLAKE3-256 over the concatenation of its arguments with no
// separators, per spec §4.1.
package hashing

import (
	"github.com/zeebo/blake3"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// H hashes the concatenation of parts with BLAKE3 and returns the 32-byte
// digest. Arguments are concatenated in call order with no separators or
// length prefixes, matching every multi-argument hash the protocol defines.
func H(parts ...[]byte) types.Hash {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	sum := h.Sum(nil)
	copy(out[:], sum)
	return out
}

// HashPair is H(left, right), the Merkle internal-node hash.
func HashPair(left, right types.Hash) types.Hash {
	return H(left[:], right[:])
}
