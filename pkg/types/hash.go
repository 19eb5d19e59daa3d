// Package types defines the core value types shared across the Cloak
// protocol: 32-byte hashes, commitments, nullifiers, roots, and keys.
package types

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashSize is the width in bytes of every hash, commitment, nullifier,
	// root, and key in the protocol (spec §3: "All hashes, commitments,
	// roots, and nullifiers are 32-byte values").
	HashSize = 32
)

// Hash is a 32-byte BLAKE3 digest, commitment, nullifier, root, or key.
type Hash [HashSize]byte

// EmptyHash is the all-zero hash, used as the wildcard batch_hash and the
// native-asset mint identity.
var EmptyHash = Hash{}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == EmptyHash
}

// Bytes returns h as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String renders h as a lowercase hex string.
func (h Hash) String() string {
	const hexChars = "0123456789abcdef"
	out := make([]byte, HashSize*2)
	for i, v := range h {
		out[i*2] = hexChars[v>>4]
		out[i*2+1] = hexChars[v&0x0f]
	}
	return string(out)
}

// HashFromBytes copies the first HashSize bytes of b into a Hash. Panics if b
// is shorter than HashSize: callers at system boundaries must validate length
// first (account buffers are always read at a fixed size).
func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b[:HashSize])
	return h
}

// MarshalJSON renders h as a quoted lowercase hex string, so every JSON API
// surface in the module (relay, indexer) sees hashes the same way.
func (h Hash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON parses a quoted 64-character hex string into h.
func (h *Hash) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("types: Hash must be a quoted hex string")
	}
	raw, err := hex.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("types: invalid hex in Hash: %w", err)
	}
	if len(raw) != HashSize {
		return fmt.Errorf("types: Hash must decode to %d bytes, got %d", HashSize, len(raw))
	}
	copy(h[:], raw)
	return nil
}
