// Package common provides shared codecs and small helpers used across the
// Cloak protocol packages.
package common

import (
	"crypto/rand"
	"encoding/hex"
)

// HexToBytes converts a hex string (optionally "0x"-prefixed) to bytes.
func HexToBytes(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

// BytesToHex converts bytes to a "0x"-prefixed hex string.
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// PutUint16LE writes v into the first 2 bytes of dst, little-endian.
func PutUint16LE(dst []byte, v uint16) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

// Uint16LE reads a little-endian uint16 from the first 2 bytes of b.
func Uint16LE(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// PutUint32LE writes v into the first 4 bytes of dst, little-endian.
func PutUint32LE(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

// Uint32LE reads a little-endian uint32 from the first 4 bytes of b.
func Uint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// PutUint64LE writes v into the first 8 bytes of dst, little-endian.
func PutUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// Uint64LE reads a little-endian uint64 from the first 8 bytes of b.
func Uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// PutUint128LE writes a 128-bit unsigned value (given as low/high 64-bit
// halves) into the first 16 bytes of dst, little-endian. Used for PoW nonces.
func PutUint128LE(dst []byte, lo, hi uint64) {
	PutUint64LE(dst[0:8], lo)
	PutUint64LE(dst[8:16], hi)
}

// Uint128LE reads a little-endian 128-bit value from the first 16 bytes of b,
// returning its low and high 64-bit halves.
func Uint128LE(b []byte) (lo, hi uint64) {
	return Uint64LE(b[0:8]), Uint64LE(b[8:16])
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// IsZeroBytes reports whether every byte of b is zero.
func IsZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// ConcatBytes concatenates slices into one freshly allocated slice.
func ConcatBytes(slices ...[]byte) []byte {
	n := 0
	for _, s := range slices {
		n += len(s)
	}
	out := make([]byte, 0, n)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
