// Package pouw implements the proof-of-useful-work admission gate of spec
// §4.6: preimage construction, BLAKE3 hashing, difficulty comparison, and a
// brute-force nonce search. Grounded on
// original_source/packages/cloak-miner/src/engine.rs's MiningEngine, ported
// from Rust u128/u256 arithmetic to Go's pkg/common little-endian codec and
// internal/hashing's blake3 wrapper.
package pouw

import (
	"context"
	"errors"
	"time"

	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Domain is the preimage domain separation tag.
const Domain = "CLOAK:SCRAMBLE:v1"

// PreimageSize is 17 (domain) + 8 (slot) + 32 (slot_hash) + 32 (miner_pubkey)
// + 32 (batch_hash) + 16 (nonce) = 137 bytes.
const PreimageSize = len(Domain) + 8 + 32 + 32 + 32 + 16

var ErrNonceSpaceExhausted = errors.New("pouw: nonce space exhausted")

// Engine holds the fixed parameters of one mining attempt: a difficulty
// target and the slot/batch context the solution is bound to.
type Engine struct {
	DifficultyTarget types.Hash
	Slot             uint64
	SlotHash         types.Hash
	MinerPubkey      types.Hash
	BatchHash        types.Hash
}

// BuildPreimage lays out the 137-byte PoW preimage exactly as
// engine.rs::build_preimage: domain, slot LE, slot_hash, miner_pubkey,
// batch_hash, nonce LE (u128 split lo/hi).
func (e Engine) BuildPreimage(nonceLo, nonceHi uint64) []byte {
	buf := make([]byte, PreimageSize)
	off := 0
	off += copy(buf[off:], Domain)
	common.PutUint64LE(buf[off:off+8], e.Slot)
	off += 8
	off += copy(buf[off:], e.SlotHash[:])
	off += copy(buf[off:], e.MinerPubkey[:])
	off += copy(buf[off:], e.BatchHash[:])
	common.PutUint128LE(buf[off:off+16], nonceLo, nonceHi)
	return buf
}

// HashPreimage returns the BLAKE3 digest of the preimage for the given nonce.
func (e Engine) HashPreimage(nonceLo, nonceHi uint64) types.Hash {
	return hashing.H(e.BuildPreimage(nonceLo, nonceHi))
}

// CheckDifficulty reports whether hash < DifficultyTarget under a 256-bit
// little-endian unsigned comparison (most significant byte is index 31).
func (e Engine) CheckDifficulty(hash types.Hash) bool {
	return u256Lt(hash, e.DifficultyTarget)
}

// u256Lt compares two 32-byte values as little-endian unsigned integers,
// most-significant-byte first, matching engine.rs::u256_lt.
func u256Lt(a, b types.Hash) bool {
	for i := 31; i >= 0; i-- {
		if a[i] < b[i] {
			return true
		}
		if a[i] > b[i] {
			return false
		}
	}
	return false
}

// Solution is a discovered valid nonce and its resulting proof hash.
type Solution struct {
	NonceLo, NonceHi uint64
	ProofHash        types.Hash
	Attempts         uint64
	Elapsed          time.Duration
}

// Mine brute-forces nonces from zero upward until CheckDifficulty succeeds,
// or ctx is cancelled. Only the low 64 bits of the nonce are searched; the
// high 64 bits stay fixed at nonceHi, matching realistic search space
// (2^64 attempts already exceeds any feasible single-miner budget before the
// high word would need to move).
func Mine(ctx context.Context, e Engine, nonceHi uint64) (Solution, error) {
	start := time.Now()
	var attempts uint64
	for lo := uint64(0); ; lo++ {
		select {
		case <-ctx.Done():
			return Solution{}, ctx.Err()
		default:
		}
		hash := e.HashPreimage(lo, nonceHi)
		if e.CheckDifficulty(hash) {
			return Solution{NonceLo: lo, NonceHi: nonceHi, ProofHash: hash, Attempts: attempts, Elapsed: time.Since(start)}, nil
		}
		attempts++
		if lo == ^uint64(0) {
			return Solution{}, ErrNonceSpaceExhausted
		}
	}
}

// MineWithTimeout is Mine bounded by a wall-clock deadline instead of (or in
// addition to) context cancellation.
func MineWithTimeout(ctx context.Context, e Engine, nonceHi uint64, timeout time.Duration) (Solution, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return Mine(ctx, e, nonceHi)
}
