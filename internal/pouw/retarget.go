package pouw

import (
	"math/big"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Retarget adjusts current_difficulty so that observed solutions per
// target_interval_slots approaches a target rate, clamped to
// [minDifficulty, maxDifficulty]. This is a liveness/throughput knob only
// (spec §4.6); correctness never depends on it. Proportional control:
// newDifficulty = current * observed / targetSolutions, matching the
// ratio-adjustment style used by most PoW retarget schemes, with the
// 256-bit values treated as little-endian unsigned integers.
func Retarget(current types.Hash, observedSolutions, targetSolutions uint64, minDifficulty, maxDifficulty types.Hash) types.Hash {
	if targetSolutions == 0 {
		return current
	}
	curInt := leToBig(current)
	next := new(big.Int).Mul(curInt, big.NewInt(int64(observedSolutions)))
	next.Div(next, big.NewInt(int64(targetSolutions)))

	min := leToBig(minDifficulty)
	max := leToBig(maxDifficulty)
	if next.Cmp(min) < 0 {
		next = min
	}
	if next.Cmp(max) > 0 {
		next = max
	}
	return bigToLE(next)
}

func leToBig(h types.Hash) *big.Int {
	be := make([]byte, types.HashSize)
	for i := 0; i < types.HashSize; i++ {
		be[i] = h[types.HashSize-1-i]
	}
	return new(big.Int).SetBytes(be)
}

func bigToLE(v *big.Int) types.Hash {
	be := v.Bytes()
	var h types.Hash
	for i := 0; i < len(be) && i < types.HashSize; i++ {
		h[i] = be[len(be)-1-i]
	}
	return h
}
