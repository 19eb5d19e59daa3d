// Package onchain implements the fixed-layout account buffers of spec §4.3:
// Pool, CommitmentQueue, RootsRing, NullifierShard, SwapState,
// ScrambleRegistry, Miner, and Claim. Each type wraps a byte slice and
// exposes accessor methods that decode/encode little-endian fields and
// 32-byte arrays by value, per the Design Note in spec §9 ("replace [raw
// pointer layouts] with typed views that own a mutable byte slice").
// Concrete ledger wire mechanics (PDA bump search, account ownership
// checks against a specific chain) are out of scope per spec §1; addressing
// is reduced to the deterministic seed-hashing function below.
package onchain

import (
	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Seed prefixes from spec §6.
var (
	SeedPool            = []byte("pool")
	SeedCommitments     = []byte("commitments")
	SeedRootsRing       = []byte("roots_ring")
	SeedNullifierShard  = []byte("nullifier_shard")
	SeedTreasury        = []byte("treasury")
	SeedRegistry        = []byte("registry")
	SeedMiner           = []byte("miner")
	SeedClaim           = []byte("claim")
	SeedMinerEscrow     = []byte("miner_escrow")
	SeedSwapState       = []byte("swap_state")
)

// DeriveAddress computes the deterministic address for an account given its
// seed prefix and any key material, standing in for PDA derivation: the
// concrete ledger's bump-seed search is out of scope (spec §1), but the
// property every caller needs — the same seeds always yield the same
// address, and different seeds (almost) never collide — is preserved by
// hashing the concatenated seeds.
func DeriveAddress(seeds ...[]byte) types.Hash {
	return hashing.H(seeds...)
}
