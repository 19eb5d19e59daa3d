package instructions

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/economics"
	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/internal/merkle"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrNotWildcardClaim  = errors.New("instructions: miner-decoy-withdraw requires a wildcard claim")
	ErrInvalidMerkleProof = errors.New("instructions: recomputed commitment does not verify against expected root")
)

// MinerDecoyWithdrawRequest bundles the publicly revealed note opening a
// miner uses to reclaim their own deposit without a ZK proof (spec §4.5).
type MinerDecoyWithdrawRequest struct {
	Amount        uint64
	R             types.Hash
	Sk            types.Hash
	LeafIndex     uint64
	MerkleProof   *merkle.Proof
	ExpectedRoot  types.Hash
	MinerEscrow   types.Hash
}

// MinerDecoyWithdrawResult reports the disbursement to the miner's escrow.
type MinerDecoyWithdrawResult struct {
	Nullifier   types.Hash
	Disbursed   uint64
	Fee         uint64
}

// MinerDecoyWithdraw recomputes C and nf from the revealed opening, checks
// Merkle and RootsRing membership, checks/records the nullifier, consumes a
// PoW claim via CPI — restricted to a wildcard claim, since a miner's own
// decoy withdraw has no batch to bind a specific claim to — and disburses
// amount-fee to the miner's escrow.
func MinerDecoyWithdraw(
	ring *onchain.RootsRing,
	shard *onchain.NullifierShard,
	claim *onchain.Claim,
	currentSlot uint64,
	req MinerDecoyWithdrawRequest,
) (MinerDecoyWithdrawResult, error) {
	pk := hashing.H(req.Sk[:])

	amountLE := make([]byte, 8)
	common.PutUint64LE(amountLE, req.Amount)
	commitment := hashing.H(amountLE, req.R[:], pk[:])

	if req.MerkleProof == nil || !merkle.Verify(commitment, req.MerkleProof, req.ExpectedRoot) {
		return MinerDecoyWithdrawResult{}, ErrInvalidMerkleProof
	}
	if !ring.ContainsRoot(req.ExpectedRoot) {
		return MinerDecoyWithdrawResult{}, ErrRootNotFound
	}

	leafIndexLE := make([]byte, 4)
	common.PutUint32LE(leafIndexLE, uint32(req.LeafIndex))
	nf := hashing.H(req.Sk[:], leafIndexLE)

	if shard.ContainsNullifier(nf) {
		return MinerDecoyWithdrawResult{}, ErrDoubleSpend
	}
	if err := shard.AddNullifier(nf); err != nil {
		return MinerDecoyWithdrawResult{}, err
	}

	if !claim.IsWildcard() {
		return MinerDecoyWithdrawResult{}, ErrNotWildcardClaim
	}
	if err := ConsumeClaimForWithdraw(claim, currentSlot); err != nil {
		return MinerDecoyWithdrawResult{}, err
	}

	fee, err := economics.TransferFee(req.Amount)
	if err != nil {
		return MinerDecoyWithdrawResult{}, err
	}
	return MinerDecoyWithdrawResult{Nullifier: nf, Disbursed: req.Amount - fee, Fee: fee}, nil
}
