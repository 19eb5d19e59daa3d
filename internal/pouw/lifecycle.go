package pouw

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Operations wiring mine_claim / reveal_claim / consume_claim onto the
// onchain account buffers, per spec §4.6's precondition table. These are
// the program-side checks a ledger runtime would perform in the
// corresponding instruction handlers; internal/instructions calls
// ConsumeClaim as part of its own withdraw sequencing.

var (
	ErrSlotHashMismatch    = errors.New("pouw: slot_hash does not match expected sysvar entry")
	ErrProofHashMismatch   = errors.New("pouw: H(preimage) does not equal provided proof_hash")
	ErrProofBelowDifficulty = errors.New("pouw: proof_hash does not satisfy current_difficulty")
	ErrClaimAlreadyExists  = errors.New("pouw: claim already initialized for (miner, batch_hash, slot)")
	ErrMinerNotRegistered  = errors.New("pouw: miner is not registered")
	ErrNotMinerAuthority   = errors.New("pouw: signer is not the claim's miner authority")
	ErrRevealWindowPassed  = errors.New("pouw: current_slot - mined_at_slot exceeds reveal_window")
	ErrNotCPICaller        = errors.New("pouw: consume_claim invoked outside the withdrawal program's CPI")
)

// BatchHashForJob returns H(job_id) used as a single-job claim's
// batch_hash; the caller passes types.Hash{} directly for the wildcard.
func BatchHashForJob(jobID string) types.Hash {
	return hashing.H([]byte(jobID))
}

// MineClaimInput bundles the preconditions checked by mine_claim.
type MineClaimInput struct {
	ExpectedSlotHash types.Hash
	Engine           Engine
	NonceLo, NonceHi uint64
	ProofHash        types.Hash
	ClaimExists      bool
	MinerRegistered  bool
	MaxConsumes      uint16
}

// MineClaim validates the preconditions of spec §4.6's mine_claim and, on
// success, returns a freshly initialized Claim in the Mined state.
func MineClaim(in MineClaimInput) (*onchain.Claim, error) {
	if in.Engine.SlotHash != in.ExpectedSlotHash {
		return nil, ErrSlotHashMismatch
	}
	if !in.MinerRegistered {
		return nil, ErrMinerNotRegistered
	}
	if in.ClaimExists {
		return nil, ErrClaimAlreadyExists
	}
	computed := in.Engine.HashPreimage(in.NonceLo, in.NonceHi)
	if computed != in.ProofHash {
		return nil, ErrProofHashMismatch
	}
	if !in.Engine.CheckDifficulty(in.ProofHash) {
		return nil, ErrProofBelowDifficulty
	}
	return onchain.InitClaim(onchain.ClaimInit{
		MinerAuthority: in.Engine.MinerPubkey,
		BatchHash:      in.Engine.BatchHash,
		Slot:           in.Engine.Slot,
		SlotHash:       in.Engine.SlotHash,
		NonceLo:        in.NonceLo,
		NonceHi:        in.NonceHi,
		ProofHash:      in.ProofHash,
		MinedAtSlot:    in.Engine.Slot,
		MaxConsumes:    in.MaxConsumes,
	}), nil
}

// RevealClaim validates reveal_claim's preconditions and, on success,
// transitions claim Mined -> Revealed.
func RevealClaim(claim *onchain.Claim, signer types.Hash, currentSlot, revealWindow, claimWindow uint64) error {
	if claim.Status() != onchain.ClaimMined {
		return onchain.ErrClaimNotRevealed
	}
	if claim.MinerAuthority() != signer {
		return ErrNotMinerAuthority
	}
	if currentSlot-claim.MinedAtSlot() > revealWindow {
		return ErrRevealWindowPassed
	}
	claim.Reveal(currentSlot, claimWindow)
	return nil
}

// ConsumeClaim validates consume_claim's preconditions (CPI-only, not
// expired, not already fully consumed) and increments consumed_count.
func ConsumeClaim(claim *onchain.Claim, isCPIFromWithdrawalProgram bool, currentSlot uint64) error {
	if !isCPIFromWithdrawalProgram {
		return ErrNotCPICaller
	}
	if !claim.IsRevealed() {
		return onchain.ErrClaimNotRevealed
	}
	if claim.IsExpired(currentSlot) {
		return onchain.ErrClaimExpired
	}
	return claim.Consume()
}
