package instructions

import (
	"github.com/Machine-Labz/cloak-sub000/internal/circuits"
	"github.com/Machine-Labz/cloak-sub000/internal/economics"
	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// UnstakeOutputsHash reproduces circuit constraint 6 for unstake mode:
// H(deposit_commitment ‖ stake_account), matching WithdrawalCircuit.Define's
// unstakeOutputsHash computation.
func UnstakeOutputsHash(commitment, stakeAccount types.Hash) types.Hash {
	return hashing.H(commitment[:], stakeAccount[:])
}

// WithdrawUnstakeRequest bundles unstake-mode's parameters. Unlike transfer
// and swap, unstake is a deposit-direction instruction: it proves a freshly
// formed commitment C := H(deposit_amount ‖ r ‖ H(sk)) without any
// Merkle/nullifier membership check, and appends C to the commitment queue
// as a new note (spec §4.4's unstake mode).
type WithdrawUnstakeRequest struct {
	Proof             []byte // 256-byte canonical bundle
	PublicInputsBlob  []byte // 104-byte blob; Root/Nullifier are zero, OutputsHash/Amount are meaningful
	DepositCommitment types.Hash
	StakeAccount      types.Hash
	FeeShareBps       uint16
}

// WithdrawUnstakeResult reports the new note's leaf index and the fee split.
type WithdrawUnstakeResult struct {
	LeafIndex     uint64
	UnstakeAmount uint64
	MinerFee      uint64
	ProtocolFee   uint64
}

// WithdrawUnstake verifies an unstake-mode proof and appends its deposit
// commitment to the queue, mirroring Deposit's queue-append for the note
// side and Withdraw's proof/claim-verification sequencing for the spend
// side — unstake does both, since it both consumes a PoW claim and mints a
// new shielded note in one instruction.
func WithdrawUnstake(
	claim *onchain.Claim,
	manager *circuits.Manager,
	verifierWitness *circuits.WithdrawalCircuit,
	queue *onchain.CommitmentQueue,
	currentSlot uint64,
	req WithdrawUnstakeRequest,
) (WithdrawUnstakeResult, error) {
	pub, err := circuits.DecodePublicInputs(req.PublicInputsBlob)
	if err != nil {
		return WithdrawUnstakeResult{}, err
	}

	recomputedOutputsHash := UnstakeOutputsHash(req.DepositCommitment, req.StakeAccount)
	if recomputedOutputsHash != pub.OutputsHash {
		return WithdrawUnstakeResult{}, ErrOutputsHashMismatch
	}

	fee, err := economics.UnstakeFee(pub.Amount)
	if err != nil {
		return WithdrawUnstakeResult{}, err
	}

	proof, err := circuits.DecodeProofBundle(req.Proof)
	if err != nil {
		return WithdrawUnstakeResult{}, err
	}
	if err := manager.Verify(proof, verifierWitness); err != nil {
		return WithdrawUnstakeResult{}, ErrProofInvalid
	}

	if err := ConsumeClaimForWithdraw(claim, currentSlot); err != nil {
		return WithdrawUnstakeResult{}, err
	}

	leafIndex, err := queue.Append(req.DepositCommitment)
	if err != nil {
		return WithdrawUnstakeResult{}, err
	}

	minerFee, protocolFee := economics.Split(fee, req.FeeShareBps)
	return WithdrawUnstakeResult{
		LeafIndex:     leafIndex,
		UnstakeAmount: pub.Amount - fee,
		MinerFee:      minerFee,
		ProtocolFee:   protocolFee,
	}, nil
}
