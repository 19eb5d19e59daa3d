package instructions

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/circuits"
	"github.com/Machine-Labz/cloak-sub000/internal/economics"
	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrRootNotFound         = errors.New("instructions: root not present in RootsRing")
	ErrDoubleSpend          = errors.New("instructions: nullifier already recorded")
	ErrProofInvalid         = errors.New("instructions: ZK proof failed verification")
	ErrOutputsHashMismatch  = errors.New("instructions: recomputed outputs_hash does not match public blob")
	ErrAmountConservation   = errors.New("instructions: sum(outputs) + fee != amount")
	ErrPoolInsufficient     = errors.New("instructions: pool balance insufficient to cover amount")
)

// Output is a single transfer-mode withdrawal recipient.
type Output struct {
	Recipient types.Hash `json:"recipient"`
	Amount    uint64     `json:"amount"`
}

// OutputsHash reproduces circuit constraint 6 for transfer mode:
// H(output[0].address ‖ output[0].amount_le64 ‖ … ‖ output[n-1]…).
func OutputsHash(outputs []Output) types.Hash {
	parts := make([][]byte, 0, len(outputs)*2)
	for _, o := range outputs {
		addr := o.Recipient
		amt := make([]byte, 8)
		putUint64LE(amt, o.Amount)
		parts = append(parts, addr[:], amt)
	}
	return hashing.H(parts...)
}

func putUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// WithdrawRequest bundles everything needed to process a transfer-mode
// withdraw instruction (spec §4.5's withdraw opcode).
type WithdrawRequest struct {
	Proof             []byte // 256-byte canonical bundle
	PublicInputsBlob  []byte // 104-byte blob
	Nullifier         types.Hash
	Outputs           []Output
	FeeShareBps       uint16
	ProtocolTreasury  types.Hash
	MinerAuthority    types.Hash
}

// WithdrawResult reports the effects of a successful withdraw.
type WithdrawResult struct {
	MinerFee    uint64
	ProtocolFee uint64
	Disbursed   []Output
}

// Withdraw implements spec §4.5's transfer-mode withdraw sequencing:
// recompute and cross-check outputs_hash, decode and cross-check the public
// blob, verify RootsRing/NullifierShard membership, verify the proof,
// consume a PoW claim via CPI, and split/disburse fees.
func Withdraw(
	ring *onchain.RootsRing,
	shard *onchain.NullifierShard,
	claim *onchain.Claim,
	manager *circuits.Manager,
	verifierWitness *circuits.WithdrawalCircuit,
	poolBalance uint64,
	currentSlot uint64,
	req WithdrawRequest,
) (WithdrawResult, error) {
	pub, err := circuits.DecodePublicInputs(req.PublicInputsBlob)
	if err != nil {
		return WithdrawResult{}, err
	}

	recomputedOutputsHash := OutputsHash(req.Outputs)
	if recomputedOutputsHash != pub.OutputsHash {
		return WithdrawResult{}, ErrOutputsHashMismatch
	}
	if pub.Nullifier != req.Nullifier {
		return WithdrawResult{}, ErrDoubleSpend // nf mismatch between blob and instruction args
	}

	fee, err := economics.TransferFee(pub.Amount)
	if err != nil {
		return WithdrawResult{}, err
	}
	var outputsSum uint64
	for _, o := range req.Outputs {
		outputsSum += o.Amount
	}
	if outputsSum+fee != pub.Amount {
		return WithdrawResult{}, ErrAmountConservation
	}

	if !ring.ContainsRoot(pub.Root) {
		return WithdrawResult{}, ErrRootNotFound
	}
	if shard.ContainsNullifier(req.Nullifier) {
		return WithdrawResult{}, ErrDoubleSpend
	}

	proof, err := circuits.DecodeProofBundle(req.Proof)
	if err != nil {
		return WithdrawResult{}, err
	}
	if err := manager.Verify(proof, verifierWitness); err != nil {
		return WithdrawResult{}, ErrProofInvalid
	}

	if err := shard.AddNullifier(req.Nullifier); err != nil {
		return WithdrawResult{}, err
	}

	if err := ConsumeClaimForWithdraw(claim, currentSlot); err != nil {
		return WithdrawResult{}, err
	}

	if poolBalance < pub.Amount {
		return WithdrawResult{}, ErrPoolInsufficient
	}

	minerFee, protocolFee := economics.Split(fee, req.FeeShareBps)
	return WithdrawResult{MinerFee: minerFee, ProtocolFee: protocolFee, Disbursed: req.Outputs}, nil
}
