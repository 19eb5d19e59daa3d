package relay

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/circuits"
	"github.com/Machine-Labz/cloak-sub000/internal/economics"
	"github.com/Machine-Labz/cloak-sub000/internal/instructions"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrOutputsHashMismatch = errors.New("relay: recomputed outputs_hash does not match public_inputs.outputs_hash")
	ErrAmountConservation  = errors.New("relay: sum(outputs) + fee(amount) != amount")
	ErrAlreadySpent        = errors.New("relay: nullifier already in local spent-nullifier cache")
	ErrEmptyOutputs        = errors.New("relay: transfer-mode withdraw requires at least one output")
)

// WithdrawRequestPayload is the JSON body of POST /withdraw (spec §4.8).
type WithdrawRequestPayload struct {
	Outputs          []instructions.Output `json:"outputs"`
	FeeShareBps      uint16                 `json:"fee_share_bps"`
	PublicInputsBlob []byte                 `json:"public_inputs"` // 104-byte blob
	ProofBytes       []byte                 `json:"proof"`         // 256-byte canonical bundle

	// Swap holds the swap-mode config when this job is a swap rather than a
	// plain transfer; nil for transfer-mode jobs.
	Swap *SwapRequestConfig `json:"swap,omitempty"`
}

// SwapRequestConfig carries the swap-mode-specific fields of §4.8's "optional
// swap/stake config".
type SwapRequestConfig struct {
	OutputMint      types.Hash `json:"output_mint"`
	RecipientATA    types.Hash `json:"recipient_ata"`
	MinOutputAmount uint64     `json:"min_output_amount"`
}

// SpentNullifierCache reports whether nf has already been observed locally,
// a fast-path rejection ahead of the authoritative on-chain NullifierShard
// check (spec §4.8).
type SpentNullifierCache interface {
	Contains(nf types.Hash) bool
}

// ValidateWithdrawRequest performs the relay-side checks of spec §4.8 before
// a request is ever enqueued: outputs_hash cross-check, amount conservation,
// and the local double-spend fast path. The authoritative root/proof/claim
// checks happen on-chain inside the withdraw instruction itself.
func ValidateWithdrawRequest(req WithdrawRequestPayload, cache SpentNullifierCache) (circuits.PublicInputs, error) {
	pub, err := circuits.DecodePublicInputs(req.PublicInputsBlob)
	if err != nil {
		return circuits.PublicInputs{}, err
	}

	if req.Swap == nil {
		if len(req.Outputs) == 0 {
			return circuits.PublicInputs{}, ErrEmptyOutputs
		}
		if instructions.OutputsHash(req.Outputs) != pub.OutputsHash {
			return circuits.PublicInputs{}, ErrOutputsHashMismatch
		}
		fee, err := economics.TransferFee(pub.Amount)
		if err != nil {
			return circuits.PublicInputs{}, err
		}
		var sum uint64
		for _, o := range req.Outputs {
			sum += o.Amount
		}
		if sum+fee != pub.Amount {
			return circuits.PublicInputs{}, ErrAmountConservation
		}
	}

	if cache != nil && cache.Contains(pub.Nullifier) {
		return circuits.PublicInputs{}, ErrAlreadySpent
	}

	return pub, nil
}
