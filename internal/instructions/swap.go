package instructions

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrSwapTimedOut       = errors.New("instructions: swap state has timed out")
	ErrSwapNotTimedOut    = errors.New("instructions: refund attempted before timeout")
	ErrSlippageExceeded   = errors.New("instructions: actual_out below min_out")
)

// InitiateSwapRequest bundles the parameters of withdraw-swap's first step:
// lock amount in the Pool, record nf, and open a SwapState (spec §4.5).
type InitiateSwapRequest struct {
	Nullifier       types.Hash
	Amount          uint64
	OutputMint      types.Hash
	RecipientATA    types.Hash
	MinOutputAmount uint64
	CreatedSlot     uint64
	TimeoutSlot     uint64
	Bump            byte
}

// InitiateSwap records nf in the NullifierShard and returns an initialized
// SwapState PDA view. Its only check is the double-spend check on nf; it
// makes no amount-conservation check.
func InitiateSwap(shard *onchain.NullifierShard, req InitiateSwapRequest) (*onchain.SwapState, error) {
	if shard.ContainsNullifier(req.Nullifier) {
		return nil, ErrDoubleSpend
	}
	if err := shard.AddNullifier(req.Nullifier); err != nil {
		return nil, err
	}
	return onchain.InitSwapState(
		req.Nullifier,
		req.Amount,
		req.OutputMint,
		req.RecipientATA,
		req.MinOutputAmount,
		req.CreatedSlot,
		req.TimeoutSlot,
		req.Bump,
	), nil
}

// DEXQuote is the result of invoking the DEX adapter during execute-swap.
type DEXQuote struct {
	ActualOut uint64
}

// ExecuteSwap enforces actual_out >= min_out and reports the amount to
// transfer to recipient_ata. The swap instruction is deliberately
// permissive about the inner-threshold the adapter reports and validates
// min_out itself, so it stays robust across differing adapter quoting
// conventions (spec §4.5).
func ExecuteSwap(state *onchain.SwapState, currentSlot uint64, quote DEXQuote) (uint64, error) {
	if state.IsTimedOut(currentSlot) {
		return 0, ErrSwapTimedOut
	}
	if quote.ActualOut < state.MinOutputAmount() {
		return 0, ErrSlippageExceeded
	}
	return quote.ActualOut, nil
}

// RefundSwap returns the locked amount to the Pool once the timeout has
// elapsed without an execute-swap call. The nullifier stays recorded —
// spent regardless of whether the swap ultimately completed — so the funds
// return to the anonymity set rather than to the original depositor alone.
func RefundSwap(state *onchain.SwapState, currentSlot uint64) (uint64, error) {
	if !state.IsTimedOut(currentSlot) {
		return 0, ErrSwapNotTimedOut
	}
	return state.AmountIn(), nil
}
