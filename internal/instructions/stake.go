package instructions

import (
	"github.com/Machine-Labz/cloak-sub000/internal/economics"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// WithdrawStakeRequest bundles withdraw-stake's parameters: the stake
// transfer amount is derived from the withdrawal's pre-fee amount, and
// delegation to a validator is a separate, public action performed by the
// caller after this instruction (spec §4.5).
type WithdrawStakeRequest struct {
	Amount       uint64
	StakeAccount types.Hash
	FeeShareBps  uint16
}

// WithdrawStakeResult reports the stake transfer and fee split.
type WithdrawStakeResult struct {
	StakeAmount uint64
	MinerFee    uint64
	ProtocolFee uint64
}

// WithdrawStake computes stake_amount := amount - fee and splits fee
// between miner and protocol, mirroring Withdraw's transfer-mode fee logic
// but routing the principal to a stake account PDA instead of recipients.
func WithdrawStake(req WithdrawStakeRequest) (WithdrawStakeResult, error) {
	fee, err := economics.TransferFee(req.Amount)
	if err != nil {
		return WithdrawStakeResult{}, err
	}
	minerFee, protocolFee := economics.Split(fee, req.FeeShareBps)
	return WithdrawStakeResult{
		StakeAmount: req.Amount - fee,
		MinerFee:    minerFee,
		ProtocolFee: protocolFee,
	}, nil
}
