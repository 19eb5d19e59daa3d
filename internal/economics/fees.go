// Package economics implements the withdrawal fee arithmetic: fixed+variable
// fees for transfer/stake, variable-only for unstake, and the miner/protocol
// fee split. Adapted from an EIP-1559-style internal/economics/fees.go,
// replaced with the protocol's fixed formula — there is no base-fee market
// here, only the per-withdrawal schedule below.
package economics

import "errors"

const (
	// FixedFee is the flat component of the transfer-mode fee.
	FixedFee uint64 = 2_500_000
	// VariableFeeNumerator/VariableFeeDenominator give the 0.5% variable
	// component: amount*5/1000.
	VariableFeeNumerator   uint64 = 5
	VariableFeeDenominator uint64 = 1000

	// FeeShareBpsDenominator is the basis-points denominator for the
	// miner/protocol fee split.
	FeeShareBpsDenominator uint64 = 10_000

	// MaxSafeAmount bounds amount so that amount*VariableFeeNumerator never
	// overflows a uint64 (spec §4.5: "amount ≤ 2^64/5").
	MaxSafeAmount = (^uint64(0)) / VariableFeeNumerator
)

var ErrAmountOverflowsFeeArithmetic = errors.New("economics: amount too large for fee arithmetic")

// VariableFee returns amount*5/1000 with integer division truncating toward
// zero, as required by spec §4.5.
func VariableFee(amount uint64) (uint64, error) {
	if amount > MaxSafeAmount {
		return 0, ErrAmountOverflowsFeeArithmetic
	}
	return amount * VariableFeeNumerator / VariableFeeDenominator, nil
}

// TransferFee returns the fixed+variable fee used by transfer and stake
// modes: 2_500_000 + amount*5/1000.
func TransferFee(amount uint64) (uint64, error) {
	v, err := VariableFee(amount)
	if err != nil {
		return 0, err
	}
	return FixedFee + v, nil
}

// UnstakeFee returns the variable-only 0.5% fee used by unstake mode.
func UnstakeFee(amount uint64) (uint64, error) {
	return VariableFee(amount)
}

// Split divides fee into the miner's share (fee*fee_share_bps/10000) and the
// protocol's remainder, with no rounding loss: minerFee+protocolFee==fee
// always (spec §4.5).
func Split(fee uint64, feeShareBps uint16) (minerFee, protocolFee uint64) {
	minerFee = fee * uint64(feeShareBps) / FeeShareBpsDenominator
	protocolFee = fee - minerFee
	return
}
