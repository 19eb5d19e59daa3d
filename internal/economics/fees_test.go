package economics

import "testing"

func TestTransferFeeFixedPlusVariable(t *testing.T) {
	// amount = 1_000_000_000 (spec §8 scenario 1)
	fee, err := TransferFee(1_000_000_000)
	if err != nil {
		t.Fatalf("TransferFee: %v", err)
	}
	want := FixedFee + 1_000_000_000*5/1000
	if fee != want {
		t.Fatalf("fee = %d, want %d", fee, want)
	}
}

func TestUnstakeFeeVariableOnly(t *testing.T) {
	fee, err := UnstakeFee(1_000_000_000)
	if err != nil {
		t.Fatalf("UnstakeFee: %v", err)
	}
	if fee != 1_000_000_000*5/1000 {
		t.Fatalf("fee = %d, want variable-only component", fee)
	}
}

func TestVariableFeeTruncatesTowardZero(t *testing.T) {
	fee, err := VariableFee(999) // 999*5/1000 = 4.995 -> 4
	if err != nil {
		t.Fatalf("VariableFee: %v", err)
	}
	if fee != 4 {
		t.Fatalf("fee = %d, want 4 (truncated)", fee)
	}
}

func TestVariableFeeOverflowGuard(t *testing.T) {
	if _, err := VariableFee(MaxSafeAmount + 1); err != ErrAmountOverflowsFeeArithmetic {
		t.Fatalf("VariableFee(MaxSafeAmount+1): got %v, want overflow error", err)
	}
	if _, err := VariableFee(MaxSafeAmount); err != nil {
		t.Fatalf("VariableFee(MaxSafeAmount): unexpected error %v", err)
	}
}

func TestSplitNoRoundingLoss(t *testing.T) {
	fee := uint64(2_505_000)
	miner, protocol := Split(fee, 2500) // 25%
	if miner+protocol != fee {
		t.Fatalf("miner+protocol = %d, want %d", miner+protocol, fee)
	}
	wantMiner := fee * 2500 / 10000
	if miner != wantMiner {
		t.Fatalf("miner = %d, want %d", miner, wantMiner)
	}
}

func TestSplitZeroShareGoesEntirelyToProtocol(t *testing.T) {
	miner, protocol := Split(1000, 0)
	if miner != 0 || protocol != 1000 {
		t.Fatalf("miner=%d protocol=%d, want 0,1000", miner, protocol)
	}
}

func TestSplitFullShareGoesEntirelyToMiner(t *testing.T) {
	miner, protocol := Split(1000, 10000)
	if miner != 1000 || protocol != 0 {
		t.Fatalf("miner=%d protocol=%d, want 1000,0", miner, protocol)
	}
}
