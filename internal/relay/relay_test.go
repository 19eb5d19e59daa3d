package relay

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Machine-Labz/cloak-sub000/internal/circuits"
	"github.com/Machine-Labz/cloak-sub000/internal/instructions"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

func fillHash(b byte) types.Hash {
	var h types.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestValidateWithdrawRequestAcceptsConservedTransfer(t *testing.T) {
	outputs := []instructions.Output{{Recipient: fillHash(0x01), Amount: 992_500_000}}
	amount := uint64(1_000_000_000)
	pub := circuits.PublicInputs{
		Root:        fillHash(0xAA),
		Nullifier:   fillHash(0xBB),
		OutputsHash: instructions.OutputsHash(outputs),
		Amount:      amount,
	}
	blob := circuits.EncodePublicInputs(pub)

	req := WithdrawRequestPayload{Outputs: outputs, PublicInputsBlob: blob}
	got, err := ValidateWithdrawRequest(req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Nullifier != pub.Nullifier {
		t.Fatalf("nullifier mismatch")
	}
}

func TestValidateWithdrawRequestRejectsConservationMismatch(t *testing.T) {
	outputs := []instructions.Output{{Recipient: fillHash(0x01), Amount: 994_000_000}}
	pub := circuits.PublicInputs{
		OutputsHash: instructions.OutputsHash(outputs),
		Amount:      1_000_000_000,
	}
	blob := circuits.EncodePublicInputs(pub)

	_, err := ValidateWithdrawRequest(WithdrawRequestPayload{Outputs: outputs, PublicInputsBlob: blob}, nil)
	if err != ErrAmountConservation {
		t.Fatalf("expected ErrAmountConservation, got %v", err)
	}
}

func TestValidateWithdrawRequestRejectsOutputsHashMismatch(t *testing.T) {
	outputs := []instructions.Output{{Recipient: fillHash(0x01), Amount: 992_500_000}}
	pub := circuits.PublicInputs{
		OutputsHash: fillHash(0xFF), // wrong on purpose
		Amount:      1_000_000_000,
	}
	blob := circuits.EncodePublicInputs(pub)

	_, err := ValidateWithdrawRequest(WithdrawRequestPayload{Outputs: outputs, PublicInputsBlob: blob}, nil)
	if err != ErrOutputsHashMismatch {
		t.Fatalf("expected ErrOutputsHashMismatch, got %v", err)
	}
}

type fakeSpentCache struct{ spent types.Hash }

func (c fakeSpentCache) Contains(nf types.Hash) bool { return nf == c.spent }

func TestValidateWithdrawRequestRejectsLocallyKnownDoubleSpend(t *testing.T) {
	outputs := []instructions.Output{{Recipient: fillHash(0x01), Amount: 992_500_000}}
	nf := fillHash(0xCC)
	pub := circuits.PublicInputs{
		Nullifier:   nf,
		OutputsHash: instructions.OutputsHash(outputs),
		Amount:      1_000_000_000,
	}
	blob := circuits.EncodePublicInputs(pub)

	_, err := ValidateWithdrawRequest(WithdrawRequestPayload{Outputs: outputs, PublicInputsBlob: blob}, fakeSpentCache{spent: nf})
	if err != ErrAlreadySpent {
		t.Fatalf("expected ErrAlreadySpent, got %v", err)
	}
}

type fakeClaimSource struct{ claims []*onchain.Claim }

func (f fakeClaimSource) ListClaims(ctx context.Context) ([]*onchain.Claim, error) {
	return f.claims, nil
}

func revealedClaim(t *testing.T, batchHash types.Hash, maxConsumes uint16) *onchain.Claim {
	t.Helper()
	c := onchain.InitClaim(onchain.ClaimInit{
		MinerAuthority: fillHash(0x01),
		BatchHash:      batchHash,
		MinedAtSlot:    1,
		MaxConsumes:    maxConsumes,
	})
	c.Reveal(2, 1000)
	return c
}

func TestClaimFinderPrefersExactBatchMatchOverWildcard(t *testing.T) {
	target := BatchHashForJob("job-1")
	exact := revealedClaim(t, target, 1)
	wildcard := revealedClaim(t, types.EmptyHash, 1)

	finder := NewClaimFinder(fakeClaimSource{claims: []*onchain.Claim{wildcard, exact}}, 1000)
	got, err := finder.Find(context.Background(), target, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != exact {
		t.Fatalf("expected exact-match claim, got a different claim")
	}
}

func TestClaimFinderFallsBackToWildcard(t *testing.T) {
	target := BatchHashForJob("job-2")
	wildcard := revealedClaim(t, types.EmptyHash, 1)

	finder := NewClaimFinder(fakeClaimSource{claims: []*onchain.Claim{wildcard}}, 1000)
	got, err := finder.Find(context.Background(), target, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wildcard {
		t.Fatalf("expected wildcard claim fallback")
	}
}

func TestClaimFinderRejectsExpiredClaims(t *testing.T) {
	target := BatchHashForJob("job-3")
	claim := revealedClaim(t, target, 1)

	finder := NewClaimFinder(fakeClaimSource{claims: []*onchain.Claim{claim}}, 1000)
	_, err := finder.Find(context.Background(), target, claim.ExpiresAtSlot()+1)
	if err != ErrNoClaimAvailable {
		t.Fatalf("expected ErrNoClaimAvailable for expired claim, got %v", err)
	}
}

func TestRetryDelayCapsAtMax(t *testing.T) {
	base := time.Second
	max := 10 * time.Second
	if got := RetryDelay(10, base, max); got != max {
		t.Fatalf("expected delay capped at %v, got %v", max, got)
	}
	if got := RetryDelay(0, base, max); got != base {
		t.Fatalf("expected first retry to equal base delay, got %v", got)
	}
}

func TestStatusStoreLifecycle(t *testing.T) {
	store := NewStatusStore()
	id := uuid.New()
	store.Put(id, StatusQueued, fillHash(0x01))

	if store.Backlog() != 1 {
		t.Fatalf("expected backlog 1, got %d", store.Backlog())
	}

	store.Transition(id, StatusProcessing)
	record, ok := store.Get(id)
	if !ok || record.Status != StatusProcessing {
		t.Fatalf("expected processing status, got %+v", record)
	}

	store.Complete(id, "tx-abc")
	record, _ = store.Get(id)
	if record.Status != StatusCompleted || record.TxID != "tx-abc" {
		t.Fatalf("expected completed with tx id, got %+v", record)
	}
	if store.Backlog() != 0 {
		t.Fatalf("expected backlog 0 after completion, got %d", store.Backlog())
	}
}
