package onchain

import (
	"testing"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

func TestScrambleRegistrySizeCanonicalized(t *testing.T) {
	if ScrambleRegistrySize != 188 {
		t.Fatalf("ScrambleRegistrySize = %d, want 188 (canonicalized open question)", ScrambleRegistrySize)
	}
}

func TestClaimSizeIs256(t *testing.T) {
	if ClaimSize != 256 {
		t.Fatalf("ClaimSize = %d, want 256", ClaimSize)
	}
}

func TestRootsRingExpelsOldestAtCapacity(t *testing.T) {
	ring := InitRootsRing()

	first := types.Hash{0xAA}
	ring.PushRoot(first)
	if !ring.ContainsRoot(first) {
		t.Fatal("expected first root present immediately after push")
	}

	for i := 0; i < RootsRingMaxRoots; i++ {
		var r types.Hash
		r[0] = byte(i)
		r[1] = 1
		ring.PushRoot(r)
	}

	if ring.ContainsRoot(first) {
		t.Fatal("expected first root expelled after R newer pushes")
	}
}

func TestCommitmentQueueAppendAndContains(t *testing.T) {
	q := InitCommitmentQueue()

	var c0, c1 types.Hash
	c0[0], c1[0] = 1, 2

	idx0, err := q.Append(c0)
	if err != nil || idx0 != 0 {
		t.Fatalf("Append(c0) = (%d, %v), want (0, nil)", idx0, err)
	}
	idx1, err := q.Append(c1)
	if err != nil || idx1 != 1 {
		t.Fatalf("Append(c1) = (%d, %v), want (1, nil)", idx1, err)
	}

	if !q.Contains(c0) || !q.Contains(c1) {
		t.Fatal("expected both commitments present")
	}
	if q.TotalCommits() != 2 {
		t.Fatalf("TotalCommits = %d, want 2", q.TotalCommits())
	}
}

func TestNullifierShardFullAtCapacity(t *testing.T) {
	s := InitNullifierShard()
	for i := 0; i < NullifierShardMaxNullifiers; i++ {
		var nf types.Hash
		nf[0], nf[1] = byte(i), byte(i >> 8)
		if err := s.AddNullifier(nf); err != nil {
			t.Fatalf("AddNullifier(%d): %v", i, err)
		}
	}
	var overflow types.Hash
	overflow[0] = 0xFF
	if err := s.AddNullifier(overflow); err != ErrNullifierShardFull {
		t.Fatalf("AddNullifier at capacity: got %v, want ErrNullifierShardFull", err)
	}
}

func TestClaimLifecycle(t *testing.T) {
	claim := InitClaim(ClaimInit{
		MinerAuthority: types.Hash{1},
		BatchHash:      types.Hash{}, // wildcard
		Slot:           100,
		SlotHash:       types.Hash{2},
		ProofHash:      types.Hash{3},
		MinedAtSlot:    100,
		MaxConsumes:    2,
	})

	if claim.Status() != ClaimMined {
		t.Fatalf("initial status = %v, want Mined", claim.Status())
	}
	if !claim.IsWildcard() {
		t.Fatal("expected wildcard batch hash")
	}

	claim.Reveal(105, 50)
	if claim.Status() != ClaimRevealed {
		t.Fatalf("status after reveal = %v, want Revealed", claim.Status())
	}
	if claim.ExpiresAtSlot() != 155 {
		t.Fatalf("ExpiresAtSlot = %d, want 155", claim.ExpiresAtSlot())
	}

	if !claim.IsConsumable(110) {
		t.Fatal("expected claim consumable before expiry")
	}
	if err := claim.Consume(); err != nil {
		t.Fatalf("first Consume: %v", err)
	}
	if claim.Status() != ClaimRevealed {
		t.Fatalf("status after 1/2 consumes = %v, want still Revealed", claim.Status())
	}
	if err := claim.Consume(); err != nil {
		t.Fatalf("second Consume: %v", err)
	}
	if claim.Status() != ClaimConsumed {
		t.Fatalf("status after 2/2 consumes = %v, want Consumed", claim.Status())
	}
	if err := claim.Consume(); err != ErrClaimAlreadyConsumed {
		t.Fatalf("third Consume: got %v, want ErrClaimAlreadyConsumed", err)
	}
}

func TestClaimExpiry(t *testing.T) {
	claim := InitClaim(ClaimInit{MinedAtSlot: 1, MaxConsumes: 1})
	claim.Reveal(1, 10)
	if claim.IsExpired(11) {
		t.Fatal("slot == expiry boundary should not be expired")
	}
	if !claim.IsExpired(12) {
		t.Fatal("slot past expiry should be expired")
	}
	if claim.IsConsumable(12) {
		t.Fatal("expired claim should not be consumable")
	}
}
