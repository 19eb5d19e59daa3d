package pouw

import (
	"context"
	"testing"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

func TestPreimageSize(t *testing.T) {
	e := Engine{DifficultyTarget: fill(0xFF), Slot: 12345, SlotHash: fill(0x42), MinerPubkey: fill(0x00), BatchHash: fill(0x88)}
	p := e.BuildPreimage(0, 0)
	if len(p) != PreimageSize || len(p) != 137 {
		t.Fatalf("preimage len = %d, want 137", len(p))
	}
}

// TestPreimageLayout reproduces engine.rs::test_preimage_layout byte for
// byte, including its little-endian slot and split u128 nonce.
func TestPreimageLayout(t *testing.T) {
	slot := uint64(0x0102030405060708)
	slotHash := fill(0xAA)
	miner := fill(0xBB)
	batchHash := fill(0xCC)
	// nonce = 0x0f0e0d0c0b0a0908_0706050403020100 (u128)
	nonceLo := uint64(0x0706050403020100)
	nonceHi := uint64(0x0f0e0d0c0b0a0908)

	e := Engine{DifficultyTarget: fill(0xFF), Slot: slot, SlotHash: slotHash, MinerPubkey: miner, BatchHash: batchHash}
	p := e.BuildPreimage(nonceLo, nonceHi)

	if string(p[0:17]) != "CLOAK:SCRAMBLE:v1" {
		t.Fatalf("domain = %q", p[0:17])
	}
	wantSlot := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytesEqual(p[17:25], wantSlot) {
		t.Fatalf("slot bytes = %x, want %x", p[17:25], wantSlot)
	}
	if !bytesEqual(p[25:57], slotHash[:]) {
		t.Fatal("slot_hash mismatch")
	}
	if !bytesEqual(p[57:89], miner[:]) {
		t.Fatal("miner_pubkey mismatch")
	}
	if !bytesEqual(p[89:121], batchHash[:]) {
		t.Fatal("batch_hash mismatch")
	}
	wantNonce := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
	if !bytesEqual(p[121:137], wantNonce) {
		t.Fatalf("nonce bytes = %x, want %x", p[121:137], wantNonce)
	}
}

func TestU256Lt(t *testing.T) {
	a := types.Hash{0x01}
	b := types.Hash{0x02}
	if !u256Lt(a, b) {
		t.Fatal("expected a < b")
	}
	if u256Lt(b, a) {
		t.Fatal("expected !(b < a)")
	}

	c := fill(0xFF)
	c[31] = 0x00
	d := fill(0x00)
	d[31] = 0x01

	if !u256Lt(c, d) {
		t.Fatal("expected c < d (most significant byte dominates)")
	}
	if u256Lt(d, c) {
		t.Fatal("expected !(d < c)")
	}
}

func TestMineEasyDifficulty(t *testing.T) {
	e := Engine{DifficultyTarget: fill(0xFF), Slot: 100, SlotHash: fill(0x42), MinerPubkey: fill(0x00), BatchHash: fill(0x88)}
	sol, err := Mine(context.Background(), e, 0)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if sol.NonceLo != 0 {
		t.Fatalf("NonceLo = %d, want 0 (first nonce should succeed at 0xFF difficulty)", sol.NonceLo)
	}
	if sol.ProofHash != e.HashPreimage(0, 0) {
		t.Fatal("ProofHash does not match HashPreimage(0,0)")
	}
}

func TestMineModerateDifficulty(t *testing.T) {
	difficulty := fill(0xFF)
	difficulty[31] = 0x01 // most significant byte (LE index 31) must be < 0x01

	e := Engine{DifficultyTarget: difficulty, Slot: 200, SlotHash: fill(0x33), MinerPubkey: fill(0x00), BatchHash: fill(0x77)}
	sol, err := Mine(context.Background(), e, 0)
	if err != nil {
		t.Fatalf("Mine: %v", err)
	}
	if !u256Lt(sol.ProofHash, difficulty) {
		t.Fatal("solution proof_hash does not satisfy difficulty")
	}
}

func TestDeterministicHash(t *testing.T) {
	e := Engine{DifficultyTarget: fill(0xFF), Slot: 300, SlotHash: fill(0x11), MinerPubkey: fill(0x00), BatchHash: fill(0x22)}
	if e.HashPreimage(42, 0) != e.HashPreimage(42, 0) {
		t.Fatal("HashPreimage not deterministic")
	}
}

func TestHashChangesWithNonce(t *testing.T) {
	e := Engine{DifficultyTarget: fill(0xFF), Slot: 400, SlotHash: fill(0x55), MinerPubkey: fill(0x00), BatchHash: fill(0x66)}
	if e.HashPreimage(0, 0) == e.HashPreimage(1, 0) {
		t.Fatal("expected hash to change with nonce")
	}
}

func fill(b byte) types.Hash {
	var h types.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
