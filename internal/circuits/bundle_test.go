package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// tinyCircuit is a minimal throwaway R1CS (unrelated to WithdrawalCircuit)
// used only to exercise a real Groth16(BN254) Setup/Prove/proof.WriteTo
// pipeline, so TestProofBundleRoundTrip checks EncodeProofBundle/
// DecodeProofBundle against an actual proof's serialized byte length
// instead of an assumed constant.
type tinyCircuit struct {
	X, Y frontend.Variable
	Z    frontend.Variable `gnark:",public"`
}

func (c *tinyCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Z, api.Mul(c.X, c.Y))
	return nil
}

func TestPublicInputsRoundTrip(t *testing.T) {
	p := PublicInputs{
		Root:        types.Hash{0x11},
		Nullifier:   types.Hash{0x22},
		OutputsHash: types.Hash{0x33},
		Amount:      992_500_000,
	}
	blob := EncodePublicInputs(p)
	if len(blob) != PublicInputsSize || len(blob) != 104 {
		t.Fatalf("blob len = %d, want 104", len(blob))
	}

	got, err := DecodePublicInputs(blob)
	if err != nil {
		t.Fatalf("DecodePublicInputs: %v", err)
	}
	if got != p {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestDecodePublicInputsRejectsWrongSize(t *testing.T) {
	if _, err := DecodePublicInputs(make([]byte, 103)); err != ErrPublicInputsSize {
		t.Fatalf("got %v, want ErrPublicInputsSize", err)
	}
	if _, err := DecodePublicInputs(make([]byte, 105)); err != ErrPublicInputsSize {
		t.Fatalf("got %v, want ErrPublicInputsSize", err)
	}
}

func TestDecodeProofBundleRejectsWrongSize(t *testing.T) {
	if _, err := DecodeProofBundle(make([]byte, 255)); err != ErrProofBundleSize {
		t.Fatalf("got %v, want ErrProofBundleSize", err)
	}
}

func TestProofBundleRoundTrip(t *testing.T) {
	var circuit tinyCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	assignment := tinyCircuit{X: 3, Y: 4, Z: 12}
	w, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("witness: %v", err)
	}
	proof, err := groth16.Prove(cs, pk, w)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	bundle, err := EncodeProofBundle(proof)
	if err != nil {
		t.Fatalf("EncodeProofBundle: %v", err)
	}
	if len(bundle) != ProofBundleSize {
		t.Fatalf("bundle len = %d, want %d", len(bundle), ProofBundleSize)
	}

	decoded, err := DecodeProofBundle(bundle)
	if err != nil {
		t.Fatalf("DecodeProofBundle: %v", err)
	}

	publicWitness, err := w.Public()
	if err != nil {
		t.Fatalf("public witness: %v", err)
	}
	if err := groth16.Verify(decoded, vk, publicWitness); err != nil {
		t.Fatalf("verify decoded proof: %v", err)
	}
}

func TestModeValuesAreDistinct(t *testing.T) {
	modes := []Mode{ModeTransfer, ModeSwap, ModeStake, ModeUnstake}
	seen := map[Mode]bool{}
	for _, m := range modes {
		if seen[m] {
			t.Fatalf("duplicate mode value %d", m)
		}
		seen[m] = true
	}
}
