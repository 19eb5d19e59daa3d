package circuits

import (
	"bytes"
	"errors"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// PublicInputsSize is the fixed 104-byte blob of spec §4.4:
// root(32) ‖ nf(32) ‖ outputs_hash(32) ‖ amount_le64(8).
const PublicInputsSize = 32 + 32 + 32 + 8

// ProofBundleSize is the canonical fixed-width Groth16(BN254) proof
// encoding: an uncompressed Ar(G1, 64 bytes) ‖ Bs(G2, 128 bytes) ‖
// Krs(G1, 64 bytes), the exact layout proof.WriteTo emits. Raw bytes only
// over the wire, no base64/hex framing at this layer.
const ProofBundleSize = 256

var (
	ErrPublicInputsSize = errors.New("circuits: public inputs blob must be exactly 104 bytes")
	ErrProofBundleSize  = errors.New("circuits: proof bundle must be exactly 256 bytes")
)

// PublicInputs is the decoded form of the 104-byte blob.
type PublicInputs struct {
	Root        types.Hash
	Nullifier   types.Hash
	OutputsHash types.Hash
	Amount      uint64
}

// EncodePublicInputs serializes p in the fixed field order
// root‖nf‖outputs_hash‖amount_le64.
func EncodePublicInputs(p PublicInputs) []byte {
	buf := make([]byte, PublicInputsSize)
	off := 0
	off += copy(buf[off:], p.Root[:])
	off += copy(buf[off:], p.Nullifier[:])
	off += copy(buf[off:], p.OutputsHash[:])
	common.PutUint64LE(buf[off:off+8], p.Amount)
	return buf
}

// DecodePublicInputs parses a 104-byte blob, failing on any other length.
func DecodePublicInputs(blob []byte) (PublicInputs, error) {
	if len(blob) != PublicInputsSize {
		return PublicInputs{}, ErrPublicInputsSize
	}
	var p PublicInputs
	off := 0
	p.Root = types.HashFromBytes(blob[off : off+32])
	off += 32
	p.Nullifier = types.HashFromBytes(blob[off : off+32])
	off += 32
	p.OutputsHash = types.HashFromBytes(blob[off : off+32])
	off += 32
	p.Amount = common.Uint64LE(blob[off : off+8])
	return p, nil
}

// EncodeProofBundle serializes a Groth16 proof to the canonical 256-byte
// wire format. The relay's /withdraw JSON body carries these bytes as a
// base64 string (encoding/json's form for []byte); hex is not accepted there.
func EncodeProofBundle(proof groth16.Proof) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) != ProofBundleSize {
		return nil, ErrProofBundleSize
	}
	return out, nil
}

// DecodeProofBundle parses a 256-byte bundle back into a Groth16 proof.
func DecodeProofBundle(bundle []byte) (groth16.Proof, error) {
	if len(bundle) != ProofBundleSize {
		return nil, ErrProofBundleSize
	}
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(bundle)); err != nil && err != io.EOF {
		return nil, err
	}
	return proof, nil
}
