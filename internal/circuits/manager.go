package circuits

import (
	"errors"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Manager compiles the withdrawal circuit once and holds its proving and
// verifying keys. Grounded on internal/zkp/circuits.go's CircuitManager,
// trimmed to a single circuit: this protocol has one R1CS with a Mode
// selector instead of one circuit per disclosure kind.
type Manager struct {
	mu sync.RWMutex

	compiled frontend.CompiledConstraintSystem
	pk       groth16.ProvingKey
	vk       groth16.VerifyingKey
}

var (
	ErrCircuitNotCompiled      = errors.New("circuits: withdrawal circuit not compiled")
	ErrProofGenerationFailed   = errors.New("circuits: proof generation failed")
	ErrProofVerificationFailed = errors.New("circuits: proof verification failed")
)

// NewManager compiles WithdrawalCircuit and runs the Groth16 setup. In
// production this key pair is generated once during a trusted ceremony and
// loaded from disk; Setup here stands in for that load for a self-contained
// module.
func NewManager() (*Manager, error) {
	var circuit WithdrawalCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, err
	}
	return &Manager{compiled: cs, pk: pk, vk: vk}, nil
}

// Prove generates a Groth16 proof for a fully populated witness circuit.
func (m *Manager) Prove(witness *WithdrawalCircuit) (groth16.Proof, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.compiled == nil {
		return nil, ErrCircuitNotCompiled
	}
	w, err := frontend.NewWitness(witness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(m.compiled, m.pk, w)
	if err != nil {
		return nil, ErrProofGenerationFailed
	}
	return proof, nil
}

// Verify checks proof against the given public witness (Mode + public blob
// fields populated, private fields zero).
func (m *Manager) Verify(proof groth16.Proof, publicWitness *WithdrawalCircuit) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.vk == nil {
		return ErrCircuitNotCompiled
	}
	w, err := frontend.NewWitness(publicWitness, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}
	if err := groth16.Verify(proof, m.vk, w); err != nil {
		return ErrProofVerificationFailed
	}
	return nil
}
