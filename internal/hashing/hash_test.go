package hashing

import (
	"testing"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

func TestHIsDeterministic(t *testing.T) {
	a := H([]byte("left"), []byte("right"))
	b := H([]byte("left"), []byte("right"))
	if a != b {
		t.Fatalf("H is not deterministic: %x vs %x", a, b)
	}
}

func TestHHasNoSeparator(t *testing.T) {
	// H(["ab", "c"]) must equal H(["a", "bc"]) since arguments are
	// concatenated with no separator or length prefix.
	a := H([]byte("ab"), []byte("c"))
	b := H([]byte("a"), []byte("bc"))
	if a != b {
		t.Fatalf("expected no-separator concatenation, got %x vs %x", a, b)
	}
}

func TestHDistinguishesDifferentInputs(t *testing.T) {
	a := H([]byte("foo"))
	b := H([]byte("bar"))
	if a == b {
		t.Fatalf("expected different digests for different inputs")
	}
}

func TestHashPairMatchesH(t *testing.T) {
	left := types.Hash{0x01}
	right := types.Hash{0x02}
	if HashPair(left, right) != H(left[:], right[:]) {
		t.Fatalf("HashPair must equal H(left, right)")
	}
	if HashPair(left, right) == HashPair(right, left) {
		t.Fatalf("HashPair should not be commutative")
	}
}
