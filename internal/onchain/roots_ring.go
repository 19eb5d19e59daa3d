package onchain

import (
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

const (
	// RootsRingMaxRoots is the reference ring depth R from spec §3.
	RootsRingMaxRoots = 64
	// RootsRingSize is head (1 byte) + 7 bytes padding + R roots.
	RootsRingSize = 8 + RootsRingMaxRoots*types.HashSize
)

// RootsRing is the FIFO ring of the last R Merkle roots pushed by the
// indexer (spec §3). contains(root) drives every withdrawal's RootNotFound
// check.
type RootsRing struct {
	buf []byte
}

// NewRootsRing wraps buf as a RootsRing view.
func NewRootsRing(buf []byte) (*RootsRing, error) {
	if len(buf) != RootsRingSize {
		return nil, ErrInvalidAccountSize
	}
	return &RootsRing{buf: buf}, nil
}

// InitRootsRing allocates a fresh ring.
func InitRootsRing() *RootsRing {
	return &RootsRing{buf: make([]byte, RootsRingSize)}
}

func (r *RootsRing) Head() byte { return r.buf[0] }

func (r *RootsRing) rootOffset(slot byte) int {
	return 8 + int(slot)*types.HashSize
}

func (r *RootsRing) rootAt(slot byte) types.Hash {
	off := r.rootOffset(slot)
	return types.HashFromBytes(r.buf[off : off+types.HashSize])
}

// PushRoot advances the ring head and writes root into the new head slot.
// Idempotent pushes of the same root are permitted but still rotate head
// (spec §4.5).
func (r *RootsRing) PushRoot(root types.Hash) {
	newHead := (r.Head() + 1) % RootsRingMaxRoots
	r.buf[0] = newHead
	off := r.rootOffset(newHead)
	copy(r.buf[off:off+types.HashSize], root[:])
}

// ContainsRoot reports whether target equals any of the ring's R root
// slots. Slots that were never written hold the zero hash, so the zero hash
// matches until every slot has been pushed once.
func (r *RootsRing) ContainsRoot(target types.Hash) bool {
	for slot := byte(0); slot < RootsRingMaxRoots; slot++ {
		if r.rootAt(slot) == target {
			return true
		}
	}
	return false
}

func (r *RootsRing) Bytes() []byte { return r.buf }
