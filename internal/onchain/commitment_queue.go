package onchain

import (
	"errors"
	"math"

	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

const (
	// CommitmentQueueHeaderSize is total_commits (u64) + reserved (u64).
	CommitmentQueueHeaderSize = 16
	// CommitmentQueueCapacity is the reference ring size Q from spec §3.
	CommitmentQueueCapacity = 256
	// CommitmentQueueSize is the full account buffer width.
	CommitmentQueueSize = CommitmentQueueHeaderSize + CommitmentQueueCapacity*types.HashSize
)

var ErrCommitmentLogFull = errors.New("onchain: commitment log is full")

// CommitmentQueue is the FIFO ring of the last Q commitments, with a
// monotonically increasing total-ever-committed counter (spec §3).
type CommitmentQueue struct {
	buf []byte
}

// NewCommitmentQueue wraps buf as a CommitmentQueue view.
func NewCommitmentQueue(buf []byte) (*CommitmentQueue, error) {
	if len(buf) != CommitmentQueueSize {
		return nil, ErrInvalidAccountSize
	}
	return &CommitmentQueue{buf: buf}, nil
}

// InitCommitmentQueue allocates a fresh, empty queue buffer.
func InitCommitmentQueue() *CommitmentQueue {
	return &CommitmentQueue{buf: make([]byte, CommitmentQueueSize)}
}

func (q *CommitmentQueue) TotalCommits() uint64 { return common.Uint64LE(q.buf[0:8]) }

func (q *CommitmentQueue) setTotalCommits(v uint64) { common.PutUint64LE(q.buf[0:8], v) }

func (q *CommitmentQueue) slotOffset(slot uint64) int {
	return CommitmentQueueHeaderSize + int(slot)*types.HashSize
}

func (q *CommitmentQueue) readCommitment(slot uint64) types.Hash {
	off := q.slotOffset(slot)
	return types.HashFromBytes(q.buf[off : off+types.HashSize])
}

func (q *CommitmentQueue) writeCommitment(slot uint64, c types.Hash) {
	off := q.slotOffset(slot)
	copy(q.buf[off:off+types.HashSize], c[:])
}

// Contains reports whether c is present in the live window of the queue
// (the most recent min(total, Capacity) entries).
func (q *CommitmentQueue) Contains(c types.Hash) bool {
	total := q.TotalCommits()
	count := common.Min(total, CommitmentQueueCapacity)
	start := total - count
	for i := uint64(0); i < count; i++ {
		slot := (start + i) % CommitmentQueueCapacity
		if q.readCommitment(slot) == c {
			return true
		}
	}
	return false
}

// Append adds commitment to the ring, returning the leaf index it was
// assigned (the pre-increment total_commits value). Fails with
// ErrCommitmentLogFull once the counter is saturated (spec §8 boundary
// behavior).
func (q *CommitmentQueue) Append(c types.Hash) (uint64, error) {
	total := q.TotalCommits()
	if total == math.MaxUint64 {
		return 0, ErrCommitmentLogFull
	}
	slot := total % CommitmentQueueCapacity
	q.writeCommitment(slot, c)
	q.setTotalCommits(total + 1)
	return total, nil
}

func (q *CommitmentQueue) Bytes() []byte { return q.buf }
