package onchain

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

const (
	// NullifierShardHeaderSize is the 4-byte count field.
	NullifierShardHeaderSize = 4
	// NullifierShardMaxNullifiers bounds a single shard: grounded on the
	// original source's documented 10KB CPI-realloc cap (319*32 + 4 ≈ 10KB).
	NullifierShardMaxNullifiers = 319
	// NullifierShardSize is the full buffer width for one shard.
	NullifierShardSize = NullifierShardHeaderSize + NullifierShardMaxNullifiers*types.HashSize
)

var ErrNullifierShardFull = errors.New("onchain: nullifier shard is full")

// NullifierShard is an append-only set of spent nullifiers (spec §3), used
// for double-spend detection. The protocol may run several shards,
// partitioned by the high bits of nf; this type models exactly one shard.
type NullifierShard struct {
	buf []byte
}

// NewNullifierShard wraps buf as a NullifierShard view.
func NewNullifierShard(buf []byte) (*NullifierShard, error) {
	if len(buf) != NullifierShardSize {
		return nil, ErrInvalidAccountSize
	}
	return &NullifierShard{buf: buf}, nil
}

// InitNullifierShard allocates a fresh, empty shard.
func InitNullifierShard() *NullifierShard {
	return &NullifierShard{buf: make([]byte, NullifierShardSize)}
}

func (s *NullifierShard) Count() uint32 { return common.Uint32LE(s.buf[0:4]) }

func (s *NullifierShard) setCount(v uint32) { common.PutUint32LE(s.buf[0:4], v) }

func (s *NullifierShard) entryOffset(i uint32) int {
	return NullifierShardHeaderSize + int(i)*types.HashSize
}

// ContainsNullifier scans the shard's entries for nf.
func (s *NullifierShard) ContainsNullifier(nf types.Hash) bool {
	count := s.Count()
	for i := uint32(0); i < count; i++ {
		off := s.entryOffset(i)
		if types.HashFromBytes(s.buf[off:off+types.HashSize]) == nf {
			return true
		}
	}
	return false
}

// AddNullifier appends nf, failing with ErrNullifierShardFull once capacity
// is reached (spec §8 boundary behavior).
func (s *NullifierShard) AddNullifier(nf types.Hash) error {
	count := s.Count()
	if count >= NullifierShardMaxNullifiers {
		return ErrNullifierShardFull
	}
	off := s.entryOffset(count)
	copy(s.buf[off:off+types.HashSize], nf[:])
	s.setCount(count + 1)
	return nil
}

// ShardIndex picks a shard by the high byte of nf, for implementations that
// run multiple NullifierShard accounts.
func ShardIndex(nf types.Hash, numShards uint32) uint32 {
	if numShards == 0 {
		return 0
	}
	return uint32(nf[0]) % numShards
}

func (s *NullifierShard) Bytes() []byte { return s.buf }
