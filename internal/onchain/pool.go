package onchain

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// PoolSize is the byte width of a Pool account: just the mint identity.
const PoolSize = types.HashSize

var ErrInvalidAccountSize = errors.New("onchain: account buffer has wrong size")

// Pool holds the mint identity of the shielded pool (spec §3). An all-zero
// mint means the pool holds the ledger's native asset.
type Pool struct {
	buf []byte
}

// NewPool wraps buf as a Pool view. buf must be exactly PoolSize bytes.
func NewPool(buf []byte) (*Pool, error) {
	if len(buf) != PoolSize {
		return nil, ErrInvalidAccountSize
	}
	return &Pool{buf: buf}, nil
}

// InitPool allocates and initializes a fresh Pool buffer.
func InitPool(mint types.Hash) *Pool {
	buf := make([]byte, PoolSize)
	p := &Pool{buf: buf}
	p.SetMint(mint)
	return p
}

func (p *Pool) Mint() types.Hash { return types.HashFromBytes(p.buf[0:32]) }

func (p *Pool) SetMint(mint types.Hash) { copy(p.buf[0:32], mint[:]) }

// IsNative reports whether this pool custodies the ledger's native asset.
func (p *Pool) IsNative() bool { return p.Mint().IsZero() }

// Bytes returns the underlying buffer.
func (p *Pool) Bytes() []byte { return p.buf }
