package onchain

import (
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// MinerSize is authority(32) + total_mined(8) + total_consumed(8) +
// registered_at_slot(8) = 56.
const MinerSize = 32 + 8 + 8 + 8

// Miner is the per-authority registration and counters account of spec §3,
// addressed by SeedMiner‖authority.
type Miner struct {
	buf []byte
}

// NewMiner wraps buf as a Miner view.
func NewMiner(buf []byte) (*Miner, error) {
	if len(buf) != MinerSize {
		return nil, ErrInvalidAccountSize
	}
	return &Miner{buf: buf}, nil
}

// InitMiner allocates and registers a fresh Miner account.
func InitMiner(authority types.Hash, registeredAtSlot uint64) *Miner {
	m := &Miner{buf: make([]byte, MinerSize)}
	copy(m.buf[0:32], authority[:])
	common.PutUint64LE(m.buf[48:56], registeredAtSlot)
	return m
}

func (m *Miner) Authority() types.Hash { return types.HashFromBytes(m.buf[0:32]) }
func (m *Miner) TotalMined() uint64    { return common.Uint64LE(m.buf[32:40]) }
func (m *Miner) TotalConsumed() uint64 { return common.Uint64LE(m.buf[40:48]) }
func (m *Miner) RegisteredAtSlot() uint64 {
	return common.Uint64LE(m.buf[48:56])
}

// RecordMine increments total_mined on a successful mine_claim.
func (m *Miner) RecordMine() {
	common.PutUint64LE(m.buf[32:40], m.TotalMined()+1)
}

// RecordConsume increments total_consumed on a successful consume_claim.
func (m *Miner) RecordConsume() {
	common.PutUint64LE(m.buf[40:48], m.TotalConsumed()+1)
}

func (m *Miner) Bytes() []byte { return m.buf }
