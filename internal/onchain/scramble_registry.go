package onchain

import (
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// ScrambleRegistrySize is canonicalized to 188 bytes — the sum of every
// documented field width (admin 32 + current_difficulty 32 +
// last_retarget_slot 8 + solutions_observed 8 + target_interval_slots 8 +
// fee_share_bps 2 + reveal_window 8 + claim_window 8 + max_k 2 +
// min_difficulty 32 + max_difficulty 32 + total_claims 8 + active_claims 8).
// The original Rust state struct's "180 bytes" doc comment undercounts by
// exactly the width of the trailing active_claims field, and every accessor
// there reads past byte 180, so 188 is the value actually exercised.
const ScrambleRegistrySize = 32 + 32 + 8 + 8 + 8 + 2 + 8 + 8 + 2 + 32 + 32 + 8 + 8

const (
	offAdmin                = 0
	offCurrentDifficulty    = 32
	offLastRetargetSlot     = 64
	offSolutionsObserved    = 72
	offTargetIntervalSlots  = 80
	offFeeShareBps          = 88
	offRevealWindow         = 90
	offClaimWindow          = 98
	offMaxK                 = 106
	offMinDifficulty        = 108
	offMaxDifficulty        = 140
	offTotalClaims          = 172
	offActiveClaims         = 180
)

// ScrambleRegistry is the singleton PoW policy and counters account of
// spec §3.
type ScrambleRegistry struct {
	buf []byte
}

// NewScrambleRegistry wraps buf as a ScrambleRegistry view.
func NewScrambleRegistry(buf []byte) (*ScrambleRegistry, error) {
	if len(buf) != ScrambleRegistrySize {
		return nil, ErrInvalidAccountSize
	}
	return &ScrambleRegistry{buf: buf}, nil
}

// RegistryConfig bundles the parameters set at initialization.
type RegistryConfig struct {
	Admin                types.Hash
	InitialDifficulty    types.Hash
	TargetIntervalSlots  uint64
	FeeShareBps          uint16
	RevealWindow         uint64
	ClaimWindow          uint64
	MaxK                 uint16
	MinDifficulty        types.Hash
	MaxDifficulty        types.Hash
}

// InitScrambleRegistry allocates and populates a fresh registry.
func InitScrambleRegistry(cfg RegistryConfig) *ScrambleRegistry {
	r := &ScrambleRegistry{buf: make([]byte, ScrambleRegistrySize)}
	copy(r.buf[offAdmin:offAdmin+32], cfg.Admin[:])
	copy(r.buf[offCurrentDifficulty:offCurrentDifficulty+32], cfg.InitialDifficulty[:])
	common.PutUint64LE(r.buf[offLastRetargetSlot:offLastRetargetSlot+8], 0)
	common.PutUint64LE(r.buf[offSolutionsObserved:offSolutionsObserved+8], 0)
	common.PutUint64LE(r.buf[offTargetIntervalSlots:offTargetIntervalSlots+8], cfg.TargetIntervalSlots)
	common.PutUint16LE(r.buf[offFeeShareBps:offFeeShareBps+2], cfg.FeeShareBps)
	common.PutUint64LE(r.buf[offRevealWindow:offRevealWindow+8], cfg.RevealWindow)
	common.PutUint64LE(r.buf[offClaimWindow:offClaimWindow+8], cfg.ClaimWindow)
	common.PutUint16LE(r.buf[offMaxK:offMaxK+2], cfg.MaxK)
	copy(r.buf[offMinDifficulty:offMinDifficulty+32], cfg.MinDifficulty[:])
	copy(r.buf[offMaxDifficulty:offMaxDifficulty+32], cfg.MaxDifficulty[:])
	common.PutUint64LE(r.buf[offTotalClaims:offTotalClaims+8], 0)
	common.PutUint64LE(r.buf[offActiveClaims:offActiveClaims+8], 0)
	return r
}

func (r *ScrambleRegistry) Admin() types.Hash {
	return types.HashFromBytes(r.buf[offAdmin : offAdmin+32])
}
func (r *ScrambleRegistry) CurrentDifficulty() types.Hash {
	return types.HashFromBytes(r.buf[offCurrentDifficulty : offCurrentDifficulty+32])
}
func (r *ScrambleRegistry) SetCurrentDifficulty(d types.Hash) {
	copy(r.buf[offCurrentDifficulty:offCurrentDifficulty+32], d[:])
}
func (r *ScrambleRegistry) LastRetargetSlot() uint64 {
	return common.Uint64LE(r.buf[offLastRetargetSlot : offLastRetargetSlot+8])
}
func (r *ScrambleRegistry) SetLastRetargetSlot(v uint64) {
	common.PutUint64LE(r.buf[offLastRetargetSlot:offLastRetargetSlot+8], v)
}
func (r *ScrambleRegistry) SolutionsObserved() uint64 {
	return common.Uint64LE(r.buf[offSolutionsObserved : offSolutionsObserved+8])
}
func (r *ScrambleRegistry) TargetIntervalSlots() uint64 {
	return common.Uint64LE(r.buf[offTargetIntervalSlots : offTargetIntervalSlots+8])
}
func (r *ScrambleRegistry) FeeShareBps() uint16 {
	return common.Uint16LE(r.buf[offFeeShareBps : offFeeShareBps+2])
}
func (r *ScrambleRegistry) RevealWindow() uint64 {
	return common.Uint64LE(r.buf[offRevealWindow : offRevealWindow+8])
}
func (r *ScrambleRegistry) ClaimWindow() uint64 {
	return common.Uint64LE(r.buf[offClaimWindow : offClaimWindow+8])
}
func (r *ScrambleRegistry) MaxK() uint16 {
	return common.Uint16LE(r.buf[offMaxK : offMaxK+2])
}
func (r *ScrambleRegistry) MinDifficulty() types.Hash {
	return types.HashFromBytes(r.buf[offMinDifficulty : offMinDifficulty+32])
}
func (r *ScrambleRegistry) MaxDifficulty() types.Hash {
	return types.HashFromBytes(r.buf[offMaxDifficulty : offMaxDifficulty+32])
}
func (r *ScrambleRegistry) TotalClaims() uint64 {
	return common.Uint64LE(r.buf[offTotalClaims : offTotalClaims+8])
}
func (r *ScrambleRegistry) ActiveClaims() uint64 {
	return common.Uint64LE(r.buf[offActiveClaims : offActiveClaims+8])
}

// RecordSolution increments solutions_observed and total_claims after a
// successful mine_claim.
func (r *ScrambleRegistry) RecordSolution() {
	common.PutUint64LE(r.buf[offSolutionsObserved:offSolutionsObserved+8], r.SolutionsObserved()+1)
	common.PutUint64LE(r.buf[offTotalClaims:offTotalClaims+8], r.TotalClaims()+1)
}

// IncrementActive/DecrementActive track the active-claim backlog as claims
// are revealed (entered) and consumed or expired (exited).
func (r *ScrambleRegistry) IncrementActive() {
	common.PutUint64LE(r.buf[offActiveClaims:offActiveClaims+8], r.ActiveClaims()+1)
}

func (r *ScrambleRegistry) DecrementActive() {
	if active := r.ActiveClaims(); active > 0 {
		common.PutUint64LE(r.buf[offActiveClaims:offActiveClaims+8], active-1)
	}
}

func (r *ScrambleRegistry) Bytes() []byte { return r.buf }
