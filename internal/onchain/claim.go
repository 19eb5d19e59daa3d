package onchain

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// ClaimStatus is the Claim lifecycle state of spec §4.6.
type ClaimStatus uint8

const (
	ClaimMined ClaimStatus = iota
	ClaimRevealed
	ClaimActive
	ClaimConsumed
	ClaimExpired
)

func ClaimStatusFromByte(b byte) ClaimStatus { return ClaimStatus(b) }

var (
	ErrClaimAlreadyConsumed = errors.New("onchain: claim already fully consumed")
	ErrClaimNotRevealed     = errors.New("onchain: claim is not revealed")
	ErrClaimExpired         = errors.New("onchain: claim has expired")
)

// Claim byte offsets (256-byte account, spec §3 / §4.6).
const (
	claimOffMinerAuthority  = 0
	claimOffBatchHash       = 32
	claimOffSlot            = 64
	claimOffSlotHash        = 72
	claimOffNonce           = 104 // u128, 16 bytes
	claimOffProofHash       = 120
	claimOffMinedAtSlot     = 152
	claimOffRevealedAtSlot  = 160
	claimOffConsumedCount   = 168 // u16
	claimOffMaxConsumes     = 170 // u16
	claimOffExpiresAtSlot   = 172
	claimOffStatus          = 180 // u8
	claimOffReserved        = 181
	claimReservedSize       = 75
	// ClaimSize is the full fixed account width: 181 + 75 = 256.
	ClaimSize = claimOffReserved + claimReservedSize
)

// Claim is a single mined PoW solution account, keyed by
// (miner, batch_hash, mined_slot) (spec §3).
type Claim struct {
	buf []byte
}

// NewClaim wraps buf as a Claim view.
func NewClaim(buf []byte) (*Claim, error) {
	if len(buf) != ClaimSize {
		return nil, ErrInvalidAccountSize
	}
	return &Claim{buf: buf}, nil
}

// ClaimInit bundles the parameters recorded by mine_claim.
type ClaimInit struct {
	MinerAuthority types.Hash
	BatchHash      types.Hash
	Slot           uint64
	SlotHash       types.Hash
	NonceLo        uint64
	NonceHi        uint64
	ProofHash      types.Hash
	MinedAtSlot    uint64
	MaxConsumes    uint16
}

// InitClaim allocates and populates a fresh Claim in the Mined state.
func InitClaim(p ClaimInit) *Claim {
	c := &Claim{buf: make([]byte, ClaimSize)}
	copy(c.buf[claimOffMinerAuthority:claimOffMinerAuthority+32], p.MinerAuthority[:])
	copy(c.buf[claimOffBatchHash:claimOffBatchHash+32], p.BatchHash[:])
	common.PutUint64LE(c.buf[claimOffSlot:claimOffSlot+8], p.Slot)
	copy(c.buf[claimOffSlotHash:claimOffSlotHash+32], p.SlotHash[:])
	common.PutUint128LE(c.buf[claimOffNonce:claimOffNonce+16], p.NonceLo, p.NonceHi)
	copy(c.buf[claimOffProofHash:claimOffProofHash+32], p.ProofHash[:])
	common.PutUint64LE(c.buf[claimOffMinedAtSlot:claimOffMinedAtSlot+8], p.MinedAtSlot)
	common.PutUint64LE(c.buf[claimOffRevealedAtSlot:claimOffRevealedAtSlot+8], 0)
	common.PutUint16LE(c.buf[claimOffConsumedCount:claimOffConsumedCount+2], 0)
	common.PutUint16LE(c.buf[claimOffMaxConsumes:claimOffMaxConsumes+2], p.MaxConsumes)
	common.PutUint64LE(c.buf[claimOffExpiresAtSlot:claimOffExpiresAtSlot+8], 0)
	c.buf[claimOffStatus] = byte(ClaimMined)
	// reserved trailer stays zeroed (make already zero-fills)
	return c
}

func (c *Claim) MinerAuthority() types.Hash {
	return types.HashFromBytes(c.buf[claimOffMinerAuthority : claimOffMinerAuthority+32])
}
func (c *Claim) BatchHash() types.Hash {
	return types.HashFromBytes(c.buf[claimOffBatchHash : claimOffBatchHash+32])
}
func (c *Claim) Slot() uint64 { return common.Uint64LE(c.buf[claimOffSlot : claimOffSlot+8]) }
func (c *Claim) SlotHash() types.Hash {
	return types.HashFromBytes(c.buf[claimOffSlotHash : claimOffSlotHash+32])
}
func (c *Claim) Nonce() (lo, hi uint64) {
	return common.Uint128LE(c.buf[claimOffNonce : claimOffNonce+16])
}
func (c *Claim) ProofHash() types.Hash {
	return types.HashFromBytes(c.buf[claimOffProofHash : claimOffProofHash+32])
}
func (c *Claim) MinedAtSlot() uint64 {
	return common.Uint64LE(c.buf[claimOffMinedAtSlot : claimOffMinedAtSlot+8])
}
func (c *Claim) RevealedAtSlot() uint64 {
	return common.Uint64LE(c.buf[claimOffRevealedAtSlot : claimOffRevealedAtSlot+8])
}
func (c *Claim) ConsumedCount() uint16 {
	return common.Uint16LE(c.buf[claimOffConsumedCount : claimOffConsumedCount+2])
}
func (c *Claim) MaxConsumes() uint16 {
	return common.Uint16LE(c.buf[claimOffMaxConsumes : claimOffMaxConsumes+2])
}
func (c *Claim) ExpiresAtSlot() uint64 {
	return common.Uint64LE(c.buf[claimOffExpiresAtSlot : claimOffExpiresAtSlot+8])
}
func (c *Claim) Status() ClaimStatus { return ClaimStatus(c.buf[claimOffStatus]) }

func (c *Claim) setStatus(s ClaimStatus) { c.buf[claimOffStatus] = byte(s) }

// Reveal transitions Mined -> Revealed, setting revealed_at_slot and
// expires_at_slot := revealed_at_slot + claimWindow (spec §4.6).
func (c *Claim) Reveal(currentSlot, claimWindow uint64) {
	common.PutUint64LE(c.buf[claimOffRevealedAtSlot:claimOffRevealedAtSlot+8], currentSlot)
	expires := currentSlot + claimWindow
	if expires < currentSlot {
		expires = ^uint64(0) // saturating add
	}
	common.PutUint64LE(c.buf[claimOffExpiresAtSlot:claimOffExpiresAtSlot+8], expires)
	c.setStatus(ClaimRevealed)
}

// IsExpired reports whether currentSlot has passed expires_at_slot. An
// expires_at_slot of zero (never revealed) is never expired.
func (c *Claim) IsExpired(currentSlot uint64) bool {
	expires := c.ExpiresAtSlot()
	if expires == 0 {
		return false
	}
	return currentSlot > expires
}

// IsRevealed reports whether the claim has passed the reveal step.
func (c *Claim) IsRevealed() bool {
	s := c.Status()
	return s == ClaimRevealed || s == ClaimActive
}

// IsConsumable reports whether one more consume_claim can succeed right now.
func (c *Claim) IsConsumable(currentSlot uint64) bool {
	return c.IsRevealed() && !c.IsExpired(currentSlot) && c.ConsumedCount() < c.MaxConsumes()
}

// IsWildcard reports whether this claim's batch_hash is the all-zero
// wildcard, consumable by any job (spec §4.6).
func (c *Claim) IsWildcard() bool { return c.BatchHash().IsZero() }

// Consume increments consumed_count, transitioning to Consumed once the
// count reaches max_consumes. Fails if already fully consumed.
func (c *Claim) Consume() error {
	consumed := c.ConsumedCount()
	if consumed >= c.MaxConsumes() {
		return ErrClaimAlreadyConsumed
	}
	consumed++
	common.PutUint16LE(c.buf[claimOffConsumedCount:claimOffConsumedCount+2], consumed)
	if consumed == c.MaxConsumes() {
		c.setStatus(ClaimConsumed)
	}
	return nil
}

// MarkExpired transitions a stale, unconsumed claim to the terminal Expired
// state (invoked by a sweeper, not by consume_claim itself).
func (c *Claim) MarkExpired() { c.setStatus(ClaimExpired) }

func (c *Claim) Bytes() []byte { return c.buf }
