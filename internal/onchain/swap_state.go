package onchain

import (
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// SwapStateSize is the byte width of a SwapState account (spec §3):
// nf(32) + sol_amount(8) + output_mint(32) + recipient_ata(32) +
// min_output_amount(8) + created_slot(8) + timeout_slot(8) + bump(1) = 129.
const SwapStateSize = 32 + 8 + 32 + 32 + 8 + 8 + 8 + 1

// SwapState is the pending-swap escrow PDA, addressed by SeedSwapState‖nf,
// alive only between initiate-swap and execute-swap/refund (spec §3).
type SwapState struct {
	buf []byte
}

// NewSwapState wraps buf as a SwapState view.
func NewSwapState(buf []byte) (*SwapState, error) {
	if len(buf) != SwapStateSize {
		return nil, ErrInvalidAccountSize
	}
	return &SwapState{buf: buf}, nil
}

// InitSwapState allocates and populates a fresh SwapState buffer.
func InitSwapState(nf types.Hash, solAmount uint64, outputMint, recipientATA types.Hash, minOut, createdSlot, timeoutSlot uint64, bump byte) *SwapState {
	s := &SwapState{buf: make([]byte, SwapStateSize)}
	copy(s.buf[0:32], nf[:])
	common.PutUint64LE(s.buf[32:40], solAmount)
	copy(s.buf[40:72], outputMint[:])
	copy(s.buf[72:104], recipientATA[:])
	common.PutUint64LE(s.buf[104:112], minOut)
	common.PutUint64LE(s.buf[112:120], createdSlot)
	common.PutUint64LE(s.buf[120:128], timeoutSlot)
	s.buf[128] = bump
	return s
}

func (s *SwapState) Nullifier() types.Hash       { return types.HashFromBytes(s.buf[0:32]) }
func (s *SwapState) AmountIn() uint64            { return common.Uint64LE(s.buf[32:40]) }
func (s *SwapState) OutputMint() types.Hash      { return types.HashFromBytes(s.buf[40:72]) }
func (s *SwapState) RecipientATA() types.Hash    { return types.HashFromBytes(s.buf[72:104]) }
func (s *SwapState) MinOutputAmount() uint64     { return common.Uint64LE(s.buf[104:112]) }
func (s *SwapState) CreatedSlot() uint64         { return common.Uint64LE(s.buf[112:120]) }
func (s *SwapState) TimeoutSlot() uint64         { return common.Uint64LE(s.buf[120:128]) }
func (s *SwapState) Bump() byte                  { return s.buf[128] }

// IsTimedOut reports whether currentSlot has passed the swap's timeout.
func (s *SwapState) IsTimedOut(currentSlot uint64) bool {
	return currentSlot > s.TimeoutSlot()
}

func (s *SwapState) Bytes() []byte { return s.buf }
