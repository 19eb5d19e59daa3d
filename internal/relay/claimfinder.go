// Package relay implements the relay service of spec §4.8: claim discovery
// against the PoW-gated registry, a worker pool that turns queued withdraw
// jobs into submitted ledger transactions, and the operator-facing HTTP
// surface. Claim-search logic is grounded on
// original_source/services/relay/src/claim_manager.rs's ClaimFinder
// (batch_hash-or-wildcard matching, revealed/not-expired/not-fully-consumed
// filtering); this module has no live chain RPC client, so account lookup is
// abstracted behind ClaimSource for testability.
package relay

import (
	"context"
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/internal/pouw"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var ErrNoClaimAvailable = errors.New("relay: no usable claim for this batch hash")

// ClaimSource lists every currently known Claim account, standing in for
// the Rust relay's get_program_accounts(registry_program_id) RPC call.
type ClaimSource interface {
	ListClaims(ctx context.Context) ([]*onchain.Claim, error)
}

// ClaimFinder discovers a usable PoW claim for a withdrawal job, preferring
// a claim that matches the job's own batch_hash over a wildcard claim so
// wildcard capacity stays available for stragglers.
type ClaimFinder struct {
	source      ClaimSource
	claimWindow uint64
}

// NewClaimFinder builds a finder over source.
func NewClaimFinder(source ClaimSource, claimWindow uint64) *ClaimFinder {
	return &ClaimFinder{source: source, claimWindow: claimWindow}
}

// Find returns the first usable claim for batchHash: revealed, not expired,
// not fully consumed, and either an exact batch_hash match or a wildcard
// claim (spec §4.6's wildcard semantics). Exact matches are preferred.
func (f *ClaimFinder) Find(ctx context.Context, batchHash types.Hash, currentSlot uint64) (*onchain.Claim, error) {
	claims, err := f.source.ListClaims(ctx)
	if err != nil {
		return nil, err
	}

	var wildcard *onchain.Claim
	for _, claim := range claims {
		if !claim.IsConsumable(currentSlot) {
			continue
		}
		if claim.IsWildcard() {
			if wildcard == nil {
				wildcard = claim
			}
			continue
		}
		if claim.BatchHash() == batchHash {
			return claim, nil
		}
	}
	if wildcard != nil {
		return wildcard, nil
	}
	return nil, ErrNoClaimAvailable
}

// BatchHashForJob derives the per-job batch_hash a relay job searches for,
// matching the miner-side derivation (spec §4.6, k=1 MVP single-job batches).
func BatchHashForJob(jobID string) types.Hash {
	return pouw.BatchHashForJob(jobID)
}
