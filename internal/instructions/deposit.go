// Package instructions implements the ledger instruction handlers: deposit,
// admin-push-root, withdraw (transfer/swap/stake), and miner-decoy-withdraw.
// Grounded structurally on internal/zkp/transaction.go's
// TransactionBuilder.Build sequencing (conservation check -> nullifier
// derivation -> proof -> assembled result), generalized from an in-process
// Note/Transaction pair to the on-chain account-buffer model of
// internal/onchain.
package instructions

import (
	"errors"

	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrInsufficientPoolBalance = errors.New("instructions: pool balance insufficient for requested amount")
	ErrWrongMint               = errors.New("instructions: deposit mint does not match pool mint")
)

// DepositRequest bundles the parameters of the deposit instruction.
type DepositRequest struct {
	Amount       uint64
	Commitment   types.Hash
	PoolBalance  uint64 // caller-observed pre-transfer balance, for InsufficientLamports style checks elsewhere
	Mint         types.Hash
}

// DepositResult reports the effects committed by a successful deposit.
type DepositResult struct {
	LeafIndex    uint64
	TotalCommits uint64
}

// Deposit appends req.Commitment to the queue and returns its assigned leaf
// index. It never touches the RootsRing — new roots are pushed later by the
// indexer via AdminPushRoot (spec §4.5).
func Deposit(queue *onchain.CommitmentQueue, pool *onchain.Pool, req DepositRequest) (DepositResult, error) {
	if req.Mint != pool.Mint() {
		return DepositResult{}, ErrWrongMint
	}
	leafIndex, err := queue.Append(req.Commitment)
	if err != nil {
		return DepositResult{}, err
	}
	return DepositResult{LeafIndex: leafIndex, TotalCommits: queue.TotalCommits()}, nil
}

// AdminPushRoot writes root into the RootsRing, rotating its head. Callers
// are responsible for verifying the caller is the registry's designated
// admin before invoking this (an authorization check belongs to the ledger
// runtime's account-meta layer, not here).
func AdminPushRoot(ring *onchain.RootsRing, root types.Hash) {
	ring.PushRoot(root)
}
