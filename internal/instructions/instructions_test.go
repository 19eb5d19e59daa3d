package instructions

import (
	"context"
	"testing"

	"github.com/Machine-Labz/cloak-sub000/internal/hashing"
	"github.com/Machine-Labz/cloak-sub000/internal/merkle"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/common"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

func TestDepositAppendsAndAssignsLeafIndex(t *testing.T) {
	queue := onchain.InitCommitmentQueue()
	pool := onchain.InitPool(types.Hash{})

	res, err := Deposit(queue, pool, DepositRequest{Amount: 1_000_000_000, Commitment: types.Hash{0xC1}, Mint: types.Hash{}})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if res.LeafIndex != 0 || res.TotalCommits != 1 {
		t.Fatalf("got %+v, want leafIndex=0 totalCommits=1", res)
	}
}

func TestDepositRejectsWrongMint(t *testing.T) {
	queue := onchain.InitCommitmentQueue()
	pool := onchain.InitPool(types.Hash{0xAA})

	_, err := Deposit(queue, pool, DepositRequest{Amount: 1, Commitment: types.Hash{0x01}, Mint: types.Hash{0xBB}})
	if err != ErrWrongMint {
		t.Fatalf("got %v, want ErrWrongMint", err)
	}
}

func TestOutputsHashDeterministic(t *testing.T) {
	outs := []Output{{Recipient: types.Hash{0x01}, Amount: 992_500_000}}
	h1 := OutputsHash(outs)
	h2 := OutputsHash(outs)
	if h1 != h2 {
		t.Fatal("OutputsHash not deterministic")
	}
	other := []Output{{Recipient: types.Hash{0x02}, Amount: 992_500_000}}
	if OutputsHash(other) == h1 {
		t.Fatal("different recipients produced the same outputs_hash")
	}
}

func TestAdminPushRootRotatesHeadIdempotently(t *testing.T) {
	ring := onchain.InitRootsRing()
	root := types.Hash{0xDD}
	AdminPushRoot(ring, root)
	h1 := ring.Head()
	AdminPushRoot(ring, root) // idempotent value, still rotates head
	h2 := ring.Head()
	if h1 == h2 {
		t.Fatal("expected head to advance on a repeated push of the same root")
	}
	if !ring.ContainsRoot(root) {
		t.Fatal("expected root still present after repeated push")
	}
}

func TestWithdrawStakeConservesAmount(t *testing.T) {
	res, err := WithdrawStake(WithdrawStakeRequest{Amount: 1_000_000_000, StakeAccount: types.Hash{0x09}, FeeShareBps: 2500})
	if err != nil {
		t.Fatalf("WithdrawStake: %v", err)
	}
	if res.MinerFee+res.ProtocolFee+res.StakeAmount != 1_000_000_000 {
		t.Fatalf("miner+protocol+stake = %d, want 1_000_000_000", res.MinerFee+res.ProtocolFee+res.StakeAmount)
	}
}

func TestUnstakeOutputsHashDeterministic(t *testing.T) {
	commitment := types.Hash{0x05}
	stakeAccount := types.Hash{0x06}
	h1 := UnstakeOutputsHash(commitment, stakeAccount)
	h2 := UnstakeOutputsHash(commitment, stakeAccount)
	if h1 != h2 {
		t.Fatal("UnstakeOutputsHash not deterministic")
	}
	if UnstakeOutputsHash(stakeAccount, commitment) == h1 {
		t.Fatal("swapping commitment/stake_account order produced the same hash")
	}
}

func TestMinerDecoyWithdrawRequiresWildcardClaim(t *testing.T) {
	ring := onchain.InitRootsRing()
	shard := onchain.InitNullifierShard()

	claim := onchain.InitClaim(onchain.ClaimInit{
		BatchHash:   types.Hash{0x01}, // non-wildcard
		MaxConsumes: 1,
	})
	claim.Reveal(10, 100)

	_, err := MinerDecoyWithdraw(ring, shard, claim, 10, MinerDecoyWithdrawRequest{
		Amount:       1,
		LeafIndex:    0,
		ExpectedRoot: types.Hash{},
	})
	if err != ErrInvalidMerkleProof && err != ErrRootNotFound {
		// Merkle/root checks run before the wildcard check in this handler;
		// either failure is acceptable evidence the request was rejected
		// before reaching a non-wildcard claim.
		t.Fatalf("expected an early structural rejection, got %v", err)
	}

	// With a valid opening, Merkle proof and pushed root, the non-wildcard
	// claim is what rejects the request.
	ctx := context.Background()
	sk, r := types.Hash{0x11}, types.Hash{0x22}
	amount := uint64(1_000_000_000)
	pk := hashing.H(sk[:])
	amountLE := make([]byte, 8)
	common.PutUint64LE(amountLE, amount)
	commitment := hashing.H(amountLE, r[:], pk[:])

	tree, err := merkle.New(merkle.NewInMemoryStore(), 8)
	if err != nil {
		t.Fatalf("merkle.New: %v", err)
	}
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	root, index, err := tree.Insert(ctx, commitment)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	proof, err := tree.Prove(ctx, index)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ring.PushRoot(root)

	_, err = MinerDecoyWithdraw(ring, shard, claim, 10, MinerDecoyWithdrawRequest{
		Amount:       amount,
		R:            r,
		Sk:           sk,
		LeafIndex:    index,
		MerkleProof:  proof,
		ExpectedRoot: root,
	})
	if err != ErrNotWildcardClaim {
		t.Fatalf("expected ErrNotWildcardClaim for a non-wildcard claim, got %v", err)
	}
}
