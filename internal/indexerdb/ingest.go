package indexerdb

import (
	"context"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// DepositEvent is one ledger deposit observed by the indexer.
type DepositEvent struct {
	LeafCommit      types.Hash
	EncryptedOutput []byte
	TxSignature     string
	Slot            uint64
}

// Note is a stored, indexed deposit row.
type Note struct {
	LeafIndex       uint64
	LeafCommit      types.Hash
	EncryptedOutput []byte
	TxSignature     string
	Slot            uint64
	RootPushed      bool
}

// IngestDeposit allocates the next leaf index and stores the note row in a
// single database transaction, so index allocation is monotonic and
// gap-free even under concurrent ingest (spec §4.7's invariant).
func (s *Store) IngestDeposit(ctx context.Context, ev DepositEvent) (uint64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var next int64
	err = tx.QueryRow(ctx, `SELECT next_index FROM tree_state WHERE id=1 FOR UPDATE`).Scan(&next)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO notes (leaf_index, leaf_commit, encrypted_output, tx_signature, slot, root_pushed)
		 VALUES ($1, $2, $3, $4, $5, FALSE)`,
		next, ev.LeafCommit[:], ev.EncryptedOutput, ev.TxSignature, int64(ev.Slot),
	); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `UPDATE tree_state SET next_index = next_index + 1 WHERE id=1`); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// MarkRootPushed flags every note up to and including leafIndex as having
// had its root successfully published to the RootsRing.
func (s *Store) MarkRootPushed(ctx context.Context, leafIndex uint64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notes SET root_pushed = TRUE WHERE leaf_index <= $1`, int64(leafIndex))
	return err
}

// PendingRootPushes returns leaf indexes whose root publication failed and
// needs a retry via the admin endpoint (spec §4.7).
func (s *Store) PendingRootPushes(ctx context.Context) ([]uint64, error) {
	rows, err := s.pool.Query(ctx, `SELECT leaf_index FROM notes WHERE NOT root_pushed ORDER BY leaf_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var idx int64
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		out = append(out, uint64(idx))
	}
	return out, rows.Err()
}

// NotesRange returns up to limit notes with leaf_index in [start, end),
// for wallet-scanning pagination.
func (s *Store) NotesRange(ctx context.Context, start, end uint64, limit int) ([]Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT leaf_index, leaf_commit, encrypted_output, tx_signature, slot, root_pushed
		 FROM notes WHERE leaf_index >= $1 AND leaf_index < $2 ORDER BY leaf_index LIMIT $3`,
		int64(start), int64(end), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		var leafIndex, slot int64
		var commitRaw []byte
		if err := rows.Scan(&leafIndex, &commitRaw, &n.EncryptedOutput, &n.TxSignature, &slot, &n.RootPushed); err != nil {
			return nil, err
		}
		n.LeafIndex = uint64(leafIndex)
		n.LeafCommit = types.HashFromBytes(commitRaw)
		n.Slot = uint64(slot)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MaxLeafIndex returns N such that exactly leaves 0..N-1 exist, or
// (0, false) if the tree is empty.
func (s *Store) MaxLeafIndex(ctx context.Context) (uint64, bool, error) {
	var next int64
	err := s.pool.QueryRow(ctx, `SELECT next_index FROM tree_state WHERE id=1`).Scan(&next)
	if err != nil {
		return 0, false, err
	}
	if next == 0 {
		return 0, false, nil
	}
	return uint64(next), true, nil
}
