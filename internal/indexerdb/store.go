// Package indexerdb implements the indexer's persistent storage: Merkle
// node/root storage (satisfying internal/merkle.Store), atomic leaf-index
// allocation paired with encrypted-note ingest, and push-to-chain retry
// bookkeeping. Grounded on internal/storage/postgres.go's pgxpool
// Config/DSN/connection-pool shape, retargeted from block/DAG tables to
// commitment/Merkle-node/notes tables.
package indexerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

var (
	ErrNotFound     = errors.New("indexerdb: not found")
	ErrDBConnection = errors.New("indexerdb: database connection error")
)

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DefaultConfig returns sane local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "cloak",
		Password: "",
		Database: "cloak_indexer",
		SSLMode:  "disable",
		MaxConns: 20,
	}
}

// Store is the indexer's pgx-backed persistence layer.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool and verifies connectivity.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode, cfg.MaxConns,
	)
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Schema is the indexer's DDL, kept inline since this module ships no
// separate migration runner. Nothing in this module executes it; it is
// applied to the database (for example by a migration tool) before the
// indexer ingests its first deposit.
const Schema = `
CREATE TABLE IF NOT EXISTS merkle_nodes (
	level INTEGER NOT NULL,
	index_at_level BIGINT NOT NULL,
	hash BYTEA NOT NULL,
	PRIMARY KEY (level, index_at_level)
);

CREATE TABLE IF NOT EXISTS tree_state (
	id SMALLINT PRIMARY KEY DEFAULT 1,
	root BYTEA NOT NULL,
	next_index BIGINT NOT NULL DEFAULT 0,
	CHECK (id = 1)
);

CREATE TABLE IF NOT EXISTS notes (
	leaf_index BIGINT PRIMARY KEY,
	leaf_commit BYTEA NOT NULL,
	encrypted_output BYTEA NOT NULL,
	tx_signature TEXT NOT NULL,
	slot BIGINT NOT NULL,
	root_pushed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS notes_root_pending_idx ON notes (root_pushed) WHERE NOT root_pushed;

INSERT INTO tree_state (id, root, next_index) VALUES (1, '', 0)
ON CONFLICT (id) DO NOTHING;
`

// GetNode implements internal/merkle.Store.
func (s *Store) GetNode(ctx context.Context, level int, index uint64) (types.Hash, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT hash FROM merkle_nodes WHERE level=$1 AND index_at_level=$2`,
		level, int64(index),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Hash{}, false, nil
	}
	if err != nil {
		return types.Hash{}, false, err
	}
	return types.HashFromBytes(raw), true, nil
}

// SetNode implements internal/merkle.Store.
func (s *Store) SetNode(ctx context.Context, level int, index uint64, hash types.Hash) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO merkle_nodes (level, index_at_level, hash) VALUES ($1, $2, $3)
		 ON CONFLICT (level, index_at_level) DO UPDATE SET hash = EXCLUDED.hash`,
		level, int64(index), hash[:],
	)
	return err
}

// GetRoot implements internal/merkle.Store.
func (s *Store) GetRoot(ctx context.Context) (types.Hash, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT root FROM tree_state WHERE id=1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Hash{}, false, nil
	}
	if err != nil {
		return types.Hash{}, false, err
	}
	if len(raw) == 0 {
		// The row seeded by Schema carries an empty root: no root stored yet.
		return types.Hash{}, false, nil
	}
	return types.HashFromBytes(raw), true, nil
}

// SetRoot implements internal/merkle.Store.
func (s *Store) SetRoot(ctx context.Context, root types.Hash) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tree_state (id, root, next_index) VALUES (1, $1, 0)
		 ON CONFLICT (id) DO UPDATE SET root = EXCLUDED.root`,
		root[:],
	)
	return err
}

// GetNextIndex implements internal/merkle.Store.
func (s *Store) GetNextIndex(ctx context.Context) (uint64, error) {
	var next int64
	err := s.pool.QueryRow(ctx, `SELECT next_index FROM tree_state WHERE id=1`).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

// SetNextIndex implements internal/merkle.Store.
func (s *Store) SetNextIndex(ctx context.Context, next uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tree_state (id, root, next_index) VALUES (1, '', $1)
		 ON CONFLICT (id) DO UPDATE SET next_index = EXCLUDED.next_index`,
		int64(next),
	)
	return err
}
