package indexerdb

import "testing"

// Store itself requires a live Postgres connection (no DB-mocking library
// appears anywhere in the pack this module draws on), so only its pure
// config defaults are unit-tested here.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 5432 {
		t.Fatalf("expected default port 5432, got %d", cfg.Port)
	}
	if cfg.Database != "cloak_indexer" {
		t.Fatalf("expected default database cloak_indexer, got %q", cfg.Database)
	}
	if cfg.SSLMode != "disable" {
		t.Fatalf("expected default sslmode disable, got %q", cfg.SSLMode)
	}
	if cfg.MaxConns <= 0 {
		t.Fatalf("expected a positive default pool size, got %d", cfg.MaxConns)
	}
}
