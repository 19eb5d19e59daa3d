package indexerapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Machine-Labz/cloak-sub000/internal/merkle"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// newTestServer builds a Server over an in-memory Merkle tree. Handlers that
// touch the Postgres-backed store (deposit ingest, notes range, admin
// push-root) need a live database and are out of scope for this package's
// unit tests; handlers that only touch the tree are covered here.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	tree, err := merkle.New(merkle.NewInMemoryStore(), 8)
	if err != nil {
		t.Fatalf("merkle.New: %v", err)
	}
	if err := tree.Initialize(context.Background()); err != nil {
		t.Fatalf("tree.Initialize: %v", err)
	}
	return New(tree, nil, onchain.InitRootsRing(), nil)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
}

func TestHandleMerkleRoot(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/merkle/root", nil)
	rec := httptest.NewRecorder()
	s.handleMerkleRoot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["nextIndex"].(float64) != 0 {
		t.Fatalf("expected nextIndex 0 on a fresh tree, got %v", body["nextIndex"])
	}
}

func TestHandleMerkleProofAfterInsert(t *testing.T) {
	s := newTestServer(t)
	leaf := types.Hash{0x01}
	if _, _, err := s.tree.Insert(context.Background(), leaf); err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merkle/proof/0", nil)
	rec := httptest.NewRecorder()
	s.handleMerkleProof(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleMerkleProofRejectsNonNumericIndex(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/merkle/proof/abc", nil)
	rec := httptest.NewRecorder()
	s.handleMerkleProof(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleMerkleProofRejectsOutOfRangeIndex(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/merkle/proof/5", nil)
	rec := httptest.NewRecorder()
	s.handleMerkleProof(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an index never inserted, got %d", rec.Code)
	}
}

func TestHandleAdminResetRequiresPost(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reset", nil)
	rec := httptest.NewRecorder()
	s.handleAdminReset(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandleAdminResetReinitializesTree(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.tree.Insert(context.Background(), types.Hash{0x01}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reset", nil)
	rec := httptest.NewRecorder()
	s.handleAdminReset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	_, nextIndex := s.tree.State()
	if nextIndex != 0 {
		t.Fatalf("expected tree reset to nextIndex 0, got %d", nextIndex)
	}
}

func TestHandleDepositRequiresPost(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/deposit", nil)
	rec := httptest.NewRecorder()
	s.handleDeposit(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
