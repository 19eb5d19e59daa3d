// Package relay also exposes the operator-facing HTTP surface of spec §6:
// POST /withdraw, GET /status/:request_id, GET /backlog. Handler shape
// follows the same stdlib net/http + http.ServeMux convention established
// for the indexer (internal/indexerapi), since no HTTP framework appears
// anywhere in the domain-relevant portion of the retrieval pack.
package relay

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Server binds the worker pool and status store behind HTTP handlers.
type Server struct {
	pool   *Pool
	status *StatusStore
}

// NewServer constructs a relay HTTP server over an already-running pool.
func NewServer(pool *Pool, status *StatusStore) *Server {
	return &Server{pool: pool, status: status}
}

// Routes registers the relay's HTTP surface on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/withdraw", s.handleWithdraw)
	mux.HandleFunc("/status/", s.handleStatus)
	mux.HandleFunc("/backlog", s.handleBacklog)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type withdrawResponse struct {
	RequestID string `json:"request_id"`
	Status    Status `json:"status"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req WithdrawRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pub, err := ValidateWithdrawRequest(req, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New()
	jobID := requestID.String()
	priority := uint8(128)
	if err := s.pool.Enqueue(r.Context(), requestID, jobID, priority, time.Now().Unix(), req, pub.Nullifier); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue job: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, withdrawResponse{RequestID: requestID.String(), Status: StatusQueued})
}

type statusResponse struct {
	Status Status `json:"status"`
	TxID   string `json:"tx_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/status/")
	requestID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request_id must be a UUID")
		return
	}
	record, ok := s.status.Get(requestID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown request_id")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: record.Status, TxID: record.TxID, Error: record.Error})
}

type backlogResponse struct {
	PendingCount int          `json:"pending_count"`
	QueuedJobs   []types.Hash `json:"queued_jobs"`
}

func (s *Server) handleBacklog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backlogResponse{PendingCount: s.status.Backlog(), QueuedJobs: nil})
}
