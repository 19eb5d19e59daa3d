package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// Status is a relay job's lifecycle state, matching the GET /status/:id
// status enum of spec §6.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// JobRecord is the request-id-keyed status the relay reports back to callers
// polling GET /status/:request_id.
type JobRecord struct {
	RequestID uuid.UUID
	Status    Status
	TxID      string
	Error     string
	Nullifier types.Hash
	UpdatedAt time.Time
}

// StatusStore tracks job status by request id, grounded on
// internal/pouw/task_queue.go's TaskQueue map+mutex bookkeeping shape but
// keyed by request id instead of task id, since the durable job state
// itself lives in the Redis-backed queue.
type StatusStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*JobRecord
}

// NewStatusStore creates an empty store.
func NewStatusStore() *StatusStore {
	return &StatusStore{records: make(map[uuid.UUID]*JobRecord)}
}

// Put inserts or overwrites the record for requestID.
func (s *StatusStore) Put(requestID uuid.UUID, status Status, nf types.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[requestID] = &JobRecord{
		RequestID: requestID,
		Status:    status,
		Nullifier: nf,
		UpdatedAt: time.Now(),
	}
}

// Transition updates an existing record's status, preserving its other fields.
func (s *StatusStore) Transition(requestID uuid.UUID, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[requestID]; ok {
		r.Status = status
		r.UpdatedAt = time.Now()
	}
}

// Complete marks requestID completed with the submitted transaction id.
func (s *StatusStore) Complete(requestID uuid.UUID, txID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[requestID]; ok {
		r.Status = StatusCompleted
		r.TxID = txID
		r.UpdatedAt = time.Now()
	}
}

// Fail marks requestID permanently failed with reason.
func (s *StatusStore) Fail(requestID uuid.UUID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[requestID]; ok {
		r.Status = StatusFailed
		r.Error = reason
		r.UpdatedAt = time.Now()
	}
}

// Get returns the record for requestID, if any.
func (s *StatusStore) Get(requestID uuid.UUID) (*JobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[requestID]
	return r, ok
}

// Backlog counts records still queued or processing.
func (s *StatusStore) Backlog() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if r.Status == StatusQueued || r.Status == StatusProcessing {
			n++
		}
	}
	return n
}
