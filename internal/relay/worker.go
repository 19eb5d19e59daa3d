package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/internal/relayqueue"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

// LedgerSubmitter assembles, signs, and submits the withdraw transaction
// that consumes claim on behalf of payload, then polls for confirmation.
// Abstracted so the worker pool can be tested without a live ledger RPC
// client; the real binary wires in whatever client talks to the chain.
type LedgerSubmitter interface {
	SubmitWithdraw(ctx context.Context, payload WithdrawRequestPayload, claim *onchain.Claim) (txID string, err error)
}

// jobPayload is the JSON shape stored as relayqueue.JobMessage.Payload.
type jobPayload struct {
	RequestID string                 `json:"request_id"`
	JobID     string                 `json:"job_id"`
	Request   WithdrawRequestPayload `json:"request"`
}

// PermanentError marks a failure class that must dead-letter rather than
// retry (spec §4.8/§7: validation, double-spend, proof invalid).
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// RetryDelay computes the exponential backoff used for transient failures,
// matching the Rust relay's retry_delay_ms-based scheme.
func RetryDelay(retryCount int, base time.Duration, maxDelay time.Duration) time.Duration {
	delay := base
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}

// Pool is the relay's worker pool: it dequeues jobs, finds a usable PoW
// claim, submits the withdraw transaction, and routes failures to retry or
// dead-letter. Structurally grounded on internal/pouw/task_queue.go's
// TaskQueue assign/complete/fail bookkeeping, adapted to a Redis-backed
// queue instead of an in-memory map since jobs must survive a worker
// restart.
type Pool struct {
	queue      *relayqueue.Queue
	finder     *ClaimFinder
	submitter  LedgerSubmitter
	status     *StatusStore
	numWorkers int
	retryBase  time.Duration
	retryMax   time.Duration

	currentSlot func() uint64
}

// NewPool wires a worker pool over its dependencies.
func NewPool(queue *relayqueue.Queue, finder *ClaimFinder, submitter LedgerSubmitter, status *StatusStore, numWorkers int, currentSlot func() uint64) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		queue:       queue,
		finder:      finder,
		submitter:   submitter,
		status:      status,
		numWorkers:  numWorkers,
		retryBase:   4 * time.Second,
		retryMax:    2 * time.Minute,
		currentSlot: currentSlot,
	}
}

// Run starts numWorkers dequeue loops; each blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		go p.workerLoop(ctx)
	}
}

func (p *Pool) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		message, err := p.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("relay: dequeue error: %v", err)
			continue
		}
		if message == nil {
			continue
		}
		p.process(ctx, *message)
	}
}

func (p *Pool) process(ctx context.Context, message relayqueue.JobMessage) {
	var payload jobPayload
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		log.Printf("relay: malformed job payload, dead-lettering: %v", err)
		_ = p.queue.DeadLetter(ctx, message, "malformed job payload")
		return
	}
	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		_ = p.queue.DeadLetter(ctx, message, "malformed request id")
		return
	}

	p.status.Transition(requestID, StatusProcessing)

	batchHash := BatchHashForJob(payload.JobID)
	currentSlot := uint64(0)
	if p.currentSlot != nil {
		currentSlot = p.currentSlot()
	}

	claim, err := p.finder.Find(ctx, batchHash, currentSlot)
	if err != nil {
		// No claim yet is transient: the miner fleet may simply not have
		// produced one for this batch_hash yet.
		p.retry(ctx, message, requestID, err)
		return
	}

	txID, err := p.submitter.SubmitWithdraw(ctx, payload.Request, claim)
	if err != nil {
		var perm *PermanentError
		if errors.As(err, &perm) {
			p.status.Fail(requestID, perm.Error())
			_ = p.queue.DeadLetter(ctx, message, perm.Error())
			return
		}
		p.retry(ctx, message, requestID, err)
		return
	}

	p.status.Complete(requestID, txID)
	_ = p.queue.MarkCompleted(ctx, payload.JobID)
}

func (p *Pool) retry(ctx context.Context, message relayqueue.JobMessage, requestID uuid.UUID, cause error) {
	delay := RetryDelay(message.RetryCount, p.retryBase, p.retryMax)
	if err := p.queue.RequeueWithDelay(ctx, message, delay); err != nil {
		log.Printf("relay: requeue failed for job %s: %v", message.JobID, err)
	}
	if message.RetryCount >= 5 {
		p.status.Fail(requestID, cause.Error())
		return
	}
	p.status.Transition(requestID, StatusQueued)
}

// Enqueue submits a new withdraw job, recording it as queued.
func (p *Pool) Enqueue(ctx context.Context, requestID uuid.UUID, jobID string, priority uint8, createdAt int64, req WithdrawRequestPayload, nf types.Hash) error {
	body, err := json.Marshal(jobPayload{RequestID: requestID.String(), JobID: jobID, Request: req})
	if err != nil {
		return err
	}
	parsedJobID, err := uuid.Parse(jobID)
	if err != nil {
		return err
	}
	message := relayqueue.NewJobMessage(parsedJobID, requestID, priority, createdAt, body)
	if err := p.queue.Enqueue(ctx, message); err != nil {
		return err
	}
	p.status.Put(requestID, StatusQueued, nf)
	return nil
}
