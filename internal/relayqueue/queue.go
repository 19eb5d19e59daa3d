// Package relayqueue implements the relay's priority job queue: a Redis
// sorted-set queue with retry scheduling, a dead-letter queue, and a
// stale-processing sweeper. Ported field-for-field from
// original_source/services/relay/src/queue/redis_queue.rs (key names, score
// formula, ZADD/BZPOPMIN flow) from the Rust `redis` crate to go-redis.
package relayqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis key names, carried over verbatim from the Rust implementation so an
// operator migrating from it sees the same queue state.
const (
	QueueKey      = "relay:queue:jobs"
	ProcessingKey = "relay:queue:processing"
	DeadLetterKey = "relay:queue:dead_letter"
	RetryQueueKey = "relay:queue:retry"
)

// Config mirrors the Rust QueueConfig's retry/backoff knobs.
type Config struct {
	MaxRetries        int
	ProcessingTimeout time.Duration
	DeadLetterTTL     time.Duration
}

// DefaultConfig matches the reference relay deployment.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        5,
		ProcessingTimeout: 2 * time.Minute,
		DeadLetterTTL:     24 * time.Hour,
	}
}

// JobMessage is one withdrawal-processing job, matching the Rust
// JobMessage's fields needed by queue bookkeeping.
type JobMessage struct {
	JobID      uuid.UUID       `json:"job_id"`
	RequestID  uuid.UUID       `json:"request_id"`
	Priority   uint8           `json:"priority"` // 0 = highest
	CreatedAt  int64           `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	Payload    json.RawMessage `json:"payload"`
}

// NewJobMessage creates a job with the given priority and the current
// time stamped by the caller (time.Now().Unix()), matching the Rust
// constructor's with_priority builder pattern. jobID is supplied by the
// caller rather than generated here, so it can be the same id embedded in
// the job's own payload and later passed back to MarkCompleted.
func NewJobMessage(jobID, requestID uuid.UUID, priority uint8, createdAt int64, payload json.RawMessage) JobMessage {
	return JobMessage{
		JobID:     jobID,
		RequestID: requestID,
		Priority:  priority,
		CreatedAt: createdAt,
		Payload:   payload,
	}
}

// priorityScore reproduces calculate_priority_score: lower score sorts
// first (BZPOPMIN), so priority dominates and created_at breaks ties FIFO.
func priorityScore(j JobMessage) float64 {
	return float64(j.Priority)*1_000_000 + float64(j.CreatedAt)
}

// Queue is a Redis-backed JobQueue.
type Queue struct {
	rdb *redis.Client
	cfg Config
}

// New wraps an already-configured go-redis client.
func New(rdb *redis.Client, cfg Config) *Queue {
	return &Queue{rdb: rdb, cfg: cfg}
}

// Enqueue adds message to the priority queue.
func (q *Queue) Enqueue(ctx context.Context, message JobMessage) error {
	serialized, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return q.rdb.ZAdd(ctx, QueueKey, redis.Z{
		Score:  priorityScore(message),
		Member: string(serialized),
	}).Err()
}

// Dequeue blocks up to timeout for the highest-priority (lowest score) job,
// moving it into the processing set on success.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*JobMessage, error) {
	if timeout < time.Second {
		timeout = time.Second
	}
	result, err := q.rdb.BZPopMin(ctx, timeout, QueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	jobJSON, ok := result.Member.(string)
	if !ok {
		return nil, ErrMalformedMember
	}
	var message JobMessage
	if err := json.Unmarshal([]byte(jobJSON), &message); err != nil {
		return nil, err
	}

	processingEntry := processingEntry{Job: message, StartedAt: time.Now().Unix()}
	entryJSON, err := json.Marshal(processingEntry)
	if err == nil {
		// Best-effort, matching the Rust implementation's .unwrap_or(()) on
		// this particular ZADD: a failure here doesn't lose the job, it
		// just means the stale-sweeper won't see it for this pass.
		_ = q.rdb.ZAdd(ctx, ProcessingKey, redis.Z{Score: float64(time.Now().Unix()), Member: string(entryJSON)}).Err()
	}

	return &message, nil
}

type processingEntry struct {
	Job       JobMessage `json:"job"`
	StartedAt int64      `json:"started_at"`
}

type deadLetterEntry struct {
	Job            JobMessage `json:"job"`
	Reason         string     `json:"reason"`
	DeadLetteredAt int64      `json:"dead_lettered_at"`
}

// RequeueWithDelay schedules message for retry after delay, or dead-letters
// it once retry_count exceeds max_retries.
func (q *Queue) RequeueWithDelay(ctx context.Context, message JobMessage, delay time.Duration) error {
	message.RetryCount++
	if message.RetryCount > q.cfg.MaxRetries {
		return q.DeadLetter(ctx, message, "max retries exceeded")
	}

	scheduledTime := time.Now().Add(delay).Unix()
	serialized, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return q.rdb.ZAdd(ctx, RetryQueueKey, redis.Z{
		Score:  float64(scheduledTime),
		Member: string(serialized),
	}).Err()
}

// DeadLetter moves message to the dead-letter set with an expiry and a
// human-readable reason.
func (q *Queue) DeadLetter(ctx context.Context, message JobMessage, reason string) error {
	entry := deadLetterEntry{Job: message, Reason: reason, DeadLetteredAt: time.Now().Unix()}
	serialized, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(q.cfg.DeadLetterTTL).Unix()
	return q.rdb.ZAdd(ctx, DeadLetterKey, redis.Z{Score: float64(expiry), Member: string(serialized)}).Err()
}

// QueueSize reports the number of jobs currently waiting.
func (q *Queue) QueueSize(ctx context.Context) (int64, error) {
	return q.rdb.ZCard(ctx, QueueKey).Result()
}

// HealthCheck pings the backing Redis connection.
func (q *Queue) HealthCheck(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
