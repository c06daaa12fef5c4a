package queue

import (
	"context"
	"log"
	"time"

	"groupme-bot/internal/models"
	"groupme-bot/internal/observability"
)

// JobsRoutingKey is the topic the job queue binds to.
const JobsRoutingKey = "jobs.run"

// Job carries one queued command invocation across the queue. It serializes
// the command name and the raw inbound event, never handler references: the
// worker re-resolves the handler and rebuilds the command context from
// storage on its side.
type Job struct {
	ID         string              `json:"id"`
	Command    string              `json:"command"`
	Args       string              `json:"args,omitempty"`
	Event      models.InboundEvent `json:"event"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}

// Enqueuer appends jobs to the work queue.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, job Job) error
}

// Executor runs one dequeued job to completion.
type Executor func(ctx context.Context, job Job) error

// JobPublisher enqueues jobs through the AMQP publisher.
type JobPublisher struct {
	publisher Publisher
}

// NewJobPublisher constructs a JobPublisher.
func NewJobPublisher(publisher Publisher) *JobPublisher {
	return &JobPublisher{publisher: publisher}
}

// EnqueueJob publishes the job onto the durable queue.
func (p *JobPublisher) EnqueueJob(ctx context.Context, job Job) error {
	if err := p.publisher.Publish(ctx, JobsRoutingKey, job); err != nil {
		observability.IncAMQPPublishError()
		return err
	}
	observability.IncJob("enqueued")
	return nil
}

// InProcessQueue is the fallback work queue when AMQP is not configured: a
// buffered channel drained by worker goroutines. It keeps the same
// one-job-per-worker, generous-timeout semantics but is not durable across
// restarts.
type InProcessQueue struct {
	jobs     chan Job
	workers  int
	timeout  time.Duration
	executor Executor
}

// NewInProcessQueue constructs an in-process queue.
func NewInProcessQueue(depth, workers int, timeout time.Duration, executor Executor) *InProcessQueue {
	return &InProcessQueue{
		jobs:     make(chan Job, depth),
		workers:  workers,
		timeout:  timeout,
		executor: executor,
	}
}

// Start launches the worker goroutines. They drain until ctx is cancelled.
func (q *InProcessQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		go q.worker(ctx)
	}
}

// EnqueueJob appends the job, failing fast when the queue is full rather than
// blocking the webhook response path.
func (q *InProcessQueue) EnqueueJob(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		observability.IncJob("enqueued")
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *InProcessQueue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			runJob(ctx, q.executor, q.timeout, job)
		}
	}
}

// runJob executes one job under the queue's generous timeout. Queued commands
// are exactly the ones expected to outlive the webhook deadline, so this is
// minutes, not seconds. Failures are terminal: a queued command is a
// user-initiated action that can simply be reissued.
func runJob(ctx context.Context, executor Executor, timeout time.Duration, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := executor(jobCtx, job); err != nil {
		observability.IncJob("failed")
		log.Printf("job failed id=%s command=%s group=%s after=%s: %v", job.ID, job.Command, job.Event.GroupID, time.Since(start), err)
		return
	}
	observability.IncJob("completed")
	log.Printf("job completed id=%s command=%s group=%s after=%s", job.ID, job.Command, job.Event.GroupID, time.Since(start))
}
