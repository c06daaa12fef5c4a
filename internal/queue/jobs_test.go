package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"groupme-bot/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestJobPublisherUsesJobsRoutingKey(t *testing.T) {
	pub := &recordingPublisher{}
	jobs := NewJobPublisher(pub)

	job := Job{ID: "j1", Command: "stats", Event: models.InboundEvent{GroupID: "g1"}}
	require.NoError(t, jobs.EnqueueJob(context.Background(), job))

	require.Equal(t, []string{JobsRoutingKey}, pub.keys)
	require.Equal(t, job, pub.events[0])
}

func TestJobPublisherPropagatesPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	jobs := NewJobPublisher(pub)

	err := jobs.EnqueueJob(context.Background(), Job{ID: "j1"})
	require.Error(t, err)
}

func TestInProcessQueueRunsJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewInProcessQueue(4, 1, time.Second, func(_ context.Context, job Job) error {
		done <- job
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	job := Job{ID: "j1", Command: "summary", Event: models.InboundEvent{GroupID: "g1"}}
	require.NoError(t, q.EnqueueJob(ctx, job))

	select {
	case got := <-done:
		require.Equal(t, "j1", got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("job never executed")
	}
}

func TestInProcessQueueFailsFastWhenFull(t *testing.T) {
	// No workers started, so the buffer fills immediately.
	q := NewInProcessQueue(1, 0, time.Second, func(context.Context, Job) error { return nil })

	require.NoError(t, q.EnqueueJob(context.Background(), Job{ID: "j1"}))
	require.ErrorIs(t, q.EnqueueJob(context.Background(), Job{ID: "j2"}), ErrQueueFull)
}

func TestPublisherModeReportsNoop(t *testing.T) {
	pub := NewPublisher("", "gmbot")
	defer pub.Close()

	require.Equal(t, "noop", PublisherMode(pub))
	require.NoError(t, pub.Publish(context.Background(), "jobs.run", Job{ID: "j1"}))
}
