package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrQueueFull is returned when an in-process queue cannot accept more jobs.
var ErrQueueFull = errors.New("job queue full")

// Consumer drains the durable job queue with a pool of workers. Jobs for the
// same group can run on different workers concurrently, so handlers mutating
// per-group aggregates rely on the storage layer's atomic increments.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	queue    string
	workers  int
	timeout  time.Duration
	executor Executor
}

// NewConsumer connects, declares the durable queue, and binds it to the jobs
// routing key on the exchange.
func NewConsumer(amqpURL, exchange, queueName string, workers int, timeout time.Duration, executor Executor) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(queueName, JobsRoutingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	// one unacked job per worker slot
	if err := ch.Qos(workers, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, queue: queueName, workers: workers, timeout: timeout, executor: executor}, nil
}

// Start consumes deliveries until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for i := 0; i < c.workers; i++ {
		go c.worker(ctx, deliveries)
	}

	<-ctx.Done()
	return c.Close()
}

func (c *Consumer) worker(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			c.handle(ctx, delivery)
		}
	}
}

// handle decodes and runs one delivery. The job is acked whether it succeeded
// or not: there is no automatic retry, a failed queued command is reported
// and can be reissued by the user.
func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		log.Printf("job decode failed: %v", err)
		_ = delivery.Nack(false, false)
		return
	}

	jobCtx, span := otel.Tracer("groupme-bot/queue").Start(ctx, "queue.job")
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("job.command", job.Command),
		attribute.String("job.group_id", job.Event.GroupID),
	)
	runJob(jobCtx, c.executor, c.timeout, job)
	span.End()

	if err := delivery.Ack(false); err != nil {
		log.Printf("job ack failed id=%s: %v", job.ID, err)
	}
}

// Close tears down the channel and connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
