// Package amqprunner adapts taskqueue.Sender onto RabbitMQ, for
// deployments where the runner pool lives behind a message broker
// instead of the in-process channel.Queue.
//
// Grounded on programme-lv-tester's
// internal/gatherers/rabbitmq(.go|/rabbitmq.go) Publish/CorrelationId
// shape (declare a reply queue, publish with a JSON-encoded correlation
// id, let the consumer match replies back to callers), generalized from
// that gatherer's one-way notification into a request/reply by
// demultiplexing the reply queue's deliveries on CorrelationId into a
// table of waiting channels.
//
// A worker that has dequeued a task and actually begun executing it
// publishes an interim delivery to the reply queue carrying the same
// CorrelationId and the amqp.Publishing.Type startedMessageType, ahead
// of its eventual result delivery; consumeReplies demultiplexes the two
// by that Type field instead of treating every delivery as final.
package amqprunner

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
	"github.com/hotwords123/judge-v3/types"
)

// startedMessageType marks an interim reply-queue delivery as "a worker
// has begun executing this task", as opposed to its eventual result.
const startedMessageType = "started"

// Queue publishes types.RunTask payloads to a well-known work queue and
// demultiplexes replies arriving on a dedicated reply queue.
type Queue struct {
	channel   *amqp.Channel
	workQueue string
	replyTo   string

	mu      sync.Mutex
	pending map[string]pendingRequest
}

type pendingRequest struct {
	started func()
	result  chan<- types.RunTaskResult
}

// Dial connects to url and declares both the work queue and this
// process's reply queue (named replyTo; empty generates a random one).
func Dial(url, workQueue, replyTo string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return New(ch, workQueue, replyTo)
}

// New wraps an already-open channel. Exposed separately from Dial so
// callers that manage their own amqp.Connection can share it.
func New(ch *amqp.Channel, workQueue, replyTo string) (*Queue, error) {
	if replyTo == "" {
		replyTo = "judge-v3.reply." + uuid.NewString()
	}
	if _, err := ch.QueueDeclare(workQueue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(replyTo, false, true, true, false, nil)
	if err != nil {
		return nil, err
	}

	r := &Queue{
		channel:   ch,
		workQueue: workQueue,
		replyTo:   q.Name,
		pending:   make(map[string]pendingRequest),
	}

	deliveries, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	go r.consumeReplies(deliveries)

	return r, nil
}

// Send implements taskqueue.Sender by publishing t to the work queue and
// registering r against a fresh correlation id; the reply consumer
// loop, not Send itself, delivers the eventual result. started is
// invoked from that same loop when a worker's interim "started" delivery
// arrives for this correlation id, never at publish time.
func (q *Queue) Send(t types.RunTask, started func(), r chan<- types.RunTaskResult) error {
	correlationID := uuid.NewString()

	body, err := json.Marshal(t)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.pending[correlationID] = pendingRequest{started: started, result: r}
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = q.channel.PublishWithContext(ctx, "", q.workQueue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       q.replyTo,
		Priority:      amqpPriority(t.Priority),
		Body:          body,
	})
	if err != nil {
		q.mu.Lock()
		delete(q.pending, correlationID)
		q.mu.Unlock()
		return err
	}
	return nil
}

// amqpPriority clamps a RunTask's priority into AMQP's conventional
// 0-9 priority range (RabbitMQ ignores values outside it).
func amqpPriority(p int) uint8 {
	switch {
	case p < 0:
		return 0
	case p > 9:
		return 9
	default:
		return uint8(p)
	}
}

// Close shuts down the underlying channel, ending the reply consumer
// loop.
func (q *Queue) Close() error {
	return q.channel.Close()
}

func (q *Queue) consumeReplies(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		if d.Type == startedMessageType {
			q.mu.Lock()
			pending, ok := q.pending[d.CorrelationId]
			q.mu.Unlock()
			if ok && pending.started != nil {
				pending.started()
			}
			continue
		}

		q.mu.Lock()
		pending, ok := q.pending[d.CorrelationId]
		delete(q.pending, d.CorrelationId)
		q.mu.Unlock()
		if !ok {
			continue
		}

		var result types.RunTaskResult
		if err := json.Unmarshal(d.Body, &result); err != nil {
			result = types.RunTaskResult{Status: types.RunTaskFailed, Error: err.Error()}
		}
		pending.result <- result
	}
}
