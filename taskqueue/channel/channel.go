// Package channel is the in-process taskqueue.Queue used by tests and
// single-binary deployments, kept near-verbatim from the teacher's own
// buffered-channel transport.
package channel

import (
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/types"
)

const buffSize = 512

// Queue implements taskqueue.Queue over a buffered Go channel.
type Queue struct {
	queue chan taskqueue.Task
}

// New creates a Queue with a buffered channel.
func New() *Queue {
	return &Queue{
		queue: make(chan taskqueue.Task, buffSize),
	}
}

// Send implements taskqueue.Sender. started fires when the runner that
// drains ReceiveC calls Started() on the dequeued task, not when this
// call enqueues it.
func (q *Queue) Send(t types.RunTask, started func(), r chan<- types.RunTaskResult) error {
	q.queue <- task{
		task:    t,
		started: started,
		result:  r,
	}
	return nil
}

// ReceiveC implements taskqueue.Receiver.
func (q *Queue) ReceiveC() <-chan taskqueue.Task {
	return q.queue
}

type task struct {
	task    types.RunTask
	started func()
	result  chan<- types.RunTaskResult
}

func (t task) Task() *types.RunTask { return &t.task }

func (t task) Started() {
	if t.started != nil {
		t.started()
	}
}

func (t task) Done(r *types.RunTaskResult) { t.result <- *r }
