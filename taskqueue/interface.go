// Package taskqueue is the runner-transport seam (§4.H): the orchestrator
// and the judger implementations never talk to a runner directly, only
// through a Sender.
package taskqueue

import "github.com/hotwords123/judge-v3/types"

// Sender initiates a run task and delivers its result on r, which must
// have room for exactly one value. started, if non-nil, is invoked
// exactly once by the transport when the runner side actually begins
// executing t — not when Send merely hands it off for delivery (§4.C,
// §4.H: queuing time and execution time are different instants once a
// task can sit behind other work on a real runner pool).
type Sender interface {
	Send(t types.RunTask, started func(), r chan<- types.RunTaskResult) error
}

// Receiver is the runner side of a Queue: it pulls tasks to execute.
type Receiver interface {
	ReceiveC() <-chan Task
}

// Queue is a transport that is both sent to and received from, e.g. the
// in-process channel.Queue used by tests and single-binary deployments.
type Queue interface {
	Sender
	Receiver
}

// Task is one task handed to a runner, paired with its reply sink.
type Task interface {
	// Task returns the run task parameters.
	Task() *types.RunTask
	// Started fires the Sender's started callback. The runner calls this
	// itself, at the instant it actually begins executing the task —
	// Task() merely reads parameters, it does not mark execution begun.
	Started()
	// Done delivers the result; called exactly once.
	Done(*types.RunTaskResult)
}
