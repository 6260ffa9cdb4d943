package channel

import (
	"testing"
	"time"

	"github.com/hotwords123/judge-v3/types"
)

func TestSendDeliversTaskToReceiver(t *testing.T) {
	q := New()

	reply := make(chan types.RunTaskResult, 1)
	var startedCalls int
	if err := q.Send(types.RunTask{Type: types.TaskCompile}, func() { startedCalls++ }, reply); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case task := <-q.ReceiveC():
		if task.Task().Type != types.TaskCompile {
			t.Fatalf("Type = %q, want %q", task.Task().Type, types.TaskCompile)
		}
		task.Started()
		if startedCalls != 1 {
			t.Fatalf("started called %d times, want 1", startedCalls)
		}
		task.Done(&types.RunTaskResult{Status: types.RunTaskSucceeded})
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the task on ReceiveC")
	}

	select {
	case r := <-reply:
		if r.Status != types.RunTaskSucceeded {
			t.Fatalf("Status = %v, want RunTaskSucceeded", r.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the reply")
	}
}
