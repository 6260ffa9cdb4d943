package progress

import (
	"testing"
	"time"

	"github.com/hotwords123/judge-v3/types"
)

func TestHubSubscribeReceivesLatestOnJoin(t *testing.T) {
	h := newHub()
	h.publish("s1", &types.JudgeResult{Subtasks: []types.SubtaskResult{{Score: 0.5}}})

	ch, last, cancel := h.subscribe("s1")
	defer cancel()

	if last == nil || last.Subtasks[0].Score != 0.5 {
		t.Fatalf("last = %+v, want a snapshot with Score 0.5", last)
	}

	h.publish("s1", &types.JudgeResult{Subtasks: []types.SubtaskResult{{Score: 1}}})
	select {
	case r := <-ch:
		if r.Subtasks[0].Score != 1 {
			t.Fatalf("Score = %v, want 1", r.Subtasks[0].Score)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published snapshot")
	}
}

func TestHubPublishToUnsubscribedIDRetainsSnapshot(t *testing.T) {
	h := newHub()
	h.publish("nobody-listening", &types.JudgeResult{})
	if _, ok := h.snapshot("nobody-listening"); !ok {
		t.Fatal("want the snapshot retained even with no subscribers")
	}
}

func TestHubForgetDropsSnapshot(t *testing.T) {
	h := newHub()
	h.publish("s1", &types.JudgeResult{})
	h.forget("s1")
	if _, ok := h.snapshot("s1"); ok {
		t.Fatal("want no snapshot retained after forget")
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := newHub()
	ch, _, cancel := h.subscribe("s1")
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("want the channel closed after cancel")
	}
}
