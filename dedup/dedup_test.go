package dedup

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hotwords123/judge-v3/types"
)

func TestJudgeCollapsesConcurrentCallers(t *testing.T) {
	d := New()

	var evalCount, startedCount int32
	release := make(chan struct{})

	eval := func() (*types.TestcaseDetails, error) {
		atomic.AddInt32(&evalCount, 1)
		atomic.AddInt32(&startedCount, 1)
		<-release
		return &types.TestcaseDetails{Type: types.Accepted, ScoringRate: 1}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*types.TestcaseDetails, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			r, err := d.Judge("shared", eval)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = r
		}(i)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&evalCount); got != 1 {
		t.Fatalf("eval called %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&startedCount); got != 1 {
		t.Fatalf("started called %d times, want 1", got)
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result[%d] = %p, want shared pointer %p", i, r, results[0])
		}
	}
}

func TestJudgeCachesAcrossNonOverlappingCalls(t *testing.T) {
	d := New()
	var evalCount int32
	eval := func() (*types.TestcaseDetails, error) {
		atomic.AddInt32(&evalCount, 1)
		return &types.TestcaseDetails{Type: types.Accepted}, nil
	}
	first, err := d.Judge("c1", eval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := d.Judge("c1", eval)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected shared cached pointer on sequential calls")
	}
	if atomic.LoadInt32(&evalCount) != 1 {
		t.Fatalf("eval called %d times, want 1", evalCount)
	}
}

func TestJudgeDistinctNamesEvaluateIndependently(t *testing.T) {
	d := New()
	var evalCount int32
	eval := func() (*types.TestcaseDetails, error) {
		atomic.AddInt32(&evalCount, 1)
		return &types.TestcaseDetails{}, nil
	}
	d.Judge("a", eval)
	d.Judge("b", eval)

	if atomic.LoadInt32(&evalCount) != 2 {
		t.Fatalf("eval called %d times, want 2", evalCount)
	}
}
