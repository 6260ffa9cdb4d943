// Package subtask drives a single subtask's cases: sequential skip logic
// for Minimum/Multiple, unordered parallel dispatch for Summation, and
// the min-propagation clamp for a Minimum subtask with dependencies
// (§4.D).
package subtask

import (
	"context"
	"sync"

	"github.com/hotwords123/judge-v3/score"
	"github.com/hotwords123/judge-v3/types"
)

// Evaluator shares testcase evaluations across subtasks within one judge
// run (the role dedup.Deduplicator plays for the orchestrator).
type Evaluator interface {
	Judge(name string, eval func() (*types.TestcaseDetails, error)) (*types.TestcaseDetails, error)
}

// TestcaseJudger is the judger-contract primitive (§4.G) a case is
// actually evaluated through. started, if non-nil, is invoked exactly
// once by the underlying runner transport when it actually begins
// executing tc.
type TestcaseJudger interface {
	JudgeTestcase(ctx context.Context, tc types.TestcaseJudge, started func()) (*types.TestcaseDetails, error)
}

// Runner drives one subtask.
type Runner struct {
	Judger TestcaseJudger
	Dedup  Evaluator
}

// Run judges def's cases directly into out, calling onChange after every
// case state transition and once more when the subtask itself completes.
// out is expected to be a pointer into the caller's shared JudgeResult
// (e.g. &result.Subtasks[idx]), so every mutation is made while holding
// mu — the same mutex the caller's onChange locks around its own
// snapshot/clone of that shared result. mu must be non-nil.
//
// minRatio is 1 for a subtask without dependencies (or any non-Minimum
// subtask); for a Minimum subtask with dependencies it is
// min(1, min_i deps[i].score/subtasks[i].score), already computed by the
// orchestrator from each dependency's *final* score (§4.E ordering
// guarantee: this runner never sees an intermediate dependency state).
func (r *Runner) Run(ctx context.Context, def *types.Subtask, minRatio float64, out *types.SubtaskResult, mu *sync.Mutex, onChange func()) {
	n := len(def.Cases)

	mu.Lock()
	out.Cases = make([]types.CaseResult, n)
	for i := range out.Cases {
		out.Cases[i] = types.CaseResult{Status: types.Waiting}
	}
	out.Status = types.Running
	mu.Unlock()

	minScore := minRatio * def.Score
	if def.Type == types.Minimum && minRatio < 1 && minScore <= 0 {
		mu.Lock()
		for i := range out.Cases {
			out.Cases[i].Status = types.Skipped
		}
		out.Status = types.Skipped
		out.Score = 0
		mu.Unlock()
		onChange()
		return
	}

	ratios := make([]float64, n)
	for i := range ratios {
		ratios[i] = score.Baseline(def.Type)
	}
	var anyFailed bool

	clampAndReport := func() {
		mu.Lock()
		s := score.Subtask(def.Type, def.Score, ratios, anyFailed)
		if minRatio < 1 && !anyFailed {
			if clamped := minScore; s > clamped {
				s = clamped
			}
		}
		out.Score = s
		mu.Unlock()
		onChange()
	}

	if def.Type.Skippable() {
		r.runSequential(ctx, def, out, mu, ratios, &anyFailed, clampAndReport)
	} else {
		r.runParallel(ctx, def, out, mu, ratios, &anyFailed, clampAndReport)
	}

	mu.Lock()
	switch {
	case anyFailed:
		out.Status = types.Failed
	default:
		out.Status = types.Done
	}
	mu.Unlock()
	clampAndReport()
}

func (r *Runner) runSequential(ctx context.Context, def *types.Subtask, out *types.SubtaskResult, mu *sync.Mutex, ratios []float64, anyFailed *bool, report func()) {
	skipped := false
	for i, c := range def.Cases {
		if skipped {
			mu.Lock()
			out.Cases[i].Status = types.Skipped
			mu.Unlock()
			report()
			continue
		}

		details, err := r.evaluate(ctx, c, out, i, mu, report)
		if err != nil {
			mu.Lock()
			out.Cases[i].Status = types.Failed
			out.Cases[i].ErrorMessage = err.Error()
			*anyFailed = true
			mu.Unlock()
			report()
			continue
		}

		mu.Lock()
		out.Cases[i].Status = types.Done
		out.Cases[i].Result = details
		ratios[i] = details.ScoringRate
		mu.Unlock()
		report()

		if details.ScoringRate == 0 || isNaN(details.ScoringRate) {
			skipped = true
		}
	}
}

func (r *Runner) runParallel(ctx context.Context, def *types.Subtask, out *types.SubtaskResult, mu *sync.Mutex, ratios []float64, anyFailed *bool, report func()) {
	var wg sync.WaitGroup
	wg.Add(len(def.Cases))
	for i, c := range def.Cases {
		go func(i int, c types.TestcaseJudge) {
			defer wg.Done()
			details, err := r.evaluate(ctx, c, out, i, mu, report)

			mu.Lock()
			if err != nil {
				out.Cases[i].Status = types.Failed
				out.Cases[i].ErrorMessage = err.Error()
				*anyFailed = true
			} else {
				out.Cases[i].Status = types.Done
				out.Cases[i].Result = details
				ratios[i] = details.ScoringRate
			}
			mu.Unlock()
			report()
		}(i, c)
	}
	wg.Wait()
}

// evaluate runs one case through the shared deduplicator. started fires
// exactly once, from inside the runner transport the chosen caller's
// JudgeTestcase call reaches, at the instant execution actually begins
// on the runner side — not when this case is merely picked to be the
// one that runs. mu guards every mutation of the shared SubtaskResult,
// including this transient Running transition, since Summation
// dispatches cases concurrently and the orchestrator may clone the
// whole result at any time from another subtask's goroutine.
func (r *Runner) evaluate(ctx context.Context, c types.TestcaseJudge, out *types.SubtaskResult, i int, mu *sync.Mutex, report func()) (*types.TestcaseDetails, error) {
	started := func() {
		mu.Lock()
		out.Cases[i].Status = types.Running
		mu.Unlock()
		report()
	}
	return r.Dedup.Judge(c.Name, func() (*types.TestcaseDetails, error) {
		return r.Judger.JudgeTestcase(ctx, c, started)
	})
}

func isNaN(f float64) bool {
	return f != f
}
