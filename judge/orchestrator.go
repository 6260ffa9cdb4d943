// Package judge ties the graph, score, dedup, and subtask packages
// together into the full judge run (§4.E): preprocess, compile, run
// every subtask honoring the dependency DAG, then an optional
// diagnostics pass.
//
// Grounded on judger/loop.go's run/runSubtask pair (results vector
// sized to subtasks, one goroutine per subtask, join at the end), but
// replacing the teacher's unconditional sync.WaitGroup fan-out with
// golang.org/x/sync/errgroup. A configuration error from graph.TopoOrder
// is returned by Run before the group is started; the group's error path
// carries only a context cancellation observed while a subtask waits on
// its dependencies. Per-subtask completion is
// signaled through a done chan struct{} per slot, closed once, mirroring
// the teacher's own done <-chan struct{} idiom in judger.Loop.
package judge

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/hotwords123/judge-v3/dedup"
	"github.com/hotwords123/judge-v3/graph"
	"github.com/hotwords123/judge-v3/score"
	"github.com/hotwords123/judge-v3/subtask"
	"github.com/hotwords123/judge-v3/types"
	"golang.org/x/sync/errgroup"
)

// Orchestrator drives a single judge run end to end.
type Orchestrator struct {
	Judger      Judger
	Diagnostics DiagnosticsDriver // nil disables the diagnostics pass
}

// Outcome is the full result of one Run: either a compilation failure
// (Judge is nil) or a complete JudgeResult.
type Outcome struct {
	Compile *types.CompilationResult
	Judge   *types.JudgeResult
	// DiagnosticsTriggered is true when the diagnostics pass ran and
	// actually re-judged a case (never true if Diagnostics is nil, the
	// judger doesn't support it, or no case was eligible).
	DiagnosticsTriggered bool
}

// Run executes preprocess → compile → judge → optional diagnostics,
// invoking reportProgress with a full snapshot on every case/subtask
// state change. A non-nil error indicates a fatal, pre-judging problem
// (configuration error, preprocess/compile transport error); any
// per-case or per-subtask failure is instead encoded in the returned
// Outcome, never raised (§7).
func (o *Orchestrator) Run(ctx context.Context, data *types.TestData, reportProgress func(*types.JudgeResult)) (*Outcome, error) {
	defer o.Judger.Cleanup()

	if err := o.Judger.PreprocessTestData(ctx); err != nil {
		return nil, fmt.Errorf("preprocess test data: %w", err)
	}

	compileResult, err := o.Judger.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if !compileResult.Success {
		return &Outcome{Compile: compileResult}, nil
	}

	order, err := graph.TopoOrder(data.Subtasks)
	if err != nil {
		return nil, err
	}

	result, err := o.judge(ctx, data, order, reportProgress)
	if err != nil {
		return nil, err
	}

	var triggered bool
	if o.Diagnostics != nil && o.Judger.SupportDiagnostics() {
		triggered = o.Diagnostics.Run(ctx, data, result, reportProgress)
	}

	return &Outcome{Compile: compileResult, Judge: result, DiagnosticsTriggered: triggered}, nil
}

func (o *Orchestrator) judge(ctx context.Context, data *types.TestData, order []int, reportProgress func(*types.JudgeResult)) (*types.JudgeResult, error) {
	n := len(data.Subtasks)
	result := &types.JudgeResult{Subtasks: make([]types.SubtaskResult, n)}
	for i := range result.Subtasks {
		result.Subtasks[i].Score = score.Baseline(data.Subtasks[i].Type) * data.Subtasks[i].Score
		result.Subtasks[i].Status = types.Waiting
	}

	done := make([]chan struct{}, n)
	for i := range done {
		done[i] = make(chan struct{})
	}

	var mu sync.Mutex
	report := func() {
		mu.Lock()
		snapshot := result.Clone()
		mu.Unlock()
		reportProgress(snapshot)
	}

	dd := dedup.New()
	g, gctx := errgroup.WithContext(ctx)

	for _, idx := range order {
		idx := idx
		s := &data.Subtasks[idx]

		g.Go(func() error {
			defer close(done[idx])

			minRatio, err := waitForDependencyRatio(gctx, s, data.Subtasks, result, &mu, done)
			if err != nil {
				return err
			}

			r := &subtask.Runner{Judger: o.Judger, Dedup: dd}
			r.Run(gctx, s, minRatio, &result.Subtasks[idx], &mu, report)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// waitForDependencyRatio blocks until every dependency of s has settled
// (its done channel closed), then computes minRatio = min(1, min_i
// dep[i].score/subtasks[i].score), reading only the final score of each
// dependency so a dependent never observes an intermediate state. A
// Failed (NaN) dependency score is treated as ratio 0 — the dependent is
// skipped rather than inheriting an undefined comparison.
func waitForDependencyRatio(ctx context.Context, s *types.Subtask, subtasks []types.Subtask, result *types.JudgeResult, mu *sync.Mutex, done []chan struct{}) (float64, error) {
	if s.Type != types.Minimum || len(s.Dependencies) == 0 {
		return 1, nil
	}

	for _, d := range s.Dependencies {
		select {
		case <-done[d]:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	minRatio := 1.0
	mu.Lock()
	for _, d := range s.Dependencies {
		dep := &subtasks[d]
		if dep.Score <= 0 {
			continue
		}
		depScore := result.Subtasks[d].Score
		ratio := 1.0
		switch {
		case math.IsNaN(depScore):
			ratio = 0
		default:
			ratio = depScore / dep.Score
		}
		if ratio < minRatio {
			minRatio = ratio
		}
	}
	mu.Unlock()

	if minRatio < 0 {
		minRatio = 0
	}
	return minRatio, nil
}
