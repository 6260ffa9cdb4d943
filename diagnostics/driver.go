// Package diagnostics implements the post-run diagnostics pass (§4.F):
// pick the first eligible Wrong Answer / Runtime Error case, recompile
// instrumented, re-judge it through the same testcase path, and attach
// stderr to the original case without touching the primary verdict.
//
// Grounded on judger/loop.go's compile-then-dispatch sequence (compile,
// then send a run task), run a second time through
// Judger.CompileWithDiagnostics, whose compile task sets
// RunTask.Instrumented so the runner side selects the instrumented
// variant.
package diagnostics

import (
	"context"

	"github.com/hotwords123/judge-v3/judge"
	"github.com/hotwords123/judge-v3/types"
	"go.uber.org/zap"
)

// Config gates and bounds the diagnostics pass. Ratios combine with the
// submission's own limits; MaxTime/MaxMemoryMiB are absolute caps.
type Config struct {
	Enabled bool

	MaxTimeRatio float64
	MaxTime      uint64 // ms, absolute cap

	MaxMemoryRatio float64
	MaxMemoryMiB   uint64 // MiB, absolute cap — converted to KiB before comparison
}

// Driver runs the diagnostics pass. The zero value is not usable;
// construct with New.
type Driver struct {
	config     Config
	judger     judge.Judger
	submission *types.Submission
	logger     *zap.Logger
}

// New builds a Driver for one judge run's submission.
func New(config Config, j judge.Judger, submission *types.Submission, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{config: config, judger: j, submission: submission, logger: logger}
}

// Run implements judge.DiagnosticsDriver. Any failure along the way is
// logged at warning level and swallowed; the primary result is never
// mutated except for the selected case's Diagnostics field. It reports
// whether a case was actually eligible and re-judged, for the caller's
// diagnostics-trigger-rate metric.
func (d *Driver) Run(ctx context.Context, data *types.TestData, result *types.JudgeResult, reportProgress func(*types.JudgeResult)) bool {
	if !d.config.Enabled {
		return false
	}

	st, ci, ok := d.findEligible(data, result)
	if !ok {
		return false
	}

	compileResult, err := d.judger.CompileWithDiagnostics(ctx)
	if err != nil {
		d.logger.Warn("diagnostics compile failed", zap.Error(err))
		return false
	}
	if !compileResult.Success {
		d.logger.Warn("diagnostics compile rejected", zap.String("message", compileResult.Message))
		return false
	}

	tc := data.Subtasks[st].Cases[ci]
	details, err := d.judger.JudgeTestcase(ctx, tc, nil)
	if err != nil {
		d.logger.Warn("diagnostics re-judge failed", zap.String("case", tc.Name), zap.Error(err))
		return false
	}

	slot := &result.Subtasks[st].Cases[ci]
	if slot.Result == nil {
		d.logger.Warn("diagnostics target case has no recorded result", zap.String("case", tc.Name))
		return false
	}
	stderr := details.UserError
	slot.Result.Diagnostics = &stderr

	reportProgress(result.Clone())
	return true
}

// findEligible walks subtasks, then cases, in declared order and
// returns the first case whose recorded verdict is WrongAnswer or
// RuntimeError and whose recorded time/memory are within the
// configured ceilings.
func (d *Driver) findEligible(data *types.TestData, result *types.JudgeResult) (subtaskIndex, caseIndex int, ok bool) {
	maxTime := d.config.MaxTimeRatio * float64(d.submission.TimeLimit)
	if absTime := float64(d.config.MaxTime); maxTime > absTime {
		maxTime = absTime
	}
	maxMemory := d.config.MaxMemoryRatio * float64(d.submission.MemoryLimit)
	if absMemory := float64(d.config.MaxMemoryMiB) * 1024; maxMemory > absMemory {
		maxMemory = absMemory
	}

	for si := range data.Subtasks {
		if si >= len(result.Subtasks) {
			break
		}
		cases := result.Subtasks[si].Cases
		for ci := range cases {
			r := cases[ci].Result
			if r == nil {
				continue
			}
			if r.Type != types.WrongAnswer && r.Type != types.RuntimeError {
				continue
			}
			if float64(r.Time) > maxTime || float64(r.Memory) > maxMemory {
				continue
			}
			return si, ci, true
		}
	}
	return 0, 0, false
}
