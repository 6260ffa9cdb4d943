package judge

import (
	"context"

	"github.com/hotwords123/judge-v3/types"
)

// Judger is the abstract seam the orchestrator drives (§4.G). Standard,
// answer-submission, and interactive problem types are specializations
// under the sibling judger package; the orchestrator itself depends only
// on this interface.
type Judger interface {
	// PreprocessTestData performs optional one-time setup, e.g.
	// compiling a special judge or interactor. A non-nil error aborts
	// the whole run.
	PreprocessTestData(ctx context.Context) error

	// Compile must succeed before Run judges any case; a non-success
	// CompilationResult short-circuits judging without an error.
	Compile(ctx context.Context) (*types.CompilationResult, error)

	// CompileWithDiagnostics recompiles with an instrumented language
	// variant. Only called by the diagnostics driver.
	CompileWithDiagnostics(ctx context.Context) (*types.CompilationResult, error)

	// SupportDiagnostics reports whether an instrumented variant exists
	// for this submission's language.
	SupportDiagnostics() bool

	// JudgeTestcase is the sole per-case primitive: all runner
	// transport and file-preview extraction happens behind it. started,
	// if non-nil, is invoked exactly once by the underlying runner
	// transport when it actually begins executing tc — not when
	// JudgeTestcase is called.
	JudgeTestcase(ctx context.Context, tc types.TestcaseJudge, started func()) (*types.TestcaseDetails, error)

	// Cleanup releases any transient resources. Always called, even
	// when PreprocessTestData or Compile failed.
	Cleanup()
}

// DiagnosticsDriver is the interface the orchestrator drives the
// diagnostics pass (§4.F) through. diagnostics.Driver satisfies this
// structurally; the orchestrator does not import that package, avoiding
// a cycle (the driver itself needs a Judger to recompile/re-judge
// through).
type DiagnosticsDriver interface {
	// Run returns whether a case was actually eligible and re-judged.
	Run(ctx context.Context, data *types.TestData, result *types.JudgeResult, reportProgress func(*types.JudgeResult)) bool
}
