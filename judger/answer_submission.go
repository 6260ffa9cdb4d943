package judger

import (
	"context"
	"fmt"

	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/language"
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/types"
)

// AnswerSubmission judges a submission that is only an answer file, no
// source to compile — the submitted answer is checked against the
// expected output through the same special judge every standard
// problem uses. Grounded on the teacher's client.JudgeTask.Extra side
// channel, formalized here as Submission.Code holding the answer text
// directly instead of a compilable source file.
type AnswerSubmission struct {
	base

	spj     *file.SourceCode
	spjExec *types.CompiledExec
}

// NewAnswerSubmission builds an AnswerSubmission judger. spj must be
// non-nil: without a special judge there is nothing to compare the
// submitted answer against.
func NewAnswerSubmission(sender taskqueue.Sender, lang language.Language, sub *types.Submission, files map[string]file.File, testDataName string, extraSourceFiles map[string][]file.File, spj *file.SourceCode, previewLimit, priority int) *AnswerSubmission {
	return &AnswerSubmission{base: newBase(sender, lang, sub, files, testDataName, extraSourceFiles, previewLimit, priority), spj: spj}
}

// PreprocessTestData compiles the special judge every case is checked
// against.
func (a *AnswerSubmission) PreprocessTestData(ctx context.Context) error {
	result, err := a.compileSource(ctx, a.spj.Language, a.spj.Code, a.spj.ExtraFiles, false)
	if err != nil {
		return fmt.Errorf("compile special judge: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("special judge failed to compile: %s", result.Message)
	}
	a.spjExec = result.Exec
	return nil
}

// Compile implements judge.Judger. There is no user source to compile;
// this always succeeds so orchestration proceeds straight to judging.
func (a *AnswerSubmission) Compile(context.Context) (*types.CompilationResult, error) {
	return &types.CompilationResult{Success: true}, nil
}

// CompileWithDiagnostics implements judge.Judger. Diagnostics need an
// instrumented recompile of user source, which does not exist here.
func (a *AnswerSubmission) CompileWithDiagnostics(context.Context) (*types.CompilationResult, error) {
	return &types.CompilationResult{Success: true}, nil
}

// SupportDiagnostics implements judge.Judger.
func (a *AnswerSubmission) SupportDiagnostics() bool { return false }

// JudgeTestcase implements judge.Judger.
func (a *AnswerSubmission) JudgeTestcase(ctx context.Context, tc types.TestcaseJudge, started func()) (*types.TestcaseDetails, error) {
	content, err := a.sub.Code.Content()
	if err != nil {
		return nil, fmt.Errorf("read submitted answer: %w", err)
	}

	result, err := a.send(ctx, types.RunTask{
		Type:                    types.TaskAnswerSubmission,
		Priority:                a.priority,
		TestDataName:            a.testDataName,
		InputFile:               tc.Input,
		AnswerFile:              tc.Output,
		TimeLimit:               a.sub.TimeLimit,
		MemoryLimit:             a.sub.MemoryLimit,
		SPJExecutableName:       execName(a.spjExec),
		SPJLanguage:             spjLanguage(a.spj),
		AnswerSubmissionContent: string(content),
	}, started)
	if err != nil {
		return nil, err
	}
	if result.Status != types.RunTaskSucceeded || result.Exec == nil {
		return nil, fmt.Errorf("judge testcase %q: %s", tc.Name, result.Error)
	}
	a.fillPreviews(result.Exec, tc)
	return result.Exec, nil
}
