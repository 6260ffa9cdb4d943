package judger

import (
	"context"
	"fmt"

	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/language"
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/types"
)

// Interactive mediates every case through an interactor process instead
// of a static answer file. Grounded on types.ProblemConfig.Interactor
// (present but unused by the teacher's single problem type) and
// RunTask.InteractorName/InteractorLanguage — this is the first thing
// in the repo that actually populates them.
type Interactive struct {
	base

	interactor     *file.SourceCode
	interactorExec *types.CompiledExec
}

// NewInteractive builds an Interactive judger.
func NewInteractive(sender taskqueue.Sender, lang language.Language, sub *types.Submission, files map[string]file.File, testDataName string, extraSourceFiles map[string][]file.File, interactor *file.SourceCode, previewLimit, priority int) *Interactive {
	return &Interactive{base: newBase(sender, lang, sub, files, testDataName, extraSourceFiles, previewLimit, priority), interactor: interactor}
}

// PreprocessTestData compiles the interactor.
func (i *Interactive) PreprocessTestData(ctx context.Context) error {
	result, err := i.compileSource(ctx, i.interactor.Language, i.interactor.Code, i.interactor.ExtraFiles, false)
	if err != nil {
		return fmt.Errorf("compile interactor: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("interactor failed to compile: %s", result.Message)
	}
	i.interactorExec = result.Exec
	return nil
}

// JudgeTestcase implements judge.Judger.
func (i *Interactive) JudgeTestcase(ctx context.Context, tc types.TestcaseJudge, started func()) (*types.TestcaseDetails, error) {
	result, err := i.send(ctx, types.RunTask{
		Type:               types.TaskInteractive,
		Priority:           i.priority,
		TestDataName:       i.testDataName,
		InputFile:          tc.Input,
		AnswerFile:         tc.Output,
		TimeLimit:          i.sub.TimeLimit,
		MemoryLimit:        i.sub.MemoryLimit,
		UserExecutableName: execName(i.exec),
		InteractorName:     execName(i.interactorExec),
		InteractorLanguage: i.interactor.Language,
	}, started)
	if err != nil {
		return nil, err
	}
	if result.Status != types.RunTaskSucceeded || result.Exec == nil {
		return nil, fmt.Errorf("judge testcase %q: %s", tc.Name, result.Error)
	}
	i.fillPreviews(result.Exec, tc)
	return result.Exec, nil
}
