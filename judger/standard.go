package judger

import (
	"context"
	"fmt"

	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/language"
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/types"
)

// Standard is the ordinary input/output-comparison judger, optionally
// backed by a special judge, grounded on the teacher's single hardcoded
// problem type in judger/loop.go plus types.ProblemConfig.SPJ (here
// TestData.SPJ).
type Standard struct {
	base

	spj     *file.SourceCode
	spjExec *types.CompiledExec
}

// NewStandard builds a Standard judger. spj may be nil.
func NewStandard(sender taskqueue.Sender, lang language.Language, sub *types.Submission, files map[string]file.File, testDataName string, extraSourceFiles map[string][]file.File, spj *file.SourceCode, previewLimit, priority int) *Standard {
	return &Standard{base: newBase(sender, lang, sub, files, testDataName, extraSourceFiles, previewLimit, priority), spj: spj}
}

// PreprocessTestData compiles the special judge, if any.
func (s *Standard) PreprocessTestData(ctx context.Context) error {
	if s.spj == nil {
		return nil
	}
	result, err := s.compileSource(ctx, s.spj.Language, s.spj.Code, s.spj.ExtraFiles, false)
	if err != nil {
		return fmt.Errorf("compile special judge: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("special judge failed to compile: %s", result.Message)
	}
	s.spjExec = result.Exec
	return nil
}

// JudgeTestcase implements judge.Judger.
func (s *Standard) JudgeTestcase(ctx context.Context, tc types.TestcaseJudge, started func()) (*types.TestcaseDetails, error) {
	result, err := s.send(ctx, types.RunTask{
		Type:               types.TaskStandard,
		Priority:           s.priority,
		TestDataName:       s.testDataName,
		InputFile:          tc.Input,
		AnswerFile:         tc.Output,
		TimeLimit:          s.sub.TimeLimit,
		MemoryLimit:        s.sub.MemoryLimit,
		UserExecutableName: execName(s.exec),
		SPJExecutableName:  execName(s.spjExec),
		SPJLanguage:        spjLanguage(s.spj),
	}, started)
	if err != nil {
		return nil, err
	}
	if result.Status != types.RunTaskSucceeded || result.Exec == nil {
		return nil, fmt.Errorf("judge testcase %q: %s", tc.Name, result.Error)
	}
	s.fillPreviews(result.Exec, tc)
	return result.Exec, nil
}

func spjLanguage(spj *file.SourceCode) string {
	if spj == nil {
		return ""
	}
	return spj.Language
}
