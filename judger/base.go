// Package judger provides the three §4.G specializations of judge.Judger
// — Standard, AnswerSubmission, and Interactive — sharing the compile/
// dispatch plumbing grounded on judger/loop.go's compile-then-run
// sequence, generalized from that file's single hardcoded problem type
// to all three.
package judger

import (
	"context"
	"fmt"

	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/language"
	"github.com/hotwords123/judge-v3/taskqueue"
	"github.com/hotwords123/judge-v3/types"
)

// base holds the plumbing every specialization shares: dispatch to the
// runner transport, the compiled user executable once Compile succeeds,
// and file-preview extraction for judged cases.
type base struct {
	sender           taskqueue.Sender
	lang             language.Language
	sub              *types.Submission
	files            map[string]file.File   // test-data files, keyed by name
	testDataName     string                 // types.TestData.Name, resolves tc.Input/Output on the runner side
	extraSourceFiles map[string][]file.File // types.TestData.ExtraSourceFiles, keyed by submission language
	previewN         int                    // DataDisplayLimit
	priority         int

	exec *types.CompiledExec
}

func newBase(sender taskqueue.Sender, lang language.Language, sub *types.Submission, files map[string]file.File, testDataName string, extraSourceFiles map[string][]file.File, previewLimit, priority int) base {
	return base{sender: sender, lang: lang, sub: sub, files: files, testDataName: testDataName, extraSourceFiles: extraSourceFiles, previewN: previewLimit, priority: priority}
}

// send is the sole suspension point that talks to the runner transport:
// it dispatches t and blocks for exactly one reply, or ctx's expiry.
// started, if non-nil, is the transport's own started callback (§4.H),
// forwarded unchanged — send does not synthesize it.
func (b *base) send(ctx context.Context, t types.RunTask, started func()) (*types.RunTaskResult, error) {
	reply := make(chan types.RunTaskResult, 1)
	if err := b.sender.Send(t, started, reply); err != nil {
		return nil, fmt.Errorf("send run task: %w", err)
	}
	select {
	case r := <-reply:
		return &r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// compileSource sends a compile task for one source file (the user's
// submission, a special judge, or an interactor) and returns the raw
// CompilationResult. instrumented selects the diagnostics language
// variant.
func (b *base) compileSource(ctx context.Context, sourceLanguage string, code file.File, extra []file.File, instrumented bool) (*types.CompilationResult, error) {
	content, err := code.Content()
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	result, err := b.send(ctx, types.RunTask{
		Type:            types.TaskCompile,
		Priority:        b.priority,
		CompileLanguage: sourceLanguage,
		CompileCode:     string(content),
		CompileExtra:    extra,
		Instrumented:    instrumented,
	}, nil)
	if err != nil {
		return nil, err
	}
	if result.Status != types.RunTaskSucceeded || result.Compile == nil {
		return nil, fmt.Errorf("compile transport failure: %s", result.Error)
	}
	return result.Compile, nil
}

// submissionExtraFiles returns the user-attached extra files for this
// submission plus any problem-level helper files TestData.ExtraSourceFiles
// declares for the submission's language (e.g. a shared checker-visible
// struct header) — both end up alongside the user's own source on the
// same compile task.
func (b *base) submissionExtraFiles() []file.File {
	extra := b.extraSourceFiles[b.sub.Language]
	if len(extra) == 0 {
		return b.sub.ExtraFiles
	}
	return append(append([]file.File{}, b.sub.ExtraFiles...), extra...)
}

// Compile implements judge.Judger.
func (b *base) Compile(ctx context.Context) (*types.CompilationResult, error) {
	result, err := b.compileSource(ctx, b.sub.Language, b.sub.Code, b.submissionExtraFiles(), false)
	if err != nil {
		return nil, err
	}
	if result.Success {
		b.exec = result.Exec
	}
	return result, nil
}

// CompileWithDiagnostics implements judge.Judger.
func (b *base) CompileWithDiagnostics(ctx context.Context) (*types.CompilationResult, error) {
	result, err := b.compileSource(ctx, b.sub.Language, b.sub.Code, b.submissionExtraFiles(), true)
	if err != nil {
		return nil, err
	}
	if result.Success {
		b.exec = result.Exec
	}
	return result, nil
}

// SupportDiagnostics implements judge.Judger.
func (b *base) SupportDiagnostics() bool {
	return b.lang.Supports(b.sub.Language, language.TypeDiagnostics)
}

// Cleanup implements judge.Judger. base holds no transient resources of
// its own; specializations override this when they compile a special
// judge or interactor that needs releasing.
func (b *base) Cleanup() {}

func (b *base) preview(name *string) types.FilePreview {
	if name == nil {
		return types.FilePreview{}
	}
	content, err := file.ReadPreview(b.files[*name], b.previewN)
	if err != nil {
		return types.FilePreview{Name: *name}
	}
	return types.FilePreview{Name: *name, Content: content}
}

// fillPreviews backfills Input/Output previews on a runner-produced
// TestcaseDetails when the runner didn't already populate them itself.
func (b *base) fillPreviews(details *types.TestcaseDetails, tc types.TestcaseJudge) {
	if details.Input.Name == "" {
		details.Input = b.preview(tc.Input)
	}
	if details.Output.Name == "" {
		details.Output = b.preview(tc.Output)
	}
}

func execName(exec *types.CompiledExec) string {
	if exec == nil || len(exec.Files) == 0 {
		return ""
	}
	return exec.Files[0]
}
