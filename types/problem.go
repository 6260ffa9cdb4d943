// Package types defines the data model shared by every component of the
// judge core: problem configuration, per-case results and the aggregate
// JudgeResult reported to callers.
package types

import "github.com/hotwords123/judge-v3/file"

// ScoringMode is a subtask's scoring rule.
type ScoringMode int

// Scoring modes.
const (
	// Minimum scores a subtask by its weakest case; skippable.
	Minimum ScoringMode = iota + 1
	// Multiple scores a subtask by the product of its case ratios; skippable.
	Multiple
	// Summation scores a subtask by the mean of its case ratios; never skips.
	Summation
)

func (m ScoringMode) String() string {
	switch m {
	case Minimum:
		return "Minimum"
	case Multiple:
		return "Multiple"
	case Summation:
		return "Summation"
	default:
		return "Unknown"
	}
}

// Skippable reports whether a subtask of this mode may short-circuit on a
// zero-scoring case.
func (m ScoringMode) Skippable() bool {
	return m == Minimum || m == Multiple
}

// TestcaseJudge names one testcase within a subtask. Name is the
// deduplication key for an entire judge run: two subtasks of that run
// (even when their runners overlap in time) that reference the same Name
// share one evaluation.
type TestcaseJudge struct {
	Name   string
	Input  *string
	Output *string
}

// Subtask groups testcases under one scoring rule and weight, optionally
// depending on other subtasks having already been judged.
type Subtask struct {
	Type         ScoringMode
	Score        float64
	Cases        []TestcaseJudge
	Dependencies []int
}

// TestData is the immutable input to one judge run.
type TestData struct {
	Name       string
	Subtasks   []Subtask
	SPJ        *file.SourceCode
	Interactor *file.SourceCode
	// ExtraSourceFiles maps a language name to helper files attached to
	// every compile of a submission in that language (e.g. a shared
	// header for a problem's checker-visible struct definitions).
	ExtraSourceFiles map[string][]file.File
}

// TotalCases counts every testcase across every subtask, without
// deduplicating by name (used for sizing, not for the dedup invariant).
func (t *TestData) TotalCases() int {
	n := 0
	for _, s := range t.Subtasks {
		n += len(s.Cases)
	}
	return n
}
