// Package score implements the pure scoring-mode × per-case-ratio
// calculation used by every subtask, independent of how those ratios were
// obtained.
package score

import (
	"math"

	"github.com/hotwords123/judge-v3/types"
)

// Combine reduces a subtask's per-case scoring ratios to a single ratio in
// [0, 1] according to its scoring mode.
//
//   - Minimum: the weakest ratio. Undefined (caller error) on an empty
//     slice; callers guarantee subtasks always have at least one case.
//   - Multiple: the product of ratios; 1 on an empty slice (§9 open
//     question — unspecified input, treated as the multiplicative
//     identity since that is what the fold degenerates to).
//   - Summation: the mean of ratios.
func Combine(mode types.ScoringMode, ratios []float64) float64 {
	switch mode {
	case types.Minimum:
		m := ratios[0]
		for _, r := range ratios[1:] {
			if r < m {
				m = r
			}
		}
		return m
	case types.Multiple:
		p := 1.0
		for _, r := range ratios {
			p *= r
		}
		return p
	case types.Summation:
		if len(ratios) == 0 {
			return 0
		}
		sum := 0.0
		for _, r := range ratios {
			sum += r
		}
		return sum / float64(len(ratios))
	default:
		return 0
	}
}

// Baseline is the optimistic per-case ratio to assume before a case has
// reported (invariant 5): 1 for skippable modes, 0 for Summation.
func Baseline(mode types.ScoringMode) float64 {
	if mode.Skippable() {
		return 1
	}
	return 0
}

// Subtask computes a subtask's final score: Combine(mode, ratios) ×
// weight, or NaN if anyFailed is true (invariant 6).
func Subtask(mode types.ScoringMode, weight float64, ratios []float64, anyFailed bool) float64 {
	if anyFailed {
		return math.NaN()
	}
	return Combine(mode, ratios) * weight
}
