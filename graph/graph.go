// Package graph validates the subtask dependency DAG and produces the
// topological order the orchestrator schedules subtasks in.
//
// The shape is the same in-degree countdown the pack's testing-system
// problem graph uses for its linear ICPC test chain (needToBeTested),
// generalized here from a fixed chain to an arbitrary validated DAG.
package graph

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hotwords123/judge-v3/types"
)

// ConfigError is a fatal, pre-execution configuration problem: a bad
// dependency index, a non-Minimum subtask in a dependency edge, or a
// cycle. §4.A requires this to be reported before any case runs.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// TopoOrder validates the dependency graph of subtasks and returns a
// topological order (a permutation of [0, len(subtasks))) that respects
// every dependency edge, breaking ties by ascending original index.
//
// Validation, performed while computing in-degrees:
//   - every dependency index is in [0, N)
//   - a subtask with any dependency, and every subtask it depends on,
//     must have Type == types.Minimum
//
// A cycle (Kahn's queue draining to fewer than N nodes) is reported as a
// *ConfigError, same as any other validation failure.
func TopoOrder(subtasks []types.Subtask) ([]int, error) {
	n := len(subtasks)
	deps := make([]mapset.Set[int], n)
	dependents := make([][]int, n) // reverse edges: dependents[d] = subtasks depending on d
	indegree := make([]int, n)

	for i, s := range subtasks {
		set := mapset.NewThreadUnsafeSet[int]()
		for _, d := range s.Dependencies {
			if d < 0 || d >= n {
				return nil, configErrorf("subtask %d: dependency index %d out of range", i, d)
			}
			if !set.Add(d) {
				continue // duplicate edge, already counted
			}
		}
		deps[i] = set

		if set.Cardinality() > 0 {
			if s.Type != types.Minimum {
				return nil, configErrorf("subtask %d: has dependencies but scoring mode is %v, not Minimum", i, s.Type)
			}
			for _, d := range set.ToSlice() {
				if subtasks[d].Type != types.Minimum {
					return nil, configErrorf("subtask %d: depends on subtask %d, which is not Minimum", i, d)
				}
				dependents[d] = append(dependents[d], i)
				indegree[i]++
			}
		}
	}

	// Kahn's algorithm, queue seeded in ascending index order for a
	// deterministic, stable tie-break.
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)

		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < n {
		return nil, configErrorf("loop detected in subtask dependency graph")
	}
	return order, nil
}

// Dependencies returns s's dependency indices as a golang-set, for
// callers that need set membership rather than a slice scan. Duplicate
// indices collapse; the indices are not validated here (TopoOrder does
// that).
func Dependencies(s *types.Subtask) mapset.Set[int] {
	return mapset.NewThreadUnsafeSet(s.Dependencies...)
}
