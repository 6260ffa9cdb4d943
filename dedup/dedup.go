// Package dedup implements the per-run testcase deduplicator (§4.C):
// every distinct case name is evaluated at most once per judge run, no
// matter how many subtasks reference it or how their runners overlap in
// time.
//
// golang.org/x/sync/singleflight collapses concurrent calls for the same
// key into one, which is exactly the "outstanding evaluation" half of the
// invariant. It does not by itself give permanent memoization: once a
// singleflight call returns, the key is forgotten and a later,
// non-overlapping caller would re-run it. Judge closes that gap with a
// small persistent result cache, checked both before entering
// singleflight (fast path) and again from inside the shared call (to
// close the race where a prior call finished and was forgotten between
// the fast-path check and singleflight.Do actually running the
// function).
package dedup

import (
	"sync"

	"github.com/hotwords123/judge-v3/types"
	"golang.org/x/sync/singleflight"
)

type cached struct {
	details *types.TestcaseDetails
	err     error
}

// Deduplicator shares evaluations by testcase name for the lifetime of
// one judge run. The zero value is not usable; construct with New.
type Deduplicator struct {
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cached
}

// New creates an empty Deduplicator, scoped to a single judge run.
func New() *Deduplicator {
	return &Deduplicator{cache: make(map[string]cached)}
}

func (d *Deduplicator) lookup(name string) (cached, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cache[name]
	return c, ok
}

func (d *Deduplicator) store(name string, c cached) {
	d.mu.Lock()
	d.cache[name] = c
	d.mu.Unlock()
}

// Judge returns the (shared) result of judging testcase name. eval is
// called at most once for the lifetime of d, by whichever caller reaches
// it first; every other, concurrent or later, caller observes the same
// (details, err) without eval running again. Any "started" signal for
// the underlying evaluation belongs inside eval itself (it is the
// runner transport, not the act of being chosen by this deduplicator,
// that knows when execution actually begins) — Judge only guarantees
// eval's single invocation, not a separate notification of its own.
func (d *Deduplicator) Judge(name string, eval func() (*types.TestcaseDetails, error)) (*types.TestcaseDetails, error) {
	if c, ok := d.lookup(name); ok {
		return c.details, c.err
	}

	v, err, _ := d.group.Do(name, func() (any, error) {
		// Re-check: a prior singleflight window for this name may have
		// completed and been forgotten between our fast-path lookup
		// above and this call actually running.
		if c, ok := d.lookup(name); ok {
			return c.details, c.err
		}

		details, evalErr := eval()
		d.store(name, cached{details: details, err: evalErr})
		return details, evalErr
	})

	if v == nil {
		return nil, err
	}
	return v.(*types.TestcaseDetails), err
}
