// Package fanout runs independent tasks concurrently and joins them.
//
// Tasks never cancel each other: a failing or panicking task only affects
// its own slot, which is how lookups against flaky services are isolated.
package fanout

import (
	"context"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

// Each calls fn(ctx, i) for every i in [0, n) on its own goroutine and blocks
// until all calls return. limit caps the number of tasks in flight; limit <= 0
// means no cap.
//
// The returned slice has one entry per task. An entry is non-nil only when
// that task panicked; the panic is recovered and converted to an error.
func Each(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		g.Go(func() error {
			var pc panics.Catcher
			pc.Try(func() { fn(ctx, i) })
			if r := pc.Recovered(); r != nil {
				errs[i] = r.AsError()
			}
			// Never report an error to the group: that would be the only
			// way for one task to influence another.
			return nil
		})
	}

	_ = g.Wait()
	return errs
}
