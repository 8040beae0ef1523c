// Package coalesce provides single-flight request coalescing: at most one
// in-flight producer call per key, with every concurrent caller for that
// key observing the same eventual result.
package coalesce

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group coalesces concurrent calls by key. The zero value is ready to use.
// It is safe for concurrent use.
//
// Typical usage:
//
//	var g coalesce.Group[[]byte]
//	data, shared, err := g.Do(ctx, "properties:all", func(ctx context.Context) ([]byte, error) {
//	    return expensiveFetch(ctx)
//	})
type Group[T any] struct {
	sf singleflight.Group
}

// Do invokes fn for key, unless a call for key is already in flight, in
// which case the caller attaches to that call's outcome instead. All
// attached callers receive the identical value or identical error; shared
// reports whether the result was shared with other callers.
//
// The producer runs with the context of the caller that started it, so a
// timeout on that one call is the timeout every waiter observes. The slot
// is dropped the instant fn settles, success or failure, so a failed call
// never poisons the next attempt.
//
// A caller whose own ctx expires while waiting detaches with ctx.Err();
// the in-flight producer is not interrupted and other waiters still get
// its result.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, bool, error) {
	ch := g.sf.DoChan(key, func() (any, error) {
		return fn(ctx)
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		v, _ := res.Val.(T)
		return v, res.Shared, nil
	}
}

// Forget drops any in-flight slot for key, so the next Do starts a fresh
// producer call rather than attaching.
func (g *Group[T]) Forget(key string) {
	g.sf.Forget(key)
}
