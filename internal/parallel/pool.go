// Package parallel provides bounded concurrent execution for solver
// search branches. It is internal plumbing: the solver decides what a
// branch is, this package only runs branches with a concurrency cap
// and shared cancellation.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BranchGroup runs branch functions with at most maxActive executing
// concurrently. All branches share a derived context that is cancelled
// when the parent context is, so abandoned searches release their
// branches promptly.
type BranchGroup struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewBranchGroup creates a branch group under ctx. maxActive <= 0 means
// no cap. The returned context is the one branches observe; callers
// that spawn work outside Go should watch it too.
func NewBranchGroup(ctx context.Context, maxActive int) (*BranchGroup, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if maxActive > 0 {
		g.SetLimit(maxActive)
	}
	return &BranchGroup{g: g, ctx: gctx}, gctx
}

// Go schedules a branch. When the concurrency cap is reached, Go blocks
// until a running branch finishes, which keeps candidate exploration
// bounded without queueing unbounded work.
func (bg *BranchGroup) Go(branch func(ctx context.Context)) {
	bg.g.Go(func() error {
		select {
		case <-bg.ctx.Done():
			return nil
		default:
		}
		branch(bg.ctx)
		return nil
	})
}

// Wait blocks until every scheduled branch has returned.
func (bg *BranchGroup) Wait() {
	_ = bg.g.Wait()
}
