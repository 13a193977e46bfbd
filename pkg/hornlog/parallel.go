package hornlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/gitrdm/gohorn/internal/parallel"
)

// proveCandidatesParallel explores candidate clauses for one goal
// concurrently, bounded by the solver's worker count. Each branch
// receives the same substitution and environment; both are extended
// copy-on-write, so branches never observe each other's bindings or
// guard entries. Answers from all branches interleave into out in
// whatever order branches produce them, so parallel mode does not
// preserve clause insertion order.
func (s *Solver) proveCandidatesParallel(ctx context.Context, out *Stream, goal *Atom, sub *Substitution, env proofEnv, candidates []*Clause) {
	group, _ := parallel.NewBranchGroup(ctx, s.workers)

	for _, clause := range candidates {
		group.Go(func(branchCtx context.Context) {
			renamed := renameClause(clause)
			extended, err := UnifyAtoms(goal, renamed.head, sub)
			if err != nil {
				s.logger.Debug("candidate rejected",
					zap.Stringer("goal", goal),
					zap.Stringer("clause", clause),
					zap.Error(err))
				return
			}
			bodyStream := s.proveConjunction(branchCtx, renamed.body, extended, env)
			forward(branchCtx, out, bodyStream)
		})
	}

	group.Wait()
}
