package hornlog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SolverConfig holds configuration for query evaluation.
type SolverConfig struct {
	// Workers is the number of candidate-clause branches explored
	// concurrently per goal. 0 or 1 selects the sequential resolver,
	// which guarantees answers in clause insertion order. Values above
	// 1 trade that ordering guarantee for throughput.
	Workers int

	// Logger receives proof-step tracing at Debug level. If nil, a
	// no-op logger is used.
	Logger *zap.Logger
}

// DefaultSolverConfig returns the sequential, untraced configuration.
func DefaultSolverConfig() *SolverConfig {
	return &SolverConfig{
		Workers: 1,
		Logger:  nil,
	}
}

// Solver proves goals against a knowledge base by backward chaining:
// it matches a goal atom against clause heads, and for each match
// recursively proves the clause body, threading the substitution
// forward and backtracking on failure. Recursion on a goal whose
// signature is already being proved on the same branch is cut off by a
// cycle guard, which bounds the search on self-referential rules.
//
// The knowledge base is read, never written, during a query; the same
// Solver may serve concurrent queries.
type Solver struct {
	kb      *KnowledgeBase
	logger  *zap.Logger
	workers int
}

// NewSolver creates a solver over the given knowledge base. A nil
// config selects DefaultSolverConfig.
//
// Example:
//
//	kb := NewKnowledgeBase()
//	// ... AddClause calls ...
//	solver := NewSolver(kb, nil)
//	answers := solver.AskAll(ctx, NewAtom("ancestor", Fresh("X"), NewConstant("bart")))
func NewSolver(kb *KnowledgeBase, config *SolverConfig) *Solver {
	if config == nil {
		config = DefaultSolverConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Solver{
		kb:      kb,
		logger:  logger,
		workers: workers,
	}
}

// Ask proves a single goal atom, starting from the empty substitution,
// and returns the lazy stream of satisfying substitutions. The stream
// is finite: the cycle guard bounds recursion and the knowledge base is
// finite. An unprovable goal yields an empty stream, never an error.
//
// Callers that stop consuming before exhaustion must Close the stream
// (or cancel ctx) so the producing search is released.
func (s *Solver) Ask(ctx context.Context, goal *Atom) *Stream {
	return s.AskConjunction(ctx, goal)
}

// AskConjunction proves an ordered conjunction of goal atoms, starting
// from the empty substitution. An empty conjunction is vacuously true
// and yields the empty substitution once. The same consumption contract
// as Ask applies.
func (s *Solver) AskConjunction(ctx context.Context, goals ...*Atom) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	out := NewStream()
	out.cancel = cancel

	go func() {
		defer out.Close()
		inner := s.proveConjunction(ctx, goals, NewSubstitution(), nil)
		forward(ctx, out, inner)
	}()

	return out
}

// AskN proves a goal and returns up to n answers as a slice, releasing
// the search once they are taken.
func (s *Solver) AskN(ctx context.Context, n int, goal *Atom) []*Substitution {
	return s.AskConjunctionN(ctx, n, goal)
}

// AskConjunctionN proves a conjunction and returns up to n answers.
func (s *Solver) AskConjunctionN(ctx context.Context, n int, goals ...*Atom) []*Substitution {
	if n <= 0 {
		return nil
	}
	stream := s.AskConjunction(ctx, goals...)
	defer stream.Close()
	subs, _ := stream.Take(n)
	return subs
}

// AskAll proves a goal and returns every answer. The result is finite
// for the same reason Ask's stream is.
func (s *Solver) AskAll(ctx context.Context, goal *Atom) []*Substitution {
	return s.AskConjunctionAll(ctx, goal)
}

// AskConjunctionAll proves a conjunction and returns every answer.
func (s *Solver) AskConjunctionAll(ctx context.Context, goals ...*Atom) []*Substitution {
	stream := s.AskConjunction(ctx, goals...)
	defer stream.Close()
	return stream.TakeAll(ctx)
}

// Provable reports whether the goal has at least one answer.
func (s *Solver) Provable(ctx context.Context, goal *Atom) bool {
	return len(s.AskN(ctx, 1, goal)) > 0
}

// proveConjunction proves an ordered sequence of atoms under sub and
// env. The empty sequence succeeds once with sub (vacuous truth).
// Otherwise the first atom is proved, and for each substitution it
// yields the remaining atoms are proved under that substitution. This
// realizes depth-first search with chronological backtracking: when a
// later atom fails, its substitution is discarded and the earlier atom
// advances to its next candidate.
func (s *Solver) proveConjunction(ctx context.Context, goals []*Atom, sub *Substitution, env proofEnv) *Stream {
	stream := NewStream()

	go func() {
		defer stream.Close()

		if len(goals) == 0 {
			s.logger.Debug("conjunction satisfied", zap.Stringer("bindings", sub))
			stream.Put(ctx, sub)
			return
		}

		first, rest := goals[0], goals[1:]
		firstStream := s.proveGoal(ctx, first, sub, env)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			subs, hasMore := firstStream.Take(1)
			if len(subs) == 0 {
				return
			}

			restStream := s.proveConjunction(ctx, rest, subs[0], env)
			if !forward(ctx, stream, restStream) {
				return
			}

			if !hasMore {
				return
			}
		}
	}()

	return stream
}

// proveGoal proves a single atom under sub and env. Candidate clauses
// are taken from the goal's (predicate, arity) bucket in insertion
// order; each is renamed fresh, its head unified with the goal, and on
// success its body proved as a conjunction. A goal whose signature is
// already on the active branch yields nothing (cycle). Failure at
// every candidate yields an empty stream; nothing here is an error.
func (s *Solver) proveGoal(ctx context.Context, goal *Atom, sub *Substitution, env proofEnv) *Stream {
	stream := NewStream()

	go func() {
		defer stream.Close()

		if goal == nil {
			return
		}

		sig := goalSignature(goal, sub)
		if env.contains(sig) {
			s.logger.Debug("cycle detected, cutting branch", zap.String("goal", sig))
			return
		}
		branchEnv := env.with(sig)

		candidates := s.kb.ClausesFor(goal.Indicator())
		if len(candidates) == 0 {
			s.logger.Debug("no candidate clauses", zap.String("goal", sig))
			return
		}
		s.logger.Debug("proving goal",
			zap.String("goal", sig),
			zap.Int("candidates", len(candidates)))

		if s.workers > 1 && len(candidates) > 1 {
			s.proveCandidatesParallel(ctx, stream, goal, sub, branchEnv, candidates)
			return
		}

		for _, clause := range candidates {
			select {
			case <-ctx.Done():
				return
			default:
			}

			renamed := renameClause(clause)
			extended, err := UnifyAtoms(goal, renamed.head, sub)
			if err != nil {
				s.logger.Debug("candidate rejected",
					zap.String("goal", sig),
					zap.Stringer("clause", clause),
					zap.Error(err))
				continue
			}

			bodyStream := s.proveConjunction(ctx, renamed.body, extended, branchEnv)
			if !forward(ctx, stream, bodyStream) {
				return
			}
		}
	}()

	return stream
}

// proofEnv is the per-branch cycle guard: the set of goal signatures
// currently being proved by ancestor calls on this search branch. It is
// extended copy-on-write as the proof descends, so sibling branches
// never observe each other's entries and no popping is needed on the
// way back up. A nil env is empty.
type proofEnv map[string]struct{}

func (e proofEnv) contains(sig string) bool {
	_, ok := e[sig]
	return ok
}

func (e proofEnv) with(sig string) proofEnv {
	next := make(proofEnv, len(e)+1)
	for k := range e {
		next[k] = struct{}{}
	}
	next[sig] = struct{}{}
	return next
}

// goalSignature returns the canonical signature of a goal under a
// substitution: predicate symbol, arity, and the resolved arguments
// with variables abstracted to positional placeholders (X0, X1, ...)
// by first occurrence. Goals that differ only by variable renaming
// therefore produce the same signature, which is what lets the cycle
// guard recognize a self-referential rule re-proving its own goal.
//
// Example: ancestor(V17, bart) under an empty substitution yields
// "ancestor/2(X0,c(bart))".
func goalSignature(goal *Atom, sub *Substitution) string {
	varMap := make(map[int64]int)
	nextPos := 0
	parts := make([]string, len(goal.args))
	for i, arg := range goal.args {
		parts[i] = canonicalTerm(sub.Resolve(arg), varMap, &nextPos)
	}
	return fmt.Sprintf("%s/%d(%s)", goal.predicate, len(goal.args), strings.Join(parts, ","))
}

// canonicalTerm renders a resolved term with variables mapped to
// canonical positions by first occurrence.
func canonicalTerm(t Term, varMap map[int64]int, nextPos *int) string {
	switch tt := t.(type) {
	case *Variable:
		if pos, ok := varMap[tt.id]; ok {
			return fmt.Sprintf("X%d", pos)
		}
		pos := *nextPos
		varMap[tt.id] = pos
		*nextPos++
		return fmt.Sprintf("X%d", pos)
	case *Constant:
		return fmt.Sprintf("c(%v)", tt.value)
	case *Function:
		parts := make([]string, len(tt.args))
		for i, arg := range tt.args {
			parts[i] = canonicalTerm(arg, varMap, nextPos)
		}
		return fmt.Sprintf("%s(%s)", tt.functor, strings.Join(parts, ","))
	}
	return "nil"
}

// renameClause returns a structurally identical clause with every
// variable replaced by a freshly minted one. The replacement is
// consistent within the instance (each source variable maps to one
// fresh variable everywhere it occurs) and independent across separate
// renamings, which prevents variable capture between sibling branches
// reusing the same rule.
func renameClause(c *Clause) *Clause {
	mapping := make(map[int64]*Variable)
	head := renameAtom(c.head, mapping)
	var body []*Atom
	if len(c.body) > 0 {
		body = make([]*Atom, len(c.body))
		for i, atom := range c.body {
			body[i] = renameAtom(atom, mapping)
		}
	}
	return &Clause{head: head, body: body}
}

func renameAtom(a *Atom, mapping map[int64]*Variable) *Atom {
	if a == nil {
		return nil
	}
	args := make([]Term, len(a.args))
	for i, arg := range a.args {
		args[i] = renameTerm(arg, mapping)
	}
	return &Atom{predicate: a.predicate, args: args}
}

func renameTerm(t Term, mapping map[int64]*Variable) Term {
	switch tt := t.(type) {
	case *Variable:
		if fresh, ok := mapping[tt.id]; ok {
			return fresh
		}
		fresh := Fresh(tt.name)
		mapping[tt.id] = fresh
		return fresh
	case *Function:
		args := make([]Term, len(tt.args))
		for i, arg := range tt.args {
			args[i] = renameTerm(arg, mapping)
		}
		return &Function{functor: tt.functor, args: args}
	default:
		return t
	}
}

// Answers projects each substitution onto the given query variables,
// producing one name-to-term map per answer. This is the conventional
// final step before presenting results: clause-internal fresh variables
// disappear and only the caller's own variables remain.
func Answers(subs []*Substitution, vars ...*Variable) []map[string]Term {
	out := make([]map[string]Term, len(subs))
	for i, sub := range subs {
		out[i] = sub.Project(vars)
	}
	return out
}
