package hornlog

import (
	"fmt"
	"strings"
)

// Substitution represents a mapping from variable identities to terms,
// built incrementally during unification and resolution. Substitutions
// are extended copy-on-write: Bind returns a new substitution and the
// receiver is observably unchanged, so a failed unification can simply
// discard its private extension. Because no substitution is mutated
// after it is returned, substitutions are safe to share across
// goroutines without locking.
//
// Invariant (occurs-check): no binding maps a variable to a term that,
// after full resolution, contains that same variable. Unify enforces
// this, which is what guarantees Walk and Resolve terminate.
type Substitution struct {
	bindings map[int64]Term
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{
		bindings: make(map[int64]Term),
	}
}

// Clone creates an independent copy of the substitution. Terms are
// immutable, so the copy shares them structurally.
func (s *Substitution) Clone() *Substitution {
	newBindings := make(map[int64]Term, len(s.bindings))
	for k, v := range s.bindings {
		newBindings[k] = v
	}
	return &Substitution{bindings: newBindings}
}

// Lookup returns the term bound to a variable, or nil if unbound.
func (s *Substitution) Lookup(v *Variable) Term {
	return s.bindings[v.id]
}

// Bind returns a new substitution extended with v bound to term. The
// receiver is not modified. Binding a variable to itself is a no-op and
// returns the receiver unchanged.
func (s *Substitution) Bind(v *Variable, term Term) *Substitution {
	if tv, ok := term.(*Variable); ok && tv.id == v.id {
		return s
	}
	newSub := s.Clone()
	newSub.bindings[v.id] = term
	return newSub
}

// Walk follows variable bindings until reaching an unbound variable or
// a non-variable term. It does not descend into function arguments; use
// Resolve for that.
func (s *Substitution) Walk(term Term) Term {
	if term == nil || !term.IsVar() {
		return term
	}
	v := term.(*Variable)
	if bound := s.Lookup(v); bound != nil {
		return s.Walk(bound)
	}
	return term
}

// Resolve walks a term to its most-resolved form under the
// substitution: variable chains are followed and function arguments are
// resolved recursively. Resolving an already fully resolved term
// returns an equivalent term (fixed point). Termination is guaranteed
// by the occurs-check invariant, which forbids binding cycles.
func (s *Substitution) Resolve(term Term) Term {
	walked := s.Walk(term)
	if fn, ok := walked.(*Function); ok {
		args := make([]Term, len(fn.args))
		for i, arg := range fn.args {
			args[i] = s.Resolve(arg)
		}
		return &Function{functor: fn.functor, args: args}
	}
	return walked
}

// ResolveAtom applies the substitution to every argument of an atom,
// returning the fully resolved atom. Used when reporting answers and
// when computing goal signatures.
func (s *Substitution) ResolveAtom(a *Atom) *Atom {
	if a == nil {
		return nil
	}
	args := make([]Term, len(a.args))
	for i, arg := range a.args {
		args[i] = s.Resolve(arg)
	}
	return &Atom{predicate: a.predicate, args: args}
}

// Project returns the fully resolved bindings for the given variables,
// keyed by display name. A variable with no binding maps to itself.
// Answers to a query are conventionally projected onto the variables of
// the original goal, hiding clause-internal fresh variables.
func (s *Substitution) Project(vars []*Variable) map[string]Term {
	out := make(map[string]Term, len(vars))
	for _, v := range vars {
		if v == nil {
			continue
		}
		key := v.name
		if key == "" {
			key = v.String()
		}
		out[key] = s.Resolve(v)
	}
	return out
}

// Size returns the number of bindings in the substitution.
func (s *Substitution) Size() int {
	return len(s.bindings)
}

// String returns a deterministic representation of the substitution,
// bindings ordered by variable identity.
func (s *Substitution) String() string {
	if len(s.bindings) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{")
	for i, id := range sortedVarIDs(s.bindings) {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "_%d=%s", id, s.bindings[id].String())
	}
	b.WriteString("}")
	return b.String()
}
