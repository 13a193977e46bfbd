package hornlog

import (
	"errors"
	"fmt"
)

// Unification failure taxonomy. Every failure is local and recoverable:
// the solver abandons the current clause candidate and backtracks, and
// no failure is ever surfaced to a query caller as an error. The
// sentinels exist so tests and tracing can distinguish why a candidate
// was rejected, via errors.Is.
var (
	// ErrOccursCheck reports an attempt to bind a variable to a term
	// containing that same variable, which would create an infinite
	// term.
	ErrOccursCheck = errors.New("hornlog: occurs check failed")

	// ErrConstantMismatch reports two constants with different values.
	ErrConstantMismatch = errors.New("hornlog: constant mismatch")

	// ErrFunctorMismatch reports two function terms (or two atoms) with
	// different symbols.
	ErrFunctorMismatch = errors.New("hornlog: functor mismatch")

	// ErrArityMismatch reports two function terms (or two atoms) with
	// the same symbol but different argument counts.
	ErrArityMismatch = errors.New("hornlog: arity mismatch")

	// ErrKindMismatch reports structurally incompatible term kinds,
	// such as a constant against a function term.
	ErrKindMismatch = errors.New("hornlog: incompatible term kinds")
)

// Unify computes the most general extension of sub that makes t1 and t2
// syntactically identical, or reports why none exists. A nil sub is
// treated as empty. On failure the returned substitution is nil and sub
// is observably unchanged; partial bindings from a failed argument-wise
// unification are never visible because extension is copy-on-write.
//
// Example:
//
//	x := Fresh("X")
//	sub, err := Unify(x, NewConstant("homer"), NewSubstitution())
//	// err == nil, sub.Resolve(x) is the constant homer
func Unify(t1, t2 Term, sub *Substitution) (*Substitution, error) {
	if sub == nil {
		sub = NewSubstitution()
	}
	if t1 == nil || t2 == nil {
		return nil, fmt.Errorf("%w: nil term", ErrKindMismatch)
	}

	a := sub.Resolve(t1)
	b := sub.Resolve(t2)

	if av, ok := a.(*Variable); ok {
		if bv, ok := b.(*Variable); ok && av.id == bv.id {
			return sub, nil
		}
		return bindChecked(av, b, sub)
	}
	if bv, ok := b.(*Variable); ok {
		return bindChecked(bv, a, sub)
	}

	switch at := a.(type) {
	case *Constant:
		if bc, ok := b.(*Constant); ok {
			if at.Equal(bc) {
				return sub, nil
			}
			return nil, fmt.Errorf("%w: %s vs %s", ErrConstantMismatch, at, bc)
		}
	case *Function:
		if bf, ok := b.(*Function); ok {
			if at.functor != bf.functor {
				return nil, fmt.Errorf("%w: %s vs %s", ErrFunctorMismatch, at.functor, bf.functor)
			}
			if len(at.args) != len(bf.args) {
				return nil, fmt.Errorf("%w: %s/%d vs %s/%d",
					ErrArityMismatch, at.functor, len(at.args), bf.functor, len(bf.args))
			}
			return unifyArgs(at.args, bf.args, sub)
		}
	}

	return nil, fmt.Errorf("%w: %s vs %s", ErrKindMismatch, a, b)
}

// UnifyAtoms unifies two atoms: the predicate symbols and arities must
// match, then the arguments are unified pairwise left to right,
// threading the substitution through each position. The same failure
// taxonomy as Unify applies, with the predicate symbol playing the role
// of the functor.
func UnifyAtoms(a, b *Atom, sub *Substitution) (*Substitution, error) {
	if sub == nil {
		sub = NewSubstitution()
	}
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil atom", ErrKindMismatch)
	}
	if a.predicate != b.predicate {
		return nil, fmt.Errorf("%w: %s vs %s", ErrFunctorMismatch, a.predicate, b.predicate)
	}
	if len(a.args) != len(b.args) {
		return nil, fmt.Errorf("%w: %s/%d vs %s/%d",
			ErrArityMismatch, a.predicate, len(a.args), b.predicate, len(b.args))
	}
	return unifyArgs(a.args, b.args, sub)
}

// unifyArgs unifies two equal-length argument lists left to right. The
// first failing position aborts; the caller's substitution is untouched
// because every extension happened on private copies.
func unifyArgs(args1, args2 []Term, sub *Substitution) (*Substitution, error) {
	current := sub
	for i := range args1 {
		next, err := Unify(args1[i], args2[i], current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// bindChecked binds v to t after the occurs-check. t is already fully
// resolved, so a plain structural scan suffices.
func bindChecked(v *Variable, t Term, sub *Substitution) (*Substitution, error) {
	if occursIn(v, t) {
		return nil, fmt.Errorf("%w: %s occurs in %s", ErrOccursCheck, v, t)
	}
	return sub.Bind(v, t), nil
}

// occursIn reports whether variable v appears anywhere in the resolved
// term t.
func occursIn(v *Variable, t Term) bool {
	switch tt := t.(type) {
	case *Variable:
		return tt.id == v.id
	case *Function:
		for _, arg := range tt.args {
			if occursIn(v, arg) {
				return true
			}
		}
	}
	return false
}
