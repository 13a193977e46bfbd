// Package hornlog provides a backward-chaining resolution engine over
// Horn-clause first-order logic. A knowledge base holds facts and rules;
// the solver proves goal atoms (or conjunctions of atoms) against it and
// enumerates the variable substitutions that make them true.
//
// The package follows the classical structure of a Prolog-style engine:
//   - Terms: variables, constants, and function terms
//   - Atoms: predicate applications over terms
//   - Clauses: facts (empty body) and rules (head implied by body)
//   - Unification: most general unifier with occurs-check
//   - Resolution: depth-first backward chaining with cycle detection
//
// Answers are produced lazily through channel-backed streams, so callers
// may take one answer, inspect it, and decide whether to request the
// next; the search suspends between answers. The engine covers definite
// Horn clauses only: no negation, no disjunctive heads, no equality
// theory.
package hornlog

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Term represents a first-order logic term: a variable, a constant, or a
// function term. Terms are immutable once constructed, which makes them
// safe to share across goroutines without copying.
type Term interface {
	// String returns a human-readable representation of the term.
	String() string

	// Equal checks if this term is structurally equal to another term.
	// This is a strict equality check, not unification: variables are
	// equal only to themselves.
	Equal(other Term) bool

	// IsVar returns true if this term is a logic variable.
	IsVar() bool

	// collectVars accumulates the distinct variables of the term in
	// first-occurrence order. Unexported so that only this package can
	// implement Term.
	collectVars(seen map[int64]struct{}, acc []*Variable) []*Variable
}

// Variable counter for generating unique variable identities.
var varCounter int64

// Variable represents a logic variable. Each variable carries a globally
// unique identity; the name is for display only and never participates
// in equality, unification, or the occurs-check. Two variables with the
// same name are still distinct if their identities differ.
type Variable struct {
	id   int64  // Unique identity
	name string // Optional name for display
}

// Fresh creates a new logic variable with an optional display name.
// Each call generates a variable with a globally unique identity, so no
// two variables conflict even when minted concurrently.
//
// Example:
//
//	x := Fresh("X")  // a variable displayed as _X_<n>
//	y := Fresh("")   // an anonymous variable
func Fresh(name string) *Variable {
	id := atomic.AddInt64(&varCounter, 1)
	return &Variable{id: id, name: name}
}

// ID returns the variable's unique identity.
func (v *Variable) ID() int64 {
	return v.id
}

// Name returns the variable's display name, which may be empty.
func (v *Variable) Name() string {
	return v.name
}

// String returns a string representation of the variable.
func (v *Variable) String() string {
	if v.name != "" {
		return fmt.Sprintf("_%s_%d", v.name, v.id)
	}
	return fmt.Sprintf("_%d", v.id)
}

// Equal checks if two variables are the same variable.
func (v *Variable) Equal(other Term) bool {
	if otherVar, ok := other.(*Variable); ok {
		return v.id == otherVar.id
	}
	return false
}

// IsVar always returns true for variables.
func (v *Variable) IsVar() bool {
	return true
}

func (v *Variable) collectVars(seen map[int64]struct{}, acc []*Variable) []*Variable {
	if _, ok := seen[v.id]; ok {
		return acc
	}
	seen[v.id] = struct{}{}
	return append(acc, v)
}

// Constant represents an atomic value: a symbol, number, string, or any
// other comparable Go value. Constants are immutable and denote
// themselves; two constants are equal when their values are equal.
type Constant struct {
	value interface{}
}

// NewConstant creates a constant from any comparable Go value.
func NewConstant(value interface{}) *Constant {
	return &Constant{value: value}
}

// Value returns the underlying Go value.
func (c *Constant) Value() interface{} {
	return c.value
}

// String returns a string representation of the constant.
func (c *Constant) String() string {
	return fmt.Sprintf("%v", c.value)
}

// Equal checks if two constants have the same value.
func (c *Constant) Equal(other Term) bool {
	if otherConst, ok := other.(*Constant); ok {
		return c.value == otherConst.value
	}
	return false
}

// IsVar always returns false for constants.
func (c *Constant) IsVar() bool {
	return false
}

func (c *Constant) collectVars(seen map[int64]struct{}, acc []*Variable) []*Variable {
	return acc
}

// Function represents a function term: a functor symbol applied to an
// ordered sequence of argument terms. The arity is the argument count;
// f(a) and f(a, b) are unrelated terms.
type Function struct {
	functor string
	args    []Term
}

// NewFunction creates a function term from a functor symbol and its
// arguments. The argument slice is captured as given; callers must not
// modify it afterwards.
func NewFunction(functor string, args ...Term) *Function {
	return &Function{functor: functor, args: args}
}

// Functor returns the function symbol.
func (f *Function) Functor() string {
	return f.functor
}

// Args returns the argument terms. The returned slice is the term's own
// backing storage and must not be modified.
func (f *Function) Args() []Term {
	return f.args
}

// Arity returns the number of arguments.
func (f *Function) Arity() int {
	return len(f.args)
}

// String returns a string representation such as "add(one, two)".
func (f *Function) String() string {
	if len(f.args) == 0 {
		return f.functor
	}
	parts := make([]string, len(f.args))
	for i, arg := range f.args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", f.functor, strings.Join(parts, ", "))
}

// Equal checks structural equality: same functor, same arity, and
// pairwise equal arguments.
func (f *Function) Equal(other Term) bool {
	otherFn, ok := other.(*Function)
	if !ok {
		return false
	}
	if f.functor != otherFn.functor || len(f.args) != len(otherFn.args) {
		return false
	}
	for i, arg := range f.args {
		if !arg.Equal(otherFn.args[i]) {
			return false
		}
	}
	return true
}

// IsVar always returns false for function terms.
func (f *Function) IsVar() bool {
	return false
}

func (f *Function) collectVars(seen map[int64]struct{}, acc []*Variable) []*Variable {
	for _, arg := range f.args {
		acc = arg.collectVars(seen, acc)
	}
	return acc
}

// Vars returns the distinct variables of a term in first-occurrence
// order.
func Vars(t Term) []*Variable {
	if t == nil {
		return nil
	}
	return t.collectVars(make(map[int64]struct{}), nil)
}

// IsGround reports whether a term contains no variables.
func IsGround(t Term) bool {
	if t == nil {
		return true
	}
	return len(t.collectVars(make(map[int64]struct{}), nil)) == 0
}

// Atom is a predicate application: a predicate symbol over an ordered
// sequence of term arguments. Atoms are the units that clauses and
// queries are made of; they are not themselves terms.
type Atom struct {
	predicate string
	args      []Term
}

// NewAtom creates an atom from a predicate symbol and its arguments.
// The argument slice is captured as given; callers must not modify it
// afterwards.
//
// Example:
//
//	father := NewAtom("father", NewConstant("abe"), NewConstant("homer"))
func NewAtom(predicate string, args ...Term) *Atom {
	return &Atom{predicate: predicate, args: args}
}

// Predicate returns the predicate symbol.
func (a *Atom) Predicate() string {
	return a.predicate
}

// Args returns the argument terms. The returned slice is the atom's own
// backing storage and must not be modified.
func (a *Atom) Args() []Term {
	return a.args
}

// Arity returns the number of arguments.
func (a *Atom) Arity() int {
	return len(a.args)
}

// Indicator returns the (predicate symbol, arity) key that identifies
// this atom's clause bucket in a knowledge base.
func (a *Atom) Indicator() Indicator {
	return Indicator{Name: a.predicate, Arity: len(a.args)}
}

// IsGround reports whether no variable appears anywhere in the atom's
// arguments.
func (a *Atom) IsGround() bool {
	return len(a.Vars()) == 0
}

// Vars returns the distinct variables of the atom in first-occurrence
// order across its arguments.
func (a *Atom) Vars() []*Variable {
	seen := make(map[int64]struct{})
	var acc []*Variable
	for _, arg := range a.args {
		acc = arg.collectVars(seen, acc)
	}
	return acc
}

// Equal checks structural equality of two atoms.
func (a *Atom) Equal(other *Atom) bool {
	if other == nil {
		return false
	}
	if a.predicate != other.predicate || len(a.args) != len(other.args) {
		return false
	}
	for i, arg := range a.args {
		if !arg.Equal(other.args[i]) {
			return false
		}
	}
	return true
}

// String returns a representation such as "father(abe, homer)".
func (a *Atom) String() string {
	if len(a.args) == 0 {
		return a.predicate
	}
	parts := make([]string, len(a.args))
	for i, arg := range a.args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.predicate, strings.Join(parts, ", "))
}

// Clause is a definite Horn clause: a head atom together with a body of
// zero or more atoms that conjunctively imply it. An empty body makes
// the clause a fact. Variables are local to the clause; the solver
// renames them fresh on every use.
type Clause struct {
	head *Atom
	body []*Atom
}

// Fact creates a clause with an empty body.
func Fact(head *Atom) *Clause {
	return &Clause{head: head}
}

// Rule creates a clause whose head holds whenever every body atom holds.
// The body slice is captured as given; callers must not modify it
// afterwards.
//
// Example:
//
//	x, y := Fresh("X"), Fresh("Y")
//	parent := Rule(
//	    NewAtom("parent", x, y),
//	    NewAtom("father", x, y),
//	)
func Rule(head *Atom, body ...*Atom) *Clause {
	return &Clause{head: head, body: body}
}

// Head returns the clause head.
func (c *Clause) Head() *Atom {
	return c.head
}

// Body returns the clause body atoms. The returned slice is the
// clause's own backing storage and must not be modified.
func (c *Clause) Body() []*Atom {
	return c.body
}

// IsFact reports whether the clause has an empty body.
func (c *Clause) IsFact() bool {
	return len(c.body) == 0
}

// Vars returns the distinct variables of the clause, head first, in
// first-occurrence order.
func (c *Clause) Vars() []*Variable {
	seen := make(map[int64]struct{})
	var acc []*Variable
	if c.head != nil {
		for _, arg := range c.head.args {
			acc = arg.collectVars(seen, acc)
		}
	}
	for _, atom := range c.body {
		for _, arg := range atom.args {
			acc = arg.collectVars(seen, acc)
		}
	}
	return acc
}

// String returns "head" for facts and "head :- b1, b2" for rules.
func (c *Clause) String() string {
	if c.head == nil {
		return "<invalid clause>"
	}
	if len(c.body) == 0 {
		return c.head.String()
	}
	parts := make([]string, len(c.body))
	for i, atom := range c.body {
		parts[i] = atom.String()
	}
	return fmt.Sprintf("%s :- %s", c.head.String(), strings.Join(parts, ", "))
}

// sortedVarIDs returns the binding keys of a substitution in ascending
// order, for deterministic printing.
func sortedVarIDs(bindings map[int64]Term) []int64 {
	ids := make([]int64, 0, len(bindings))
	for id := range bindings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
