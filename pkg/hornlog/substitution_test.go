package hornlog

import (
	"fmt"
	"testing"
)

// TestSubstitutionBind tests copy-on-extend binding.
func TestSubstitutionBind(t *testing.T) {
	t.Run("Bind does not mutate the original", func(t *testing.T) {
		x := Fresh("x")
		s1 := NewSubstitution()
		s2 := s1.Bind(x, NewConstant("homer"))

		if s1.Size() != 0 {
			t.Error("Original substitution should be unchanged")
		}
		if s2.Size() != 1 {
			t.Error("Extended substitution should hold one binding")
		}
		if s1.Lookup(x) != nil {
			t.Error("Original substitution should not see the new binding")
		}
		if got := s2.Lookup(x); got == nil || !got.Equal(NewConstant("homer")) {
			t.Error("Extended substitution should resolve the binding")
		}
	})

	t.Run("Sibling extensions stay independent", func(t *testing.T) {
		x := Fresh("x")
		base := NewSubstitution()
		left := base.Bind(x, NewConstant("homer"))
		right := base.Bind(x, NewConstant("abe"))

		if !left.Lookup(x).Equal(NewConstant("homer")) || !right.Lookup(x).Equal(NewConstant("abe")) {
			t.Error("Sibling branches should not share bindings")
		}
	})

	t.Run("Self-binding is a no-op", func(t *testing.T) {
		x := Fresh("x")
		s := NewSubstitution().Bind(x, x)
		if s.Size() != 0 {
			t.Error("Binding a variable to itself should add nothing")
		}
	})
}

// TestSubstitutionWalk tests shallow chain following.
func TestSubstitutionWalk(t *testing.T) {
	t.Run("Follows variable chains", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		s := NewSubstitution().Bind(x, y).Bind(y, NewConstant("homer"))

		result := s.Walk(x)
		if !result.Equal(NewConstant("homer")) {
			t.Errorf("Walk should follow x -> y -> homer, got %s", result)
		}
	})

	t.Run("Unbound variable walks to itself", func(t *testing.T) {
		x := Fresh("x")
		s := NewSubstitution()
		if !s.Walk(x).Equal(x) {
			t.Error("Unbound variable should walk to itself")
		}
	})

	t.Run("Stops at function terms", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		f := NewFunction("f", y)
		s := NewSubstitution().Bind(x, f).Bind(y, NewConstant("a"))

		result := s.Walk(x)
		fn, ok := result.(*Function)
		if !ok {
			t.Fatalf("Walk should stop at the function term, got %T", result)
		}
		// Walk is shallow; the argument stays a variable.
		if !fn.Args()[0].Equal(y) {
			t.Error("Walk should not descend into function arguments")
		}
	})
}

// TestSubstitutionResolve tests deep resolution.
func TestSubstitutionResolve(t *testing.T) {
	t.Run("Resolves through function arguments", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		s := NewSubstitution().
			Bind(x, NewFunction("f", y)).
			Bind(y, NewConstant("a"))

		result := s.Resolve(x)
		want := NewFunction("f", NewConstant("a"))
		if !result.Equal(want) {
			t.Errorf("Expected f(a), got %s", result)
		}
	})

	t.Run("Resolve is idempotent", func(t *testing.T) {
		x, y, z := Fresh("x"), Fresh("y"), Fresh("z")
		s := NewSubstitution().
			Bind(x, NewFunction("g", y, z)).
			Bind(y, NewConstant("one")).
			Bind(z, NewFunction("h", y))

		once := s.Resolve(x)
		twice := s.Resolve(once)
		if !once.Equal(twice) {
			t.Errorf("Resolve should be idempotent: %s != %s", once, twice)
		}
	})

	t.Run("Partial resolution keeps free variables", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		s := NewSubstitution().Bind(x, NewFunction("f", y))

		result := s.Resolve(x)
		fn, ok := result.(*Function)
		if !ok {
			t.Fatalf("Expected function term, got %T", result)
		}
		if !fn.Args()[0].Equal(y) {
			t.Error("Unbound variable should survive resolution")
		}
	})

	t.Run("ResolveAtom resolves every argument", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		s := NewSubstitution().
			Bind(x, NewConstant("abe")).
			Bind(y, NewConstant("homer"))

		a := NewAtom("father", x, y)
		resolved := s.ResolveAtom(a)
		want := NewAtom("father", NewConstant("abe"), NewConstant("homer"))
		if !resolved.Equal(want) {
			t.Errorf("Expected father(abe, homer), got %s", resolved)
		}
		// The input atom is untouched.
		if !a.Args()[0].Equal(x) {
			t.Error("ResolveAtom should not mutate its input")
		}
	})
}

// TestSubstitutionProject tests answer projection onto query variables.
func TestSubstitutionProject(t *testing.T) {
	t.Run("Projects only the requested variables", func(t *testing.T) {
		x, y, internal := Fresh("X"), Fresh("Y"), Fresh("tmp")
		s := NewSubstitution().
			Bind(x, NewConstant("homer")).
			Bind(y, internal).
			Bind(internal, NewConstant("bart"))

		answer := s.Project([]*Variable{x, y})
		if len(answer) != 2 {
			t.Fatalf("Expected 2 projected bindings, got %d", len(answer))
		}
		if !answer["X"].Equal(NewConstant("homer")) {
			t.Errorf("Expected X=homer, got %s", answer["X"])
		}
		if !answer["Y"].Equal(NewConstant("bart")) {
			t.Errorf("Expected Y=bart resolved through the chain, got %s", answer["Y"])
		}
	})

	t.Run("Unbound query variable projects to itself", func(t *testing.T) {
		x := Fresh("X")
		answer := NewSubstitution().Project([]*Variable{x})
		if !answer["X"].Equal(x) {
			t.Error("Unbound variable should project to itself")
		}
	})

	t.Run("Anonymous variables keyed by display form", func(t *testing.T) {
		v := Fresh("")
		s := NewSubstitution().Bind(v, NewConstant("a"))
		answer := s.Project([]*Variable{v})
		if !answer[v.String()].Equal(NewConstant("a")) {
			t.Error("Nameless variable should be keyed by its string form")
		}
	})
}

// TestSubstitutionString tests deterministic rendering.
func TestSubstitutionString(t *testing.T) {
	t.Run("Empty substitution", func(t *testing.T) {
		if NewSubstitution().String() != "{}" {
			t.Errorf("Expected '{}', got %q", NewSubstitution().String())
		}
	})

	t.Run("Bindings ordered by variable identity", func(t *testing.T) {
		x, y := Fresh("x"), Fresh("y")
		s := NewSubstitution().
			Bind(y, NewConstant("b")).
			Bind(x, NewConstant("a"))

		// x was created before y, so x renders first regardless of bind order.
		got := s.String()
		want := fmt.Sprintf("{_%d=a, _%d=b}", x.ID(), y.ID())
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	})
}

// TestSubstitutionClone tests that clones are detached.
func TestSubstitutionClone(t *testing.T) {
	x, y := Fresh("x"), Fresh("y")
	s := NewSubstitution().Bind(x, NewConstant("a"))

	c := s.Clone()
	c2 := c.Bind(y, NewConstant("b"))

	if s.Size() != 1 || c.Size() != 1 || c2.Size() != 2 {
		t.Error("Clone extensions should never leak back into the source")
	}
}
