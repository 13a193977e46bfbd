package parse_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
)

func TestTerm(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string // formatted form; empty means inspect manually
		wantErr bool
	}{
		{name: "Constant", src: "homer", want: "homer"},
		{name: "Integer", src: "42", want: "42"},
		{name: "Negative integer", src: "-7", want: "-7"},
		{name: "Variable", src: "X", want: "A"},
		{name: "Underscore-led variable", src: "_Tmp", want: "A"},
		{name: "Quoted constant", src: "'Hello, World'", want: "'Hello, World'"},
		{name: "Quoted with embedded quote", src: "'it''s'", want: "'it''s'"},
		{name: "Function", src: "s(z)", want: "s(z)"},
		{name: "Nested function", src: "s(s(s(z)))", want: "s(s(s(z)))"},
		{name: "Function with mixed args", src: "pair(X, 3)", want: "pair(A, 3)"},
		{name: "Whitespace tolerated", src: "  s( z )  ", want: "s(z)"},
		{name: "Empty input", src: "", wantErr: true},
		{name: "Unterminated quote", src: "'oops", wantErr: true},
		{name: "Unterminated args", src: "f(a, b", wantErr: true},
		{name: "Trailing junk", src: "homer bart", wantErr: true},
		{name: "Bare dash", src: "-", wantErr: true},
		{name: "Illegal character", src: "@foo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse.Term(tt.src)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, parse.ErrSyntax), "error should wrap ErrSyntax: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, parse.FormatTerm(got))
		})
	}

	t.Run("Integer carries an int value", func(t *testing.T) {
		got, err := parse.Term("39")
		require.NoError(t, err)
		c, ok := got.(*hornlog.Constant)
		require.True(t, ok)
		assert.Equal(t, 39, c.Value())
	})

	t.Run("Quoted digits stay a string", func(t *testing.T) {
		got, err := parse.Term("'39'")
		require.NoError(t, err)
		c, ok := got.(*hornlog.Constant)
		require.True(t, ok)
		assert.Equal(t, "39", c.Value())
	})
}

func TestAtom(t *testing.T) {
	t.Run("Predicate with arguments", func(t *testing.T) {
		a, err := parse.Atom("father(abe, homer)")
		require.NoError(t, err)
		assert.Equal(t, "father", a.Predicate())
		assert.Equal(t, 2, a.Arity())
	})

	t.Run("Zero-arity predicate", func(t *testing.T) {
		a, err := parse.Atom("sunny")
		require.NoError(t, err)
		assert.Equal(t, "sunny", a.Predicate())
		assert.Equal(t, 0, a.Arity())
	})

	t.Run("Repeated name is one variable", func(t *testing.T) {
		a, err := parse.Atom("father(X, X)")
		require.NoError(t, err)
		assert.True(t, a.Args()[0].Equal(a.Args()[1]),
			"both occurrences of X should be the same variable")
	})

	t.Run("Anonymous occurrences are distinct", func(t *testing.T) {
		a, err := parse.Atom("father(_, _)")
		require.NoError(t, err)
		assert.False(t, a.Args()[0].Equal(a.Args()[1]),
			"each _ should be a fresh variable")
	})

	t.Run("Variable predicate rejected", func(t *testing.T) {
		_, err := parse.Atom("X(a)")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parse.ErrSyntax))
	})
}

func TestClause(t *testing.T) {
	t.Run("Fact with and without period", func(t *testing.T) {
		for _, src := range []string{"father(abe, homer).", "father(abe, homer)"} {
			c, err := parse.Clause(src)
			require.NoError(t, err, "source %q", src)
			assert.True(t, c.IsFact())
		}
	})

	t.Run("Rule body order preserved", func(t *testing.T) {
		c, err := parse.Clause("grandparent(X, Z) :- parent(X, Y), parent(Y, Z).")
		require.NoError(t, err)
		require.Len(t, c.Body(), 2)
		assert.Equal(t, "parent", c.Body()[0].Predicate())
	})

	t.Run("Variables shared between head and body", func(t *testing.T) {
		c, err := parse.Clause("parent(X, Y) :- father(X, Y)")
		require.NoError(t, err)
		assert.True(t, c.Head().Args()[0].Equal(c.Body()[0].Args()[0]))
		assert.True(t, c.Head().Args()[1].Equal(c.Body()[0].Args()[1]))
		assert.Len(t, c.Vars(), 2)
	})

	t.Run("Malformed neck rejected", func(t *testing.T) {
		_, err := parse.Clause("parent(X, Y) : father(X, Y)")
		require.Error(t, err)
	})

	t.Run("Garbage after clause rejected", func(t *testing.T) {
		_, err := parse.Clause("father(abe, homer). extra")
		require.Error(t, err)
	})
}

func TestProgram(t *testing.T) {
	t.Run("Clauses, comments, and blank lines", func(t *testing.T) {
		src := `
% the Simpsons family tree
father(abe, homer).
father(homer, bart).

parent(X, Y) :- father(X, Y).  % fathers are parents
`
		clauses, err := parse.Program(strings.NewReader(src))
		require.NoError(t, err)
		require.Len(t, clauses, 3)
		assert.True(t, clauses[0].IsFact())
		assert.False(t, clauses[2].IsFact())
	})

	t.Run("Variables scoped per clause", func(t *testing.T) {
		src := `p(X) :- q(X).
r(X) :- s(X).`
		clauses, err := parse.ProgramString(src)
		require.NoError(t, err)
		require.Len(t, clauses, 2)
		assert.False(t, clauses[0].Vars()[0].Equal(clauses[1].Vars()[0]),
			"X in separate clauses should be separate variables")
	})

	t.Run("Missing period rejected", func(t *testing.T) {
		_, err := parse.ProgramString("father(abe, homer)")
		require.Error(t, err)
		assert.True(t, errors.Is(err, parse.ErrSyntax))
	})

	t.Run("Error reports the offending line", func(t *testing.T) {
		_, err := parse.ProgramString("father(abe, homer).\nbroken(((.\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("Empty input", func(t *testing.T) {
		clauses, err := parse.ProgramString("  \n % nothing here \n")
		require.NoError(t, err)
		assert.Empty(t, clauses)
	})
}

func TestQuery(t *testing.T) {
	t.Run("Conjunction with prompt and period", func(t *testing.T) {
		goals, vars, err := parse.Query("?- parent(P, bart), parent(G, P).")
		require.NoError(t, err)
		require.Len(t, goals, 2)
		require.Len(t, vars, 2)
		assert.Equal(t, "P", vars[0].Name())
		assert.Equal(t, "G", vars[1].Name())
	})

	t.Run("Bare goal", func(t *testing.T) {
		goals, vars, err := parse.Query("ancestor(X, bart)")
		require.NoError(t, err)
		require.Len(t, goals, 1)
		require.Len(t, vars, 1)
		assert.Equal(t, "X", vars[0].Name())
	})

	t.Run("Shared variables join the goals", func(t *testing.T) {
		goals, _, err := parse.Query("parent(P, bart), parent(G, P)")
		require.NoError(t, err)
		assert.True(t, goals[0].Args()[0].Equal(goals[1].Args()[1]),
			"P should be the same variable in both goals")
	})

	t.Run("Anonymous variables are not reported", func(t *testing.T) {
		_, vars, err := parse.Query("father(X, _)")
		require.NoError(t, err)
		require.Len(t, vars, 1)
		assert.Equal(t, "X", vars[0].Name())
	})

	t.Run("Ground query has no variables", func(t *testing.T) {
		goals, vars, err := parse.Query("father(abe, homer)")
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Empty(t, vars)
	})
}

func TestFormat(t *testing.T) {
	t.Run("Canonical variable names", func(t *testing.T) {
		c, err := parse.Clause("grandparent(Gp, Kid) :- parent(Gp, Mid), parent(Mid, Kid)")
		require.NoError(t, err)
		assert.Equal(t,
			"grandparent(A, B) :- parent(A, C), parent(C, B).",
			parse.FormatClause(c))
	})

	t.Run("Facts end with a period", func(t *testing.T) {
		c, err := parse.Clause("father(abe, homer)")
		require.NoError(t, err)
		assert.Equal(t, "father(abe, homer).", parse.FormatClause(c))
	})

	t.Run("Constants quoted only when needed", func(t *testing.T) {
		c := hornlog.Fact(hornlog.NewAtom("likes",
			hornlog.NewConstant("homer"),
			hornlog.NewConstant("Duff Beer"),
			hornlog.NewConstant(3),
		))
		assert.Equal(t, "likes(homer, 'Duff Beer', 3).", parse.FormatClause(c))
	})

	t.Run("Atoms format without a period", func(t *testing.T) {
		a, err := parse.Atom("path(X, Y)")
		require.NoError(t, err)
		assert.Equal(t, "path(A, B)", parse.FormatAtom(a))
	})
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"father(abe, homer).",
		"sunny.",
		"age(homer, 39).",
		"likes(homer, 'Duff Beer').",
		"quote(homer, 'd''oh').",
		"nat(z).",
		"nat(s(A)) :- nat(A).",
		"parent(A, B) :- father(A, B).",
		"grandparent(A, B) :- parent(A, C), parent(C, B).",
		"path(A, B) :- edge(A, C), path(C, B).",
		"same(A, A) :- thing(A).",
	}

	t.Run("Format of parse is stable", func(t *testing.T) {
		var first, second []string
		for _, src := range sources {
			c1, err := parse.Clause(src)
			require.NoError(t, err, "source %q", src)
			f1 := parse.FormatClause(c1)
			first = append(first, f1)

			c2, err := parse.Clause(f1)
			require.NoError(t, err, "reparse of %q", f1)
			second = append(second, parse.FormatClause(c2))
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Round trip drifted (-first +second):\n%s", diff)
		}
	})

	t.Run("Canonical sources reproduce themselves", func(t *testing.T) {
		for _, src := range sources {
			c, err := parse.Clause(src)
			require.NoError(t, err, "source %q", src)
			assert.Equal(t, src, parse.FormatClause(c), "source %q", src)
		}
	})

	t.Run("Value types survive", func(t *testing.T) {
		c, err := parse.Clause(`pair(42, '42').`)
		require.NoError(t, err)
		reparsed, err := parse.Clause(parse.FormatClause(c))
		require.NoError(t, err)

		args := reparsed.Head().Args()
		num, ok := args[0].(*hornlog.Constant)
		require.True(t, ok)
		assert.Equal(t, 42, num.Value())
		str, ok := args[1].(*hornlog.Constant)
		require.True(t, ok)
		assert.Equal(t, "42", str.Value())
	})
}
