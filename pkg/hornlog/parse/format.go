package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gitrdm/gohorn/pkg/hornlog"
)

// namer assigns canonical display names to variables in first
// occurrence order: A, B, ..., Z, A1, B1, and so on. One namer spans
// one formatted clause, so shared variables render consistently and the
// output re-parses to a structurally identical clause.
type namer struct {
	names map[int64]string
	count int
}

func newNamer() *namer {
	return &namer{names: make(map[int64]string)}
}

func (n *namer) nameFor(v *hornlog.Variable) string {
	if name, ok := n.names[v.ID()]; ok {
		return name
	}
	name := string(rune('A' + n.count%26))
	if n.count >= 26 {
		name += strconv.Itoa(n.count / 26)
	}
	n.count++
	n.names[v.ID()] = name
	return name
}

// isPlainAtom reports whether a string renders as a bare constant:
// a lowercase letter followed by letters, digits, and underscores.
// Anything else must be quoted to survive a round trip.
func isPlainAtom(s string) bool {
	if s == "" || !isConstantStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

func quoteAtom(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func formatConstant(c *hornlog.Constant) string {
	switch v := c.Value().(type) {
	case int:
		return strconv.Itoa(v)
	case string:
		if isPlainAtom(v) {
			return v
		}
		return quoteAtom(v)
	default:
		s := fmt.Sprintf("%v", v)
		if isPlainAtom(s) {
			return s
		}
		return quoteAtom(s)
	}
}

func formatTerm(t hornlog.Term, n *namer) string {
	switch tt := t.(type) {
	case *hornlog.Variable:
		return n.nameFor(tt)
	case *hornlog.Constant:
		return formatConstant(tt)
	case *hornlog.Function:
		parts := make([]string, len(tt.Args()))
		for i, arg := range tt.Args() {
			parts[i] = formatTerm(arg, n)
		}
		return tt.Functor() + "(" + strings.Join(parts, ", ") + ")"
	}
	return ""
}

func formatAtom(a *hornlog.Atom, n *namer) string {
	if a.Arity() == 0 {
		return a.Predicate()
	}
	parts := make([]string, len(a.Args()))
	for i, arg := range a.Args() {
		parts[i] = formatTerm(arg, n)
	}
	return a.Predicate() + "(" + strings.Join(parts, ", ") + ")"
}

// FormatTerm renders a term in parseable notation. Variables receive
// canonical names local to this call.
func FormatTerm(t hornlog.Term) string {
	if t == nil {
		return ""
	}
	return formatTerm(t, newNamer())
}

// FormatAtom renders an atom in parseable notation, without a
// terminating period.
func FormatAtom(a *hornlog.Atom) string {
	if a == nil {
		return ""
	}
	return formatAtom(a, newNamer())
}

// FormatClause renders a clause as period-terminated text, the form
// Program reads back. Integer and string constants survive the round
// trip with their types; variables come back fresh but with identical
// sharing structure.
//
// Example:
//
//	c, _ := parse.Clause("parent(X, Y) :- father(X, Y)")
//	parse.FormatClause(c) // "parent(A, B) :- father(A, B)."
func FormatClause(c *hornlog.Clause) string {
	if c == nil || c.Head() == nil {
		return ""
	}
	n := newNamer()
	head := formatAtom(c.Head(), n)
	if c.IsFact() {
		return head + "."
	}
	parts := make([]string, len(c.Body()))
	for i, atom := range c.Body() {
		parts[i] = formatAtom(atom, n)
	}
	return head + " :- " + strings.Join(parts, ", ") + "."
}
