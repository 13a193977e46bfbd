// Package parse reads and writes the textual clause notation used by
// the hornlog engine. The notation follows Prolog conventions:
//
//	father(abe, homer).
//	parent(X, Y) :- father(X, Y).
//	nat(s(s(z))).
//
// A name starting with an uppercase letter or underscore is a variable;
// the bare underscore is anonymous and names a fresh variable at every
// occurrence. A name starting with a lowercase letter is a constant, or
// a function term when followed by an argument list. Unsigned and
// negative integers are constants. Single-quoted text is a constant
// with arbitrary content, with '' standing for an embedded quote.
// Comments run from % to end of line. Identifiers are ASCII.
//
// Variables of the same name are shared within one clause or query and
// never across clauses, matching standard Prolog scoping.
package parse

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gitrdm/gohorn/pkg/hornlog"
)

// ErrSyntax is the base error for every malformed input. Callers can
// match it with errors.Is regardless of the specific failure.
var ErrSyntax = errors.New("parse: syntax error")

// scanner walks the source byte by byte, tracking the line number for
// error reporting.
type scanner struct {
	src  string
	pos  int
	line int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1}
}

func (sc *scanner) errorf(format string, args ...interface{}) error {
	detail := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, sc.line, detail)
}

func (sc *scanner) eof() bool {
	return sc.pos >= len(sc.src)
}

func (sc *scanner) peek() byte {
	if sc.eof() {
		return 0
	}
	return sc.src[sc.pos]
}

func (sc *scanner) next() byte {
	c := sc.src[sc.pos]
	sc.pos++
	if c == '\n' {
		sc.line++
	}
	return c
}

// skipSpace consumes whitespace and % comments.
func (sc *scanner) skipSpace() {
	for !sc.eof() {
		switch sc.peek() {
		case ' ', '\t', '\r', '\n':
			sc.next()
		case '%':
			for !sc.eof() && sc.peek() != '\n' {
				sc.next()
			}
		default:
			return
		}
	}
}

func (sc *scanner) expect(c byte) error {
	sc.skipSpace()
	if sc.eof() || sc.peek() != c {
		return sc.errorf("expected %q, found %s", string(c), sc.describe())
	}
	sc.next()
	return nil
}

// describe renders the upcoming input for error messages.
func (sc *scanner) describe() string {
	if sc.eof() {
		return "end of input"
	}
	return strconv.Quote(string(sc.peek()))
}

func isVariableStart(c byte) bool {
	return c == '_' || c >= 'A' && c <= 'Z'
}

func isConstantStart(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameByte(c byte) bool {
	return c == '_' || isDigit(c) ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// readName consumes an identifier: letters, digits, and underscores.
func (sc *scanner) readName() string {
	start := sc.pos
	for !sc.eof() && isNameByte(sc.peek()) {
		sc.next()
	}
	return sc.src[start:sc.pos]
}

// readQuoted consumes a single-quoted constant body. The opening quote
// has already been consumed; '' inside the body denotes one quote.
func (sc *scanner) readQuoted() (string, error) {
	var b strings.Builder
	for {
		if sc.eof() {
			return "", sc.errorf("unterminated quoted constant")
		}
		c := sc.next()
		if c != '\'' {
			b.WriteByte(c)
			continue
		}
		if !sc.eof() && sc.peek() == '\'' {
			sc.next()
			b.WriteByte('\'')
			continue
		}
		return b.String(), nil
	}
}

// varScope maps variable names to their instance within one clause or
// query, and remembers first-occurrence order for presentation.
type varScope struct {
	byName map[string]*hornlog.Variable
	order  []*hornlog.Variable
}

func newVarScope() *varScope {
	return &varScope{byName: make(map[string]*hornlog.Variable)}
}

func (vs *varScope) lookup(name string) *hornlog.Variable {
	if name == "_" {
		// Anonymous: every occurrence is a distinct variable and none
		// is reported as a query variable.
		return hornlog.Fresh("_")
	}
	if v, ok := vs.byName[name]; ok {
		return v
	}
	v := hornlog.Fresh(name)
	vs.byName[name] = v
	vs.order = append(vs.order, v)
	return v
}

// parseTerm reads one term: a variable, a constant, an integer, or a
// function application.
func (sc *scanner) parseTerm(scope *varScope) (hornlog.Term, error) {
	sc.skipSpace()
	if sc.eof() {
		return nil, sc.errorf("expected a term, found end of input")
	}

	c := sc.peek()
	switch {
	case isVariableStart(c):
		return scope.lookup(sc.readName()), nil

	case c == '\'':
		sc.next()
		value, err := sc.readQuoted()
		if err != nil {
			return nil, err
		}
		return hornlog.NewConstant(value), nil

	case isDigit(c) || c == '-':
		start := sc.pos
		if c == '-' {
			sc.next()
			if sc.eof() || !isDigit(sc.peek()) {
				return nil, sc.errorf("expected digits after %q", "-")
			}
		}
		for !sc.eof() && isDigit(sc.peek()) {
			sc.next()
		}
		n, err := strconv.Atoi(sc.src[start:sc.pos])
		if err != nil {
			return nil, sc.errorf("invalid integer %q", sc.src[start:sc.pos])
		}
		return hornlog.NewConstant(n), nil

	case isConstantStart(c):
		name := sc.readName()
		if sc.peek() != '(' {
			return hornlog.NewConstant(name), nil
		}
		sc.next()
		args, err := sc.parseTermList(scope)
		if err != nil {
			return nil, err
		}
		return hornlog.NewFunction(name, args...), nil
	}

	return nil, sc.errorf("unexpected %s", sc.describe())
}

// parseTermList reads comma-separated terms up to the closing paren.
// The opening paren has already been consumed.
func (sc *scanner) parseTermList(scope *varScope) ([]hornlog.Term, error) {
	var args []hornlog.Term
	for {
		term, err := sc.parseTerm(scope)
		if err != nil {
			return nil, err
		}
		args = append(args, term)

		sc.skipSpace()
		if sc.eof() {
			return nil, sc.errorf("unterminated argument list")
		}
		switch sc.peek() {
		case ',':
			sc.next()
		case ')':
			sc.next()
			return args, nil
		default:
			return nil, sc.errorf("expected %q or %q in argument list, found %s", ",", ")", sc.describe())
		}
	}
}

// parseAtom reads predicate(args...) or a bare zero-arity predicate.
func (sc *scanner) parseAtom(scope *varScope) (*hornlog.Atom, error) {
	sc.skipSpace()
	if sc.eof() {
		return nil, sc.errorf("expected a predicate, found end of input")
	}

	c := sc.peek()
	if isVariableStart(c) {
		return nil, sc.errorf("a predicate cannot be a variable")
	}
	if !isConstantStart(c) {
		return nil, sc.errorf("expected a predicate, found %s", sc.describe())
	}

	name := sc.readName()
	if sc.peek() != '(' {
		return hornlog.NewAtom(name), nil
	}
	sc.next()
	args, err := sc.parseTermList(scope)
	if err != nil {
		return nil, err
	}
	return hornlog.NewAtom(name, args...), nil
}

// parseClause reads one clause: a fact "head." or a rule
// "head :- b1, ..., bn." A missing final period is accepted only when
// requireDot is false and the input ends.
func (sc *scanner) parseClause(requireDot bool) (*hornlog.Clause, error) {
	scope := newVarScope()
	head, err := sc.parseAtom(scope)
	if err != nil {
		return nil, err
	}

	sc.skipSpace()
	if sc.eof() {
		if requireDot {
			return nil, sc.errorf("expected %q at end of clause", ".")
		}
		return hornlog.Fact(head), nil
	}

	switch sc.peek() {
	case '.':
		sc.next()
		return hornlog.Fact(head), nil
	case ':':
		sc.next()
		if sc.eof() || sc.peek() != '-' {
			return nil, sc.errorf("expected %q after %q", "-", ":")
		}
		sc.next()
	default:
		return nil, sc.errorf("expected %q or %q after clause head, found %s", ".", ":-", sc.describe())
	}

	var body []*hornlog.Atom
	for {
		atom, err := sc.parseAtom(scope)
		if err != nil {
			return nil, err
		}
		body = append(body, atom)

		sc.skipSpace()
		if sc.eof() {
			if requireDot {
				return nil, sc.errorf("expected %q at end of clause", ".")
			}
			return hornlog.Rule(head, body...), nil
		}
		switch sc.peek() {
		case ',':
			sc.next()
		case '.':
			sc.next()
			return hornlog.Rule(head, body...), nil
		default:
			return nil, sc.errorf("expected %q or %q in clause body, found %s", ",", ".", sc.describe())
		}
	}
}

// checkTrailing verifies that nothing but whitespace and comments
// remains.
func (sc *scanner) checkTrailing() error {
	sc.skipSpace()
	if !sc.eof() {
		return sc.errorf("unexpected trailing input starting at %s", sc.describe())
	}
	return nil
}

// Term parses a single term.
//
// Example:
//
//	t, err := parse.Term("s(s(z))")
func Term(src string) (hornlog.Term, error) {
	sc := newScanner(src)
	term, err := sc.parseTerm(newVarScope())
	if err != nil {
		return nil, err
	}
	if err := sc.checkTrailing(); err != nil {
		return nil, err
	}
	return term, nil
}

// Atom parses a single predicate application such as
// "father(abe, homer)". Variables of the same name are shared within
// the atom.
func Atom(src string) (*hornlog.Atom, error) {
	sc := newScanner(src)
	atom, err := sc.parseAtom(newVarScope())
	if err != nil {
		return nil, err
	}
	if err := sc.checkTrailing(); err != nil {
		return nil, err
	}
	return atom, nil
}

// Clause parses one fact or rule. The terminating period is optional.
//
// Example:
//
//	c, err := parse.Clause("parent(X, Y) :- father(X, Y)")
func Clause(src string) (*hornlog.Clause, error) {
	sc := newScanner(src)
	clause, err := sc.parseClause(false)
	if err != nil {
		return nil, err
	}
	if err := sc.checkTrailing(); err != nil {
		return nil, err
	}
	return clause, nil
}

// Program parses a sequence of period-terminated clauses, as stored in
// a theory file. Comments and blank lines are skipped. An empty input
// yields an empty program.
func Program(r io.Reader) ([]*hornlog.Clause, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parse: reading program: %w", err)
	}
	return ProgramString(string(src))
}

// ProgramString is Program over an in-memory source.
func ProgramString(src string) ([]*hornlog.Clause, error) {
	sc := newScanner(src)
	var clauses []*hornlog.Clause
	for {
		sc.skipSpace()
		if sc.eof() {
			return clauses, nil
		}
		clause, err := sc.parseClause(true)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
}

// Query parses a comma-separated conjunction of goal atoms, with an
// optional leading "?-" and optional terminating period. It returns the
// goals together with the named variables of the query in first
// occurrence order, ready for answer presentation. Anonymous variables
// are not reported.
//
// Example:
//
//	goals, vars, err := parse.Query("?- grandparent(G, bart).")
func Query(src string) ([]*hornlog.Atom, []*hornlog.Variable, error) {
	sc := newScanner(src)
	sc.skipSpace()
	if strings.HasPrefix(sc.src[sc.pos:], "?-") {
		sc.next()
		sc.next()
	}

	scope := newVarScope()
	var goals []*hornlog.Atom
	for {
		atom, err := sc.parseAtom(scope)
		if err != nil {
			return nil, nil, err
		}
		goals = append(goals, atom)

		sc.skipSpace()
		if sc.eof() {
			return goals, scope.order, nil
		}
		switch sc.peek() {
		case ',':
			sc.next()
		case '.':
			sc.next()
			if err := sc.checkTrailing(); err != nil {
				return nil, nil, err
			}
			return goals, scope.order, nil
		default:
			return nil, nil, sc.errorf("expected %q or %q after goal, found %s", ",", ".", sc.describe())
		}
	}
}
