package hornlog

import (
	"fmt"
	"sync"
)

// Indicator identifies a predicate by symbol and arity. Clauses are
// bucketed by the indicator of their head, so father/1 and father/2 are
// unrelated predicates.
type Indicator struct {
	Name  string
	Arity int
}

// String returns the conventional "name/arity" form, e.g. "parent/2".
func (ind Indicator) String() string {
	return fmt.Sprintf("%s/%d", ind.Name, ind.Arity)
}

// KnowledgeBase is an ordered collection of clauses, queryable by
// predicate symbol and arity. Insertion order is preserved per bucket
// and determines the order in which the solver tries candidate clauses,
// which in turn determines the order answers are produced in.
//
// Lifecycle: construct empty, populate via AddClause, then treat as
// frozen for the duration of any query. The internal lock keeps
// concurrent access memory-safe, but adding clauses while a query is in
// flight makes the set of candidates that query sees unspecified, so
// callers should finish population first.
type KnowledgeBase struct {
	mu      sync.RWMutex
	buckets map[Indicator][]*Clause
	clauses []*Clause
}

// NewKnowledgeBase creates an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		buckets: make(map[Indicator][]*Clause),
	}
}

// AddClause appends a clause to the bucket for its head's indicator.
// Amortized O(1).
func (kb *KnowledgeBase) AddClause(c *Clause) error {
	if c == nil {
		return fmt.Errorf("hornlog: cannot add nil clause")
	}
	if c.head == nil {
		return fmt.Errorf("hornlog: cannot add clause with nil head")
	}
	for i, atom := range c.body {
		if atom == nil {
			return fmt.Errorf("hornlog: clause %s has nil body atom at position %d", c.head, i)
		}
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	ind := c.head.Indicator()
	kb.buckets[ind] = append(kb.buckets[ind], c)
	kb.clauses = append(kb.clauses, c)
	return nil
}

// AddClauses appends clauses in order, stopping at the first failure.
func (kb *KnowledgeBase) AddClauses(clauses ...*Clause) error {
	for _, c := range clauses {
		if err := kb.AddClause(c); err != nil {
			return err
		}
	}
	return nil
}

// ClausesFor returns the clauses whose head matches the indicator, in
// insertion order. The result is a snapshot copy, so callers may
// iterate it while other goroutines read the knowledge base. An unknown
// indicator yields an empty slice, never an error: undefined predicates
// and wrong-arity queries fail silently through this path.
func (kb *KnowledgeBase) ClausesFor(ind Indicator) []*Clause {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	bucket := kb.buckets[ind]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]*Clause, len(bucket))
	copy(out, bucket)
	return out
}

// Clauses returns every clause in global insertion order, as a snapshot
// copy. Persistence layers use this to serialize a knowledge base.
func (kb *KnowledgeBase) Clauses() []*Clause {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := make([]*Clause, len(kb.clauses))
	copy(out, kb.clauses)
	return out
}

// Len returns the total number of clauses.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.clauses)
}

// Predicates returns the indicators that have at least one clause. The
// order is unspecified.
func (kb *KnowledgeBase) Predicates() []Indicator {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	out := make([]Indicator, 0, len(kb.buckets))
	for ind := range kb.buckets {
		out = append(out, ind)
	}
	return out
}

// String returns a short summary such as "KnowledgeBase(8 clauses, 4 predicates)".
func (kb *KnowledgeBase) String() string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return fmt.Sprintf("KnowledgeBase(%d clauses, %d predicates)", len(kb.clauses), len(kb.buckets))
}
