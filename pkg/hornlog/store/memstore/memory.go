// Package memstore is an in-memory store.Store, used in tests and as
// the backing for ad-hoc sessions that never touch disk.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
	"github.com/gitrdm/gohorn/pkg/hornlog/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	records []store.Record
	closed  bool
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// SaveClause implements store.Store.
func (s *Store) SaveClause(ctx context.Context, c *hornlog.Clause) (string, error) {
	if c == nil || c.Head() == nil {
		return "", fmt.Errorf("memstore: cannot save nil clause")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", store.ErrClosed
	}

	rec := store.Record{
		ID:   ulid.Make().String(),
		Text: parse.FormatClause(c),
	}
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// LoadAll implements store.Store.
func (s *Store) LoadAll(ctx context.Context) ([]*hornlog.Clause, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	clauses := make([]*hornlog.Clause, 0, len(s.records))
	for _, rec := range s.records {
		c, err := parse.Clause(rec.Text)
		if err != nil {
			return nil, fmt.Errorf("memstore: record %s: %w", rec.ID, err)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// Records implements store.Store.
func (s *Store) Records(ctx context.Context) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}

	out := make([]store.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.Record{}, store.ErrClosed
	}

	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return store.Record{}, store.ErrNotFound
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, store.ErrClosed
	}
	return len(s.records), nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	s.records = nil
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
