// Package store persists knowledge-base clauses as parseable text
// records. Implementations keep clauses in insertion order, because
// answer enumeration order follows clause order and a reloaded
// knowledge base must answer queries the way the original did.
package store

import (
	"context"
	"errors"

	"github.com/gitrdm/gohorn/pkg/hornlog"
)

var (
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("store: record not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: store is closed")
)

// Record is one persisted clause: its storage identity plus the clause
// in the textual notation of the parse package.
type Record struct {
	ID   string
	Text string
}

// Store is the persistence interface for clauses.
type Store interface {
	// SaveClause appends a clause and returns its record ID.
	SaveClause(ctx context.Context, c *hornlog.Clause) (string, error)

	// LoadAll returns every stored clause in insertion order.
	LoadAll(ctx context.Context) ([]*hornlog.Clause, error)

	// Records returns the raw records in insertion order.
	Records(ctx context.Context) ([]Record, error)

	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Delete removes the record with the given ID, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count reports the number of stored clauses.
	Count(ctx context.Context) (int, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Close releases the store. Further operations return ErrClosed.
	Close() error
}

// LoadKnowledgeBase reads every stored clause into a fresh knowledge
// base, preserving insertion order.
func LoadKnowledgeBase(ctx context.Context, st Store) (*hornlog.KnowledgeBase, error) {
	clauses, err := st.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	kb := hornlog.NewKnowledgeBase()
	if err := kb.AddClauses(clauses...); err != nil {
		return nil, err
	}
	return kb, nil
}
