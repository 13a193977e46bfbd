// Package sqlite persists clauses in a SQLite database via the pure-Go
// modernc.org driver, so the knowledge base survives process restarts
// without cgo. Clauses are stored as text in the parse package's
// notation, ordered by an explicit position column.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
	"github.com/gitrdm/gohorn/pkg/hornlog/store"
)

// Store implements store.Store on a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	closed  bool
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path with WAL mode
// enabled and the schema in place. A nil logger disables tracing.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}

	// WAL keeps readers unblocked while the CLI appends clauses.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enabling WAL: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("clause store opened", zap.String("path", path))
	return &Store{
		db:      db,
		logger:  logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS clauses (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	predicate TEXT NOT NULL,
	arity INTEGER NOT NULL,
	clause TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clauses_position ON clauses(position);
CREATE INDEX IF NOT EXISTS idx_clauses_predicate ON clauses(predicate, arity);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: initializing schema: %w", err)
	}
	return nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SaveClause implements store.Store.
func (s *Store) SaveClause(ctx context.Context, c *hornlog.Clause) (string, error) {
	if c == nil || c.Head() == nil {
		return "", fmt.Errorf("sqlite: cannot save nil clause")
	}
	if s.isClosed() {
		return "", store.ErrClosed
	}

	// MonotonicEntropy is not safe for concurrent use; IDs then sort in
	// creation order within one process.
	s.mu.Lock()
	id := ulid.MustNew(ulid.Now(), s.entropy).String()
	s.mu.Unlock()

	text := parse.FormatClause(c)
	ind := c.Head().Indicator()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlite: beginning save: %w", err)
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO clauses (id, position, predicate, arity, clause, created_at)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM clauses), ?, ?, ?, ?);
`
	if _, err := tx.ExecContext(ctx, stmt,
		id, ind.Name, ind.Arity, text,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("sqlite: saving clause: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlite: committing save: %w", err)
	}

	s.logger.Debug("clause saved",
		zap.String("id", id),
		zap.String("predicate", ind.String()),
		zap.String("clause", text))
	return id, nil
}

// LoadAll implements store.Store.
func (s *Store) LoadAll(ctx context.Context) ([]*hornlog.Clause, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	clauses := make([]*hornlog.Clause, 0, len(records))
	for _, rec := range records {
		c, err := parse.Clause(rec.Text)
		if err != nil {
			return nil, fmt.Errorf("sqlite: record %s: %w", rec.ID, err)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// Records implements store.Store.
func (s *Store) Records(ctx context.Context) ([]store.Record, error) {
	if s.isClosed() {
		return nil, store.ErrClosed
	}

	const stmt = `SELECT id, clause FROM clauses ORDER BY position;`
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing records: %w", err)
	}
	defer rows.Close()

	var records []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.ID, &rec.Text); err != nil {
			return nil, fmt.Errorf("sqlite: scanning record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: listing records: %w", err)
	}
	return records, nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if s.isClosed() {
		return store.Record{}, store.ErrClosed
	}

	const stmt = `SELECT id, clause FROM clauses WHERE id = ?;`
	var rec store.Record
	err := s.db.QueryRowContext(ctx, stmt, id).Scan(&rec.ID, &rec.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("sqlite: getting record %s: %w", id, err)
	}
	return rec, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.isClosed() {
		return store.ErrClosed
	}

	const stmt = `DELETE FROM clauses WHERE id = ?;`
	res, err := s.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting record %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting record %s: %w", id, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Count implements store.Store.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, store.ErrClosed
	}

	const stmt = `SELECT COUNT(*) FROM clauses;`
	var n int
	if err := s.db.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting records: %w", err)
	}
	return n, nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context) error {
	if s.isClosed() {
		return store.ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM clauses;`); err != nil {
		return fmt.Errorf("sqlite: clearing store: %w", err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}
