// Package store persists the indexed launchpad state in PostgreSQL via bun.
//
// All event-driven mutations go through a Tx obtained from RunInTx so that a
// whole sweep commits or rolls back as one unit, cursor included. Read-side
// helpers for the scheduler run outside any transaction.
package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// Store provides database operations for the launchpad indexer
type Store struct {
	db *bun.DB
}

// NewStore creates a new database store
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying bun handle for advanced queries
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx is a transactional (or plain, for reads) handle over the launchpad tables.
type Tx struct {
	db bun.IDB
}

// RunInTx executes fn inside a single database transaction. Any error returned
// by fn rolls the whole transaction back.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &Tx{db: btx})
	})
}

// Reader returns a non-transactional handle for read-only queries.
func (s *Store) Reader() *Tx {
	return &Tx{db: s.db}
}
