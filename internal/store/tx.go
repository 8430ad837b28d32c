package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is a single store transaction. All row-level primitives live on Tx so
// that multi-step operations (shift then insert, delete then reposition)
// commit or roll back together.
type Tx struct {
	tx *sql.Tx
}

// Update runs fn inside a read-write transaction.
// The transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	return s.run(ctx, nil, fn)
}

// View runs fn inside a read-only transaction. Everything fn reads comes
// from one consistent snapshot.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
