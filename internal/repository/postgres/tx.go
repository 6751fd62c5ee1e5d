package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// conn returns the transaction carried by ctx, or the raw database handle.
// Repositories route every statement through this, so any method runs
// transactionally when called from within ExecTx.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// ExecTx runs fn inside a single transaction. The transaction is carried in
// the context handed to fn; repository calls made with that context join it.
// Any error from fn rolls everything back.
func (s *Store) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
