// Package postgres implements core.Store on PostgreSQL through pgx.
//
// Units of work run at READ COMMITTED. Writers serialize on row locks taken
// with SELECT ... FOR UPDATE before stock is read; plain readers never block.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"pharmacy-erp/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	reader
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{reader: reader{q: pool}, pool: pool}
}

var _ core.Store = (*Store)(nil)

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx core.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", core.ErrTransactionAborted, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txn{reader: reader{q: tx}, tx: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", core.ErrTransactionAborted, err)
	}
	return nil
}

// PostgreSQL error codes the store reacts to.
const (
	codeNumericOutOfRange    = "22003"
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// classify tags storage conflicts and cancellations as ErrTransactionAborted.
// Errors already carrying a domain sentinel are returned unchanged.
func classify(err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrInsufficientStock) ||
		errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrTransactionAborted) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", core.ErrTransactionAborted, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%w: %w", core.ErrTransactionAborted, err)
		}
	}
	return err
}

// writeErr maps constraint violations on insert to domain errors.
func writeErr(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%s references a missing row (%s): %w", what, pgErr.ConstraintName, core.ErrNotFound)
		case codeUniqueViolation:
			return fmt.Errorf("%s already exists: %w", what, core.ErrValidation)
		case codeCheckViolation, codeNumericOutOfRange:
			return fmt.Errorf("%s rejected by %s: %w", what, pgErr.Code, core.ErrValidation)
		}
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
