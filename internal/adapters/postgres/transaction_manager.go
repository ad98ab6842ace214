package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ctxKey struct{}

var txKey ctxKey

// beginner opens transactions. *pgxpool.Pool and pgx.Tx both satisfy it.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TransactionManager scopes ledger writes to a single transaction.
type TransactionManager struct {
	db beginner
}

func NewTransactionManager(db beginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction runs fn with a transaction attached to its context.
// A context that already carries one is reused as is and left for the outer
// caller to finish.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if GetTx(ctx) != nil {
		return fn(ctx)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := tm.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = finish(ctx, tx, fmt.Errorf("ledger transaction panicked: %v", r))
		}
	}()

	return finish(ctx, tx, fn(context.WithValue(ctx, txKey, tx)))
}

// finish commits tx when fnErr is nil and rolls it back otherwise.
func finish(ctx context.Context, tx pgx.Tx, fnErr error) error {
	if fnErr != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(fnErr, fmt.Errorf("rollback ledger transaction: %w", rbErr))
		}
		return fnErr
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or nil.
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// GetConn prefers the context transaction over db.
func GetConn(ctx context.Context, db querier) querier {
	if tx := GetTx(ctx); tx != nil {
		return tx
	}
	return db
}
