package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// database is what repositories need from a pool: queries plus transactions.
type database interface {
	querier
	beginner
}

type BaseRepository struct {
	db database
}

func NewBaseRepository(db database) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) conn(ctx context.Context) querier {
	return GetConn(ctx, r.db)
}

func (r *BaseRepository) transactions() *TransactionManager {
	return NewTransactionManager(r.db)
}
