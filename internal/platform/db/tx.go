package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// DBTxKey carries an open transaction through a request context so that
// repository methods running inside WithTx share it.
const DBTxKey contextKey = "db_tx"

// TxFromContext retrieves the transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// TxBeginner is the subset of pgxpool.Pool needed to open transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn inside a single transaction. The transaction is injected
// into the context handed to fn; repositories pick it up via TxFromContext,
// so every store call made by fn commits or rolls back as one unit.
func WithTx(ctx context.Context, pool TxBeginner, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, DBTxKey, tx))
	})
}
