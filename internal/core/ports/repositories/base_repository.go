package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager opens the unit of work that value-moving operations run in.
// Ledger postings, the transaction record and its outbox events share one pgx.Tx.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback is safe to call after Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
