package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerSvc is the only component allowed to change account and wallet balances.
// Every method runs inside the caller's transaction; the caller commits.
type LedgerSvc interface {
	// Post applies fiat entries atomically and returns the updated accounts.
	Post(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, actorID string) (map[string]domain.Account, error)

	// Debit removes amount from an account, failing with ErrInsufficientFunds.
	Debit(ctx context.Context, tx pgx.Tx, accountID string, amount decimal.Decimal, actorID string) (*domain.Account, error)

	// Credit adds amount to an account.
	Credit(ctx context.Context, tx pgx.Tx, accountID string, amount decimal.Decimal, actorID string) (*domain.Account, error)

	// PostCrypto applies wallet entries atomically and returns the resulting balances.
	PostCrypto(ctx context.Context, tx pgx.Tx, entries []domain.WalletEntry) (map[domain.WalletKey]decimal.Decimal, error)
}

// FeeSvc computes platform fees from the configured percentage.
type FeeSvc interface {
	// LoadFeeConfig reads the fee percentage once; it never fails.
	LoadFeeConfig(ctx context.Context) domain.FeeConfig

	// ComputeFee loads the configuration and applies it to amount.
	ComputeFee(ctx context.Context, amount decimal.Decimal) decimal.Decimal
}

// IDGeneratorSvc allocates collision-checked business identifiers.
type IDGeneratorSvc interface {
	Generate(ctx context.Context, kind domain.IDKind) (string, error)
}
