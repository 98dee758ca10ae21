package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for crypto wallets
type WalletReader interface {
	// FindWalletByClientID retrieves the wallet of a client.
	FindWalletByClientID(ctx context.Context, clientID string) (*domain.CryptoWallet, error)

	// FindWalletByAddress resolves a wallet by its address.
	FindWalletByAddress(ctx context.Context, walletAddress string) (*domain.CryptoWallet, error)

	// FindBalances lists the balance rows of a wallet.
	FindBalances(ctx context.Context, walletAddress string) ([]domain.CryptoWalletBalance, error)
}

// WalletWriter defines write operations for crypto wallets
type WalletWriter interface {
	// SaveWallet persists a new wallet inside tx.
	SaveWallet(ctx context.Context, tx pgx.Tx, wallet domain.CryptoWallet) error

	// UpdateWalletAddress replaces the address of a client's wallet inside tx. Balance rows follow the new address.
	UpdateWalletAddress(ctx context.Context, tx pgx.Tx, clientID, newAddress, userID string, now time.Time) error
}

// WalletTransactionSupport defines the locking operations used by the crypto ledger
type WalletTransactionSupport interface {
	// FindBalancesForUpdate locks the rows for keys in key order and returns them.
	// Missing rows are first inserted with a zero balance so that every key is locked.
	FindBalancesForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.WalletKey) (map[domain.WalletKey]domain.CryptoWalletBalance, error)

	// UpsertBalancesInTx writes absolute balances, creating missing rows.
	UpsertBalancesInTx(ctx context.Context, tx pgx.Tx, balances map[domain.WalletKey]decimal.Decimal, now time.Time) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	WalletTransactionSupport
}
