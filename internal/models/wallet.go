package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CryptoWallet is a row of crypto_wallets.
type CryptoWallet struct {
	WalletAddress   string   `db:"wallet_address"`
	ClientID        string   `db:"client_id"`
	Status          string   `db:"status"`
	SupportedAssets []string `db:"supported_assets"`
	AuditFields
}

// CryptoWalletBalance is a row of crypto_wallet_balances.
type CryptoWalletBalance struct {
	WalletAddress string          `db:"wallet_address"`
	Symbol        string          `db:"symbol"`
	Balance       decimal.Decimal `db:"balance"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
