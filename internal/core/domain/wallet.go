package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Supported crypto asset symbols.
const (
	AssetBTC  = "BTC"
	AssetETH  = "ETH"
	AssetUSDT = "USDT"
	AssetBNB  = "BNB"
)

// SupportedAssets lists every asset a wallet can hold, in display order.
var SupportedAssets = []string{AssetBTC, AssetETH, AssetUSDT, AssetBNB}

// NormalizeAsset upper-cases and trims a symbol.
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IsSupportedAsset reports whether symbol is one of SupportedAssets.
func IsSupportedAsset(symbol string) bool {
	symbol = NormalizeAsset(symbol)
	for _, s := range SupportedAssets {
		if s == symbol {
			return true
		}
	}
	return false
}

// WalletStatus is the lifecycle status of a crypto wallet.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "ACTIVE"
	WalletStatusInactive  WalletStatus = "INACTIVE"
	WalletStatusSuspended WalletStatus = "SUSPENDED"
	WalletStatusBlocked   WalletStatus = "BLOCKED"
)

// CryptoWallet is the single wallet of a client.
type CryptoWallet struct {
	WalletAddress   string       `json:"walletAddress"`
	ClientID        string       `json:"clientID"`
	Status          WalletStatus `json:"status"`
	SupportedAssets []string     `json:"supportedAssets"`
	AuditFields
}

// CryptoWalletBalance is the holding of one asset in one wallet.
type CryptoWalletBalance struct {
	WalletAddress string          `json:"walletAddress"`
	Symbol        string          `json:"symbol"`
	Balance       decimal.Decimal `json:"balance"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// WalletHolding is one row of the wallet view.
type WalletHolding struct {
	Symbol     string          `json:"symbol"`
	Balance    decimal.Decimal `json:"balance"`
	UsdPrice   decimal.Decimal `json:"usdPrice"`
	ValueInMad decimal.Decimal `json:"valueInMad"`
}

// WalletView is the client-facing wallet summary.
type WalletView struct {
	WalletAddress   string          `json:"walletAddress"`
	ClientID        string          `json:"clientID"`
	Status          WalletStatus    `json:"status"`
	Holdings        []WalletHolding `json:"holdings"`
	TotalValueInMad decimal.Decimal `json:"totalValueInMad"`
	RateSource      RateSource      `json:"rateSource"`
}

// CryptoPurchaseResult is returned by a buy paid from the main account.
type CryptoPurchaseResult struct {
	Transaction           Transaction
	MadAmount             decimal.Decimal
	UsdAmount             decimal.Decimal
	CryptoAmount          decimal.Decimal
	ExchangeRate          decimal.Decimal
	MadToUsdRate          decimal.Decimal
	PlatformFee           decimal.Decimal
	TotalDebited          decimal.Decimal
	NewMainAccountBalance decimal.Decimal
	WalletAddress         string
	RateSource            RateSource
	RateTimestamp         time.Time
	CryptoBalances        map[string]decimal.Decimal
}

// CryptoTransferResult is returned by a wallet-to-wallet transfer.
type CryptoTransferResult struct {
	Transaction      Transaction
	SenderBalance    decimal.Decimal
	RecipientBalance decimal.Decimal
}
