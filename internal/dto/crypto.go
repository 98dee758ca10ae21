package dto

import (
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BuyFromMainRequest buys crypto with MAD taken from the main account.
type BuyFromMainRequest struct {
	CryptoType      string          `json:"cryptoType" binding:"required,crypto_symbol"`
	MadAmount       decimal.Decimal `json:"madAmount" binding:"required,positive_decimal"`
	UseRealTimeRate bool            `json:"useRealTimeRate"`
}

// BuyFromMainResponse reports every figure used by the purchase.
type BuyFromMainResponse struct {
	TransactionID         string                     `json:"transactionID"`
	Status                domain.TransactionStatus   `json:"status"`
	CryptoType            string                     `json:"cryptoType"`
	MadAmount             decimal.Decimal            `json:"madAmount"`
	UsdAmount             decimal.Decimal            `json:"usdAmount"`
	CryptoAmount          decimal.Decimal            `json:"cryptoAmount"`
	ExchangeRate          decimal.Decimal            `json:"exchangeRate"`
	MadToUsdRate          decimal.Decimal            `json:"madToUsdRate"`
	PlatformFee           decimal.Decimal            `json:"platformFee"`
	TotalDebited          decimal.Decimal            `json:"totalDebited"`
	NewMainAccountBalance decimal.Decimal            `json:"newMainAccountBalance"`
	WalletAddress         string                     `json:"walletAddress"`
	RateSource            domain.RateSource          `json:"rateSource"`
	RateTimestamp         time.Time                  `json:"rateTimestamp"`
	CryptoBalances        map[string]decimal.Decimal `json:"cryptoBalances"`
}

// ToBuyFromMainResponse converts a purchase result.
func ToBuyFromMainResponse(r *domain.CryptoPurchaseResult) BuyFromMainResponse {
	crypto, _ := r.Transaction.Crypto()
	return BuyFromMainResponse{
		TransactionID:         r.Transaction.TransactionID,
		Status:                r.Transaction.Status,
		CryptoType:            crypto.CryptoType,
		MadAmount:             r.MadAmount,
		UsdAmount:             r.UsdAmount,
		CryptoAmount:          r.CryptoAmount,
		ExchangeRate:          r.ExchangeRate,
		MadToUsdRate:          r.MadToUsdRate,
		PlatformFee:           r.PlatformFee,
		TotalDebited:          r.TotalDebited,
		NewMainAccountBalance: r.NewMainAccountBalance,
		WalletAddress:         r.WalletAddress,
		RateSource:            r.RateSource,
		RateTimestamp:         r.RateTimestamp,
		CryptoBalances:        r.CryptoBalances,
	}
}

// CryptoBuyRequest is a client-quoted purchase; Amount is in MAD.
type CryptoBuyRequest struct {
	CryptoType   string          `json:"cryptoType" binding:"required,crypto_symbol"`
	Amount       decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
	ExchangeRate decimal.Decimal `json:"exchangeRate" binding:"required,positive_decimal"`
	PlatformFee  decimal.Decimal `json:"platformFee" binding:"non_negative_decimal"`
	NetworkFee   decimal.Decimal `json:"networkFee" binding:"non_negative_decimal"`
	Description  string          `json:"description" binding:"max=255"`
}

// CryptoSellRequest sells CryptoAmount units at ExchangeRate MAD per unit.
type CryptoSellRequest struct {
	CryptoType   string          `json:"cryptoType" binding:"required,crypto_symbol"`
	CryptoAmount decimal.Decimal `json:"cryptoAmount" binding:"required,positive_decimal"`
	ExchangeRate decimal.Decimal `json:"exchangeRate" binding:"required,positive_decimal"`
	PlatformFee  decimal.Decimal `json:"platformFee" binding:"non_negative_decimal"`
	NetworkFee   decimal.Decimal `json:"networkFee" binding:"non_negative_decimal"`
	Description  string          `json:"description" binding:"max=255"`
}

// CryptoTransferRequest sends crypto to another wallet.
type CryptoTransferRequest struct {
	RecipientWalletAddress string          `json:"recipientWalletAddress" binding:"required"`
	CryptoType             string          `json:"cryptoType" binding:"required,crypto_symbol"`
	Amount                 decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
	NetworkFee             decimal.Decimal `json:"networkFee" binding:"non_negative_decimal"`
	Description            string          `json:"description" binding:"max=255"`
}

// CryptoTransferResponse reports the balances after a transfer.
type CryptoTransferResponse struct {
	Transaction      TransactionResponse `json:"transaction"`
	SenderBalance    decimal.Decimal     `json:"senderBalance"`
	RecipientBalance decimal.Decimal     `json:"recipientBalance"`
}

// ToCryptoTransferResponse converts a transfer result.
func ToCryptoTransferResponse(r *domain.CryptoTransferResult) CryptoTransferResponse {
	return CryptoTransferResponse{
		Transaction:      ToTransactionResponse(&r.Transaction),
		SenderBalance:    r.SenderBalance,
		RecipientBalance: r.RecipientBalance,
	}
}

// UpdateWalletAddressRequest replaces the client's wallet address.
type UpdateWalletAddressRequest struct {
	NewAddress string `json:"newAddress" binding:"required,min=26,max=64,alphanum"`
}

// RealtimeParams selects live or fallback rates.
type RealtimeParams struct {
	Realtime bool `form:"realtime,default=true"`
}
