package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// CryptoTradingSvc defines the value-moving crypto operations
type CryptoTradingSvc interface {
	// BuyFromMain converts MAD from the main account into crypto at resolved rates. Starts COMPLETED.
	BuyFromMain(ctx context.Context, clientID string, req dto.BuyFromMainRequest) (*domain.CryptoPurchaseResult, error)

	// Buy places a client-quoted purchase; the wallet is credited on verification.
	Buy(ctx context.Context, clientID string, req dto.CryptoBuyRequest) (*domain.Transaction, error)

	// Sell debits the wallet and credits the main account together. Starts PENDING.
	Sell(ctx context.Context, clientID string, req dto.CryptoSellRequest) (*domain.Transaction, error)

	// TransferCrypto moves crypto to another wallet, burning the network fee. Starts COMPLETED.
	TransferCrypto(ctx context.Context, clientID string, req dto.CryptoTransferRequest) (*domain.CryptoTransferResult, error)
}

// CryptoWalletSvc defines wallet queries and maintenance
type CryptoWalletSvc interface {
	GetWallet(ctx context.Context, clientID string, realtime bool) (*domain.WalletView, error)
	UpdateWalletAddress(ctx context.Context, clientID string, req dto.UpdateWalletAddressRequest) (*domain.CryptoWallet, error)
	GetCryptoHistory(ctx context.Context, clientID string) ([]domain.Transaction, error)
	GetRates(ctx context.Context, realtime bool) (*domain.RateBoard, error)
}

// CryptoSvcFacade combines all crypto-related service interfaces
type CryptoSvcFacade interface {
	CryptoTradingSvc
	CryptoWalletSvc
}
