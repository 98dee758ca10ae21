package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// AccountReaderSvc defines read operations for a client's accounts
type AccountReaderSvc interface {
	// GetMainAccount returns the client's oldest CHECKING account.
	GetMainAccount(ctx context.Context, clientID string) (*domain.Account, error)

	// ListAccounts returns every account of the client.
	ListAccounts(ctx context.Context, clientID string) ([]domain.Account, error)

	// GetAccount returns an account owned by the client, or ErrAccessDenied.
	GetAccount(ctx context.Context, clientID, accountID string) (*domain.Account, error)

	// GetBalanceSummary totals the balances across the client's accounts.
	GetBalanceSummary(ctx context.Context, clientID string) (*domain.BalanceSummary, error)
}

// AccountWriterSvc defines write operations for a client's accounts
type AccountWriterSvc interface {
	// OpenAccount creates an additional zero-balance account.
	OpenAccount(ctx context.Context, clientID string, req dto.OpenAccountRequest) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
