package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Kinds  []domain.TransactionKind
	Status *domain.TransactionStatus
}

// TransactionReader defines read operations for transaction records
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByClientID lists transactions where the client is a party, newest first.
	ListTransactionsByClientID(ctx context.Context, clientID string, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListTransactionsByAgentID lists transactions of every client managed by the agent, newest first.
	ListTransactionsByAgentID(ctx context.Context, agentID string, filter TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// DepositStatistics aggregates the deposits verified by an agent.
	DepositStatistics(ctx context.Context, agentID string, periods domain.DepositPeriods) (*domain.DepositStatistics, error)
}

// TransactionWriter defines write operations for transaction records
type TransactionWriter interface {
	// SaveTransaction appends a transaction record inside tx.
	SaveTransaction(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error

	// FindTransactionByIDForUpdate locks a transaction row inside tx.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)

	// UpdateTransactionStatusInTx writes status and verification metadata inside tx.
	UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, verification *domain.Verification, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
