package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction records
type TransactionReaderSvc interface {
	// GetTransaction returns a transaction the client is a party to.
	GetTransaction(ctx context.Context, clientID, transactionID string) (*domain.Transaction, error)

	// ListClientTransactions lists the client's transactions, newest first, with a continuation token.
	ListClientTransactions(ctx context.Context, clientID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)

	// ListAgentTransactions lists transactions of clients the agent manages.
	ListAgentTransactions(ctx context.Context, agentID string, params dto.ListAgentTransactionsParams) ([]domain.Transaction, *string, error)

	// GetDepositStatistics summarizes the deposits made by the agent.
	GetDepositStatistics(ctx context.Context, agentID string) (*domain.DepositStatistics, error)
}

// TransactionWriterSvc defines the value-moving operations that produce transactions
type TransactionWriterSvc interface {
	// CreateTransfer moves amount plus fee out of the source and amount into the destination. Starts PENDING.
	CreateTransfer(ctx context.Context, clientID string, req dto.CreateTransferRequest) (*domain.Transaction, error)

	// CreateMobileRecharge debits the main account. Starts PENDING.
	CreateMobileRecharge(ctx context.Context, clientID string, req dto.MobileRechargeRequest) (*domain.Transaction, error)

	// CreateDeposit credits a managed client's account. Starts VERIFIED.
	CreateDeposit(ctx context.Context, agentID string, req dto.CreateDepositRequest) (*domain.Transaction, error)
}

// TransactionVerifierSvc drives the verification state machine
type TransactionVerifierSvc interface {
	// VerifyTransaction moves a transaction to req.Status on behalf of a managing agent.
	VerifyTransaction(ctx context.Context, agentID, transactionID string, req dto.VerifyTransactionRequest) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionVerifierSvc
}
