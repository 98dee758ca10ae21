package dto

import (
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest moves money between two accounts.
type CreateTransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required,nefield=FromAccountID"`
	Amount        decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
	Description   string          `json:"description" binding:"max=255"`
}

// MobileRechargeRequest tops up a phone line from the main account.
type MobileRechargeRequest struct {
	PhoneNumber  string          `json:"phoneNumber" binding:"required,e164"`
	Operator     string          `json:"operator" binding:"required"`
	RechargeType string          `json:"rechargeType" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
}

// CreateDepositRequest is an agent cash deposit into a client account.
type CreateDepositRequest struct {
	ClientID    string          `json:"clientID" binding:"required"`
	AccountID   string          `json:"accountID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,positive_decimal"`
	Description string          `json:"description" binding:"max=255"`
}

// VerifyTransactionRequest carries an agent decision.
type VerifyTransactionRequest struct {
	Status domain.TransactionStatus `json:"status" binding:"required,oneof=VERIFIED REJECTED COMPLETED FAILED CANCELLED"`
	Notes  string                   `json:"notes" binding:"max=500"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListAgentTransactionsParams adds a status filter for agents.
type ListAgentTransactionsParams struct {
	ListTransactionsParams
	Status *domain.TransactionStatus `form:"status" binding:"omitempty,oneof=PENDING VERIFIED REJECTED COMPLETED FAILED CANCELLED"`
}

// VerificationResponse mirrors domain.Verification.
type VerificationResponse struct {
	AgentID    string    `json:"agentID"`
	VerifiedAt time.Time `json:"verifiedAt"`
	Notes      string    `json:"notes"`
}

// TransactionResponse is the wire form of a transaction of any kind.
type TransactionResponse struct {
	TransactionID   string                    `json:"transactionID"`
	Kind            domain.TransactionKind    `json:"kind"`
	Status          domain.TransactionStatus  `json:"status"`
	Amount          decimal.Decimal           `json:"amount"`
	Fee             decimal.Decimal           `json:"fee"`
	Description     string                    `json:"description"`
	FromAccountID   string                    `json:"fromAccountID,omitempty"`
	ToAccountID     string                    `json:"toAccountID,omitempty"`
	TransactionDate time.Time                 `json:"transactionDate"`
	Verification    *VerificationResponse     `json:"verification,omitempty"`
	Details         domain.TransactionDetails `json:"details"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:   t.TransactionID,
		Kind:            t.Kind,
		Status:          t.Status,
		Amount:          t.Amount,
		Fee:             t.Fee(),
		Description:     t.Description,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		TransactionDate: t.TransactionDate,
		Details:         t.Details,
	}
	if t.Verification != nil {
		resp.Verification = &VerificationResponse{
			AgentID:    t.Verification.AgentID,
			VerifiedAt: t.Verification.VerifiedAt,
			Notes:      t.Verification.Notes,
		}
	}
	return resp
}

// ToListTransactionsResponse converts a page of transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}
