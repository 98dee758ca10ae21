package domain

import "github.com/shopspring/decimal"

// AccountType is the product type of a client account.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeBusiness   AccountType = "BUSINESS"
	AccountTypeInvestment AccountType = "INVESTMENT"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeBusiness, AccountTypeInvestment:
		return true
	}
	return false
}

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusInactive  AccountStatus = "INACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusClosed    AccountStatus = "CLOSED"
	AccountStatusPending   AccountStatus = "PENDING"
)

// Account is a fiat account owned by a client. Balance is only ever changed by the ledger.
type Account struct {
	AccountID    string          `json:"accountID"`
	ClientID     string          `json:"clientID"`
	AccountType  AccountType     `json:"accountType"`
	Status       AccountStatus   `json:"status"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}

// IsActive reports whether the account may take part in value movements.
func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// BalanceSummary aggregates a client's fiat position.
type BalanceSummary struct {
	ClientID      string          `json:"clientID"`
	MainAccountID string          `json:"mainAccountID"`
	MainBalance   decimal.Decimal `json:"mainBalance"`
	TotalBalance  decimal.Decimal `json:"totalBalance"`
	AccountCount  int             `json:"accountCount"`
	CurrencyCode  string          `json:"currencyCode"`
}
