package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	ClientID     string          `db:"client_id"`
	AccountType  string          `db:"account_type"`
	Status       string          `db:"status"`
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"` // never negative, enforced by a CHECK constraint
	AuditFields
}
