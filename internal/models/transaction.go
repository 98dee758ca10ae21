package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Details holds the
// kind-specific payload as JSONB.
type Transaction struct {
	TransactionID     string          `db:"transaction_id"`
	Kind              string          `db:"kind"`
	Status            string          `db:"status"`
	Amount            decimal.Decimal `db:"amount"`
	Description       string          `db:"description"`
	FromAccountID     sql.NullString  `db:"from_account_id"`
	ToAccountID       sql.NullString  `db:"to_account_id"`
	FromClientID      sql.NullString  `db:"from_client_id"`
	ToClientID        sql.NullString  `db:"to_client_id"`
	TransactionDate   time.Time       `db:"transaction_date"`
	VerifiedBy        sql.NullString  `db:"verified_by"`
	VerifiedAt        sql.NullTime    `db:"verified_at"`
	VerificationNotes sql.NullString  `db:"verification_notes"`
	Details           []byte          `db:"details"`
	AuditFields
}
