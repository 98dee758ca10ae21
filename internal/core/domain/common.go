package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// NewAuditFields stamps both creation and update fields with the same actor and time.
func NewAuditFields(actorID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

const (
	// FiatScale is the number of decimal places kept for MAD amounts.
	FiatScale int32 = 2
	// CryptoScale is the number of decimal places kept for crypto quantities.
	CryptoScale int32 = 8

	// BaseCurrency is the currency of every client account.
	BaseCurrency = "MAD"
)

// RoundFiat rounds half away from zero to the fiat scale.
func RoundFiat(d decimal.Decimal) decimal.Decimal {
	return d.Round(FiatScale)
}

// RoundCrypto rounds half away from zero to the crypto scale.
func RoundCrypto(d decimal.Decimal) decimal.Decimal {
	return d.Round(CryptoScale)
}
