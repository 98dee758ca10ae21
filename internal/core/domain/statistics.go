package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositWindow is a count/sum pair over a period.
type DepositWindow struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DepositStatistics summarizes the deposits made by one agent.
type DepositStatistics struct {
	AgentID             string          `json:"agentID"`
	Today               DepositWindow   `json:"today"`
	ThisWeek            DepositWindow   `json:"thisWeek"`
	ThisMonth           DepositWindow   `json:"thisMonth"`
	Total               DepositWindow   `json:"total"`
	AverageDeposit      decimal.Decimal `json:"averageDeposit"`
	LargestDeposit      decimal.Decimal `json:"largestDeposit"`
	SmallestDeposit     decimal.Decimal `json:"smallestDeposit"`
	LastDepositDate     *time.Time      `json:"lastDepositDate,omitempty"`
	ManagedClientsCount int64           `json:"managedClientsCount"`
}

// DepositPeriods are the lower bounds of the statistics windows.
type DepositPeriods struct {
	StartOfDay   time.Time
	StartOfWeek  time.Time
	StartOfMonth time.Time
}

// PeriodsAt computes the window bounds for now. Weeks start on Monday.
func PeriodsAt(now time.Time) DepositPeriods {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return DepositPeriods{
		StartOfDay:   day,
		StartOfWeek:  day.AddDate(0, 0, -offset),
		StartOfMonth: time.Date(y, m, 1, 0, 0, 0, 0, now.Location()),
	}
}
