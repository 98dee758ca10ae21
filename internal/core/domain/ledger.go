package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// EntryDirection says whether an entry takes value out of or puts value into a balance.
type EntryDirection string

const (
	DirectionDebit  EntryDirection = "DEBIT"
	DirectionCredit EntryDirection = "CREDIT"
)

// LedgerEntry is one leg against a fiat account.
type LedgerEntry struct {
	AccountID string
	Direction EntryDirection
	Amount    decimal.Decimal
}

// DebitAccount builds a debit leg.
func DebitAccount(accountID string, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{AccountID: accountID, Direction: DirectionDebit, Amount: amount}
}

// CreditAccount builds a credit leg.
func CreditAccount(accountID string, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{AccountID: accountID, Direction: DirectionCredit, Amount: amount}
}

// Signed returns the amount as a balance delta.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// WalletKey identifies one crypto balance row.
type WalletKey struct {
	WalletAddress string
	Symbol        string
}

// Less orders keys by address then symbol, the global lock order for wallet rows.
func (k WalletKey) Less(other WalletKey) bool {
	if k.WalletAddress != other.WalletAddress {
		return k.WalletAddress < other.WalletAddress
	}
	return k.Symbol < other.Symbol
}

// WalletEntry is one leg against a crypto wallet balance.
type WalletEntry struct {
	WalletKey
	Direction EntryDirection
	Amount    decimal.Decimal
}

// Debit builds a wallet debit leg.
func Debit(walletAddress, symbol string, amount decimal.Decimal) WalletEntry {
	return WalletEntry{WalletKey: WalletKey{walletAddress, symbol}, Direction: DirectionDebit, Amount: amount}
}

// Credit builds a wallet credit leg.
func Credit(walletAddress, symbol string, amount decimal.Decimal) WalletEntry {
	return WalletEntry{WalletKey: WalletKey{walletAddress, symbol}, Direction: DirectionCredit, Amount: amount}
}

// Signed returns the amount as a balance delta.
func (e WalletEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// NetAccountDeltas folds entries into one delta per account.
func NetAccountDeltas(entries []LedgerEntry) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		deltas[e.AccountID] = deltas[e.AccountID].Add(e.Signed())
	}
	return deltas
}

// NetWalletDeltas folds entries into one delta per wallet balance row.
func NetWalletDeltas(entries []WalletEntry) map[WalletKey]decimal.Decimal {
	deltas := make(map[WalletKey]decimal.Decimal, len(entries))
	for _, e := range entries {
		deltas[e.WalletKey] = deltas[e.WalletKey].Add(e.Signed())
	}
	return deltas
}

// SortedAccountIDs returns the keys of deltas in ascending order.
func SortedAccountIDs(deltas map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedWalletKeys returns the keys of deltas in lock order.
func SortedWalletKeys(deltas map[WalletKey]decimal.Decimal) []WalletKey {
	keys := make([]WalletKey, 0, len(deltas))
	for k := range deltas {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
