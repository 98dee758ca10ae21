package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerService applies balance movements. Rows are locked in ascending key
// order, accounts before wallet balances, so concurrent postings cannot deadlock.
type ledgerService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	walletRepo  portsrepo.WalletRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, walletRepo portsrepo.WalletRepositoryFacade) portssvc.LedgerSvc {
	return &ledgerService{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
	}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

// Post applies fiat entries atomically. Nothing is written unless every account exists,
// is active and stays non-negative.
func (s *ledgerService) Post(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry, actorID string) (map[string]domain.Account, error) {
	for _, e := range entries {
		if e.AccountID == "" {
			return nil, fmt.Errorf("%w: ledger entry without account", apperrors.ErrValidation)
		}
		if e.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: ledger entry amount must not be negative", apperrors.ErrValidation)
		}
	}
	if len(entries) == 0 {
		return map[string]domain.Account{}, nil
	}

	deltas := domain.NetAccountDeltas(entries)
	ids := domain.SortedAccountIDs(deltas)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	updated := make(map[string]domain.Account, len(ids))
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if !acc.IsActive() {
			return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrAccountInactive, id, acc.Status)
		}
		newBalance := acc.Balance.Add(deltas[id])
		if newBalance.IsNegative() {
			s.LogWarn(ctx, "Insufficient funds",
				slog.String("account_id", id),
				slog.String("balance", acc.Balance.String()),
				slog.String("delta", deltas[id].String()))
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, id)
		}
		acc.Balance = newBalance
		updated[id] = acc
	}

	now := s.Now()
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, deltas, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to apply balance changes: %w", err)
	}
	for id, acc := range updated {
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = actorID
		updated[id] = acc
	}

	s.LogDebug(ctx, "Ledger entries posted", slog.Int("entries", len(entries)), slog.Int("accounts", len(ids)))
	return updated, nil
}

// Debit removes amount from one account.
func (s *ledgerService) Debit(ctx context.Context, tx pgx.Tx, accountID string, amount decimal.Decimal, actorID string) (*domain.Account, error) {
	updated, err := s.Post(ctx, tx, []domain.LedgerEntry{domain.DebitAccount(accountID, amount)}, actorID)
	if err != nil {
		return nil, err
	}
	acc := updated[accountID]
	return &acc, nil
}

// Credit adds amount to one account.
func (s *ledgerService) Credit(ctx context.Context, tx pgx.Tx, accountID string, amount decimal.Decimal, actorID string) (*domain.Account, error) {
	updated, err := s.Post(ctx, tx, []domain.LedgerEntry{domain.CreditAccount(accountID, amount)}, actorID)
	if err != nil {
		return nil, err
	}
	acc := updated[accountID]
	return &acc, nil
}

// PostCrypto applies wallet entries atomically. A debit that would take a balance
// below zero fails the whole posting; it is never clamped.
func (s *ledgerService) PostCrypto(ctx context.Context, tx pgx.Tx, entries []domain.WalletEntry) (map[domain.WalletKey]decimal.Decimal, error) {
	for _, e := range entries {
		if e.WalletAddress == "" || e.Symbol == "" {
			return nil, fmt.Errorf("%w: wallet entry without wallet or symbol", apperrors.ErrValidation)
		}
		if !domain.IsSupportedAsset(e.Symbol) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, e.Symbol)
		}
		if e.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: wallet entry amount must not be negative", apperrors.ErrValidation)
		}
	}
	if len(entries) == 0 {
		return map[domain.WalletKey]decimal.Decimal{}, nil
	}

	deltas := domain.NetWalletDeltas(entries)
	keys := domain.SortedWalletKeys(deltas)

	rows, err := s.walletRepo.FindBalancesForUpdate(ctx, tx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet balances: %w", err)
	}

	balances := make(map[domain.WalletKey]decimal.Decimal, len(keys))
	for _, k := range keys {
		current := decimal.Zero
		if row, ok := rows[k]; ok {
			current = row.Balance
		}
		next := domain.RoundCrypto(current.Add(deltas[k]))
		if next.IsNegative() {
			s.LogWarn(ctx, "Insufficient crypto balance",
				slog.String("wallet_address", k.WalletAddress),
				slog.String("symbol", k.Symbol),
				slog.String("balance", current.String()),
				slog.String("delta", deltas[k].String()))
			return nil, fmt.Errorf("%w: %s balance of wallet %s", apperrors.ErrInsufficientFunds, k.Symbol, k.WalletAddress)
		}
		balances[k] = next
	}

	if err := s.walletRepo.UpsertBalancesInTx(ctx, tx, balances, s.Now()); err != nil {
		return nil, fmt.Errorf("failed to write wallet balances: %w", err)
	}
	return balances, nil
}
