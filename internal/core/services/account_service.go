package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// accountService serves the accounts of the calling client.
type accountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	idGen       portssvc.IDGeneratorSvc
	notifier    portssvc.NotificationPublisherSvc
}

// AccountServiceOption is a function that configures an accountService
type AccountServiceOption func(*accountService)

// WithAccountNotifier sets the notification publisher.
func WithAccountNotifier(notifier portssvc.NotificationPublisherSvc) AccountServiceOption {
	return func(s *accountService) {
		s.notifier = notifier
	}
}

// NewAccountService creates a new account service with the given options
func NewAccountService(txManager portsrepo.TransactionManager, accountRepo portsrepo.AccountRepositoryFacade, idGen portssvc.IDGeneratorSvc, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	s := &accountService{
		txManager:   txManager,
		accountRepo: accountRepo,
		idGen:       idGen,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetMainAccount(ctx context.Context, clientID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindMainAccountByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: main account of client %s", apperrors.ErrAccountNotFound, clientID)
		}
		s.LogError(ctx, err, "Failed to find main account", slog.String("client_id", clientID))
		return nil, err
	}
	return acc, nil
}

func (s *accountService) ListAccounts(ctx context.Context, clientID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByClientID(ctx, clientID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) GetAccount(ctx context.Context, clientID, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, err
	}
	if acc.ClientID != clientID {
		s.LogWarn(ctx, "Client requested an account it does not own",
			slog.String("client_id", clientID), slog.String("account_id", accountID))
		return nil, apperrors.ErrAccessDenied
	}
	return acc, nil
}

func (s *accountService) GetBalanceSummary(ctx context.Context, clientID string) (*domain.BalanceSummary, error) {
	accounts, err := s.ListAccounts(ctx, clientID)
	if err != nil {
		return nil, err
	}
	summary := &domain.BalanceSummary{
		ClientID:     clientID,
		TotalBalance: decimal.Zero,
		MainBalance:  decimal.Zero,
		AccountCount: len(accounts),
		CurrencyCode: domain.BaseCurrency,
	}
	for _, acc := range accounts {
		summary.TotalBalance = summary.TotalBalance.Add(acc.Balance)
		if summary.MainAccountID == "" && acc.AccountType == domain.AccountTypeChecking {
			summary.MainAccountID = acc.AccountID
			summary.MainBalance = acc.Balance
		}
	}
	return summary, nil
}

func (s *accountService) OpenAccount(ctx context.Context, clientID string, req dto.OpenAccountRequest) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	currency := req.CurrencyCode
	if currency == "" {
		currency = domain.BaseCurrency
	}
	if currency != domain.BaseCurrency {
		return nil, fmt.Errorf("%w: only %s accounts are supported", apperrors.ErrValidation, domain.BaseCurrency)
	}

	accountID, err := s.idGen.Generate(ctx, domain.IDKindAccount)
	if err != nil {
		return nil, err
	}
	account := domain.Account{
		AccountID:    accountID,
		ClientID:     clientID,
		AccountType:  req.AccountType,
		Status:       domain.AccountStatusActive,
		CurrencyCode: currency,
		Balance:      decimal.Zero,
		AuditFields:  domain.NewAuditFields(clientID, s.Now()),
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.accountRepo.SaveAccount(ctx, tx, account); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx, domain.InfoNotification(clientID,
			"Account Opened",
			fmt.Sprintf("Your new %s account %s is ready.", account.AccountType, account.AccountID)))
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to open account", slog.String("client_id", clientID))
		return nil, err
	}

	s.LogInfo(ctx, "Account opened", slog.String("account_id", account.AccountID), slog.String("client_id", clientID))
	return &account, nil
}
