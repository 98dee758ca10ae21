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

const (
	defaultListLimit = 20
	maxListLimit     = 100

	depositVerificationNotes = "Auto-verified deposit by bank agent"
)

// transactionService creates value-moving transactions and drives their verification.
type transactionService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
	clientRepo  portsrepo.ClientRepositoryFacade
	settingRepo portsrepo.SettingRepository
	walletRepo  portsrepo.WalletReader
	ledger      portssvc.LedgerSvc
	fees        portssvc.FeeSvc
	idGen       portssvc.IDGeneratorSvc
	notifier    portssvc.NotificationPublisherSvc
}

// TransactionServiceOption is a function that configures a transactionService
type TransactionServiceOption func(*transactionService)

// WithTransactionNotifier sets the notification publisher.
func WithTransactionNotifier(notifier portssvc.NotificationPublisherSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.notifier = notifier
	}
}

// WithTransactionAuthorizer sets the agent ownership checker.
func WithTransactionAuthorizer(authorizer portssvc.AgentAuthorizerSvc) TransactionServiceOption {
	return func(s *transactionService) {
		s.AgentAuthorizer = authorizer
	}
}

// WithTransactionSettings enables the maximum balance check on deposits.
func WithTransactionSettings(settingRepo portsrepo.SettingRepository) TransactionServiceOption {
	return func(s *transactionService) {
		s.settingRepo = settingRepo
	}
}

// WithTransactionWallets resolves crypto legs against each client's current wallet.
func WithTransactionWallets(walletRepo portsrepo.WalletReader) TransactionServiceOption {
	return func(s *transactionService) {
		s.walletRepo = walletRepo
	}
}

// NewTransactionService creates a new transaction service with the given options
func NewTransactionService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	clientRepo portsrepo.ClientRepositoryFacade,
	ledger portssvc.LedgerSvc,
	fees portssvc.FeeSvc,
	idGen portssvc.IDGeneratorSvc,
	options ...TransactionServiceOption,
) portssvc.TransactionSvcFacade {
	s := &transactionService{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		ledger:      ledger,
		fees:        fees,
		idGen:       idGen,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) findAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, err
	}
	return acc, nil
}

// CreateTransfer debits amount+fee from the source and credits amount to the destination.
func (s *transactionService) CreateTransfer(ctx context.Context, clientID string, req dto.CreateTransferRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}

	from, err := s.findAccount(ctx, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	if from.ClientID != clientID {
		s.LogWarn(ctx, "Transfer from an account the client does not own",
			slog.String("client_id", clientID), slog.String("account_id", req.FromAccountID))
		return nil, apperrors.ErrAccessDenied
	}
	to, err := s.findAccount(ctx, req.ToAccountID)
	if err != nil {
		return nil, err
	}

	amount := domain.RoundFiat(req.Amount)
	fee := s.fees.ComputeFee(ctx, amount)

	transactionID, err := s.idGen.Generate(ctx, domain.IDKindTransaction)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Transfer to " + to.AccountID
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        amount,
		Description:   description,
		FromAccountID: from.AccountID,
		ToAccountID:   to.AccountID,
		FromClientID:  from.ClientID,
		ToClientID:    to.ClientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.TransferDetails{Fee: fee}, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		entries := []domain.LedgerEntry{
			domain.DebitAccount(from.AccountID, amount.Add(fee)),
			domain.CreditAccount(to.AccountID, amount),
		}
		if _, err := s.ledger.Post(ctx, tx, entries, clientID); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(from.ClientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), domain.TopicTransferSent),
			domain.TransactionNotification(to.ClientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), domain.TopicTransferReceived),
		)
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Transfer failed", slog.String("client_id", clientID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", amount.String()),
		slog.String("fee", fee.String()))
	return &txn, nil
}

// CreateMobileRecharge debits the client's main account. No fee is charged.
func (s *transactionService) CreateMobileRecharge(ctx context.Context, clientID string, req dto.MobileRechargeRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: recharge amount must be positive", apperrors.ErrValidation)
	}
	main, err := s.accountRepo.FindMainAccountByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: main account of client %s", apperrors.ErrAccountNotFound, clientID)
		}
		return nil, err
	}

	amount := domain.RoundFiat(req.Amount)
	transactionID, err := s.idGen.Generate(ctx, domain.IDKindTransaction)
	if err != nil {
		return nil, err
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        amount,
		Description:   fmt.Sprintf("Mobile recharge %s (%s)", req.PhoneNumber, req.Operator),
		FromAccountID: main.AccountID,
		FromClientID:  clientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.MobileRechargeDetails{
		PhoneNumber:  req.PhoneNumber,
		Operator:     req.Operator,
		RechargeType: req.RechargeType,
	}, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if _, err := s.ledger.Debit(ctx, tx, main.AccountID, amount, clientID); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(clientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), string(domain.KindMobileRecharge)))
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Mobile recharge failed", slog.String("client_id", clientID))
		return nil, err
	}
	return &txn, nil
}

// CreateDeposit credits a managed client's account. The agent is the verifier.
func (s *transactionService) CreateDeposit(ctx context.Context, agentID string, req dto.CreateDepositRequest) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)
	}
	if err := s.AuthorizeAgent(ctx, agentID, req.ClientID); err != nil {
		return nil, err
	}
	acc, err := s.findAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if acc.ClientID != req.ClientID {
		s.LogWarn(ctx, "Deposit account does not belong to client",
			slog.String("client_id", req.ClientID), slog.String("account_id", req.AccountID))
		return nil, apperrors.ErrAccessDenied
	}
	agent, err := s.userRepo.FindAgentByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent %s: %w", agentID, err)
	}

	amount := domain.RoundFiat(req.Amount)
	now := s.Now()
	transactionID, err := s.idGen.Generate(ctx, domain.IDKindTransaction)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Deposit by agent " + agent.EmployeeID
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        amount,
		Description:   description,
		ToAccountID:   acc.AccountID,
		ToClientID:    acc.ClientID,
		ActorID:       agentID,
		Now:           now,
	}, domain.DepositDetails{DepositedBy: agent.EmployeeID}, domain.StatusVerified)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	txn.Verification = &domain.Verification{AgentID: agentID, VerifiedAt: now, Notes: depositVerificationNotes}

	maxBalance, hasMax := s.maxAccountBalance(ctx)

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		updated, err := s.ledger.Credit(ctx, tx, acc.AccountID, amount, agentID)
		if err != nil {
			return err
		}
		if hasMax && updated.Balance.GreaterThan(maxBalance) {
			return fmt.Errorf("%w: deposit would exceed the maximum account balance of %s", apperrors.ErrValidation, maxBalance.StringFixed(domain.FiatScale))
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(acc.ClientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), string(domain.KindDeposit)))
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Deposit failed", slog.String("agent_id", agentID), slog.String("account_id", acc.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Deposit created", slog.String("transaction_id", txn.TransactionID), slog.String("agent_id", agentID))
	return &txn, nil
}

func (s *transactionService) maxAccountBalance(ctx context.Context) (decimal.Decimal, bool) {
	if s.settingRepo == nil {
		return decimal.Zero, false
	}
	setting, err := s.settingRepo.FindSettingByKey(ctx, domain.MaxClientAccountBalanceSettingKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Could not read maximum account balance", slog.String("error", err.Error()))
		}
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(setting.Value)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

// VerifyTransaction applies an agent decision. Leaving PENDING settles or compensates
// balances in the same unit of work as the status change.
func (s *transactionService) VerifyTransaction(ctx context.Context, agentID, transactionID string, req dto.VerifyTransactionRequest) (*domain.Transaction, error) {
	if !req.Status.IsValid() || req.Status == domain.StatusPending {
		return nil, fmt.Errorf("%w: cannot verify into status %q", apperrors.ErrValidation, req.Status)
	}

	current, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
		}
		return nil, err
	}
	if err := s.authorizeForTransaction(ctx, agentID, current); err != nil {
		return nil, err
	}

	var result domain.Transaction
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		locked, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		from := locked.Status
		if !from.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, from, req.Status)
		}

		var (
			accountLegs []domain.LedgerEntry
			walletLegs  []domain.WalletEntry
		)
		effect := domain.TransitionEffect(from, req.Status)
		if effect != domain.EffectNone {
			current, err := s.currentWallets(ctx, *locked)
			if err != nil {
				return err
			}
			locked = &current
		}
		switch effect {
		case domain.EffectSettle:
			accountLegs, walletLegs = locked.SettlementLegs()
		case domain.EffectCompensate:
			accountLegs, walletLegs = locked.CompensationLegs()
		}
		if len(accountLegs) > 0 {
			if _, err := s.ledger.Post(ctx, tx, accountLegs, agentID); err != nil {
				return err
			}
		}
		if len(walletLegs) > 0 {
			if _, err := s.ledger.PostCrypto(ctx, tx, walletLegs); err != nil {
				return err
			}
		}

		now := s.Now()
		verification := &domain.Verification{AgentID: agentID, VerifiedAt: now, Notes: req.Notes}
		if err := s.txnRepo.UpdateTransactionStatusInTx(ctx, tx, transactionID, req.Status, verification, agentID, now); err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}

		locked.Status = req.Status
		locked.Verification = verification
		locked.LastUpdatedAt = now
		locked.LastUpdatedBy = agentID
		result = *locked

		if from != req.Status {
			events := make([]domain.NotificationEvent, 0, 2)
			for _, clientID := range uniqueNonEmpty(locked.FromClientID, locked.ToClientID) {
				events = append(events, domain.TransactionNotification(clientID, locked.TransactionID,
					locked.Amount.StringFixed(domain.FiatScale), string(req.Status)))
			}
			enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx, events...)
		}
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Verification failed",
			slog.String("agent_id", agentID), slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction verified",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(result.Status)),
		slog.String("agent_id", agentID))
	return &result, nil
}

// currentWallets points the crypto payload at the wallets the parties hold now.
// The stored address goes stale when a client changes it while the transaction is open.
func (s *transactionService) currentWallets(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	owner, counterparty := txn.WalletOwners()
	if s.walletRepo == nil || owner == "" {
		return txn, nil
	}
	resolve := func(clientID string) (string, error) {
		if clientID == "" {
			return "", nil
		}
		wallet, err := s.walletRepo.FindWalletByClientID(ctx, clientID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", fmt.Errorf("%w: client %s", apperrors.ErrWalletNotFound, clientID)
			}
			return "", fmt.Errorf("failed to load wallet: %w", err)
		}
		return wallet.WalletAddress, nil
	}
	ownerWallet, err := resolve(owner)
	if err != nil {
		return txn, err
	}
	counterpartyWallet, err := resolve(counterparty)
	if err != nil {
		return txn, err
	}
	return txn.WithWalletAddresses(ownerWallet, counterpartyWallet), nil
}

// authorizeForTransaction passes when the agent manages either party.
func (s *transactionService) authorizeForTransaction(ctx context.Context, agentID string, txn *domain.Transaction) error {
	for _, clientID := range uniqueNonEmpty(txn.FromClientID, txn.ToClientID) {
		err := s.AuthorizeAgent(ctx, agentID, clientID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrAccessDenied) {
			return err
		}
	}
	s.LogWarn(ctx, "Agent does not manage any party of the transaction",
		slog.String("agent_id", agentID), slog.String("transaction_id", txn.TransactionID))
	return apperrors.ErrAccessDenied
}

func (s *transactionService) GetTransaction(ctx context.Context, clientID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
		}
		return nil, err
	}
	if !txn.InvolvesClient(clientID) {
		return nil, apperrors.ErrAccessDenied
	}
	return txn, nil
}

func (s *transactionService) ListClientTransactions(ctx context.Context, clientID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	txns, next, err := s.txnRepo.ListTransactionsByClientID(ctx, clientID, portsrepo.TransactionFilter{}, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list client transactions", slog.String("client_id", clientID))
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, next, nil
}

func (s *transactionService) ListAgentTransactions(ctx context.Context, agentID string, params dto.ListAgentTransactionsParams) ([]domain.Transaction, *string, error) {
	filter := portsrepo.TransactionFilter{Status: params.Status}
	txns, next, err := s.txnRepo.ListTransactionsByAgentID(ctx, agentID, filter, clampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list agent transactions", slog.String("agent_id", agentID))
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, next, nil
}

func (s *transactionService) GetDepositStatistics(ctx context.Context, agentID string) (*domain.DepositStatistics, error) {
	stats, err := s.txnRepo.DepositStatistics(ctx, agentID, domain.PeriodsAt(s.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to compute deposit statistics: %w", err)
	}
	managed, err := s.clientRepo.CountClientsByAgentID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count managed clients: %w", err)
	}
	stats.AgentID = agentID
	stats.ManagedClientsCount = managed
	return stats, nil
}

// logFailure keeps expected business rejections out of the error log.
func (s *transactionService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	logFailure(ctx, &s.BaseService, err, msg, keyvals...)
}

func logFailure(ctx context.Context, base *BaseService, err error, msg string, keyvals ...any) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrConflict):
		base.LogWarn(ctx, msg, append([]any{slog.String("error", err.Error())}, keyvals...)...)
	default:
		base.LogError(ctx, err, msg, keyvals...)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func uniqueNonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
