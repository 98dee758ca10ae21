package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const temporaryPasswordLength = 12

// clientManagementService enrolls and maintains clients on behalf of their agent.
type clientManagementService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	userRepo    portsrepo.UserRepositoryFacade
	clientRepo  portsrepo.ClientRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	walletRepo  portsrepo.WalletRepositoryFacade
	settingRepo portsrepo.SettingRepository
	idGen       portssvc.IDGeneratorSvc
	notifier    portssvc.NotificationPublisherSvc
}

// ClientManagementServiceOption is a function that configures a clientManagementService
type ClientManagementServiceOption func(*clientManagementService)

// WithClientNotifier sets the notification publisher.
func WithClientNotifier(notifier portssvc.NotificationPublisherSvc) ClientManagementServiceOption {
	return func(s *clientManagementService) {
		s.notifier = notifier
	}
}

// WithClientSettings enables the daily enrollment limit.
func WithClientSettings(settingRepo portsrepo.SettingRepository) ClientManagementServiceOption {
	return func(s *clientManagementService) {
		s.settingRepo = settingRepo
	}
}

// NewClientManagementService creates a new client management service with the given options.
// The service authorizes agents against its own client repository.
func NewClientManagementService(
	txManager portsrepo.TransactionManager,
	userRepo portsrepo.UserRepositoryFacade,
	clientRepo portsrepo.ClientRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	walletRepo portsrepo.WalletRepositoryFacade,
	idGen portssvc.IDGeneratorSvc,
	options ...ClientManagementServiceOption,
) portssvc.ClientManagementSvcFacade {
	s := &clientManagementService{
		txManager:   txManager,
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		idGen:       idGen,
	}
	s.AgentAuthorizer = s
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ClientManagementSvcFacade = (*clientManagementService)(nil)

// AuthorizeAgentForClient returns ErrAccessDenied unless agentID manages clientID.
func (s *clientManagementService) AuthorizeAgentForClient(ctx context.Context, agentID, clientID string) error {
	ok, err := s.clientRepo.AgentManagesClient(ctx, agentID, clientID)
	if err != nil {
		return fmt.Errorf("failed to check client ownership: %w", err)
	}
	if !ok {
		s.LogWarn(ctx, "Agent does not manage client",
			slog.String("agent_id", agentID),
			slog.String("client_id", clientID))
		return apperrors.ErrAccessDenied
	}
	return nil
}

func (s *clientManagementService) checkIdentityFree(ctx context.Context, username, email string) error {
	if username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: username %s", apperrors.ErrDuplicateIdentity, username)
		}
	}
	if email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: email %s", apperrors.ErrDuplicateIdentity, email)
		}
	}
	return nil
}

func (s *clientManagementService) checkDailyLimit(ctx context.Context, agentID string) error {
	if s.settingRepo == nil {
		return nil
	}
	setting, err := s.settingRepo.FindSettingByKey(ctx, domain.MaxDailyNewClientsSettingKey)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Could not read daily enrollment limit", slog.String("error", err.Error()))
		}
		return nil
	}
	limit, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil || limit <= 0 {
		return nil
	}
	enrolled, err := s.clientRepo.CountClientsEnrolledSince(ctx, agentID, domain.PeriodsAt(s.Now()).StartOfDay)
	if err != nil {
		return fmt.Errorf("failed to count today's enrollments: %w", err)
	}
	if enrolled >= limit {
		return fmt.Errorf("%w: daily limit of %d new clients reached", apperrors.ErrValidation, limit)
	}
	return nil
}

// CreateClient writes the client, its main CHECKING account and its wallet together.
func (s *clientManagementService) CreateClient(ctx context.Context, agentID string, req dto.CreateClientRequest) (*domain.ClientEnrollment, error) {
	if err := s.checkIdentityFree(ctx, req.Username, req.Email); err != nil {
		logFailure(ctx, &s.BaseService, err, "Client enrollment rejected", slog.String("agent_id", agentID))
		return nil, err
	}
	if err := s.checkDailyLimit(ctx, agentID); err != nil {
		return nil, err
	}

	clientID, err := s.idGen.Generate(ctx, domain.IDKindClient)
	if err != nil {
		return nil, err
	}
	idNumber, err := s.idGen.Generate(ctx, domain.IDKindIdentificationNumber)
	if err != nil {
		return nil, err
	}
	accountID, err := s.idGen.Generate(ctx, domain.IDKindAccount)
	if err != nil {
		return nil, err
	}
	walletAddress, err := s.idGen.Generate(ctx, domain.IDKindWalletAddress)
	if err != nil {
		return nil, err
	}

	password, err := utils.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	now := s.Now()
	audit := domain.NewAuditFields(agentID, now)
	client := domain.Client{
		User: domain.User{
			UserID:       clientID,
			Username:     req.Username,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         domain.RoleClient,
			Status:       domain.UserStatusActive,
			PasswordHash: hash,
			AuditFields:  audit,
		},
		IdentificationNumber: idNumber,
		AgentID:              agentID,
		Address:              req.Address,
	}
	account := domain.Account{
		AccountID:    accountID,
		ClientID:     clientID,
		AccountType:  domain.AccountTypeChecking,
		Status:       domain.AccountStatusActive,
		CurrencyCode: domain.BaseCurrency,
		Balance:      decimal.Zero,
		AuditFields:  audit,
	}
	wallet := domain.CryptoWallet{
		WalletAddress:   walletAddress,
		ClientID:        clientID,
		Status:          domain.WalletStatusActive,
		SupportedAssets: append([]string(nil), domain.SupportedAssets...),
		AuditFields:     audit,
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.clientRepo.SaveClient(ctx, tx, client); err != nil {
			return fmt.Errorf("failed to save client: %w", err)
		}
		if err := s.accountRepo.SaveAccount(ctx, tx, account); err != nil {
			return fmt.Errorf("failed to save main account: %w", err)
		}
		if err := s.walletRepo.SaveWallet(ctx, tx, wallet); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.InfoNotification(clientID, "Welcome",
				fmt.Sprintf("Welcome %s! Your account %s and your crypto wallet are ready.", client.FullName(), accountID)))
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to enroll client", slog.String("agent_id", agentID))
		return nil, err
	}

	s.LogInfo(ctx, "Client enrolled",
		slog.String("client_id", clientID),
		slog.String("agent_id", agentID),
		slog.String("account_id", accountID))
	return &domain.ClientEnrollment{
		Client:            client,
		Account:           account,
		Wallet:            wallet,
		TemporaryPassword: password,
	}, nil
}

func (s *clientManagementService) ListManagedClients(ctx context.Context, agentID string) ([]domain.Client, error) {
	clients, err := s.clientRepo.FindClientsByAgentID(ctx, agentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients", slog.String("agent_id", agentID))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientManagementService) findClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrClientNotFound, clientID)
		}
		return nil, err
	}
	return client, nil
}

func (s *clientManagementService) GetClient(ctx context.Context, agentID, clientID string) (*domain.Client, error) {
	if err := s.AuthorizeAgent(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.findClient(ctx, clientID)
}

func (s *clientManagementService) UpdateClient(ctx context.Context, agentID, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	if err := s.AuthorizeAgent(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != client.Email {
		if err := s.checkIdentityFree(ctx, "", *req.Email); err != nil {
			return nil, err
		}
		client.Email = *req.Email
	}
	if req.FirstName != nil {
		client.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		client.LastName = *req.LastName
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	client.LastUpdatedAt = s.Now()
	client.LastUpdatedBy = agentID

	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		s.LogError(ctx, err, "Failed to update client", slog.String("client_id", clientID))
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *clientManagementService) DeactivateClient(ctx context.Context, agentID, clientID string) error {
	if err := s.AuthorizeAgent(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.userRepo.UpdateUserStatus(ctx, clientID, domain.UserStatusInactive, agentID, s.Now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrClientNotFound, clientID)
		}
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	s.LogInfo(ctx, "Client deactivated", slog.String("client_id", clientID), slog.String("agent_id", agentID))
	return nil
}

func (s *clientManagementService) GetProfile(ctx context.Context, clientID string) (*domain.Client, error) {
	return s.findClient(ctx, clientID)
}
