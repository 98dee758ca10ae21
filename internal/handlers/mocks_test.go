package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetMainAccount(ctx context.Context, clientID string) (*domain.Account, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, clientID string) ([]domain.Account, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccount(ctx context.Context, clientID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, clientID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetBalanceSummary(ctx context.Context, clientID string) (*domain.BalanceSummary, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSummary), args.Error(1)
}
func (m *MockAccountService) OpenAccount(ctx context.Context, clientID string, req dto.OpenAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

func (m *MockTransactionService) GetTransaction(ctx context.Context, clientID, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ListClientTransactions(ctx context.Context, clientID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, clientID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}
func (m *MockTransactionService) ListAgentTransactions(ctx context.Context, agentID string, params dto.ListAgentTransactionsParams) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, agentID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}
func (m *MockTransactionService) GetDepositStatistics(ctx context.Context, agentID string) (*domain.DepositStatistics, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositStatistics), args.Error(1)
}
func (m *MockTransactionService) CreateTransfer(ctx context.Context, clientID string, req dto.CreateTransferRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) CreateMobileRecharge(ctx context.Context, clientID string, req dto.MobileRechargeRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) CreateDeposit(ctx context.Context, agentID string, req dto.CreateDepositRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, agentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) VerifyTransaction(ctx context.Context, agentID, transactionID string, req dto.VerifyTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, agentID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock CryptoService ---
type MockCryptoService struct {
	mock.Mock
}

var _ portssvc.CryptoSvcFacade = (*MockCryptoService)(nil)

func (m *MockCryptoService) BuyFromMain(ctx context.Context, clientID string, req dto.BuyFromMainRequest) (*domain.CryptoPurchaseResult, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CryptoPurchaseResult), args.Error(1)
}
func (m *MockCryptoService) Buy(ctx context.Context, clientID string, req dto.CryptoBuyRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockCryptoService) Sell(ctx context.Context, clientID string, req dto.CryptoSellRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockCryptoService) TransferCrypto(ctx context.Context, clientID string, req dto.CryptoTransferRequest) (*domain.CryptoTransferResult, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CryptoTransferResult), args.Error(1)
}
func (m *MockCryptoService) GetWallet(ctx context.Context, clientID string, realtime bool) (*domain.WalletView, error) {
	args := m.Called(ctx, clientID, realtime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletView), args.Error(1)
}
func (m *MockCryptoService) UpdateWalletAddress(ctx context.Context, clientID string, req dto.UpdateWalletAddressRequest) (*domain.CryptoWallet, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CryptoWallet), args.Error(1)
}
func (m *MockCryptoService) GetCryptoHistory(ctx context.Context, clientID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockCryptoService) GetRates(ctx context.Context, realtime bool) (*domain.RateBoard, error) {
	args := m.Called(ctx, realtime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateBoard), args.Error(1)
}

// --- Mock ClientManagementService ---
type MockClientService struct {
	mock.Mock
}

var _ portssvc.ClientManagementSvcFacade = (*MockClientService)(nil)

func (m *MockClientService) AuthorizeAgentForClient(ctx context.Context, agentID, clientID string) error {
	return m.Called(ctx, agentID, clientID).Error(0)
}
func (m *MockClientService) CreateClient(ctx context.Context, agentID string, req dto.CreateClientRequest) (*domain.ClientEnrollment, error) {
	args := m.Called(ctx, agentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientEnrollment), args.Error(1)
}
func (m *MockClientService) ListManagedClients(ctx context.Context, agentID string) ([]domain.Client, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}
func (m *MockClientService) GetClient(ctx context.Context, agentID, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, agentID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) UpdateClient(ctx context.Context, agentID, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, agentID, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) DeactivateClient(ctx context.Context, agentID, clientID string) error {
	return m.Called(ctx, agentID, clientID).Error(0)
}
func (m *MockClientService) GetProfile(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

// --- Mock NotificationService ---
type MockNotificationService struct {
	mock.Mock
}

var _ portssvc.NotificationSvcFacade = (*MockNotificationService)(nil)

func (m *MockNotificationService) Enqueue(ctx context.Context, tx pgx.Tx, events ...domain.NotificationEvent) error {
	return m.Called(ctx, tx, events).Error(0)
}
func (m *MockNotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationService) CountNotifications(ctx context.Context, userID string) (int64, int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, userID, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}
func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockNotificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}
func (m *MockNotificationService) Deliver(ctx context.Context, event domain.NotificationEvent) error {
	return m.Called(ctx, event).Error(0)
}
func (m *MockNotificationService) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) CreateBankAgent(ctx context.Context, adminID string, req dto.CreateBankAgentRequest) (*domain.BankAgent, error) {
	args := m.Called(ctx, adminID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAgent), args.Error(1)
}
func (m *MockUserService) ListBankAgents(ctx context.Context) ([]domain.BankAgent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAgent), args.Error(1)
}
func (m *MockUserService) BootstrapAdmin(ctx context.Context, username, email, password string) error {
	return m.Called(ctx, username, email, password).Error(0)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

var _ portssvc.TokenSvc = (*MockTokenService)(nil)

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// --- Mock SettingsService ---
type MockSettingsService struct {
	mock.Mock
}

var _ portssvc.SettingsSvc = (*MockSettingsService)(nil)

func (m *MockSettingsService) GetAllSettings(ctx context.Context) ([]domain.GlobalSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GlobalSetting), args.Error(1)
}
func (m *MockSettingsService) GetSetting(ctx context.Context, key string) (*domain.GlobalSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GlobalSetting), args.Error(1)
}
func (m *MockSettingsService) UpdateSetting(ctx context.Context, key string, req dto.UpdateSettingRequest, adminID string) (*domain.GlobalSetting, error) {
	args := m.Called(ctx, key, req, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GlobalSetting), args.Error(1)
}
func (m *MockSettingsService) InitializeDefaults(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
