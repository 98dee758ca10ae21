package services

import (
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, rateProvider portssvc.RateProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Leaf services first; the ledger and transaction flows depend on them.
	container.Fee = NewFeeService(repos.SettingRepo)
	container.IDGenerator = NewIDGeneratorService(repos.IdentifierRepo)
	container.Ledger = NewLedgerService(repos.AccountRepo, repos.WalletRepo)
	container.Rates = NewRateService(rateProvider)
	container.Notification = NewNotificationService(
		repos.NotificationRepo,
		repos.OutboxRepo,
		WithNotificationExchange(cfg.NotificationExchange),
	)

	// Client management owns the agent-to-client ownership check.
	container.ClientManagement = NewClientManagementService(
		repos.TxManager,
		repos.UserRepo,
		repos.ClientRepo,
		repos.AccountRepo,
		repos.WalletRepo,
		container.IDGenerator,
		WithClientNotifier(container.Notification),
		WithClientSettings(repos.SettingRepo),
	)

	container.Account = NewAccountService(
		repos.TxManager,
		repos.AccountRepo,
		container.IDGenerator,
		WithAccountNotifier(container.Notification),
	)

	container.Transaction = NewTransactionService(
		repos.TxManager,
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.UserRepo,
		repos.ClientRepo,
		container.Ledger,
		container.Fee,
		container.IDGenerator,
		WithTransactionNotifier(container.Notification),
		WithTransactionAuthorizer(container.ClientManagement),
		WithTransactionSettings(repos.SettingRepo),
		WithTransactionWallets(repos.WalletRepo),
	)

	container.Crypto = NewCryptoService(
		repos.TxManager,
		repos.AccountRepo,
		repos.WalletRepo,
		repos.TransactionRepo,
		container.Ledger,
		container.Fee,
		container.Rates,
		container.IDGenerator,
		WithCryptoNotifier(container.Notification),
	)

	container.Settings = NewSettingsService(repos.SettingRepo)
	container.User = NewUserService(repos.TxManager, repos.UserRepo, container.IDGenerator)
	container.Token = NewTokenService(cfg)

	return container
}
