package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager        TransactionManager
	AccountRepo      AccountRepositoryFacade
	UserRepo         UserRepositoryFacade
	ClientRepo       ClientRepositoryFacade
	WalletRepo       WalletRepositoryFacade
	TransactionRepo  TransactionRepositoryFacade
	NotificationRepo NotificationRepositoryFacade
	OutboxRepo       OutboxRepository
	SettingRepo      SettingRepository
	IdentifierRepo   IdentifierRegistry
}
