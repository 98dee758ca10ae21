package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Fee              FeeSvc
	IDGenerator      IDGeneratorSvc
	Ledger           LedgerSvc
	Rates            RateSvc
	Notification     NotificationSvcFacade
	Account          AccountSvcFacade
	Transaction      TransactionSvcFacade
	Crypto           CryptoSvcFacade
	ClientManagement ClientManagementSvcFacade
	Settings         SettingsSvc
	User             UserSvcFacade
	Token            TokenSvc
}
