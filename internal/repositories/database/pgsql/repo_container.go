package pgsql

import (
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        &BaseRepository{Pool: dbPool},
		AccountRepo:      newPgxAccountRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		ClientRepo:       newPgxClientRepository(dbPool),
		WalletRepo:       newPgxWalletRepository(dbPool),
		TransactionRepo:  newPgxTransactionRepository(dbPool),
		NotificationRepo: newPgxNotificationRepository(dbPool),
		OutboxRepo:       newPgxOutboxRepository(dbPool),
		SettingRepo:      newPgxSettingRepository(dbPool),
		IdentifierRepo:   newPgxIdentifierRepository(dbPool),
	}
}
