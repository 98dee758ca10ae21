package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// identifierLookups maps each ID family to the query that finds it.
var identifierLookups = map[domain.IDKind]string{
	domain.IDKindClient:               `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1);`,
	domain.IDKindIdentificationNumber: `SELECT EXISTS(SELECT 1 FROM client_profiles WHERE identification_number = $1);`,
	domain.IDKindAccount:              `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1);`,
	domain.IDKindTransaction:          `SELECT EXISTS(SELECT 1 FROM transactions WHERE transaction_id = $1);`,
	domain.IDKindWalletAddress:        `SELECT EXISTS(SELECT 1 FROM crypto_wallets WHERE wallet_address = $1);`,
	domain.IDKindEmployee:             `SELECT EXISTS(SELECT 1 FROM bank_agents WHERE employee_id = $1);`,
}

type PgxIdentifierRepository struct {
	pool *pgxpool.Pool
}

func newPgxIdentifierRepository(pool *pgxpool.Pool) portsrepo.IdentifierRegistry {
	return &PgxIdentifierRepository{pool: pool}
}

var _ portsrepo.IdentifierRegistry = (*PgxIdentifierRepository)(nil)

func (r *PgxIdentifierRepository) IdentifierExists(ctx context.Context, kind domain.IDKind, id string) (bool, error) {
	query, ok := identifierLookups[kind]
	if !ok {
		return false, fmt.Errorf("unknown identifier kind %q", kind)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s identifier: %w", kind, err)
	}
	return exists, nil
}
