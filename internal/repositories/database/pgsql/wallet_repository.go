package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/ebank_backoffice/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const walletColumns = `wallet_address, client_id, status, supported_assets, created_at, created_by, last_updated_at, last_updated_by`

type PgxWalletRepository struct {
	pool *pgxpool.Pool
}

func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{pool: pool}
}

var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

func scanWallet(row rowScanner) (*domain.CryptoWallet, error) {
	var m models.CryptoWallet
	err := row.Scan(
		&m.WalletAddress,
		&m.ClientID,
		&m.Status,
		&m.SupportedAssets,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &domain.CryptoWallet{
		WalletAddress:   m.WalletAddress,
		ClientID:        m.ClientID,
		Status:          domain.WalletStatus(m.Status),
		SupportedAssets: m.SupportedAssets,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}

func scanBalance(row rowScanner) (domain.CryptoWalletBalance, error) {
	var m models.CryptoWalletBalance
	if err := row.Scan(&m.WalletAddress, &m.Symbol, &m.Balance, &m.LastUpdatedAt); err != nil {
		return domain.CryptoWalletBalance{}, err
	}
	return domain.CryptoWalletBalance(m), nil
}

func (r *PgxWalletRepository) findWallet(ctx context.Context, column, value string) (*domain.CryptoWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM crypto_wallets WHERE ` + column + ` = $1;`
	w, err := scanWallet(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by %s %s: %w", column, value, err)
	}
	return w, nil
}

func (r *PgxWalletRepository) FindWalletByClientID(ctx context.Context, clientID string) (*domain.CryptoWallet, error) {
	return r.findWallet(ctx, "client_id", clientID)
}

func (r *PgxWalletRepository) FindWalletByAddress(ctx context.Context, walletAddress string) (*domain.CryptoWallet, error) {
	return r.findWallet(ctx, "wallet_address", walletAddress)
}

func (r *PgxWalletRepository) FindBalances(ctx context.Context, walletAddress string) ([]domain.CryptoWalletBalance, error) {
	query := `
		SELECT wallet_address, symbol, balance, last_updated_at
		FROM crypto_wallet_balances
		WHERE wallet_address = $1
		ORDER BY symbol;
	`
	rows, err := r.pool.Query(ctx, query, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances of wallet %s: %w", walletAddress, err)
	}
	defer rows.Close()

	balances := []domain.CryptoWalletBalance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet balance rows: %w", err)
	}
	return balances, nil
}

func (r *PgxWalletRepository) SaveWallet(ctx context.Context, tx pgx.Tx, wallet domain.CryptoWallet) error {
	query := `
		INSERT INTO crypto_wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		wallet.WalletAddress,
		wallet.ClientID,
		string(wallet.Status),
		wallet.SupportedAssets,
		wallet.CreatedAt,
		wallet.CreatedBy,
		wallet.LastUpdatedAt,
		wallet.LastUpdatedBy,
	)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "wallet "+wallet.WalletAddress)
		}
		return fmt.Errorf("failed to save wallet %s: %w", wallet.WalletAddress, err)
	}
	return nil
}

// UpdateWalletAddress relies on ON UPDATE CASCADE to move the balance rows.
func (r *PgxWalletRepository) UpdateWalletAddress(ctx context.Context, tx pgx.Tx, clientID, newAddress, userID string, now time.Time) error {
	query := `
		UPDATE crypto_wallets
		SET wallet_address = $2, last_updated_at = $3, last_updated_by = $4
		WHERE client_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, clientID, newAddress, now, userID)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "wallet "+newAddress)
		}
		return fmt.Errorf("failed to update wallet address of client %s: %w", clientID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func sortedKeys(keys []domain.WalletKey) []domain.WalletKey {
	out := append([]domain.WalletKey(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// FindBalancesForUpdate seeds missing rows at zero, then locks every requested row in key order.
func (r *PgxWalletRepository) FindBalancesForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.WalletKey) (map[domain.WalletKey]domain.CryptoWalletBalance, error) {
	result := make(map[domain.WalletKey]domain.CryptoWalletBalance, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	keys = sortedKeys(keys)

	addresses := make([]string, len(keys))
	symbols := make([]string, len(keys))
	for i, k := range keys {
		addresses[i] = k.WalletAddress
		symbols[i] = k.Symbol
	}

	seed := `
		INSERT INTO crypto_wallet_balances (wallet_address, symbol, balance, last_updated_at)
		SELECT k.wallet_address, k.symbol, 0, NOW()
		FROM unnest($1::text[], $2::text[]) AS k(wallet_address, symbol)
		ORDER BY k.wallet_address, k.symbol
		ON CONFLICT (wallet_address, symbol) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, seed, addresses, symbols); err != nil {
		return nil, balanceSeedError(err)
	}

	lock := `
		SELECT b.wallet_address, b.symbol, b.balance, b.last_updated_at
		FROM crypto_wallet_balances b
		JOIN unnest($1::text[], $2::text[]) AS k(wallet_address, symbol)
		  ON k.wallet_address = b.wallet_address AND k.symbol = b.symbol
		ORDER BY b.wallet_address, b.symbol
		FOR UPDATE OF b;
	`
	rows, err := tx.Query(ctx, lock, addresses, symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet balance rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked wallet balance row: %w", err)
		}
		result[domain.WalletKey{WalletAddress: b.WalletAddress, Symbol: b.Symbol}] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked wallet balance rows: %w", err)
	}
	if len(result) != len(keys) {
		return nil, fmt.Errorf("%w: could not lock all wallet balance rows", apperrors.ErrWalletNotFound)
	}
	return result, nil
}

// UpsertBalancesInTx writes absolute balances in key order.
func (r *PgxWalletRepository) UpsertBalancesInTx(ctx context.Context, tx pgx.Tx, balances map[domain.WalletKey]decimal.Decimal, now time.Time) error {
	if len(balances) == 0 {
		return nil
	}
	keys := make([]domain.WalletKey, 0, len(balances))
	for k := range balances {
		keys = append(keys, k)
	}
	keys = sortedKeys(keys)

	query := `
		INSERT INTO crypto_wallet_balances (wallet_address, symbol, balance, last_updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_address, symbol)
		DO UPDATE SET balance = EXCLUDED.balance, last_updated_at = EXCLUDED.last_updated_at;
	`
	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(query, k.WalletAddress, k.Symbol, balances[k], now)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for _, k := range keys {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			if isCheckViolation(err) {
				batchErr = fmt.Errorf("%w: %s balance of %s cannot go below zero", apperrors.ErrInsufficientFunds, k.Symbol, k.WalletAddress)
			} else {
				batchErr = fmt.Errorf("failed to write %s balance of %s: %w", k.Symbol, k.WalletAddress, err)
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close wallet balance batch: %w", err)
	}
	return batchErr
}

// balanceSeedError maps a foreign key violation on crypto_wallet_balances to a missing wallet.
func balanceSeedError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fmt.Errorf("%w: %s", apperrors.ErrWalletNotFound, pgErr.Detail)
	}
	return fmt.Errorf("failed to seed wallet balance rows: %w", err)
}
