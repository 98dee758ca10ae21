package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/ebank_backoffice/internal/models"
	"github.com/SscSPs/ebank_backoffice/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, kind, status, amount, description, from_account_id, to_account_id, from_client_id, to_client_id, transaction_date, verified_by, verified_at, verification_notes, details, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Kind,
		&m.Status,
		&m.Amount,
		&m.Description,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.FromClientID,
		&m.ToClientID,
		&m.TransactionDate,
		&m.VerifiedBy,
		&m.VerifiedAt,
		&m.VerificationNotes,
		&m.Details,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return toDomainTransaction(m)
}

func toDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	kind := domain.TransactionKind(m.Kind)
	details, err := domain.DecodeTransactionDetails(kind, m.Details)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", m.TransactionID, err)
	}
	t := domain.Transaction{
		TransactionID:   m.TransactionID,
		Kind:            kind,
		Status:          domain.TransactionStatus(m.Status),
		Amount:          m.Amount,
		Description:     m.Description,
		FromAccountID:   m.FromAccountID.String,
		ToAccountID:     m.ToAccountID.String,
		FromClientID:    m.FromClientID.String,
		ToClientID:      m.ToClientID.String,
		TransactionDate: m.TransactionDate,
		Details:         details,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.VerifiedBy.Valid {
		t.Verification = &domain.Verification{
			AgentID:    m.VerifiedBy.String,
			VerifiedAt: m.VerifiedAt.Time,
			Notes:      m.VerificationNotes.String,
		}
	}
	return t, nil
}

// SaveTransaction appends a transaction record. Rows are never deleted.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, tx pgx.Tx, t domain.Transaction) error {
	details, err := domain.EncodeTransactionDetails(t.Details)
	if err != nil {
		return fmt.Errorf("failed to encode details of transaction %s: %w", t.TransactionID, err)
	}

	var verifiedBy, notes *string
	var verifiedAt *time.Time
	if v := t.Verification; v != nil {
		verifiedBy, verifiedAt, notes = &v.AgentID, &v.VerifiedAt, &v.Notes
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, query,
		t.TransactionID,
		string(t.Kind),
		string(t.Status),
		t.Amount,
		t.Description,
		nullString(t.FromAccountID),
		nullString(t.ToAccountID),
		nullString(t.FromClientID),
		nullString(t.ToClientID),
		t.TransactionDate,
		verifiedBy,
		verifiedAt,
		notes,
		details,
		t.CreatedAt,
		t.CreatedBy,
		t.LastUpdatedAt,
		t.LastUpdatedBy,
	)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "transaction "+t.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", t.TransactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, r.Pool, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1;`, transactionID)
}

func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, tx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID)
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, q querier, query, transactionID string) (*domain.Transaction, error) {
	t, err := scanTransaction(q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return &t, nil
}

// UpdateTransactionStatusInTx writes the new status. A nil verification keeps the stored one.
func (r *PgxTransactionRepository) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, verification *domain.Verification, userID string, now time.Time) error {
	var (
		query string
		args  []any
	)
	if verification == nil {
		query = `
			UPDATE transactions
			SET status = $2, last_updated_at = $3, last_updated_by = $4
			WHERE transaction_id = $1;
		`
		args = []any{transactionID, string(status), now, userID}
	} else {
		query = `
			UPDATE transactions
			SET status = $2, last_updated_at = $3, last_updated_by = $4,
			    verified_by = $5, verified_at = $6, verification_notes = $7
			WHERE transaction_id = $1;
		`
		args = []any{transactionID, string(status), now, userID,
			verification.AgentID, verification.VerifiedAt, verification.Notes}
	}

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListTransactionsByClientID lists transactions where the client is sender or recipient.
func (r *PgxTransactionRepository) ListTransactionsByClientID(ctx context.Context, clientID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	return r.listPage(ctx, `(from_client_id = $1 OR to_client_id = $1)`, clientID, filter, limit, nextToken)
}

// ListTransactionsByAgentID lists transactions touching any client the agent manages.
func (r *PgxTransactionRepository) ListTransactionsByAgentID(ctx context.Context, agentID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	scope := `(from_client_id IN (SELECT client_id FROM client_profiles WHERE agent_id = $1)
	        OR to_client_id IN (SELECT client_id FROM client_profiles WHERE agent_id = $1))`
	return r.listPage(ctx, scope, agentID, filter, limit, nextToken)
}

// listPage runs a keyset-paginated listing ordered by transaction_date then transaction_id, newest first.
func (r *PgxTransactionRepository) listPage(ctx context.Context, scope, scopeArg string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var sb strings.Builder
	args := []any{scopeArg}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE ` + scope)
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		sb.WriteString(` AND kind = ANY(` + next(kinds) + `)`)
	}
	if filter.Status != nil {
		sb.WriteString(` AND status = ` + next(string(*filter.Status)))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		// Tuple comparison keeps the cursor stable when dates collide.
		sb.WriteString(` AND (transaction_date, transaction_id) < (` + next(lastDate) + `, ` + next(lastID) + `)`)
	}
	sb.WriteString(` ORDER BY transaction_date DESC, transaction_id DESC LIMIT ` + next(fetchLimit) + `;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	results := make([]domain.Transaction, 0, fetchLimit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	if len(results) <= limit {
		return results, nil, nil
	}
	// The token points to the last item included in this page.
	last := results[limit-1]
	token := pagination.EncodeToken(last.TransactionDate, last.TransactionID)
	return results[:limit], &token, nil
}

// DepositStatistics aggregates deposits verified by agentID in a single pass.
func (r *PgxTransactionRepository) DepositStatistics(ctx context.Context, agentID string, periods domain.DepositPeriods) (*domain.DepositStatistics, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE transaction_date >= $3),
			COALESCE(SUM(amount) FILTER (WHERE transaction_date >= $3), 0),
			COUNT(*) FILTER (WHERE transaction_date >= $4),
			COALESCE(SUM(amount) FILTER (WHERE transaction_date >= $4), 0),
			COUNT(*) FILTER (WHERE transaction_date >= $5),
			COALESCE(SUM(amount) FILTER (WHERE transaction_date >= $5), 0),
			COUNT(*),
			COALESCE(SUM(amount), 0),
			COALESCE(MAX(amount), 0),
			COALESCE(MIN(amount), 0),
			MAX(transaction_date)
		FROM transactions
		WHERE kind = $2 AND verified_by = $1;
	`
	stats := &domain.DepositStatistics{AgentID: agentID}
	var lastDate *time.Time
	err := r.Pool.QueryRow(ctx, query, agentID, string(domain.KindDeposit),
		periods.StartOfDay, periods.StartOfWeek, periods.StartOfMonth,
	).Scan(
		&stats.Today.Count, &stats.Today.Amount,
		&stats.ThisWeek.Count, &stats.ThisWeek.Amount,
		&stats.ThisMonth.Count, &stats.ThisMonth.Amount,
		&stats.Total.Count, &stats.Total.Amount,
		&stats.LargestDeposit,
		&stats.SmallestDeposit,
		&lastDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate deposits of agent %s: %w", agentID, err)
	}
	if stats.Total.Count > 0 {
		stats.AverageDeposit = domain.RoundFiat(stats.Total.Amount.Div(decimal.NewFromInt(stats.Total.Count)))
	}
	stats.LastDepositDate = lastDate
	return stats, nil
}
