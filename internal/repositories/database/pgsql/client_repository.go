package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/ebank_backoffice/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientSelect = `SELECT ` + userColumns + `, c.identification_number, c.agent_id, c.address FROM users u JOIN client_profiles c ON c.client_id = u.user_id`

type PgxClientRepository struct {
	db *pgxpool.Pool
}

func newPgxClientRepository(db *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{db: db}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

func scanClient(row rowScanner) (domain.Client, error) {
	var m models.User
	var p models.ClientProfile
	if err := row.Scan(append(userScanTargets(&m), &p.IdentificationNumber, &p.AgentID, &p.Address)...); err != nil {
		return domain.Client{}, err
	}
	return domain.Client{
		User:                 toDomainUser(m),
		IdentificationNumber: p.IdentificationNumber,
		AgentID:              p.AgentID,
		Address:              p.Address.String,
	}, nil
}

// SaveClient writes the user row and the client profile in tx.
func (r *PgxClientRepository) SaveClient(ctx context.Context, tx pgx.Tx, client domain.Client) error {
	if err := insertUser(ctx, tx, client.User); err != nil {
		return err
	}
	query := `
		INSERT INTO client_profiles (client_id, identification_number, agent_id, address)
		VALUES ($1, $2, $3, $4);
	`
	_, err := tx.Exec(ctx, query, client.UserID, client.IdentificationNumber, client.AgentID, nullString(client.Address))
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "identification number "+client.IdentificationNumber)
		}
		return fmt.Errorf("failed to save client profile %s: %w", client.UserID, err)
	}
	return nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := scanClient(r.db.QueryRow(ctx, clientSelect+` WHERE u.user_id = $1;`, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client %s: %w", clientID, err)
	}
	return &client, nil
}

func (r *PgxClientRepository) FindClientsByAgentID(ctx context.Context, agentID string) ([]domain.Client, error) {
	rows, err := r.db.Query(ctx, clientSelect+` WHERE c.agent_id = $1 ORDER BY u.created_at DESC, u.user_id;`, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients of agent %s: %w", agentID, err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

func (r *PgxClientRepository) AgentManagesClient(ctx context.Context, agentID, clientID string) (bool, error) {
	var managed bool
	query := `SELECT EXISTS(SELECT 1 FROM client_profiles WHERE client_id = $1 AND agent_id = $2);`
	if err := r.db.QueryRow(ctx, query, clientID, agentID).Scan(&managed); err != nil {
		return false, fmt.Errorf("failed to check agent %s for client %s: %w", agentID, clientID, err)
	}
	return managed, nil
}

func (r *PgxClientRepository) CountClientsByAgentID(ctx context.Context, agentID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM client_profiles WHERE agent_id = $1;`
	if err := r.db.QueryRow(ctx, query, agentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clients of agent %s: %w", agentID, err)
	}
	return count, nil
}

func (r *PgxClientRepository) CountClientsEnrolledSince(ctx context.Context, agentID string, since time.Time) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM client_profiles c JOIN users u ON u.user_id = c.client_id
		WHERE c.agent_id = $1 AND u.created_at >= $2;
	`
	if err := r.db.QueryRow(ctx, query, agentID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments of agent %s: %w", agentID, err)
	}
	return count, nil
}

// UpdateClient rewrites the editable user fields and the profile address in one statement.
func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		WITH updated AS (
			UPDATE users
			SET email = $2, first_name = $3, last_name = $4, phone = $5, last_updated_at = $6, last_updated_by = $7
			WHERE user_id = $1
			RETURNING user_id
		)
		UPDATE client_profiles
		SET address = $8
		WHERE client_id IN (SELECT user_id FROM updated);
	`
	cmdTag, err := r.db.Exec(ctx, query,
		client.UserID,
		client.Email,
		client.FirstName,
		nullString(client.LastName),
		nullString(client.Phone),
		client.LastUpdatedAt,
		client.LastUpdatedBy,
		nullString(client.Address),
	)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "email "+client.Email)
		}
		return fmt.Errorf("failed to update client %s: %w", client.UserID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
