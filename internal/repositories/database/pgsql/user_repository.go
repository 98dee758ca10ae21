package pgsql

import (
	"context"
	"database/sql"
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

const userColumns = `u.user_id, u.username, u.email, u.first_name, u.last_name, u.phone, u.role, u.status, u.password_hash, u.created_at, u.created_by, u.last_updated_at, u.last_updated_by`

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{db: db}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Helper to convert domain.User to models.User
func toModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Username:     d.Username,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     nullString(d.LastName),
		Phone:        nullString(d.Phone),
		Role:         string(d.Role),
		Status:       string(d.Status),
		PasswordHash: d.PasswordHash,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert models.User to domain.User
func toDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName.String,
		Phone:        m.Phone.String,
		Role:         domain.UserRole(m.Role),
		Status:       domain.UserStatus(m.Status),
		PasswordHash: m.PasswordHash,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// userScanTargets returns the scan destinations matching userColumns.
func userScanTargets(m *models.User) []any {
	return []any{
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.Phone,
		&m.Role,
		&m.Status,
		&m.PasswordHash,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	}
}

// insertUser writes the users row shared by clients, agents and admins.
func insertUser(ctx context.Context, q querier, user domain.User) error {
	m := toModelUser(user)
	query := `
		INSERT INTO users (user_id, username, email, first_name, last_name, phone, role, status, password_hash, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := q.Exec(ctx, query,
		m.UserID,
		m.Username,
		m.Email,
		m.FirstName,
		m.LastName,
		m.Phone,
		m.Role,
		m.Status,
		m.PasswordHash,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "user "+user.Username)
		}
		return fmt.Errorf("failed to save user %s: %w", user.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, tx pgx.Tx, user domain.User) error {
	return insertUser(ctx, tx, user)
}

func (r *PgxUserRepository) SaveAgent(ctx context.Context, tx pgx.Tx, agent domain.BankAgent) error {
	if err := insertUser(ctx, tx, agent.User); err != nil {
		return err
	}
	query := `INSERT INTO bank_agents (agent_id, employee_id, branch) VALUES ($1, $2, $3);`
	if _, err := tx.Exec(ctx, query, agent.UserID, agent.EmployeeID, nullString(agent.Branch)); err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			return duplicateError(pgErr, "employee "+agent.EmployeeID)
		}
		return fmt.Errorf("failed to save agent profile %s: %w", agent.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + where + `;`
	var m models.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(userScanTargets(&m)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	u := toDomainUser(m)
	return &u, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.findOne(ctx, "u.user_id = $1", userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return u, err
}

// FindUserByUsername looks a user up for login.
func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := r.findOne(ctx, "u.username = $1", username)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, err)
	}
	return u, err
}

func (r *PgxUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1);`
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username %s: %w", username, err)
	}
	return exists, nil
}

// ExistsByEmail compares emails case-insensitively.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1));`
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *PgxUserRepository) CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE role = $1;`
	if err := r.db.QueryRow(ctx, query, string(role)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users with role %s: %w", role, err)
	}
	return count, nil
}

const agentSelect = `SELECT ` + userColumns + `, a.employee_id, a.branch FROM users u JOIN bank_agents a ON a.agent_id = u.user_id`

func scanAgent(row rowScanner) (domain.BankAgent, error) {
	var m models.User
	var p models.BankAgentProfile
	if err := row.Scan(append(userScanTargets(&m), &p.EmployeeID, &p.Branch)...); err != nil {
		return domain.BankAgent{}, err
	}
	return domain.BankAgent{
		User:       toDomainUser(m),
		EmployeeID: p.EmployeeID,
		Branch:     p.Branch.String,
	}, nil
}

func (r *PgxUserRepository) FindAgentByID(ctx context.Context, agentID string) (*domain.BankAgent, error) {
	agent, err := scanAgent(r.db.QueryRow(ctx, agentSelect+` WHERE u.user_id = $1;`, agentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find agent %s: %w", agentID, err)
	}
	return &agent, nil
}

func (r *PgxUserRepository) ListAgents(ctx context.Context) ([]domain.BankAgent, error) {
	rows, err := r.db.Query(ctx, agentSelect+` ORDER BY a.employee_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	agents := []domain.BankAgent{}
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agent rows: %w", err)
	}
	return agents, nil
}

func (r *PgxUserRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string, now time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, last_updated_at = $3, last_updated_by = $1
		WHERE user_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, userID, passwordHash, now)
	if err != nil {
		return fmt.Errorf("failed to update password of user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus, updatedBy string, now time.Time) error {
	query := `
		UPDATE users
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, userID, string(status), now, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status of user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
