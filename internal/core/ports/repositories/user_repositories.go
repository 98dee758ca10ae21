package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a user by ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by username.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountUsersByRole counts users holding role.
	CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error)
}

// AgentReader defines read operations for bank agents
type AgentReader interface {
	// FindAgentByID retrieves a bank agent by user ID.
	FindAgentByID(ctx context.Context, agentID string) (*domain.BankAgent, error)

	// ListAgents lists every bank agent.
	ListAgents(ctx context.Context) ([]domain.BankAgent, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user inside tx.
	SaveUser(ctx context.Context, tx pgx.Tx, user domain.User) error

	// SaveAgent persists a new user and its agent profile inside tx.
	SaveAgent(ctx context.Context, tx pgx.Tx, agent domain.BankAgent) error

	// UpdateUserStatus changes the login status of a user.
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus, updatedBy string, now time.Time) error

	// UpdateUserPassword stores a new password hash.
	UpdateUserPassword(ctx context.Context, userID, passwordHash string, now time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	AgentReader
	UserWriter
}
