package services

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AgentAdminSvc defines admin operations on bank staff
type AgentAdminSvc interface {
	// CreateBankAgent creates an agent with a generated employee ID.
	CreateBankAgent(ctx context.Context, adminID string, req dto.CreateBankAgentRequest) (*domain.BankAgent, error)

	// ListBankAgents lists every agent.
	ListBankAgents(ctx context.Context) ([]domain.BankAgent, error)

	// BootstrapAdmin creates the configured admin account when no admin exists.
	BootstrapAdmin(ctx context.Context, username, email, password string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser checks credentials; inactive users are rejected.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)

	// ChangePassword replaces the caller's password after checking the current one.
	ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	AgentAdminSvc
	UserAuthSvc
}

// TokenSvc issues access tokens.
type TokenSvc interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
