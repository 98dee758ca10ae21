package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// userService manages staff users and authenticates every role.
type userService struct {
	BaseService
	txManager portsrepo.TransactionManager
	userRepo  portsrepo.UserRepositoryFacade
	idGen     portssvc.IDGeneratorSvc
}

// NewUserService creates a user service.
func NewUserService(txManager portsrepo.TransactionManager, userRepo portsrepo.UserRepositoryFacade, idGen portssvc.IDGeneratorSvc) portssvc.UserSvcFacade {
	return &userService{
		txManager: txManager,
		userRepo:  userRepo,
		idGen:     idGen,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

func (s *userService) ensureIdentityFree(ctx context.Context, username, email string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: username %s", apperrors.ErrDuplicateIdentity, username)
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: email %s", apperrors.ErrDuplicateIdentity, email)
	}
	return nil
}

// CreateBankAgent creates an agent with a generated EMP employee ID.
func (s *userService) CreateBankAgent(ctx context.Context, adminID string, req dto.CreateBankAgentRequest) (*domain.BankAgent, error) {
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.ensureIdentityFree(ctx, req.Username, req.Email); err != nil {
		logFailure(ctx, &s.BaseService, err, "Bank agent creation rejected", slog.String("admin_id", adminID))
		return nil, err
	}
	employeeID, err := s.idGen.Generate(ctx, domain.IDKindEmployee)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	agent := domain.BankAgent{
		User: domain.User{
			UserID:       uuid.NewString(),
			Username:     req.Username,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
			Role:         domain.RoleAgent,
			Status:       domain.UserStatusActive,
			PasswordHash: hash,
			AuditFields:  domain.NewAuditFields(adminID, s.Now()),
		},
		EmployeeID: employeeID,
		Branch:     req.Branch,
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return s.userRepo.SaveAgent(ctx, tx, agent)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create bank agent", slog.String("username", req.Username))
		return nil, fmt.Errorf("failed to create bank agent: %w", err)
	}

	s.LogInfo(ctx, "Bank agent created",
		slog.String("agent_id", agent.UserID),
		slog.String("employee_id", employeeID),
		slog.String("admin_id", adminID))
	return &agent, nil
}

func (s *userService) ListBankAgents(ctx context.Context) ([]domain.BankAgent, error) {
	agents, err := s.userRepo.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank agents: %w", err)
	}
	return agents, nil
}

// BootstrapAdmin is a no-op when an admin already exists or no credentials are configured.
func (s *userService) BootstrapAdmin(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		s.LogDebug(ctx, "No bootstrap admin configured")
		return nil
	}
	count, err := s.userRepo.CountUsersByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := utils.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: bootstrap admin password: %v", apperrors.ErrValidation, err)
	}
	if email == "" {
		email = username + "@localhost"
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		FirstName:    "Administrator",
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields("SYSTEM", s.Now()),
	}
	if err := s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		return s.userRepo.SaveUser(ctx, tx, admin)
	}); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	s.LogInfo(ctx, "Bootstrap admin created", slog.String("username", username))
	return nil
}

// AuthenticateUser returns ErrInvalidCredentials for unknown users, wrong passwords and inactive users alike.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogWarn(ctx, "Invalid password", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != domain.UserStatusActive {
		s.LogWarn(ctx, "Login attempt by inactive user",
			slog.String("user_id", user.UserID),
			slog.String("status", string(user.Status)))
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword checks the current password with bcrypt before storing the new hash.
func (s *userService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		s.LogWarn(ctx, "Password change with wrong current password", slog.String("user_id", userID))
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrValidation)
	}
	if req.NewPassword == req.CurrentPassword {
		return fmt.Errorf("%w: new password must differ from the current one", apperrors.ErrValidation)
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdateUserPassword(ctx, userID, hash, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to change password", slog.String("user_id", userID))
		return fmt.Errorf("failed to change password: %w", err)
	}
	s.LogInfo(ctx, "Password changed", slog.String("user_id", userID))
	return nil
}
