package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/jackc/pgx/v5"
)

// BaseService provides common functionality for all services
type BaseService struct {
	AgentAuthorizer portssvc.AgentAuthorizerSvc
	Clock           func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the current UTC time from the configured clock.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// AuthorizeAgent checks that an agent manages a client. Without an authorizer every request is denied.
func (s *BaseService) AuthorizeAgent(ctx context.Context, agentID, clientID string) error {
	if s.AgentAuthorizer == nil {
		s.LogWarn(ctx, "No agent authorizer configured, denying access",
			slog.String("agent_id", agentID),
			slog.String("client_id", clientID))
		return apperrors.ErrAccessDenied
	}
	return s.AgentAuthorizer.AuthorizeAgentForClient(ctx, agentID, clientID)
}

// RunInTx runs fn inside a database transaction and commits when it returns nil.
func (s *BaseService) RunInTx(ctx context.Context, txm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := txm.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = txm.Rollback(ctx, tx) // no-op once committed
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return txm.Commit(ctx, tx)
}
