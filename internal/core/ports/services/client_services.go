package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// AgentAuthorizerSvc answers agent-to-client ownership questions
type AgentAuthorizerSvc interface {
	// AuthorizeAgentForClient returns ErrAccessDenied unless agentID manages clientID.
	AuthorizeAgentForClient(ctx context.Context, agentID, clientID string) error
}

// ClientManagementSvc defines agent operations on clients
type ClientManagementSvc interface {
	// CreateClient enrolls a client with a main account and a wallet in one unit of work.
	CreateClient(ctx context.Context, agentID string, req dto.CreateClientRequest) (*domain.ClientEnrollment, error)
	ListManagedClients(ctx context.Context, agentID string) ([]domain.Client, error)
	GetClient(ctx context.Context, agentID, clientID string) (*domain.Client, error)
	UpdateClient(ctx context.Context, agentID, clientID string, req dto.UpdateClientRequest) (*domain.Client, error)
	DeactivateClient(ctx context.Context, agentID, clientID string) error
}

// ClientProfileSvc serves a client's own profile
type ClientProfileSvc interface {
	GetProfile(ctx context.Context, clientID string) (*domain.Client, error)
}

// ClientManagementSvcFacade combines all client-related service interfaces
type ClientManagementSvcFacade interface {
	AgentAuthorizerSvc
	ClientManagementSvc
	ClientProfileSvc
}
