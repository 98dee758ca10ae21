package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ClientReader defines read operations for client data
type ClientReader interface {
	// FindClientByID retrieves a client by its client ID.
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)

	// FindClientsByAgentID lists the clients managed by an agent.
	FindClientsByAgentID(ctx context.Context, agentID string) ([]domain.Client, error)

	// AgentManagesClient reports whether agentID is the managing agent of clientID.
	AgentManagesClient(ctx context.Context, agentID, clientID string) (bool, error)

	// CountClientsByAgentID counts the clients managed by an agent.
	CountClientsByAgentID(ctx context.Context, agentID string) (int64, error)

	// CountClientsEnrolledSince counts clients an agent enrolled at or after since.
	CountClientsEnrolledSince(ctx context.Context, agentID string, since time.Time) (int64, error)
}

// ClientWriter defines write operations for client data
type ClientWriter interface {
	// SaveClient persists the user row and the client profile inside tx.
	SaveClient(ctx context.Context, tx pgx.Tx, client domain.Client) error

	// UpdateClient updates the editable profile fields of a client.
	UpdateClient(ctx context.Context, client domain.Client) error
}

// ClientRepositoryFacade combines all client-related repository interfaces
type ClientRepositoryFacade interface {
	ClientReader
	ClientWriter
}
