package dto

import (
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
)

// CreateClientRequest is an agent enrollment of a new client.
type CreateClientRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"required,e164"`
	Address   string `json:"address" binding:"max=255"`
}

// UpdateClientRequest defines the data allowed for updating a client.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateClientRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,e164"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
}

// ClientResponse is the wire form of a client.
type ClientResponse struct {
	ClientID             string            `json:"clientID"`
	Username             string            `json:"username"`
	Email                string            `json:"email"`
	FirstName            string            `json:"firstName"`
	LastName             string            `json:"lastName"`
	Phone                string            `json:"phone"`
	Address              string            `json:"address"`
	IdentificationNumber string            `json:"identificationNumber"`
	AgentID              string            `json:"agentID"`
	Status               domain.UserStatus `json:"status"`
	CreatedAt            time.Time         `json:"createdAt"`
}

// CreateClientResponse includes the temporary password, shown exactly once.
type CreateClientResponse struct {
	Client            ClientResponse  `json:"client"`
	MainAccount       AccountResponse `json:"mainAccount"`
	WalletAddress     string          `json:"walletAddress"`
	TemporaryPassword string          `json:"temporaryPassword"`
}

// ToClientResponse converts a domain.Client to its DTO.
func ToClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:             c.ClientID(),
		Username:             c.Username,
		Email:                c.Email,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		Phone:                c.Phone,
		Address:              c.Address,
		IdentificationNumber: c.IdentificationNumber,
		AgentID:              c.AgentID,
		Status:               c.Status,
		CreatedAt:            c.CreatedAt,
	}
}

// ToListClientResponse converts a slice of clients.
func ToListClientResponse(clients []domain.Client) []ClientResponse {
	res := make([]ClientResponse, len(clients))
	for i := range clients {
		res[i] = ToClientResponse(&clients[i])
	}
	return res
}

// ToCreateClientResponse converts an enrollment.
func ToCreateClientResponse(e *domain.ClientEnrollment) CreateClientResponse {
	return CreateClientResponse{
		Client:            ToClientResponse(&e.Client),
		MainAccount:       ToAccountResponse(&e.Account),
		WalletAddress:     e.Wallet.WalletAddress,
		TemporaryPassword: e.TemporaryPassword,
	}
}
