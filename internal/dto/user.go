package dto

import (
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
)

// CreateBankAgentRequest is an admin request to create a bank agent.
type CreateBankAgentRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"omitempty,e164"`
	Branch    string `json:"branch" binding:"required,max=100"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// ChangePasswordRequest replaces the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// ChangePasswordResponse reports the outcome of a password change.
type ChangePasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	UserID    string            `json:"userID"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Role      domain.UserRole   `json:"role"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// BankAgentResponse adds the staff fields.
type BankAgentResponse struct {
	UserResponse
	EmployeeID string `json:"employeeID"`
	Branch     string `json:"branch"`
}

// ToUserResponse converts a domain.User to its DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.FullName(),
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// ToBankAgentResponse converts a domain.BankAgent to its DTO.
func ToBankAgentResponse(a *domain.BankAgent) BankAgentResponse {
	return BankAgentResponse{
		UserResponse: ToUserResponse(&a.User),
		EmployeeID:   a.EmployeeID,
		Branch:       a.Branch,
	}
}

// ToListBankAgentResponse converts a slice of agents.
func ToListBankAgentResponse(agents []domain.BankAgent) []BankAgentResponse {
	res := make([]BankAgentResponse, len(agents))
	for i := range agents {
		res[i] = ToBankAgentResponse(&agents[i])
	}
	return res
}
