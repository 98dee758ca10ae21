package models

import (
	"database/sql"
)

// User is a row of the users table.
type User struct {
	UserID       string         `db:"user_id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	FirstName    string         `db:"first_name"`
	LastName     sql.NullString `db:"last_name"`
	Phone        sql.NullString `db:"phone"`
	Role         string         `db:"role"`
	Status       string         `db:"status"`
	PasswordHash string         `db:"password_hash"`
	AuditFields
}

// ClientProfile is a row of client_profiles, keyed by the user ID of the client.
type ClientProfile struct {
	ClientID             string         `db:"client_id"`
	IdentificationNumber string         `db:"identification_number"`
	AgentID              string         `db:"agent_id"`
	Address              sql.NullString `db:"address"`
}

// BankAgentProfile is a row of bank_agents.
type BankAgentProfile struct {
	AgentID    string         `db:"agent_id"`
	EmployeeID string         `db:"employee_id"`
	Branch     sql.NullString `db:"branch"`
}
