package domain

// UserRole decides which route group a user may call.
type UserRole string

const (
	RoleClient UserRole = "CLIENT"
	RoleAgent  UserRole = "AGENT"
	RoleAdmin  UserRole = "ADMIN"
)

// UserStatus is the login status of a user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User represents a person who can authenticate: a client, a bank agent or an admin.
type User struct {
	UserID       string     `json:"userID"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        string     `json:"phone"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
	PasswordHash string     `json:"-"`
	AuditFields
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Client is a bank customer. Its UserID doubles as the client ID.
type Client struct {
	User
	IdentificationNumber string `json:"identificationNumber"`
	AgentID              string `json:"agentID"`
	Address              string `json:"address"`
}

// ClientID returns the business identifier of the client.
func (c Client) ClientID() string {
	return c.UserID
}

// BankAgent is an employee who manages clients and verifies transactions.
type BankAgent struct {
	User
	EmployeeID string `json:"employeeID"`
	Branch     string `json:"branch"`
}

// ClientEnrollment is everything created when an agent enrolls a client.
// TemporaryPassword is only available here, in clear text.
type ClientEnrollment struct {
	Client            Client
	Account           Account
	Wallet            CryptoWallet
	TemporaryPassword string
}
