package domain

// IDKind names a family of business identifiers.
type IDKind string

const (
	IDKindClient               IDKind = "CLIENT"
	IDKindIdentificationNumber IDKind = "IDENTIFICATION_NUMBER"
	IDKindAccount              IDKind = "ACCOUNT"
	IDKindTransaction          IDKind = "TRANSACTION"
	IDKindWalletAddress        IDKind = "WALLET_ADDRESS"
	IDKindEmployee             IDKind = "EMPLOYEE"
)

// MaxIDAttempts bounds the collision retry loop.
const MaxIDAttempts = 100
