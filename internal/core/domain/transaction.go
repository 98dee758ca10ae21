package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the discriminant of the Transaction union. It is set once at creation.
type TransactionKind string

const (
	KindDeposit        TransactionKind = "DEPOSIT"
	KindTransfer       TransactionKind = "TRANSFER"
	KindMobileRecharge TransactionKind = "MOBILE_RECHARGE"
	KindCryptoBuy      TransactionKind = "CRYPTO_BUY"
	KindCryptoSell     TransactionKind = "CRYPTO_SELL"
	KindCryptoTransfer TransactionKind = "CRYPTO_TRANSFER"
)

// IsCrypto reports whether the kind carries a crypto payload.
func (k TransactionKind) IsCrypto() bool {
	return k == KindCryptoBuy || k == KindCryptoSell || k == KindCryptoTransfer
}

// TransactionDetails is the kind-specific payload of a Transaction. The set of
// implementations is closed to this package.
type TransactionDetails interface {
	Kind() TransactionKind
	isTransactionDetails()
}

// DepositDetails is the payload of an agent deposit.
type DepositDetails struct {
	DepositedBy string `json:"depositedBy"` // agent employee ID
}

// TransferDetails is the payload of an account-to-account transfer.
type TransferDetails struct {
	Fee decimal.Decimal `json:"fee"`
}

// MobileRechargeDetails is the payload of a mobile top-up.
type MobileRechargeDetails struct {
	PhoneNumber  string `json:"phoneNumber"`
	Operator     string `json:"operator"`
	RechargeType string `json:"rechargeType"`
}

// CryptoDetails is shared by the three crypto kinds.
type CryptoDetails struct {
	CryptoType         string          `json:"cryptoType"`
	CryptoAmount       decimal.Decimal `json:"cryptoAmount"`
	ExchangeRate       decimal.Decimal `json:"exchangeRate"`
	MadToUsdRate       decimal.Decimal `json:"madToUsdRate,omitempty"`
	UsdAmount          decimal.Decimal `json:"usdAmount,omitempty"`
	PlatformFee        decimal.Decimal `json:"platformFee"`
	NetworkFee         decimal.Decimal `json:"networkFee"`
	WalletAddress      string          `json:"walletAddress"`
	CounterpartyWallet string          `json:"counterpartyWallet,omitempty"`
	RateSource         RateSource      `json:"rateSource,omitempty"`
}

// CryptoBuyDetails is the payload of a crypto purchase paid from the main account.
type CryptoBuyDetails struct {
	CryptoDetails
}

// CryptoSellDetails is the payload of a crypto sale credited to the main account.
type CryptoSellDetails struct {
	CryptoDetails
}

// CryptoTransferDetails is the payload of a wallet-to-wallet transfer.
// WalletAddress is the sender, CounterpartyWallet the recipient.
type CryptoTransferDetails struct {
	CryptoDetails
}

func (DepositDetails) Kind() TransactionKind        { return KindDeposit }
func (TransferDetails) Kind() TransactionKind       { return KindTransfer }
func (MobileRechargeDetails) Kind() TransactionKind { return KindMobileRecharge }
func (CryptoBuyDetails) Kind() TransactionKind      { return KindCryptoBuy }
func (CryptoSellDetails) Kind() TransactionKind     { return KindCryptoSell }
func (CryptoTransferDetails) Kind() TransactionKind { return KindCryptoTransfer }

func (DepositDetails) isTransactionDetails()        {}
func (TransferDetails) isTransactionDetails()       {}
func (MobileRechargeDetails) isTransactionDetails() {}
func (CryptoBuyDetails) isTransactionDetails()      {}
func (CryptoSellDetails) isTransactionDetails()     {}
func (CryptoTransferDetails) isTransactionDetails() {}

// Verification records the agent decision on a transaction.
type Verification struct {
	AgentID    string    `json:"agentID"`
	VerifiedAt time.Time `json:"verifiedAt"`
	Notes      string    `json:"notes"`
}

// Transaction is an append-only record of a value movement. Only Status and
// Verification change after it is persisted.
type Transaction struct {
	TransactionID   string             `json:"transactionID"`
	Kind            TransactionKind    `json:"kind"`
	Status          TransactionStatus  `json:"status"`
	Amount          decimal.Decimal    `json:"amount"`
	Description     string             `json:"description"`
	FromAccountID   string             `json:"fromAccountID,omitempty"`
	ToAccountID     string             `json:"toAccountID,omitempty"`
	FromClientID    string             `json:"fromClientID,omitempty"`
	ToClientID      string             `json:"toClientID,omitempty"`
	TransactionDate time.Time          `json:"transactionDate"`
	Verification    *Verification      `json:"verification,omitempty"`
	Details         TransactionDetails `json:"details"`
	AuditFields
}

// TransactionParams are the fields common to every variant.
type TransactionParams struct {
	TransactionID string
	Amount        decimal.Decimal
	Description   string
	FromAccountID string
	ToAccountID   string
	FromClientID  string
	ToClientID    string
	ActorID       string
	Now           time.Time
}

// NewTransaction builds a Transaction whose Kind is taken from details.
func NewTransaction(p TransactionParams, details TransactionDetails, status TransactionStatus) (Transaction, error) {
	if details == nil {
		return Transaction{}, fmt.Errorf("transaction details are required")
	}
	if p.TransactionID == "" {
		return Transaction{}, fmt.Errorf("transaction ID is required")
	}
	if p.Amount.IsNegative() {
		return Transaction{}, fmt.Errorf("transaction amount cannot be negative")
	}
	if !status.IsValid() {
		return Transaction{}, fmt.Errorf("unknown transaction status %q", status)
	}

	kind := details.Kind()
	switch kind {
	case KindDeposit:
		if p.ToAccountID == "" || p.FromAccountID != "" {
			return Transaction{}, fmt.Errorf("deposit needs a destination account only")
		}
	case KindTransfer:
		if p.FromAccountID == "" || p.ToAccountID == "" {
			return Transaction{}, fmt.Errorf("transfer needs source and destination accounts")
		}
	case KindMobileRecharge, KindCryptoBuy:
		if p.FromAccountID == "" {
			return Transaction{}, fmt.Errorf("%s needs a source account", kind)
		}
	case KindCryptoSell:
		if p.ToAccountID == "" {
			return Transaction{}, fmt.Errorf("crypto sell needs a destination account")
		}
	case KindCryptoTransfer:
		d := details.(CryptoTransferDetails)
		if d.WalletAddress == "" || d.CounterpartyWallet == "" {
			return Transaction{}, fmt.Errorf("crypto transfer needs sender and recipient wallets")
		}
	}

	return Transaction{
		TransactionID:   p.TransactionID,
		Kind:            kind,
		Status:          status,
		Amount:          p.Amount,
		Description:     p.Description,
		FromAccountID:   p.FromAccountID,
		ToAccountID:     p.ToAccountID,
		FromClientID:    p.FromClientID,
		ToClientID:      p.ToClientID,
		TransactionDate: p.Now,
		Details:         details,
		AuditFields:     NewAuditFields(p.ActorID, p.Now),
	}, nil
}

// InvolvesClient reports whether clientID is a party to the transaction.
func (t Transaction) InvolvesClient(clientID string) bool {
	return clientID != "" && (t.FromClientID == clientID || t.ToClientID == clientID)
}

// Fee returns the fee retained by the bank for this transaction.
func (t Transaction) Fee() decimal.Decimal {
	switch d := t.Details.(type) {
	case TransferDetails:
		return d.Fee
	case CryptoBuyDetails:
		return d.PlatformFee
	case CryptoSellDetails:
		return d.PlatformFee
	case CryptoTransferDetails:
		return d.NetworkFee
	}
	return decimal.Zero
}

// Crypto returns the shared crypto payload when the transaction is a crypto kind.
func (t Transaction) Crypto() (CryptoDetails, bool) {
	switch d := t.Details.(type) {
	case CryptoBuyDetails:
		return d.CryptoDetails, true
	case CryptoSellDetails:
		return d.CryptoDetails, true
	case CryptoTransferDetails:
		return d.CryptoDetails, true
	}
	return CryptoDetails{}, false
}

// WithWalletAddresses returns a copy whose crypto payload points at the given
// wallets. Empty arguments keep the stored address.
func (t Transaction) WithWalletAddresses(wallet, counterparty string) Transaction {
	rebind := func(d CryptoDetails) CryptoDetails {
		if wallet != "" {
			d.WalletAddress = wallet
		}
		if counterparty != "" && d.CounterpartyWallet != "" {
			d.CounterpartyWallet = counterparty
		}
		return d
	}
	switch d := t.Details.(type) {
	case CryptoBuyDetails:
		t.Details = CryptoBuyDetails{CryptoDetails: rebind(d.CryptoDetails)}
	case CryptoSellDetails:
		t.Details = CryptoSellDetails{CryptoDetails: rebind(d.CryptoDetails)}
	case CryptoTransferDetails:
		t.Details = CryptoTransferDetails{CryptoDetails: rebind(d.CryptoDetails)}
	}
	return t
}

// WalletOwners returns the clients whose wallets the crypto legs touch:
// the holder of WalletAddress and, for transfers, the holder of CounterpartyWallet.
func (t Transaction) WalletOwners() (owner, counterparty string) {
	switch t.Details.(type) {
	case CryptoBuyDetails:
		return t.FromClientID, ""
	case CryptoSellDetails:
		return t.ToClientID, ""
	case CryptoTransferDetails:
		return t.FromClientID, t.ToClientID
	}
	return "", ""
}

// SettlementLegs returns the balance movements deferred until the transaction leaves PENDING successfully.
func (t Transaction) SettlementLegs() ([]LedgerEntry, []WalletEntry) {
	switch d := t.Details.(type) {
	case CryptoBuyDetails:
		if t.Status != StatusPending {
			return nil, nil
		}
		return nil, []WalletEntry{Credit(d.WalletAddress, d.CryptoType, d.CryptoAmount)}
	}
	return nil, nil
}

// CompensationLegs returns the movements that undo every leg applied when the transaction was created.
func (t Transaction) CompensationLegs() ([]LedgerEntry, []WalletEntry) {
	switch d := t.Details.(type) {
	case DepositDetails:
		return []LedgerEntry{DebitAccount(t.ToAccountID, t.Amount)}, nil
	case TransferDetails:
		return []LedgerEntry{
			CreditAccount(t.FromAccountID, t.Amount.Add(d.Fee)),
			DebitAccount(t.ToAccountID, t.Amount),
		}, nil
	case MobileRechargeDetails:
		return []LedgerEntry{CreditAccount(t.FromAccountID, t.Amount)}, nil
	case CryptoBuyDetails:
		return []LedgerEntry{CreditAccount(t.FromAccountID, t.Amount.Add(d.PlatformFee))}, nil
	case CryptoSellDetails:
		return []LedgerEntry{DebitAccount(t.ToAccountID, t.Amount.Sub(d.PlatformFee))},
			[]WalletEntry{Credit(d.WalletAddress, d.CryptoType, d.CryptoAmount)}
	case CryptoTransferDetails:
		return nil, []WalletEntry{
			Credit(d.WalletAddress, d.CryptoType, d.CryptoAmount.Add(d.NetworkFee)),
			Debit(d.CounterpartyWallet, d.CryptoType, d.CryptoAmount),
		}
	}
	return nil, nil
}

// EncodeTransactionDetails serializes the payload for storage.
func EncodeTransactionDetails(details TransactionDetails) ([]byte, error) {
	if details == nil {
		return nil, fmt.Errorf("transaction details are required")
	}
	return json.Marshal(details)
}

// DecodeTransactionDetails restores the payload stored for kind.
func DecodeTransactionDetails(kind TransactionKind, data []byte) (TransactionDetails, error) {
	var (
		details TransactionDetails
		err     error
	)
	switch kind {
	case KindDeposit:
		var d DepositDetails
		err = json.Unmarshal(data, &d)
		details = d
	case KindTransfer:
		var d TransferDetails
		err = json.Unmarshal(data, &d)
		details = d
	case KindMobileRecharge:
		var d MobileRechargeDetails
		err = json.Unmarshal(data, &d)
		details = d
	case KindCryptoBuy:
		var d CryptoBuyDetails
		err = json.Unmarshal(data, &d)
		details = d
	case KindCryptoSell:
		var d CryptoSellDetails
		err = json.Unmarshal(data, &d)
		details = d
	case KindCryptoTransfer:
		var d CryptoTransferDetails
		err = json.Unmarshal(data, &d)
		details = d
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s details: %w", kind, err)
	}
	return details, nil
}
