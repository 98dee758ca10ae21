package services_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memState is everything a unit of work can change.
type memState struct {
	accounts      map[string]domain.Account
	accountOrder  []string
	users         map[string]domain.User
	clients       map[string]domain.Client
	agents        map[string]domain.BankAgent
	wallets       map[string]domain.CryptoWallet
	balances      map[domain.WalletKey]decimal.Decimal
	txns          map[string]domain.Transaction
	txnOrder      []string
	notifications map[string]domain.Notification
	outbox        []domain.OutboxMessage
	settings      map[string]domain.GlobalSetting
}

func (s memState) clone() memState {
	c := memState{
		accounts:      make(map[string]domain.Account, len(s.accounts)),
		accountOrder:  append([]string(nil), s.accountOrder...),
		users:         make(map[string]domain.User, len(s.users)),
		clients:       make(map[string]domain.Client, len(s.clients)),
		agents:        make(map[string]domain.BankAgent, len(s.agents)),
		wallets:       make(map[string]domain.CryptoWallet, len(s.wallets)),
		balances:      make(map[domain.WalletKey]decimal.Decimal, len(s.balances)),
		txns:          make(map[string]domain.Transaction, len(s.txns)),
		txnOrder:      append([]string(nil), s.txnOrder...),
		notifications: make(map[string]domain.Notification, len(s.notifications)),
		outbox:        append([]domain.OutboxMessage(nil), s.outbox...),
		settings:      make(map[string]domain.GlobalSetting, len(s.settings)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.agents {
		c.agents[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.txns {
		c.txns[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// memTx restores the snapshot taken at Begin unless it was committed.
type memTx struct {
	pgx.Tx
	snapshot memState
	done     bool
}

// memStore implements every repository port in memory.
type memStore struct {
	mu sync.Mutex
	memState

	reserved  map[string]bool
	failOn    map[string]error
	commits   int
	rollbacks int
	outboxSeq int64
}

func newMemStore() *memStore {
	return &memStore{
		memState: memState{
			accounts:      map[string]domain.Account{},
			users:         map[string]domain.User{},
			clients:       map[string]domain.Client{},
			agents:        map[string]domain.BankAgent{},
			wallets:       map[string]domain.CryptoWallet{},
			balances:      map[domain.WalletKey]decimal.Decimal{},
			txns:          map[string]domain.Transaction{},
			notifications: map[string]domain.Notification{},
			settings:      map[string]domain.GlobalSetting{},
		},
		reserved: map[string]bool{},
		failOn:   map[string]error{},
	}
}

var (
	_ portsrepo.TransactionManager           = (*memStore)(nil)
	_ portsrepo.AccountRepositoryFacade      = (*memStore)(nil)
	_ portsrepo.UserRepositoryFacade         = (*memStore)(nil)
	_ portsrepo.ClientRepositoryFacade       = (*memStore)(nil)
	_ portsrepo.WalletRepositoryFacade       = (*memStore)(nil)
	_ portsrepo.TransactionRepositoryFacade  = (*memStore)(nil)
	_ portsrepo.NotificationRepositoryFacade = (*memStore)(nil)
	_ portsrepo.OutboxRepository             = (*memStore)(nil)
	_ portsrepo.SettingRepository            = (*memStore)(nil)
	_ portsrepo.IdentifierRegistry           = (*memStore)(nil)
)

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        m,
		AccountRepo:      m,
		UserRepo:         m,
		ClientRepo:       m,
		WalletRepo:       m,
		TransactionRepo:  m,
		NotificationRepo: m,
		OutboxRepo:       m,
		SettingRepo:      m,
		IdentifierRepo:   m,
	}
}

func (m *memStore) fail(op string) error {
	return m.failOn[op]
}

// --- seeding helpers ---

func (m *memStore) seedClient(clientID, agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := domain.User{UserID: clientID, Username: clientID, Email: clientID + "@bank.ma", Role: domain.RoleClient, Status: domain.UserStatusActive}
	m.users[clientID] = u
	m.clients[clientID] = domain.Client{User: u, IdentificationNumber: "ID-" + clientID, AgentID: agentID}
}

func (m *memStore) seedAgent(agentID, employeeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := domain.User{UserID: agentID, Username: agentID, Email: agentID + "@bank.ma", Role: domain.RoleAgent, Status: domain.UserStatusActive}
	m.users[agentID] = u
	m.agents[agentID] = domain.BankAgent{User: u, EmployeeID: employeeID, Branch: "Casablanca"}
}

func (m *memStore) seedAccount(accountID, clientID string, balance string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[accountID] = domain.Account{
		AccountID:    accountID,
		ClientID:     clientID,
		AccountType:  domain.AccountTypeChecking,
		Status:       domain.AccountStatusActive,
		CurrencyCode: domain.BaseCurrency,
		Balance:      decimal.RequireFromString(balance),
	}
	m.accountOrder = append(m.accountOrder, accountID)
}

func (m *memStore) seedWallet(address, clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[address] = domain.CryptoWallet{
		WalletAddress:   address,
		ClientID:        clientID,
		Status:          domain.WalletStatusActive,
		SupportedAssets: domain.SupportedAssets,
	}
}

func (m *memStore) seedCrypto(address, symbol, amount string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[domain.WalletKey{WalletAddress: address, Symbol: symbol}] = decimal.RequireFromString(amount)
}

func (m *memStore) seedSetting(key, value string, typ domain.SettingType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = domain.GlobalSetting{Key: key, Value: value, Type: typ}
}

func (m *memStore) balanceOf(accountID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[accountID].Balance
}

func (m *memStore) cryptoOf(address, symbol string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[domain.WalletKey{WalletAddress: address, Symbol: symbol}]
}

func (m *memStore) txnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txns)
}

func (m *memStore) outboxCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outbox)
}

// --- TransactionManager ---

func (m *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := m.fail("Begin"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memTx{snapshot: m.memState.clone()}, nil
}

func (m *memStore) Commit(ctx context.Context, tx pgx.Tx) error {
	t := tx.(*memTx)
	if t.done {
		return pgx.ErrTxClosed
	}
	if err := m.fail("Commit"); err != nil {
		return err
	}
	t.done = true
	m.commits++
	return nil
}

func (m *memStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	t := tx.(*memTx)
	if t.done {
		return nil
	}
	m.mu.Lock()
	m.memState = t.snapshot
	m.mu.Unlock()
	t.done = true
	m.rollbacks++
	return nil
}

// --- accounts ---

func (m *memStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) FindAccountsByClientID(ctx context.Context, clientID string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Account
	for _, id := range m.accountOrder {
		if acc := m.accounts[id]; acc.ClientID == clientID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *memStore) FindMainAccountByClientID(ctx context.Context, clientID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.accountOrder {
		acc := m.accounts[id]
		if acc.ClientID == clientID && acc.AccountType == domain.AccountTypeChecking {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) SaveAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	if err := m.fail("SaveAccount"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.AccountID]; ok {
		return apperrors.ErrDuplicate
	}
	m.accounts[account.AccountID] = account
	m.accountOrder = append(m.accountOrder, account.AccountID)
	return nil
}

func (m *memStore) UpdateAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.Status = status
	m.accounts[accountID] = acc
	return nil
}

func (m *memStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := m.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (m *memStore) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if err := m.fail("UpdateAccountBalancesInTx"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, delta := range balanceChanges {
		acc, ok := m.accounts[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		acc.Balance = acc.Balance.Add(delta)
		if acc.Balance.IsNegative() {
			return fmt.Errorf("check constraint: balance of %s would be negative", id)
		}
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		m.accounts[id] = acc
	}
	return nil
}

// --- users, agents, clients ---

func (m *memStore) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *memStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindAgentByID(ctx context.Context, agentID string) (*domain.BankAgent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[agentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) ListAgents(ctx context.Context) ([]domain.BankAgent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BankAgent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *memStore) SaveUser(ctx context.Context, tx pgx.Tx, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

func (m *memStore) SaveAgent(ctx context.Context, tx pgx.Tx, agent domain.BankAgent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[agent.UserID] = agent.User
	m.agents[agent.UserID] = agent
	return nil
}

func (m *memStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.LastUpdatedAt = now
	u.LastUpdatedBy = userID
	m.users[userID] = u
	return nil
}

func (m *memStore) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus, updatedBy string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Status = status
	m.users[userID] = u
	if c, ok := m.clients[userID]; ok {
		c.Status = status
		m.clients[userID] = c
	}
	return nil
}

func (m *memStore) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) FindClientsByAgentID(ctx context.Context, agentID string) ([]domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Client
	for _, c := range m.clients {
		if c.AgentID == agentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) AgentManagesClient(ctx context.Context, agentID, clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	return ok && c.AgentID == agentID, nil
}

func (m *memStore) CountClientsByAgentID(ctx context.Context, agentID string) (int64, error) {
	clients, _ := m.FindClientsByAgentID(ctx, agentID)
	return int64(len(clients)), nil
}

func (m *memStore) CountClientsEnrolledSince(ctx context.Context, agentID string, since time.Time) (int64, error) {
	clients, _ := m.FindClientsByAgentID(ctx, agentID)
	var n int64
	for _, c := range clients {
		if !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SaveClient(ctx context.Context, tx pgx.Tx, client domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[client.UserID] = client.User
	m.clients[client.UserID] = client
	return nil
}

func (m *memStore) UpdateClient(ctx context.Context, client domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[client.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	m.clients[client.UserID] = client
	m.users[client.UserID] = client.User
	return nil
}

// --- wallets ---

func (m *memStore) FindWalletByClientID(ctx context.Context, clientID string) (*domain.CryptoWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.ClientID == clientID {
			return &w, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memStore) FindWalletByAddress(ctx context.Context, walletAddress string) (*domain.CryptoWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletAddress]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) FindBalances(ctx context.Context, walletAddress string) ([]domain.CryptoWalletBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CryptoWalletBalance
	for k, v := range m.balances {
		if k.WalletAddress == walletAddress {
			out = append(out, domain.CryptoWalletBalance{WalletAddress: k.WalletAddress, Symbol: k.Symbol, Balance: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *memStore) SaveWallet(ctx context.Context, tx pgx.Tx, wallet domain.CryptoWallet) error {
	if err := m.fail("SaveWallet"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.WalletAddress] = wallet
	return nil
}

func (m *memStore) UpdateWalletAddress(ctx context.Context, tx pgx.Tx, clientID, newAddress, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for addr, w := range m.wallets {
		if w.ClientID != clientID {
			continue
		}
		delete(m.wallets, addr)
		w.WalletAddress = newAddress
		m.wallets[newAddress] = w
		for k, v := range m.balances {
			if k.WalletAddress == addr {
				delete(m.balances, k)
				m.balances[domain.WalletKey{WalletAddress: newAddress, Symbol: k.Symbol}] = v
			}
		}
		return nil
	}
	return apperrors.ErrNotFound
}

func (m *memStore) FindBalancesForUpdate(ctx context.Context, tx pgx.Tx, keys []domain.WalletKey) (map[domain.WalletKey]domain.CryptoWalletBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.WalletKey]domain.CryptoWalletBalance, len(keys))
	for _, k := range keys {
		if _, ok := m.wallets[k.WalletAddress]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrWalletNotFound, k.WalletAddress)
		}
		bal, ok := m.balances[k]
		if !ok {
			bal = decimal.Zero
			m.balances[k] = bal
		}
		out[k] = domain.CryptoWalletBalance{WalletAddress: k.WalletAddress, Symbol: k.Symbol, Balance: bal}
	}
	return out, nil
}

func (m *memStore) UpsertBalancesInTx(ctx context.Context, tx pgx.Tx, balances map[domain.WalletKey]decimal.Decimal, now time.Time) error {
	if err := m.fail("UpsertBalancesInTx"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range balances {
		m.balances[k] = v
	}
	return nil
}

// --- transactions ---

func (m *memStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) list(match func(domain.Transaction) bool, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Transaction
	for i := len(m.txnOrder) - 1; i >= 0; i-- {
		t := m.txns[m.txnOrder[i]]
		if !match(t) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if len(filter.Kinds) > 0 {
			found := false
			for _, k := range filter.Kinds {
				found = found || k == t.Kind
			}
			if !found {
				continue
			}
		}
		all = append(all, t)
	}
	offset := 0
	if nextToken != nil {
		offset, _ = strconv.Atoi(*nextToken)
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end >= len(all) {
		return all[offset:], nil, nil
	}
	next := strconv.Itoa(end)
	return all[offset:end], &next, nil
}

func (m *memStore) ListTransactionsByClientID(ctx context.Context, clientID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	return m.list(func(t domain.Transaction) bool { return t.InvolvesClient(clientID) }, filter, limit, nextToken)
}

func (m *memStore) ListTransactionsByAgentID(ctx context.Context, agentID string, filter portsrepo.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	m.mu.Lock()
	managed := map[string]bool{}
	for id, c := range m.clients {
		if c.AgentID == agentID {
			managed[id] = true
		}
	}
	m.mu.Unlock()
	return m.list(func(t domain.Transaction) bool { return managed[t.FromClientID] || managed[t.ToClientID] }, filter, limit, nextToken)
}

func (m *memStore) DepositStatistics(ctx context.Context, agentID string, periods domain.DepositPeriods) (*domain.DepositStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.DepositStatistics{AgentID: agentID}
	add := func(w *domain.DepositWindow, amount decimal.Decimal) {
		w.Count++
		w.Amount = w.Amount.Add(amount)
	}
	for _, t := range m.txns {
		if t.Kind != domain.KindDeposit || t.Verification == nil || t.Verification.AgentID != agentID {
			continue
		}
		add(&stats.Total, t.Amount)
		if !t.TransactionDate.Before(periods.StartOfDay) {
			add(&stats.Today, t.Amount)
		}
		if !t.TransactionDate.Before(periods.StartOfWeek) {
			add(&stats.ThisWeek, t.Amount)
		}
		if !t.TransactionDate.Before(periods.StartOfMonth) {
			add(&stats.ThisMonth, t.Amount)
		}
		if t.Amount.GreaterThan(stats.LargestDeposit) {
			stats.LargestDeposit = t.Amount
		}
		if stats.SmallestDeposit.IsZero() || t.Amount.LessThan(stats.SmallestDeposit) {
			stats.SmallestDeposit = t.Amount
		}
	}
	if stats.Total.Count > 0 {
		stats.AverageDeposit = domain.RoundFiat(stats.Total.Amount.Div(decimal.NewFromInt(stats.Total.Count)))
	}
	return stats, nil
}

func (m *memStore) SaveTransaction(ctx context.Context, tx pgx.Tx, transaction domain.Transaction) error {
	if err := m.fail("SaveTransaction"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[transaction.TransactionID]; ok {
		return apperrors.ErrDuplicate
	}
	m.txns[transaction.TransactionID] = transaction
	m.txnOrder = append(m.txnOrder, transaction.TransactionID)
	return nil
}

func (m *memStore) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	return m.FindTransactionByID(ctx, transactionID)
}

func (m *memStore) UpdateTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, verification *domain.Verification, userID string, now time.Time) error {
	if err := m.fail("UpdateTransactionStatusInTx"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.Status = status
	t.Verification = verification
	t.LastUpdatedAt = now
	t.LastUpdatedBy = userID
	m.txns[transactionID] = t
	return nil
}

// --- notifications and outbox ---

func (m *memStore) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[notificationID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &n, nil
}

func (m *memStore) FindNotificationsByUserID(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CountNotificationsByUserID(ctx context.Context, userID string) (int64, int64, error) {
	all, _ := m.FindNotificationsByUserID(ctx, userID, false)
	var unread int64
	for _, n := range all {
		if !n.IsRead {
			unread++
		}
	}
	return int64(len(all)), unread, nil
}

func (m *memStore) SaveNotification(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.NotificationID]; !ok {
		m.notifications[n.NotificationID] = n
	}
	return nil
}

func (m *memStore) MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[notificationID]
	if !ok {
		return apperrors.ErrNotFound
	}
	n.IsRead = true
	n.ReadAt = &readAt
	m.notifications[notificationID] = n
	return nil
}

func (m *memStore) MarkAllNotificationsRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, item := range m.notifications {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &readAt
			m.notifications[id] = item
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteNotification(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, notificationID)
	return nil
}

func (m *memStore) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, item := range m.notifications {
		if item.ExpiresAt != nil && item.ExpiresAt.Before(now) {
			delete(m.notifications, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) EnqueueOutboxMessage(ctx context.Context, tx pgx.Tx, eventID, exchange, routingKey string, payload []byte) error {
	if err := m.fail("EnqueueOutboxMessage"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outboxSeq++
	m.outbox = append(m.outbox, domain.OutboxMessage{
		ID:         m.outboxSeq,
		EventID:    eventID,
		Exchange:   exchange,
		RoutingKey: routingKey,
		Payload:    payload,
	})
	return nil
}

func (m *memStore) ClaimOutboxMessages(ctx context.Context, limit int, staleAfterSeconds int) ([]domain.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.outbox) {
		limit = len(m.outbox)
	}
	return append([]domain.OutboxMessage(nil), m.outbox[:limit]...), nil
}

func (m *memStore) MarkOutboxPublished(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.outbox {
		if msg.ID == id {
			m.outbox = append(m.outbox[:i], m.outbox[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *memStore) MarkOutboxFailed(ctx context.Context, id int64, retryAfterSeconds int, reason string) error {
	return nil
}

// --- settings and identifiers ---

func (m *memStore) FindSettingByKey(ctx context.Context, key string) (*domain.GlobalSetting, error) {
	if err := m.fail("FindSettingByKey"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ListSettings(ctx context.Context) ([]domain.GlobalSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.GlobalSetting, 0, len(m.settings))
	for _, s := range m.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) UpdateSettingValue(ctx context.Context, setting domain.GlobalSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[setting.Key]; !ok {
		return apperrors.ErrNotFound
	}
	m.settings[setting.Key] = setting
	return nil
}

func (m *memStore) InsertSettingIfAbsent(ctx context.Context, setting domain.GlobalSetting) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[setting.Key]; ok {
		return false, nil
	}
	m.settings[setting.Key] = setting
	return true, nil
}

func (m *memStore) IdentifierExists(ctx context.Context, kind domain.IDKind, id string) (bool, error) {
	if err := m.fail("IdentifierExists"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reserved[id] {
		return true, nil
	}
	switch kind {
	case domain.IDKindClient:
		_, ok := m.users[id]
		return ok, nil
	case domain.IDKindAccount:
		_, ok := m.accounts[id]
		return ok, nil
	case domain.IDKindTransaction:
		_, ok := m.txns[id]
		return ok, nil
	case domain.IDKindWalletAddress:
		_, ok := m.wallets[id]
		return ok, nil
	case domain.IDKindIdentificationNumber:
		for _, c := range m.clients {
			if c.IdentificationNumber == id {
				return true, nil
			}
		}
	case domain.IDKindEmployee:
		for _, a := range m.agents {
			if a.EmployeeID == id {
				return true, nil
			}
		}
	}
	return false, nil
}
