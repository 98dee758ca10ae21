package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// cryptoService converts between MAD and crypto and moves crypto between wallets.
type cryptoService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	walletRepo  portsrepo.WalletRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	ledger      portssvc.LedgerSvc
	fees        portssvc.FeeSvc
	rates       portssvc.RateSvc
	idGen       portssvc.IDGeneratorSvc
	notifier    portssvc.NotificationPublisherSvc
}

// CryptoServiceOption is a function that configures a cryptoService
type CryptoServiceOption func(*cryptoService)

// WithCryptoNotifier sets the notification publisher.
func WithCryptoNotifier(notifier portssvc.NotificationPublisherSvc) CryptoServiceOption {
	return func(s *cryptoService) {
		s.notifier = notifier
	}
}

// NewCryptoService creates a new crypto service with the given options
func NewCryptoService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	walletRepo portsrepo.WalletRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	ledger portssvc.LedgerSvc,
	fees portssvc.FeeSvc,
	rates portssvc.RateSvc,
	idGen portssvc.IDGeneratorSvc,
	options ...CryptoServiceOption,
) portssvc.CryptoSvcFacade {
	s := &cryptoService{
		txManager:   txManager,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txnRepo:     txnRepo,
		ledger:      ledger,
		fees:        fees,
		rates:       rates,
		idGen:       idGen,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.CryptoSvcFacade = (*cryptoService)(nil)

func (s *cryptoService) walletOf(ctx context.Context, clientID string) (*domain.CryptoWallet, error) {
	wallet, err := s.walletRepo.FindWalletByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: client %s", apperrors.ErrWalletNotFound, clientID)
		}
		return nil, err
	}
	return wallet, nil
}

func (s *cryptoService) mainAccountOf(ctx context.Context, clientID string) (*domain.Account, error) {
	acc, err := s.accountRepo.FindMainAccountByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: main account of client %s", apperrors.ErrAccountNotFound, clientID)
		}
		return nil, err
	}
	return acc, nil
}

func (s *cryptoService) newTransactionID(ctx context.Context) (string, error) {
	return s.idGen.Generate(ctx, domain.IDKindTransaction)
}

// BuyFromMain resolves both rates before opening the unit of work, so a slow
// provider never holds row locks.
func (s *cryptoService) BuyFromMain(ctx context.Context, clientID string, req dto.BuyFromMainRequest) (*domain.CryptoPurchaseResult, error) {
	symbol := domain.NormalizeAsset(req.CryptoType)
	if !domain.IsSupportedAsset(symbol) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, req.CryptoType)
	}
	if !req.MadAmount.IsPositive() {
		return nil, fmt.Errorf("%w: MAD amount must be positive", apperrors.ErrValidation)
	}

	main, err := s.mainAccountOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}

	madToUsd := s.rates.ResolveMadToUsd(ctx, req.UseRealTimeRate)
	price, err := s.rates.ResolveCryptoPrice(ctx, symbol, req.UseRealTimeRate)
	if err != nil {
		return nil, err
	}

	madAmount := domain.RoundFiat(req.MadAmount)
	// Only the crypto quantity is rounded; usdAmount keeps full precision.
	usdAmount := madAmount.Mul(madToUsd.Rate)
	cryptoAmount := domain.RoundCrypto(usdAmount.Div(price.Rate))
	if !cryptoAmount.IsPositive() {
		return nil, fmt.Errorf("%w: amount too small to buy any %s", apperrors.ErrValidation, symbol)
	}
	fee := s.fees.ComputeFee(ctx, madAmount)
	total := madAmount.Add(fee)
	source := domain.CombineSources(madToUsd, price)

	transactionID, err := s.newTransactionID(ctx)
	if err != nil {
		return nil, err
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        madAmount,
		Description:   fmt.Sprintf("Buy %s %s from main account", cryptoAmount.StringFixed(domain.CryptoScale), symbol),
		FromAccountID: main.AccountID,
		FromClientID:  clientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.CryptoBuyDetails{CryptoDetails: domain.CryptoDetails{
		CryptoType:    symbol,
		CryptoAmount:  cryptoAmount,
		ExchangeRate:  price.Rate,
		MadToUsdRate:  madToUsd.Rate,
		UsdAmount:     usdAmount,
		PlatformFee:   fee,
		NetworkFee:    decimal.Zero,
		WalletAddress: wallet.WalletAddress,
		RateSource:    source,
	}}, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	var (
		newMainBalance decimal.Decimal
		newCrypto      decimal.Decimal
	)
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		debited, err := s.ledger.Debit(ctx, tx, main.AccountID, total, clientID)
		if err != nil {
			return err
		}
		newMainBalance = debited.Balance

		key := domain.WalletKey{WalletAddress: wallet.WalletAddress, Symbol: symbol}
		balances, err := s.ledger.PostCrypto(ctx, tx, []domain.WalletEntry{
			domain.Credit(wallet.WalletAddress, symbol, cryptoAmount),
		})
		if err != nil {
			return err
		}
		newCrypto = balances[key]

		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(clientID, txn.TransactionID, madAmount.StringFixed(domain.FiatScale), string(domain.KindCryptoBuy)))
		return nil
	})
	if err != nil {
		logFailure(ctx, &s.BaseService, err, "Crypto purchase failed",
			slog.String("client_id", clientID), slog.String("symbol", symbol))
		return nil, err
	}

	s.LogInfo(ctx, "Crypto purchased from main account",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("symbol", symbol),
		slog.String("crypto_amount", cryptoAmount.String()),
		slog.String("rate_source", string(source)))

	return &domain.CryptoPurchaseResult{
		Transaction:           txn,
		MadAmount:             madAmount,
		UsdAmount:             usdAmount,
		CryptoAmount:          cryptoAmount,
		ExchangeRate:          price.Rate,
		MadToUsdRate:          madToUsd.Rate,
		PlatformFee:           fee,
		TotalDebited:          total,
		NewMainAccountBalance: newMainBalance,
		WalletAddress:         wallet.WalletAddress,
		RateSource:            source,
		RateTimestamp:         price.Timestamp,
		CryptoBalances:        s.balanceMap(ctx, wallet.WalletAddress, symbol, newCrypto),
	}, nil
}

// balanceMap lists every holding of the wallet. A read failure degrades to the one balance just written.
func (s *cryptoService) balanceMap(ctx context.Context, walletAddress, symbol string, fallback decimal.Decimal) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{symbol: fallback}
	rows, err := s.walletRepo.FindBalances(ctx, walletAddress)
	if err != nil {
		s.LogWarn(ctx, "Could not read wallet balances after purchase", slog.String("error", err.Error()))
		return out
	}
	for _, row := range rows {
		out[row.Symbol] = row.Balance
	}
	return out
}

// Buy debits the main account now. The wallet is credited when an agent verifies the transaction.
func (s *cryptoService) Buy(ctx context.Context, clientID string, req dto.CryptoBuyRequest) (*domain.Transaction, error) {
	symbol := domain.NormalizeAsset(req.CryptoType)
	if !domain.IsSupportedAsset(symbol) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, req.CryptoType)
	}
	if !req.Amount.IsPositive() || !req.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: amount and exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.PlatformFee.IsNegative() || req.NetworkFee.IsNegative() {
		return nil, fmt.Errorf("%w: fees must not be negative", apperrors.ErrValidation)
	}

	main, err := s.mainAccountOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}

	amount := domain.RoundFiat(req.Amount)
	platformFee := domain.RoundFiat(req.PlatformFee)
	cryptoAmount := domain.RoundCrypto(amount.Div(req.ExchangeRate))

	transactionID, err := s.newTransactionID(ctx)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Buy " + symbol
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        amount,
		Description:   description,
		FromAccountID: main.AccountID,
		FromClientID:  clientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.CryptoBuyDetails{CryptoDetails: domain.CryptoDetails{
		CryptoType:    symbol,
		CryptoAmount:  cryptoAmount,
		ExchangeRate:  req.ExchangeRate,
		PlatformFee:   platformFee,
		NetworkFee:    domain.RoundCrypto(req.NetworkFee),
		WalletAddress: wallet.WalletAddress,
	}}, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if _, err := s.ledger.Debit(ctx, tx, main.AccountID, amount.Add(platformFee), clientID); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(clientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), string(domain.KindCryptoBuy)))
		return nil
	})
	if err != nil {
		logFailure(ctx, &s.BaseService, err, "Crypto buy failed", slog.String("client_id", clientID))
		return nil, err
	}
	return &txn, nil
}

// Sell debits the wallet and credits the main account in the same unit of work.
// A rejection by an agent reverses both legs.
func (s *cryptoService) Sell(ctx context.Context, clientID string, req dto.CryptoSellRequest) (*domain.Transaction, error) {
	symbol := domain.NormalizeAsset(req.CryptoType)
	if !domain.IsSupportedAsset(symbol) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, req.CryptoType)
	}
	if !req.CryptoAmount.IsPositive() || !req.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: crypto amount and exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.PlatformFee.IsNegative() || req.NetworkFee.IsNegative() {
		return nil, fmt.Errorf("%w: fees must not be negative", apperrors.ErrValidation)
	}

	main, err := s.mainAccountOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}

	cryptoAmount := domain.RoundCrypto(req.CryptoAmount)
	amount := domain.RoundFiat(cryptoAmount.Mul(req.ExchangeRate))
	platformFee := domain.RoundFiat(req.PlatformFee)
	if platformFee.GreaterThan(amount) {
		return nil, fmt.Errorf("%w: platform fee exceeds the sale proceeds", apperrors.ErrValidation)
	}

	transactionID, err := s.newTransactionID(ctx)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Sell " + symbol
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        amount,
		Description:   description,
		ToAccountID:   main.AccountID,
		ToClientID:    clientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.CryptoSellDetails{CryptoDetails: domain.CryptoDetails{
		CryptoType:    symbol,
		CryptoAmount:  cryptoAmount,
		ExchangeRate:  req.ExchangeRate,
		PlatformFee:   platformFee,
		NetworkFee:    domain.RoundCrypto(req.NetworkFee),
		WalletAddress: wallet.WalletAddress,
	}}, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if _, err := s.ledger.PostCrypto(ctx, tx, []domain.WalletEntry{
			domain.Debit(wallet.WalletAddress, symbol, cryptoAmount),
		}); err != nil {
			return err
		}
		if _, err := s.ledger.Credit(ctx, tx, main.AccountID, amount.Sub(platformFee), clientID); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(clientID, txn.TransactionID, amount.StringFixed(domain.FiatScale), string(domain.KindCryptoSell)))
		return nil
	})
	if err != nil {
		logFailure(ctx, &s.BaseService, err, "Crypto sell failed", slog.String("client_id", clientID))
		return nil, err
	}
	return &txn, nil
}

// TransferCrypto debits amount+networkFee from the sender and credits amount to the recipient.
func (s *cryptoService) TransferCrypto(ctx context.Context, clientID string, req dto.CryptoTransferRequest) (*domain.CryptoTransferResult, error) {
	sender, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if sender.WalletAddress == req.RecipientWalletAddress {
		s.LogWarn(ctx, "Self transfer rejected", slog.String("client_id", clientID))
		return nil, apperrors.ErrSelfTransferRejected
	}

	symbol := domain.NormalizeAsset(req.CryptoType)
	if !domain.IsSupportedAsset(symbol) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, req.CryptoType)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.NetworkFee.IsNegative() {
		return nil, fmt.Errorf("%w: network fee must not be negative", apperrors.ErrValidation)
	}

	recipient, err := s.walletRepo.FindWalletByAddress(ctx, req.RecipientWalletAddress)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrWalletNotFound, req.RecipientWalletAddress)
		}
		return nil, err
	}

	amount := domain.RoundCrypto(req.Amount)
	networkFee := domain.RoundCrypto(req.NetworkFee)

	transactionID, err := s.newTransactionID(ctx)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Send %s %s", amount.StringFixed(domain.CryptoScale), symbol)
	}
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: transactionID,
		Amount:        decimal.Zero,
		Description:   description,
		FromClientID:  clientID,
		ToClientID:    recipient.ClientID,
		ActorID:       clientID,
		Now:           s.Now(),
	}, domain.CryptoTransferDetails{CryptoDetails: domain.CryptoDetails{
		CryptoType:         symbol,
		CryptoAmount:       amount,
		ExchangeRate:       decimal.Zero,
		PlatformFee:        decimal.Zero,
		NetworkFee:         networkFee,
		WalletAddress:      sender.WalletAddress,
		CounterpartyWallet: recipient.WalletAddress,
	}}, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	senderKey := domain.WalletKey{WalletAddress: sender.WalletAddress, Symbol: symbol}
	recipientKey := domain.WalletKey{WalletAddress: recipient.WalletAddress, Symbol: symbol}
	var balances map[domain.WalletKey]decimal.Decimal

	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		balances, err = s.ledger.PostCrypto(ctx, tx, []domain.WalletEntry{
			domain.Debit(sender.WalletAddress, symbol, amount.Add(networkFee)),
			domain.Credit(recipient.WalletAddress, symbol, amount),
		})
		if err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransaction(ctx, tx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		shown := amount.StringFixed(domain.CryptoScale) + " " + symbol
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.TransactionNotification(clientID, txn.TransactionID, shown, domain.TopicCryptoTransferSent),
			domain.TransactionNotification(recipient.ClientID, txn.TransactionID, shown, domain.TopicCryptoTransferReceived),
		)
		return nil
	})
	if err != nil {
		logFailure(ctx, &s.BaseService, err, "Crypto transfer failed", slog.String("client_id", clientID))
		return nil, err
	}

	s.LogInfo(ctx, "Crypto transferred",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("symbol", symbol),
		slog.String("amount", amount.String()))
	return &domain.CryptoTransferResult{
		Transaction:      txn,
		SenderBalance:    balances[senderKey],
		RecipientBalance: balances[recipientKey],
	}, nil
}

// GetWallet values every supported asset in MAD: balance * usdPrice / madToUsd.
func (s *cryptoService) GetWallet(ctx context.Context, clientID string, realtime bool) (*domain.WalletView, error) {
	wallet, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rows, err := s.walletRepo.FindBalances(ctx, wallet.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet balances: %w", err)
	}
	held := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		held[row.Symbol] = row.Balance
	}

	madToUsd := s.rates.ResolveMadToUsd(ctx, realtime)
	quotes := []domain.RateQuote{madToUsd}
	view := &domain.WalletView{
		WalletAddress:   wallet.WalletAddress,
		ClientID:        wallet.ClientID,
		Status:          wallet.Status,
		Holdings:        make([]domain.WalletHolding, 0, len(domain.SupportedAssets)),
		TotalValueInMad: decimal.Zero,
	}
	for _, symbol := range domain.SupportedAssets {
		price, err := s.rates.ResolveCryptoPrice(ctx, symbol, realtime)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, price)
		balance := held[symbol]
		value := domain.RoundFiat(balance.Mul(price.Rate).Div(madToUsd.Rate))
		view.Holdings = append(view.Holdings, domain.WalletHolding{
			Symbol:     symbol,
			Balance:    balance,
			UsdPrice:   price.Rate,
			ValueInMad: value,
		})
		view.TotalValueInMad = view.TotalValueInMad.Add(value)
	}
	view.RateSource = domain.CombineSources(quotes...)
	return view, nil
}

func (s *cryptoService) UpdateWalletAddress(ctx context.Context, clientID string, req dto.UpdateWalletAddressRequest) (*domain.CryptoWallet, error) {
	wallet, err := s.walletOf(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if wallet.WalletAddress == req.NewAddress {
		return wallet, nil
	}
	_, err = s.walletRepo.FindWalletByAddress(ctx, req.NewAddress)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: wallet address", apperrors.ErrDuplicateIdentity)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	now := s.Now()
	err = s.RunInTx(ctx, s.txManager, func(tx pgx.Tx) error {
		if err := s.walletRepo.UpdateWalletAddress(ctx, tx, clientID, req.NewAddress, clientID, now); err != nil {
			return fmt.Errorf("failed to update wallet address: %w", err)
		}
		enqueueBestEffort(ctx, &s.BaseService, s.notifier, tx,
			domain.SecurityNotification(clientID, "Wallet address changed", "Your crypto wallet address was updated"))
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update wallet address", slog.String("client_id", clientID))
		return nil, err
	}

	wallet.WalletAddress = req.NewAddress
	wallet.LastUpdatedAt = now
	wallet.LastUpdatedBy = clientID
	return wallet, nil
}

func (s *cryptoService) GetCryptoHistory(ctx context.Context, clientID string) ([]domain.Transaction, error) {
	filter := portsrepo.TransactionFilter{
		Kinds: []domain.TransactionKind{domain.KindCryptoBuy, domain.KindCryptoSell, domain.KindCryptoTransfer},
	}
	txns, _, err := s.txnRepo.ListTransactionsByClientID(ctx, clientID, filter, maxListLimit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list crypto transactions: %w", err)
	}
	return txns, nil
}

func (s *cryptoService) GetRates(ctx context.Context, realtime bool) (*domain.RateBoard, error) {
	return s.rates.GetRates(ctx, realtime)
}
