package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	walletOne = "bc1qclientonewallet0000000000000001"
	walletTwo = "bc1qclienttwowallet0000000000000002"
)

type CryptoServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memStore
	provider  *MockRateProvider
	container *portssvc.ServiceContainer
	svc       portssvc.CryptoSvcFacade
}

func (s *CryptoServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.store.seedAgent("AGT-1", "EMP20260001")
	s.store.seedClient("CLT-1", "AGT-1")
	s.store.seedClient("CLT-2", "AGT-1")
	s.store.seedAccount("ACC-1", "CLT-1", "2000.00")
	s.store.seedAccount("ACC-2", "CLT-2", "0.00")
	s.store.seedWallet(walletOne, "CLT-1")
	s.store.seedWallet(walletTwo, "CLT-2")

	s.provider = new(MockRateProvider)
	s.container = newTestContainer(s.store, s.provider)
	s.svc = s.container.Crypto
}

func TestCryptoService(t *testing.T) {
	suite.Run(t, new(CryptoServiceTestSuite))
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_LiveRates() {
	s.provider.On("MadToUsd", mock.Anything).Return(dec("0.10"), nil)
	s.provider.On("PriceOf", mock.Anything, "BTC").Return(dec("45000"), nil)

	result, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType:      "btc",
		MadAmount:       dec("1000.00"),
		UseRealTimeRate: true,
	})
	s.Require().NoError(err)

	s.Equal(domain.StatusCompleted, result.Transaction.Status)
	s.Equal(domain.KindCryptoBuy, result.Transaction.Kind)
	s.Equal(domain.RateSourceBinance, result.RateSource)
	s.True(dec("100.00").Equal(result.UsdAmount))
	s.True(dec("0.00222222").Equal(result.CryptoAmount))
	s.True(dec("15.00").Equal(result.PlatformFee))
	s.True(dec("1015.00").Equal(result.TotalDebited))
	s.True(dec("985.00").Equal(result.NewMainAccountBalance))
	s.True(dec("985.00").Equal(s.store.balanceOf("ACC-1")))
	s.True(dec("0.00222222").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("0.00222222").Equal(result.CryptoBalances["BTC"]))
	s.Equal(walletOne, result.WalletAddress)
	s.provider.AssertExpectations(s.T())
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_UsdAmountKeepsFullPrecision() {
	s.provider.On("MadToUsd", mock.Anything).Return(dec("0.1087"), nil)
	s.provider.On("PriceOf", mock.Anything, "BTC").Return(dec("45000"), nil)

	result, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType:      "BTC",
		MadAmount:       dec("1234.56"),
		UseRealTimeRate: true,
	})
	s.Require().NoError(err)

	s.True(dec("134.196672").Equal(result.UsdAmount), "got %s", result.UsdAmount)
	s.True(dec("0.00298215").Equal(result.CryptoAmount), "got %s", result.CryptoAmount)
	s.True(dec("0.00298215").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("18.52").Equal(result.PlatformFee))
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_MockRatesWhenNotRealtime() {
	result, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType: "ETH",
		MadAmount:  dec("300.00"),
	})
	s.Require().NoError(err)
	s.Equal(domain.RateSourceMock, result.RateSource)
	s.True(dec("0.01").Equal(result.CryptoAmount), "300 MAD = 30 USD = 0.01 ETH at 3000")
	s.provider.AssertNotCalled(s.T(), "PriceOf", mock.Anything, mock.Anything)
	s.provider.AssertNotCalled(s.T(), "MadToUsd", mock.Anything)
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_FallbackWhenProviderFails() {
	s.provider.On("MadToUsd", mock.Anything).Return(decimal.Zero, errProviderDown)
	s.provider.On("PriceOf", mock.Anything, "BTC").Return(decimal.Zero, errProviderDown)

	result, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType:      "BTC",
		MadAmount:       dec("1000.00"),
		UseRealTimeRate: true,
	})
	s.Require().NoError(err)
	s.Equal(domain.RateSourceMockFallback, result.RateSource)
	s.True(dec("0.00222222").Equal(result.CryptoAmount))
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_PartialFallbackIsReported() {
	s.provider.On("MadToUsd", mock.Anything).Return(dec("0.10"), nil)
	s.provider.On("PriceOf", mock.Anything, "BTC").Return(decimal.Zero, errProviderDown)

	result, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType:      "BTC",
		MadAmount:       dec("1000.00"),
		UseRealTimeRate: true,
	})
	s.Require().NoError(err)
	s.Equal(domain.RateSourceMockFallback, result.RateSource)
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_InsufficientFundsLeavesWalletUntouched() {
	_, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType: "BTC",
		MadAmount:  dec("1990.00"),
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.True(dec("2000.00").Equal(s.store.balanceOf("ACC-1")))
	s.True(s.store.cryptoOf(walletOne, "BTC").IsZero())
	s.Equal(0, s.store.txnCount())
}

func (s *CryptoServiceTestSuite) TestBuyFromMain_UnsupportedAsset() {
	_, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{
		CryptoType: "DOGE",
		MadAmount:  dec("100.00"),
	})
	s.ErrorIs(err, apperrors.ErrUnsupportedAsset)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CryptoServiceTestSuite) TestBuy_WalletCreditedOnVerification() {
	txn, err := s.svc.Buy(s.ctx, "CLT-1", dto.CryptoBuyRequest{
		CryptoType:   "BTC",
		Amount:       dec("450.00"),
		ExchangeRate: dec("450000"),
		PlatformFee:  dec("5.00"),
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, txn.Status)
	s.True(dec("1545.00").Equal(s.store.balanceOf("ACC-1")))
	s.True(s.store.cryptoOf(walletOne, "BTC").IsZero(), "credited only once verified")

	_, err = s.container.Transaction.VerifyTransaction(s.ctx, "AGT-1", txn.TransactionID,
		dto.VerifyTransactionRequest{Status: domain.StatusVerified})
	s.Require().NoError(err)
	s.True(dec("0.001").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("1545.00").Equal(s.store.balanceOf("ACC-1")))
}

func (s *CryptoServiceTestSuite) TestBuy_RejectionRefundsAmountAndFee() {
	txn, err := s.svc.Buy(s.ctx, "CLT-1", dto.CryptoBuyRequest{
		CryptoType:   "BTC",
		Amount:       dec("450.00"),
		ExchangeRate: dec("450000"),
		PlatformFee:  dec("5.00"),
	})
	s.Require().NoError(err)

	_, err = s.container.Transaction.VerifyTransaction(s.ctx, "AGT-1", txn.TransactionID,
		dto.VerifyTransactionRequest{Status: domain.StatusRejected})
	s.Require().NoError(err)
	s.True(dec("2000.00").Equal(s.store.balanceOf("ACC-1")))
	s.True(s.store.cryptoOf(walletOne, "BTC").IsZero())
}

func (s *CryptoServiceTestSuite) TestSell_CreditsMainAndRejectionReverses() {
	s.store.seedCrypto(walletOne, "BTC", "0.5")

	txn, err := s.svc.Sell(s.ctx, "CLT-1", dto.CryptoSellRequest{
		CryptoType:   "BTC",
		CryptoAmount: dec("0.1"),
		ExchangeRate: dec("450000"),
		PlatformFee:  dec("10.00"),
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, txn.Status)
	s.True(dec("45000.00").Equal(txn.Amount))
	s.True(dec("0.4").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("46990.00").Equal(s.store.balanceOf("ACC-1")))

	_, err = s.container.Transaction.VerifyTransaction(s.ctx, "AGT-1", txn.TransactionID,
		dto.VerifyTransactionRequest{Status: domain.StatusRejected})
	s.Require().NoError(err)
	s.True(dec("0.5").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("2000.00").Equal(s.store.balanceOf("ACC-1")))
}

func (s *CryptoServiceTestSuite) TestBuy_VerifiedAfterAddressChangeCreditsCurrentWallet() {
	txn, err := s.svc.Buy(s.ctx, "CLT-1", dto.CryptoBuyRequest{
		CryptoType:   "BTC",
		Amount:       dec("450.00"),
		ExchangeRate: dec("450000"),
		PlatformFee:  dec("5.00"),
	})
	s.Require().NoError(err)

	newAddress := "bc1qclientonewalletmoved000000003"
	_, err = s.svc.UpdateWalletAddress(s.ctx, "CLT-1", dto.UpdateWalletAddressRequest{NewAddress: newAddress})
	s.Require().NoError(err)

	verified, err := s.container.Transaction.VerifyTransaction(s.ctx, "AGT-1", txn.TransactionID,
		dto.VerifyTransactionRequest{Status: domain.StatusVerified})
	s.Require().NoError(err)
	s.Equal(domain.StatusVerified, verified.Status)
	s.True(dec("0.001").Equal(s.store.cryptoOf(newAddress, "BTC")))
	details, ok := verified.Crypto()
	s.Require().True(ok)
	s.Equal(newAddress, details.WalletAddress)
}

func (s *CryptoServiceTestSuite) TestSell_RejectedAfterAddressChangeRefundsCurrentWallet() {
	s.store.seedCrypto(walletOne, "BTC", "0.5")

	txn, err := s.svc.Sell(s.ctx, "CLT-1", dto.CryptoSellRequest{
		CryptoType:   "BTC",
		CryptoAmount: dec("0.1"),
		ExchangeRate: dec("450000"),
		PlatformFee:  dec("10.00"),
	})
	s.Require().NoError(err)

	newAddress := "bc1qclientonewalletmoved000000004"
	_, err = s.svc.UpdateWalletAddress(s.ctx, "CLT-1", dto.UpdateWalletAddressRequest{NewAddress: newAddress})
	s.Require().NoError(err)

	_, err = s.container.Transaction.VerifyTransaction(s.ctx, "AGT-1", txn.TransactionID,
		dto.VerifyTransactionRequest{Status: domain.StatusRejected})
	s.Require().NoError(err)
	s.True(dec("0.5").Equal(s.store.cryptoOf(newAddress, "BTC")))
	s.True(dec("2000.00").Equal(s.store.balanceOf("ACC-1")))
}

func (s *CryptoServiceTestSuite) TestSell_MoreThanHeld() {
	s.store.seedCrypto(walletOne, "ETH", "1")

	_, err := s.svc.Sell(s.ctx, "CLT-1", dto.CryptoSellRequest{
		CryptoType:   "ETH",
		CryptoAmount: dec("1.5"),
		ExchangeRate: dec("30000"),
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.True(dec("1").Equal(s.store.cryptoOf(walletOne, "ETH")))
	s.True(dec("2000.00").Equal(s.store.balanceOf("ACC-1")))
}

func (s *CryptoServiceTestSuite) TestSell_FeeAboveProceeds() {
	s.store.seedCrypto(walletOne, "USDT", "1")

	_, err := s.svc.Sell(s.ctx, "CLT-1", dto.CryptoSellRequest{
		CryptoType:   "USDT",
		CryptoAmount: dec("1"),
		ExchangeRate: dec("10"),
		PlatformFee:  dec("10.01"),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CryptoServiceTestSuite) TestTransferCrypto_MovesAndBurnsFee() {
	s.store.seedCrypto(walletOne, "BTC", "1")

	result, err := s.svc.TransferCrypto(s.ctx, "CLT-1", dto.CryptoTransferRequest{
		RecipientWalletAddress: walletTwo,
		CryptoType:             "BTC",
		Amount:                 dec("0.4"),
		NetworkFee:             dec("0.0001"),
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, result.Transaction.Status)
	s.True(result.Transaction.Amount.IsZero())
	s.True(dec("0.5999").Equal(result.SenderBalance))
	s.True(dec("0.4").Equal(result.RecipientBalance))
	s.True(dec("0.5999").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(dec("0.4").Equal(s.store.cryptoOf(walletTwo, "BTC")))
	s.Equal(2, s.store.outboxCount())
}

func (s *CryptoServiceTestSuite) TestTransferCrypto_SelfTransferAlwaysRejected() {
	s.store.seedCrypto(walletOne, "BTC", "1")

	for _, amount := range []string{"0.1", "1", "1000", "0"} {
		_, err := s.svc.TransferCrypto(s.ctx, "CLT-1", dto.CryptoTransferRequest{
			RecipientWalletAddress: walletOne,
			CryptoType:             "BTC",
			Amount:                 dec(amount),
		})
		s.ErrorIs(err, apperrors.ErrSelfTransferRejected, "amount %s", amount)
	}
	s.True(dec("1").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.Equal(0, s.store.txnCount())
}

func (s *CryptoServiceTestSuite) TestTransferCrypto_InsufficientIncludingFee() {
	s.store.seedCrypto(walletOne, "BTC", "0.4")

	_, err := s.svc.TransferCrypto(s.ctx, "CLT-1", dto.CryptoTransferRequest{
		RecipientWalletAddress: walletTwo,
		CryptoType:             "BTC",
		Amount:                 dec("0.4"),
		NetworkFee:             dec("0.00000001"),
	})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.True(dec("0.4").Equal(s.store.cryptoOf(walletOne, "BTC")))
	s.True(s.store.cryptoOf(walletTwo, "BTC").IsZero())
}

func (s *CryptoServiceTestSuite) TestTransferCrypto_UnknownRecipient() {
	s.store.seedCrypto(walletOne, "BTC", "1")

	_, err := s.svc.TransferCrypto(s.ctx, "CLT-1", dto.CryptoTransferRequest{
		RecipientWalletAddress: "bc1qnobodyhasthisaddress000000000000",
		CryptoType:             "BTC",
		Amount:                 dec("0.1"),
	})
	s.ErrorIs(err, apperrors.ErrWalletNotFound)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CryptoServiceTestSuite) TestGetWallet_ValuesHoldingsInMad() {
	s.store.seedCrypto(walletOne, "BTC", "0.5")

	view, err := s.svc.GetWallet(s.ctx, "CLT-1", false)
	s.Require().NoError(err)
	s.Equal(walletOne, view.WalletAddress)
	s.Len(view.Holdings, len(domain.SupportedAssets))
	s.Equal(domain.RateSourceMock, view.RateSource)
	for _, h := range view.Holdings {
		if h.Symbol == "BTC" {
			s.True(dec("225000.00").Equal(h.ValueInMad))
		} else {
			s.True(h.ValueInMad.IsZero(), h.Symbol)
		}
	}
	s.True(dec("225000.00").Equal(view.TotalValueInMad))
}

func (s *CryptoServiceTestSuite) TestUpdateWalletAddress() {
	s.store.seedCrypto(walletOne, "ETH", "2")
	newAddress := "0xabcdefabcdefabcdefabcdefabcdefabcdef0001"

	wallet, err := s.svc.UpdateWalletAddress(s.ctx, "CLT-1", dto.UpdateWalletAddressRequest{NewAddress: newAddress})
	s.Require().NoError(err)
	s.Equal(newAddress, wallet.WalletAddress)
	s.True(dec("2").Equal(s.store.cryptoOf(newAddress, "ETH")), "balances follow the address")
	s.Equal(1, s.store.outboxCount())

	_, err = s.svc.UpdateWalletAddress(s.ctx, "CLT-1", dto.UpdateWalletAddressRequest{NewAddress: walletTwo})
	s.ErrorIs(err, apperrors.ErrDuplicateIdentity)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *CryptoServiceTestSuite) TestGetCryptoHistory_OnlyCryptoKinds() {
	_, err := s.svc.BuyFromMain(s.ctx, "CLT-1", dto.BuyFromMainRequest{CryptoType: "BTC", MadAmount: dec("100.00")})
	s.Require().NoError(err)
	_, err = s.container.Transaction.CreateTransfer(s.ctx, "CLT-1", dto.CreateTransferRequest{
		FromAccountID: "ACC-1", ToAccountID: "ACC-2", Amount: dec("10.00"),
	})
	s.Require().NoError(err)

	history, err := s.svc.GetCryptoHistory(s.ctx, "CLT-1")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(domain.KindCryptoBuy, history[0].Kind)
}
