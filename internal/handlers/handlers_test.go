package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/handlers"
	"github.com/SscSPs/ebank_backoffice/internal/platform/config"
	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testClientID = "CLT0123456789abcdef0123"
	testAgentID  = "AGT-1"
	testAdminID  = "ADM-1"
)

type HandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	jwtSecret     string
	accounts      *MockAccountService
	transactions  *MockTransactionService
	crypto        *MockCryptoService
	clients       *MockClientService
	notifications *MockNotificationService
	users         *MockUserService
	tokens        *MockTokenService
	settings      *MockSettingsService
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.accounts = new(MockAccountService)
	s.transactions = new(MockTransactionService)
	s.crypto = new(MockCryptoService)
	s.clients = new(MockClientService)
	s.notifications = new(MockNotificationService)
	s.users = new(MockUserService)
	s.tokens = new(MockTokenService)
	s.settings = new(MockSettingsService)

	container := &portssvc.ServiceContainer{
		Account:          s.accounts,
		Transaction:      s.transactions,
		Crypto:           s.crypto,
		ClientManagement: s.clients,
		Notification:     s.notifications,
		User:             s.users,
		Token:            s.tokens,
		Settings:         s.settings,
	}
	cfg := &config.Config{JWTSecret: s.jwtSecret, IsProduction: true}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, handlers.RouteOptions{})
}

func (s *HandlerTestSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.transactions.AssertExpectations(s.T())
	s.crypto.AssertExpectations(s.T())
	s.clients.AssertExpectations(s.T())
	s.notifications.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
	s.tokens.AssertExpectations(s.T())
	s.settings.AssertExpectations(s.T())
}

// generateTestToken creates a signed access token for testing.
func (s *HandlerTestSuite) generateTestToken(userID string, role domain.UserRole) string {
	token, err := utils.GenerateJWT(userID, string(role), s.jwtSecret, time.Hour, "ebank-test")
	s.Require().NoError(err)
	return token
}

func (s *HandlerTestSuite) do(method, path string, body any, userID string, role domain.UserRole) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.generateTestToken(userID, role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func pendingTransfer() *domain.Transaction {
	now := time.Now().UTC()
	txn, err := domain.NewTransaction(domain.TransactionParams{
		TransactionID: "TXN1",
		Amount:        decimal.RequireFromString("100.00"),
		FromAccountID: "ACC1",
		ToAccountID:   "ACC2",
		FromClientID:  testClientID,
		ActorID:       testClientID,
		Now:           now,
	}, domain.TransferDetails{Fee: decimal.RequireFromString("1.00")}, domain.StatusPending)
	if err != nil {
		panic(err)
	}
	return &txn
}

// --- auth ---

func (s *HandlerTestSuite) TestLogin_Success() {
	user := &domain.User{UserID: testAgentID, Username: "agent", Role: domain.RoleAgent, Status: domain.UserStatusActive}
	expires := time.Now().Add(time.Hour).UTC()
	s.users.On("AuthenticateUser", mock.Anything, "agent", "secret-pass").Return(user, nil).Once()
	s.tokens.On("GenerateAccessToken", mock.Anything, user).Return("signed.jwt.token", expires, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "agent", Password: "secret-pass"}, "", "")

	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("signed.jwt.token", body["token"])
	s.Equal("Bearer", body["tokenType"])
	s.Equal("AGENT", body["role"])
}

func (s *HandlerTestSuite) TestLogin_InvalidCredentials() {
	s.users.On("AuthenticateUser", mock.Anything, "agent", "wrong").Return(nil, apperrors.ErrInvalidCredentials).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "agent", Password: "wrong"}, "", "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.tokens.AssertNotCalled(s.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestProtectedRoute_MissingToken() {
	w := s.do(http.MethodGet, "/api/v1/client/accounts", nil, "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestProtectedRoute_WrongRole() {
	w := s.do(http.MethodGet, "/api/v1/agent/clients", nil, testClientID, domain.RoleClient)
	s.Equal(http.StatusForbidden, w.Code)
	s.clients.AssertNotCalled(s.T(), "ListManagedClients", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestChangePassword_AnyRole() {
	req := dto.ChangePasswordRequest{CurrentPassword: "temporary1", NewPassword: "chosen-passw0rd"}
	s.users.On("ChangePassword", mock.Anything, testClientID, req).Return(nil).Once()

	w := s.do(http.MethodPut, "/api/v1/auth/password", req, testClientID, domain.RoleClient)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, s.decode(w)["success"])
}

func (s *HandlerTestSuite) TestChangePassword_WrongCurrentPassword() {
	req := dto.ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "chosen-passw0rd"}
	s.users.On("ChangePassword", mock.Anything, testAgentID, req).
		Return(fmt.Errorf("%w: current password is incorrect", apperrors.ErrValidation)).Once()

	w := s.do(http.MethodPut, "/api/v1/auth/password", req, testAgentID, domain.RoleAgent)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestChangePassword_RequiresToken() {
	w := s.do(http.MethodPut, "/api/v1/auth/password", dto.ChangePasswordRequest{CurrentPassword: "a", NewPassword: "chosen-passw0rd"}, "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.users.AssertNotCalled(s.T(), "ChangePassword", mock.Anything, mock.Anything, mock.Anything)
}

// --- client transactions ---

func (s *HandlerTestSuite) TestCreateTransfer_Success() {
	s.transactions.On("CreateTransfer", mock.Anything, testClientID, mock.MatchedBy(func(req dto.CreateTransferRequest) bool {
		return req.FromAccountID == "ACC1" && req.ToAccountID == "ACC2" && req.Amount.Equal(decimal.RequireFromString("100"))
	})).Return(pendingTransfer(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/client/transfers", map[string]any{
		"fromAccountID": "ACC1",
		"toAccountID":   "ACC2",
		"amount":        "100.00",
	}, testClientID, domain.RoleClient)

	s.Equal(http.StatusCreated, w.Code)
	body := s.decode(w)
	s.Equal("TXN1", body["transactionID"])
	s.Equal("PENDING", body["status"])
	s.Equal("1", body["fee"])
}

func (s *HandlerTestSuite) TestCreateTransfer_InsufficientFunds() {
	s.transactions.On("CreateTransfer", mock.Anything, testClientID, mock.Anything).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := s.do(http.MethodPost, "/api/v1/client/transfers", map[string]any{
		"fromAccountID": "ACC1",
		"toAccountID":   "ACC2",
		"amount":        "100.00",
	}, testClientID, domain.RoleClient)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.decode(w)["error"], "insufficient funds")
}

func (s *HandlerTestSuite) TestCreateTransfer_RejectsNonPositiveAmount() {
	w := s.do(http.MethodPost, "/api/v1/client/transfers", map[string]any{
		"fromAccountID": "ACC1",
		"toAccountID":   "ACC2",
		"amount":        "-5",
	}, testClientID, domain.RoleClient)

	s.Equal(http.StatusBadRequest, w.Code)
	s.transactions.AssertNotCalled(s.T(), "CreateTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestCreateTransfer_RejectsSameAccount() {
	w := s.do(http.MethodPost, "/api/v1/client/transfers", map[string]any{
		"fromAccountID": "ACC1",
		"toAccountID":   "ACC1",
		"amount":        "5",
	}, testClientID, domain.RoleClient)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGetTransaction_AccessDenied() {
	s.transactions.On("GetTransaction", mock.Anything, testClientID, "TXN9").
		Return(nil, apperrors.ErrAccessDenied).Once()

	w := s.do(http.MethodGet, "/api/v1/client/transactions/TXN9", nil, testClientID, domain.RoleClient)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestListClientTransactions_ReturnsNextToken() {
	next := "opaque-token"
	s.transactions.On("ListClientTransactions", mock.Anything, testClientID, mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
		return p.Limit == 5 && p.NextToken == nil
	})).Return([]domain.Transaction{*pendingTransfer()}, &next, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/client/transactions?limit=5", nil, testClientID, domain.RoleClient)

	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal(next, body["nextToken"])
	s.Len(body["transactions"], 1)
}

// --- agent ---

func (s *HandlerTestSuite) TestListPendingTransactions_FiltersPending() {
	s.transactions.On("ListAgentTransactions", mock.Anything, testAgentID, mock.MatchedBy(func(p dto.ListAgentTransactionsParams) bool {
		return p.Status != nil && *p.Status == domain.StatusPending && p.Limit == 20
	})).Return([]domain.Transaction{}, nil, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/agent/transactions/pending", nil, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestVerifyTransaction_NotManagingAgent() {
	s.transactions.On("VerifyTransaction", mock.Anything, testAgentID, "TXN1", dto.VerifyTransactionRequest{
		Status: domain.StatusVerified,
		Notes:  "ok",
	}).Return(nil, apperrors.ErrAccessDenied).Once()

	w := s.do(http.MethodPut, "/api/v1/agent/transactions/TXN1/verify", map[string]any{
		"status": "VERIFIED",
		"notes":  "ok",
	}, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestVerifyTransaction_InvalidTransition() {
	s.transactions.On("VerifyTransaction", mock.Anything, testAgentID, "TXN1", mock.Anything).
		Return(nil, apperrors.ErrInvalidTransition).Once()

	w := s.do(http.MethodPut, "/api/v1/agent/transactions/TXN1/verify", map[string]any{
		"status": "REJECTED",
	}, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestVerifyTransaction_UnknownStatus() {
	w := s.do(http.MethodPut, "/api/v1/agent/transactions/TXN1/verify", map[string]any{
		"status": "PENDING",
	}, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestCreateClient_DuplicateIdentity() {
	s.clients.On("CreateClient", mock.Anything, testAgentID, mock.Anything).
		Return(nil, apperrors.ErrDuplicateIdentity).Once()

	w := s.do(http.MethodPost, "/api/v1/agent/clients", map[string]any{
		"username":  "jdoe",
		"email":     "jdoe@example.com",
		"firstName": "John",
		"lastName":  "Doe",
		"phone":     "+212600000000",
	}, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusConflict, w.Code)
}

// --- crypto ---

func (s *HandlerTestSuite) TestBuyFromMain_UnsupportedSymbolRejectedAtBinding() {
	w := s.do(http.MethodPost, "/api/v1/client/crypto/buy-from-main", map[string]any{
		"cryptoType": "DOGE",
		"madAmount":  "1000",
	}, testClientID, domain.RoleClient)

	s.Equal(http.StatusBadRequest, w.Code)
	s.crypto.AssertNotCalled(s.T(), "BuyFromMain", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestGetRates_DefaultsToRealtime() {
	board := &domain.RateBoard{MadToUsd: domain.RateQuote{Rate: decimal.RequireFromString("0.10"), Source: domain.RateSourceMock}}
	s.crypto.On("GetRates", mock.Anything, true).Return(board, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/client/crypto/rates", nil, testClientID, domain.RoleClient)

	s.Equal(http.StatusOK, w.Code)
}

// --- notifications & admin ---

func (s *HandlerTestSuite) TestCountNotifications_AnyRole() {
	s.notifications.On("CountNotifications", mock.Anything, testAgentID).Return(int64(3), int64(1), nil).Once()

	w := s.do(http.MethodGet, "/api/v1/notifications/count", nil, testAgentID, domain.RoleAgent)

	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal(float64(3), body["total"])
	s.Equal(float64(1), body["unread"])
}

func (s *HandlerTestSuite) TestDeleteNotification_OtherOwner() {
	s.notifications.On("DeleteNotification", mock.Anything, testClientID, "N1").Return(apperrors.ErrAccessDenied).Once()

	w := s.do(http.MethodDelete, "/api/v1/notifications/N1", nil, testClientID, domain.RoleClient)

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestUpdateSetting_InvalidValue() {
	s.settings.On("UpdateSetting", mock.Anything, domain.FeePercentageSettingKey, dto.UpdateSettingRequest{Value: "abc"}, testAdminID).
		Return(nil, apperrors.ErrValidation).Once()

	w := s.do(http.MethodPut, "/api/v1/admin/settings/"+domain.FeePercentageSettingKey, map[string]any{"value": "abc"}, testAdminID, domain.RoleAdmin)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestServiceFailureIsMasked() {
	s.accounts.On("ListAccounts", mock.Anything, testClientID).Return(nil, apperrors.NewAppError(500, "failed to begin transaction", nil)).Once()

	w := s.do(http.MethodGet, "/api/v1/client/accounts", nil, testClientID, domain.RoleClient)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Failed to list accounts", s.decode(w)["error"])
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "", "")
	s.Equal(http.StatusOK, w.Code)
}
