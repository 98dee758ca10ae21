package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ClientManagementServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memStore
	container *portssvc.ServiceContainer
	svc       portssvc.ClientManagementSvcFacade
}

func (s *ClientManagementServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.store.seedAgent("AGT-1", "EMP20260001")
	s.store.seedAgent("AGT-2", "EMP20260002")
	s.store.seedClient("CLT-1", "AGT-1")

	s.container = newTestContainer(s.store, nil)
	s.svc = s.container.ClientManagement
}

func TestClientManagementService(t *testing.T) {
	suite.Run(t, new(ClientManagementServiceTestSuite))
}

func newClientRequest(username string) dto.CreateClientRequest {
	return dto.CreateClientRequest{
		Username:  username,
		Email:     username + "@example.ma",
		FirstName: "Amina",
		LastName:  "Alaoui",
		Phone:     "+212611223344",
		Address:   "12 Rue de Fes, Rabat",
	}
}

func (s *ClientManagementServiceTestSuite) TestCreateClient_EnrollsEverythingTogether() {
	enrollment, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("amina"))
	s.Require().NoError(err)

	s.Regexp(`^CLT[0-9A-F]{20}$`, enrollment.Client.ClientID())
	s.Regexp(`^ID[0-9]{12}$`, enrollment.Client.IdentificationNumber)
	s.Regexp(`^ACC[0-9A-F]{20}$`, enrollment.Account.AccountID)
	s.Regexp(`^1[0-9a-f]{32}$`, enrollment.Wallet.WalletAddress)
	s.Equal("AGT-1", enrollment.Client.AgentID)
	s.Equal(domain.RoleClient, enrollment.Client.Role)
	s.Equal(domain.AccountTypeChecking, enrollment.Account.AccountType)
	s.True(enrollment.Account.Balance.IsZero())
	s.Equal(domain.SupportedAssets, enrollment.Wallet.SupportedAssets)
	s.NotEmpty(enrollment.TemporaryPassword)
	s.NotEqual(enrollment.TemporaryPassword, enrollment.Client.PasswordHash)

	stored, err := s.store.FindClientByID(s.ctx, enrollment.Client.ClientID())
	s.Require().NoError(err)
	s.Equal("amina", stored.Username)
	main, err := s.store.FindMainAccountByClientID(s.ctx, stored.ClientID())
	s.Require().NoError(err)
	s.Equal(enrollment.Account.AccountID, main.AccountID)
	wallet, err := s.store.FindWalletByClientID(s.ctx, stored.ClientID())
	s.Require().NoError(err)
	s.Equal(enrollment.Wallet.WalletAddress, wallet.WalletAddress)
	s.Equal(1, s.store.outboxCount(), "welcome notification")
}

func (s *ClientManagementServiceTestSuite) TestCreateClient_TemporaryPasswordLogsIn() {
	enrollment, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("youssef"))
	s.Require().NoError(err)

	user, err := s.container.User.AuthenticateUser(s.ctx, "youssef", enrollment.TemporaryPassword)
	s.Require().NoError(err)
	s.Equal(enrollment.Client.ClientID(), user.UserID)
}

func (s *ClientManagementServiceTestSuite) TestCreateClient_DuplicateIdentity() {
	_, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("CLT-1"))
	s.ErrorIs(err, apperrors.ErrDuplicateIdentity)

	req := newClientRequest("fresh")
	req.Email = "CLT-1@bank.ma"
	_, err = s.svc.CreateClient(s.ctx, "AGT-1", req)
	s.ErrorIs(err, apperrors.ErrDuplicateIdentity)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *ClientManagementServiceTestSuite) TestCreateClient_PartialFailureLeavesNothing() {
	s.store.failOn["SaveWallet"] = errors.New("constraint violation")

	_, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("karim"))
	s.Error(err)

	exists, err := s.store.ExistsByUsername(s.ctx, "karim")
	s.Require().NoError(err)
	s.False(exists)
	clients, err := s.store.FindClientsByAgentID(s.ctx, "AGT-1")
	s.Require().NoError(err)
	s.Len(clients, 1)
	s.Equal(0, s.store.outboxCount())
}

func (s *ClientManagementServiceTestSuite) TestCreateClient_DailyLimit() {
	s.store.seedSetting(domain.MaxDailyNewClientsSettingKey, "2", domain.SettingTypeNumber)

	_, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("first"))
	s.Require().NoError(err)
	_, err = s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("second"))
	s.Require().NoError(err)
	_, err = s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("third"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.CreateClient(s.ctx, "AGT-2", newClientRequest("other"))
	s.NoError(err, "the limit is per agent")
}

func (s *ClientManagementServiceTestSuite) TestAuthorizeAgentForClient() {
	s.NoError(s.svc.AuthorizeAgentForClient(s.ctx, "AGT-1", "CLT-1"))
	s.ErrorIs(s.svc.AuthorizeAgentForClient(s.ctx, "AGT-2", "CLT-1"), apperrors.ErrAccessDenied)
	s.ErrorIs(s.svc.AuthorizeAgentForClient(s.ctx, "AGT-1", "CLT-404"), apperrors.ErrForbidden)
}

func (s *ClientManagementServiceTestSuite) TestGetClient_OnlyManagingAgent() {
	client, err := s.svc.GetClient(s.ctx, "AGT-1", "CLT-1")
	s.Require().NoError(err)
	s.Equal("CLT-1", client.ClientID())

	_, err = s.svc.GetClient(s.ctx, "AGT-2", "CLT-1")
	s.ErrorIs(err, apperrors.ErrAccessDenied)
}

func (s *ClientManagementServiceTestSuite) TestListManagedClients() {
	s.store.seedClient("CLT-2", "AGT-1")
	s.store.seedClient("CLT-3", "AGT-2")

	clients, err := s.svc.ListManagedClients(s.ctx, "AGT-1")
	s.Require().NoError(err)
	s.Len(clients, 2)
}

func (s *ClientManagementServiceTestSuite) TestUpdateClient() {
	phone := "+212600000001"
	address := "5 Avenue Hassan II, Casablanca"
	updated, err := s.svc.UpdateClient(s.ctx, "AGT-1", "CLT-1", dto.UpdateClientRequest{Phone: &phone, Address: &address})
	s.Require().NoError(err)
	s.Equal(phone, updated.Phone)
	s.Equal(address, updated.Address)
	s.Equal("CLT-1@bank.ma", updated.Email, "omitted fields are kept")
	s.Equal("AGT-1", updated.LastUpdatedBy)

	s.store.seedClient("CLT-2", "AGT-1")
	taken := "CLT-2@bank.ma"
	_, err = s.svc.UpdateClient(s.ctx, "AGT-1", "CLT-1", dto.UpdateClientRequest{Email: &taken})
	s.ErrorIs(err, apperrors.ErrDuplicateIdentity)

	_, err = s.svc.UpdateClient(s.ctx, "AGT-2", "CLT-1", dto.UpdateClientRequest{Phone: &phone})
	s.ErrorIs(err, apperrors.ErrAccessDenied)
}

func (s *ClientManagementServiceTestSuite) TestDeactivateClient_BlocksLogin() {
	enrollment, err := s.svc.CreateClient(s.ctx, "AGT-1", newClientRequest("salma"))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeactivateClient(s.ctx, "AGT-1", enrollment.Client.ClientID()))

	_, err = s.container.User.AuthenticateUser(s.ctx, "salma", enrollment.TemporaryPassword)
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	s.ErrorIs(s.svc.DeactivateClient(s.ctx, "AGT-2", "CLT-1"), apperrors.ErrAccessDenied)
}

func (s *ClientManagementServiceTestSuite) TestGetProfile() {
	client, err := s.svc.GetProfile(s.ctx, "CLT-1")
	s.Require().NoError(err)
	s.Equal("ID-CLT-1", client.IdentificationNumber)

	_, err = s.svc.GetProfile(s.ctx, "CLT-404")
	s.ErrorIs(err, apperrors.ErrClientNotFound)
}
