package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler serves a client's own accounts and profile.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	profileService portssvc.ClientProfileSvc
}

func newAccountHandler(as portssvc.AccountSvcFacade, ps portssvc.ClientProfileSvc) *accountHandler {
	return &accountHandler{
		accountService: as,
		profileService: ps,
	}
}

// registerAccountRoutes registers the client account routes.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, profileService portssvc.ClientProfileSvc) {
	h := newAccountHandler(accountService, profileService)

	rg.GET("/profile", h.getProfile)
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.POST("", h.openAccount)
		accounts.GET("/main", h.getMainAccount)
		accounts.GET("/summary", h.getBalanceSummary)
		accounts.GET("/:id", h.getAccount)
	}
}

// getProfile godoc
// @Summary Get own client profile
// @Tags client
// @Produce json
// @Success 200 {object} dto.ClientResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/profile [get]
func (h *accountHandler) getProfile(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	client, err := h.profileService.GetProfile(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// listAccounts godoc
// @Summary List own accounts
// @Description Retrieves every account owned by the logged-in client
// @Tags accounts
// @Produce json
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// openAccount godoc
// @Summary Open an additional account
// @Description Opens a zero-balance account of the given type for the logged-in client
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.OpenAccount(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to open account")
		return
	}
	logger.Info("Account opened", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getMainAccount godoc
// @Summary Get main account
// @Description Returns the client's oldest CHECKING account
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/accounts/main [get]
func (h *accountHandler) getMainAccount(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetMainAccount(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve main account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getBalanceSummary godoc
// @Summary Balance summary
// @Tags accounts
// @Produce json
// @Success 200 {object} domain.BalanceSummary
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/accounts/summary [get]
func (h *accountHandler) getBalanceSummary(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	summary, err := h.accountService.GetBalanceSummary(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute balance summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves one of the logged-in client's accounts
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Account belongs to another client"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
