package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles transfers, recharges, deposits and verification.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerClientTransactionRoutes registers the value-moving routes available to clients.
func registerClientTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(ts)

	rg.POST("/transfers", h.createTransfer)
	rg.POST("/mobile-recharges", h.createMobileRecharge)
	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listClientTransactions)
		txns.GET("/:id", h.getTransaction)
	}
}

// registerAgentTransactionRoutes registers deposit and verification routes for agents.
func registerAgentTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(ts)

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.createDeposit)
		deposits.GET("/statistics", h.getDepositStatistics)
	}
	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listAgentTransactions)
		txns.GET("/pending", h.listPendingTransactions)
		txns.PUT("/:id/verify", h.verifyTransaction)
	}
}

// createTransfer godoc
// @Summary Transfer between accounts
// @Description Debits amount plus fee from the source and credits amount to the destination. The record starts PENDING.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse "Validation error or insufficient funds"
// @Failure 403 {object} ErrorResponse "Source account belongs to another client"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/transfers [post]
func (h *transactionHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.CreateTransfer(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create transfer")
		return
	}
	logger.Info("Transfer created", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// createMobileRecharge godoc
// @Summary Mobile recharge
// @Description Debits the main account to top up a phone line. The record starts PENDING.
// @Tags transactions
// @Accept json
// @Produce json
// @Param recharge body dto.MobileRechargeRequest true "Recharge details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/mobile-recharges [post]
func (h *transactionHandler) createMobileRecharge(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.MobileRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.CreateMobileRecharge(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create mobile recharge")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listClientTransactions godoc
// @Summary List own transactions
// @Description Newest first, paginated with a continuation token
// @Tags transactions
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/transactions [get]
func (h *transactionHandler) listClientTransactions(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	txns, next, err := h.transactionService.ListClientTransactions(c.Request.Context(), clientID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), clientID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// createDeposit godoc
// @Summary Deposit into a client account
// @Description Credits a managed client's account. The record is auto-verified by the agent.
// @Tags agent
// @Accept json
// @Produce json
// @Param deposit body dto.CreateDepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Client not managed by the agent"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agent/deposits [post]
func (h *transactionHandler) createDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.CreateDeposit(c.Request.Context(), agentID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create deposit")
		return
	}
	logger.Info("Deposit created", slog.String("transaction_id", txn.TransactionID), slog.String("client_id", req.ClientID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getDepositStatistics godoc
// @Summary Deposit statistics
// @Description Today, week and month totals of the deposits made by the agent
// @Tags agent
// @Produce json
// @Success 200 {object} domain.DepositStatistics
// @Security BearerAuth
// @Router /agent/deposits/statistics [get]
func (h *transactionHandler) getDepositStatistics(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	stats, err := h.transactionService.GetDepositStatistics(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute deposit statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// listAgentTransactions godoc
// @Summary List managed clients' transactions
// @Tags agent
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Continuation token"
// @Param status query string false "Status filter"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /agent/transactions [get]
func (h *transactionHandler) listAgentTransactions(c *gin.Context) {
	var params dto.ListAgentTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	h.respondAgentPage(c, params)
}

// listPendingTransactions godoc
// @Summary List transactions awaiting verification
// @Tags agent
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Security BearerAuth
// @Router /agent/transactions/pending [get]
func (h *transactionHandler) listPendingTransactions(c *gin.Context) {
	var params dto.ListAgentTransactionsParams
	if err := c.ShouldBindQuery(&params.ListTransactionsParams); err != nil {
		respondBindError(c, err)
		return
	}
	pending := domain.StatusPending
	params.Status = &pending
	h.respondAgentPage(c, params)
}

func (h *transactionHandler) respondAgentPage(c *gin.Context, params dto.ListAgentTransactionsParams) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	txns, next, err := h.transactionService.ListAgentTransactions(c.Request.Context(), agentID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}

// verifyTransaction godoc
// @Summary Verify a transaction
// @Description Moves a transaction to a new status. Only an agent managing one of the parties may do this.
// @Tags agent
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param decision body dto.VerifyTransactionRequest true "Verification decision"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /agent/transactions/{id}/verify [put]
func (h *transactionHandler) verifyTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.VerifyTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactionService.VerifyTransaction(c.Request.Context(), agentID, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to verify transaction")
		return
	}
	logger.Info("Transaction verified", slog.String("transaction_id", txn.TransactionID), slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
