package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cryptoHandler handles wallet queries and crypto trades for clients.
type cryptoHandler struct {
	cryptoService portssvc.CryptoSvcFacade
}

func newCryptoHandler(cs portssvc.CryptoSvcFacade) *cryptoHandler {
	return &cryptoHandler{cryptoService: cs}
}

// registerCryptoRoutes registers the client crypto routes.
func registerCryptoRoutes(rg *gin.RouterGroup, cs portssvc.CryptoSvcFacade) {
	h := newCryptoHandler(cs)

	crypto := rg.Group("/crypto")
	{
		crypto.GET("/wallet", h.getWallet)
		crypto.PUT("/wallet/address", h.updateWalletAddress)
		crypto.GET("/history", h.getHistory)
		crypto.GET("/rates", h.getRates)
		crypto.POST("/buy-from-main", h.buyFromMain)
		crypto.POST("/buy", h.buy)
		crypto.POST("/sell", h.sell)
		crypto.POST("/transfer", h.transfer)
	}
}

// getWallet godoc
// @Summary Get own crypto wallet
// @Description Balances of every supported asset with their value in MAD
// @Tags crypto
// @Produce json
// @Param realtime query bool false "Use live rates" default(true)
// @Success 200 {object} domain.WalletView
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/crypto/wallet [get]
func (h *cryptoHandler) getWallet(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.RealtimeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.cryptoService.GetWallet(c.Request.Context(), clientID, params.Realtime)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve wallet")
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateWalletAddress godoc
// @Summary Change wallet address
// @Tags crypto
// @Accept json
// @Produce json
// @Param address body dto.UpdateWalletAddressRequest true "New address"
// @Success 200 {object} domain.CryptoWallet
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Address already in use"
// @Security BearerAuth
// @Router /client/crypto/wallet/address [put]
func (h *cryptoHandler) updateWalletAddress(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.UpdateWalletAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	wallet, err := h.cryptoService.UpdateWalletAddress(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update wallet address")
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// getHistory godoc
// @Summary Crypto transaction history
// @Tags crypto
// @Produce json
// @Success 200 {array} dto.TransactionResponse
// @Security BearerAuth
// @Router /client/crypto/history [get]
func (h *cryptoHandler) getHistory(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	txns, err := h.cryptoService.GetCryptoHistory(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve crypto history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nil).Transactions)
}

// getRates godoc
// @Summary Current rates
// @Description USD prices of the supported assets and the MAD to USD rate, with their sources
// @Tags crypto
// @Produce json
// @Param realtime query bool false "Use live rates" default(true)
// @Success 200 {object} domain.RateBoard
// @Security BearerAuth
// @Router /client/crypto/rates [get]
func (h *cryptoHandler) getRates(c *gin.Context) {
	var params dto.RealtimeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	board, err := h.cryptoService.GetRates(c.Request.Context(), params.Realtime)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve rates")
		return
	}
	c.JSON(http.StatusOK, board)
}

// buyFromMain godoc
// @Summary Buy crypto from the main account
// @Description Converts MAD to USD, then to the asset, debits the main account with the platform fee and credits the wallet. Completes immediately.
// @Tags crypto
// @Accept json
// @Produce json
// @Param order body dto.BuyFromMainRequest true "Purchase"
// @Success 201 {object} dto.BuyFromMainResponse
// @Failure 400 {object} ErrorResponse "Unsupported asset or insufficient funds"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/crypto/buy-from-main [post]
func (h *cryptoHandler) buyFromMain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.BuyFromMainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.cryptoService.BuyFromMain(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to buy crypto")
		return
	}
	logger.Info("Crypto bought from main account",
		slog.String("transaction_id", result.Transaction.TransactionID),
		slog.String("rate_source", string(result.RateSource)))
	c.JSON(http.StatusCreated, dto.ToBuyFromMainResponse(result))
}

// buy godoc
// @Summary Place a quoted crypto purchase
// @Tags crypto
// @Accept json
// @Produce json
// @Param order body dto.CryptoBuyRequest true "Purchase"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/crypto/buy [post]
func (h *cryptoHandler) buy(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CryptoBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	txn, err := h.cryptoService.Buy(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to place crypto purchase")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// sell godoc
// @Summary Sell crypto
// @Description Debits the wallet and credits the main account together. The record starts PENDING for agent review.
// @Tags crypto
// @Accept json
// @Produce json
// @Param order body dto.CryptoSellRequest true "Sale"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /client/crypto/sell [post]
func (h *cryptoHandler) sell(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CryptoSellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	txn, err := h.cryptoService.Sell(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to sell crypto")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// transfer godoc
// @Summary Send crypto to another wallet
// @Description The network fee is burned. Self-transfers are rejected.
// @Tags crypto
// @Accept json
// @Produce json
// @Param transfer body dto.CryptoTransferRequest true "Transfer"
// @Success 201 {object} dto.CryptoTransferResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Recipient wallet not found"
// @Security BearerAuth
// @Router /client/crypto/transfer [post]
func (h *cryptoHandler) transfer(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CryptoTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.cryptoService.TransferCrypto(c.Request.Context(), clientID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to transfer crypto")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCryptoTransferResponse(result))
}
