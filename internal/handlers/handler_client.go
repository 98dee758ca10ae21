package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// clientHandler handles agent operations on the clients they manage.
type clientHandler struct {
	clientService portssvc.ClientManagementSvcFacade
}

func newClientHandler(cs portssvc.ClientManagementSvcFacade) *clientHandler {
	return &clientHandler{clientService: cs}
}

// registerClientRoutes registers the agent client-management routes.
func registerClientRoutes(rg *gin.RouterGroup, cs portssvc.ClientManagementSvcFacade) {
	h := newClientHandler(cs)

	clients := rg.Group("/clients")
	{
		clients.POST("", h.createClient)
		clients.GET("", h.listClients)
		clients.GET("/:id", h.getClient)
		clients.PUT("/:id", h.updateClient)
		clients.DELETE("/:id", h.deactivateClient)
	}
}

// createClient godoc
// @Summary Enroll a client
// @Description Creates the client with a main CHECKING account and a crypto wallet. The temporary password is returned once.
// @Tags agent
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} dto.CreateClientResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email already in use"
// @Security BearerAuth
// @Router /agent/clients [post]
func (h *clientHandler) createClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	enrollment, err := h.clientService.CreateClient(c.Request.Context(), agentID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create client")
		return
	}
	logger.Info("Client enrolled", slog.String("client_id", enrollment.Client.ClientID()))
	c.JSON(http.StatusCreated, dto.ToCreateClientResponse(enrollment))
}

// listClients godoc
// @Summary List managed clients
// @Tags agent
// @Produce json
// @Success 200 {array} dto.ClientResponse
// @Security BearerAuth
// @Router /agent/clients [get]
func (h *clientHandler) listClients(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	clients, err := h.clientService.ListManagedClients(c.Request.Context(), agentID)
	if err != nil {
		respondServiceError(c, err, "Failed to list clients")
		return
	}
	c.JSON(http.StatusOK, dto.ToListClientResponse(clients))
}

// getClient godoc
// @Summary Get a managed client
// @Tags agent
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agent/clients/{id} [get]
func (h *clientHandler) getClient(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), agentID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve client")
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// updateClient godoc
// @Summary Update a managed client
// @Tags agent
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param client body dto.UpdateClientRequest true "Fields to change"
// @Success 200 {object} dto.ClientResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /agent/clients/{id} [put]
func (h *clientHandler) updateClient(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), agentID, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// deactivateClient godoc
// @Summary Deactivate a managed client
// @Tags agent
// @Param id path string true "Client ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /agent/clients/{id} [delete]
func (h *clientHandler) deactivateClient(c *gin.Context) {
	agentID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.clientService.DeactivateClient(c.Request.Context(), agentID, c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to deactivate client")
		return
	}
	c.Status(http.StatusNoContent)
}
