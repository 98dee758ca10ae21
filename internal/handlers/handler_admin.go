package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler handles bank staff and global settings.
type adminHandler struct {
	userService     portssvc.UserSvcFacade
	settingsService portssvc.SettingsSvc
}

func newAdminHandler(us portssvc.UserSvcFacade, ss portssvc.SettingsSvc) *adminHandler {
	return &adminHandler{
		userService:     us,
		settingsService: ss,
	}
}

// registerAdminRoutes registers all admin routes.
func registerAdminRoutes(rg *gin.RouterGroup, us portssvc.UserSvcFacade, ss portssvc.SettingsSvc) {
	h := newAdminHandler(us, ss)

	agents := rg.Group("/agents")
	{
		agents.POST("", h.createAgent)
		agents.GET("", h.listAgents)
	}
	settings := rg.Group("/settings")
	{
		settings.GET("", h.listSettings)
		settings.GET("/:key", h.getSetting)
		settings.PUT("/:key", h.updateSetting)
	}
}

// createAgent godoc
// @Summary Create a bank agent
// @Description Creates an agent account with a generated employee ID
// @Tags admin
// @Accept json
// @Produce json
// @Param agent body dto.CreateBankAgentRequest true "Agent details"
// @Success 201 {object} dto.BankAgentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Username or email already in use"
// @Security BearerAuth
// @Router /admin/agents [post]
func (h *adminHandler) createAgent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.CreateBankAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	agent, err := h.userService.CreateBankAgent(c.Request.Context(), adminID, req)
	if err != nil {
		respondServiceError(c, err, "Failed to create bank agent")
		return
	}
	logger.Info("Bank agent created", slog.String("agent_id", agent.UserID), slog.String("employee_id", agent.EmployeeID))
	c.JSON(http.StatusCreated, dto.ToBankAgentResponse(agent))
}

// listAgents godoc
// @Summary List bank agents
// @Tags admin
// @Produce json
// @Success 200 {array} dto.BankAgentResponse
// @Security BearerAuth
// @Router /admin/agents [get]
func (h *adminHandler) listAgents(c *gin.Context) {
	agents, err := h.userService.ListBankAgents(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list bank agents")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBankAgentResponse(agents))
}

// listSettings godoc
// @Summary List global settings
// @Tags admin
// @Produce json
// @Success 200 {array} domain.GlobalSetting
// @Security BearerAuth
// @Router /admin/settings [get]
func (h *adminHandler) listSettings(c *gin.Context) {
	settings, err := h.settingsService.GetAllSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// getSetting godoc
// @Summary Get a global setting
// @Tags admin
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} domain.GlobalSetting
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/settings/{key} [get]
func (h *adminHandler) getSetting(c *gin.Context) {
	setting, err := h.settingsService.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve setting")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// updateSetting godoc
// @Summary Update a global setting
// @Description The value must parse as the setting's declared type
// @Tags admin
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param setting body dto.UpdateSettingRequest true "New value"
// @Success 200 {object} domain.GlobalSetting
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/settings/{key} [put]
func (h *adminHandler) updateSetting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	key := c.Param("key")
	setting, err := h.settingsService.UpdateSetting(c.Request.Context(), key, req, adminID)
	if err != nil {
		respondServiceError(c, err, "Failed to update setting")
		return
	}
	logger.Info("Setting updated", slog.String("key", key), slog.String("value", setting.Value))
	c.JSON(http.StatusOK, setting)
}
