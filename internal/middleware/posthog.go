package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
)

// Routes that are polled too often to be worth tracking.
var untrackedRoutes = map[string]bool{
	"/health":                           true,
	"/api/v1/notifications/count":       true,
	"/api/v1/client/crypto/rates":       true,
	"/api/v1/agent/deposits/statistics": true,
}

// AnalyticsEventName turns a route template into an event name,
// e.g. PUT /api/v1/agent/transactions/:id/verify -> "agent_transactions_id_verify_put".
func AnalyticsEventName(method, route string) string {
	route = strings.TrimPrefix(route, "/api/v1")
	var parts []string
	for _, seg := range strings.Split(route, "/") {
		seg = strings.TrimPrefix(seg, ":")
		if seg == "" {
			continue
		}
		parts = append(parts, strings.ReplaceAll(seg, "-", "_"))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "_") + "_" + strings.ToLower(method)
}

// PosthogMiddleware records one analytics event per successful authenticated request.
// Only the route template is sent; path values such as account or transaction IDs are not.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !posthogClient.IsInitialized() {
			return
		}
		route := c.FullPath()
		if route == "" || untrackedRoutes[route] {
			return
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}
		role, _ := GetUserRoleFromContext(c)

		event := AnalyticsEventName(c.Request.Method, route)
		if event == "" {
			return
		}
		posthogClient.Capture(userID, string(role), event, map[string]any{
			"route":       route,
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		})
	}
}
