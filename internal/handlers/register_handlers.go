package handlers

import (
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/cmd/docs"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
	"github.com/SscSPs/ebank_backoffice/internal/middleware"
	"github.com/SscSPs/ebank_backoffice/internal/platform/config"
	"github.com/SscSPs/ebank_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteOptions carries the optional edge components. Nil members are skipped.
type RouteOptions struct {
	LoginRateLimit gin.HandlerFunc
	APIRateLimit   gin.HandlerFunc
	Posthog        *utils.PosthogClientWrapper
	DB             Pinger
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	registerValidators()

	r.GET("/health", getHealth(opts.DB))

	public := r.Group("/api/v1")
	registerAuthRoutes(public, services, opts.LoginRateLimit)

	setupAPIV1Routes(r, cfg, services, opts)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the authenticated /api/v1 groups, one per role.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret)}
	if opts.APIRateLimit != nil {
		chain = append(chain, opts.APIRateLimit)
	}
	if opts.Posthog != nil {
		chain = append(chain, middleware.PosthogMiddleware(opts.Posthog))
	}
	v1 := r.Group("/api/v1", chain...)

	registerMeRoute(v1, services)
	registerNotificationRoutes(v1, services.Notification)

	client := v1.Group("/client", middleware.RequireRole(domain.RoleClient))
	registerAccountRoutes(client, services.Account, services.ClientManagement)
	registerClientTransactionRoutes(client, services.Transaction)
	registerCryptoRoutes(client, services.Crypto)

	agent := v1.Group("/agent", middleware.RequireRole(domain.RoleAgent))
	registerClientRoutes(agent, services.ClientManagement)
	registerAgentTransactionRoutes(agent, services.Transaction)

	admin := v1.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	registerAdminRoutes(admin, services.User, services.Settings)
}

func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	if err := dto.RegisterValidators(v); err != nil {
		slog.Error("Failed to register request validators", slog.String("error", err.Error()))
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
