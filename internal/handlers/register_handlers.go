package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/retailops/ledger_service/cmd/docs"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/middleware"
	"github.com/retailops/ledger_service/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerHomeRoutes(r)

	setupAPIV1Routes(r, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations.
// Every resource is nested under the tenant: authentication and tenant
// authorization happen upstream, the engine only requires the tenant to be
// explicit in the path.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	tenant := v1.Group("/tenants/:tenantID", middleware.TenantContextMiddleware())
	registerAccountRoutes(tenant, services.Account)
	registerPeriodRoutes(tenant, services.Period)
	registerJournalRoutes(tenant, services.Journal)
	registerLedgerRoutes(tenant, services.Ledger)
	registerTrialBalanceRoutes(tenant, services.TrialBalance)
	registerRecurringRoutes(tenant, services.Recurring)

	// The scheduler tick is tenant-independent: it sweeps due templates
	// across all tenants.
	registerSchedulerRoutes(v1, services.Recurring)
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
