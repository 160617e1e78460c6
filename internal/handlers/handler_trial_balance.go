package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// trialBalanceHandler handles HTTP requests for trial balance snapshots.
type trialBalanceHandler struct {
	trialBalanceService portssvc.TrialBalanceSvcFacade
}

func newTrialBalanceHandler(trialBalanceService portssvc.TrialBalanceSvcFacade) *trialBalanceHandler {
	return &trialBalanceHandler{trialBalanceService: trialBalanceService}
}

// registerTrialBalanceRoutes registers trial balance routes on the tenant
// group.
func registerTrialBalanceRoutes(group *gin.RouterGroup, trialBalanceService portssvc.TrialBalanceSvcFacade) {
	h := newTrialBalanceHandler(trialBalanceService)

	trialBalances := group.Group("/trial-balances")
	{
		trialBalances.POST("", h.generate)
		trialBalances.GET("", h.listTrialBalances)
		trialBalances.GET("/:trialBalanceID", h.getTrialBalance)
		trialBalances.POST("/:trialBalanceID/finalize", h.finalize)
	}
}

// generate godoc
// @Summary Generate a draft trial balance
// @Description Aggregates ledger totals per account for a period into a draft snapshot
// @Tags trial-balances
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param trialBalance body dto.GenerateTrialBalanceRequest true "Generation parameters"
// @Success 201 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Ledger integrity violation"
// @Router /tenants/{tenantID}/trial-balances [post]
func (h *trialBalanceHandler) generate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.GenerateTrialBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for generate trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	trialBalance, err := h.trialBalanceService.Generate(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to generate trial balance", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to generate trial balance")})
		return
	}

	logger.Info("Trial balance generated", slog.String("trial_balance_id", trialBalance.TrialBalanceID))
	c.JSON(http.StatusCreated, dto.ToTrialBalanceResponse(trialBalance))
}

// finalize godoc
// @Summary Finalize a trial balance
// @Description One-way transition from draft to final, stamped with the actor
// @Tags trial-balances
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param trialBalanceID path string true "Trial balance ID"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 404 {object} map[string]string "Trial balance not found"
// @Failure 409 {object} map[string]string "Already final"
// @Router /tenants/{tenantID}/trial-balances/{trialBalanceID}/finalize [post]
func (h *trialBalanceHandler) finalize(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	trialBalanceID := c.Param("trialBalanceID")

	trialBalance, err := h.trialBalanceService.Finalize(c.Request.Context(), tenantID, trialBalanceID, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to finalize trial balance", slog.String("error", err.Error()), slog.String("trial_balance_id", trialBalanceID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to finalize trial balance")})
		return
	}

	logger.Info("Trial balance finalized", slog.String("trial_balance_id", trialBalanceID))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(trialBalance))
}

// getTrialBalance godoc
// @Summary Get a trial balance with its entries
// @Tags trial-balances
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param trialBalanceID path string true "Trial balance ID"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 404 {object} map[string]string "Trial balance not found"
// @Router /tenants/{tenantID}/trial-balances/{trialBalanceID} [get]
func (h *trialBalanceHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	trialBalanceID := c.Param("trialBalanceID")

	trialBalance, err := h.trialBalanceService.GetTrialBalanceByID(c.Request.Context(), tenantID, trialBalanceID)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to get trial balance", slog.String("error", err.Error()), slog.String("trial_balance_id", trialBalanceID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to retrieve trial balance")})
		return
	}

	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(trialBalance))
}

// listTrialBalances godoc
// @Summary List trial balances
// @Tags trial-balances
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTrialBalancesResponse
// @Router /tenants/{tenantID}/trial-balances [get]
func (h *trialBalanceHandler) listTrialBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var params dto.ListTrialBalancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.trialBalanceService.ListTrialBalances(c.Request.Context(), tenantID, params)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list trial balances", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list trial balances")})
		return
	}

	c.JSON(http.StatusOK, resp)
}
