package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// ledgerHandler handles HTTP reads over the general ledger and the balance
// cache.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers ledger read routes on the tenant group.
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	accounts := group.Group("/accounts/:accountID")
	{
		accounts.GET("/ledger", h.listLedgerRows)
		accounts.GET("/balances/:fiscalYearID/:periodID", h.getAccountBalance)
		accounts.POST("/balances/:fiscalYearID/:periodID/verify", h.verifyBalance)
	}
}

// listLedgerRows godoc
// @Summary List an account's general ledger rows
// @Tags ledger
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListLedgerRowsResponse
// @Router /tenants/{tenantID}/accounts/{accountID}/ledger [get]
func (h *ledgerHandler) listLedgerRows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	accountID := c.Param("accountID")

	var params dto.ListLedgerRowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.ledgerService.ListLedgerRows(c.Request.Context(), tenantID, accountID, params)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list ledger rows", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list ledger rows")})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getAccountBalance godoc
// @Summary Get the cached period balance of an account
// @Tags ledger
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param periodID path string true "Period ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} map[string]string "No balance row for the period"
// @Router /tenants/{tenantID}/accounts/{accountID}/balances/{fiscalYearID}/{periodID} [get]
func (h *ledgerHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	accountID := c.Param("accountID")

	balance, err := h.ledgerService.GetAccountBalance(c.Request.Context(), tenantID, accountID, c.Param("fiscalYearID"), c.Param("periodID"))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to get account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to retrieve account balance")})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance))
}

// verifyBalance godoc
// @Summary Recompute an account's period balance from the ledger
// @Description Rebuilds the balance from ledger rows and compares it to the cache
// @Tags ledger
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param periodID path string true "Period ID"
// @Success 200 {object} dto.BalanceCheckResponse
// @Failure 404 {object} map[string]string "No balance row for the period"
// @Router /tenants/{tenantID}/accounts/{accountID}/balances/{fiscalYearID}/{periodID}/verify [post]
func (h *ledgerHandler) verifyBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	accountID := c.Param("accountID")

	check, err := h.ledgerService.RecomputeFromLedger(c.Request.Context(), tenantID, accountID, c.Param("fiscalYearID"), c.Param("periodID"))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to verify account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to verify account balance")})
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceCheckResponse(check))
}
