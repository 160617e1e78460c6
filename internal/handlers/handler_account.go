package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// accountHandler handles HTTP requests for the account registry.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService}
}

// registerAccountRoutes registers account registry routes on the tenant group.
func registerAccountRoutes(group *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accountTypes := group.Group("/account-types")
	{
		accountTypes.POST("", h.createAccountType)
		accountTypes.GET("", h.listAccountTypes)
	}

	accounts := group.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.DELETE("/:accountID", h.deactivateAccount)
	}
}

// createAccountType godoc
// @Summary Create an account type
// @Description Creates a tenant-scoped account type under one of the five categories
// @Tags accounts
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountType body dto.CreateAccountTypeRequest true "Account type"
// @Success 201 {object} dto.AccountTypeResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Duplicate code"
// @Router /tenants/{tenantID}/account-types [post]
func (h *accountHandler) createAccountType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.CreateAccountTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccountType", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	accountType, err := h.accountService.CreateAccountType(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create account type", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create account type")})
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountTypeResponse(accountType))
}

// listAccountTypes godoc
// @Summary List account types
// @Tags accounts
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} dto.AccountTypeResponse
// @Router /tenants/{tenantID}/account-types [get]
func (h *accountHandler) listAccountTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	types, err := h.accountService.ListAccountTypes(c.Request.Context(), tenantID)
	if err != nil {
		logger.Error("Failed to list account types", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": clientErrorMessage(err, "Failed to list account types")})
		return
	}

	responses := make([]dto.AccountTypeResponse, len(types))
	for i := range types {
		responses[i] = dto.ToAccountTypeResponse(&types[i])
	}
	c.JSON(http.StatusOK, responses)
}

// createAccount godoc
// @Summary Create an account
// @Description Creates an account in the tenant's chart of accounts
// @Tags accounts
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param account body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Duplicate code"
// @Router /tenants/{tenantID}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create account", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create account")})
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenantID}/accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to get account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to retrieve account")})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListAccountsResponse
// @Router /tenants/{tenantID}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.accountService.ListAccounts(c.Request.Context(), tenantID, params)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list accounts")})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Soft-deletes an account; accounts with postings are never removed
// @Tags accounts
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param accountID path string true "Account ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has active children"
// @Router /tenants/{tenantID}/accounts/{accountID} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	accountID := c.Param("accountID")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), tenantID, accountID, middleware.GetActorIDFromContext(c)); err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to deactivate account")})
		return
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}
