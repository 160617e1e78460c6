package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// recurringHandler handles HTTP requests for recurring journal templates.
type recurringHandler struct {
	recurringService portssvc.RecurringSvcFacade
}

func newRecurringHandler(recurringService portssvc.RecurringSvcFacade) *recurringHandler {
	return &recurringHandler{recurringService: recurringService}
}

// registerRecurringRoutes registers template CRUD routes on the tenant group.
func registerRecurringRoutes(group *gin.RouterGroup, recurringService portssvc.RecurringSvcFacade) {
	h := newRecurringHandler(recurringService)

	recurring := group.Group("/recurring-journals")
	{
		recurring.POST("", h.createRecurringJournal)
		recurring.GET("", h.listRecurringJournals)
		recurring.GET("/:recurringJournalID", h.getRecurringJournal)
		recurring.DELETE("/:recurringJournalID", h.deactivateRecurringJournal)
	}
}

// registerSchedulerRoutes registers the cross-tenant scheduler tick. The
// same code path the background ticker runs, exposed for ops tooling.
func registerSchedulerRoutes(group *gin.RouterGroup, recurringService portssvc.RecurringSvcFacade) {
	h := newRecurringHandler(recurringService)
	group.POST("/scheduler/tick", h.tick)
}

// createRecurringJournal godoc
// @Summary Create a recurring journal template
// @Description Creates a balanced template that the scheduler materializes on its cadence
// @Tags recurring-journals
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param template body dto.CreateRecurringJournalRequest true "Template"
// @Success 201 {object} dto.RecurringJournalResponse
// @Failure 400 {object} map[string]string "Unbalanced or invalid template"
// @Router /tenants/{tenantID}/recurring-journals [post]
func (h *recurringHandler) createRecurringJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.CreateRecurringJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRecurringJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	recurring, err := h.recurringService.CreateRecurringJournal(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create recurring journal", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create recurring journal")})
		return
	}

	c.JSON(http.StatusCreated, dto.ToRecurringJournalResponse(recurring))
}

// getRecurringJournal godoc
// @Summary Get a recurring journal template
// @Tags recurring-journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param recurringJournalID path string true "Template ID"
// @Success 200 {object} dto.RecurringJournalResponse
// @Failure 404 {object} map[string]string "Template not found"
// @Router /tenants/{tenantID}/recurring-journals/{recurringJournalID} [get]
func (h *recurringHandler) getRecurringJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	recurringJournalID := c.Param("recurringJournalID")

	recurring, err := h.recurringService.GetRecurringJournalByID(c.Request.Context(), tenantID, recurringJournalID)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to get recurring journal", slog.String("error", err.Error()), slog.String("recurring_journal_id", recurringJournalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to retrieve recurring journal")})
		return
	}

	c.JSON(http.StatusOK, dto.ToRecurringJournalResponse(recurring))
}

// listRecurringJournals godoc
// @Summary List recurring journal templates
// @Tags recurring-journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListRecurringJournalsResponse
// @Router /tenants/{tenantID}/recurring-journals [get]
func (h *recurringHandler) listRecurringJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var params dto.ListRecurringJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.recurringService.ListRecurringJournals(c.Request.Context(), tenantID, params)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list recurring journals", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list recurring journals")})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deactivateRecurringJournal godoc
// @Summary Deactivate a recurring journal template
// @Tags recurring-journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param recurringJournalID path string true "Template ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Template not found"
// @Router /tenants/{tenantID}/recurring-journals/{recurringJournalID} [delete]
func (h *recurringHandler) deactivateRecurringJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	recurringJournalID := c.Param("recurringJournalID")

	if err := h.recurringService.DeactivateRecurringJournal(c.Request.Context(), tenantID, recurringJournalID, middleware.GetActorIDFromContext(c)); err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to deactivate recurring journal", slog.String("error", err.Error()), slog.String("recurring_journal_id", recurringJournalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to deactivate recurring journal")})
		return
	}

	logger.Info("Recurring journal deactivated", slog.String("recurring_journal_id", recurringJournalID))
	c.Status(http.StatusNoContent)
}

// tick godoc
// @Summary Run one scheduler pass
// @Description Materializes every due recurring journal across tenants; idempotent per due date
// @Tags recurring-journals
// @Produce json
// @Success 200 {object} dto.TickResponse
// @Router /scheduler/tick [post]
func (h *recurringHandler) tick(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	resp, err := h.recurringService.Tick(c.Request.Context(), time.Now().UTC())
	if err != nil {
		logger.Error("Scheduler tick failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scheduler tick failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
