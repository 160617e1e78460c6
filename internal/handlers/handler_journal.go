package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// journalHandler handles HTTP requests related to journals.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: journalService}
}

// registerJournalRoutes registers journal lifecycle routes on the tenant
// group.
func registerJournalRoutes(group *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := group.Group("/journals")
	{
		journals.POST("", h.createDraft)
		journals.GET("", h.listJournals)
		journals.GET("/:journalID", h.getJournal)
		journals.DELETE("/:journalID", h.deleteDraft)
		journals.POST("/:journalID/post", h.postJournal)
		journals.POST("/:journalID/reverse", h.reverseJournal)
	}
}

// createDraft godoc
// @Summary Create a draft journal
// @Description Validates a balanced set of entries and persists a draft journal
// @Tags journals
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param journal body dto.CreateJournalRequest true "Journal"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Unbalanced or invalid entries"
// @Failure 422 {object} map[string]string "Account not postable or period closed"
// @Router /tenants/{tenantID}/journals [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	journal, err := h.journalService.CreateDraft(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create draft journal", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create journal")})
		return
	}

	logger.Info("Draft journal created", slog.String("journal_id", journal.JournalID), slog.String("journal_number", journal.JournalNumber))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// postJournal godoc
// @Summary Post a draft journal
// @Description Irreversibly applies a draft journal to the general ledger
// @Tags journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not a draft"
// @Failure 422 {object} map[string]string "Period closed"
// @Router /tenants/{tenantID}/journals/{journalID}/post [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	journalID := c.Param("journalID")

	journal, err := h.journalService.Post(c.Request.Context(), tenantID, journalID, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to post journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to post journal")})
		return
	}

	logger.Info("Journal posted", slog.String("journal_id", journalID))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// reverseJournal godoc
// @Summary Reverse a posted journal
// @Description Creates and posts a mirrored journal offsetting the original
// @Tags journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param journalID path string true "Journal ID"
// @Success 201 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal not posted or already reversed"
// @Router /tenants/{tenantID}/journals/{journalID}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	journalID := c.Param("journalID")

	reversal, err := h.journalService.Reverse(c.Request.Context(), tenantID, journalID, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to reverse journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to reverse journal")})
		return
	}

	logger.Info("Journal reversed",
		slog.String("journal_id", journalID),
		slog.String("reversal_journal_id", reversal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}

// deleteDraft godoc
// @Summary Delete a draft journal
// @Tags journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param journalID path string true "Journal ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is not a draft"
// @Router /tenants/{tenantID}/journals/{journalID} [delete]
func (h *journalHandler) deleteDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	journalID := c.Param("journalID")

	if err := h.journalService.DeleteDraft(c.Request.Context(), tenantID, journalID, middleware.GetActorIDFromContext(c)); err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to delete draft journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to delete journal")})
		return
	}

	logger.Info("Draft journal deleted", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

// getJournal godoc
// @Summary Get a journal with its entries
// @Tags journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /tenants/{tenantID}/journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	journalID := c.Param("journalID")

	journal, err := h.journalService.GetJournalByID(c.Request.Context(), tenantID, journalID)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to get journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to retrieve journal")})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journals
// @Tags journals
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Param status query string false "Filter by status"
// @Param periodID query string false "Filter by period"
// @Param includeReversals query bool false "Include reversal journals"
// @Param includeEntries query bool false "Load entries for each journal"
// @Success 200 {object} dto.ListJournalsResponse
// @Router /tenants/{tenantID}/journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), tenantID, params)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list journals", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list journals")})
		return
	}

	c.JSON(http.StatusOK, resp)
}
