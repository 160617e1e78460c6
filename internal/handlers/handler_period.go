package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/dto"
	"github.com/retailops/ledger_service/internal/middleware"
)

// periodHandler handles HTTP requests for fiscal years and accounting
// periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(periodService portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: periodService}
}

// registerPeriodRoutes registers fiscal year and period routes on the tenant
// group.
func registerPeriodRoutes(group *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	fiscalYears := group.Group("/fiscal-years")
	{
		fiscalYears.POST("", h.createFiscalYear)
		fiscalYears.GET("", h.listFiscalYears)
		fiscalYears.POST("/:fiscalYearID/close", h.closeFiscalYear)
		fiscalYears.POST("/:fiscalYearID/periods", h.createPeriod)
		fiscalYears.GET("/:fiscalYearID/periods", h.listPeriods)
	}

	periods := group.Group("/periods")
	{
		periods.POST("/:periodID/close", h.closePeriod)
	}
}

// createFiscalYear godoc
// @Summary Create a fiscal year
// @Tags periods
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param fiscalYear body dto.CreateFiscalYearRequest true "Fiscal year"
// @Success 201 {object} dto.FiscalYearResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /tenants/{tenantID}/fiscal-years [post]
func (h *periodHandler) createFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createFiscalYear", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	fiscalYear, err := h.periodService.CreateFiscalYear(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create fiscal year", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create fiscal year")})
		return
	}

	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(fiscalYear))
}

// listFiscalYears godoc
// @Summary List fiscal years
// @Tags periods
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} dto.FiscalYearResponse
// @Router /tenants/{tenantID}/fiscal-years [get]
func (h *periodHandler) listFiscalYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	years, err := h.periodService.ListFiscalYears(c.Request.Context(), tenantID)
	if err != nil {
		logger.Error("Failed to list fiscal years", slog.String("error", err.Error()))
		c.JSON(statusFromError(err), gin.H{"error": clientErrorMessage(err, "Failed to list fiscal years")})
		return
	}

	responses := make([]dto.FiscalYearResponse, len(years))
	for i := range years {
		responses[i] = dto.ToFiscalYearResponse(&years[i])
	}
	c.JSON(http.StatusOK, responses)
}

// createPeriod godoc
// @Summary Create an accounting period
// @Description Creates a non-overlapping period inside a fiscal year
// @Tags periods
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param fiscalYearID path string true "Fiscal year ID"
// @Param period body dto.CreatePeriodRequest true "Period"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Overlapping period"
// @Router /tenants/{tenantID}/fiscal-years/{fiscalYearID}/periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	fiscalYearID := c.Param("fiscalYearID")

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.FiscalYearID = fiscalYearID

	period, err := h.periodService.CreatePeriod(c.Request.Context(), tenantID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to create period", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to create period")})
		return
	}

	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List periods of a fiscal year
// @Tags periods
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param fiscalYearID path string true "Fiscal year ID"
// @Success 200 {array} dto.PeriodResponse
// @Router /tenants/{tenantID}/fiscal-years/{fiscalYearID}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	fiscalYearID := c.Param("fiscalYearID")

	periods, err := h.periodService.ListPeriods(c.Request.Context(), tenantID, fiscalYearID)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to list periods", slog.String("error", err.Error()))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to list periods")})
		return
	}

	responses := make([]dto.PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = dto.ToPeriodResponse(&periods[i])
	}
	c.JSON(http.StatusOK, responses)
}

// closePeriod godoc
// @Summary Close an accounting period
// @Description Irreversibly closes a period; postings into it are rejected afterwards
// @Tags periods
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param periodID path string true "Period ID"
// @Success 204 "Closed"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Already closed"
// @Router /tenants/{tenantID}/periods/{periodID}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	periodID := c.Param("periodID")

	if err := h.periodService.ClosePeriod(c.Request.Context(), tenantID, periodID, middleware.GetActorIDFromContext(c)); err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to close period", slog.String("error", err.Error()), slog.String("period_id", periodID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to close period")})
		return
	}

	logger.Info("Period closed", slog.String("period_id", periodID))
	c.Status(http.StatusNoContent)
}

// closeFiscalYear godoc
// @Summary Close a fiscal year
// @Description Irreversibly closes a fiscal year once every child period is closed
// @Tags periods
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param fiscalYearID path string true "Fiscal year ID"
// @Success 204 "Closed"
// @Failure 404 {object} map[string]string "Fiscal year not found"
// @Failure 409 {object} map[string]string "Open periods remain"
// @Router /tenants/{tenantID}/fiscal-years/{fiscalYearID}/close [post]
func (h *periodHandler) closeFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	fiscalYearID := c.Param("fiscalYearID")

	if err := h.periodService.CloseFiscalYear(c.Request.Context(), tenantID, fiscalYearID, middleware.GetActorIDFromContext(c)); err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Failed to close fiscal year", slog.String("error", err.Error()), slog.String("fiscal_year_id", fiscalYearID))
		}
		c.JSON(status, gin.H{"error": clientErrorMessage(err, "Failed to close fiscal year")})
		return
	}

	logger.Info("Fiscal year closed", slog.String("fiscal_year_id", fiscalYearID))
	c.Status(http.StatusNoContent)
}
