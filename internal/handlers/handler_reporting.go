package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for derived financial statements.
// Report payloads serialize straight from the domain types; there is no DTO
// layer to drift out of sync with the derivation logic.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(reportingService portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: reportingService,
	}
}

// trialBalance godoc
// @Summary Derive the trial balance
// @Description Computes the point-in-time trial balance from posted journal state
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.TrialBalanceReport "Trial balance"
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /reports/trial-balance [get]
// @Security BearerAuth
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to derive trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive trial balance"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// balanceSheet godoc
// @Summary Derive the balance sheet
// @Description Computes the balance sheet and its financial ratios as of a date
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.BalanceSheetData "Balance sheet"
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /reports/balance-sheet [get]
// @Security BearerAuth
func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to derive balance sheet", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive balance sheet"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// profitAndLoss godoc
// @Summary Derive the profit and loss statement
// @Description Computes the P&L ladder over a date range
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} domain.ProfitLossData "P&L statement"
// @Failure 400 {object} map[string]string "Invalid or inverted date range"
// @Router /reports/profit-loss [get]
// @Security BearerAuth
func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to derive profit and loss", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive profit and loss"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// cashFlow godoc
// @Summary Derive the cash flow statement
// @Description Buckets cash movements into operating, investing and financing activities
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} domain.CashFlowData "Cash flow statement"
// @Failure 400 {object} map[string]string "Invalid or inverted date range"
// @Router /reports/cash-flow [get]
// @Security BearerAuth
func (h *reportingHandler) cashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, to, ok := parseRangeQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.CashFlow(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to derive cash flow", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive cash flow"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// agingReceivables godoc
// @Summary Derive the accounts receivable aging report
// @Description Buckets open invoices by days past due
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.AgingReport "AR aging"
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /reports/aging/receivables [get]
// @Security BearerAuth
func (h *reportingHandler) agingReceivables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.AgingReceivables(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to derive receivables aging", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive receivables aging"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// agingPayables godoc
// @Summary Derive the accounts payable aging report
// @Description Buckets open bills by days past due
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.AgingReport "AP aging"
// @Failure 400 {object} map[string]string "Invalid date"
// @Router /reports/aging/payables [get]
// @Security BearerAuth
func (h *reportingHandler) agingPayables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.AgingPayables(c.Request.Context(), asOf)
	if err != nil {
		logger.Error("Failed to derive payables aging", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive payables aging"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseAsOfQuery parses the optional asOf date parameter, defaulting to today.
func parseAsOfQuery(c *gin.Context) (time.Time, bool) {
	asOf, ok := parseDateQuery(c, "asOf")
	if !ok {
		return time.Time{}, false
	}
	if asOf == nil {
		return time.Now().UTC(), true
	}
	return *asOf, true
}

// parseRangeQuery parses the mandatory from/to date range parameters.
func parseRangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if from == nil || to == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to dates are required"})
		return time.Time{}, time.Time{}, false
	}
	return *from, *to, true
}

// RegisterReportingRoutes registers report derivation routes on the given group.
func RegisterReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := group.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/profit-loss", h.profitAndLoss)
		reports.GET("/cash-flow", h.cashFlow)
		reports.GET("/aging/receivables", h.agingReceivables)
		reports.GET("/aging/payables", h.agingPayables)
	}
}
