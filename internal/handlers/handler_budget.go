package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/core/services"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/fincore/erp-accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles HTTP requests for the budget ledger.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

// newBudgetHandler creates a new budgetHandler.
func newBudgetHandler(budgetService portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{
		budgetService: budgetService,
	}
}

// createBudget godoc
// @Summary Create a budget
// @Description Creates a new budget envelope for a fiscal year
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget details"
// @Success 201 {object} dto.BudgetResponse "Created budget"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Duplicate budget"
// @Router /budgets [post]
// @Security BearerAuth
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create budget", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create budget"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// getBudget godoc
// @Summary Get a budget
// @Description Retrieves a budget with its derived available amount
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse "Budget"
// @Failure 404 {object} map[string]string "Budget not found"
// @Router /budgets/{budgetID} [get]
// @Security BearerAuth
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	budget, err := h.budgetService.GetBudgetByID(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		logger.Error("Failed to get budget", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve budget"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// listBudgets godoc
// @Summary List budgets
// @Description Lists budgets filtered by fiscal year, type and/or owning department or project
// @Tags budgets
// @Produce  json
// @Param   fiscalYear query int false "Fiscal year filter"
// @Param   budgetType query string false "Budget type filter (DEPARTMENT, PROJECT, SPECIAL)"
// @Param   ownerRef query string false "Department or project reference filter"
// @Success 200 {array} dto.BudgetResponse "Budgets"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /budgets [get]
// @Security BearerAuth
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var fiscalYear *int
	if yearStr := c.Query("fiscalYear"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fiscalYear parameter"})
			return
		}
		fiscalYear = &year
	}

	var budgetType *domain.BudgetType
	if typeStr := c.Query("budgetType"); typeStr != "" {
		bt := domain.BudgetType(typeStr)
		switch bt {
		case domain.DepartmentBudget, domain.ProjectBudget, domain.SpecialBudget:
			budgetType = &bt
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid budgetType filter: " + typeStr})
			return
		}
	}

	var ownerRef *string
	if ref := c.Query("ownerRef"); ref != "" {
		ownerRef = &ref
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), fiscalYear, budgetType, ownerRef)
	if err != nil {
		logger.Error("Failed to list budgets", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list budgets"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponses(budgets))
}

// allocate godoc
// @Summary Allocate spend against a budget
// @Description Commits spend, failing when the available amount would go negative
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   allocation body dto.AllocateRequest true "Amount to allocate"
// @Success 200 {object} dto.BudgetResponse "Budget after allocation"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 422 {object} map[string]string "Allocation exceeds available amount"
// @Router /budgets/{budgetID}/allocate [post]
// @Security BearerAuth
func (h *budgetHandler) allocate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for Allocate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.Allocate(c.Request.Context(), budgetID, req.Amount, userID)
	if err != nil {
		var overrun *apperrors.BudgetOverrunError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		case errors.As(err, &overrun):
			logger.Warn("Budget allocation rejected", slog.String("budget_id", budgetID), slog.String("error", overrun.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": overrun.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to allocate against budget", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate against budget"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// rollover godoc
// @Summary Roll budgets over into a new fiscal year
// @Description Copies budgets from a source year into a target year with an optional percentage adjustment
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   rollover body dto.RolloverRequest true "Rollover parameters"
// @Success 200 {object} domain.RolloverResult "Success and failure counts"
// @Failure 400 {object} map[string]string "Invalid rollover parameters"
// @Router /budgets/rollover [post]
// @Security BearerAuth
func (h *budgetHandler) rollover(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for Rollover", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.budgetService.Rollover(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to roll budgets over", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to roll budgets over"})
		return
	}

	logger.Info("Budget rollover completed",
		slog.Int("created", result.Created),
		slog.Int("failed", result.Failed),
	)
	c.JSON(http.StatusOK, result)
}

// requestTransfer godoc
// @Summary Request a budget transfer
// @Description Creates a pending transfer between two budgets; no amounts move until approval
// @Tags budget-transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse "Pending transfer"
// @Failure 400 {object} map[string]string "Invalid transfer request"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 422 {object} map[string]string "Transfer exceeds source budget's available amount"
// @Router /budget-transfers [post]
// @Security BearerAuth
func (h *budgetHandler) requestTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RequestTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	transfer, err := h.budgetService.RequestTransfer(c.Request.Context(), req, userID)
	if err != nil {
		var overrun *apperrors.BudgetOverrunError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		case errors.As(err, &overrun):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": overrun.Error()})
		case errors.Is(err, services.ErrSameBudget),
			errors.Is(err, services.ErrInactiveBudget),
			errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to request budget transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request budget transfer"})
		}
		return
	}

	logger.Info("Budget transfer requested", slog.String("transfer_id", transfer.TransferID), slog.String("transfer_number", transfer.TransferNumber))
	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

// getTransfer godoc
// @Summary Get a budget transfer
// @Tags budget-transfers
// @Produce  json
// @Param   transferID path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse "Transfer"
// @Failure 404 {object} map[string]string "Transfer not found"
// @Router /budget-transfers/{transferID} [get]
// @Security BearerAuth
func (h *budgetHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("transferID")

	transfer, err := h.budgetService.GetTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
			return
		}
		logger.Error("Failed to get transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transfer"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

// listTransfers godoc
// @Summary List budget transfers
// @Description Lists transfers, optionally filtered by status or by a budget on either side
// @Tags budget-transfers
// @Produce  json
// @Param   status query string false "Status filter (PENDING, APPROVED, REJECTED)"
// @Param   budgetID query string false "Budget on either side of the transfer"
// @Success 200 {array} dto.TransferResponse "Transfers"
// @Failure 400 {object} map[string]string "Invalid status filter"
// @Router /budget-transfers [get]
// @Security BearerAuth
func (h *budgetHandler) listTransfers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var status *domain.TransferStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := domain.TransferStatus(statusStr)
		switch s {
		case domain.TransferPending, domain.TransferApproved, domain.TransferRejected:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter: " + statusStr})
			return
		}
	}

	var budgetID *string
	if id := c.Query("budgetID"); id != "" {
		budgetID = &id
	}

	transfers, err := h.budgetService.ListTransfers(c.Request.Context(), status, budgetID)
	if err != nil {
		logger.Error("Failed to list transfers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transfers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponses(transfers))
}

// approveTransfer godoc
// @Summary Approve a pending budget transfer
// @Description Atomically re-validates the source budget and moves the transfer amount
// @Tags budget-transfers
// @Produce  json
// @Param   transferID path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse "Decided transfer"
// @Failure 404 {object} map[string]string "Transfer not found"
// @Failure 409 {object} map[string]string "Transfer already decided"
// @Router /budget-transfers/{transferID}/approve [post]
// @Security BearerAuth
func (h *budgetHandler) approveTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("transferID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	transfer, err := h.budgetService.ApproveTransfer(c.Request.Context(), transferID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		case errors.Is(err, services.ErrTransferNotPending), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to approve transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve transfer"})
		}
		return
	}

	// A shortfall at approval time rejects the transfer instead of failing
	// the request; the decision is in the returned status.
	logger.Info("Budget transfer decided",
		slog.String("transfer_id", transferID),
		slog.String("status", string(transfer.Status)),
	)
	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

// rejectTransfer godoc
// @Summary Reject a pending budget transfer
// @Description Terminally rejects a pending transfer with a mandatory reason
// @Tags budget-transfers
// @Accept  json
// @Produce  json
// @Param   transferID path string true "Transfer ID"
// @Param   rejection body dto.RejectTransferRequest true "Rejection reason"
// @Success 200 {object} dto.TransferResponse "Rejected transfer"
// @Failure 404 {object} map[string]string "Transfer not found"
// @Failure 409 {object} map[string]string "Transfer already decided"
// @Router /budget-transfers/{transferID}/reject [post]
// @Security BearerAuth
func (h *budgetHandler) rejectTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("transferID")

	var req dto.RejectTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RejectTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	transfer, err := h.budgetService.RejectTransfer(c.Request.Context(), transferID, req.RejectionReason, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		case errors.Is(err, services.ErrTransferNotPending), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reject transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject transfer"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

// reviseBudget godoc
// @Summary Revise a budget's total amount
// @Description Changes the total amount, snapshotting the prior state as a revision
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   revision body dto.ReviseBudgetRequest true "New total and reason"
// @Success 200 {object} dto.BudgetResponse "Revised budget"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 422 {object} map[string]string "New total below allocated amount"
// @Router /budgets/{budgetID}/revisions [post]
// @Security BearerAuth
func (h *budgetHandler) reviseBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.ReviseBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ReviseBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.ReviseBudget(c.Request.Context(), budgetID, req.TotalAmount, req.Reason, userID)
	if err != nil {
		var overrun *apperrors.BudgetOverrunError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		case errors.As(err, &overrun):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": overrun.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to revise budget", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revise budget"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// listRevisions godoc
// @Summary List a budget's revision history
// @Description Returns the revision snapshots oldest first
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {array} dto.RevisionResponse "Revisions"
// @Failure 404 {object} map[string]string "Budget not found"
// @Router /budgets/{budgetID}/revisions [get]
// @Security BearerAuth
func (h *budgetHandler) listRevisions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	revisions, err := h.budgetService.ListRevisions(c.Request.Context(), budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
			return
		}
		logger.Error("Failed to list revisions", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list revisions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRevisionResponses(revisions))
}

// restoreRevision godoc
// @Summary Restore a prior budget revision
// @Description Applies a prior version's total amount as a new revision; history is never rewritten
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   version path int true "Revision version to restore"
// @Param   restore body dto.RestoreRevisionRequest true "Restore reason"
// @Success 200 {object} dto.BudgetResponse "Budget after restore"
// @Failure 404 {object} map[string]string "Budget or revision not found"
// @Failure 422 {object} map[string]string "Restored total below allocated amount"
// @Router /budgets/{budgetID}/revisions/{version}/restore [post]
// @Security BearerAuth
func (h *budgetHandler) restoreRevision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid revision version"})
		return
	}

	var req dto.RestoreRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RestoreRevision", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, err := h.budgetService.RestoreRevision(c.Request.Context(), budgetID, version, req.Reason, userID)
	if err != nil {
		var overrun *apperrors.BudgetOverrunError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget or revision not found"})
		case errors.As(err, &overrun):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": overrun.Error()})
		case errors.Is(err, services.ErrRevisionMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to restore revision", slog.String("error", err.Error()), slog.String("budget_id", budgetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore revision"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

// RegisterBudgetRoutes registers budget and transfer routes on the given group.
func RegisterBudgetRoutes(group *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := group.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.POST("/rollover", h.rollover)
		budgets.GET("/:budgetID", h.getBudget)
		budgets.POST("/:budgetID/allocate", h.allocate)
		budgets.POST("/:budgetID/revisions", h.reviseBudget)
		budgets.GET("/:budgetID/revisions", h.listRevisions)
		budgets.POST("/:budgetID/revisions/:version/restore", h.restoreRevision)
	}

	transfers := group.Group("/budget-transfers")
	{
		transfers.POST("", h.requestTransfer)
		transfers.GET("", h.listTransfers)
		transfers.GET("/:transferID", h.getTransfer)
		transfers.POST("/:transferID/approve", h.approveTransfer)
		transfers.POST("/:transferID/reject", h.rejectTransfer)
	}
}
