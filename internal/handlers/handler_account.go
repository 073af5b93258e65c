package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/core/services"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/fincore/erp-accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(accountService portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: accountService,
	}
}

// createGroup godoc
// @Summary Create an account group
// @Description Creates a top-level group in the chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.AccountResponse "Created group"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Router /accounts/groups [post]
// @Security BearerAuth
func (h *accountHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateGroup(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate account code", slog.String("code", req.Code))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to create group", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account group"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// createSubGroup godoc
// @Summary Create an account sub-group
// @Description Creates a sub-group under an existing group
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   subgroup body dto.CreateSubGroupRequest true "Sub-group details"
// @Success 201 {object} dto.AccountResponse "Created sub-group"
// @Failure 400 {object} map[string]string "Invalid request or parent is not a group"
// @Failure 404 {object} map[string]string "Parent group not found"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Router /accounts/subgroups [post]
// @Security BearerAuth
func (h *accountHandler) createSubGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSubGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateSubGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateSubGroup(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent group not found"})
		case errors.Is(err, services.ErrNotAGroup):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create sub-group", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account sub-group"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// createLedger godoc
// @Summary Create a ledger account
// @Description Creates a postable leaf account under a sub-group
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   ledger body dto.CreateLedgerRequest true "Ledger details"
// @Success 201 {object} dto.AccountResponse "Created ledger account"
// @Failure 400 {object} map[string]string "Invalid request or parent is not a sub-group"
// @Failure 404 {object} map[string]string "Parent sub-group not found"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Router /accounts/ledgers [post]
// @Security BearerAuth
func (h *accountHandler) createLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateLedger(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent sub-group not found"})
		case errors.Is(err, services.ErrNotASubGroup), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create ledger account", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ledger account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getHierarchy godoc
// @Summary Get the chart-of-accounts hierarchy
// @Description Returns the nested Group -> Sub-Group -> Ledger tree with rollup balances
// @Tags accounts
// @Produce  json
// @Success 200 {array} dto.HierarchyNodeResponse "Account tree"
// @Failure 500 {object} map[string]string "Failed to build hierarchy"
// @Router /accounts/hierarchy [get]
// @Security BearerAuth
func (h *accountHandler) getHierarchy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	nodes, err := h.accountService.GetHierarchy(c.Request.Context())
	if err != nil {
		logger.Error("Failed to get account hierarchy", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account hierarchy"})
		return
	}

	c.JSON(http.StatusOK, dto.ToHierarchyResponse(nodes))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists accounts, optionally filtered by level (GROUP, SUBGROUP, LEDGER)
// @Tags accounts
// @Produce  json
// @Param   level query string false "Account level filter"
// @Success 200 {array} dto.AccountResponse "Accounts"
// @Failure 400 {object} map[string]string "Invalid level filter"
// @Router /accounts [get]
// @Security BearerAuth
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var level *domain.AccountLevel
	if levelStr := c.Query("level"); levelStr != "" {
		l := domain.AccountLevel(levelStr)
		switch l {
		case domain.LevelGroup, domain.LevelSubGroup, domain.LevelLedger:
			level = &l
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid level filter: " + levelStr})
			return
		}
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), level)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// getAccount godoc
// @Summary Get an account
// @Description Retrieves a single account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse "Account"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [get]
// @Security BearerAuth
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to get account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateLedger godoc
// @Summary Update a ledger account
// @Description Updates a ledger account's name, sub-type or active flag
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   update body dto.UpdateLedgerRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse "Updated account"
// @Failure 400 {object} map[string]string "Invalid request or not a ledger account"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID} [put]
// @Security BearerAuth
func (h *accountHandler) updateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.UpdateLedger(c.Request.Context(), accountID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotALedger):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to update ledger account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteLedger godoc
// @Summary Delete a ledger account
// @Description Deletes a ledger account that no posted journal lines reference
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account referenced by posted lines"
// @Router /accounts/{accountID} [delete]
// @Security BearerAuth
func (h *accountHandler) deleteLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.accountService.DeleteLedger(c.Request.Context(), accountID, userID)
	if err != nil {
		var refErr *apperrors.ReferentialIntegrityError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNotALedger):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &refErr):
			logger.Warn("Attempt to delete referenced account", slog.String("account_id", accountID))
			c.JSON(http.StatusConflict, gin.H{"error": refErr.Error()})
		default:
			logger.Error("Failed to delete ledger account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Soft-deactivates an account so it no longer accepts postings
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/deactivate [post]
// @Security BearerAuth
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), accountID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate account"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterAccountRoutes registers chart-of-accounts routes on the given group.
func RegisterAccountRoutes(group *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := group.Group("/accounts")
	{
		accounts.POST("/groups", h.createGroup)
		accounts.POST("/subgroups", h.createSubGroup)
		accounts.POST("/ledgers", h.createLedger)
		accounts.GET("/hierarchy", h.getHierarchy)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/:accountID", h.updateLedger)
		accounts.DELETE("/:accountID", h.deleteLedger)
		accounts.POST("/:accountID/deactivate", h.deactivateAccount)
	}
}
