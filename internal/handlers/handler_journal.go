package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/core/services"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/fincore/erp-accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 50

// journalHandler handles HTTP requests for the journal engine.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// createDraft godoc
// @Summary Create a draft journal entry
// @Description Creates a new balanced draft entry; no account balances move until posting
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal entry with lines"
// @Success 201 {object} dto.JournalResponse "Created draft"
// @Failure 400 {object} map[string]string "Invalid or unbalanced entry"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /journals [post]
// @Security BearerAuth
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), req, creatorUserID)
	if err != nil {
		h.respondJournalWriteError(c, logger, err, "Failed to create draft entry")
		return
	}

	logger.Info("Draft journal entry created", slog.String("journal_id", entry.JournalID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse "Journal entry"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Router /journals/{journalID} [get]
// @Security BearerAuth
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	entry, err := h.journalService.GetEntry(c.Request.Context(), journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
			return
		}
		logger.Error("Failed to get journal entry", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal entry"})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists entries newest first, filtered by status and date range, with token pagination
// @Tags journals
// @Produce  json
// @Param   status query string false "Status filter (DRAFT, POSTED, REVERSED)"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListJournalsResponse "Page of entries"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /journals [get]
// @Security BearerAuth
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListJournalsParams{Limit: defaultPageLimit}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.JournalStatus(statusStr)
		switch status {
		case domain.Draft, domain.Posted, domain.Reversed:
			params.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter: " + statusStr})
			return
		}
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	params.From = from
	params.To = to

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		params.Limit = limit
	}
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	entries, nextToken, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journal entries"})
		return
	}

	c.JSON(http.StatusOK, dto.ListJournalsResponse{
		Journals:  dto.ToJournalResponses(entries),
		NextToken: nextToken,
	})
}

// updateDraft godoc
// @Summary Update a draft journal entry
// @Description Updates a draft's header or lines; posted entries are immutable
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Param   update body dto.UpdateJournalRequest true "Fields to update"
// @Success 200 {object} dto.JournalResponse "Updated draft"
// @Failure 400 {object} map[string]string "Invalid or unbalanced entry"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is posted and immutable"
// @Router /journals/{journalID} [put]
// @Security BearerAuth
func (h *journalHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for UpdateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), journalID, req, userID)
	if err != nil {
		h.respondJournalWriteError(c, logger, err, "Failed to update draft entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// deleteDraft godoc
// @Summary Delete a draft journal entry
// @Description Deletes a draft; posted entries are immutable
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is posted and immutable"
// @Router /journals/{journalID} [delete]
// @Security BearerAuth
func (h *journalHandler) deleteDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.journalService.DeleteDraft(c.Request.Context(), journalID, userID); err != nil {
		h.respondJournalWriteError(c, logger, err, "Failed to delete draft entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Transitions a draft to POSTED and atomically applies its balance deltas
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse "Posted entry"
// @Failure 400 {object} map[string]string "Entry fails posting validation"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry already posted"
// @Router /journals/{journalID}/post [post]
// @Security BearerAuth
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.journalService.Post(c.Request.Context(), journalID, userID)
	if err != nil {
		var alreadyPosted *apperrors.AlreadyPostedError
		var unbalanced *apperrors.UnbalancedEntryError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		case errors.As(err, &alreadyPosted):
			c.JSON(http.StatusConflict, gin.H{"error": alreadyPosted.Error()})
		case errors.As(err, &unbalanced),
			errors.Is(err, services.ErrInactiveAccount),
			errors.Is(err, services.ErrNonPostableAccount),
			errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to post journal entry", slog.String("error", err.Error()), slog.String("journal_id", journalID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post journal entry"})
		}
		return
	}

	logger.Info("Journal entry posted", slog.String("journal_id", journalID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted journal entry
// @Description Creates and posts a compensating entry with debits and credits swapped
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 201 {object} dto.JournalResponse "Reversal entry"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry not posted or already reversed"
// @Router /journals/{journalID}/reverse [post]
// @Security BearerAuth
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("journalID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.journalService.Reverse(c.Request.Context(), journalID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		case errors.Is(err, services.ErrNotPosted), errors.Is(err, services.ErrAlreadyReversed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reverse journal entry", slog.String("error", err.Error()), slog.String("journal_id", journalID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse journal entry"})
		}
		return
	}

	logger.Info("Journal entry reversed", slog.String("journal_id", journalID), slog.String("reversal_id", reversal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}

// getAccountLedger godoc
// @Summary Get an account's ledger
// @Description Returns the date-ordered posted lines for one account with a running balance
// @Tags journals
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.AccountLedgerResponse "Ledger rows"
// @Failure 400 {object} map[string]string "Account is not a ledger account"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/ledger [get]
// @Security BearerAuth
func (h *journalHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	limit := defaultPageLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	rows, newToken, err := h.journalService.GetAccountLedger(c.Request.Context(), accountID, from, to, limit, nextToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNonPostableAccount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to get account ledger", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account ledger"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.AccountLedgerResponse{
		AccountID: accountID,
		Rows:      dto.ToLedgerRowResponses(rows),
		NextToken: newToken,
	})
}

// reconcileAccount godoc
// @Summary Reconcile an account's cached balance
// @Description Cross-checks the cached balance against the balance reconstructed from the posting history
// @Tags journals
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountReconciliationResponse "Reconciliation result"
// @Failure 400 {object} map[string]string "Account is not a ledger account"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountID}/reconciliation [get]
// @Security BearerAuth
func (h *journalHandler) reconcileAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	result, err := h.journalService.ReconcileAccount(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, services.ErrNonPostableAccount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reconcile account", slog.String("error", err.Error()), slog.String("account_id", accountID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountReconciliationResponse(result))
}

// respondJournalWriteError maps the draft create/update/delete failure modes.
func (h *journalHandler) respondJournalWriteError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var unbalanced *apperrors.UnbalancedEntryError
	var immutable *apperrors.ImmutableEntryError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
	case errors.As(err, &immutable):
		c.JSON(http.StatusConflict, gin.H{"error": immutable.Error()})
	case errors.As(err, &unbalanced),
		errors.Is(err, services.ErrInactiveAccount),
		errors.Is(err, services.ErrNonPostableAccount),
		errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Journal entry failed validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// parseDateQuery parses an optional YYYY-MM-DD query parameter. It writes a 400
// response and returns ok=false when the value is present but malformed.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " date, expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

// RegisterJournalRoutes registers journal engine routes on the given group.
func RegisterJournalRoutes(group *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := group.Group("/journals")
	{
		journals.POST("", h.createDraft)
		journals.GET("", h.listEntries)
		journals.GET("/:journalID", h.getEntry)
		journals.PUT("/:journalID", h.updateDraft)
		journals.DELETE("/:journalID", h.deleteDraft)
		journals.POST("/:journalID/post", h.postEntry)
		journals.POST("/:journalID/reverse", h.reverseEntry)
	}

	group.GET("/accounts/:accountID/ledger", h.getAccountLedger)
	group.GET("/accounts/:accountID/reconciliation", h.reconcileAccount)
}
