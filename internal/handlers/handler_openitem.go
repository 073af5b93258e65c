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

// openItemHandler handles HTTP requests for invoices and bills.
type openItemHandler struct {
	openItemService portssvc.OpenItemSvcFacade
}

// newOpenItemHandler creates a new openItemHandler.
func newOpenItemHandler(openItemService portssvc.OpenItemSvcFacade) *openItemHandler {
	return &openItemHandler{
		openItemService: openItemService,
	}
}

// createOpenItem godoc
// @Summary Record an invoice or bill
// @Description Creates a new open item feeding the AR/AP aging reports
// @Tags open-items
// @Accept  json
// @Produce  json
// @Param   item body dto.CreateOpenItemRequest true "Open item details"
// @Success 201 {object} dto.OpenItemResponse "Created item"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Duplicate item number"
// @Router /open-items [post]
// @Security BearerAuth
func (h *openItemHandler) createOpenItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOpenItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CreateOpenItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.openItemService.CreateOpenItem(c.Request.Context(), req, creatorUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create open item", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create open item"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToOpenItemResponse(item))
}

// recordPayment godoc
// @Summary Record a payment against an open item
// @Description Settles part or all of an invoice or bill; over-payment is rejected
// @Tags open-items
// @Accept  json
// @Produce  json
// @Param   itemID path string true "Open item ID"
// @Param   payment body dto.PaymentRequest true "Payment amount"
// @Success 200 {object} dto.OpenItemResponse "Item after payment"
// @Failure 400 {object} map[string]string "Invalid or excessive payment"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 409 {object} map[string]string "Item already settled"
// @Router /open-items/{itemID}/payments [post]
// @Security BearerAuth
func (h *openItemHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("itemID")

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	item, err := h.openItemService.RecordPayment(c.Request.Context(), itemID, req.Amount, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Open item not found"})
		case errors.Is(err, services.ErrItemNotOpen):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record payment", slog.String("error", err.Error()), slog.String("item_id", itemID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	logger.Info("Payment recorded", slog.String("item_id", itemID), slog.String("status", string(item.Status)))
	c.JSON(http.StatusOK, dto.ToOpenItemResponse(item))
}

// listOpenItems godoc
// @Summary List open items
// @Description Lists the unsettled invoices or bills of one kind, ordered by due date
// @Tags open-items
// @Produce  json
// @Param   kind query string true "Item kind (INVOICE or BILL)"
// @Success 200 {array} dto.OpenItemResponse "Open items"
// @Failure 400 {object} map[string]string "Missing or invalid kind"
// @Router /open-items [get]
// @Security BearerAuth
func (h *openItemHandler) listOpenItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	kind := domain.OpenItemKind(c.Query("kind"))
	if kind != domain.InvoiceItem && kind != domain.BillItem {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be INVOICE or BILL"})
		return
	}

	items, err := h.openItemService.ListOpenItems(c.Request.Context(), kind)
	if err != nil {
		logger.Error("Failed to list open items", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list open items"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOpenItemResponses(items))
}

// RegisterOpenItemRoutes registers invoice/bill routes on the given group.
func RegisterOpenItemRoutes(group *gin.RouterGroup, openItemService portssvc.OpenItemSvcFacade) {
	h := newOpenItemHandler(openItemService)

	items := group.Group("/open-items")
	{
		items.POST("", h.createOpenItem)
		items.GET("", h.listOpenItems)
		items.POST("/:itemID/payments", h.recordPayment)
	}
}
