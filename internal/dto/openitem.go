package dto

import (
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateOpenItemRequest records a new invoice or bill.
type CreateOpenItemRequest struct {
	Kind       domain.OpenItemKind `json:"kind" binding:"required,oneof=INVOICE BILL"`
	ItemNumber string              `json:"itemNumber" binding:"required"`
	PartyName  string              `json:"partyName" binding:"required"`
	IssueDate  time.Time           `json:"issueDate" binding:"required"`
	DueDate    time.Time           `json:"dueDate" binding:"required"`
	Amount     decimal.Decimal     `json:"amount" binding:"required,dgt0"`
}

// PaymentRequest settles part or all of an open item.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// OpenItemResponse mirrors domain.OpenItem with the derived outstanding amount.
type OpenItemResponse struct {
	ItemID      string                `json:"itemID"`
	Kind        domain.OpenItemKind   `json:"kind"`
	ItemNumber  string                `json:"itemNumber"`
	PartyName   string                `json:"partyName"`
	IssueDate   time.Time             `json:"issueDate"`
	DueDate     time.Time             `json:"dueDate"`
	Amount      decimal.Decimal       `json:"amount"`
	AmountPaid  decimal.Decimal       `json:"amountPaid"`
	Outstanding decimal.Decimal       `json:"outstanding"`
	Status      domain.OpenItemStatus `json:"status"`
}

// ToOpenItemResponse converts a domain.OpenItem.
func ToOpenItemResponse(item *domain.OpenItem) OpenItemResponse {
	return OpenItemResponse{
		ItemID:      item.ItemID,
		Kind:        item.Kind,
		ItemNumber:  item.ItemNumber,
		PartyName:   item.PartyName,
		IssueDate:   item.IssueDate,
		DueDate:     item.DueDate,
		Amount:      item.Amount,
		AmountPaid:  item.AmountPaid,
		Outstanding: item.Outstanding(),
		Status:      item.Status,
	}
}

// ToOpenItemResponses converts a slice of items.
func ToOpenItemResponses(items []domain.OpenItem) []OpenItemResponse {
	responses := make([]OpenItemResponse, len(items))
	for i := range items {
		responses[i] = ToOpenItemResponse(&items[i])
	}
	return responses
}
