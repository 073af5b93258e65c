package services

import (
	"context"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/shopspring/decimal"
)

// OpenItemSvcFacade manages the invoices and bills that feed the AR/AP aging
// reports.
type OpenItemSvcFacade interface {
	// CreateOpenItem records a new invoice or bill.
	CreateOpenItem(ctx context.Context, req dto.CreateOpenItemRequest, creatorUserID string) (*domain.OpenItem, error)

	// RecordPayment settles part or all of an open item. Over-payment is a
	// validation error.
	RecordPayment(ctx context.Context, itemID string, amount decimal.Decimal, userID string) (*domain.OpenItem, error)

	// ListOpenItems retrieves the open items of one kind.
	ListOpenItems(ctx context.Context, kind domain.OpenItemKind) ([]domain.OpenItem, error)
}
