package repositories

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenItemReader defines read operations for invoices and bills.
type OpenItemReader interface {
	// FindOpenItemByID retrieves an item by its unique identifier.
	FindOpenItemByID(ctx context.Context, itemID string) (*domain.OpenItem, error)

	// ListOpenItems retrieves items of one kind that are still open
	// (OPEN or PARTIALLY_PAID).
	ListOpenItems(ctx context.Context, kind domain.OpenItemKind) ([]domain.OpenItem, error)
}

// OpenItemWriter defines write operations for invoices and bills.
type OpenItemWriter interface {
	// SaveOpenItem persists a new item.
	SaveOpenItem(ctx context.Context, item domain.OpenItem) error

	// ApplyPayment atomically adds a payment to an item that is still open.
	// The guard runs in the same statement as the write, so concurrent
	// payments can never jointly exceed the item's amount; a payment the
	// guard rejects returns ErrConflict with no state change.
	ApplyPayment(ctx context.Context, itemID string, amount decimal.Decimal, userID string, now time.Time) (*domain.OpenItem, error)
}

// OpenItemRepositoryFacade combines the open item repository interfaces.
type OpenItemRepositoryFacade interface {
	OpenItemReader
	OpenItemWriter
}
