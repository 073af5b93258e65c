package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenItemKind discriminates the two receivable/payable document variants.
// The closed set replaces the source system's runtime field-probing on a
// merged collection.
type OpenItemKind string

const (
	InvoiceItem OpenItemKind = "INVOICE" // Receivable: money owed to us
	BillItem    OpenItemKind = "BILL"    // Payable: money we owe
)

// OpenItemStatus tracks settlement of an open item.
type OpenItemStatus string

const (
	ItemOpen          OpenItemStatus = "OPEN"
	ItemPartiallyPaid OpenItemStatus = "PARTIALLY_PAID"
	ItemPaid          OpenItemStatus = "PAID"
	ItemVoid          OpenItemStatus = "VOID"
)

// OpenItem is an invoice or bill feeding the AR/AP aging reports.
type OpenItem struct {
	ItemID     string          `json:"itemID"` // Primary key (UUID)
	Kind       OpenItemKind    `json:"kind"`
	ItemNumber string          `json:"itemNumber"`
	PartyName  string          `json:"partyName"` // Customer (invoice) or vendor (bill)
	IssueDate  time.Time       `json:"issueDate"`
	DueDate    time.Time       `json:"dueDate"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Status     OpenItemStatus  `json:"status"`
	AuditFields
}

// Outstanding is the unsettled portion of the item.
func (i OpenItem) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.AmountPaid)
}

// IsOpen reports whether the item still counts toward aging.
func (i OpenItem) IsOpen() bool {
	return i.Status == ItemOpen || i.Status == ItemPartiallyPaid
}
