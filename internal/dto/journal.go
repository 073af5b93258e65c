package dto

import (
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalLineRequest is one line of a draft entry. Exactly one of
// Debit/Credit must be non-zero; that is validated by the service, not the
// binding layer, so the error can carry accounting context.
type CreateJournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// CreateJournalRequest defines the data needed to create a draft journal entry.
type CreateJournalRequest struct {
	Date        time.Time                  `json:"date" binding:"required" time_format:"2006-01-02"`
	Description string                     `json:"description" binding:"required"`
	Reference   string                     `json:"reference"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateJournalRequest defines the fields of a draft that may change.
// A nil Lines leaves the existing lines untouched.
type UpdateJournalRequest struct {
	Date        *time.Time                 `json:"date"`
	Description *string                    `json:"description"`
	Reference   *string                    `json:"reference"`
	Lines       []CreateJournalLineRequest `json:"lines"`
}

// ListJournalsParams holds filters for listing journal entries.
type ListJournalsParams struct {
	Status    *domain.JournalStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID   string                `json:"journalID"`
	EntryNumber string                `json:"entryNumber"`
	Date        time.Time             `json:"date"`
	Reference   string                `json:"reference"`
	Description string                `json:"description"`
	Status      domain.JournalStatus  `json:"status"`
	IsPosted    bool                  `json:"isPosted"`
	PostedAt    *time.Time            `json:"postedAt,omitempty"`
	Lines       []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CreatedBy   string                `json:"createdBy"`
}

// ListJournalsResponse wraps a page of entries with the next-page token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// LedgerRowResponse is one row of the account ledger view.
type LedgerRowResponse struct {
	JournalID   string          `json:"journalID"`
	EntryNumber string          `json:"entryNumber"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountLedgerResponse wraps the ledger rows for one account.
type AccountLedgerResponse struct {
	AccountID string              `json:"accountID"`
	Rows      []LedgerRowResponse `json:"rows"`
	NextToken *string             `json:"nextToken,omitempty"`
}

// AccountReconciliationResponse reports the result of cross-checking an
// account's cached balance against its reconstructed posting history.
type AccountReconciliationResponse struct {
	AccountID            string          `json:"accountID"`
	AsOf                 time.Time       `json:"asOf"`
	CachedBalance        decimal.Decimal `json:"cachedBalance"`
	ReconstructedBalance decimal.Decimal `json:"reconstructedBalance"`
	Difference           decimal.Decimal `json:"difference"`
	Consistent           bool            `json:"consistent"`
}

// ToJournalLineResponse converts a domain.JournalLine.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:      line.LineID,
		AccountID:   line.AccountID,
		Debit:       line.Debit,
		Credit:      line.Credit,
		Description: line.Description,
	}
}

// ToJournalResponse converts a domain.JournalEntry to JournalResponse.
func ToJournalResponse(entry *domain.JournalEntry) JournalResponse {
	lines := make([]JournalLineResponse, len(entry.Lines))
	for i := range entry.Lines {
		lines[i] = ToJournalLineResponse(&entry.Lines[i])
	}
	return JournalResponse{
		JournalID:   entry.JournalID,
		EntryNumber: entry.EntryNumber,
		Date:        entry.JournalDate,
		Reference:   entry.Reference,
		Description: entry.Description,
		Status:      entry.Status,
		IsPosted:    entry.Status != domain.Draft,
		PostedAt:    entry.PostedAt,
		Lines:       lines,
		CreatedAt:   entry.CreatedAt,
		CreatedBy:   entry.CreatedBy,
	}
}

// ToJournalResponses converts a slice of entries.
func ToJournalResponses(entries []domain.JournalEntry) []JournalResponse {
	responses := make([]JournalResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalResponse(&entries[i])
	}
	return responses
}

// ToAccountReconciliationResponse converts a domain.AccountReconciliation.
func ToAccountReconciliationResponse(rec *domain.AccountReconciliation) AccountReconciliationResponse {
	return AccountReconciliationResponse{
		AccountID:            rec.AccountID,
		AsOf:                 rec.AsOf,
		CachedBalance:        rec.CachedBalance,
		ReconstructedBalance: rec.ReconstructedBalance,
		Difference:           rec.Difference,
		Consistent:           rec.Consistent,
	}
}

// ToLedgerRowResponses converts ledger rows.
func ToLedgerRowResponses(rows []domain.LedgerRow) []LedgerRowResponse {
	responses := make([]LedgerRowResponse, len(rows))
	for i, row := range rows {
		responses[i] = LedgerRowResponse{
			JournalID:   row.JournalID,
			EntryNumber: row.EntryNumber,
			Date:        row.JournalDate,
			Description: row.Description,
			Reference:   row.Reference,
			Debit:       row.Debit,
			Credit:      row.Credit,
			Balance:     row.Balance,
		}
	}
	return responses
}
