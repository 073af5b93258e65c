package repositories

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal entry, lines included.
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournals retrieves a paginated list of entries using token-based
	// pagination, optionally filtered by status and date range.
	ListJournals(ctx context.Context, status *domain.JournalStatus, from, to *time.Time, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveDraft persists a new draft entry and its lines, assigning the next
	// sequential entry number. No balances move.
	SaveDraft(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// UpdateDraft replaces a draft entry's header fields and lines.
	UpdateDraft(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraft removes a draft entry and its lines.
	DeleteDraft(ctx context.Context, journalID string) error

	// PostJournal atomically transitions the entry to POSTED and applies the
	// given balance deltas to the referenced ledger accounts. The entry row is
	// locked first; if it is no longer a draft the posting fails without any
	// balance effect.
	PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// SavePostedReversal persists an already-balanced reversal entry as POSTED,
	// applies its balance deltas, and marks the original entry REVERSED, all in
	// one transaction.
	SavePostedReversal(ctx context.Context, reversal domain.JournalEntry, originalJournalID string, balanceChanges map[string]decimal.Decimal) error
}

// LedgerReader defines read operations over posted journal lines.
type LedgerReader interface {
	// FindPostedLinesByAccount retrieves the date-ordered posted lines touching
	// an account within an optional date range, using token-based pagination.
	FindPostedLinesByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.LedgerRow, *string, error)

	// SumPostedLinesByAccount reconstructs an account's signed balance from the
	// posting log up to and including asOf.
	SumPostedLinesByAccount(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	LedgerReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
