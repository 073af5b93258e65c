package services

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/fincore/erp-accounting/internal/dto"
)

// JournalSvcFacade exposes the double-entry journal engine.
type JournalSvcFacade interface {
	// CreateDraft validates and persists a new draft entry. No balances move.
	CreateDraft(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error)

	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListEntries retrieves entries with token-based pagination.
	ListEntries(ctx context.Context, params dto.ListJournalsParams) ([]domain.JournalEntry, *string, error)

	// UpdateDraft updates a draft entry; posted entries are immutable.
	UpdateDraft(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.JournalEntry, error)

	// DeleteDraft deletes a draft entry; posted entries are immutable.
	DeleteDraft(ctx context.Context, journalID string, userID string) error

	// Post transitions a draft to POSTED and atomically applies its balance
	// deltas. Posting an already-posted entry fails.
	Post(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error)

	// Reverse creates and posts a compensating entry for a posted entry.
	Reverse(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error)

	// GetAccountLedger returns the date-ordered posted lines affecting one
	// account with a running balance column. It is a pure function of stored
	// postings; the token restarts the sequence without server-side cursors.
	GetAccountLedger(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.LedgerRow, *string, error)

	// ReconcileAccount cross-checks a ledger account's cached balance against
	// the balance reconstructed from its posting history.
	ReconcileAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error)
}
