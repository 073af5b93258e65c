package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. Entries start in DRAFT and are mutable; posting is a
// one-way transition that locks the entry and applies balance deltas to every
// referenced ledger account. A posted entry can only be undone by a
// compensating reversal entry.
type JournalEntry struct {
	JournalID          string        `json:"journalID"`   // Primary key (UUID)
	EntryNumber        string        `json:"entryNumber"` // Human-facing sequential number, e.g. JE000042
	JournalDate        time.Time     `json:"journalDate"` // Business date, no timezone shifting
	Reference          string        `json:"reference"`
	Description        string        `json:"description"`
	Status             JournalStatus `json:"status"`
	PostedAt           *time.Time    `json:"postedAt"`
	PostedBy           string        `json:"postedBy"`
	OriginalJournalID  *string       `json:"originalJournalID"`  // Set on a reversal entry
	ReversingJournalID *string       `json:"reversingJournalID"` // Set on the reversed original
	Lines              []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single line item within a journal entry, affecting one
// ledger account. Exactly one of Debit and Credit is non-zero.
type JournalLine struct {
	LineID         string          `json:"lineID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line, set at posting
	AuditFields
}

// IsDebit reports whether the line's non-zero side is the debit side.
func (l JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// Amount returns the line's non-zero side.
func (l JournalLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.Debit
	}
	return l.Credit
}

// AccountReconciliation is the result of cross-checking an account's cached
// balance against the balance reconstructed from its full posting history.
// Both figures move in the same posting transaction, so they must agree
// exactly; any difference is drift that needs investigation.
type AccountReconciliation struct {
	AccountID            string          `json:"accountID"`
	AsOf                 time.Time       `json:"asOf"`
	CachedBalance        decimal.Decimal `json:"cachedBalance"`
	ReconstructedBalance decimal.Decimal `json:"reconstructedBalance"`
	Difference           decimal.Decimal `json:"difference"`
	Consistent           bool            `json:"consistent"`
}

// LedgerRow is one row of an account ledger view: a posted line with the
// account's running balance after it was applied.
type LedgerRow struct {
	JournalID   string          `json:"journalID"`
	EntryNumber string          `json:"entryNumber"`
	JournalDate time.Time       `json:"journalDate"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}
