package repositories

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines the read-side queries the statement derivation
// engine aggregates over. All queries reconstruct balances from posted
// journal lines, never from the cached running balance, so point-in-time
// views stay correct.
type ReportingRepository interface {
	// GetTrialBalanceData returns per-account debit and credit sums from
	// postings dated on or before asOf, for active ledger accounts.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetLedgerBalances returns each active ledger account (with its type and
	// subType) and its signed balance derived from postings dated on or
	// before asOf, opening balances included.
	GetLedgerBalances(ctx context.Context, asOf time.Time) ([]domain.Account, map[string]decimal.Decimal, error)

	// GetPeriodActivity returns per-account signed activity from postings
	// within [from, to], for accounts of the given types.
	GetPeriodActivity(ctx context.Context, from, to time.Time, types []domain.AccountType) ([]domain.Account, map[string]decimal.Decimal, error)

	// GetCashMovements returns the debit (inflow) and credit (outflow) sums
	// on cash-like accounts (subType "cash") within [from, to], grouped by
	// the counterparty account's subType bucket.
	GetCashMovements(ctx context.Context, from, to time.Time) (map[string]domain.ActivityNet, error)

	// GetCashBalance returns the summed balance of cash-like accounts from
	// postings dated strictly before the given date, opening balances included.
	GetCashBalance(ctx context.Context, before time.Time) (decimal.Decimal, error)
}
