package services

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
)

// ReportingService is the statement derivation engine: pure read-side
// computation over posted journal state. Every report is a deterministic
// function of (posted journal state, date arguments) with no hidden
// memoization.
type ReportingService interface {
	// TrialBalance derives the point-in-time trial balance as of a date.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// BalanceSheet derives the balance sheet and its ratios as of a date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetData, error)

	// ProfitAndLoss derives the P&L statement over a date range.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitLossData, error)

	// CashFlow derives the cash flow statement over a date range.
	CashFlow(ctx context.Context, from, to time.Time) (*domain.CashFlowData, error)

	// AgingReceivables buckets open invoices by days past due as of a date.
	AgingReceivables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error)

	// AgingPayables buckets open bills by days past due as of a date.
	AgingPayables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error)
}
