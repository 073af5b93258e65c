package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/utils/accounting"
)

// Sub-type sets used to partition ledger accounts into statement sections.
// Membership is matched on the normalized (lowercased) subType.
var (
	currentAssetSubTypes = map[string]bool{
		"cash": true, "bank": true, "accounts_receivable": true,
		"inventory": true, "prepaid_expense": true, "current_asset": true,
	}
	fixedAssetSubTypes = map[string]bool{
		"fixed_asset": true, "property": true, "equipment": true,
		"vehicle": true, "accumulated_depreciation": true,
	}
	intangibleAssetSubTypes = map[string]bool{
		"intangible_asset": true, "goodwill": true, "patent": true,
	}
	currentLiabilitySubTypes = map[string]bool{
		"accounts_payable": true, "accrued_liability": true, "taxes_payable": true,
		"short_term_loan": true, "current_liability": true,
	}
	cogsSubTypes = map[string]bool{
		"cogs": true, "cost_of_goods_sold": true,
	}
	depreciationSubTypes = map[string]bool{
		"depreciation": true, "amortization": true,
	}
	interestSubTypes = map[string]bool{
		"interest_expense": true, "interest": true,
	}
	taxSubTypes = map[string]bool{
		"tax_expense": true, "income_tax": true, "tax": true,
	}
)

// reportingService derives financial statements from posted journal state.
// Every report here is a pure read: nothing is cached or memoized, so a
// report for a given date is reproducible until new postings land.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	openItemRepo  portsrepo.OpenItemRepositoryFacade
}

// NewReportingService creates a new statement derivation service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, openItemRepo portsrepo.OpenItemRepositoryFacade) portssvc.ReportingService {
	return &reportingService{reportingRepo: reportingRepo, openItemRepo: openItemRepo}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func validateRange(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%w: period end precedes period start", apperrors.ErrValidation)
	}
	return nil
}

func normalizeSubType(subType string) string {
	return strings.ToLower(strings.TrimSpace(subType))
}

// TrialBalance lists every active ledger account's balance on its natural-polarity
// column and cross-checks that total debits and credits agree within the same
// tolerance entries are accepted under.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to read trial balance data")
		return nil, fmt.Errorf("failed to read trial balance data: %w", err)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	difference := totalDebit.Sub(totalCredit)
	report := &domain.TrialBalanceReport{
		AsOf:              asOf,
		Rows:              rows,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		Balanced:          accounting.IsBalanced(totalDebit, totalCredit),
		BalanceDifference: difference,
	}

	if !report.Balanced {
		warning := &apperrors.ReportIntegrityWarning{Report: "trial_balance", Difference: difference}
		s.LogWarn(ctx, warning.Error(), slog.Time("as_of", asOf))
	}
	return report, nil
}

// BalanceSheet partitions derived ledger balances into statement sections and
// computes the liquidity and leverage ratios. Unclosed revenue and expense
// balances appear in equity as current period earnings so the statement
// balances without a formal closing entry.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetData, error) {
	accounts, balances, err := s.reportingRepo.GetLedgerBalances(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to read ledger balances")
		return nil, fmt.Errorf("failed to read ledger balances: %w", err)
	}

	data := &domain.BalanceSheetData{AsOf: asOf}
	periodEarnings := decimal.Zero
	inventory := decimal.Zero

	for _, account := range accounts {
		balance := balances[account.AccountID]
		entry := domain.AccountBalance{
			AccountID: account.AccountID,
			Code:      account.Code,
			Name:      account.Name,
			SubType:   account.SubType,
			Balance:   balance,
		}
		subType := normalizeSubType(account.SubType)

		switch account.AccountType {
		case domain.Asset:
			switch {
			case currentAssetSubTypes[subType]:
				appendToSection(&data.CurrentAssets, entry)
				if subType == "inventory" {
					inventory = inventory.Add(balance)
				}
			case fixedAssetSubTypes[subType]:
				appendToSection(&data.FixedAssets, entry)
			case intangibleAssetSubTypes[subType]:
				appendToSection(&data.IntangibleAssets, entry)
			default:
				appendToSection(&data.OtherAssets, entry)
			}
		case domain.Liability:
			if currentLiabilitySubTypes[subType] {
				appendToSection(&data.CurrentLiabilities, entry)
			} else {
				appendToSection(&data.LongTermLiabilities, entry)
			}
		case domain.Equity:
			appendToSection(&data.Equity, entry)
		case domain.Revenue:
			periodEarnings = periodEarnings.Add(balance)
		case domain.Expense:
			periodEarnings = periodEarnings.Sub(balance)
		}
	}

	if !periodEarnings.IsZero() {
		appendToSection(&data.Equity, domain.AccountBalance{
			Name:    "Current period earnings",
			SubType: "retained_earnings",
			Balance: periodEarnings,
		})
	}

	data.TotalAssets = data.CurrentAssets.Total.
		Add(data.FixedAssets.Total).
		Add(data.IntangibleAssets.Total).
		Add(data.OtherAssets.Total)
	data.TotalLiabilities = data.CurrentLiabilities.Total.Add(data.LongTermLiabilities.Total)
	data.TotalEquity = data.Equity.Total

	// The same tolerance applied when accepting entries: a statement built
	// from accepted postings must never flag itself over rounding the engine
	// allowed in.
	data.BalanceDifference = data.TotalAssets.Sub(data.TotalLiabilities.Add(data.TotalEquity))
	data.Balanced = data.BalanceDifference.Abs().LessThanOrEqual(accounting.BalanceTolerance)
	data.Ratios = deriveRatios(data, inventory)

	if !data.Balanced {
		warning := &apperrors.ReportIntegrityWarning{Report: "balance_sheet", Difference: data.BalanceDifference}
		s.LogWarn(ctx, warning.Error(), slog.Time("as_of", asOf))
	}
	return data, nil
}

func appendToSection(section *domain.StatementSection, entry domain.AccountBalance) {
	section.Accounts = append(section.Accounts, entry)
	section.Total = section.Total.Add(entry.Balance)
}

// deriveRatios computes the balance sheet ratios, marking any ratio with a
// zero denominator as undefined rather than raising or fabricating a value.
func deriveRatios(data *domain.BalanceSheetData, inventory decimal.Decimal) domain.BalanceSheetRatios {
	ratios := domain.BalanceSheetRatios{
		CurrentRatio:   domain.UndefinedRatio(),
		QuickRatio:     domain.UndefinedRatio(),
		DebtToEquity:   domain.UndefinedRatio(),
		DebtToAssets:   domain.UndefinedRatio(),
		EquityRatio:    domain.UndefinedRatio(),
		WorkingCapital: data.CurrentAssets.Total.Sub(data.CurrentLiabilities.Total),
	}

	if !data.CurrentLiabilities.Total.IsZero() {
		ratios.CurrentRatio = domain.DefinedRatio(data.CurrentAssets.Total.Div(data.CurrentLiabilities.Total))
		ratios.QuickRatio = domain.DefinedRatio(data.CurrentAssets.Total.Sub(inventory).Div(data.CurrentLiabilities.Total))
	}
	if !data.TotalEquity.IsZero() {
		ratios.DebtToEquity = domain.DefinedRatio(data.TotalLiabilities.Div(data.TotalEquity))
	}
	if !data.TotalAssets.IsZero() {
		ratios.DebtToAssets = domain.DefinedRatio(data.TotalLiabilities.Div(data.TotalAssets))
		ratios.EquityRatio = domain.DefinedRatio(data.TotalEquity.Div(data.TotalAssets))
	}
	return ratios
}

// ProfitAndLoss derives the P&L ladder over [from, to] by successive
// subtraction: revenue, minus COGS, operating expenses, depreciation and
// amortization, interest, then tax.
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitLossData, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	accounts, activity, err := s.reportingRepo.GetPeriodActivity(ctx, from, to,
		[]domain.AccountType{domain.Revenue, domain.Expense})
	if err != nil {
		s.LogError(ctx, err, "Failed to read period activity")
		return nil, fmt.Errorf("failed to read period activity: %w", err)
	}

	data := &domain.ProfitLossData{Period: domain.DateRange{From: from, To: to}}

	for _, account := range accounts {
		amount := activity[account.AccountID]
		if amount.IsZero() {
			continue
		}
		entry := domain.AccountBalance{
			AccountID: account.AccountID,
			Code:      account.Code,
			Name:      account.Name,
			SubType:   account.SubType,
			Balance:   amount,
		}
		subType := normalizeSubType(account.SubType)

		if account.AccountType == domain.Revenue {
			appendToSection(&data.Revenue, entry)
			continue
		}
		switch {
		case cogsSubTypes[subType]:
			appendToSection(&data.COGS, entry)
		case depreciationSubTypes[subType]:
			appendToSection(&data.DepreciationAmort, entry)
		case interestSubTypes[subType]:
			appendToSection(&data.Interest, entry)
		case taxSubTypes[subType]:
			appendToSection(&data.Tax, entry)
		default:
			appendToSection(&data.OperatingExpenses, entry)
		}
	}

	data.GrossProfit = data.Revenue.Total.Sub(data.COGS.Total)
	data.EBITDA = data.GrossProfit.Sub(data.OperatingExpenses.Total)
	data.EBIT = data.EBITDA.Sub(data.DepreciationAmort.Total)
	data.EBT = data.EBIT.Sub(data.Interest.Total)
	data.NetIncome = data.EBT.Sub(data.Tax.Total)

	data.Margins = domain.ProfitLossMargins{
		Gross:     domain.UndefinedRatio(),
		EBITDA:    domain.UndefinedRatio(),
		Operating: domain.UndefinedRatio(),
		Net:       domain.UndefinedRatio(),
	}
	if !data.Revenue.Total.IsZero() {
		data.Margins.Gross = domain.DefinedRatio(data.GrossProfit.Div(data.Revenue.Total))
		data.Margins.EBITDA = domain.DefinedRatio(data.EBITDA.Div(data.Revenue.Total))
		data.Margins.Operating = domain.DefinedRatio(data.EBIT.Div(data.Revenue.Total))
		data.Margins.Net = domain.DefinedRatio(data.NetIncome.Div(data.Revenue.Total))
	}
	return data, nil
}

// CashFlow classifies cash-account movements into operating, investing and
// financing activities by the counterparty account's sub-type, and
// reconciles closing = opening + net.
func (s *reportingService) CashFlow(ctx context.Context, from, to time.Time) (*domain.CashFlowData, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	opening, err := s.reportingRepo.GetCashBalance(ctx, from)
	if err != nil {
		s.LogError(ctx, err, "Failed to read opening cash balance")
		return nil, fmt.Errorf("failed to read opening cash balance: %w", err)
	}

	movements, err := s.reportingRepo.GetCashMovements(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to read cash movements")
		return nil, fmt.Errorf("failed to read cash movements: %w", err)
	}

	data := &domain.CashFlowData{
		Period:         domain.DateRange{From: from, To: to},
		OpeningBalance: opening,
		Operating:      movements["operating"],
		Investing:      movements["investing"],
		Financing:      movements["financing"],
	}
	data.NetCashFlow = data.Operating.Net.Add(data.Investing.Net).Add(data.Financing.Net)
	data.ClosingBalance = data.OpeningBalance.Add(data.NetCashFlow)
	return data, nil
}

func (s *reportingService) AgingReceivables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error) {
	return s.agingReport(ctx, domain.InvoiceItem, asOf, accounting.ReceivableBucketLabels, accounting.BucketIndexAR)
}

func (s *reportingService) AgingPayables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error) {
	return s.agingReport(ctx, domain.BillItem, asOf, accounting.PayableBucketLabels, accounting.BucketIndexAP)
}

// agingReport buckets the open items of one kind by days past due. Bucket
// totals sum outstanding amounts, not face amounts, so partially paid items
// count only for what is left.
func (s *reportingService) agingReport(ctx context.Context, kind domain.OpenItemKind, asOf time.Time, labels []string, bucketIndex func(int) int) (*domain.AgingReport, error) {
	items, err := s.openItemRepo.ListOpenItems(ctx, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list open items for aging", slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to list open items: %w", err)
	}

	buckets := make([]domain.AgingBucket, len(labels))
	for i, label := range labels {
		buckets[i] = domain.AgingBucket{Label: label}
	}

	grandTotal := decimal.Zero
	for _, item := range items {
		if !item.IsOpen() {
			continue
		}
		idx := bucketIndex(accounting.DaysPastDue(item.DueDate, asOf))
		buckets[idx].Items = append(buckets[idx].Items, item)
		buckets[idx].Total = buckets[idx].Total.Add(item.Outstanding())
		grandTotal = grandTotal.Add(item.Outstanding())
	}

	return &domain.AgingReport{
		Kind:       kind,
		AsOf:       asOf,
		Buckets:    buckets,
		GrandTotal: grandTotal,
	}, nil
}
