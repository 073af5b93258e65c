package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockReportingRepository is a mock type for the ReportingRepository interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

func (m *MockReportingRepository) GetLedgerBalances(ctx context.Context, asOf time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(map[string]decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) GetPeriodActivity(ctx context.Context, from, to time.Time, types []domain.AccountType) ([]domain.Account, map[string]decimal.Decimal, error) {
	args := m.Called(ctx, from, to, types)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(map[string]decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) GetCashMovements(ctx context.Context, from, to time.Time) (map[string]domain.ActivityNet, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ActivityNet), args.Error(1)
}

func (m *MockReportingRepository) GetCashBalance(ctx context.Context, before time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Test Suite Setup ---

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockOpenItemRepo  *MockOpenItemRepository
	service           portssvc.ReportingService
	ctx               context.Context
	asOf              time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockOpenItemRepo = new(MockOpenItemRepository)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockOpenItemRepo)
	suite.ctx = context.Background()
	suite.asOf = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
}

func ledgerAccount(code, name string, accountType domain.AccountType, subType string) domain.Account {
	return domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        name,
		Level:       domain.LevelLedger,
		AccountType: accountType,
		SubType:     subType,
		IsActive:    true,
	}
}

// --- Test Cases ---

func (suite *ReportingServiceTestSuite) TestTrialBalance_Balanced() {
	rows := []domain.TrialBalanceRow{
		{Code: "1110", AccountType: domain.Asset, Debit: decimal.NewFromInt(700)},
		{Code: "4100", AccountType: domain.Revenue, Credit: decimal.NewFromInt(700)},
	}
	suite.mockReportingRepo.On("GetTrialBalanceData", suite.ctx, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.TrialBalance(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.True(report.Balanced)
	suite.True(report.TotalDebit.Equal(decimal.NewFromInt(700)))
	suite.True(report.TotalCredit.Equal(decimal.NewFromInt(700)))
	suite.True(report.BalanceDifference.IsZero())
}

func (suite *ReportingServiceTestSuite) TestTrialBalance_ImbalanceReportedNotFatal() {
	rows := []domain.TrialBalanceRow{
		{Code: "1110", Debit: decimal.NewFromInt(700)},
		{Code: "4100", Credit: decimal.NewFromInt(650)},
	}
	suite.mockReportingRepo.On("GetTrialBalanceData", suite.ctx, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.TrialBalance(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.False(report.Balanced)
	suite.True(report.BalanceDifference.Equal(decimal.NewFromInt(50)))
}

// A trial balance built from entries the engine accepted must never flag
// itself: a 0.01 divergence is within the tolerance entries post under.
func (suite *ReportingServiceTestSuite) TestTrialBalance_WithinPostingToleranceStillBalanced() {
	rows := []domain.TrialBalanceRow{
		{Code: "1110", AccountType: domain.Asset, Debit: decimal.NewFromFloat(100.00)},
		{Code: "4100", AccountType: domain.Revenue, Credit: decimal.NewFromFloat(99.99)},
	}
	suite.mockReportingRepo.On("GetTrialBalanceData", suite.ctx, suite.asOf).Return(rows, nil).Once()

	report, err := suite.service.TrialBalance(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.True(report.Balanced)
	suite.True(report.BalanceDifference.Equal(decimal.NewFromFloat(0.01)))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_SectionsAndEarnings() {
	cash := ledgerAccount("1110", "Cash", domain.Asset, "cash")
	equipment := ledgerAccount("1510", "Equipment", domain.Asset, "equipment")
	payables := ledgerAccount("2110", "Accounts Payable", domain.Liability, "accounts_payable")
	loan := ledgerAccount("2510", "Long Term Loan", domain.Liability, "long_term_loan")
	capital := ledgerAccount("3100", "Share Capital", domain.Equity, "")
	revenue := ledgerAccount("4100", "Sales", domain.Revenue, "")
	rent := ledgerAccount("5200", "Rent", domain.Expense, "")

	accounts := []domain.Account{cash, equipment, payables, loan, capital, revenue, rent}
	balances := map[string]decimal.Decimal{
		cash.AccountID:      decimal.NewFromInt(500),
		equipment.AccountID: decimal.NewFromInt(1000),
		payables.AccountID:  decimal.NewFromInt(200),
		loan.AccountID:      decimal.NewFromInt(800),
		capital.AccountID:   decimal.NewFromInt(300),
		revenue.AccountID:   decimal.NewFromInt(600),
		rent.AccountID:      decimal.NewFromInt(400),
	}

	suite.mockReportingRepo.On("GetLedgerBalances", suite.ctx, suite.asOf).Return(accounts, balances, nil).Once()

	data, err := suite.service.BalanceSheet(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.True(data.CurrentAssets.Total.Equal(decimal.NewFromInt(500)))
	suite.True(data.FixedAssets.Total.Equal(decimal.NewFromInt(1000)))
	suite.True(data.CurrentLiabilities.Total.Equal(decimal.NewFromInt(200)))
	suite.True(data.LongTermLiabilities.Total.Equal(decimal.NewFromInt(800)))
	// Equity absorbs unclosed revenue minus expenses: 300 + (600 - 400).
	suite.True(data.TotalEquity.Equal(decimal.NewFromInt(500)))
	suite.True(data.TotalAssets.Equal(decimal.NewFromInt(1500)))
	suite.True(data.Balanced)
	suite.True(data.Ratios.WorkingCapital.Equal(decimal.NewFromInt(300)))
	suite.True(data.Ratios.CurrentRatio.Defined)
	suite.True(data.Ratios.CurrentRatio.Value.Equal(decimal.NewFromFloat(2.5)))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_WithinPostingToleranceStillBalanced() {
	cash := ledgerAccount("1110", "Cash", domain.Asset, "cash")
	capital := ledgerAccount("3100", "Share Capital", domain.Equity, "")

	accounts := []domain.Account{cash, capital}
	balances := map[string]decimal.Decimal{
		cash.AccountID:    decimal.NewFromFloat(100.00),
		capital.AccountID: decimal.NewFromFloat(99.99),
	}

	suite.mockReportingRepo.On("GetLedgerBalances", suite.ctx, suite.asOf).Return(accounts, balances, nil).Once()

	data, err := suite.service.BalanceSheet(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.True(data.Balanced)
	suite.True(data.BalanceDifference.Equal(decimal.NewFromFloat(0.01)))
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_ZeroDenominatorsUndefined() {
	cash := ledgerAccount("1110", "Cash", domain.Asset, "cash")
	accounts := []domain.Account{cash}
	balances := map[string]decimal.Decimal{cash.AccountID: decimal.NewFromInt(100)}

	suite.mockReportingRepo.On("GetLedgerBalances", suite.ctx, suite.asOf).Return(accounts, balances, nil).Once()

	data, err := suite.service.BalanceSheet(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.False(data.Ratios.CurrentRatio.Defined)
	suite.False(data.Ratios.QuickRatio.Defined)
	suite.False(data.Ratios.DebtToEquity.Defined)
	suite.True(data.Ratios.DebtToAssets.Defined)
	suite.True(data.Ratios.DebtToAssets.Value.IsZero())
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_Ladder() {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	sales := ledgerAccount("4100", "Sales", domain.Revenue, "")
	cogs := ledgerAccount("5100", "Cost of Goods Sold", domain.Expense, "cogs")
	rent := ledgerAccount("5200", "Rent", domain.Expense, "")
	depreciation := ledgerAccount("5300", "Depreciation", domain.Expense, "depreciation")
	interest := ledgerAccount("5400", "Interest", domain.Expense, "interest_expense")
	tax := ledgerAccount("5500", "Income Tax", domain.Expense, "income_tax")
	idle := ledgerAccount("5600", "Unused", domain.Expense, "")

	accounts := []domain.Account{sales, cogs, rent, depreciation, interest, tax, idle}
	activity := map[string]decimal.Decimal{
		sales.AccountID:        decimal.NewFromInt(1000),
		cogs.AccountID:         decimal.NewFromInt(400),
		rent.AccountID:         decimal.NewFromInt(200),
		depreciation.AccountID: decimal.NewFromInt(100),
		interest.AccountID:     decimal.NewFromInt(50),
		tax.AccountID:          decimal.NewFromInt(60),
		idle.AccountID:         decimal.Zero,
	}

	suite.mockReportingRepo.On("GetPeriodActivity", suite.ctx, from, to,
		[]domain.AccountType{domain.Revenue, domain.Expense}).Return(accounts, activity, nil).Once()

	data, err := suite.service.ProfitAndLoss(suite.ctx, from, to)

	suite.NoError(err)
	suite.True(data.GrossProfit.Equal(decimal.NewFromInt(600)))
	suite.True(data.EBITDA.Equal(decimal.NewFromInt(400)))
	suite.True(data.EBIT.Equal(decimal.NewFromInt(300)))
	suite.True(data.EBT.Equal(decimal.NewFromInt(250)))
	suite.True(data.NetIncome.Equal(decimal.NewFromInt(190)))
	suite.True(data.Margins.Gross.Defined)
	suite.True(data.Margins.Gross.Value.Equal(decimal.NewFromFloat(0.6)))
	// Zero-activity accounts never appear in any section.
	suite.Len(data.OperatingExpenses.Accounts, 1)
}

func (suite *ReportingServiceTestSuite) TestProfitAndLoss_InvertedRangeRejected() {
	from := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	data, err := suite.service.ProfitAndLoss(suite.ctx, from, to)

	suite.Nil(data)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetPeriodActivity")
}

func (suite *ReportingServiceTestSuite) TestCashFlow_Reconciles() {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	movements := map[string]domain.ActivityNet{
		"operating": {Inflows: decimal.NewFromInt(900), Outflows: decimal.NewFromInt(300), Net: decimal.NewFromInt(600)},
		"investing": {Outflows: decimal.NewFromInt(250), Net: decimal.NewFromInt(-250)},
		"financing": {Inflows: decimal.NewFromInt(100), Net: decimal.NewFromInt(100)},
	}

	suite.mockReportingRepo.On("GetCashBalance", suite.ctx, from).Return(decimal.NewFromInt(1000), nil).Once()
	suite.mockReportingRepo.On("GetCashMovements", suite.ctx, from, to).Return(movements, nil).Once()

	data, err := suite.service.CashFlow(suite.ctx, from, to)

	suite.NoError(err)
	suite.True(data.NetCashFlow.Equal(decimal.NewFromInt(450)))
	suite.True(data.ClosingBalance.Equal(decimal.NewFromInt(1450)))
	suite.True(data.OpeningBalance.Equal(decimal.NewFromInt(1000)))
}

func (suite *ReportingServiceTestSuite) TestAgingReceivables_BucketsByDaysPastDue() {
	mkItem := func(number string, dueDate time.Time, amount, paid int64) domain.OpenItem {
		return domain.OpenItem{
			ItemID:     uuid.NewString(),
			Kind:       domain.InvoiceItem,
			ItemNumber: number,
			DueDate:    dueDate,
			Amount:     decimal.NewFromInt(amount),
			AmountPaid: decimal.NewFromInt(paid),
			Status:     domain.ItemOpen,
		}
	}

	items := []domain.OpenItem{
		mkItem("INV-1", suite.asOf.AddDate(0, 0, 10), 100, 0),   // not yet due: current
		mkItem("INV-2", suite.asOf.AddDate(0, 0, -45), 200, 50), // 45 days past due: 31-60
		mkItem("INV-3", suite.asOf.AddDate(0, 0, -75), 300, 0),  // 75 days past due: 61-90
		mkItem("INV-4", suite.asOf.AddDate(0, 0, -120), 400, 0), // 120 days past due: 90+
	}
	paid := mkItem("INV-5", suite.asOf.AddDate(0, 0, -120), 500, 500)
	paid.Status = domain.ItemPaid
	items = append(items, paid)

	suite.mockOpenItemRepo.On("ListOpenItems", suite.ctx, domain.InvoiceItem).Return(items, nil).Once()

	report, err := suite.service.AgingReceivables(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.Len(report.Buckets, 4)
	suite.Equal("current", report.Buckets[0].Label)
	suite.True(report.Buckets[0].Total.Equal(decimal.NewFromInt(100)))
	// Partially paid items age only for what is left outstanding.
	suite.True(report.Buckets[1].Total.Equal(decimal.NewFromInt(150)))
	suite.True(report.Buckets[2].Total.Equal(decimal.NewFromInt(300)))
	suite.True(report.Buckets[3].Total.Equal(decimal.NewFromInt(400)))
	suite.True(report.GrandTotal.Equal(decimal.NewFromInt(950)))
}

func (suite *ReportingServiceTestSuite) TestAgingPayables_ThreeBuckets() {
	items := []domain.OpenItem{
		{
			ItemID: uuid.NewString(), Kind: domain.BillItem, ItemNumber: "BILL-1",
			DueDate: suite.asOf.AddDate(0, 0, -90),
			Amount:  decimal.NewFromInt(700), Status: domain.ItemOpen,
		},
	}

	suite.mockOpenItemRepo.On("ListOpenItems", suite.ctx, domain.BillItem).Return(items, nil).Once()

	report, err := suite.service.AgingPayables(suite.ctx, suite.asOf)

	suite.NoError(err)
	suite.Len(report.Buckets, 3)
	suite.Equal("60+", report.Buckets[2].Label)
	suite.True(report.Buckets[2].Total.Equal(decimal.NewFromInt(700)))
}

// --- Run Test Suite ---

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
