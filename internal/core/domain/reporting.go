package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds a period report. Both ends are business dates, inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// TrialBalanceRow represents a single account row in a trial balance. The
// account's balance is presented on its natural-polarity column: a
// debit-natural account with a positive balance reports under Debit, and
// vice versa.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport is the point-in-time trial balance. Balanced is a
// self-check: a false value indicates a data-integrity bug and is surfaced to
// the caller, never hidden.
type TrialBalanceReport struct {
	AsOf              time.Time         `json:"asOf"`
	Rows              []TrialBalanceRow `json:"rows"`
	TotalDebit        decimal.Decimal   `json:"totalDebit"`
	TotalCredit       decimal.Decimal   `json:"totalCredit"`
	Balanced          bool              `json:"balanced"`
	BalanceDifference decimal.Decimal   `json:"balanceDifference"`
}

// AccountBalance is an account with its derived balance, used as the leaf
// element of statement sections.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	SubType   string          `json:"subType"`
	Balance   decimal.Decimal `json:"balance"`
}

// StatementSection groups account balances with their total.
type StatementSection struct {
	Accounts []AccountBalance `json:"accounts"`
	Total    decimal.Decimal  `json:"total"`
}

// Ratio carries a derived financial ratio. Defined is false when the
// denominator was zero; Value is meaningless in that case.
type Ratio struct {
	Value   decimal.Decimal `json:"value"`
	Defined bool            `json:"defined"`
}

// DefinedRatio builds a defined ratio value.
func DefinedRatio(v decimal.Decimal) Ratio {
	return Ratio{Value: v, Defined: true}
}

// UndefinedRatio marks a ratio whose denominator was zero.
func UndefinedRatio() Ratio {
	return Ratio{Defined: false}
}

// BalanceSheetRatios are the liquidity and leverage ratios derived from a
// balance sheet.
type BalanceSheetRatios struct {
	CurrentRatio   Ratio           `json:"currentRatio"`
	QuickRatio     Ratio           `json:"quickRatio"`
	DebtToEquity   Ratio           `json:"debtToEquity"`
	DebtToAssets   Ratio           `json:"debtToAssets"`
	EquityRatio    Ratio           `json:"equityRatio"`
	WorkingCapital decimal.Decimal `json:"workingCapital"`
}

// BalanceSheetData partitions ledger balances into the statement sections.
// Balanced cross-checks totalAssets == totalLiabilities + totalEquity;
// BalanceDifference is exposed for diagnosis rather than hiding a mismatch.
type BalanceSheetData struct {
	AsOf time.Time `json:"asOf"`

	CurrentAssets    StatementSection `json:"currentAssets"`
	FixedAssets      StatementSection `json:"fixedAssets"`
	IntangibleAssets StatementSection `json:"intangibleAssets"`
	OtherAssets      StatementSection `json:"otherAssets"`
	TotalAssets      decimal.Decimal  `json:"totalAssets"`

	CurrentLiabilities  StatementSection `json:"currentLiabilities"`
	LongTermLiabilities StatementSection `json:"longTermLiabilities"`
	TotalLiabilities    decimal.Decimal  `json:"totalLiabilities"`

	Equity      StatementSection `json:"equity"`
	TotalEquity decimal.Decimal  `json:"totalEquity"`

	Balanced          bool               `json:"balanced"`
	BalanceDifference decimal.Decimal    `json:"balanceDifference"`
	Ratios            BalanceSheetRatios `json:"ratios"`
}

// ProfitLossMargins are each profit figure divided by revenue; undefined when
// revenue is zero.
type ProfitLossMargins struct {
	Gross     Ratio `json:"gross"`
	EBITDA    Ratio `json:"ebitda"`
	Operating Ratio `json:"operating"`
	Net       Ratio `json:"net"`
}

// ProfitLossData is the profit and loss statement over a date range. The
// profit ladder is computed by successive subtraction of the defined expense
// categories.
type ProfitLossData struct {
	Period DateRange `json:"period"`

	Revenue           StatementSection `json:"revenue"`
	COGS              StatementSection `json:"cogs"`
	OperatingExpenses StatementSection `json:"operatingExpenses"`
	DepreciationAmort StatementSection `json:"depreciationAmortization"`
	Interest          StatementSection `json:"interest"`
	Tax               StatementSection `json:"tax"`

	GrossProfit decimal.Decimal   `json:"grossProfit"`
	EBITDA      decimal.Decimal   `json:"ebitda"`
	EBIT        decimal.Decimal   `json:"ebit"`
	EBT         decimal.Decimal   `json:"ebt"`
	NetIncome   decimal.Decimal   `json:"netIncome"`
	Margins     ProfitLossMargins `json:"margins"`
}

// ActivityNet is one cash flow activity bucket.
type ActivityNet struct {
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

// CashFlowData nets cash movements into operating, investing and financing
// activities. ClosingBalance = OpeningBalance + NetCashFlow.
type CashFlowData struct {
	Period          DateRange       `json:"period"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Operating       ActivityNet     `json:"operatingActivities"`
	Investing       ActivityNet     `json:"investingActivities"`
	Financing       ActivityNet     `json:"financingActivities"`
	NetCashFlow     decimal.Decimal `json:"netCashFlow"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
}

// AgingBucket is a time-since-due classification of open items.
type AgingBucket struct {
	Label string          `json:"label"`
	Items []OpenItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// AgingReport buckets open invoices or bills by days past due. The bucket
// totals reconcile with GrandTotal, the sum of all open items supplied.
type AgingReport struct {
	Kind       OpenItemKind    `json:"kind"`
	AsOf       time.Time       `json:"asOf"`
	Buckets    []AgingBucket   `json:"buckets"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}
