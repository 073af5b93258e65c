package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountLevel is the position of an account in the three-level chart of
// accounts: Group -> Sub-Group -> Ledger. Only Ledger accounts are postable.
type AccountLevel string

const (
	LevelGroup    AccountLevel = "GROUP"
	LevelSubGroup AccountLevel = "SUB_GROUP"
	LevelLedger   AccountLevel = "LEDGER"
)

// BalanceType is an account's natural polarity: whether increases are
// recorded as debits (assets, expenses) or credits (liabilities, equity,
// revenue).
type BalanceType string

const (
	DebitBalance  BalanceType = "DEBIT"
	CreditBalance BalanceType = "CREDIT"
)

// NaturalBalanceFor returns the conventional polarity for an account type.
func NaturalBalanceFor(t AccountType) BalanceType {
	switch t {
	case Asset, Expense:
		return DebitBalance
	default:
		return CreditBalance
	}
}

// Account represents a node in the chart of accounts. Group and Sub-Group
// nodes exist purely for hierarchy and reporting rollups; they never carry a
// balance of their own. The Balance field is meaningful for Ledger accounts
// only and is mutated exclusively by posted journal lines.
type Account struct {
	AccountID       string          `json:"accountID"` // Primary key (UUID)
	Code            string          `json:"code"`      // Unique across the whole hierarchy
	Name            string          `json:"name"`
	Level           AccountLevel    `json:"level"`
	ParentAccountID *string         `json:"parentAccountID"` // nil for groups
	AccountType     AccountType     `json:"accountType"`
	SubType         string          `json:"subType"` // Free-form bucket tag used by report partitioning
	BalanceType     BalanceType     `json:"balanceType"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"` // Running balance, leaf accounts only
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// IsGroup reports whether the account is a non-leaf hierarchy node.
func (a Account) IsGroup() bool {
	return a.Level != LevelLedger
}

// IsPostable reports whether journal lines may target this account.
func (a Account) IsPostable() bool {
	return a.Level == LevelLedger && a.IsActive
}

// AccountNode is an account with its children resolved, used for the nested
// hierarchy view. RollupBalance on a non-leaf node is the live sum of its
// descendant ledgers, computed at query time.
type AccountNode struct {
	Account
	RollupBalance decimal.Decimal `json:"rollupBalance"`
	Children      []*AccountNode  `json:"children,omitempty"`
}
