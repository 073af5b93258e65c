package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetType classifies what a budget envelope is scoped to.
type BudgetType string

const (
	DepartmentBudget BudgetType = "DEPARTMENT"
	ProjectBudget    BudgetType = "PROJECT"
	SpecialBudget    BudgetType = "SPECIAL"
)

// Budget is a fund envelope for a department or project within a fiscal
// period. AllocatedAmount is cumulative committed spend; the available
// headroom is always derived, never stored.
type Budget struct {
	BudgetID        string          `json:"budgetID"` // Primary key (UUID)
	BudgetName      string          `json:"budgetName"`
	BudgetType      BudgetType      `json:"budgetType"`
	OwnerRef        string          `json:"ownerRef"` // Department or project reference
	FiscalYear      int             `json:"fiscalYear"`
	FiscalPeriod    string          `json:"fiscalPeriod"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Version         int             `json:"version"`
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// AvailableAmount is totalAmount minus allocatedAmount: the ceiling for
// further commitments or transfers out. Committed mutations must never drive
// it negative.
func (b Budget) AvailableAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.AllocatedAmount)
}

// TransferStatus is the state of a budget transfer request.
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
)

// BudgetTransfer moves capacity between two budget envelopes under an
// approval workflow. Pending transfers transition exactly once, to APPROVED
// or REJECTED; both outcomes are terminal.
type BudgetTransfer struct {
	TransferID      string          `json:"transferID"`     // Primary key (UUID)
	TransferNumber  string          `json:"transferNumber"` // Human-facing, e.g. BT-2026-00017
	FromBudgetID    string          `json:"fromBudgetID"`
	ToBudgetID      string          `json:"toBudgetID"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason"`
	FiscalYear      int             `json:"fiscalYear"`
	Status          TransferStatus  `json:"status"`
	RequestedBy     string          `json:"requestedBy"`
	RequestedAt     time.Time       `json:"requestedAt"`
	DecidedBy       string          `json:"decidedBy"`
	DecidedAt       *time.Time      `json:"decidedAt"`
	RejectionReason string          `json:"rejectionReason"` // Required iff status is REJECTED
}

// BudgetRevision is a versioned snapshot of a budget's amounts, written on
// every approved change to the budget's total. Restoring a prior version
// creates a new revision derived from the old one; history is never deleted.
type BudgetRevision struct {
	RevisionID      string          `json:"revisionID"`
	BudgetID        string          `json:"budgetID"`
	Version         int             `json:"version"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Reason          string          `json:"reason"`
	RevisedBy       string          `json:"revisedBy"`
	RevisedAt       time.Time       `json:"revisedAt"`
}

// RolloverResult reports the outcome of a bulk budget rollover. Each source
// budget is copied independently, so a failure on one does not block the
// others.
type RolloverResult struct {
	SourceFiscalYear int      `json:"sourceFiscalYear"`
	TargetFiscalYear int      `json:"targetFiscalYear"`
	Created          int      `json:"created"`
	Failed           int      `json:"failed"`
	CreatedBudgetIDs []string `json:"createdBudgetIDs"`
}
