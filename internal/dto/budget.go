package dto

import (
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines the data needed to create a budget envelope.
type CreateBudgetRequest struct {
	BudgetName   string            `json:"budgetName" binding:"required"`
	BudgetType   domain.BudgetType `json:"budgetType" binding:"required,oneof=DEPARTMENT PROJECT SPECIAL"`
	OwnerRef     string            `json:"ownerRef" binding:"required"`
	FiscalYear   int               `json:"fiscalYear" binding:"required"`
	FiscalPeriod string            `json:"fiscalPeriod"`
	TotalAmount  decimal.Decimal   `json:"totalAmount" binding:"required,dgt0"`
}

// AllocateRequest commits spend against a budget.
type AllocateRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// RolloverRequest bulk-copies budgets into a new fiscal year.
type RolloverRequest struct {
	SourceFiscalYear  int                `json:"sourceFiscalYear" binding:"required"`
	TargetFiscalYear  int                `json:"targetFiscalYear" binding:"required"`
	AdjustmentPercent decimal.Decimal    `json:"adjustmentPercent"`
	BudgetTypeFilter  *domain.BudgetType `json:"budgetTypeFilter,omitempty"`
}

// TransferRequest asks to move capacity between two budgets.
type TransferRequest struct {
	FromBudgetID string          `json:"fromBudgetID" binding:"required"`
	ToBudgetID   string          `json:"toBudgetID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Reason       string          `json:"reason" binding:"required"`
	FiscalYear   int             `json:"fiscalYear" binding:"required"`
}

// RejectTransferRequest carries the mandatory rejection reason.
type RejectTransferRequest struct {
	RejectionReason string `json:"rejectionReason" binding:"required"`
}

// ReviseBudgetRequest changes a budget's total amount with a required reason.
type ReviseBudgetRequest struct {
	TotalAmount decimal.Decimal `json:"totalAmount" binding:"required,dgt0"`
	Reason      string          `json:"reason" binding:"required"`
}

// RestoreRevisionRequest restores a prior budget version.
type RestoreRevisionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BudgetResponse mirrors domain.Budget with the derived available amount.
type BudgetResponse struct {
	BudgetID        string            `json:"budgetID"`
	BudgetName      string            `json:"budgetName"`
	BudgetType      domain.BudgetType `json:"budgetType"`
	OwnerRef        string            `json:"ownerRef"`
	FiscalYear      int               `json:"fiscalYear"`
	FiscalPeriod    string            `json:"fiscalPeriod"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	AllocatedAmount decimal.Decimal   `json:"allocatedAmount"`
	AvailableAmount decimal.Decimal   `json:"availableAmount"`
	Version         int               `json:"version"`
	IsActive        bool              `json:"isActive"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// TransferResponse mirrors domain.BudgetTransfer.
type TransferResponse struct {
	TransferID      string                `json:"transferID"`
	TransferNumber  string                `json:"transferNumber"`
	FromBudgetID    string                `json:"fromBudgetID"`
	ToBudgetID      string                `json:"toBudgetID"`
	Amount          decimal.Decimal       `json:"amount"`
	Reason          string                `json:"reason"`
	FiscalYear      int                   `json:"fiscalYear"`
	Status          domain.TransferStatus `json:"status"`
	RequestedBy     string                `json:"requestedBy"`
	RequestedAt     time.Time             `json:"requestedAt"`
	DecidedBy       string                `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time            `json:"decidedAt,omitempty"`
	RejectionReason string                `json:"rejectionReason,omitempty"`
}

// RevisionResponse mirrors domain.BudgetRevision.
type RevisionResponse struct {
	RevisionID      string          `json:"revisionID"`
	BudgetID        string          `json:"budgetID"`
	Version         int             `json:"version"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	Reason          string          `json:"reason"`
	RevisedBy       string          `json:"revisedBy"`
	RevisedAt       time.Time       `json:"revisedAt"`
}

// ToBudgetResponse converts a domain.Budget.
func ToBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		BudgetID:        b.BudgetID,
		BudgetName:      b.BudgetName,
		BudgetType:      b.BudgetType,
		OwnerRef:        b.OwnerRef,
		FiscalYear:      b.FiscalYear,
		FiscalPeriod:    b.FiscalPeriod,
		TotalAmount:     b.TotalAmount,
		AllocatedAmount: b.AllocatedAmount,
		AvailableAmount: b.AvailableAmount(),
		Version:         b.Version,
		IsActive:        b.IsActive,
		CreatedAt:       b.CreatedAt,
	}
}

// ToBudgetResponses converts a slice of budgets.
func ToBudgetResponses(budgets []domain.Budget) []BudgetResponse {
	responses := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		responses[i] = ToBudgetResponse(&budgets[i])
	}
	return responses
}

// ToTransferResponse converts a domain.BudgetTransfer.
func ToTransferResponse(t *domain.BudgetTransfer) TransferResponse {
	return TransferResponse{
		TransferID:      t.TransferID,
		TransferNumber:  t.TransferNumber,
		FromBudgetID:    t.FromBudgetID,
		ToBudgetID:      t.ToBudgetID,
		Amount:          t.Amount,
		Reason:          t.Reason,
		FiscalYear:      t.FiscalYear,
		Status:          t.Status,
		RequestedBy:     t.RequestedBy,
		RequestedAt:     t.RequestedAt,
		DecidedBy:       t.DecidedBy,
		DecidedAt:       t.DecidedAt,
		RejectionReason: t.RejectionReason,
	}
}

// ToTransferResponses converts a slice of transfers.
func ToTransferResponses(transfers []domain.BudgetTransfer) []TransferResponse {
	responses := make([]TransferResponse, len(transfers))
	for i := range transfers {
		responses[i] = ToTransferResponse(&transfers[i])
	}
	return responses
}

// ToRevisionResponses converts a slice of revisions.
func ToRevisionResponses(revisions []domain.BudgetRevision) []RevisionResponse {
	responses := make([]RevisionResponse, len(revisions))
	for i, r := range revisions {
		responses[i] = RevisionResponse{
			RevisionID:      r.RevisionID,
			BudgetID:        r.BudgetID,
			Version:         r.Version,
			TotalAmount:     r.TotalAmount,
			AllocatedAmount: r.AllocatedAmount,
			Reason:          r.Reason,
			RevisedBy:       r.RevisedBy,
			RevisedAt:       r.RevisedAt,
		}
	}
	return responses
}
