package services

import (
	"context"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/shopspring/decimal"
)

// BudgetSvcFacade exposes the budget ledger and transfer subsystem.
type BudgetSvcFacade interface {
	// CreateBudget creates a new budget envelope.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error)

	// GetBudgetByID retrieves a budget.
	GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves budgets filtered by fiscal year, type and/or the
	// owning department or project reference.
	ListBudgets(ctx context.Context, fiscalYear *int, budgetType *domain.BudgetType, ownerRef *string) ([]domain.Budget, error)

	// Allocate commits spend against a budget, failing with a
	// BudgetOverrunError when the available amount would go negative.
	Allocate(ctx context.Context, budgetID string, amount decimal.Decimal, userID string) (*domain.Budget, error)

	// Rollover bulk-copies budgets from one fiscal year into another with the
	// total scaled by (1 + adjustmentPercent/100). Each budget is copied
	// independently; the result reports success and failure counts.
	Rollover(ctx context.Context, req dto.RolloverRequest, userID string) (*domain.RolloverResult, error)

	// RequestTransfer creates a pending transfer between two budgets. No
	// balance mutation happens until approval.
	RequestTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.BudgetTransfer, error)

	// ApproveTransfer executes the pending -> approved transition as one
	// atomic unit, re-validating the source budget's available amount.
	ApproveTransfer(ctx context.Context, transferID string, userID string) (*domain.BudgetTransfer, error)

	// RejectTransfer executes the pending -> rejected transition. Terminal,
	// no balance effect.
	RejectTransfer(ctx context.Context, transferID string, rejectionReason string, userID string) (*domain.BudgetTransfer, error)

	// GetTransferByID retrieves a transfer.
	GetTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error)

	// ListTransfers retrieves transfers, optionally by status or budget.
	ListTransfers(ctx context.Context, status *domain.TransferStatus, budgetID *string) ([]domain.BudgetTransfer, error)

	// ReviseBudget changes a budget's total amount, snapshotting the prior
	// version as a revision. The change fails if it would drive the available
	// amount negative.
	ReviseBudget(ctx context.Context, budgetID string, newTotal decimal.Decimal, reason string, userID string) (*domain.Budget, error)

	// ListRevisions returns a budget's revision history, oldest first.
	ListRevisions(ctx context.Context, budgetID string) ([]domain.BudgetRevision, error)

	// RestoreRevision restores a prior version's amounts by creating a new
	// revision derived from it. History is never deleted.
	RestoreRevision(ctx context.Context, budgetID string, version int, reason string, userID string) (*domain.Budget, error)
}
