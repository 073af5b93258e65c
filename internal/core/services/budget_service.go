package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/dto"
)

var (
	ErrTransferNotPending = errors.New("transfer is not pending")
	ErrSameBudget         = errors.New("transfer source and destination budgets must differ")
	ErrInactiveBudget     = errors.New("budget is inactive")
	ErrRevisionMismatch   = errors.New("revision does not belong to this budget")
)

// one hundred, for percentage scaling in rollovers.
var hundred = decimal.NewFromInt(100)

// budgetService owns budget envelopes, the transfer approval workflow,
// rollovers, and revision history.
type budgetService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryWithTx
}

// NewBudgetService creates a new budget service.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryWithTx) portssvc.BudgetSvcFacade {
	return &budgetService{budgetRepo: budgetRepo}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.Budget, error) {
	if !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	budget := domain.Budget{
		BudgetID:        uuid.NewString(),
		BudgetName:      req.BudgetName,
		BudgetType:      req.BudgetType,
		OwnerRef:        req.OwnerRef,
		FiscalYear:      req.FiscalYear,
		FiscalPeriod:    req.FiscalPeriod,
		TotalAmount:     req.TotalAmount,
		AllocatedAmount: decimal.Zero,
		Version:         1,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("budget_name", req.BudgetName))
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.Int("fiscal_year", budget.FiscalYear))
	return &budget, nil
}

func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find budget", slog.String("budget_id", budgetID))
		}
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	return budget, nil
}

func (s *budgetService) ListBudgets(ctx context.Context, fiscalYear *int, budgetType *domain.BudgetType, ownerRef *string) ([]domain.Budget, error) {
	return s.budgetRepo.ListBudgets(ctx, fiscalYear, budgetType, ownerRef)
}

// Allocate commits spend against a budget. The overrun check happens in the
// repository under a row lock so concurrent allocations serialize.
func (s *budgetService) Allocate(ctx context.Context, budgetID string, amount decimal.Decimal, userID string) (*domain.Budget, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: allocation amount must be positive", apperrors.ErrValidation)
	}

	tx, err := s.budgetRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.budgetRepo.Rollback(ctx, tx) //nolint:errcheck

	budget, err := s.budgetRepo.AllocateInTx(ctx, tx, budgetID, amount, userID, time.Now().UTC())
	if err != nil {
		var overrun *apperrors.BudgetOverrunError
		if !errors.As(err, &overrun) {
			s.LogError(ctx, err, "Failed to allocate against budget", slog.String("budget_id", budgetID))
		}
		return nil, err
	}

	if err := s.budgetRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	s.LogInfo(ctx, "Budget allocation committed",
		slog.String("budget_id", budgetID),
		slog.String("amount", amount.String()))
	return budget, nil
}

// Rollover copies every matching active budget from the source fiscal year
// into the target year, scaling totals by (1 + adjustmentPercent/100).
// Budgets are copied one by one: a failure on one is counted and skipped, so
// a bad row never aborts the whole run.
func (s *budgetService) Rollover(ctx context.Context, req dto.RolloverRequest, userID string) (*domain.RolloverResult, error) {
	if req.SourceFiscalYear == req.TargetFiscalYear {
		return nil, fmt.Errorf("%w: source and target fiscal years must differ", apperrors.ErrValidation)
	}
	if req.AdjustmentPercent.LessThanOrEqual(hundred.Neg()) {
		return nil, fmt.Errorf("%w: adjustment percent must be greater than -100", apperrors.ErrValidation)
	}

	sources, err := s.budgetRepo.ListBudgets(ctx, &req.SourceFiscalYear, req.BudgetTypeFilter, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list source budgets for rollover", slog.Int("fiscal_year", req.SourceFiscalYear))
		return nil, fmt.Errorf("failed to list budgets for fiscal year %d: %w", req.SourceFiscalYear, err)
	}

	scale := decimal.NewFromInt(1).Add(req.AdjustmentPercent.Div(hundred))
	now := time.Now().UTC()
	result := &domain.RolloverResult{
		SourceFiscalYear: req.SourceFiscalYear,
		TargetFiscalYear: req.TargetFiscalYear,
	}

	for _, src := range sources {
		if !src.IsActive {
			continue
		}

		budget := domain.Budget{
			BudgetID:        uuid.NewString(),
			BudgetName:      src.BudgetName,
			BudgetType:      src.BudgetType,
			OwnerRef:        src.OwnerRef,
			FiscalYear:      req.TargetFiscalYear,
			FiscalPeriod:    src.FiscalPeriod,
			TotalAmount:     src.TotalAmount.Mul(scale),
			AllocatedAmount: decimal.Zero,
			Version:         1,
			IsActive:        true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}

		if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
			s.LogWarn(ctx, "Skipping budget during rollover",
				slog.String("source_budget_id", src.BudgetID),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		result.Created++
		result.CreatedBudgetIDs = append(result.CreatedBudgetIDs, budget.BudgetID)
	}

	s.LogInfo(ctx, "Budget rollover finished",
		slog.Int("source_fiscal_year", req.SourceFiscalYear),
		slog.Int("target_fiscal_year", req.TargetFiscalYear),
		slog.Int("created", result.Created),
		slog.Int("failed", result.Failed))
	return result, nil
}

func (s *budgetService) RequestTransfer(ctx context.Context, req dto.TransferRequest, userID string) (*domain.BudgetTransfer, error) {
	if req.FromBudgetID == req.ToBudgetID {
		return nil, ErrSameBudget
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}

	from, err := s.budgetRepo.FindBudgetByID(ctx, req.FromBudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find source budget %s: %w", req.FromBudgetID, err)
	}
	to, err := s.budgetRepo.FindBudgetByID(ctx, req.ToBudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find destination budget %s: %w", req.ToBudgetID, err)
	}
	if !from.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrInactiveBudget, from.BudgetID)
	}
	if !to.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrInactiveBudget, to.BudgetID)
	}

	// Advisory check only. The binding check happens again under locks at
	// approval time.
	if from.AvailableAmount().LessThan(req.Amount) {
		return nil, &apperrors.BudgetOverrunError{
			BudgetID:  from.BudgetID,
			Available: from.AvailableAmount(),
			Requested: req.Amount,
		}
	}

	transfer := domain.BudgetTransfer{
		TransferID:   uuid.NewString(),
		FromBudgetID: req.FromBudgetID,
		ToBudgetID:   req.ToBudgetID,
		Amount:       req.Amount,
		Reason:       req.Reason,
		FiscalYear:   req.FiscalYear,
		Status:       domain.TransferPending,
		RequestedBy:  userID,
		RequestedAt:  time.Now().UTC(),
	}

	saved, err := s.budgetRepo.SaveTransfer(ctx, transfer)
	if err != nil {
		s.LogError(ctx, err, "Failed to save transfer request", slog.String("from_budget_id", req.FromBudgetID))
		return nil, fmt.Errorf("failed to save transfer request: %w", err)
	}

	s.LogInfo(ctx, "Budget transfer requested",
		slog.String("transfer_id", saved.TransferID),
		slog.String("transfer_number", saved.TransferNumber))
	return saved, nil
}

// ApproveTransfer executes the pending transfer as one atomic unit: both
// budgets are locked in lexical id order, the source's available amount is
// re-validated, and the capacity moves from one total to the other. A
// transient conflict is retried once before surfacing ErrConflict.
func (s *budgetService) ApproveTransfer(ctx context.Context, transferID string, userID string) (*domain.BudgetTransfer, error) {
	transfer, err := s.approveTransferOnce(ctx, transferID, userID)
	if err != nil && errors.Is(err, apperrors.ErrConflict) {
		s.LogWarn(ctx, "Retrying transfer approval after conflict", slog.String("transfer_id", transferID))
		transfer, err = s.approveTransferOnce(ctx, transferID, userID)
	}
	return transfer, err
}

func (s *budgetService) approveTransferOnce(ctx context.Context, transferID string, userID string) (*domain.BudgetTransfer, error) {
	tx, err := s.budgetRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.budgetRepo.Rollback(ctx, tx) //nolint:errcheck

	transfer, err := s.budgetRepo.FindTransferByIDForUpdate(ctx, tx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer %s: %w", transferID, err)
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrTransferNotPending, transferID, transfer.Status)
	}

	// Lock order is lexical by budget id so two opposing transfers between
	// the same pair cannot deadlock.
	ids := []string{transfer.FromBudgetID, transfer.ToBudgetID}
	sort.Strings(ids)
	budgets, err := s.budgetRepo.FindBudgetsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock budgets for transfer %s: %w", transferID, err)
	}
	from, ok := budgets[transfer.FromBudgetID]
	if !ok {
		return nil, fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, transfer.FromBudgetID)
	}
	to, ok := budgets[transfer.ToBudgetID]
	if !ok {
		return nil, fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, transfer.ToBudgetID)
	}

	now := time.Now().UTC()

	// Re-validate under the locks. A source budget drained since the request
	// was made rejects the transfer terminally instead of overdrawing it.
	if from.AvailableAmount().LessThan(transfer.Amount) {
		transfer.Status = domain.TransferRejected
		transfer.DecidedBy = userID
		transfer.DecidedAt = &now
		transfer.RejectionReason = fmt.Sprintf(
			"insufficient available amount in source budget: available %s, requested %s",
			from.AvailableAmount().String(), transfer.Amount.String())

		if err := s.budgetRepo.UpdateTransferStatusInTx(ctx, tx, *transfer); err != nil {
			return nil, fmt.Errorf("failed to reject transfer %s: %w", transferID, err)
		}
		if err := s.budgetRepo.Commit(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to commit transfer rejection: %w", err)
		}

		s.LogWarn(ctx, "Budget transfer auto-rejected on approval",
			slog.String("transfer_id", transferID),
			slog.String("reason", transfer.RejectionReason))
		return transfer, nil
	}

	from.TotalAmount = from.TotalAmount.Sub(transfer.Amount)
	to.TotalAmount = to.TotalAmount.Add(transfer.Amount)

	if err := s.budgetRepo.UpdateBudgetAmountsInTx(ctx, tx, from, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update source budget %s: %w", from.BudgetID, err)
	}
	if err := s.budgetRepo.UpdateBudgetAmountsInTx(ctx, tx, to, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update destination budget %s: %w", to.BudgetID, err)
	}

	transfer.Status = domain.TransferApproved
	transfer.DecidedBy = userID
	transfer.DecidedAt = &now
	if err := s.budgetRepo.UpdateTransferStatusInTx(ctx, tx, *transfer); err != nil {
		return nil, fmt.Errorf("failed to approve transfer %s: %w", transferID, err)
	}

	if err := s.budgetRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer approval: %w", err)
	}

	s.LogInfo(ctx, "Budget transfer approved",
		slog.String("transfer_id", transferID),
		slog.String("from_budget_id", from.BudgetID),
		slog.String("to_budget_id", to.BudgetID),
		slog.String("amount", transfer.Amount.String()))
	return transfer, nil
}

func (s *budgetService) RejectTransfer(ctx context.Context, transferID string, rejectionReason string, userID string) (*domain.BudgetTransfer, error) {
	if rejectionReason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", apperrors.ErrValidation)
	}

	tx, err := s.budgetRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.budgetRepo.Rollback(ctx, tx) //nolint:errcheck

	transfer, err := s.budgetRepo.FindTransferByIDForUpdate(ctx, tx, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer %s: %w", transferID, err)
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrTransferNotPending, transferID, transfer.Status)
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferRejected
	transfer.DecidedBy = userID
	transfer.DecidedAt = &now
	transfer.RejectionReason = rejectionReason

	if err := s.budgetRepo.UpdateTransferStatusInTx(ctx, tx, *transfer); err != nil {
		return nil, fmt.Errorf("failed to reject transfer %s: %w", transferID, err)
	}
	if err := s.budgetRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer rejection: %w", err)
	}

	s.LogInfo(ctx, "Budget transfer rejected", slog.String("transfer_id", transferID))
	return transfer, nil
}

func (s *budgetService) GetTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	return s.budgetRepo.FindTransferByID(ctx, transferID)
}

func (s *budgetService) ListTransfers(ctx context.Context, status *domain.TransferStatus, budgetID *string) ([]domain.BudgetTransfer, error) {
	return s.budgetRepo.ListTransfers(ctx, status, budgetID)
}

// ReviseBudget changes a budget's total under a row lock. The outgoing state
// is snapshotted as a revision before the new amounts are written, so the
// full version history stays reconstructable.
func (s *budgetService) ReviseBudget(ctx context.Context, budgetID string, newTotal decimal.Decimal, reason string, userID string) (*domain.Budget, error) {
	if !newTotal.IsPositive() {
		return nil, fmt.Errorf("%w: total amount must be positive", apperrors.ErrValidation)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: revision reason is required", apperrors.ErrValidation)
	}

	return s.reviseLocked(ctx, budgetID, reason, userID, func(budget *domain.Budget) error {
		if newTotal.LessThan(budget.AllocatedAmount) {
			return &apperrors.BudgetOverrunError{
				BudgetID:  budgetID,
				Available: newTotal.Sub(budget.AllocatedAmount),
				Requested: budget.AllocatedAmount,
			}
		}
		budget.TotalAmount = newTotal
		return nil
	})
}

func (s *budgetService) ListRevisions(ctx context.Context, budgetID string) ([]domain.BudgetRevision, error) {
	if _, err := s.budgetRepo.FindBudgetByID(ctx, budgetID); err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	return s.budgetRepo.ListRevisions(ctx, budgetID)
}

// RestoreRevision applies a prior version's total amount as a fresh revision.
// Restores are additive: the history keeps every version ever written,
// including the restore itself.
func (s *budgetService) RestoreRevision(ctx context.Context, budgetID string, version int, reason string, userID string) (*domain.Budget, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: restore reason is required", apperrors.ErrValidation)
	}

	revision, err := s.budgetRepo.FindRevision(ctx, budgetID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to find revision %d of budget %s: %w", version, budgetID, err)
	}
	if revision.BudgetID != budgetID {
		return nil, fmt.Errorf("%w: revision %s", ErrRevisionMismatch, revision.RevisionID)
	}

	return s.reviseLocked(ctx, budgetID, reason, userID, func(budget *domain.Budget) error {
		if revision.TotalAmount.LessThan(budget.AllocatedAmount) {
			return &apperrors.BudgetOverrunError{
				BudgetID:  budgetID,
				Available: revision.TotalAmount.Sub(budget.AllocatedAmount),
				Requested: budget.AllocatedAmount,
			}
		}
		budget.TotalAmount = revision.TotalAmount
		return nil
	})
}

// reviseLocked locks the budget, snapshots its current state as a revision,
// applies mutate, bumps the version, and commits.
func (s *budgetService) reviseLocked(ctx context.Context, budgetID string, reason string, userID string, mutate func(*domain.Budget) error) (*domain.Budget, error) {
	tx, err := s.budgetRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.budgetRepo.Rollback(ctx, tx) //nolint:errcheck

	budgets, err := s.budgetRepo.FindBudgetsForUpdate(ctx, tx, []string{budgetID})
	if err != nil {
		return nil, fmt.Errorf("failed to lock budget %s: %w", budgetID, err)
	}
	budget, ok := budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, budgetID)
	}

	now := time.Now().UTC()
	snapshot := domain.BudgetRevision{
		RevisionID:      uuid.NewString(),
		BudgetID:        budget.BudgetID,
		Version:         budget.Version,
		TotalAmount:     budget.TotalAmount,
		AllocatedAmount: budget.AllocatedAmount,
		Reason:          reason,
		RevisedBy:       userID,
		RevisedAt:       now,
	}
	if err := s.budgetRepo.SaveRevisionInTx(ctx, tx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save revision for budget %s: %w", budgetID, err)
	}

	if err := mutate(&budget); err != nil {
		return nil, err
	}
	budget.Version++

	if err := s.budgetRepo.UpdateBudgetAmountsInTx(ctx, tx, budget, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update budget amounts", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget %s: %w", budgetID, err)
	}

	if err := s.budgetRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit budget revision: %w", err)
	}

	s.LogInfo(ctx, "Budget revised",
		slog.String("budget_id", budgetID),
		slog.Int("version", budget.Version))
	return &budget, nil
}
