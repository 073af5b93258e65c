package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/dto"
)

var ErrItemNotOpen = errors.New("open item is already settled or void")

// openItemService manages the invoices and bills behind AR/AP aging.
type openItemService struct {
	BaseService
	openItemRepo portsrepo.OpenItemRepositoryFacade
}

// NewOpenItemService creates a new open item service.
func NewOpenItemService(openItemRepo portsrepo.OpenItemRepositoryFacade) portssvc.OpenItemSvcFacade {
	return &openItemService{openItemRepo: openItemRepo}
}

var _ portssvc.OpenItemSvcFacade = (*openItemService)(nil)

func (s *openItemService) CreateOpenItem(ctx context.Context, req dto.CreateOpenItemRequest, creatorUserID string) (*domain.OpenItem, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: item amount must be positive", apperrors.ErrValidation)
	}
	if req.DueDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: due date must not precede issue date", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	item := domain.OpenItem{
		ItemID:     uuid.NewString(),
		Kind:       req.Kind,
		ItemNumber: req.ItemNumber,
		PartyName:  req.PartyName,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Amount:     req.Amount,
		AmountPaid: decimal.Zero,
		Status:     domain.ItemOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.openItemRepo.SaveOpenItem(ctx, item); err != nil {
		s.LogError(ctx, err, "Failed to save open item", slog.String("item_number", req.ItemNumber))
		return nil, fmt.Errorf("failed to save open item: %w", err)
	}

	s.LogInfo(ctx, "Open item created",
		slog.String("item_id", item.ItemID),
		slog.String("kind", string(item.Kind)))
	return &item, nil
}

// RecordPayment applies a payment to an open item. The openness and
// overpayment checks run inside the repository's guarded update, so two
// racing payments cannot jointly exceed the outstanding amount; when the
// guard rejects, the item is re-read to report the precise reason.
func (s *openItemService) RecordPayment(ctx context.Context, itemID string, amount decimal.Decimal, userID string) (*domain.OpenItem, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	item, err := s.openItemRepo.ApplyPayment(ctx, itemID, amount, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			current, findErr := s.openItemRepo.FindOpenItemByID(ctx, itemID)
			if findErr != nil {
				return nil, fmt.Errorf("failed to find open item %s: %w", itemID, findErr)
			}
			if !current.IsOpen() {
				return nil, fmt.Errorf("%w: %s", ErrItemNotOpen, itemID)
			}
			return nil, fmt.Errorf("%w: payment %s exceeds outstanding %s",
				apperrors.ErrValidation, amount.String(), current.Outstanding().String())
		}
		s.LogError(ctx, err, "Failed to record payment", slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to record payment on item %s: %w", itemID, err)
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("item_id", itemID),
		slog.String("amount", amount.String()),
		slog.String("status", string(item.Status)))
	return item, nil
}

func (s *openItemService) ListOpenItems(ctx context.Context, kind domain.OpenItemKind) ([]domain.OpenItem, error) {
	return s.openItemRepo.ListOpenItems(ctx, kind)
}
