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
	"github.com/fincore/erp-accounting/internal/utils/accounting"
)

var (
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrNonPostableAccount = errors.New("account is not a ledger account")
	ErrNotPosted          = errors.New("journal entry is not posted")
	ErrAlreadyReversed    = errors.New("journal entry is already reversed")
)

// journalService owns the double-entry journal lifecycle: draft, post,
// reverse. It is the only writer of account balances.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewJournalService creates a new journal engine service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo, accountRepo: accountRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines into domain lines with fresh ids.
func buildLines(journalID string, reqLines []dto.CreateJournalLineRequest) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, rl := range reqLines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			JournalID:   journalID,
			AccountID:   rl.AccountID,
			Debit:       rl.Debit,
			Credit:      rl.Credit,
			Description: rl.Description,
		}
	}
	return lines
}

// validateLines enforces everything that makes an entry postable: at least
// two lines, one-sided positive amounts, balanced totals, and every line
// pointing at an active ledger account.
func (s *journalService) validateLines(ctx context.Context, lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: a journal entry needs at least two lines", apperrors.ErrValidation)
	}

	if err := accounting.ValidateLineSides(lines); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	debitTotal, creditTotal := accounting.EntryTotals(lines)
	if !accounting.IsBalanced(debitTotal, creditTotal) {
		return &apperrors.UnbalancedEntryError{DebitTotal: debitTotal, CreditTotal: creditTotal}
	}

	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		accountIDs = append(accountIDs, line.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to load line accounts: %w", err)
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if account.IsGroup() {
			return fmt.Errorf("%w: %s", ErrNonPostableAccount, id)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: %s", ErrInactiveAccount, id)
		}
	}
	return nil
}

func (s *journalService) CreateDraft(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalEntry, error) {
	journalID := uuid.NewString()
	lines := buildLines(journalID, req.Lines)

	if err := s.validateLines(ctx, lines); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		JournalID:   journalID,
		JournalDate: req.Date,
		Reference:   req.Reference,
		Description: req.Description,
		Status:      domain.Draft,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	saved, err := s.journalRepo.SaveDraft(ctx, entry)
	if err != nil {
		s.LogError(ctx, err, "Failed to save draft entry", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft journal entry created",
		slog.String("journal_id", saved.JournalID),
		slog.String("entry_number", saved.EntryNumber))
	return saved, nil
}

func (s *journalService) GetEntry(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry", slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListJournalsParams) ([]domain.JournalEntry, *string, error) {
	entries, nextToken, err := s.journalRepo.ListJournals(ctx, params.Status, params.From, params.To, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nextToken, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	if entry.Status != domain.Draft {
		return nil, &apperrors.ImmutableEntryError{JournalID: journalID}
	}

	if req.Date != nil {
		entry.JournalDate = *req.Date
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
	}
	if req.Lines != nil {
		entry.Lines = buildLines(journalID, req.Lines)
	}

	if err := s.validateLines(ctx, entry.Lines); err != nil {
		return nil, err
	}

	entry.LastUpdatedAt = time.Now().UTC()
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateDraft(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update draft entry", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to update draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft journal entry updated", slog.String("journal_id", journalID))
	return entry, nil
}

func (s *journalService) DeleteDraft(ctx context.Context, journalID string, userID string) error {
	entry, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	if entry.Status != domain.Draft {
		return &apperrors.ImmutableEntryError{JournalID: journalID}
	}

	if err := s.journalRepo.DeleteDraft(ctx, journalID); err != nil {
		s.LogError(ctx, err, "Failed to delete draft entry", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to delete draft entry: %w", err)
	}

	s.LogInfo(ctx, "Draft journal entry deleted", slog.String("journal_id", journalID), slog.String("deleted_by", userID))
	return nil
}

// balanceChanges computes the signed balance delta per account for a set of
// lines, netting multiple lines hitting the same account.
func (s *journalService) balanceChanges(ctx context.Context, lines []domain.JournalLine) (map[string]decimal.Decimal, error) {
	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load line accounts: %w", err)
	}

	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, line.AccountID)
		}
		signed, err := accounting.SignedAmount(line, account.BalanceType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(signed)
	}
	return changes, nil
}

// Post transitions the entry DRAFT -> POSTED. The status check and the
// balance application happen inside one repository transaction so two
// concurrent posts of the same entry cannot both apply deltas.
func (s *journalService) Post(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	if entry.Status != domain.Draft {
		return nil, &apperrors.AlreadyPostedError{JournalID: journalID}
	}

	// Re-validate: the chart of accounts may have changed since the draft
	// was created.
	if err := s.validateLines(ctx, entry.Lines); err != nil {
		return nil, err
	}

	changes, err := s.balanceChanges(ctx, entry.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.PostJournal(ctx, journalID, changes, userID, now); err != nil {
		var alreadyPosted *apperrors.AlreadyPostedError
		if errors.As(err, &alreadyPosted) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to post journal entry", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to post journal entry %s: %w", journalID, err)
	}

	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = userID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("journal_id", journalID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("posted_by", userID))
	return entry, nil
}

// Reverse creates a compensating entry with debits and credits swapped and
// posts it immediately. The original entry is never edited; it only gains the
// REVERSED status and a link to the reversal.
func (s *journalService) Reverse(ctx context.Context, journalID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal entry %s: %w", journalID, err)
	}
	if original.Status == domain.Draft {
		return nil, fmt.Errorf("%w: %s", ErrNotPosted, journalID)
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, journalID)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	lines := make([]domain.JournalLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			JournalID:   reversalID,
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
		}
	}

	reversal := domain.JournalEntry{
		JournalID:         reversalID,
		JournalDate:       now,
		Reference:         original.Reference,
		Description:       fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		Status:            domain.Posted,
		PostedAt:          &now,
		PostedBy:          userID,
		OriginalJournalID: &original.JournalID,
		Lines:             lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	changes, err := s.balanceChanges(ctx, lines)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SavePostedReversal(ctx, reversal, original.JournalID, changes); err != nil {
		s.LogError(ctx, err, "Failed to reverse journal entry", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to reverse journal entry %s: %w", journalID, err)
	}

	// Re-read to pick up the entry number assigned on insert.
	saved, err := s.journalRepo.FindJournalByID(ctx, reversalID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reversal entry %s: %w", reversalID, err)
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("journal_id", journalID),
		slog.String("reversal_id", reversalID),
		slog.String("reversed_by", userID))
	return saved, nil
}

func (s *journalService) GetAccountLedger(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.LedgerRow, *string, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	// Inactive ledgers keep their history readable; only non-leaf accounts
	// have no ledger view.
	if account.IsGroup() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNonPostableAccount, accountID)
	}

	rows, token, err := s.journalRepo.FindPostedLinesByAccount(ctx, accountID, from, to, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to read account ledger", slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to read ledger for account %s: %w", accountID, err)
	}
	return rows, token, nil
}

// ReconcileAccount cross-checks the cached balance on an account row against
// the balance reconstructed from the posting log. Posting writes both inside
// one transaction, so the two must agree exactly; a difference means the
// stored state has drifted and is logged as an integrity warning.
func (s *journalService) ReconcileAccount(ctx context.Context, accountID string) (*domain.AccountReconciliation, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.IsGroup() {
		return nil, fmt.Errorf("%w: %s", ErrNonPostableAccount, accountID)
	}

	now := time.Now().UTC()
	reconstructed, err := s.journalRepo.SumPostedLinesByAccount(ctx, accountID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to reconstruct account balance", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to reconstruct balance for account %s: %w", accountID, err)
	}

	difference := account.Balance.Sub(reconstructed)
	result := &domain.AccountReconciliation{
		AccountID:            accountID,
		AsOf:                 now,
		CachedBalance:        account.Balance,
		ReconstructedBalance: reconstructed,
		Difference:           difference,
		Consistent:           difference.IsZero(),
	}

	if !result.Consistent {
		warning := &apperrors.ReportIntegrityWarning{Report: "account_reconciliation", Difference: difference}
		s.LogWarn(ctx, warning.Error(), slog.String("account_id", accountID))
	}
	return result, nil
}
