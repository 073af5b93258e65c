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
	ErrNotAGroup    = errors.New("parent account is not a group")
	ErrNotASubGroup = errors.New("parent account is not a sub-group")
	ErrNotALedger   = errors.New("account is not a ledger account")
)

// accountService owns the three-level chart of accounts.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account hierarchy service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// checkCodeAvailable enforces code uniqueness across the whole hierarchy,
// regardless of level.
func (s *accountService) checkCodeAvailable(ctx context.Context, code string) error {
	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check account code %s: %w", code, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, code)
	}
	return nil
}

func (s *accountService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.checkCodeAvailable(ctx, req.Code); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        req.Code,
		Name:        req.Name,
		Level:       domain.LevelGroup,
		AccountType: req.AccountType,
		BalanceType: domain.NaturalBalanceFor(req.AccountType),
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account group", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account group: %w", err)
	}

	s.LogInfo(ctx, "Account group created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) CreateSubGroup(ctx context.Context, req dto.CreateSubGroupRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.checkCodeAvailable(ctx, req.Code); err != nil {
		return nil, err
	}

	parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent group %s: %w", req.ParentGroupID, err)
	}
	if parent.Level != domain.LevelGroup {
		return nil, fmt.Errorf("%w: %s", ErrNotAGroup, parent.AccountID)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            req.Code,
		Name:            req.Name,
		Level:           domain.LevelSubGroup,
		ParentAccountID: &parent.AccountID,
		AccountType:     parent.AccountType,
		BalanceType:     parent.BalanceType,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account sub-group", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account sub-group: %w", err)
	}

	s.LogInfo(ctx, "Account sub-group created", slog.String("account_id", account.AccountID), slog.String("parent_id", parent.AccountID))
	return &account, nil
}

func (s *accountService) CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, creatorUserID string) (*domain.Account, error) {
	if err := s.checkCodeAvailable(ctx, req.Code); err != nil {
		return nil, err
	}

	parent, err := s.accountRepo.FindAccountByID(ctx, req.ParentSubGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent sub-group %s: %w", req.ParentSubGroupID, err)
	}
	if parent.Level != domain.LevelSubGroup {
		return nil, fmt.Errorf("%w: %s", ErrNotASubGroup, parent.AccountID)
	}

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            req.Code,
		Name:            req.Name,
		Level:           domain.LevelLedger,
		ParentAccountID: &parent.AccountID,
		AccountType:     parent.AccountType,
		SubType:         req.SubType,
		BalanceType:     req.BalanceType,
		OpeningBalance:  req.OpeningBalance,
		Balance:         req.OpeningBalance,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save ledger account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save ledger account: %w", err)
	}

	s.LogInfo(ctx, "Ledger account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetHierarchy assembles the nested Group -> Sub-Group -> Ledger tree.
// Rollup balances on non-leaf nodes are summed from descendant ledgers here,
// at query time; they are never stored.
func (s *accountService) GetHierarchy(ctx context.Context) ([]*domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for hierarchy")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for i := range accounts {
		nodes[accounts[i].AccountID] = &domain.AccountNode{Account: accounts[i]}
	}

	var roots []*domain.AccountNode
	for _, node := range nodes {
		if node.ParentAccountID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentAccountID]
		if !ok {
			// Orphaned node: parent was deactivated or filtered out. Surface
			// it at the root rather than dropping it silently.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	for _, root := range roots {
		rollupBalances(root)
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i].Code < roots[j].Code })
	for _, root := range roots {
		sortChildren(root)
	}

	return roots, nil
}

// rollupBalances computes a node's balance as the sum of its descendant
// ledgers.
func rollupBalances(node *domain.AccountNode) decimal.Decimal {
	if node.Level == domain.LevelLedger {
		node.RollupBalance = node.Balance
		return node.Balance
	}
	total := decimal.Zero
	for _, child := range node.Children {
		total = total.Add(rollupBalances(child))
	}
	node.RollupBalance = total
	return total
}

func sortChildren(node *domain.AccountNode) {
	sort.Slice(node.Children, func(i, j int) bool { return node.Children[i].Code < node.Children[j].Code })
	for _, child := range node.Children {
		sortChildren(child)
	}
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

func (s *accountService) ListAccounts(ctx context.Context, level *domain.AccountLevel) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, level)
}

func (s *accountService) UpdateLedger(ctx context.Context, accountID string, req dto.UpdateLedgerRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.Level != domain.LevelLedger {
		return nil, fmt.Errorf("%w: %s", ErrNotALedger, accountID)
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.SubType != nil {
		account.SubType = *req.SubType
		updated = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update ledger account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update ledger account: %w", err)
	}

	s.LogInfo(ctx, "Ledger account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeleteLedger removes a ledger account. Accounts referenced by posted
// journal lines are never deleted; callers should deactivate them instead.
func (s *accountService) DeleteLedger(ctx context.Context, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.Level != domain.LevelLedger {
		return fmt.Errorf("%w: %s", ErrNotALedger, accountID)
	}

	referenced, err := s.accountRepo.HasPostedLines(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check posted lines for account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to check postings for account %s: %w", accountID, err)
	}
	if referenced {
		return &apperrors.ReferentialIntegrityError{AccountID: accountID}
	}

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		s.LogError(ctx, err, "Failed to delete ledger account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to delete ledger account: %w", err)
	}

	s.LogInfo(ctx, "Ledger account deleted", slog.String("account_id", accountID), slog.String("deleted_by", userID))
	return nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
