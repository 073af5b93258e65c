package services

import (
	"context"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/fincore/erp-accounting/internal/dto"
)

// AccountSvcFacade exposes the chart-of-accounts hierarchy operations.
type AccountSvcFacade interface {
	// CreateGroup creates a top-level account group.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Account, error)

	// CreateSubGroup creates a sub-group under an existing group.
	CreateSubGroup(ctx context.Context, req dto.CreateSubGroupRequest, creatorUserID string) (*domain.Account, error)

	// CreateLedger creates a postable leaf account under a sub-group.
	CreateLedger(ctx context.Context, req dto.CreateLedgerRequest, creatorUserID string) (*domain.Account, error)

	// GetHierarchy returns the nested Group -> Sub-Group -> Ledger tree with
	// rollup balances computed from descendant ledgers at query time.
	GetHierarchy(ctx context.Context) ([]*domain.AccountNode, error)

	// GetAccountByID retrieves a single account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by id.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts, optionally filtered by level.
	ListAccounts(ctx context.Context, level *domain.AccountLevel) ([]domain.Account, error)

	// UpdateLedger updates a ledger account's mutable details.
	UpdateLedger(ctx context.Context, accountID string, req dto.UpdateLedgerRequest, userID string) (*domain.Account, error)

	// DeleteLedger removes a ledger account, failing with a
	// ReferentialIntegrityError when posted lines reference it.
	DeleteLedger(ctx context.Context, accountID string, userID string) error

	// DeactivateAccount soft-deactivates an account.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}
