package repositories

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BudgetReader defines read operations for budget envelopes.
type BudgetReader interface {
	// FindBudgetByID retrieves a budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)

	// ListBudgets retrieves budgets filtered by fiscal year, type and/or the
	// owning department or project reference.
	ListBudgets(ctx context.Context, fiscalYear *int, budgetType *domain.BudgetType, ownerRef *string) ([]domain.Budget, error)
}

// BudgetWriter defines write operations for budget envelopes.
type BudgetWriter interface {
	// SaveBudget persists a new budget.
	SaveBudget(ctx context.Context, budget domain.Budget) error

	// AllocateInTx increases a budget's allocated amount under a row lock,
	// failing if the increase would drive the available amount negative.
	AllocateInTx(ctx context.Context, tx pgx.Tx, budgetID string, amount decimal.Decimal, userID string, now time.Time) (*domain.Budget, error)

	// FindBudgetsForUpdate locks the given budgets for update within a
	// transaction, in deterministic id order.
	FindBudgetsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error)

	// UpdateBudgetAmountsInTx writes a budget's total and allocated amounts
	// within a transaction.
	UpdateBudgetAmountsInTx(ctx context.Context, tx pgx.Tx, budget domain.Budget, userID string, now time.Time) error
}

// TransferReader defines read operations for budget transfers.
type TransferReader interface {
	// FindTransferByID retrieves a transfer by its unique identifier.
	FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error)

	// FindTransferByIDForUpdate locks a transfer row within a transaction.
	FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.BudgetTransfer, error)

	// ListTransfers retrieves transfers, optionally restricted to one status
	// or to those touching a budget.
	ListTransfers(ctx context.Context, status *domain.TransferStatus, budgetID *string) ([]domain.BudgetTransfer, error)
}

// TransferWriter defines write operations for budget transfers.
type TransferWriter interface {
	// SaveTransfer persists a new pending transfer, assigning its number.
	SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (*domain.BudgetTransfer, error)

	// UpdateTransferStatusInTx records a terminal transition within a transaction.
	UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error
}

// RevisionReader defines read operations for budget revisions.
type RevisionReader interface {
	// ListRevisions retrieves all revisions of a budget, oldest first.
	ListRevisions(ctx context.Context, budgetID string) ([]domain.BudgetRevision, error)

	// FindRevision retrieves one revision of a budget by version.
	FindRevision(ctx context.Context, budgetID string, version int) (*domain.BudgetRevision, error)
}

// RevisionWriter defines write operations for budget revisions.
type RevisionWriter interface {
	// SaveRevisionInTx appends a revision snapshot within a transaction.
	SaveRevisionInTx(ctx context.Context, tx pgx.Tx, revision domain.BudgetRevision) error
}

// BudgetRepositoryFacade combines all budget-related repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
	TransferReader
	TransferWriter
	RevisionReader
	RevisionWriter
}

// BudgetRepositoryWithTx extends BudgetRepositoryFacade with transaction capabilities.
type BudgetRepositoryWithTx interface {
	BudgetRepositoryFacade
	TransactionManager
}
