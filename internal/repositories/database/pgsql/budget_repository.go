package pgsql

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budgets, transfers and revisions.
func newPgxBudgetRepository(pool *pgxpool.Pool) portsrepo.BudgetRepositoryWithTx {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepositoryWithTx = (*PgxBudgetRepository)(nil)

const budgetColumns = `
	budget_id, budget_name, budget_type, owner_ref, fiscal_year, fiscal_period,
	total_amount, allocated_amount, version, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.BudgetID,
		&b.BudgetName,
		&b.BudgetType,
		&b.OwnerRef,
		&b.FiscalYear,
		&b.FiscalPeriod,
		&b.TotalAmount,
		&b.AllocatedAmount,
		&b.Version,
		&b.IsActive,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveBudget persists a new budget. A unique index on
// (budget_name, budget_type, owner_ref, fiscal_year) rejects duplicates,
// which matters during rollovers.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		budget.BudgetID,
		budget.BudgetName,
		budget.BudgetType,
		budget.OwnerRef,
		budget.FiscalYear,
		budget.FiscalPeriod,
		budget.TotalAmount,
		budget.AllocatedAmount,
		budget.Version,
		budget.IsActive,
		budget.CreatedAt,
		budget.CreatedBy,
		budget.LastUpdatedAt,
		budget.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to insert budget "+budget.BudgetID)
	}
	return nil
}

// FindBudgetByID retrieves a budget by its ID.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1;`
	budget, err := scanBudget(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find budget "+budgetID, err)
	}
	return budget, nil
}

// ListBudgets retrieves budgets filtered by fiscal year, type and/or owner
// reference.
func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, fiscalYear *int, budgetType *domain.BudgetType, ownerRef *string) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE 1=1`
	args := []interface{}{}

	if fiscalYear != nil {
		args = append(args, *fiscalYear)
		query += ` AND fiscal_year = $` + strconv.Itoa(len(args))
	}
	if budgetType != nil {
		args = append(args, *budgetType)
		query += ` AND budget_type = $` + strconv.Itoa(len(args))
	}
	if ownerRef != nil {
		args = append(args, *ownerRef)
		query += ` AND owner_ref = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY fiscal_year DESC, budget_name;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query budgets", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan budget row", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating budget rows", err)
	}
	return budgets, nil
}

// AllocateInTx increases a budget's allocated amount under a row lock. The
// availability check runs against the locked row, so concurrent allocations
// serialize and the sum can never overshoot the total.
func (r *PgxBudgetRepository) AllocateInTx(ctx context.Context, tx pgx.Tx, budgetID string, amount decimal.Decimal, userID string, now time.Time) (*domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE budget_id = $1 FOR UPDATE;`
	budget, err := scanBudget(tx.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock budget "+budgetID, err)
	}

	if budget.AvailableAmount().LessThan(amount) {
		return nil, &apperrors.BudgetOverrunError{
			BudgetID:  budgetID,
			Available: budget.AvailableAmount(),
			Requested: amount,
		}
	}

	budget.AllocatedAmount = budget.AllocatedAmount.Add(amount)
	budget.LastUpdatedAt = now
	budget.LastUpdatedBy = userID

	updateQuery := `
		UPDATE budgets
		SET allocated_amount = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE budget_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, budgetID, budget.AllocatedAmount, now, userID); err != nil {
		return nil, mapPgError(err, "failed to update allocated amount for budget "+budgetID)
	}
	return budget, nil
}

// FindBudgetsForUpdate locks the given budgets for update within a
// transaction, in sorted id order to keep lock acquisition deterministic.
func (r *PgxBudgetRepository) FindBudgetsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error) {
	if len(budgetIDs) == 0 {
		return map[string]domain.Budget{}, nil
	}

	sorted := make([]string, len(budgetIDs))
	copy(sorted, budgetIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE budget_id = ANY($1)
		ORDER BY budget_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock budgets for update", err)
	}
	defer rows.Close()

	budgets := make(map[string]domain.Budget, len(sorted))
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked budget row", err)
		}
		budgets[budget.BudgetID] = *budget
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating locked budget rows", err)
	}

	for _, id := range sorted {
		if _, ok := budgets[id]; !ok {
			return nil, apperrors.ErrNotFound
		}
	}
	return budgets, nil
}

// UpdateBudgetAmountsInTx writes a budget's amounts and version within a transaction.
func (r *PgxBudgetRepository) UpdateBudgetAmountsInTx(ctx context.Context, tx pgx.Tx, budget domain.Budget, userID string, now time.Time) error {
	query := `
		UPDATE budgets
		SET total_amount = $2,
		    allocated_amount = $3,
		    version = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE budget_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		budget.BudgetID,
		budget.TotalAmount,
		budget.AllocatedAmount,
		budget.Version,
		now,
		userID,
	)
	if err != nil {
		return mapPgError(err, "failed to update amounts for budget "+budget.BudgetID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const transferColumns = `
	transfer_id, transfer_number, from_budget_id, to_budget_id, amount, reason,
	fiscal_year, status, requested_by, requested_at, decided_by, decided_at,
	rejection_reason
`

func scanTransfer(row pgx.Row) (*domain.BudgetTransfer, error) {
	var t domain.BudgetTransfer
	var decidedBy, rejectionReason *string
	err := row.Scan(
		&t.TransferID,
		&t.TransferNumber,
		&t.FromBudgetID,
		&t.ToBudgetID,
		&t.Amount,
		&t.Reason,
		&t.FiscalYear,
		&t.Status,
		&t.RequestedBy,
		&t.RequestedAt,
		&decidedBy,
		&t.DecidedAt,
		&rejectionReason,
	)
	if err != nil {
		return nil, err
	}
	if decidedBy != nil {
		t.DecidedBy = *decidedBy
	}
	if rejectionReason != nil {
		t.RejectionReason = *rejectionReason
	}
	return &t, nil
}

// SaveTransfer persists a new pending transfer. The transfer number embeds the
// fiscal year and a per-insert sequence value, e.g. BT-2026-00017.
func (r *PgxBudgetRepository) SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (*domain.BudgetTransfer, error) {
	query := `
		INSERT INTO budget_transfers (
			transfer_id, transfer_number, from_budget_id, to_budget_id, amount,
			reason, fiscal_year, status, requested_by, requested_at
		)
		VALUES ($1, 'BT-' || $7::text || '-' || lpad(nextval('budget_transfer_number_seq')::text, 5, '0'),
		        $2, $3, $4, $5, $6, $8, $9, $10)
		RETURNING transfer_number;
	`
	err := r.Pool.QueryRow(ctx, query,
		transfer.TransferID,
		transfer.FromBudgetID,
		transfer.ToBudgetID,
		transfer.Amount,
		transfer.Reason,
		transfer.FiscalYear,
		transfer.FiscalYear,
		transfer.Status,
		transfer.RequestedBy,
		transfer.RequestedAt,
	).Scan(&transfer.TransferNumber)
	if err != nil {
		return nil, mapPgError(err, "failed to insert transfer "+transfer.TransferID)
	}
	return &transfer, nil
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PgxBudgetRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM budget_transfers WHERE transfer_id = $1;`
	transfer, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transfer "+transferID, err)
	}
	return transfer, nil
}

// FindTransferByIDForUpdate locks a transfer row within a transaction.
func (r *PgxBudgetRepository) FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.BudgetTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM budget_transfers WHERE transfer_id = $1 FOR UPDATE;`
	transfer, err := scanTransfer(tx.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock transfer "+transferID, err)
	}
	return transfer, nil
}

// ListTransfers retrieves transfers, optionally restricted to one status or to
// those touching a budget on either side.
func (r *PgxBudgetRepository) ListTransfers(ctx context.Context, status *domain.TransferStatus, budgetID *string) ([]domain.BudgetTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM budget_transfers WHERE 1=1`
	args := []interface{}{}

	if status != nil {
		args = append(args, *status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if budgetID != nil {
		args = append(args, *budgetID)
		n := strconv.Itoa(len(args))
		query += ` AND (from_budget_id = $` + n + ` OR to_budget_id = $` + n + `)`
	}
	query += ` ORDER BY requested_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transfers", err)
	}
	defer rows.Close()

	transfers := []domain.BudgetTransfer{}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transfer row", err)
		}
		transfers = append(transfers, *transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transfer rows", err)
	}
	return transfers, nil
}

// UpdateTransferStatusInTx records a terminal transition within a transaction.
// The WHERE clause re-checks PENDING so a concurrent decision loses cleanly.
func (r *PgxBudgetRepository) UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error {
	cmdTag, err := tx.Exec(ctx, transferStatusQuery,
		transfer.TransferID,
		transfer.Status,
		transfer.DecidedBy,
		transfer.DecidedAt,
		transfer.RejectionReason,
	)
	if err != nil {
		return mapPgError(err, "failed to update transfer status "+transfer.TransferID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "transfer "+transfer.TransferID+" already decided", apperrors.ErrConflict)
	}
	return nil
}

const transferStatusQuery = `
	UPDATE budget_transfers
	SET status = $2,
	    decided_by = $3,
	    decided_at = $4,
	    rejection_reason = $5
	WHERE transfer_id = $1 AND status = 'PENDING';
`

const revisionColumns = `
	revision_id, budget_id, version, total_amount, allocated_amount, reason,
	revised_by, revised_at
`

// SaveRevisionInTx appends a revision snapshot within a transaction.
func (r *PgxBudgetRepository) SaveRevisionInTx(ctx context.Context, tx pgx.Tx, revision domain.BudgetRevision) error {
	query := `
		INSERT INTO budget_revisions (` + revisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		revision.RevisionID,
		revision.BudgetID,
		revision.Version,
		revision.TotalAmount,
		revision.AllocatedAmount,
		revision.Reason,
		revision.RevisedBy,
		revision.RevisedAt,
	)
	if err != nil {
		return mapPgError(err, "failed to insert revision for budget "+revision.BudgetID)
	}
	return nil
}

// ListRevisions retrieves all revisions of a budget, oldest first.
func (r *PgxBudgetRepository) ListRevisions(ctx context.Context, budgetID string) ([]domain.BudgetRevision, error) {
	query := `SELECT ` + revisionColumns + ` FROM budget_revisions WHERE budget_id = $1 ORDER BY version;`
	rows, err := r.Pool.Query(ctx, query, budgetID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query revisions for budget "+budgetID, err)
	}
	defer rows.Close()

	revisions := []domain.BudgetRevision{}
	for rows.Next() {
		var rev domain.BudgetRevision
		if err := rows.Scan(
			&rev.RevisionID,
			&rev.BudgetID,
			&rev.Version,
			&rev.TotalAmount,
			&rev.AllocatedAmount,
			&rev.Reason,
			&rev.RevisedBy,
			&rev.RevisedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan revision row for budget "+budgetID, err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating revision rows for budget "+budgetID, err)
	}
	return revisions, nil
}

// FindRevision retrieves one revision of a budget by version.
func (r *PgxBudgetRepository) FindRevision(ctx context.Context, budgetID string, version int) (*domain.BudgetRevision, error) {
	query := `SELECT ` + revisionColumns + ` FROM budget_revisions WHERE budget_id = $1 AND version = $2;`
	var rev domain.BudgetRevision
	err := r.Pool.QueryRow(ctx, query, budgetID, version).Scan(
		&rev.RevisionID,
		&rev.BudgetID,
		&rev.Version,
		&rev.TotalAmount,
		&rev.AllocatedAmount,
		&rev.Reason,
		&rev.RevisedBy,
		&rev.RevisedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find revision "+strconv.Itoa(version)+" for budget "+budgetID, err)
	}
	return &rev, nil
}
