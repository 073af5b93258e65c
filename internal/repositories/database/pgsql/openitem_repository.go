package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxOpenItemRepository struct {
	BaseRepository
}

// newPgxOpenItemRepository creates a new repository for invoices and bills.
func newPgxOpenItemRepository(pool *pgxpool.Pool) portsrepo.OpenItemRepositoryFacade {
	return &PgxOpenItemRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OpenItemRepositoryFacade = (*PgxOpenItemRepository)(nil)

const openItemColumns = `
	item_id, kind, item_number, party_name, issue_date, due_date, amount,
	amount_paid, status, created_at, created_by, last_updated_at, last_updated_by
`

func scanOpenItem(row pgx.Row) (*domain.OpenItem, error) {
	var i domain.OpenItem
	err := row.Scan(
		&i.ItemID,
		&i.Kind,
		&i.ItemNumber,
		&i.PartyName,
		&i.IssueDate,
		&i.DueDate,
		&i.Amount,
		&i.AmountPaid,
		&i.Status,
		&i.CreatedAt,
		&i.CreatedBy,
		&i.LastUpdatedAt,
		&i.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// SaveOpenItem persists a new item.
func (r *PgxOpenItemRepository) SaveOpenItem(ctx context.Context, item domain.OpenItem) error {
	query := `
		INSERT INTO open_items (` + openItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.Kind,
		item.ItemNumber,
		item.PartyName,
		item.IssueDate,
		item.DueDate,
		item.Amount,
		item.AmountPaid,
		item.Status,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to insert open item "+item.ItemID)
	}
	return nil
}

// FindOpenItemByID retrieves an item by its ID.
func (r *PgxOpenItemRepository) FindOpenItemByID(ctx context.Context, itemID string) (*domain.OpenItem, error) {
	query := `SELECT ` + openItemColumns + ` FROM open_items WHERE item_id = $1;`
	item, err := scanOpenItem(r.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find open item "+itemID, err)
	}
	return item, nil
}

// ListOpenItems retrieves the unsettled items of one kind, oldest due first.
func (r *PgxOpenItemRepository) ListOpenItems(ctx context.Context, kind domain.OpenItemKind) ([]domain.OpenItem, error) {
	query := `
		SELECT ` + openItemColumns + `
		FROM open_items
		WHERE kind = $1 AND status IN ('OPEN', 'PARTIALLY_PAID')
		ORDER BY due_date;
	`
	rows, err := r.Pool.Query(ctx, query, kind)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open items", err)
	}
	defer rows.Close()

	items := []domain.OpenItem{}
	for rows.Next() {
		item, err := scanOpenItem(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan open item row", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating open item rows", err)
	}
	return items, nil
}

// ApplyPayment adds a payment to an open item in a single guarded statement.
// The WHERE clause re-checks openness and headroom against the current row,
// so two racing payments serialize on the row and the second one fails the
// guard instead of overshooting the amount. A guard miss is reported as
// ErrConflict; the caller re-reads to find out why.
func (r *PgxOpenItemRepository) ApplyPayment(ctx context.Context, itemID string, amount decimal.Decimal, userID string, now time.Time) (*domain.OpenItem, error) {
	query := `
		UPDATE open_items
		SET amount_paid = amount_paid + $2,
		    status = CASE WHEN amount_paid + $2 >= amount THEN 'PAID' ELSE 'PARTIALLY_PAID' END,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE item_id = $1
		  AND status IN ('OPEN', 'PARTIALLY_PAID')
		  AND amount_paid + $2 <= amount
		RETURNING ` + openItemColumns + `;
	`
	item, err := scanOpenItem(r.Pool.QueryRow(ctx, query, itemID, amount, now, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConflict
		}
		return nil, apperrors.NewAppError(500, "failed to apply payment to open item "+itemID, err)
	}
	return item, nil
}
