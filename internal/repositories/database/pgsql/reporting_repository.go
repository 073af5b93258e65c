package pgsql

import (
	"context"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates the read-side repository for statement queries.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// Balances are reconstructed from the posting log rather than the cached
// balance column, so reports can be run as-of any past date. Drafts never
// count. The inner sum is raw debit-minus-credit; the outer CASE flips it to
// the account's natural polarity.
const derivedBalanceQuery = `
	SELECT a.account_id, a.code, a.name, a.account_type, a.sub_type, a.balance_type,
	       a.opening_balance + COALESCE(
	           CASE WHEN a.balance_type = 'DEBIT' THEN s.net ELSE -s.net END, 0)
	FROM accounts a
	LEFT JOIN (
		SELECT l.account_id, SUM(l.debit - l.credit) AS net
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE j.status != 'DRAFT' AND j.journal_date <= $1
		GROUP BY l.account_id
	) s ON s.account_id = a.account_id
	WHERE a.level = 'LEDGER' AND a.is_active
	ORDER BY a.code;
`

func (r *PgxReportingRepository) queryDerivedBalances(ctx context.Context, asOf time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	rows, err := r.Pool.Query(ctx, derivedBalanceQuery, asOf)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query derived balances", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	balances := map[string]decimal.Decimal{}
	for rows.Next() {
		var a domain.Account
		var balance decimal.Decimal
		if err := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.AccountType, &a.SubType, &a.BalanceType, &balance); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan derived balance row", err)
		}
		a.Level = domain.LevelLedger
		accounts = append(accounts, a)
		balances[a.AccountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating derived balance rows", err)
	}
	return accounts, balances, nil
}

// GetTrialBalanceData returns per-account balances from postings dated on or
// before asOf, presented on the account's natural-polarity column. Accounts
// with a zero derived balance are omitted.
func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	accounts, balances, err := r.queryDerivedBalances(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := []domain.TrialBalanceRow{}
	for _, a := range accounts {
		balance := balances[a.AccountID]
		if balance.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   a.AccountID,
			Code:        a.Code,
			AccountName: a.Name,
			AccountType: a.AccountType,
		}
		// A negative natural balance flips to the opposite column.
		onNaturalSide := balance.IsPositive()
		if (a.BalanceType == domain.DebitBalance) == onNaturalSide {
			row.Debit = balance.Abs()
		} else {
			row.Credit = balance.Abs()
		}
		result = append(result, row)
	}
	return result, nil
}

// GetLedgerBalances returns each active ledger account and its derived signed
// balance from postings dated on or before asOf.
func (r *PgxReportingRepository) GetLedgerBalances(ctx context.Context, asOf time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	return r.queryDerivedBalances(ctx, asOf)
}

// GetPeriodActivity returns per-account signed activity from postings within
// [from, to] for accounts of the given types. Opening balances are excluded:
// period statements measure flow, not position.
func (r *PgxReportingRepository) GetPeriodActivity(ctx context.Context, from, to time.Time, types []domain.AccountType) ([]domain.Account, map[string]decimal.Decimal, error) {
	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}

	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, a.sub_type, a.balance_type,
		       COALESCE(CASE WHEN a.balance_type = 'DEBIT' THEN s.net ELSE -s.net END, 0)
		FROM accounts a
		LEFT JOIN (
			SELECT l.account_id, SUM(l.debit - l.credit) AS net
			FROM journal_lines l
			JOIN journal_entries j ON l.journal_id = j.journal_id
			WHERE j.status != 'DRAFT' AND j.journal_date >= $1 AND j.journal_date <= $2
			GROUP BY l.account_id
		) s ON s.account_id = a.account_id
		WHERE a.level = 'LEDGER' AND a.is_active AND a.account_type = ANY($3)
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, from, to, typeStrings)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query period activity", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	activity := map[string]decimal.Decimal{}
	for rows.Next() {
		var a domain.Account
		var amount decimal.Decimal
		if err := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.AccountType, &a.SubType, &a.BalanceType, &amount); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan period activity row", err)
		}
		a.Level = domain.LevelLedger
		accounts = append(accounts, a)
		activity[a.AccountID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating period activity rows", err)
	}
	return accounts, activity, nil
}

// GetCashMovements sums debits (inflows) and credits (outflows) on cash-like
// accounts within [from, to], bucketed by the largest counterparty line in
// the same entry: equity and loan counterparties classify as financing,
// long-lived asset counterparties as investing, everything else as operating.
func (r *PgxReportingRepository) GetCashMovements(ctx context.Context, from, to time.Time) (map[string]domain.ActivityNet, error) {
	query := `
		SELECT
			CASE
				WHEN cp.account_type = 'EQUITY'
				  OR cp.sub_type IN ('long_term_loan', 'short_term_loan', 'loan', 'dividend')
					THEN 'financing'
				WHEN cp.sub_type IN ('fixed_asset', 'property', 'equipment', 'vehicle',
				                     'intangible_asset', 'goodwill', 'patent', 'investment')
					THEN 'investing'
				ELSE 'operating'
			END AS bucket,
			COALESCE(SUM(l.debit), 0),
			COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		JOIN accounts a ON l.account_id = a.account_id
		LEFT JOIN LATERAL (
			SELECT a2.account_type, lower(a2.sub_type) AS sub_type
			FROM journal_lines l2
			JOIN accounts a2 ON l2.account_id = a2.account_id
			WHERE l2.journal_id = l.journal_id
			  AND l2.line_id != l.line_id
			  AND lower(a2.sub_type) NOT IN ('cash', 'bank')
			ORDER BY GREATEST(l2.debit, l2.credit) DESC
			LIMIT 1
		) cp ON TRUE
		WHERE j.status != 'DRAFT'
		  AND j.journal_date >= $1 AND j.journal_date <= $2
		  AND lower(a.sub_type) IN ('cash', 'bank')
		GROUP BY bucket;
	`
	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query cash movements", err)
	}
	defer rows.Close()

	movements := map[string]domain.ActivityNet{}
	for rows.Next() {
		var bucket string
		var inflows, outflows decimal.Decimal
		if err := rows.Scan(&bucket, &inflows, &outflows); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan cash movement row", err)
		}
		movements[bucket] = domain.ActivityNet{
			Inflows:  inflows,
			Outflows: outflows,
			Net:      inflows.Sub(outflows),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating cash movement rows", err)
	}
	return movements, nil
}

// GetCashBalance returns the summed balance of cash-like accounts from
// postings dated strictly before the given date, opening balances included.
// Cash accounts are debit-natural, so the raw debit-minus-credit sum is
// already signed correctly.
func (r *PgxReportingRepository) GetCashBalance(ctx context.Context, before time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(a.opening_balance), 0) + COALESCE(SUM(s.net), 0)
		FROM accounts a
		LEFT JOIN (
			SELECT l.account_id, SUM(l.debit - l.credit) AS net
			FROM journal_lines l
			JOIN journal_entries j ON l.journal_id = j.journal_id
			WHERE j.status != 'DRAFT' AND j.journal_date < $1
			GROUP BY l.account_id
		) s ON s.account_id = a.account_id
		WHERE a.level = 'LEDGER' AND a.is_active
		  AND lower(a.sub_type) IN ('cash', 'bank');
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, before).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to query cash balance", err)
	}
	return balance, nil
}
