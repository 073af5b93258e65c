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
	"github.com/fincore/erp-accounting/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const journalColumns = `
	journal_id, entry_number, journal_date, reference, description, status,
	posted_at, posted_by, original_journal_id, reversing_journal_id,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanJournal(row pgx.Row) (*domain.JournalEntry, error) {
	var j domain.JournalEntry
	var postedBy *string
	err := row.Scan(
		&j.JournalID,
		&j.EntryNumber,
		&j.JournalDate,
		&j.Reference,
		&j.Description,
		&j.Status,
		&j.PostedAt,
		&postedBy,
		&j.OriginalJournalID,
		&j.ReversingJournalID,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if postedBy != nil {
		j.PostedBy = *postedBy
	}
	return &j, nil
}

// insertLines batches the line inserts for one entry within a transaction.
func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine, userID string, now time.Time) error {
	query := `
		INSERT INTO journal_lines (
			line_id, journal_id, account_id, debit, credit, description,
			running_balance, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.LineID,
			line.JournalID,
			line.AccountID,
			line.Debit,
			line.Credit,
			line.Description,
			line.RunningBalance,
			now,
			userID,
			now,
			userID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert journal lines", err)
	}
	return nil
}

// SaveDraft persists a new draft entry and its lines. The entry number comes
// from the journal_entry_number_seq sequence so numbers are dense and unique
// across all writers.
func (r *PgxJournalRepository) SaveDraft(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	query := `
		INSERT INTO journal_entries (
			journal_id, entry_number, journal_date, reference, description, status,
			original_journal_id, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, 'JE' || lpad(nextval('journal_entry_number_seq')::text, 6, '0'),
		        $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING entry_number;
	`
	err = tx.QueryRow(ctx, query,
		entry.JournalID,
		entry.JournalDate,
		entry.Reference,
		entry.Description,
		entry.Status,
		entry.OriginalJournalID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	).Scan(&entry.EntryNumber)
	if err != nil {
		return nil, mapPgError(err, "failed to insert journal entry "+entry.JournalID)
	}

	if err := insertLines(ctx, tx, entry.Lines, entry.CreatedBy, entry.CreatedAt); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindJournalByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE journal_id = $1;`
	entry, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal entry "+journalID, err)
	}

	lines, err := r.findLinesByJournalID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *PgxJournalRepository) findLinesByJournalID(ctx context.Context, journalID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, journal_id, account_id, debit, credit, description,
		       running_balance, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for journal "+journalID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(
			&l.LineID,
			&l.JournalID,
			&l.AccountID,
			&l.Debit,
			&l.Credit,
			&l.Description,
			&l.RunningBalance,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for journal "+journalID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for journal "+journalID, err)
	}
	return lines, nil
}

// ListJournals retrieves a paginated list of entries using token-based
// pagination, ordered by journal date descending with creation time as the
// tie-breaker.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, status *domain.JournalStatus, from, to *time.Time, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE 1=1`
	args := []interface{}{}

	if status != nil {
		args = append(args, *status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += ` AND journal_date >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND journal_date <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (journal_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY journal_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		entry, err := scanJournal(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

// UpdateDraft replaces a draft entry's header fields and lines. The lines are
// rewritten wholesale; diffing them buys nothing at draft scale.
func (r *PgxJournalRepository) UpdateDraft(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	query := `
		UPDATE journal_entries
		SET journal_date = $2,
		    reference = $3,
		    description = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE journal_id = $1 AND status = 'DRAFT';
	`
	cmdTag, err := tx.Exec(ctx, query,
		entry.JournalID,
		entry.JournalDate,
		entry.Reference,
		entry.Description,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal entry "+entry.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return &apperrors.ImmutableEntryError{JournalID: entry.JournalID}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, entry.JournalID); err != nil {
		return apperrors.NewAppError(500, "failed to clear lines for journal "+entry.JournalID, err)
	}
	if err := insertLines(ctx, tx, entry.Lines, entry.LastUpdatedBy, entry.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteDraft removes a draft entry and its lines.
func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, journalID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1;`, journalID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for journal "+journalID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE journal_id = $1 AND status = 'DRAFT';`, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete journal entry "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return &apperrors.ImmutableEntryError{JournalID: journalID}
	}

	return r.Commit(ctx, tx)
}

// PostJournal atomically transitions the entry to POSTED and applies the
// balance deltas. The entry row is locked and its status re-checked inside
// the transaction; a concurrent post that got there first surfaces as
// AlreadyPostedError with no balance effect.
func (r *PgxJournalRepository) PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	var status domain.JournalStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM journal_entries WHERE journal_id = $1 FOR UPDATE;`,
		journalID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock journal entry "+journalID, err)
	}
	if status != domain.Draft {
		return &apperrors.AlreadyPostedError{JournalID: journalID}
	}

	if err := r.applyPosting(ctx, tx, journalID, balanceChanges, userID, now); err != nil {
		return err
	}

	query := `
		UPDATE journal_entries
		SET status = 'POSTED',
		    posted_at = $2,
		    posted_by = $3,
		    last_updated_at = $2,
		    last_updated_by = $3
		WHERE journal_id = $1;
	`
	if _, err := tx.Exec(ctx, query, journalID, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to mark journal entry posted "+journalID, err)
	}

	return r.Commit(ctx, tx)
}

// applyPosting locks the affected accounts, applies the deltas, and writes the
// per-line running balances for the entry's lines.
func (r *PgxJournalRepository) applyPosting(ctx context.Context, tx pgx.Tx, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}

	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return err
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	return r.writeRunningBalances(ctx, tx, journalID, lockedAccounts)
}

// writeRunningBalances stamps each of the entry's lines with the account
// balance after that line was applied, in deterministic line order.
func (r *PgxJournalRepository) writeRunningBalances(ctx context.Context, tx pgx.Tx, journalID string, lockedAccounts map[string]domain.Account) error {
	rows, err := tx.Query(ctx, `
		SELECT line_id, account_id, debit, credit
		FROM journal_lines
		WHERE journal_id = $1
		ORDER BY line_id;
	`, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query lines for posting "+journalID, err)
	}

	type lineRow struct {
		lineID    string
		accountID string
		debit     decimal.Decimal
		credit    decimal.Decimal
	}
	lines := []lineRow{}
	for rows.Next() {
		var l lineRow
		if err := rows.Scan(&l.lineID, &l.accountID, &l.debit, &l.credit); err != nil {
			rows.Close()
			return apperrors.NewAppError(500, "failed to scan line for posting "+journalID, err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating lines for posting "+journalID, err)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].lineID < lines[j].lineID })

	running := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accountID, account := range lockedAccounts {
		running[accountID] = account.Balance
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		account, ok := lockedAccounts[l.accountID]
		if !ok {
			return apperrors.NewAppError(500, "account "+l.accountID+" missing from posting lock set", nil)
		}
		signed := l.debit.Sub(l.credit)
		if account.BalanceType == domain.CreditBalance {
			signed = signed.Neg()
		}
		running[l.accountID] = running[l.accountID].Add(signed)
		batch.Queue(`UPDATE journal_lines SET running_balance = $2 WHERE line_id = $1;`, l.lineID, running[l.accountID])
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to write running balances for "+journalID, err)
	}
	return nil
}

// SavePostedReversal persists an already-balanced reversal entry as POSTED,
// applies its balance deltas, and links it to the original entry, all in one
// transaction.
func (r *PgxJournalRepository) SavePostedReversal(ctx context.Context, reversal domain.JournalEntry, originalJournalID string, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	// Lock the original and re-check the status so two concurrent reversals
	// cannot both apply compensating deltas.
	var status domain.JournalStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM journal_entries WHERE journal_id = $1 FOR UPDATE;`,
		originalJournalID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock journal entry "+originalJournalID, err)
	}
	if status != domain.Posted {
		return apperrors.NewAppError(409, "journal entry "+originalJournalID+" is not posted", apperrors.ErrConflict)
	}

	insertQuery := `
		INSERT INTO journal_entries (
			journal_id, entry_number, journal_date, reference, description, status,
			posted_at, posted_by, original_journal_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, 'JE' || lpad(nextval('journal_entry_number_seq')::text, 6, '0'),
		        $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, insertQuery,
		reversal.JournalID,
		reversal.JournalDate,
		reversal.Reference,
		reversal.Description,
		reversal.Status,
		reversal.PostedAt,
		reversal.PostedBy,
		reversal.OriginalJournalID,
		reversal.CreatedAt,
		reversal.CreatedBy,
		reversal.LastUpdatedAt,
		reversal.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to insert reversal entry "+reversal.JournalID)
	}

	if err := insertLines(ctx, tx, reversal.Lines, reversal.CreatedBy, reversal.CreatedAt); err != nil {
		return err
	}

	if err := r.applyPosting(ctx, tx, reversal.JournalID, balanceChanges, reversal.CreatedBy, reversal.CreatedAt); err != nil {
		return err
	}

	linkQuery := `
		UPDATE journal_entries
		SET status = 'REVERSED',
		    reversing_journal_id = $2,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE journal_id = $1;
	`
	if _, err := tx.Exec(ctx, linkQuery, originalJournalID, reversal.JournalID, reversal.CreatedAt, reversal.CreatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to mark journal entry reversed "+originalJournalID, err)
	}

	return r.Commit(ctx, tx)
}

// FindPostedLinesByAccount retrieves the date-ordered posted lines touching an
// account within an optional date range, newest first, using token-based
// pagination.
func (r *PgxJournalRepository) FindPostedLinesByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.LedgerRow, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `
		SELECT j.journal_id, j.entry_number, j.journal_date, j.description, j.reference,
		       l.debit, l.credit, l.running_balance, l.created_at
		FROM journal_lines l
		JOIN journal_entries j ON l.journal_id = j.journal_id
		WHERE l.account_id = $1 AND j.status != 'DRAFT'
	`
	args := []interface{}{accountID}

	if from != nil {
		args = append(args, *from)
		query += ` AND j.journal_date >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND j.journal_date <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (j.journal_date, l.created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY j.journal_date DESC, l.created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query ledger rows for account "+accountID, err)
	}
	defer rows.Close()

	type pagedRow struct {
		row       domain.LedgerRow
		createdAt time.Time
	}
	paged := make([]pagedRow, 0, fetchLimit)
	for rows.Next() {
		var p pagedRow
		if err := rows.Scan(
			&p.row.JournalID,
			&p.row.EntryNumber,
			&p.row.JournalDate,
			&p.row.Description,
			&p.row.Reference,
			&p.row.Debit,
			&p.row.Credit,
			&p.row.Balance,
			&p.createdAt,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan ledger row for account "+accountID, err)
		}
		paged = append(paged, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating ledger rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(paged) > limit {
		last := paged[limit-1]
		token := pagination.EncodeToken(last.row.JournalDate, last.createdAt)
		nextTokenVal = &token
		paged = paged[:limit]
	}

	ledgerRows := make([]domain.LedgerRow, len(paged))
	for i, p := range paged {
		ledgerRows[i] = p.row
	}
	return ledgerRows, nextTokenVal, nil
}

// SumPostedLinesByAccount reconstructs an account's signed balance from the
// posting log up to and including asOf, opening balance included.
func (r *PgxJournalRepository) SumPostedLinesByAccount(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT a.opening_balance + COALESCE((
			SELECT SUM(CASE WHEN a.balance_type = 'DEBIT' THEN l.debit - l.credit
			                ELSE l.credit - l.debit END)
			FROM journal_lines l
			JOIN journal_entries j ON l.journal_id = j.journal_id
			WHERE l.account_id = a.account_id
			  AND j.status != 'DRAFT'
			  AND j.journal_date <= $2
		), 0)
		FROM accounts a
		WHERE a.account_id = $1;
	`
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum posted lines for account "+accountID, err)
	}
	return balance, nil
}
