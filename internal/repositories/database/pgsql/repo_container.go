package pgsql

import (
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgsql-backed repository off one shared
// connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   newPgxJournalRepository(pool, accountRepo),
		BudgetRepo:    newPgxBudgetRepository(pool),
		OpenItemRepo:  newPgxOpenItemRepository(pool),
		ReportingRepo: newPgxReportingRepository(pool),
	}
}
