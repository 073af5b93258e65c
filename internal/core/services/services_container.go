package services

import (
	portsrepo "github.com/fincore/erp-accounting/internal/core/ports/repositories"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
)

// NewServiceContainer wires every service with its repository dependencies.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:   NewAccountService(repos.AccountRepo),
		Journal:   NewJournalService(repos.JournalRepo, repos.AccountRepo),
		Budget:    NewBudgetService(repos.BudgetRepo),
		OpenItem:  NewOpenItemService(repos.OpenItemRepo),
		Reporting: NewReportingService(repos.ReportingRepo, repos.OpenItemRepo),
	}
}
