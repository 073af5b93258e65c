package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/fincore/erp-accounting/internal/apperrors"
	"github.com/fincore/erp-accounting/internal/core/domain"
	portssvc "github.com/fincore/erp-accounting/internal/core/ports/services"
	"github.com/fincore/erp-accounting/internal/core/services"
	"github.com/fincore/erp-accounting/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockBudgetRepository is a mock type for the BudgetRepositoryWithTx interface
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgets(ctx context.Context, fiscalYear *int, budgetType *domain.BudgetType, ownerRef *string) ([]domain.Budget, error) {
	args := m.Called(ctx, fiscalYear, budgetType, ownerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) AllocateInTx(ctx context.Context, tx pgx.Tx, budgetID string, amount decimal.Decimal, userID string, now time.Time) (*domain.Budget, error) {
	args := m.Called(ctx, tx, budgetID, amount, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) FindBudgetsForUpdate(ctx context.Context, tx pgx.Tx, budgetIDs []string) (map[string]domain.Budget, error) {
	args := m.Called(ctx, tx, budgetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Budget), args.Error(1)
}

func (m *MockBudgetRepository) UpdateBudgetAmountsInTx(ctx context.Context, tx pgx.Tx, budget domain.Budget, userID string, now time.Time) error {
	args := m.Called(ctx, tx, budget, userID, now)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTransfer), args.Error(1)
}

func (m *MockBudgetRepository) FindTransferByIDForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.BudgetTransfer, error) {
	args := m.Called(ctx, tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTransfer), args.Error(1)
}

func (m *MockBudgetRepository) ListTransfers(ctx context.Context, status *domain.TransferStatus, budgetID *string) ([]domain.BudgetTransfer, error) {
	args := m.Called(ctx, status, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetTransfer), args.Error(1)
}

func (m *MockBudgetRepository) SaveTransfer(ctx context.Context, transfer domain.BudgetTransfer) (*domain.BudgetTransfer, error) {
	args := m.Called(ctx, transfer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetTransfer), args.Error(1)
}

func (m *MockBudgetRepository) UpdateTransferStatusInTx(ctx context.Context, tx pgx.Tx, transfer domain.BudgetTransfer) error {
	args := m.Called(ctx, tx, transfer)
	return args.Error(0)
}

func (m *MockBudgetRepository) ListRevisions(ctx context.Context, budgetID string) ([]domain.BudgetRevision, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetRevision), args.Error(1)
}

func (m *MockBudgetRepository) FindRevision(ctx context.Context, budgetID string, version int) (*domain.BudgetRevision, error) {
	args := m.Called(ctx, budgetID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetRevision), args.Error(1)
}

func (m *MockBudgetRepository) SaveRevisionInTx(ctx context.Context, tx pgx.Tx, revision domain.BudgetRevision) error {
	args := m.Called(ctx, tx, revision)
	return args.Error(0)
}

func (m *MockBudgetRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockBudgetRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockBudgetRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---

type BudgetServiceTestSuite struct {
	suite.Suite
	mockRepo *MockBudgetRepository
	service  portssvc.BudgetSvcFacade
	ctx      context.Context
	userID   string
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockBudgetRepository)
	suite.service = services.NewBudgetService(suite.mockRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()
}

// expectTx wires a nil transaction through Begin/Commit/Rollback. The services
// never touch the tx themselves, they only hand it back to repository methods.
func (suite *BudgetServiceTestSuite) expectTx() {
	suite.mockRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockRepo.On("Commit", suite.ctx, nil).Return(nil).Maybe()
	suite.mockRepo.On("Rollback", suite.ctx, nil).Return(nil).Maybe()
}

func activeBudget(total, allocated int64) domain.Budget {
	return domain.Budget{
		BudgetID:        uuid.NewString(),
		BudgetName:      "Engineering Opex",
		BudgetType:      domain.DepartmentBudget,
		OwnerRef:        "dept-eng",
		FiscalYear:      2026,
		TotalAmount:     decimal.NewFromInt(total),
		AllocatedAmount: decimal.NewFromInt(allocated),
		Version:         1,
		IsActive:        true,
	}
}

// --- Test Cases ---

func (suite *BudgetServiceTestSuite) TestCreateBudget_Success() {
	req := dto.CreateBudgetRequest{
		BudgetName:  "Engineering Opex",
		BudgetType:  domain.DepartmentBudget,
		OwnerRef:    "dept-eng",
		FiscalYear:  2026,
		TotalAmount: decimal.NewFromInt(120000),
	}

	suite.mockRepo.On("SaveBudget", suite.ctx, mock.MatchedBy(func(b domain.Budget) bool {
		return b.Version == 1 && b.IsActive && b.AllocatedAmount.IsZero() &&
			b.TotalAmount.Equal(decimal.NewFromInt(120000))
	})).Return(nil).Once()

	budget, err := suite.service.CreateBudget(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal(1, budget.Version)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestCreateBudget_NonPositiveAmount() {
	req := dto.CreateBudgetRequest{BudgetName: "Empty", TotalAmount: decimal.Zero}

	budget, err := suite.service.CreateBudget(suite.ctx, req, suite.userID)

	suite.Nil(budget)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveBudget")
}

func (suite *BudgetServiceTestSuite) TestListBudgets_OwnerRefFilterPassedThrough() {
	ownerRef := "SALES-EU"
	budgets := []domain.Budget{activeBudget(1000, 0)}

	suite.mockRepo.On("ListBudgets", suite.ctx, (*int)(nil), (*domain.BudgetType)(nil), &ownerRef).
		Return(budgets, nil).Once()

	got, err := suite.service.ListBudgets(suite.ctx, nil, nil, &ownerRef)

	suite.NoError(err)
	suite.Len(got, 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestAllocate_Success() {
	budget := activeBudget(1000, 0)
	allocated := budget
	allocated.AllocatedAmount = decimal.NewFromInt(400)

	suite.expectTx()
	suite.mockRepo.On("AllocateInTx", suite.ctx, nil, budget.BudgetID, decimal.NewFromInt(400), suite.userID, mock.AnythingOfType("time.Time")).
		Return(&allocated, nil).Once()

	got, err := suite.service.Allocate(suite.ctx, budget.BudgetID, decimal.NewFromInt(400), suite.userID)

	suite.NoError(err)
	suite.True(got.AllocatedAmount.Equal(decimal.NewFromInt(400)))
	suite.mockRepo.AssertCalled(suite.T(), "Commit", suite.ctx, nil)
}

func (suite *BudgetServiceTestSuite) TestAllocate_OverrunSurfaced() {
	budget := activeBudget(1000, 900)
	overrun := &apperrors.BudgetOverrunError{
		BudgetID:  budget.BudgetID,
		Available: decimal.NewFromInt(100),
		Requested: decimal.NewFromInt(400),
	}

	suite.expectTx()
	suite.mockRepo.On("AllocateInTx", suite.ctx, nil, budget.BudgetID, decimal.NewFromInt(400), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil, overrun).Once()

	got, err := suite.service.Allocate(suite.ctx, budget.BudgetID, decimal.NewFromInt(400), suite.userID)

	suite.Nil(got)
	var target *apperrors.BudgetOverrunError
	suite.ErrorAs(err, &target)
	suite.True(target.Available.Equal(decimal.NewFromInt(100)))
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit", suite.ctx, nil)
}

func (suite *BudgetServiceTestSuite) TestAllocate_NonPositiveAmount() {
	got, err := suite.service.Allocate(suite.ctx, uuid.NewString(), decimal.Zero, suite.userID)

	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *BudgetServiceTestSuite) TestRollover_SameYearRejected() {
	req := dto.RolloverRequest{SourceFiscalYear: 2026, TargetFiscalYear: 2026}

	result, err := suite.service.Rollover(suite.ctx, req, suite.userID)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BudgetServiceTestSuite) TestRollover_AdjustmentFloorRejected() {
	req := dto.RolloverRequest{
		SourceFiscalYear:  2025,
		TargetFiscalYear:  2026,
		AdjustmentPercent: decimal.NewFromInt(-100),
	}

	result, err := suite.service.Rollover(suite.ctx, req, suite.userID)

	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BudgetServiceTestSuite) TestRollover_ScalesAndSkipsInactive() {
	src1 := activeBudget(1000, 250)
	src2 := activeBudget(2000, 0)
	inactive := activeBudget(500, 0)
	inactive.IsActive = false
	sourceYear := 2025

	suite.mockRepo.On("ListBudgets", suite.ctx, &sourceYear, (*domain.BudgetType)(nil), (*string)(nil)).
		Return([]domain.Budget{src1, src2, inactive}, nil).Once()
	// 10% uplift; allocations never carry over.
	suite.mockRepo.On("SaveBudget", suite.ctx, mock.MatchedBy(func(b domain.Budget) bool {
		return b.FiscalYear == 2026 && b.AllocatedAmount.IsZero() && b.Version == 1 &&
			(b.TotalAmount.Equal(decimal.NewFromInt(1100)) || b.TotalAmount.Equal(decimal.NewFromInt(2200)))
	})).Return(nil).Twice()

	req := dto.RolloverRequest{
		SourceFiscalYear:  sourceYear,
		TargetFiscalYear:  2026,
		AdjustmentPercent: decimal.NewFromInt(10),
	}
	result, err := suite.service.Rollover(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal(2, result.Created)
	suite.Equal(0, result.Failed)
	suite.Len(result.CreatedBudgetIDs, 2)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestRollover_CountsFailuresWithoutAborting() {
	src1 := activeBudget(1000, 0)
	src2 := activeBudget(2000, 0)
	sourceYear := 2025

	suite.mockRepo.On("ListBudgets", suite.ctx, &sourceYear, (*domain.BudgetType)(nil), (*string)(nil)).
		Return([]domain.Budget{src1, src2}, nil).Once()
	suite.mockRepo.On("SaveBudget", suite.ctx, mock.MatchedBy(func(b domain.Budget) bool {
		return b.BudgetName == src1.BudgetName && b.TotalAmount.Equal(decimal.NewFromInt(1000))
	})).Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("SaveBudget", suite.ctx, mock.Anything).Return(nil).Once()

	req := dto.RolloverRequest{SourceFiscalYear: sourceYear, TargetFiscalYear: 2026}
	result, err := suite.service.Rollover(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal(1, result.Created)
	suite.Equal(1, result.Failed)
}

func (suite *BudgetServiceTestSuite) TestRequestTransfer_SameBudget() {
	id := uuid.NewString()
	req := dto.TransferRequest{FromBudgetID: id, ToBudgetID: id, Amount: decimal.NewFromInt(100), Reason: "move", FiscalYear: 2026}

	transfer, err := suite.service.RequestTransfer(suite.ctx, req, suite.userID)

	suite.Nil(transfer)
	suite.ErrorIs(err, services.ErrSameBudget)
}

func (suite *BudgetServiceTestSuite) TestRequestTransfer_InactiveSource() {
	from := activeBudget(1000, 0)
	from.IsActive = false
	to := activeBudget(1000, 0)

	suite.mockRepo.On("FindBudgetByID", suite.ctx, from.BudgetID).Return(&from, nil).Once()
	suite.mockRepo.On("FindBudgetByID", suite.ctx, to.BudgetID).Return(&to, nil).Once()

	req := dto.TransferRequest{FromBudgetID: from.BudgetID, ToBudgetID: to.BudgetID, Amount: decimal.NewFromInt(100), Reason: "move", FiscalYear: 2026}
	transfer, err := suite.service.RequestTransfer(suite.ctx, req, suite.userID)

	suite.Nil(transfer)
	suite.ErrorIs(err, services.ErrInactiveBudget)
}

func (suite *BudgetServiceTestSuite) TestRequestTransfer_InsufficientAvailable() {
	from := activeBudget(1000, 950)
	to := activeBudget(1000, 0)

	suite.mockRepo.On("FindBudgetByID", suite.ctx, from.BudgetID).Return(&from, nil).Once()
	suite.mockRepo.On("FindBudgetByID", suite.ctx, to.BudgetID).Return(&to, nil).Once()

	req := dto.TransferRequest{FromBudgetID: from.BudgetID, ToBudgetID: to.BudgetID, Amount: decimal.NewFromInt(100), Reason: "move", FiscalYear: 2026}
	transfer, err := suite.service.RequestTransfer(suite.ctx, req, suite.userID)

	suite.Nil(transfer)
	var overrun *apperrors.BudgetOverrunError
	suite.ErrorAs(err, &overrun)
	suite.True(overrun.Available.Equal(decimal.NewFromInt(50)))
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *BudgetServiceTestSuite) TestRequestTransfer_Success() {
	from := activeBudget(1000, 200)
	to := activeBudget(1000, 0)

	suite.mockRepo.On("FindBudgetByID", suite.ctx, from.BudgetID).Return(&from, nil).Once()
	suite.mockRepo.On("FindBudgetByID", suite.ctx, to.BudgetID).Return(&to, nil).Once()
	suite.mockRepo.On("SaveTransfer", suite.ctx, mock.MatchedBy(func(t domain.BudgetTransfer) bool {
		return t.Status == domain.TransferPending && t.RequestedBy == suite.userID
	})).Return(&domain.BudgetTransfer{
		TransferID:     uuid.NewString(),
		TransferNumber: "BT-2026-00001",
		Status:         domain.TransferPending,
	}, nil).Once()

	req := dto.TransferRequest{FromBudgetID: from.BudgetID, ToBudgetID: to.BudgetID, Amount: decimal.NewFromInt(300), Reason: "reallocation", FiscalYear: 2026}
	transfer, err := suite.service.RequestTransfer(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal("BT-2026-00001", transfer.TransferNumber)
}

func (suite *BudgetServiceTestSuite) TestApproveTransfer_NotPending() {
	transfer := &domain.BudgetTransfer{
		TransferID: uuid.NewString(),
		Status:     domain.TransferApproved,
	}

	suite.expectTx()
	suite.mockRepo.On("FindTransferByIDForUpdate", suite.ctx, nil, transfer.TransferID).Return(transfer, nil).Once()

	got, err := suite.service.ApproveTransfer(suite.ctx, transfer.TransferID, suite.userID)

	suite.Nil(got)
	suite.ErrorIs(err, services.ErrTransferNotPending)
}

func (suite *BudgetServiceTestSuite) TestApproveTransfer_MovesCapacity() {
	from := activeBudget(1000, 200)
	to := activeBudget(500, 0)
	transfer := &domain.BudgetTransfer{
		TransferID:   uuid.NewString(),
		FromBudgetID: from.BudgetID,
		ToBudgetID:   to.BudgetID,
		Amount:       decimal.NewFromInt(300),
		Status:       domain.TransferPending,
	}

	suite.expectTx()
	suite.mockRepo.On("FindTransferByIDForUpdate", suite.ctx, nil, transfer.TransferID).Return(transfer, nil).Once()
	suite.mockRepo.On("FindBudgetsForUpdate", suite.ctx, nil, mock.Anything).
		Return(map[string]domain.Budget{from.BudgetID: from, to.BudgetID: to}, nil).Once()
	suite.mockRepo.On("UpdateBudgetAmountsInTx", suite.ctx, nil, mock.MatchedBy(func(b domain.Budget) bool {
		return b.BudgetID == from.BudgetID && b.TotalAmount.Equal(decimal.NewFromInt(700))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockRepo.On("UpdateBudgetAmountsInTx", suite.ctx, nil, mock.MatchedBy(func(b domain.Budget) bool {
		return b.BudgetID == to.BudgetID && b.TotalAmount.Equal(decimal.NewFromInt(800))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockRepo.On("UpdateTransferStatusInTx", suite.ctx, nil, mock.MatchedBy(func(t domain.BudgetTransfer) bool {
		return t.Status == domain.TransferApproved && t.DecidedBy == suite.userID
	})).Return(nil).Once()

	got, err := suite.service.ApproveTransfer(suite.ctx, transfer.TransferID, suite.userID)

	suite.NoError(err)
	suite.Equal(domain.TransferApproved, got.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestApproveTransfer_ShortfallRejectsTerminally() {
	from := activeBudget(1000, 950)
	to := activeBudget(500, 0)
	transfer := &domain.BudgetTransfer{
		TransferID:   uuid.NewString(),
		FromBudgetID: from.BudgetID,
		ToBudgetID:   to.BudgetID,
		Amount:       decimal.NewFromInt(300),
		Status:       domain.TransferPending,
	}

	suite.expectTx()
	suite.mockRepo.On("FindTransferByIDForUpdate", suite.ctx, nil, transfer.TransferID).Return(transfer, nil).Once()
	suite.mockRepo.On("FindBudgetsForUpdate", suite.ctx, nil, mock.Anything).
		Return(map[string]domain.Budget{from.BudgetID: from, to.BudgetID: to}, nil).Once()
	suite.mockRepo.On("UpdateTransferStatusInTx", suite.ctx, nil, mock.MatchedBy(func(t domain.BudgetTransfer) bool {
		return t.Status == domain.TransferRejected && t.RejectionReason != ""
	})).Return(nil).Once()

	got, err := suite.service.ApproveTransfer(suite.ctx, transfer.TransferID, suite.userID)

	suite.NoError(err)
	suite.Equal(domain.TransferRejected, got.Status)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateBudgetAmountsInTx")
}

func (suite *BudgetServiceTestSuite) TestRejectTransfer_ReasonRequired() {
	got, err := suite.service.RejectTransfer(suite.ctx, uuid.NewString(), "", suite.userID)

	suite.Nil(got)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Begin")
}

func (suite *BudgetServiceTestSuite) TestReviseBudget_SnapshotsOutgoingVersion() {
	budget := activeBudget(1000, 400)
	budget.Version = 3

	suite.expectTx()
	suite.mockRepo.On("FindBudgetsForUpdate", suite.ctx, nil, []string{budget.BudgetID}).
		Return(map[string]domain.Budget{budget.BudgetID: budget}, nil).Once()
	suite.mockRepo.On("SaveRevisionInTx", suite.ctx, nil, mock.MatchedBy(func(r domain.BudgetRevision) bool {
		// The snapshot records the state before the change.
		return r.Version == 3 && r.TotalAmount.Equal(decimal.NewFromInt(1000))
	})).Return(nil).Once()
	suite.mockRepo.On("UpdateBudgetAmountsInTx", suite.ctx, nil, mock.MatchedBy(func(b domain.Budget) bool {
		return b.Version == 4 && b.TotalAmount.Equal(decimal.NewFromInt(1500))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	got, err := suite.service.ReviseBudget(suite.ctx, budget.BudgetID, decimal.NewFromInt(1500), "annual uplift", suite.userID)

	suite.NoError(err)
	suite.Equal(4, got.Version)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestReviseBudget_BelowAllocatedRejected() {
	budget := activeBudget(1000, 700)

	suite.expectTx()
	suite.mockRepo.On("FindBudgetsForUpdate", suite.ctx, nil, []string{budget.BudgetID}).
		Return(map[string]domain.Budget{budget.BudgetID: budget}, nil).Once()
	suite.mockRepo.On("SaveRevisionInTx", suite.ctx, nil, mock.Anything).Return(nil).Once()

	got, err := suite.service.ReviseBudget(suite.ctx, budget.BudgetID, decimal.NewFromInt(500), "cut", suite.userID)

	suite.Nil(got)
	var overrun *apperrors.BudgetOverrunError
	suite.ErrorAs(err, &overrun)
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit", suite.ctx, nil)
}

func (suite *BudgetServiceTestSuite) TestRestoreRevision_AppliesPriorTotalAsNewVersion() {
	budget := activeBudget(1500, 400)
	budget.Version = 5
	revision := &domain.BudgetRevision{
		RevisionID:  uuid.NewString(),
		BudgetID:    budget.BudgetID,
		Version:     2,
		TotalAmount: decimal.NewFromInt(1200),
	}

	suite.expectTx()
	suite.mockRepo.On("FindRevision", suite.ctx, budget.BudgetID, 2).Return(revision, nil).Once()
	suite.mockRepo.On("FindBudgetsForUpdate", suite.ctx, nil, []string{budget.BudgetID}).
		Return(map[string]domain.Budget{budget.BudgetID: budget}, nil).Once()
	suite.mockRepo.On("SaveRevisionInTx", suite.ctx, nil, mock.MatchedBy(func(r domain.BudgetRevision) bool {
		return r.Version == 5
	})).Return(nil).Once()
	suite.mockRepo.On("UpdateBudgetAmountsInTx", suite.ctx, nil, mock.MatchedBy(func(b domain.Budget) bool {
		return b.Version == 6 && b.TotalAmount.Equal(decimal.NewFromInt(1200))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	got, err := suite.service.RestoreRevision(suite.ctx, budget.BudgetID, 2, "revert uplift", suite.userID)

	suite.NoError(err)
	suite.Equal(6, got.Version)
	suite.True(got.TotalAmount.Equal(decimal.NewFromInt(1200)))
}

func (suite *BudgetServiceTestSuite) TestListRevisions_BudgetMustExist() {
	budgetID := uuid.NewString()
	suite.mockRepo.On("FindBudgetByID", suite.ctx, budgetID).Return(nil, apperrors.ErrNotFound).Once()

	revisions, err := suite.service.ListRevisions(suite.ctx, budgetID)

	suite.Nil(revisions)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListRevisions")
}

// --- Run Test Suite ---

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
