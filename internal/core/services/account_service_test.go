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

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, level *domain.AccountLevel) ([]domain.Account, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostedLines(ctx context.Context, accountID string) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	ctx      context.Context
	userID   string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateGroup_Success() {
	req := dto.CreateGroupRequest{
		Name:        "Assets",
		Code:        "1000",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Code == "1000" &&
			a.Level == domain.LevelGroup &&
			a.AccountType == domain.Asset &&
			a.BalanceType == domain.DebitBalance &&
			a.ParentAccountID == nil &&
			a.IsActive
	})).Return(nil).Once()

	account, err := suite.service.CreateGroup(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.NotNil(account)
	suite.Equal(domain.LevelGroup, account.Level)
	suite.Equal(domain.DebitBalance, account.BalanceType)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateGroup_DuplicateCode() {
	existing := &domain.Account{AccountID: uuid.NewString(), Code: "1000"}
	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1000").Return(existing, nil).Once()

	req := dto.CreateGroupRequest{Name: "Assets", Code: "1000", AccountType: domain.Asset}
	account, err := suite.service.CreateGroup(suite.ctx, req, suite.userID)

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestCreateSubGroup_InheritsTypeFromParent() {
	parentID := uuid.NewString()
	parent := &domain.Account{
		AccountID:   parentID,
		Code:        "2000",
		Level:       domain.LevelGroup,
		AccountType: domain.Liability,
		BalanceType: domain.CreditBalance,
	}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "2100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", suite.ctx, parentID).Return(parent, nil).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Level == domain.LevelSubGroup &&
			a.AccountType == domain.Liability &&
			a.BalanceType == domain.CreditBalance &&
			a.ParentAccountID != nil && *a.ParentAccountID == parentID
	})).Return(nil).Once()

	req := dto.CreateSubGroupRequest{Name: "Current Liabilities", Code: "2100", ParentGroupID: parentID}
	account, err := suite.service.CreateSubGroup(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal(domain.Liability, account.AccountType)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateSubGroup_ParentNotAGroup() {
	parentID := uuid.NewString()
	parent := &domain.Account{AccountID: parentID, Level: domain.LevelSubGroup}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "2110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", suite.ctx, parentID).Return(parent, nil).Once()

	req := dto.CreateSubGroupRequest{Name: "Nested", Code: "2110", ParentGroupID: parentID}
	account, err := suite.service.CreateSubGroup(suite.ctx, req, suite.userID)

	suite.Nil(account)
	suite.ErrorIs(err, services.ErrNotAGroup)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestCreateLedger_NegativeOpeningBalance() {
	parentID := uuid.NewString()
	parent := &domain.Account{AccountID: parentID, Level: domain.LevelSubGroup, AccountType: domain.Asset}

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", suite.ctx, parentID).Return(parent, nil).Once()

	req := dto.CreateLedgerRequest{
		Name:             "Cash",
		Code:             "1110",
		ParentSubGroupID: parentID,
		BalanceType:      domain.DebitBalance,
		OpeningBalance:   decimal.NewFromInt(-50),
	}
	account, err := suite.service.CreateLedger(suite.ctx, req, suite.userID)

	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateLedger_StartsAtOpeningBalance() {
	parentID := uuid.NewString()
	parent := &domain.Account{AccountID: parentID, Level: domain.LevelSubGroup, AccountType: domain.Asset}
	opening := decimal.NewFromInt(1500)

	suite.mockRepo.On("FindAccountByCode", suite.ctx, "1110").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", suite.ctx, parentID).Return(parent, nil).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Level == domain.LevelLedger &&
			a.OpeningBalance.Equal(opening) &&
			a.Balance.Equal(opening) &&
			a.SubType == "cash"
	})).Return(nil).Once()

	req := dto.CreateLedgerRequest{
		Name:             "Cash",
		Code:             "1110",
		ParentSubGroupID: parentID,
		SubType:          "cash",
		BalanceType:      domain.DebitBalance,
		OpeningBalance:   opening,
	}
	account, err := suite.service.CreateLedger(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.True(account.Balance.Equal(opening))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestGetHierarchy_RollsUpLedgerBalances() {
	groupID := uuid.NewString()
	subID := uuid.NewString()
	accounts := []domain.Account{
		{AccountID: groupID, Code: "1000", Level: domain.LevelGroup},
		{AccountID: subID, Code: "1100", Level: domain.LevelSubGroup, ParentAccountID: &groupID},
		{AccountID: uuid.NewString(), Code: "1110", Level: domain.LevelLedger, ParentAccountID: &subID, Balance: decimal.NewFromInt(300)},
		{AccountID: uuid.NewString(), Code: "1120", Level: domain.LevelLedger, ParentAccountID: &subID, Balance: decimal.NewFromInt(200)},
	}

	suite.mockRepo.On("ListAccounts", suite.ctx, (*domain.AccountLevel)(nil)).Return(accounts, nil).Once()

	roots, err := suite.service.GetHierarchy(suite.ctx)

	suite.NoError(err)
	suite.Len(roots, 1)
	suite.True(roots[0].RollupBalance.Equal(decimal.NewFromInt(500)), "group rollup should sum descendant ledgers")
	suite.Len(roots[0].Children, 1)
	suite.True(roots[0].Children[0].RollupBalance.Equal(decimal.NewFromInt(500)))
	suite.Len(roots[0].Children[0].Children, 2)
	// Children are sorted by code
	suite.Equal("1110", roots[0].Children[0].Children[0].Code)
}

func (suite *AccountServiceTestSuite) TestGetHierarchy_OrphanSurfacesAtRoot() {
	missingParent := uuid.NewString()
	accounts := []domain.Account{
		{AccountID: uuid.NewString(), Code: "9100", Level: domain.LevelSubGroup, ParentAccountID: &missingParent},
	}

	suite.mockRepo.On("ListAccounts", suite.ctx, (*domain.AccountLevel)(nil)).Return(accounts, nil).Once()

	roots, err := suite.service.GetHierarchy(suite.ctx)

	suite.NoError(err)
	suite.Len(roots, 1)
	suite.Equal("9100", roots[0].Code)
}

func (suite *AccountServiceTestSuite) TestUpdateLedger_RejectsNonLedger() {
	accountID := uuid.NewString()
	group := &domain.Account{AccountID: accountID, Level: domain.LevelGroup}
	suite.mockRepo.On("FindAccountByID", suite.ctx, accountID).Return(group, nil).Once()

	name := "Renamed"
	account, err := suite.service.UpdateLedger(suite.ctx, accountID, dto.UpdateLedgerRequest{Name: &name}, suite.userID)

	suite.Nil(account)
	suite.ErrorIs(err, services.ErrNotALedger)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestUpdateLedger_NoFieldsIsNoOp() {
	accountID := uuid.NewString()
	ledger := &domain.Account{AccountID: accountID, Level: domain.LevelLedger, Name: "Cash"}
	suite.mockRepo.On("FindAccountByID", suite.ctx, accountID).Return(ledger, nil).Once()

	account, err := suite.service.UpdateLedger(suite.ctx, accountID, dto.UpdateLedgerRequest{}, suite.userID)

	suite.NoError(err)
	suite.Equal("Cash", account.Name)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestDeleteLedger_ReferencedByPostings() {
	accountID := uuid.NewString()
	ledger := &domain.Account{AccountID: accountID, Level: domain.LevelLedger}

	suite.mockRepo.On("FindAccountByID", suite.ctx, accountID).Return(ledger, nil).Once()
	suite.mockRepo.On("HasPostedLines", suite.ctx, accountID).Return(true, nil).Once()

	err := suite.service.DeleteLedger(suite.ctx, accountID, suite.userID)

	var refErr *apperrors.ReferentialIntegrityError
	suite.ErrorAs(err, &refErr)
	suite.Equal(accountID, refErr.AccountID)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteAccount")
}

func (suite *AccountServiceTestSuite) TestDeleteLedger_Success() {
	accountID := uuid.NewString()
	ledger := &domain.Account{AccountID: accountID, Level: domain.LevelLedger}

	suite.mockRepo.On("FindAccountByID", suite.ctx, accountID).Return(ledger, nil).Once()
	suite.mockRepo.On("HasPostedLines", suite.ctx, accountID).Return(false, nil).Once()
	suite.mockRepo.On("DeleteAccount", suite.ctx, accountID).Return(nil).Once()

	err := suite.service.DeleteLedger(suite.ctx, accountID, suite.userID)

	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
