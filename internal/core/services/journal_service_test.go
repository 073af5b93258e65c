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

// MockJournalRepository is a mock type for the JournalRepositoryWithTx interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, status *domain.JournalStatus, from, to *time.Time, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, status, from, to, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.JournalEntry), token, args.Error(2)
}

func (m *MockJournalRepository) SaveDraft(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) UpdateDraft(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteDraft(ctx context.Context, journalID string) error {
	args := m.Called(ctx, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, journalID, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) SavePostedReversal(ctx context.Context, reversal domain.JournalEntry, originalJournalID string, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, reversal, originalJournalID, balanceChanges)
	return args.Error(0)
}

func (m *MockJournalRepository) FindPostedLinesByAccount(ctx context.Context, accountID string, from, to *time.Time, limit int, nextToken *string) ([]domain.LedgerRow, *string, error) {
	args := m.Called(ctx, accountID, from, to, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.LedgerRow), token, args.Error(2)
}

func (m *MockJournalRepository) SumPostedLinesByAccount(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockJournalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockJournalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockJournalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.JournalSvcFacade
	ctx             context.Context
	userID          string

	cashID    string
	revenueID string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.NewString()
	suite.cashID = uuid.NewString()
	suite.revenueID = uuid.NewString()
}

// postableAccounts returns an active cash ledger and an active revenue ledger,
// keyed by ID, the way FindAccountsByIDs does.
func (suite *JournalServiceTestSuite) postableAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashID: {
			AccountID:   suite.cashID,
			Code:        "1110",
			Level:       domain.LevelLedger,
			AccountType: domain.Asset,
			BalanceType: domain.DebitBalance,
			IsActive:    true,
		},
		suite.revenueID: {
			AccountID:   suite.revenueID,
			Code:        "4100",
			Level:       domain.LevelLedger,
			AccountType: domain.Revenue,
			BalanceType: domain.CreditBalance,
			IsActive:    true,
		},
	}
}

func (suite *JournalServiceTestSuite) balancedRequest(amount int64) dto.CreateJournalRequest {
	return dto.CreateJournalRequest{
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.cashID, Debit: decimal.NewFromInt(amount)},
			{AccountID: suite.revenueID, Credit: decimal.NewFromInt(amount)},
		},
	}
}

// draftEntry builds a stored draft with balanced lines hitting cash and revenue.
func (suite *JournalServiceTestSuite) draftEntry(amount int64) *domain.JournalEntry {
	journalID := uuid.NewString()
	return &domain.JournalEntry{
		JournalID:   journalID,
		EntryNumber: "JE000042",
		JournalDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "Cash sale",
		Status:      domain.Draft,
		Lines: []domain.JournalLine{
			{LineID: uuid.NewString(), JournalID: journalID, AccountID: suite.cashID, Debit: decimal.NewFromInt(amount)},
			{LineID: uuid.NewString(), JournalID: journalID, AccountID: suite.revenueID, Credit: decimal.NewFromInt(amount)},
		},
	}
}

// --- Test Cases ---

func (suite *JournalServiceTestSuite) TestCreateDraft_Success() {
	req := suite.balancedRequest(250)

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("SaveDraft", suite.ctx, mock.MatchedBy(func(e domain.JournalEntry) bool {
		return e.Status == domain.Draft && len(e.Lines) == 2 && e.Lines[0].JournalID == e.JournalID
	})).Return(&domain.JournalEntry{JournalID: uuid.NewString(), EntryNumber: "JE000001", Status: domain.Draft}, nil).Once()

	entry, err := suite.service.CreateDraft(suite.ctx, req, suite.userID)

	suite.NoError(err)
	suite.Equal("JE000001", entry.EntryNumber)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateDraft_SingleLineRejected() {
	req := dto.CreateJournalRequest{
		Date:        time.Now().UTC(),
		Description: "One-legged",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.cashID, Debit: decimal.NewFromInt(100)},
		},
	}

	entry, err := suite.service.CreateDraft(suite.ctx, req, suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveDraft")
}

func (suite *JournalServiceTestSuite) TestCreateDraft_UnbalancedRejected() {
	req := dto.CreateJournalRequest{
		Date:        time.Now().UTC(),
		Description: "Out of balance",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.cashID, Debit: decimal.NewFromInt(100)},
			{AccountID: suite.revenueID, Credit: decimal.NewFromInt(90)},
		},
	}

	entry, err := suite.service.CreateDraft(suite.ctx, req, suite.userID)

	suite.Nil(entry)
	var unbalanced *apperrors.UnbalancedEntryError
	suite.ErrorAs(err, &unbalanced)
	suite.True(unbalanced.DebitTotal.Equal(decimal.NewFromInt(100)))
	suite.True(unbalanced.CreditTotal.Equal(decimal.NewFromInt(90)))
}

func (suite *JournalServiceTestSuite) TestCreateDraft_WithinToleranceAccepted() {
	req := dto.CreateJournalRequest{
		Date:        time.Now().UTC(),
		Description: "Rounding remainder",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.cashID, Debit: decimal.NewFromFloat(100.00)},
			{AccountID: suite.revenueID, Credit: decimal.NewFromFloat(99.99)},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(suite.postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("SaveDraft", suite.ctx, mock.Anything).
		Return(&domain.JournalEntry{JournalID: uuid.NewString(), Status: domain.Draft}, nil).Once()

	_, err := suite.service.CreateDraft(suite.ctx, req, suite.userID)

	suite.NoError(err)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_BothSidesSetRejected() {
	req := dto.CreateJournalRequest{
		Date:        time.Now().UTC(),
		Description: "Two-sided line",
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: suite.cashID, Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
			{AccountID: suite.revenueID, Credit: decimal.NewFromInt(0)},
		},
	}

	entry, err := suite.service.CreateDraft(suite.ctx, req, suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_GroupAccountRejected() {
	accounts := suite.postableAccounts()
	cash := accounts[suite.cashID]
	cash.Level = domain.LevelGroup
	accounts[suite.cashID] = cash

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(accounts, nil).Once()

	entry, err := suite.service.CreateDraft(suite.ctx, suite.balancedRequest(100), suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrNonPostableAccount)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_InactiveAccountRejected() {
	accounts := suite.postableAccounts()
	cash := accounts[suite.cashID]
	cash.IsActive = false
	accounts[suite.cashID] = cash

	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(accounts, nil).Once()

	entry, err := suite.service.CreateDraft(suite.ctx, suite.balancedRequest(100), suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrInactiveAccount)
}

func (suite *JournalServiceTestSuite) TestUpdateDraft_PostedIsImmutable() {
	posted := suite.draftEntry(100)
	posted.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, posted.JournalID).Return(posted, nil).Once()

	desc := "Edited"
	entry, err := suite.service.UpdateDraft(suite.ctx, posted.JournalID, dto.UpdateJournalRequest{Description: &desc}, suite.userID)

	suite.Nil(entry)
	var immutable *apperrors.ImmutableEntryError
	suite.ErrorAs(err, &immutable)
	suite.Equal(posted.JournalID, immutable.JournalID)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateDraft")
}

func (suite *JournalServiceTestSuite) TestDeleteDraft_PostedIsImmutable() {
	posted := suite.draftEntry(100)
	posted.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, posted.JournalID).Return(posted, nil).Once()

	err := suite.service.DeleteDraft(suite.ctx, posted.JournalID, suite.userID)

	var immutable *apperrors.ImmutableEntryError
	suite.ErrorAs(err, &immutable)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteDraft")
}

func (suite *JournalServiceTestSuite) TestPost_Success() {
	draft := suite.draftEntry(500)

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, draft.JournalID).Return(draft, nil).Once()
	// Once for validation, once for computing balance deltas.
	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(suite.postableAccounts(), nil).Twice()
	suite.mockJournalRepo.On("PostJournal", suite.ctx, draft.JournalID, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		// Debit to a debit-natural account and credit to a credit-natural
		// account both increase the balance.
		return changes[suite.cashID].Equal(decimal.NewFromInt(500)) &&
			changes[suite.revenueID].Equal(decimal.NewFromInt(500))
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := suite.service.Post(suite.ctx, draft.JournalID, suite.userID)

	suite.NoError(err)
	suite.Equal(domain.Posted, entry.Status)
	suite.NotNil(entry.PostedAt)
	suite.Equal(suite.userID, entry.PostedBy)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPost_AlreadyPosted() {
	posted := suite.draftEntry(100)
	posted.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, posted.JournalID).Return(posted, nil).Once()

	entry, err := suite.service.Post(suite.ctx, posted.JournalID, suite.userID)

	suite.Nil(entry)
	var alreadyPosted *apperrors.AlreadyPostedError
	suite.ErrorAs(err, &alreadyPosted)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "PostJournal")
}

func (suite *JournalServiceTestSuite) TestReverse_DraftNotPosted() {
	draft := suite.draftEntry(100)

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, draft.JournalID).Return(draft, nil).Once()

	entry, err := suite.service.Reverse(suite.ctx, draft.JournalID, suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrNotPosted)
}

func (suite *JournalServiceTestSuite) TestReverse_AlreadyReversed() {
	reversed := suite.draftEntry(100)
	reversed.Status = domain.Reversed

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, reversed.JournalID).Return(reversed, nil).Once()

	entry, err := suite.service.Reverse(suite.ctx, reversed.JournalID, suite.userID)

	suite.Nil(entry)
	suite.ErrorIs(err, services.ErrAlreadyReversed)
}

func (suite *JournalServiceTestSuite) TestReverse_SwapsSidesAndLinksOriginal() {
	original := suite.draftEntry(300)
	original.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, original.JournalID).Return(original, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", suite.ctx, mock.Anything).Return(suite.postableAccounts(), nil).Once()

	var reversalID string
	suite.mockJournalRepo.On("SavePostedReversal", suite.ctx, mock.MatchedBy(func(rev domain.JournalEntry) bool {
		reversalID = rev.JournalID
		return rev.Status == domain.Posted &&
			rev.OriginalJournalID != nil && *rev.OriginalJournalID == original.JournalID &&
			rev.Lines[0].Credit.Equal(decimal.NewFromInt(300)) &&
			rev.Lines[1].Debit.Equal(decimal.NewFromInt(300))
	}), original.JournalID, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		return changes[suite.cashID].Equal(decimal.NewFromInt(-300)) &&
			changes[suite.revenueID].Equal(decimal.NewFromInt(-300))
	})).Return(nil).Once()

	suite.mockJournalRepo.On("FindJournalByID", suite.ctx, mock.MatchedBy(func(id string) bool {
		return id == reversalID
	})).Return(&domain.JournalEntry{JournalID: uuid.NewString(), EntryNumber: "JE000043", Status: domain.Posted}, nil).Once()

	entry, err := suite.service.Reverse(suite.ctx, original.JournalID, suite.userID)

	suite.NoError(err)
	suite.Equal("JE000043", entry.EntryNumber)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestGetAccountLedger_GroupAccountRejected() {
	groupID := uuid.NewString()
	group := &domain.Account{AccountID: groupID, Level: domain.LevelGroup}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, groupID).Return(group, nil).Once()

	rows, _, err := suite.service.GetAccountLedger(suite.ctx, groupID, nil, nil, 50, nil)

	suite.Nil(rows)
	suite.ErrorIs(err, services.ErrNonPostableAccount)
}

func (suite *JournalServiceTestSuite) TestGetAccountLedger_Success() {
	account := suite.postableAccounts()[suite.cashID]

	rows := []domain.LedgerRow{
		{JournalID: uuid.NewString(), EntryNumber: "JE000010", Debit: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100)},
	}
	token := "next"

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.cashID).Return(&account, nil).Once()
	suite.mockJournalRepo.On("FindPostedLinesByAccount", suite.ctx, suite.cashID, (*time.Time)(nil), (*time.Time)(nil), 50, (*string)(nil)).
		Return(rows, &token, nil).Once()

	got, nextToken, err := suite.service.GetAccountLedger(suite.ctx, suite.cashID, nil, nil, 50, nil)

	suite.NoError(err)
	suite.Len(got, 1)
	suite.Equal("next", *nextToken)
}

func (suite *JournalServiceTestSuite) TestReconcileAccount_ConsistentBalance() {
	account := suite.postableAccounts()[suite.cashID]
	account.Balance = decimal.NewFromInt(750)

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.cashID).Return(&account, nil).Once()
	suite.mockJournalRepo.On("SumPostedLinesByAccount", suite.ctx, suite.cashID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(750), nil).Once()

	result, err := suite.service.ReconcileAccount(suite.ctx, suite.cashID)

	suite.NoError(err)
	suite.True(result.Consistent)
	suite.True(result.Difference.IsZero())
	suite.True(result.CachedBalance.Equal(result.ReconstructedBalance))
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReconcileAccount_DriftSurfaced() {
	account := suite.postableAccounts()[suite.cashID]
	account.Balance = decimal.NewFromInt(750)

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, suite.cashID).Return(&account, nil).Once()
	suite.mockJournalRepo.On("SumPostedLinesByAccount", suite.ctx, suite.cashID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(745), nil).Once()

	result, err := suite.service.ReconcileAccount(suite.ctx, suite.cashID)

	suite.NoError(err)
	suite.False(result.Consistent)
	suite.True(result.Difference.Equal(decimal.NewFromInt(5)))
}

func (suite *JournalServiceTestSuite) TestReconcileAccount_GroupAccountRejected() {
	groupID := uuid.NewString()
	group := &domain.Account{AccountID: groupID, Level: domain.LevelGroup}

	suite.mockAccountRepo.On("FindAccountByID", suite.ctx, groupID).Return(group, nil).Once()

	_, err := suite.service.ReconcileAccount(suite.ctx, groupID)

	suite.ErrorIs(err, services.ErrNonPostableAccount)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SumPostedLinesByAccount", mock.Anything, mock.Anything, mock.Anything)
}

// --- Run Test Suite ---

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
