package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/core/services"
	"github.com/retailops/ledger_service/internal/dto"
)

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindJournalByID(ctx context.Context, tenantID, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, tenantID, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalRepository) FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListJournals(ctx context.Context, tenantID string, filter portsrepo.ListJournalsFilter, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	args := m.Called(ctx, tenantID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Journal), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) SaveDraft(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry) error {
	args := m.Called(ctx, journal, entries)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteDraft(ctx context.Context, tenantID, journalID string) error {
	args := m.Called(ctx, tenantID, journalID)
	return args.Error(0)
}

func (m *MockJournalRepository) PostJournal(ctx context.Context, journal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, journal, entries, deltas)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, original domain.Journal, reversal domain.Journal, entries []domain.JournalEntry, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, original, reversal, entries, deltas)
	return args.Error(0)
}

func (m *MockJournalRepository) NextJournalNumber(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock AccountSvcFacade (as used by JournalService) ---
type MockAccountSvc struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountSvc)(nil)

func (m *MockAccountSvc) CreateAccountType(ctx context.Context, tenantID string, req dto.CreateAccountTypeRequest, creatorID string) (*domain.AccountType, error) {
	args := m.Called(ctx, tenantID, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountType), args.Error(1)
}

func (m *MockAccountSvc) ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountType), args.Error(1)
}

func (m *MockAccountSvc) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountSvc) ListAccounts(ctx context.Context, tenantID string, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	args := m.Called(ctx, tenantID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAccountsResponse), args.Error(1)
}

func (m *MockAccountSvc) DeactivateAccount(ctx context.Context, tenantID, accountID, actorID string) error {
	args := m.Called(ctx, tenantID, accountID, actorID)
	return args.Error(0)
}

func (m *MockAccountSvc) ResolveForPosting(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock PeriodSvcFacade ---
type MockPeriodSvc struct {
	mock.Mock
}

var _ portssvc.PeriodSvcFacade = (*MockPeriodSvc)(nil)

func (m *MockPeriodSvc) CreateFiscalYear(ctx context.Context, tenantID string, req dto.CreateFiscalYearRequest, creatorID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, tenantID, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockPeriodSvc) ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockPeriodSvc) CreatePeriod(ctx context.Context, tenantID string, req dto.CreatePeriodRequest, creatorID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, req, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodSvc) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodSvc) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodSvc) IsOpen(ctx context.Context, tenantID, fiscalYearID, periodID string) (bool, error) {
	args := m.Called(ctx, tenantID, fiscalYearID, periodID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPeriodSvc) ClosePeriod(ctx context.Context, tenantID, periodID, actorID string) error {
	args := m.Called(ctx, tenantID, periodID, actorID)
	return args.Error(0)
}

func (m *MockPeriodSvc) CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, actorID string) error {
	args := m.Called(ctx, tenantID, fiscalYearID, actorID)
	return args.Error(0)
}

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

var _ portssvc.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.Event) {
	m.Called(ctx, event)
}

// --- Test Suite Setup ---
type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountSvc  *MockAccountSvc
	mockPeriodSvc   *MockPeriodSvc
	mockPublisher   *MockEventPublisher
	service         portssvc.JournalSvcFacade
	tenantID        string
	userID          string
	cashAccount     domain.Account
	salesAccount    domain.Account
	period          domain.AccountingPeriod
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountSvc = new(MockAccountSvc)
	suite.mockPeriodSvc = new(MockPeriodSvc)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountSvc, suite.mockPeriodSvc, suite.mockPublisher)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.cashAccount = domain.Account{
		AccountID: uuid.NewString(),
		TenantID:  suite.tenantID,
		Code:      "1000",
		Category:  domain.Asset,
		IsActive:  true,
	}
	suite.salesAccount = domain.Account{
		AccountID: uuid.NewString(),
		TenantID:  suite.tenantID,
		Code:      "4000",
		Category:  domain.Income,
		IsActive:  true,
	}
	suite.period = domain.AccountingPeriod{
		PeriodID:     uuid.NewString(),
		TenantID:     suite.tenantID,
		FiscalYearID: uuid.NewString(),
		Name:         "2026-01",
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:       domain.PeriodActive,
	}
}

func (suite *JournalServiceTestSuite) draftRequest() dto.CreateJournalRequest {
	return dto.CreateJournalRequest{
		Date:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:  "January shop sale",
		CurrencyCode: "USD",
		Entries: []dto.CreateJournalEntryRequest{
			{AccountID: suite.cashAccount.AccountID, DebitAmount: decimal.NewFromInt(100)},
			{AccountID: suite.salesAccount.AccountID, CreditAmount: decimal.NewFromInt(100)},
		},
	}
}

// --- CreateDraft ---

func (suite *JournalServiceTestSuite) TestCreateDraft_Success() {
	ctx := context.Background()
	req := suite.draftRequest()

	suite.mockAccountSvc.On("ResolveForPosting", ctx, suite.tenantID, suite.cashAccount.AccountID).Return(&suite.cashAccount, nil).Once()
	suite.mockAccountSvc.On("ResolveForPosting", ctx, suite.tenantID, suite.salesAccount.AccountID).Return(&suite.salesAccount, nil).Once()
	suite.mockPeriodSvc.On("FindPeriodForDate", ctx, suite.tenantID, req.Date).Return(&suite.period, nil).Once()
	suite.mockPeriodSvc.On("IsOpen", ctx, suite.tenantID, suite.period.FiscalYearID, suite.period.PeriodID).Return(true, nil).Once()
	suite.mockJournalRepo.On("NextJournalNumber", ctx, suite.tenantID).Return(int64(42), nil).Once()
	suite.mockJournalRepo.On("SaveDraft", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry")).Return(nil).Once()

	draft, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(draft)
	suite.Equal(domain.Draft, draft.Status)
	suite.Equal("JRN-000042", draft.JournalNumber)
	suite.Equal(suite.period.PeriodID, draft.PeriodID)
	suite.Equal(domain.JournalTypeManual, draft.JournalType)
	suite.True(draft.TotalDebit.Equal(decimal.NewFromInt(100)))
	suite.True(draft.TotalCredit.Equal(decimal.NewFromInt(100)))
	suite.Len(draft.Entries, 2)
	suite.Equal(domain.Debit, draft.Entries[0].Side)
	suite.Equal(domain.Credit, draft.Entries[1].Side)

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockPeriodSvc.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateDraft_Unbalanced() {
	ctx := context.Background()
	req := suite.draftRequest()
	req.Entries[1].CreditAmount = decimal.NewFromInt(99)

	_, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalanced)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveDraft", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_SingleEntry() {
	ctx := context.Background()
	req := suite.draftRequest()
	req.Entries = req.Entries[:1]

	_, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_NotPostableAccount() {
	ctx := context.Background()
	req := suite.draftRequest()

	suite.mockAccountSvc.On("ResolveForPosting", ctx, suite.tenantID, suite.cashAccount.AccountID).Return(nil, apperrors.ErrNotPostable).Once()

	_, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPostable)
	suite.mockPeriodSvc.AssertNotCalled(suite.T(), "FindPeriodForDate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_NoPeriodForDate() {
	ctx := context.Background()
	req := suite.draftRequest()

	suite.mockAccountSvc.On("ResolveForPosting", ctx, suite.tenantID, mock.Anything).Return(&suite.cashAccount, nil).Twice()
	suite.mockPeriodSvc.On("FindPeriodForDate", ctx, suite.tenantID, req.Date).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateDraft_ClosedPeriod() {
	ctx := context.Background()
	req := suite.draftRequest()

	suite.mockAccountSvc.On("ResolveForPosting", ctx, suite.tenantID, mock.Anything).Return(&suite.cashAccount, nil).Twice()
	suite.mockPeriodSvc.On("FindPeriodForDate", ctx, suite.tenantID, req.Date).Return(&suite.period, nil).Once()
	suite.mockPeriodSvc.On("IsOpen", ctx, suite.tenantID, suite.period.FiscalYearID, suite.period.PeriodID).Return(false, nil).Once()

	_, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveDraft", mock.Anything, mock.Anything, mock.Anything)
}

// --- Post ---

func (suite *JournalServiceTestSuite) draftJournal() (*domain.Journal, []domain.JournalEntry) {
	journalID := uuid.NewString()
	journal := &domain.Journal{
		JournalID:     journalID,
		TenantID:      suite.tenantID,
		JournalNumber: "JRN-000007",
		JournalDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		FiscalYearID:  suite.period.FiscalYearID,
		PeriodID:      suite.period.PeriodID,
		Status:        domain.Draft,
		TotalDebit:    decimal.NewFromInt(100),
		TotalCredit:   decimal.NewFromInt(100),
	}
	entries := []domain.JournalEntry{
		{EntryID: uuid.NewString(), JournalID: journalID, TenantID: suite.tenantID, AccountID: suite.cashAccount.AccountID, Side: domain.Debit, DebitAmount: decimal.NewFromInt(100), LineNumber: 1},
		{EntryID: uuid.NewString(), JournalID: journalID, TenantID: suite.tenantID, AccountID: suite.salesAccount.AccountID, Side: domain.Credit, CreditAmount: decimal.NewFromInt(100), LineNumber: 2},
	}
	return journal, entries
}

func (suite *JournalServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	journal, entries := suite.draftJournal()
	accountsMap := map[string]domain.Account{
		suite.cashAccount.AccountID:  suite.cashAccount,
		suite.salesAccount.AccountID: suite.salesAccount,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("FindEntriesByJournalID", ctx, journal.JournalID).Return(entries, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.tenantID, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("PostJournal", ctx, mock.AnythingOfType("domain.Journal"), entries, mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			posted := args.Get(1).(domain.Journal)
			suite.Equal(domain.Posted, posted.Status)
			suite.Equal(suite.userID, posted.PostedBy)
			suite.Require().NotNil(posted.PostedAt)

			// Debit on an asset raises it, credit on income raises it: both
			// cached balances move up by 100.
			deltas := args.Get(3).(map[string]decimal.Decimal)
			suite.True(deltas[suite.cashAccount.AccountID].Equal(decimal.NewFromInt(100)))
			suite.True(deltas[suite.salesAccount.AccountID].Equal(decimal.NewFromInt(100)))
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	posted, err := suite.service.Post(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(posted)
	suite.Equal(domain.Posted, posted.Status)
	suite.Len(posted.Entries, 2)

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPost_NotADraft() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()
	journal.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()

	_, err := suite.service.Post(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPost_DuplicatePosting() {
	ctx := context.Background()
	journal, entries := suite.draftJournal()
	accountsMap := map[string]domain.Account{
		suite.cashAccount.AccountID:  suite.cashAccount,
		suite.salesAccount.AccountID: suite.salesAccount,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("FindEntriesByJournalID", ctx, journal.JournalID).Return(entries, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.tenantID, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("PostJournal", ctx, mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrDuplicatePosting).Once()

	_, err := suite.service.Post(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicatePosting)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

// --- Reverse ---

func (suite *JournalServiceTestSuite) TestReverse_Success() {
	ctx := context.Background()
	journal, entries := suite.draftJournal()
	postedAt := time.Now().UTC()
	journal.Status = domain.Posted
	journal.PostedAt = &postedAt
	accountsMap := map[string]domain.Account{
		suite.cashAccount.AccountID:  suite.cashAccount,
		suite.salesAccount.AccountID: suite.salesAccount,
	}

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("FindEntriesByJournalID", ctx, journal.JournalID).Return(entries, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.tenantID, mock.Anything).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("NextJournalNumber", ctx, suite.tenantID).Return(int64(8), nil).Once()
	suite.mockJournalRepo.On("SaveReversal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.JournalEntry"), mock.Anything).
		Run(func(args mock.Arguments) {
			original := args.Get(1).(domain.Journal)
			suite.Equal(journal.JournalID, original.JournalID)
			suite.Equal(suite.userID, original.ReversedBy)
			suite.Require().NotNil(original.ReversedAt)

			reversal := args.Get(2).(domain.Journal)
			suite.Equal(domain.Posted, reversal.Status)
			suite.Equal(domain.JournalTypeReversal, reversal.JournalType)
			suite.Require().NotNil(reversal.OriginalJournalID)
			suite.Equal(journal.JournalID, *reversal.OriginalJournalID)

			reversalEntries := args.Get(3).([]domain.JournalEntry)
			suite.Require().Len(reversalEntries, 2)
			suite.Equal(domain.Credit, reversalEntries[0].Side)
			suite.True(reversalEntries[0].CreditAmount.Equal(decimal.NewFromInt(100)))
			suite.Equal(domain.Debit, reversalEntries[1].Side)
			suite.True(reversalEntries[1].DebitAmount.Equal(decimal.NewFromInt(100)))
		}).
		Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	reversal, err := suite.service.Reverse(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversal)
	suite.Equal("JRN-000008", reversal.JournalNumber)
	suite.True(reversal.TotalDebit.Equal(journal.TotalCredit))
	suite.True(reversal.TotalCredit.Equal(journal.TotalDebit))

	suite.mockJournalRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverse_DraftJournal() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()

	_, err := suite.service.Reverse(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *JournalServiceTestSuite) TestReverse_AlreadyReversed() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()
	journal.Status = domain.Posted
	existing := uuid.NewString()
	journal.ReversingJournalID = &existing

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()

	_, err := suite.service.Reverse(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverse_OfAReversal() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()
	journal.Status = domain.Posted
	origID := uuid.NewString()
	journal.OriginalJournalID = &origID

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()

	_, err := suite.service.Reverse(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// --- DeleteDraft ---

func (suite *JournalServiceTestSuite) TestDeleteDraft_Success() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()
	suite.mockJournalRepo.On("DeleteDraft", ctx, suite.tenantID, journal.JournalID).Return(nil).Once()

	err := suite.service.DeleteDraft(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestDeleteDraft_PostedJournal() {
	ctx := context.Background()
	journal, _ := suite.draftJournal()
	journal.Status = domain.Posted

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journal.JournalID).Return(journal, nil).Once()

	err := suite.service.DeleteDraft(ctx, suite.tenantID, journal.JournalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "DeleteDraft", mock.Anything, mock.Anything, mock.Anything)
}

// --- GetJournalByID ---

func (suite *JournalServiceTestSuite) TestGetJournalByID_NotFound() {
	ctx := context.Background()
	journalID := uuid.NewString()

	suite.mockJournalRepo.On("FindJournalByID", ctx, suite.tenantID, journalID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetJournalByID(ctx, suite.tenantID, journalID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestListJournals_RepoError() {
	ctx := context.Background()

	suite.mockJournalRepo.On("ListJournals", ctx, suite.tenantID, mock.Anything, 20, (*string)(nil)).Return(nil, nil, assert.AnError).Once()

	_, err := suite.service.ListJournals(ctx, suite.tenantID, dto.ListJournalsParams{})

	suite.Require().Error(err)
	suite.Contains(err.Error(), assert.AnError.Error())
}

// --- Run Test Suite ---
func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
