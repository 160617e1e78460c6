package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/core/services"
	"github.com/retailops/ledger_service/internal/dto"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccountType(ctx context.Context, accountType domain.AccountType) error {
	args := m.Called(ctx, accountType)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountTypeByID(ctx context.Context, tenantID, accountTypeID string) (*domain.AccountType, error) {
	args := m.Called(ctx, tenantID, accountTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountType), args.Error(1)
}

func (m *MockAccountRepository) ListAccountTypes(ctx context.Context, tenantID string) ([]domain.AccountType, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountType), args.Error(1)
}

func (m *MockAccountRepository) DeactivateAccountType(ctx context.Context, tenantID, accountTypeID, updatedBy string, at time.Time) error {
	args := m.Called(ctx, tenantID, accountTypeID, updatedBy, at)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, tenantID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Account), returnedNextToken, args.Error(2)
}

func (m *MockAccountRepository) CountActiveChildren(ctx context.Context, tenantID, accountID string) (int, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, updatedBy string, at time.Time) error {
	args := m.Called(ctx, tenantID, accountID, updatedBy, at)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, tenantID string, deltas map[string]decimal.Decimal, updatedBy string, at time.Time) error {
	args := m.Called(ctx, tx, tenantID, deltas, updatedBy, at)
	return args.Error(0)
}

// --- Test Suite Setup ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	tenantID        string
	userID          string
	assetType       domain.AccountType
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.assetType = domain.AccountType{
		AccountTypeID: uuid.NewString(),
		TenantID:      suite.tenantID,
		Code:          "CASH",
		Name:          "Cash and Equivalents",
		Category:      domain.Asset,
		IsActive:      true,
	}
}

// --- CreateAccountType ---

func (suite *AccountServiceTestSuite) TestCreateAccountType_Success() {
	ctx := context.Background()
	req := dto.CreateAccountTypeRequest{Code: "CASH", Name: "Cash and Equivalents", Category: domain.Asset}

	suite.mockAccountRepo.On("SaveAccountType", ctx, mock.AnythingOfType("domain.AccountType")).Return(nil).Once()

	accountType, err := suite.service.CreateAccountType(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(accountType)
	suite.NotEmpty(accountType.AccountTypeID)
	suite.Equal(domain.Asset, accountType.Category)
	suite.True(accountType.IsActive)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccountType_UnknownCategory() {
	ctx := context.Background()
	req := dto.CreateAccountTypeRequest{Code: "MISC", Name: "Misc", Category: "SOMETHING"}

	_, err := suite.service.CreateAccountType(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccountType", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccountType_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountTypeRequest{Code: "CASH", Name: "Cash", Category: domain.Asset}

	suite.mockAccountRepo.On("SaveAccountType", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccountType(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountTypeID:  suite.assetType.AccountTypeID,
		Code:           "1000",
		Name:           "Register Cash",
		OpeningBalance: decimal.NewFromInt(500),
		IsCashAccount:  true,
	}

	suite.mockAccountRepo.On("FindAccountTypeByID", ctx, suite.tenantID, suite.assetType.AccountTypeID).Return(&suite.assetType, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(domain.Asset, account.Category)
	suite.True(account.IsActive)
	suite.True(account.CurrentBalance.Equal(decimal.NewFromInt(500)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentCategoryMismatch() {
	ctx := context.Background()
	parent := domain.Account{
		AccountID: uuid.NewString(),
		TenantID:  suite.tenantID,
		Category:  domain.Expense,
		IsActive:  true,
	}
	req := dto.CreateAccountRequest{
		AccountTypeID:   suite.assetType.AccountTypeID,
		ParentAccountID: parent.AccountID,
		Code:            "1010",
		Name:            "Petty Cash",
	}

	suite.mockAccountRepo.On("FindAccountTypeByID", ctx, suite.tenantID, suite.assetType.AccountTypeID).Return(&suite.assetType, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, parent.AccountID).Return(&parent, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NegativeOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountTypeID:  suite.assetType.AccountTypeID,
		Code:           "1000",
		Name:           "Register Cash",
		OpeningBalance: decimal.NewFromInt(-1),
	}

	suite.mockAccountRepo.On("FindAccountTypeByID", ctx, suite.tenantID, suite.assetType.AccountTypeID).Return(&suite.assetType, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ResolveForPosting ---

func (suite *AccountServiceTestSuite) postableAccount() domain.Account {
	return domain.Account{
		AccountID: uuid.NewString(),
		TenantID:  suite.tenantID,
		Code:      "1000",
		Category:  domain.Asset,
		IsActive:  true,
	}
}

func (suite *AccountServiceTestSuite) TestResolveForPosting_Success() {
	ctx := context.Background()
	account := suite.postableAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()
	suite.mockAccountRepo.On("CountActiveChildren", ctx, suite.tenantID, account.AccountID).Return(0, nil).Once()

	resolved, err := suite.service.ResolveForPosting(ctx, suite.tenantID, account.AccountID)

	suite.Require().NoError(err)
	suite.Equal(account.AccountID, resolved.AccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestResolveForPosting_Inactive() {
	ctx := context.Background()
	account := suite.postableAccount()
	account.IsActive = false

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()

	_, err := suite.service.ResolveForPosting(ctx, suite.tenantID, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPostable)
}

func (suite *AccountServiceTestSuite) TestResolveForPosting_ControlAccount() {
	ctx := context.Background()
	account := suite.postableAccount()
	account.IsControlAccount = true

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()

	_, err := suite.service.ResolveForPosting(ctx, suite.tenantID, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPostable)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "CountActiveChildren", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestResolveForPosting_NonLeaf() {
	ctx := context.Background()
	account := suite.postableAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()
	suite.mockAccountRepo.On("CountActiveChildren", ctx, suite.tenantID, account.AccountID).Return(3, nil).Once()

	_, err := suite.service.ResolveForPosting(ctx, suite.tenantID, account.AccountID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotPostable)
}

// --- DeactivateAccount ---

func (suite *AccountServiceTestSuite) TestDeactivateAccount_WithActiveChildren() {
	ctx := context.Background()
	account := suite.postableAccount()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()
	suite.mockAccountRepo.On("CountActiveChildren", ctx, suite.tenantID, account.AccountID).Return(2, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	account := suite.postableAccount()
	account.IsActive = false

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.tenantID, account.AccountID).Return(&account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.tenantID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// --- Run Test Suite ---
func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
