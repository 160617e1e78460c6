package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/retailops/ledger_service/internal/apperrors"
	"github.com/retailops/ledger_service/internal/core/domain"
	portsrepo "github.com/retailops/ledger_service/internal/core/ports/repositories"
	portssvc "github.com/retailops/ledger_service/internal/core/ports/services"
	"github.com/retailops/ledger_service/internal/core/services"
	"github.com/retailops/ledger_service/internal/dto"
)

// --- Mock PeriodRepository ---
type MockPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindFiscalYearByID(ctx context.Context, tenantID, fiscalYearID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, tenantID, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockPeriodRepository) ListFiscalYears(ctx context.Context, tenantID string) ([]domain.FiscalYear, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, tenantID, fiscalYearID string) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, fiscalYearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockPeriodRepository) CountOpenPeriods(ctx context.Context, tenantID, fiscalYearID string) (int, error) {
	args := m.Called(ctx, tenantID, fiscalYearID)
	return args.Int(0), args.Error(1)
}

func (m *MockPeriodRepository) SaveFiscalYear(ctx context.Context, fiscalYear domain.FiscalYear) error {
	args := m.Called(ctx, fiscalYear)
	return args.Error(0)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) ClosePeriod(ctx context.Context, tenantID, periodID, closedBy string, at time.Time) error {
	args := m.Called(ctx, tenantID, periodID, closedBy, at)
	return args.Error(0)
}

func (m *MockPeriodRepository) CloseFiscalYear(ctx context.Context, tenantID, fiscalYearID, closedBy string, at time.Time) error {
	args := m.Called(ctx, tenantID, fiscalYearID, closedBy, at)
	return args.Error(0)
}

func (m *MockPeriodRepository) FindPeriodForShare(ctx context.Context, tx pgx.Tx, tenantID, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, tx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

// --- Test Suite Setup ---
type PeriodServiceTestSuite struct {
	suite.Suite
	mockPeriodRepo *MockPeriodRepository
	mockPublisher  *MockEventPublisher
	service        portssvc.PeriodSvcFacade
	tenantID       string
	userID         string
	fiscalYear     domain.FiscalYear
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockPeriodRepo = new(MockPeriodRepository)
	suite.mockPublisher = new(MockEventPublisher)
	suite.service = services.NewPeriodService(suite.mockPeriodRepo, suite.mockPublisher)

	suite.tenantID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.fiscalYear = domain.FiscalYear{
		FiscalYearID: uuid.NewString(),
		TenantID:     suite.tenantID,
		Name:         "FY2026",
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:       domain.FiscalYearActive,
	}
}

// --- CreateFiscalYear ---

func (suite *PeriodServiceTestSuite) TestCreateFiscalYear_Success() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Name:      "FY2026",
		StartDate: suite.fiscalYear.StartDate,
		EndDate:   suite.fiscalYear.EndDate,
	}

	suite.mockPeriodRepo.On("SaveFiscalYear", ctx, mock.AnythingOfType("domain.FiscalYear")).Return(nil).Once()

	fiscalYear, err := suite.service.CreateFiscalYear(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(fiscalYear)
	suite.Equal(domain.FiscalYearActive, fiscalYear.Status)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCreateFiscalYear_EndBeforeStart() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Name:      "FY2026",
		StartDate: suite.fiscalYear.EndDate,
		EndDate:   suite.fiscalYear.StartDate,
	}

	_, err := suite.service.CreateFiscalYear(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "SaveFiscalYear", mock.Anything, mock.Anything)
}

// --- CreatePeriod ---

func (suite *PeriodServiceTestSuite) periodRequest() dto.CreatePeriodRequest {
	return dto.CreatePeriodRequest{
		FiscalYearID: suite.fiscalYear.FiscalYearID,
		Name:         "2026-02",
		StartDate:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_Success() {
	ctx := context.Background()
	req := suite.periodRequest()

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&suite.fiscalYear, nil).Once()
	suite.mockPeriodRepo.On("ListPeriods", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return([]domain.AccountingPeriod{}, nil).Once()
	suite.mockPeriodRepo.On("SavePeriod", ctx, mock.AnythingOfType("domain.AccountingPeriod")).Return(nil).Once()

	period, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(period)
	suite.Equal(domain.PeriodActive, period.Status)
	suite.Equal(suite.fiscalYear.FiscalYearID, period.FiscalYearID)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_OverlapsSibling() {
	ctx := context.Background()
	req := suite.periodRequest()
	sibling := domain.AccountingPeriod{
		PeriodID:     uuid.NewString(),
		FiscalYearID: suite.fiscalYear.FiscalYearID,
		Name:         "2026-01x",
		StartDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		Status:       domain.PeriodActive,
	}

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&suite.fiscalYear, nil).Once()
	suite.mockPeriodRepo.On("ListPeriods", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return([]domain.AccountingPeriod{sibling}, nil).Once()

	_, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "SavePeriod", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_SharesBoundaryDate() {
	ctx := context.Background()
	req := suite.periodRequest()
	// Starts on the sibling's inclusive end date, so both would own Jan 31.
	sibling := domain.AccountingPeriod{
		PeriodID:     uuid.NewString(),
		FiscalYearID: suite.fiscalYear.FiscalYearID,
		Name:         "2026-01",
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:       domain.PeriodActive,
	}
	req.StartDate = sibling.EndDate
	req.EndDate = time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&suite.fiscalYear, nil).Once()
	suite.mockPeriodRepo.On("ListPeriods", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return([]domain.AccountingPeriod{sibling}, nil).Once()

	_, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "SavePeriod", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_OutsideFiscalYear() {
	ctx := context.Background()
	req := suite.periodRequest()
	req.StartDate = time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&suite.fiscalYear, nil).Once()

	_, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_ClosedFiscalYear() {
	ctx := context.Background()
	req := suite.periodRequest()
	closedYear := suite.fiscalYear
	closedYear.Status = domain.FiscalYearClosed

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&closedYear, nil).Once()

	_, err := suite.service.CreatePeriod(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)
}

// --- IsOpen ---

func (suite *PeriodServiceTestSuite) TestIsOpen_ClosedFiscalYearWinsOverOpenPeriod() {
	ctx := context.Background()
	closedYear := suite.fiscalYear
	closedYear.Status = domain.FiscalYearClosed

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&closedYear, nil).Once()

	open, err := suite.service.IsOpen(ctx, suite.tenantID, suite.fiscalYear.FiscalYearID, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(open)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "FindPeriodByID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestIsOpen_PeriodOutsideFiscalYear() {
	ctx := context.Background()
	period := domain.AccountingPeriod{
		PeriodID:     uuid.NewString(),
		FiscalYearID: uuid.NewString(), // different year
		Status:       domain.PeriodActive,
	}

	suite.mockPeriodRepo.On("FindFiscalYearByID", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(&suite.fiscalYear, nil).Once()
	suite.mockPeriodRepo.On("FindPeriodByID", ctx, suite.tenantID, period.PeriodID).Return(&period, nil).Once()

	_, err := suite.service.IsOpen(ctx, suite.tenantID, suite.fiscalYear.FiscalYearID, period.PeriodID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ClosePeriod / CloseFiscalYear ---

func (suite *PeriodServiceTestSuite) TestClosePeriod_Success() {
	ctx := context.Background()
	periodID := uuid.NewString()

	suite.mockPeriodRepo.On("ClosePeriod", ctx, suite.tenantID, periodID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	err := suite.service.ClosePeriod(ctx, suite.tenantID, periodID, suite.userID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestClosePeriod_AlreadyClosed() {
	ctx := context.Background()
	periodID := uuid.NewString()

	suite.mockPeriodRepo.On("ClosePeriod", ctx, suite.tenantID, periodID, suite.userID, mock.Anything).Return(apperrors.ErrAlreadyClosed).Once()

	err := suite.service.ClosePeriod(ctx, suite.tenantID, periodID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.mockPublisher.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCloseFiscalYear_OpenPeriodsRemain() {
	ctx := context.Background()

	suite.mockPeriodRepo.On("CountOpenPeriods", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(2, nil).Once()

	err := suite.service.CloseFiscalYear(ctx, suite.tenantID, suite.fiscalYear.FiscalYearID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "CloseFiscalYear", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCloseFiscalYear_Success() {
	ctx := context.Background()

	suite.mockPeriodRepo.On("CountOpenPeriods", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID).Return(0, nil).Once()
	suite.mockPeriodRepo.On("CloseFiscalYear", ctx, suite.tenantID, suite.fiscalYear.FiscalYearID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.Event")).Return().Once()

	err := suite.service.CloseFiscalYear(ctx, suite.tenantID, suite.fiscalYear.FiscalYearID, suite.userID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
	suite.mockPublisher.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestPeriodService(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
