package services_test

import (
	"context"
	"testing"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/core/services"
	"github.com/momotrack/momo_tracker_app/internal/dto"
	"github.com/momotrack/momo_tracker_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) LoadLedger(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) SaveLedger(ctx context.Context, userID string, transactions []domain.Transaction) error {
	args := m.Called(ctx, userID, transactions)
	return args.Error(0)
}

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.LedgerSvcFacade
	userID   string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.mockRepo, nil)
	suite.userID = uuid.NewString()
}

func (suite *LedgerServiceTestSuite) expectEmptyLoad() {
	suite.mockRepo.On("LoadLedger", mock.Anything, suite.userID).Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *LedgerServiceTestSuite) expectSave() {
	suite.mockRepo.On("SaveLedger", mock.Anything, suite.userID, mock.Anything).Return(nil)
}

func depositRequest(amount int64) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type:          domain.Deposit,
		Amount:        decimal.NewFromInt(amount),
		CustomerName:  "Alice",
		CustomerPhone: "555-0001",
	}
}

// --- Add ---

func (suite *LedgerServiceTestSuite) TestAddTransaction_Success() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	txn, persisted, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.True(persisted)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(domain.StatusActive, txn.Status)
	suite.Equal(domain.DateOf(txn.Timestamp), txn.Date)
	suite.Nil(txn.CancelledAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_UniqueIDsAndOrdering() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	first, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)
	second, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(200))
	suite.Require().NoError(err)

	suite.NotEqual(first.TransactionID, second.TransactionID)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 2)
	// Newest first.
	suite.Equal(second.TransactionID, txns[0].TransactionID)
	suite.Equal(first.TransactionID, txns[1].TransactionID)
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_RejectsNonPositiveAmount() {
	ctx := context.Background()

	req := depositRequest(0)
	_, _, err := suite.service.AddTransaction(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req.Amount = decimal.NewFromInt(-5)
	_, _, err = suite.service.AddTransaction(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	// No load or save may happen for rejected input.
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveLedger", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "LoadLedger", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_RejectsMissingCustomerFields() {
	ctx := context.Background()

	req := depositRequest(10)
	req.CustomerName = ""
	_, _, err := suite.service.AddTransaction(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)

	req = depositRequest(10)
	req.CustomerPhone = ""
	_, _, err = suite.service.AddTransaction(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_RejectsUnknownType() {
	ctx := context.Background()

	req := depositRequest(10)
	req.Type = domain.TransactionType("TRANSFER")
	_, _, err := suite.service.AddTransaction(ctx, suite.userID, req)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestAddTransaction_SaveFailureKeepsInMemoryState() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.mockRepo.On("SaveLedger", mock.Anything, suite.userID, mock.Anything).Return(assert.AnError).Once()

	txn, persisted, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))

	suite.Require().NoError(err)
	suite.False(persisted)
	suite.Require().NotNil(txn)

	// The mutation survives in memory despite the failed save.
	txns, listErr := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(listErr)
	suite.Len(txns, 1)

	// The next mutation retries the full-sequence write.
	suite.mockRepo.On("SaveLedger", mock.Anything, suite.userID, mock.MatchedBy(func(txns []domain.Transaction) bool {
		return len(txns) == 2
	})).Return(nil).Once()
	_, persisted, err = suite.service.AddTransaction(ctx, suite.userID, depositRequest(50))
	suite.Require().NoError(err)
	suite.True(persisted)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Cancel ---

func (suite *LedgerServiceTestSuite) TestCancelTransaction_Success() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	txn, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)

	cancelled, persisted, err := suite.service.CancelTransaction(ctx, suite.userID, txn.TransactionID, "duplicate entry")

	suite.Require().NoError(err)
	suite.True(persisted)
	suite.Equal(domain.StatusCancelled, cancelled.Status)
	suite.Require().NotNil(cancelled.CancelledAt)
	suite.Equal("duplicate entry", cancelled.CancelReason)

	// Original fields stay untouched.
	suite.Equal(txn.TransactionID, cancelled.TransactionID)
	suite.Equal(txn.Type, cancelled.Type)
	suite.True(txn.Amount.Equal(cancelled.Amount))
	suite.Equal(txn.CustomerName, cancelled.CustomerName)
	suite.Equal(txn.CustomerPhone, cancelled.CustomerPhone)
	suite.Equal(txn.Timestamp, cancelled.Timestamp)
}

func (suite *LedgerServiceTestSuite) TestCancelTransaction_NotFound() {
	ctx := context.Background()
	suite.expectEmptyLoad()

	_, _, err := suite.service.CancelTransaction(ctx, suite.userID, uuid.NewString(), "whatever")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestCancelTransaction_EmptyReasonRejected() {
	ctx := context.Background()

	_, _, err := suite.service.CancelTransaction(ctx, suite.userID, uuid.NewString(), "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCancelTransaction_RecancelRejectedAndAuditPreserved() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	txn, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)

	first, _, err := suite.service.CancelTransaction(ctx, suite.userID, txn.TransactionID, "first reason")
	suite.Require().NoError(err)

	_, _, err = suite.service.CancelTransaction(ctx, suite.userID, txn.TransactionID, "second reason")
	suite.ErrorIs(err, apperrors.ErrAlreadyCancelled)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 1)
	suite.Equal("first reason", txns[0].CancelReason)
	suite.Equal(first.CancelledAt, txns[0].CancelledAt)
}

// --- Delete ---

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_RemovesExactlyOne() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	keep, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)
	remove, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(200))
	suite.Require().NoError(err)

	persisted, err := suite.service.DeleteTransaction(ctx, suite.userID, remove.TransactionID)
	suite.Require().NoError(err)
	suite.True(persisted)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Require().Len(txns, 1)
	suite.Equal(keep.TransactionID, txns[0].TransactionID)

	listed, err := suite.service.ListTransactionsForDate(ctx, suite.userID, remove.Date)
	suite.Require().NoError(err)
	for _, t := range listed {
		suite.NotEqual(remove.TransactionID, t.TransactionID)
	}
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_NotFoundIsNoOp() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	_, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)

	_, err = suite.service.DeleteTransaction(ctx, suite.userID, uuid.NewString())
	suite.ErrorIs(err, apperrors.ErrNotFound)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Len(txns, 1)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_WorksOnCancelled() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	txn, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)
	_, _, err = suite.service.CancelTransaction(ctx, suite.userID, txn.TransactionID, "typo")
	suite.Require().NoError(err)

	_, err = suite.service.DeleteTransaction(ctx, suite.userID, txn.TransactionID)
	suite.Require().NoError(err)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Empty(txns)
}

// --- List / Summary ---

func (suite *LedgerServiceTestSuite) TestListTransactionsForDate_FiltersByDate() {
	ctx := context.Background()
	yesterday := domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          domain.Deposit,
		Amount:        decimal.NewFromInt(500),
		CustomerName:  "Old",
		CustomerPhone: "555-0009",
		Date:          "2020-01-01",
		Status:        domain.StatusActive,
	}
	suite.mockRepo.On("LoadLedger", mock.Anything, suite.userID).Return([]domain.Transaction{yesterday}, nil).Once()
	suite.expectSave()

	today, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)

	listed, err := suite.service.ListTransactionsForDate(ctx, suite.userID, today.Date)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.Equal(today.TransactionID, listed[0].TransactionID)

	old, err := suite.service.ListTransactionsForDate(ctx, suite.userID, "2020-01-01")
	suite.Require().NoError(err)
	suite.Require().Len(old, 1)
	suite.Equal(yesterday.TransactionID, old[0].TransactionID)
}

func (suite *LedgerServiceTestSuite) TestListTransactionsForDate_RejectsBadDate() {
	ctx := context.Background()
	_, err := suite.service.ListTransactionsForDate(ctx, suite.userID, "01/02/2024")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// TestDailyScenario walks the canonical merchant day: deposit, withdrawal,
// cancel the withdrawal, then purge it.
func (suite *LedgerServiceTestSuite) TestDailyScenario() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	deposit, _, err := suite.service.AddTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Type: domain.Deposit, Amount: decimal.NewFromInt(100), CustomerName: "Alice", CustomerPhone: "555-0001",
	})
	suite.Require().NoError(err)
	day := deposit.Date

	summary, err := suite.service.SummaryForDate(ctx, suite.userID, day)
	suite.Require().NoError(err)
	suite.True(summary.NetBalance.Equal(decimal.NewFromInt(100)))
	suite.Equal(1, summary.ActiveCount)

	withdrawal, _, err := suite.service.AddTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Type: domain.Withdrawal, Amount: decimal.NewFromInt(40), CustomerName: "Bob", CustomerPhone: "555-0002",
	})
	suite.Require().NoError(err)

	summary, err = suite.service.SummaryForDate(ctx, suite.userID, day)
	suite.Require().NoError(err)
	suite.True(summary.NetBalance.Equal(decimal.NewFromInt(60)))

	_, _, err = suite.service.CancelTransaction(ctx, suite.userID, withdrawal.TransactionID, "duplicate")
	suite.Require().NoError(err)

	summary, err = suite.service.SummaryForDate(ctx, suite.userID, day)
	suite.Require().NoError(err)
	suite.True(summary.NetBalance.Equal(decimal.NewFromInt(100)))
	suite.Equal(1, summary.ActiveCount)
	suite.Equal(1, summary.CancelledCount)

	_, err = suite.service.DeleteTransaction(ctx, suite.userID, withdrawal.TransactionID)
	suite.Require().NoError(err)

	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Len(txns, 1)

	summary, err = suite.service.SummaryForDate(ctx, suite.userID, day)
	suite.Require().NoError(err)
	suite.Equal(0, summary.CancelledCount)
}

func (suite *LedgerServiceTestSuite) TestAirtimeDoesNotMoveNetBalance() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	airtime, _, err := suite.service.AddTransaction(ctx, suite.userID, dto.CreateTransactionRequest{
		Type: domain.Airtime, Amount: decimal.NewFromInt(20), CustomerName: "Carol", CustomerPhone: "555-0003",
	})
	suite.Require().NoError(err)

	summary, err := suite.service.SummaryForDate(ctx, suite.userID, airtime.Date)
	suite.Require().NoError(err)
	suite.True(summary.Airtime.Equal(decimal.NewFromInt(20)))
	suite.True(summary.NetBalance.IsZero())

	txns, err := suite.service.ListTransactionsForDate(ctx, suite.userID, airtime.Date)
	suite.Require().NoError(err)
	suite.True(accounting.TotalByType(txns, domain.Airtime).Equal(decimal.NewFromInt(20)))
}

// --- Unload ---

func (suite *LedgerServiceTestSuite) TestUnloadLedger_DropsInMemoryStateWithoutSaving() {
	ctx := context.Background()
	suite.expectEmptyLoad()
	suite.expectSave()

	_, _, err := suite.service.AddTransaction(ctx, suite.userID, depositRequest(100))
	suite.Require().NoError(err)

	suite.service.UnloadLedger(suite.userID)

	// The next operation reloads from storage.
	suite.mockRepo.On("LoadLedger", mock.Anything, suite.userID).Return([]domain.Transaction{}, nil).Once()
	txns, err := suite.service.ListTransactions(ctx, suite.userID)
	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
