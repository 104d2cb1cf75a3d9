package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/dto"
	"github.com/momotrack/momo_tracker_app/internal/handlers"
	"github.com/momotrack/momo_tracker_app/internal/middleware"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactionsForDate(ctx context.Context, userID string, date string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) SummaryForDate(ctx context.Context, userID string, date string) (*domain.DailySummary, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailySummary), args.Error(1)
}

func (m *MockLedgerService) AddTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) CancelTransaction(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, bool, error) {
	args := m.Called(ctx, userID, transactionID, reason)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, userID string, transactionID string) (bool, error) {
	args := m.Called(ctx, userID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) UnloadLedger(userID string) {
	m.Called(userID)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockLedgerService
	jwtSecret   string
	userID      string
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockService = new(MockLedgerService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterLedgerRoutes(v1, suite.mockService)
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "momo-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) doRequest(method, url string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func sampleDomainTransaction(userDate string) domain.Transaction {
	ts := time.Now().UTC()
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          domain.Deposit,
		Amount:        decimal.NewFromInt(100),
		CustomerName:  "Alice",
		CustomerPhone: "555-0001",
		Timestamp:     ts,
		Date:          userDate,
		Status:        domain.StatusActive,
	}
}

// --- Create ---

func (suite *LedgerHandlerTestSuite) TestCreateTransaction_Success() {
	txn := sampleDomainTransaction("2026-03-14")
	suite.mockService.On("AddTransaction", mock.Anything, suite.userID, mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
		return req.Type == domain.Deposit && req.Amount.Equal(decimal.NewFromInt(100))
	})).Return(&txn, true, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", gin.H{
		"type":          "DEPOSIT",
		"amount":        "100",
		"customerName":  "Alice",
		"customerPhone": "555-0001",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(txn.TransactionID, resp.TransactionID)
	suite.Require().NotNil(resp.Persisted)
	suite.True(*resp.Persisted)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestCreateTransaction_PersistenceFailureSurfaced() {
	txn := sampleDomainTransaction("2026-03-14")
	suite.mockService.On("AddTransaction", mock.Anything, suite.userID, mock.Anything).Return(&txn, false, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", gin.H{
		"type":          "DEPOSIT",
		"amount":        "100",
		"customerName":  "Alice",
		"customerPhone": "555-0001",
	})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.Persisted)
	suite.False(*resp.Persisted)
}

func (suite *LedgerHandlerTestSuite) TestCreateTransaction_InvalidTypeRejectedByBinding() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions", gin.H{
		"type":          "TRANSFER",
		"amount":        "100",
		"customerName":  "Alice",
		"customerPhone": "555-0001",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "AddTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestCreateTransaction_RequiresAuth() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- List ---

func (suite *LedgerHandlerTestSuite) TestListTransactions_All() {
	txns := []domain.Transaction{sampleDomainTransaction("2026-03-14")}
	suite.mockService.On("ListTransactions", mock.Anything, suite.userID).Return(txns, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 1)
}

func (suite *LedgerHandlerTestSuite) TestListTransactions_ForDate() {
	txns := []domain.Transaction{sampleDomainTransaction("2026-03-14")}
	suite.mockService.On("ListTransactionsForDate", mock.Anything, suite.userID, "2026-03-14").Return(txns, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions?date=2026-03-14", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestListTransactions_BadDate() {
	suite.mockService.On("ListTransactionsForDate", mock.Anything, suite.userID, "14-03-2026").
		Return(nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperrors.ErrValidation)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transactions?date=14-03-2026", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- Cancel ---

func (suite *LedgerHandlerTestSuite) TestCancelTransaction_Success() {
	txn := sampleDomainTransaction("2026-03-14")
	now := time.Now().UTC()
	txn.Status = domain.StatusCancelled
	txn.CancelledAt = &now
	txn.CancelReason = "duplicate"

	suite.mockService.On("CancelTransaction", mock.Anything, suite.userID, txn.TransactionID, "duplicate").
		Return(&txn, true, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+txn.TransactionID+"/cancel", gin.H{"reason": "duplicate"})

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusCancelled, resp.Status)
	suite.Equal("duplicate", resp.CancelReason)
}

func (suite *LedgerHandlerTestSuite) TestCancelTransaction_MissingReason() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+uuid.NewString()+"/cancel", gin.H{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "CancelTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestCancelTransaction_NotFound() {
	id := uuid.NewString()
	suite.mockService.On("CancelTransaction", mock.Anything, suite.userID, id, "typo").
		Return(nil, false, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+id+"/cancel", gin.H{"reason": "typo"})

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestCancelTransaction_AlreadyCancelled() {
	id := uuid.NewString()
	suite.mockService.On("CancelTransaction", mock.Anything, suite.userID, id, "again").
		Return(nil, false, apperrors.ErrAlreadyCancelled).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transactions/"+id+"/cancel", gin.H{"reason": "again"})

	suite.Equal(http.StatusConflict, w.Code)
}

// --- Delete ---

func (suite *LedgerHandlerTestSuite) TestDeleteTransaction_Success() {
	id := uuid.NewString()
	suite.mockService.On("DeleteTransaction", mock.Anything, suite.userID, id).Return(true, nil).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/transactions/"+id, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.DeleteTransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(id, resp.TransactionID)
	suite.True(resp.Persisted)
}

func (suite *LedgerHandlerTestSuite) TestDeleteTransaction_NotFound() {
	id := uuid.NewString()
	suite.mockService.On("DeleteTransaction", mock.Anything, suite.userID, id).Return(false, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/transactions/"+id, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

// --- Summary ---

func (suite *LedgerHandlerTestSuite) TestGetSummary_ForDate() {
	summary := &domain.DailySummary{
		Date:           "2026-03-14",
		Deposits:       decimal.NewFromInt(100),
		Withdrawals:    decimal.NewFromInt(40),
		Airtime:        decimal.Zero,
		NetBalance:     decimal.NewFromInt(60),
		ActiveCount:    2,
		CancelledCount: 0,
	}
	suite.mockService.On("SummaryForDate", mock.Anything, suite.userID, "2026-03-14").Return(summary, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/summary?date=2026-03-14", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.DailySummaryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("100.00", resp.Deposits)
	suite.Equal("40.00", resp.Withdrawals)
	suite.Equal("60.00", resp.NetBalance)
	suite.Equal(2, resp.ActiveCount)
}

func (suite *LedgerHandlerTestSuite) TestGetSummary_DefaultsToToday() {
	today := domain.DateOf(time.Now())
	summary := &domain.DailySummary{Date: today, Deposits: decimal.Zero, Withdrawals: decimal.Zero, Airtime: decimal.Zero, NetBalance: decimal.Zero}
	suite.mockService.On("SummaryForDate", mock.Anything, suite.userID, today).Return(summary, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/summary", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
