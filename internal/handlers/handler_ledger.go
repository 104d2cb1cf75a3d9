package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/dto"
	"github.com/momotrack/momo_tracker_app/internal/middleware"
)

// LedgerHandler handles transaction and summary requests.
type LedgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterLedgerRoutes sets up the transaction and summary routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := NewLedgerHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.CreateTransaction)
		transactions.GET("", h.ListTransactions)
		transactions.POST("/:transactionID/cancel", h.CancelTransaction)
		transactions.DELETE("/:transactionID", h.DeleteTransaction)
	}
	rg.GET("/summary", h.GetSummary)
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Description Records a deposit, withdrawal or airtime sale at the head of the agent's ledger.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [post]
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	txn, persisted, err := h.ledgerService.AddTransaction(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to record transaction")
		return
	}
	if !persisted {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Transaction recorded but not persisted",
			slog.String("transaction_id", txn.TransactionID))
	}

	c.JSON(http.StatusCreated, dto.ToMutatedTransactionResponse(*txn, persisted))
}

// ListTransactions godoc
// @Summary List transactions
// @Description Lists the agent's transactions newest first. With ?date=YYYY-MM-DD, only that calendar day (UTC) is returned, cancelled entries included.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [get]
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var (
		txns []domain.Transaction
		err  error
	)
	if date := c.Query("date"); date != "" {
		txns, err = h.ledgerService.ListTransactionsForDate(c.Request.Context(), userID, date)
	} else {
		txns, err = h.ledgerService.ListTransactions(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}

	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns))
}

// CancelTransaction godoc
// @Summary Cancel a transaction
// @Description Marks a transaction cancelled with an audit reason. The entry stays in the ledger but no longer counts toward totals.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transactionID path string true "Transaction ID"
// @Param cancel body dto.CancelTransactionRequest true "Cancellation reason"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already cancelled"
// @Failure 500 {object} ErrorResponse
// @Router /transactions/{transactionID}/cancel [post]
func (h *LedgerHandler) CancelTransaction(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Cancellation reason is required"})
		return
	}

	txn, persisted, err := h.ledgerService.CancelTransaction(c.Request.Context(), userID, c.Param("transactionID"), req.Reason)
	if err != nil {
		respondError(c, err, "Failed to cancel transaction")
		return
	}

	c.JSON(http.StatusOK, dto.ToMutatedTransactionResponse(*txn, persisted))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Permanently removes a transaction from the ledger, regardless of status. Prefer cancel for auditability.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} dto.DeleteTransactionResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions/{transactionID} [delete]
func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	transactionID := c.Param("transactionID")
	persisted, err := h.ledgerService.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}

	c.JSON(http.StatusOK, dto.DeleteTransactionResponse{TransactionID: transactionID, Persisted: persisted})
}

// GetSummary godoc
// @Summary Daily summary
// @Description Returns totals per type, net balance and entry counts for a calendar day (UTC). Defaults to today.
// @Tags summary
// @Produce json
// @Security BearerAuth
// @Param date query string false "Calendar date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.DailySummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /summary [get]
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = domain.DateOf(time.Now())
	}

	summary, err := h.ledgerService.SummaryForDate(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err, "Failed to compute summary")
		return
	}

	c.JSON(http.StatusOK, dto.ToDailySummaryResponse(*summary))
}
