package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to ledger rows.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers routes related to ledger rows.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	rg.POST("/transactions/:transactionID/refund", h.refundTransaction)
	rg.GET("/transaction-groups/:groupID", h.getTransactionGroup)
	rg.GET("/collectives/:collectiveID/transactions", h.listCollectiveTransactions)
}

// refundTransaction godoc
// @Summary Refund a transaction
// @Description Records, in a new group, the inverse of every pair of the transaction's group
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "ID of any row of the group to refund"
// @Success 201 {object} dto.TransactionGroupResponse
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 422 {object} dto.ErrorResponse "Already refunded"
// @Security BearerAuth
// @Router /transactions/{transactionID}/refund [post]
func (h *ledgerHandler) refundTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID))
	logger.Info("Received request to refund transaction")

	rows, err := h.ledgerService.Refund(c.Request.Context(), transactionID, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to refund transaction")
		return
	}

	c.JSON(http.StatusCreated, dto.NewTransactionGroupResponse(rows[0].TransactionGroup, rows))
}

// getTransactionGroup godoc
// @Summary Get a transaction group
// @Description Retrieves every row of one economic event
// @Tags transactions
// @Produce  json
// @Param   groupID path string true "Transaction group"
// @Success 200 {object} dto.TransactionGroupResponse
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Security BearerAuth
// @Router /transaction-groups/{groupID} [get]
func (h *ledgerHandler) getTransactionGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	rows, err := h.ledgerService.GetTransactionGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, logger.With(slog.String("transaction_group", groupID)), err, "Failed to retrieve transaction group")
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionGroupResponse(groupID, rows))
}

// listCollectiveTransactions godoc
// @Summary List the transactions of a collective
// @Description Token paginated, newest first
// @Tags transactions
// @Produce  json
// @Param   collectiveID path string true "Collective ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Security BearerAuth
// @Router /collectives/{collectiveID}/transactions [get]
func (h *ledgerHandler) listCollectiveTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	collectiveID := c.Param("collectiveID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.ledgerService.ListTransactionsByCollective(c.Request.Context(), collectiveID, params)
	if err != nil {
		respondError(c, logger.With(slog.String("collective_id", collectiveID)), err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}
