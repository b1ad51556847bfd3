package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to orders and their payment.
type paymentHandler struct {
	paymentService portssvc.PaymentSvc
}

func newPaymentHandler(ps portssvc.PaymentSvc) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers routes related to orders.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvc) {
	h := newPaymentHandler(paymentService)

	orders := rg.Group("/orders")
	{
		orders.GET("/:orderID", h.getOrder)
		orders.POST("/:orderID/payments", h.processOrderPayment)
	}
}

// processOrderPayment godoc
// @Summary Process the payment of an order
// @Description Charges the order through a payment provider while holding the order lock, then records the ledger rows and marks the order PAID
// @Tags orders
// @Accept  json
// @Produce  json
// @Param   orderID path string true "Order ID"
// @Param   payment body dto.ProcessOrderPaymentRequest true "Payment details"
// @Success 201 {object} dto.ProcessOrderPaymentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 402 {object} dto.ProviderErrorResponse "Payer action required"
// @Failure 404 {object} dto.ErrorResponse "Order not found"
// @Failure 409 {object} dto.ErrorResponse "Order is being processed, retryable"
// @Failure 422 {object} dto.ErrorResponse "Order cannot be paid"
// @Failure 502 {object} dto.ProviderErrorResponse "Payment provider failure"
// @Security BearerAuth
// @Router /orders/{orderID}/payments [post]
func (h *paymentHandler) processOrderPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	var req dto.ProcessOrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessOrderPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("order_id", orderID), slog.String("provider", req.Provider))
	logger.Info("Received request to process order payment")

	resp, err := h.paymentService.ProcessOrderPayment(c.Request.Context(), orderID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to process order payment")
		return
	}

	logger.Info("Order payment processed", slog.String("transaction_group", resp.TransactionGroup))
	c.JSON(http.StatusCreated, resp)
}

// getOrder godoc
// @Summary Get an order
// @Tags orders
// @Produce  json
// @Param   orderID path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} dto.ErrorResponse "Order not found"
// @Security BearerAuth
// @Router /orders/{orderID} [get]
func (h *paymentHandler) getOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	order, err := h.paymentService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, logger.With(slog.String("order_id", orderID)), err, "Failed to retrieve order")
		return
	}
	c.JSON(http.StatusOK, order)
}
