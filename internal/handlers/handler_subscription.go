package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// subscriptionHandler handles HTTP requests related to platform subscriptions and billing.
type subscriptionHandler struct {
	subscriptionService portssvc.SubscriptionSvcFacade
}

func newSubscriptionHandler(ss portssvc.SubscriptionSvcFacade) *subscriptionHandler {
	return &subscriptionHandler{
		subscriptionService: ss,
	}
}

// registerSubscriptionRoutes registers routes related to platform subscriptions.
func registerSubscriptionRoutes(rg *gin.RouterGroup, subscriptionService portssvc.SubscriptionSvcFacade) {
	h := newSubscriptionHandler(subscriptionService)

	hosts := rg.Group("/hosts/:hostID")
	{
		hosts.POST("/platform-subscriptions", h.createSubscription)
		hosts.GET("/platform-subscriptions", h.listSubscriptionsInPeriod)
		hosts.GET("/platform-subscriptions/current", h.getCurrentSubscription)
		hosts.PUT("/platform-subscriptions/current", h.replaceCurrentSubscription)
		hosts.GET("/billing", h.getBilling)
	}
}

// createSubscription godoc
// @Summary Subscribe a host to a plan
// @Description Creates an open ended subscription starting at effectiveAt (defaults to now)
// @Tags platform subscriptions
// @Accept  json
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Param   subscription body dto.SubscriptionChangeRequest true "Plan and start"
// @Success 201 {object} domain.PlatformSubscription
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Overlaps an existing subscription"
// @Security BearerAuth
// @Router /hosts/{hostID}/platform-subscriptions [post]
func (h *subscriptionHandler) createSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	var req dto.SubscriptionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	start := time.Now()
	if req.EffectiveAt != nil {
		start = *req.EffectiveAt
	}

	logger = logger.With(slog.String("host_id", hostID), slog.String("plan_id", req.Plan.ID))
	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), hostID, start, req.Plan.ToDomain(), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create subscription")
		return
	}

	logger.Info("Platform subscription created", slog.String("subscription_id", sub.ID))
	c.JSON(http.StatusCreated, sub)
}

// replaceCurrentSubscription godoc
// @Summary Change the plan of a host
// @Description Closes the current subscription at effectiveAt (defaults to now) and opens a new one from there
// @Tags platform subscriptions
// @Accept  json
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Param   subscription body dto.SubscriptionChangeRequest true "New plan and cut instant"
// @Success 200 {object} domain.PlatformSubscription
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "No current subscription"
// @Security BearerAuth
// @Router /hosts/{hostID}/platform-subscriptions/current [put]
func (h *subscriptionHandler) replaceCurrentSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	var req dto.SubscriptionChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReplaceCurrentSubscription", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	var cut time.Time
	if req.EffectiveAt != nil {
		cut = *req.EffectiveAt
	}

	logger = logger.With(slog.String("host_id", hostID), slog.String("plan_id", req.Plan.ID))
	sub, err := h.subscriptionService.ReplaceCurrentSubscription(c.Request.Context(), hostID, cut, req.Plan.ToDomain(), actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to replace subscription")
		return
	}

	logger.Info("Platform subscription replaced", slog.String("subscription_id", sub.ID))
	c.JSON(http.StatusOK, sub)
}

// getCurrentSubscription godoc
// @Summary Get the current subscription of a host
// @Tags platform subscriptions
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Success 200 {object} domain.PlatformSubscription
// @Failure 404 {object} dto.ErrorResponse "No current subscription"
// @Security BearerAuth
// @Router /hosts/{hostID}/platform-subscriptions/current [get]
func (h *subscriptionHandler) getCurrentSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	sub, err := h.subscriptionService.GetCurrentSubscription(c.Request.Context(), hostID, time.Now())
	if err != nil {
		respondError(c, logger.With(slog.String("host_id", hostID)), err, "Failed to retrieve current subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// listSubscriptionsInPeriod godoc
// @Summary List the subscriptions of a host in a billing month
// @Description Includes replaced subscriptions, newest first
// @Tags platform subscriptions
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Param   year query int true "Year"
// @Param   month query int true "Month (1-12)"
// @Success 200 {array} domain.PlatformSubscription
// @Failure 400 {object} dto.ErrorResponse "Invalid billing period"
// @Security BearerAuth
// @Router /hosts/{hostID}/platform-subscriptions [get]
func (h *subscriptionHandler) listSubscriptionsInPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	period, ok := bindBillingPeriod(c, logger)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.GetSubscriptionsInBillingPeriod(c.Request.Context(), hostID, period)
	if err != nil {
		respondError(c, logger.With(slog.String("host_id", hostID)), err, "Failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []domain.PlatformSubscription{}
	}
	c.JSON(http.StatusOK, subs)
}

// getBilling godoc
// @Summary Compute the platform bill of a host
// @Description Prorated subscription charges plus usage above the plan allowances for a billing month
// @Tags platform subscriptions
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Param   year query int true "Year"
// @Param   month query int true "Month (1-12)"
// @Success 200 {object} domain.Billing
// @Failure 400 {object} dto.ErrorResponse "Invalid billing period"
// @Security BearerAuth
// @Router /hosts/{hostID}/billing [get]
func (h *subscriptionHandler) getBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	period, ok := bindBillingPeriod(c, logger)
	if !ok {
		return
	}

	billing, err := h.subscriptionService.CalculateBilling(c.Request.Context(), hostID, period)
	if err != nil {
		respondError(c, logger.With(slog.String("host_id", hostID)), err, "Failed to compute billing")
		return
	}
	c.JSON(http.StatusOK, billing)
}

func bindBillingPeriod(c *gin.Context, logger *slog.Logger) (domain.BillingPeriod, bool) {
	var q dto.BillingPeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.Warn("Failed to bind billing period query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return domain.BillingPeriod{}, false
	}
	period, err := domain.NewBillingPeriod(q.Year, q.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return domain.BillingPeriod{}, false
	}
	return period, true
}
