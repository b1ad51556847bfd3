package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests related to host debts and their settlement.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{
		settlementService: ss,
	}
}

// registerSettlementRoutes registers routes related to settlements.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)

	rg.GET("/hosts/:hostID/debts", h.getHostDebts)

	settlements := rg.Group("/settlements")
	{
		settlements.PUT("/status", h.updateSettlementStatus)
		settlements.GET("/owed-hosts", h.getOwedHosts)
	}
}

// getHostDebts godoc
// @Summary List the debts of a host
// @Description Debt rows of the host that are not refunded, optionally filtered by settlement status
// @Tags settlements
// @Produce  json
// @Param   hostID path string true "Host collective ID"
// @Param   status query string false "Settlement status" Enums(OWED, INVOICED, SETTLED)
// @Success 200 {array} domain.HostDebt
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Security BearerAuth
// @Router /hosts/{hostID}/debts [get]
func (h *settlementHandler) getHostDebts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	hostID := c.Param("hostID")

	var status *domain.SettlementStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := domain.ParseSettlementStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		status = &parsed
	}

	debts, err := h.settlementService.GetHostDebts(c.Request.Context(), hostID, status)
	if err != nil {
		respondError(c, logger.With(slog.String("host_id", hostID)), err, "Failed to retrieve host debts")
		return
	}
	if debts == nil {
		debts = []domain.HostDebt{}
	}
	c.JSON(http.StatusOK, debts)
}

// updateSettlementStatus godoc
// @Summary Move debts to a settlement status
// @Description Status only moves forward (OWED, INVOICED, SETTLED). Debts already in the target status are left untouched.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   request body dto.UpdateSettlementStatusRequest true "Debts and target status"
// @Success 200 {object} dto.UpdateSettlementStatusResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Settlement not found"
// @Failure 422 {object} dto.ErrorResponse "Backward transition"
// @Security BearerAuth
// @Router /settlements/status [put]
func (h *settlementHandler) updateSettlementStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateSettlementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSettlementStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := actorOrAbort(c, logger)
	if !ok {
		return
	}

	status, err := domain.ParseSettlementStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	logger = logger.With(slog.String("status", string(status)), slog.Int("requested", len(req.TransactionIDs)))
	updated, err := h.settlementService.UpdateTransactionsSettlementStatus(c.Request.Context(), req.TransactionIDs, status, req.SettlementExpenseID, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update settlement status")
		return
	}

	logger.Info("Settlement status updated", slog.Int("updated", updated))
	c.JSON(http.StatusOK, dto.UpdateSettlementStatusResponse{Updated: updated})
}

// getOwedHosts godoc
// @Summary List hosts with owed debts
// @Tags settlements
// @Produce  json
// @Success 200 {object} dto.OwedHostsResponse
// @Security BearerAuth
// @Router /settlements/owed-hosts [get]
func (h *settlementHandler) getOwedHosts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	hostIDs, err := h.settlementService.GetAccountsWithOwedSettlements(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve hosts with owed settlements")
		return
	}
	if hostIDs == nil {
		hostIDs = []string{}
	}
	c.JSON(http.StatusOK, dto.OwedHostsResponse{HostIDs: hostIDs})
}
