package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/SscSPs/host_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the error reply matching the error taxonomy. fallback is the message
// shown for unexpected failures, whose details stay in the logs.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var providerErr *apperrors.ProviderError
	if errors.As(err, &providerErr) {
		status := http.StatusBadGateway
		// A continuation payload means the payer has to act before the charge can succeed.
		if len(providerErr.Payload) > 0 {
			status = http.StatusPaymentRequired
		}
		logger.Warn("Payment provider error", slog.String("provider", providerErr.Provider), slog.String("error", err.Error()))
		c.JSON(status, dto.ProviderErrorResponse{
			Error:    providerErr.Message,
			Provider: providerErr.Provider,
			Payload:  providerErr.Payload,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrConcurrency):
		logger.Info("Concurrent processing conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Retryable: true})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDomainConstraint):
		logger.Warn("Domain constraint violated", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}

// actorOrAbort returns the authenticated caller, replying 401 when it is missing.
func actorOrAbort(c *gin.Context, logger *slog.Logger) (string, bool) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return actorID, true
}
