package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/host_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// currencyConversionService resolves historical rates. It never mutates ledger state.
type currencyConversionService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
}

// NewCurrencyConversionService creates a new currency conversion service.
func NewCurrencyConversionService(rateRepo portsrepo.ExchangeRateRepositoryFacade) portssvc.CurrencyConversionSvcFacade {
	return &currencyConversionService{rateRepo: rateRepo}
}

var _ portssvc.CurrencyConversionSvcFacade = (*currencyConversionService)(nil)

// GetFxRate returns the rate converting fromCurrency into toCurrency at the given instant.
func (s *currencyConversionService) GetFxRate(ctx context.Context, fromCurrency, toCurrency string, at time.Time) (decimal.Decimal, error) {
	rate, err := s.GetExchangeRate(ctx, fromCurrency, toCurrency, at)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}

// GetExchangeRate returns the latest rate effective at or before at. When only the
// opposite pair is known its inverse is returned.
func (s *currencyConversionService) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string, at time.Time) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(fromCurrency)
	to := strings.ToUpper(toCurrency)
	if len(from) != 3 || len(to) != 3 {
		return nil, apperrors.NewValidationError("currency codes must be 3 letters")
	}

	if from == to {
		return &domain.ExchangeRate{FromCurrencyCode: from, ToCurrencyCode: to, Rate: one, DateEffective: at}, nil
	}

	direct, err := s.rateRepo.FindExchangeRateAt(ctx, from, to, at)
	if err == nil {
		return direct, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to find exchange rate", slog.String("from", from), slog.String("to", to))
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	inverse, err := s.rateRepo.FindExchangeRateAt(ctx, to, from, at)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate from %s to %s at %s", from, to, at.UTC().Format(time.RFC3339)))
		}
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	if !inverse.Rate.IsPositive() {
		return nil, apperrors.NewAppError(500, fmt.Sprintf("stored rate from %s to %s is not positive", to, from), apperrors.ErrInternal)
	}

	s.LogDebug(ctx, "Using inverse exchange rate", slog.String("from", from), slog.String("to", to))
	inverse.FromCurrencyCode = from
	inverse.ToCurrencyCode = to
	inverse.Rate = one.Div(inverse.Rate)
	return inverse, nil
}

// SaveExchangeRate records a rate fed by the rates collaborator.
func (s *currencyConversionService) SaveExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actorID string) (*domain.ExchangeRate, error) {
	from := strings.ToUpper(req.FromCurrencyCode)
	to := strings.ToUpper(req.ToCurrencyCode)
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             req.Rate,
		DateEffective:    req.DateEffective.UTC(),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate", slog.String("from", from), slog.String("to", to))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	s.LogInfo(ctx, "Exchange rate saved", slog.String("from", from), slog.String("to", to), slog.String("rate", rate.Rate.String()))
	return &rate, nil
}
