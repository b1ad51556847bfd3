package services

import (
	"context"
	"time"

	"github.com/SscSPs/host_ledger/internal/core/domain"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// FxRateReaderSvc resolves historical exchange rates.
type FxRateReaderSvc interface {
	// GetFxRate returns the rate converting one unit of from into to, effective at the given instant.
	GetFxRate(ctx context.Context, fromCurrency, toCurrency string, at time.Time) (decimal.Decimal, error)

	// GetExchangeRate returns the full rate record used by GetFxRate.
	GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string, at time.Time) (*domain.ExchangeRate, error)
}

// FxRateWriterSvc records exchange rates fed by the rates collaborator.
type FxRateWriterSvc interface {
	SaveExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actorID string) (*domain.ExchangeRate, error)
}

// CurrencyConversionSvcFacade combines the currency conversion interfaces
type CurrencyConversionSvcFacade interface {
	FxRateReaderSvc
	FxRateWriterSvc
}
