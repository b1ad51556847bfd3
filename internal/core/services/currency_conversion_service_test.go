package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/host_ledger/internal/apperrors"
	"github.com/SscSPs/host_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/host_ledger/internal/core/ports/services"
	"github.com/SscSPs/host_ledger/internal/core/services"
	"github.com/SscSPs/host_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CurrencyConversionServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.CurrencyConversionSvcFacade
	at           time.Time
}

func (suite *CurrencyConversionServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewCurrencyConversionService(suite.mockRateRepo)
	suite.at = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
}

func (suite *CurrencyConversionServiceTestSuite) TestGetFxRate_SameCurrency() {
	rate, err := suite.service.GetFxRate(context.Background(), "usd", "USD", suite.at)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRateAt", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyConversionServiceTestSuite) TestGetFxRate_Direct() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRateAt", ctx, "EUR", "USD", suite.at).
		Return(&domain.ExchangeRate{FromCurrencyCode: "EUR", ToCurrencyCode: "USD", Rate: decimal.RequireFromString("1.1")}, nil).Once()

	rate, err := suite.service.GetFxRate(ctx, "EUR", "USD", suite.at)

	suite.Require().NoError(err)
	suite.Equal("1.1", rate.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyConversionServiceTestSuite) TestGetFxRate_InverseFallback() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRateAt", ctx, "USD", "EUR", suite.at).
		Return(nil, apperrors.NewNotFoundError("none")).Once()
	suite.mockRateRepo.On("FindExchangeRateAt", ctx, "EUR", "USD", suite.at).
		Return(&domain.ExchangeRate{FromCurrencyCode: "EUR", ToCurrencyCode: "USD", Rate: decimal.NewFromInt(2)}, nil).Once()

	got, err := suite.service.GetExchangeRate(ctx, "USD", "EUR", suite.at)

	suite.Require().NoError(err)
	suite.Equal("USD", got.FromCurrencyCode)
	suite.Equal("EUR", got.ToCurrencyCode)
	suite.Equal("0.5", got.Rate.String())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyConversionServiceTestSuite) TestGetFxRate_NotFound() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindExchangeRateAt", ctx, mock.Anything, mock.Anything, suite.at).
		Return(nil, apperrors.NewNotFoundError("none")).Twice()

	_, err := suite.service.GetFxRate(ctx, "USD", "JPY", suite.at)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CurrencyConversionServiceTestSuite) TestGetFxRate_InvalidCurrency() {
	_, err := suite.service.GetFxRate(context.Background(), "US", "EUR", suite.at)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyConversionServiceTestSuite) TestSaveExchangeRate_Success() {
	ctx := context.Background()
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "eur",
		ToCurrencyCode:   "usd",
		Rate:             decimal.RequireFromString("1.08"),
		DateEffective:    suite.at,
	}
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.FromCurrencyCode == "EUR" && r.ToCurrencyCode == "USD" && r.CreatedBy == "rates-feed"
	})).Return(nil).Once()

	rate, err := suite.service.SaveExchangeRate(ctx, req, "rates-feed")

	suite.Require().NoError(err)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.True(req.Rate.Equal(rate.Rate))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyConversionServiceTestSuite) TestSaveExchangeRate_Invalid() {
	tests := []struct {
		name string
		req  dto.CreateExchangeRateRequest
		msg  string
	}{
		{
			name: "zero rate",
			req:  dto.CreateExchangeRateRequest{FromCurrencyCode: "EUR", ToCurrencyCode: "USD", Rate: decimal.Zero},
			msg:  "must be positive",
		},
		{
			name: "same currency",
			req:  dto.CreateExchangeRateRequest{FromCurrencyCode: "EUR", ToCurrencyCode: "EUR", Rate: decimal.NewFromInt(1)},
			msg:  "cannot be the same",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rate, err := suite.service.SaveExchangeRate(context.Background(), tt.req, "rates-feed")
			suite.Nil(rate)
			suite.ErrorIs(err, apperrors.ErrValidation)
			suite.Contains(err.Error(), tt.msg)
		})
	}
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func TestCurrencyConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyConversionServiceTestSuite))
}
