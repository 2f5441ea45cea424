// Package currency provides exchange rate lookup and amount conversion
// backed by an external rate API with an in-memory cache.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	apperrors "github.com/estifie/Expense-Tracker-API/internal/errors"
)

// ErrConversionFailed indicates no exchange rate could be obtained for the
// requested currency pair.
var ErrConversionFailed = apperrors.Wrap(apperrors.ErrInvalidInput, "currency conversion failed")

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, fromCurrency, toCurrency, amount string) (string, error)
}

// Service implements Converter with an expiring LRU rate cache in front of
// the external API. Rates are cached per currency pair, so one upstream call
// serves every conversion for that pair until the TTL passes.
type Service struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	cache      *expirable.LRU[string, float64]
	logger     *slog.Logger
}

// NewService creates a currency conversion service.
func NewService(apiURL, apiKey string, cacheTTL time.Duration, cacheSize int, logger *slog.Logger) *Service {
	return &Service{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      expirable.NewLRU[string, float64](cacheSize, nil, cacheTTL),
		logger:     logger,
	}
}

// Convert converts a decimal amount from one currency to another using the
// cached exchange rate. The result is formatted with two fractional digits.
// Conversion is a display concern; stored amounts are never rewritten.
func (s *Service) Convert(ctx context.Context, fromCurrency, toCurrency, amount string) (string, error) {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "amount is not a valid decimal number")
	}

	if fromCurrency == toCurrency {
		return amount, nil
	}

	rate, err := s.rate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return "", err
	}

	return strconv.FormatFloat(value*rate, 'f', 2, 64), nil
}

// rate returns the exchange rate for the pair, consulting the cache first.
func (s *Service) rate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	pair := fromCurrency + toCurrency

	if rate, ok := s.cache.Get(pair); ok {
		return rate, nil
	}

	rate, err := s.fetchRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return 0, err
	}

	s.cache.Add(pair, rate)
	return rate, nil
}

// fetchRate queries the external rate API. The response shape is
// {"data": {"<toCurrency>": <rate>}}.
func (s *Service) fetchRate(ctx context.Context, fromCurrency, toCurrency string) (float64, error) {
	endpoint, err := url.Parse(s.apiURL)
	if err != nil {
		return 0, apperrors.Wrap(err, "invalid currency API URL")
	}

	query := endpoint.Query()
	query.Set("apiKey", s.apiKey)
	query.Set("base", fromCurrency)
	query.Set("currencies", toCurrency)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to build rate request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("exchange rate request failed",
			slog.String("pair", fromCurrency+toCurrency),
			slog.String("error", err.Error()))
		return 0, ErrConversionFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("exchange rate request returned non-200",
			slog.String("pair", fromCurrency+toCurrency),
			slog.Int("status", resp.StatusCode))
		return 0, ErrConversionFailed
	}

	var payload struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, ErrConversionFailed
	}

	rate, ok := payload.Data[toCurrency]
	if !ok {
		return 0, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("no exchange rate available for %s%s", fromCurrency, toCurrency),
		)
	}

	return rate, nil
}
