package weatherapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"weatherscreen/manager"
)

const (
	apiName = "api.weatherapi.com"

	DefaultBaseURL = "https://api.weatherapi.com/v1"
	DefaultTimeout = 10 * time.Second

	// codeNoLocation is the API error code for a query that matches nothing.
	codeNoLocation = 1006
)

var ErrLocationNotFound = errors.New("no matching location found")

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// APIError is a non-200 answer from the API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status code %d", apiName, e.StatusCode)
	}
	return fmt.Sprintf("%s: status code %d: %s (code %d)", apiName, e.StatusCode, e.Message, e.Code)
}

func (e *APIError) Unwrap() error {
	if e.Code == codeNoLocation {
		return ErrLocationNotFound
	}
	return nil
}

func New(cfg Config) *weatherApi {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	logger := cfg.Logger.With("api", apiName)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        apiName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// Only transport failures and 5xx count against the upstream.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return &weatherApi{
		apiKey:  cfg.APIKey,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

type weatherApi struct {
	apiKey  string
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

func (w *weatherApi) SuggestLocations(ctx context.Context, query string) ([]manager.Location, error) {
	params := map[string]string{
		"key": w.apiKey,
		"q":   query,
	}

	body, err := w.processRequest(ctx, "/search.json", params)
	if err != nil {
		return nil, err
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	locations := make([]manager.Location, 0, len(results))
	for _, r := range results {
		locations = append(locations, manager.Location{
			Name:    r.Name,
			Region:  r.Region,
			Country: r.Country,
			Lat:     r.Lat,
			Lon:     r.Lon,
			URL:     r.URL,
		})
	}

	return locations, nil
}

func (w *weatherApi) Forecast(ctx context.Context, q string, days int) (manager.Forecast, error) {
	params := map[string]string{
		"key":    w.apiKey,
		"q":      q,
		"days":   strconv.Itoa(days),
		"aqi":    "no",
		"alerts": "no",
	}

	body, err := w.processRequest(ctx, "/forecast.json", params)
	if err != nil {
		return manager.Forecast{}, err
	}

	var r forecastResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return manager.Forecast{}, fmt.Errorf("decode forecast response: %w", err)
	}

	return r.forecast()
}

func (w *weatherApi) processRequest(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	return w.breaker.Execute(func() ([]byte, error) {
		request := w.client.R().SetContext(ctx)
		request.SetQueryParams(params)

		start := time.Now()
		response, err := request.Get(path)
		if err != nil {
			return nil, err
		}

		w.logger.Debug("request done",
			"path", path,
			"q", params["q"],
			"status", response.StatusCode(),
			"elapsed", time.Since(start),
		)

		if response.StatusCode() != http.StatusOK {
			return nil, newAPIError(response.StatusCode(), response.Body())
		}

		return response.Body(), nil
	})
}

func newAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
		return apiErr
	}

	buf := &bytes.Buffer{}
	if err := json.Indent(buf, body, "", "  "); err == nil {
		apiErr.Message = buf.String()
	} else {
		apiErr.Message = string(body)
	}

	return apiErr
}
