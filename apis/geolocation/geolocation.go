// Package geolocation stands in for the device location service. A terminal
// has no GPS, so the position comes from the public IP address or from
// coordinates fixed in the configuration. Permission is a configuration
// switch.
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"weatherscreen/manager"
)

const (
	DefaultBaseURL = "http://ip-api.com"
	DefaultTimeout = 10 * time.Second
)

var ErrLookupFailed = errors.New("ip geolocation failed")

type Config struct {
	Enabled bool
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

func New(cfg Config) *geolocation {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &geolocation{
		enabled: cfg.Enabled,
		client:  resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(cfg.Timeout),
		logger:  cfg.Logger.With("gateway", "geolocation"),
	}
}

type geolocation struct {
	enabled bool
	client  *resty.Client
	logger  *slog.Logger
}

func (g *geolocation) RequestPermission(context.Context) (bool, error) {
	return g.enabled, nil
}

func (g *geolocation) CurrentCoordinates(ctx context.Context) (manager.Coordinates, error) {
	params := map[string]string{
		"fields": "status,message,lat,lon,city,country",
	}

	result, err := processRequest(ctx, g.client, "/json/", params)
	if err != nil {
		return manager.Coordinates{}, err
	}

	g.logger.Debug("located by ip", "city", result.City, "country", result.Country)

	return manager.Coordinates{Latitude: result.Lat, Longitude: result.Lon}, nil
}

type lookupResult struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

func processRequest(ctx context.Context, client *resty.Client, path string, params map[string]string) (lookupResult, error) {
	request := client.R().SetContext(ctx)
	request.SetQueryParams(params)

	response, err := request.Get(path)
	if err != nil {
		return lookupResult{}, err
	}

	if response.StatusCode() != http.StatusOK {
		return lookupResult{}, fmt.Errorf("%w: status code %d", ErrLookupFailed, response.StatusCode())
	}

	var result lookupResult
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return lookupResult{}, err
	}

	if result.Status != "success" {
		return lookupResult{}, fmt.Errorf("%w: %s", ErrLookupFailed, result.Message)
	}

	return result, nil
}

// Fixed reports the same coordinates on every call.
type Fixed struct {
	Enabled     bool
	Coordinates manager.Coordinates
}

func (f Fixed) RequestPermission(context.Context) (bool, error) {
	return f.Enabled, nil
}

func (f Fixed) CurrentCoordinates(context.Context) (manager.Coordinates, error) {
	return f.Coordinates, nil
}
