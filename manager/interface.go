package manager

import (
	"context"
	"time"
)

type Weather interface {
	SuggestLocations(ctx context.Context, query string) ([]Location, error)
	Forecast(ctx context.Context, q string, days int) (Forecast, error)
}

type Geolocation interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentCoordinates(ctx context.Context) (Coordinates, error)
}

// Store is the key-value persistence the screen remembers the last city in.
// Get returns an empty string and a nil error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Location is a single search suggestion.
type Location struct {
	Name    string
	Region  string
	Country string
	Lat     float64
	Lon     float64
	URL     string
}

type Condition struct {
	Text string
	Code int
}

type Current struct {
	TempC      float64
	FeelsLikeC float64
	Condition  Condition
	WindKph    float64
	Humidity   float64
	PressureIn float64
	IsDay      bool
}

type Day struct {
	Condition    Condition
	AvgTempC     float64
	MaxTempC     float64
	MinTempC     float64
	ChanceOfRain int
}

type ForecastDay struct {
	Date time.Time
	Day  Day
}

type ForecastLocation struct {
	Name      string
	Region    string
	Country   string
	Localtime string
}

// Forecast is the snapshot returned by the weather gateway for one query.
type Forecast struct {
	Location ForecastLocation
	Current  Current
	Days     []ForecastDay
}
