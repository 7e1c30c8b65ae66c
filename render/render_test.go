package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherscreen/manager"
)

func sampleForecast(condition string) *manager.Forecast {
	return &manager.Forecast{
		Location: manager.ForecastLocation{Name: "Paris", Country: "France"},
		Current: manager.Current{
			TempC:      18.2,
			Condition:  manager.Condition{Text: condition},
			WindKph:    11.2,
			Humidity:   64,
			PressureIn: 30.01,
		},
		Days: []manager.ForecastDay{
			{Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Day: manager.Day{Condition: manager.Condition{Text: "Sunny"}, AvgTempC: 16.4}},
			{Date: time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), Day: manager.Day{Condition: manager.Condition{Text: "Volcanic ash"}, AvgTempC: 14.9}},
		},
	}
}

func TestScreenLoadingShowsSpinnerOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, manager.ViewState{Loading: true, Weather: sampleForecast("Sunny")}))

	assert.Equal(t, spinner+"\n", buf.String())
}

func TestScreenWeather(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, manager.ViewState{Weather: sampleForecast("Partly cloudy")}))

	out := buf.String()
	assert.Contains(t, out, "Paris, France")
	assert.Contains(t, out, "⛅")
	assert.Contains(t, out, "18.2°")
	assert.Contains(t, out, "wind 11.2km")
	assert.Contains(t, out, "humidity 64%")
	assert.Contains(t, out, "pressure 30.01")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "Tuesday")
	assert.Contains(t, out, "16.4°")
	assert.NotContains(t, out, placeholder)
}

func TestScreenUnknownConditionFallsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, manager.ViewState{Weather: sampleForecast("Raining frogs")}))

	out := buf.String()
	assert.Contains(t, out, "  "+OtherIcon+"\n")
	assert.Contains(t, out, "Raining frogs")

	tuesday := out[strings.Index(out, "Tuesday"):]
	assert.Contains(t, tuesday, OtherIcon)
}

func TestScreenSuggestions(t *testing.T) {
	vs := manager.ViewState{
		SearchVisible: true,
		Query:         "Lond",
		Suggestions: []manager.Location{
			{Name: "London", Country: "United Kingdom"},
			{Name: "London", Country: "Canada"},
		},
		Weather: sampleForecast("Sunny"),
	}

	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, vs))

	out := buf.String()
	assert.Contains(t, out, "Lond")
	assert.Contains(t, out, "1. London, United Kingdom")
	assert.Contains(t, out, "2. London, Canada")
	assert.Equal(t, 1, strings.Count(out, strings.Repeat("-", 30)))
}

func TestScreenHiddenSearchIgnoresSuggestions(t *testing.T) {
	vs := manager.ViewState{
		Suggestions: []manager.Location{{Name: "London", Country: "Canada"}},
		Weather:     sampleForecast("Sunny"),
	}

	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, vs))
	assert.NotContains(t, buf.String(), "London, Canada")
}

func TestScreenEmptySearchShowsPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Screen(&buf, manager.ViewState{SearchVisible: true}))

	assert.Contains(t, buf.String(), placeholder)
	assert.Contains(t, buf.String(), "No weather yet")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestScreenReportsWriteErrors(t *testing.T) {
	err := Screen(failingWriter{}, manager.ViewState{Weather: sampleForecast("Sunny")})
	assert.EqualError(t, err, "closed")
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "☀", Icon("Sunny"))
	assert.Equal(t, OtherIcon, Icon(""))
	assert.Equal(t, OtherIcon, Icon("other"))
}
