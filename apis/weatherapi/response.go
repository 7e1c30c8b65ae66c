package weatherapi

import (
	"fmt"
	"time"

	"weatherscreen/manager"
)

const dateLayout = "2006-01-02"

type searchResult struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	URL     string  `json:"url"`
}

type condition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

type forecastResponse struct {
	Location struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Country   string `json:"country"`
		Localtime string `json:"localtime"`
	} `json:"location"`
	Current struct {
		TempC      float64   `json:"temp_c"`
		FeelsLikeC float64   `json:"feelslike_c"`
		IsDay      int       `json:"is_day"`
		Condition  condition `json:"condition"`
		WindKph    float64   `json:"wind_kph"`
		Humidity   float64   `json:"humidity"`
		PressureIn float64   `json:"pressure_in"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC          float64   `json:"avgtemp_c"`
				MaxTempC          float64   `json:"maxtemp_c"`
				MinTempC          float64   `json:"mintemp_c"`
				DailyChanceOfRain int       `json:"daily_chance_of_rain"`
				Condition         condition `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (r forecastResponse) forecast() (manager.Forecast, error) {
	f := manager.Forecast{
		Location: manager.ForecastLocation{
			Name:      r.Location.Name,
			Region:    r.Location.Region,
			Country:   r.Location.Country,
			Localtime: r.Location.Localtime,
		},
		Current: manager.Current{
			TempC:      r.Current.TempC,
			FeelsLikeC: r.Current.FeelsLikeC,
			Condition:  manager.Condition{Text: r.Current.Condition.Text, Code: r.Current.Condition.Code},
			WindKph:    r.Current.WindKph,
			Humidity:   r.Current.Humidity,
			PressureIn: r.Current.PressureIn,
			IsDay:      r.Current.IsDay == 1,
		},
		Days: make([]manager.ForecastDay, 0, len(r.Forecast.ForecastDay)),
	}

	for _, fd := range r.Forecast.ForecastDay {
		date, err := time.Parse(dateLayout, fd.Date)
		if err != nil {
			return manager.Forecast{}, fmt.Errorf("forecast day %q: %w", fd.Date, err)
		}

		f.Days = append(f.Days, manager.ForecastDay{
			Date: date,
			Day: manager.Day{
				Condition:    manager.Condition{Text: fd.Day.Condition.Text, Code: fd.Day.Condition.Code},
				AvgTempC:     fd.Day.AvgTempC,
				MaxTempC:     fd.Day.MaxTempC,
				MinTempC:     fd.Day.MinTempC,
				ChanceOfRain: fd.Day.DailyChanceOfRain,
			},
		})
	}

	return f, nil
}
