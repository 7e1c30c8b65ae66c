package render

// OtherIcon is shown for any condition text without its own icon.
const OtherIcon = "🌡"

var weatherIcons = map[string]string{
	"Partly cloudy":                       "⛅",
	"Moderate rain":                       "🌧",
	"Patchy rain possible":                "🌦",
	"Patchy rain nearby":                  "🌦",
	"Sunny":                               "☀",
	"Clear":                               "☀",
	"Overcast":                            "☁",
	"Cloudy":                              "☁",
	"Light rain":                          "🌦",
	"Moderate rain at times":              "🌧",
	"Heavy rain":                          "🌧",
	"Heavy rain at times":                 "🌧",
	"Moderate or heavy freezing rain":     "🌧",
	"Moderate or heavy rain shower":       "🌧",
	"Moderate or heavy rain with thunder": "⛈",
	"Patchy light rain with thunder":      "⛈",
	"Thundery outbreaks possible":         "⛈",
	"Light snow":                          "🌨",
	"Moderate or heavy snow with thunder": "🌨",
	"Blizzard":                            "🌨",
	"Mist":                                "🌫",
	"Fog":                                 "🌫",
	"Freezing fog":                        "🌫",
}

// Icon returns the glyph for a condition text, falling back to OtherIcon.
func Icon(condition string) string {
	if icon, ok := weatherIcons[condition]; ok {
		return icon
	}
	return OtherIcon
}
