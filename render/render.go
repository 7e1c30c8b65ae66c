// Package render draws a manager.ViewState as text. Rendering reads the
// snapshot only; it never calls a gateway.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"weatherscreen/manager"
)

const (
	spinner     = "◌ loading…"
	placeholder = "Search city"
)

// Screen writes the whole screen for one snapshot.
func Screen(w io.Writer, vs manager.ViewState) error {
	p := &printer{w: w}

	if vs.Loading {
		p.line(spinner)
		return p.err
	}

	searchBar(p, vs)

	if vs.Weather == nil {
		p.line("")
		p.line("No weather yet. Search a city or use your location.")
		return p.err
	}

	current(p, vs.Weather)
	forecast(p, vs.Weather.Days)

	return p.err
}

func searchBar(p *printer, vs manager.ViewState) {
	if !vs.SearchVisible {
		p.line("[@]" + strings.Repeat(" ", 30) + "[search]")
		return
	}

	query := vs.Query
	if query == "" {
		query = placeholder
	}
	p.line(fmt.Sprintf("[@] %-30s [x]", query))

	if len(vs.Suggestions) == 0 {
		return
	}
	for i, loc := range vs.Suggestions {
		p.line(fmt.Sprintf("    %d. %s, %s", i+1, loc.Name, loc.Country))
		if i+1 != len(vs.Suggestions) {
			p.line("    " + strings.Repeat("-", 30))
		}
	}
}

func current(p *printer, f *manager.Forecast) {
	c := f.Current

	p.line("")
	p.line(fmt.Sprintf("%s, %s", f.Location.Name, f.Location.Country))
	p.line("  " + Icon(c.Condition.Text))
	p.line("  " + degrees(c.TempC))
	p.line("  " + c.Condition.Text)
	p.line(fmt.Sprintf("  wind %skm   humidity %s%%   pressure %s",
		number(c.WindKph), number(c.Humidity), number(c.PressureIn)))
}

func forecast(p *printer, days []manager.ForecastDay) {
	p.line("")
	p.line("Daily forecast")

	if p.err != nil {
		return
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, d := range days {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Date.Weekday(), Icon(d.Day.Condition.Text), degrees(d.Day.AvgTempC))
	}
	p.err = tw.Flush()
}

func degrees(v float64) string {
	return number(v) + "°"
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}
