package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
	"fuel-price-tracker/internal/schedule"
)

// ShowOptions selects what the show command prints.
type ShowOptions struct {
	// Station narrows the output to one station, matched by URL or numeric
	// id. Empty shows the latest reading of every configured station.
	Station string
	// Limit caps the number of readings printed per station.
	Limit int
}

// Show prints cached readings without polling.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	c, err := a.buildCore()
	if err != nil {
		return err
	}

	stations, err := c.store.LoadStations()
	if err != nil {
		return err
	}
	if opts.Station != "" {
		station, err := matchStation(stations, opts.Station)
		if err != nil {
			return err
		}
		stations = []model.Station{station}
	}
	if len(stations) == 0 {
		fmt.Fprintln(os.Stdout, "no stations configured")
		return nil
	}

	if opts.Limit <= 0 {
		opts.Limit = 1
	}

	now := time.Now().In(c.location)
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Station\tTime\tDiesel\tE5\tE10\tOpen")

	for _, station := range stations {
		readings := c.history.Windowed(station.URL, history.RetentionWindow, now)
		if len(readings) == 0 {
			fmt.Fprintf(writer, "%s\t-\t-\t-\t-\t%s\n", station.Name, openLabel(station, now))
			continue
		}
		if len(readings) > opts.Limit {
			readings = readings[:opts.Limit]
		}
		for i, reading := range readings {
			name := station.Name
			if i > 0 {
				name = ""
			}
			fmt.Fprintf(
				writer,
				"%s\t%s\t%s\t%s\t%s\t%s\n",
				name,
				reading.Timestamp.In(c.location).Format("2006-01-02 15:04"),
				formatPrice(reading.Prices.Diesel),
				formatPrice(reading.Prices.E5),
				formatPrice(reading.Prices.E10),
				openLabel(station, now),
			)
		}
	}

	writer.Flush()
	return nil
}

func openLabel(station model.Station, now time.Time) string {
	if schedule.IsOpen(station, now) {
		return "open"
	}
	return "closed"
}

func matchStation(stations []model.Station, key string) (model.Station, error) {
	for _, station := range stations {
		if station.URL == key || model.StationIDFromURL(station.URL) == key {
			return station, nil
		}
	}
	return model.Station{}, fmt.Errorf("station %q not configured", key)
}

func formatPrice(v *decimal.Decimal) string {
	if v == nil {
		return "-"
	}
	return v.StringFixed(3)
}
