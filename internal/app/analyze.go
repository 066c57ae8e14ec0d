package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"fuel-price-tracker/internal/analytics"
	"fuel-price-tracker/internal/model"
)

// AnalyzeOptions selects the station and grade to analyse.
type AnalyzeOptions struct {
	Station string
	Fuel    string
}

// Analyze prints the weekday and hour pattern for one station and grade.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	fuel, err := model.ParseFuelType(opts.Fuel)
	if err != nil {
		return err
	}

	c, err := a.buildCore()
	if err != nil {
		return err
	}

	stations, err := c.store.LoadStations()
	if err != nil {
		return err
	}
	station, err := matchStation(stations, opts.Station)
	if err != nil {
		return err
	}

	pattern, err := c.analyzer.Analyze(station.URL, fuel)
	var insufficient analytics.InsufficientData
	if errors.As(err, &insufficient) {
		fmt.Fprintf(os.Stdout, "not enough history for %s yet: %d of %d readings collected\n",
			station.Name, insufficient.Observations, insufficient.Required)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s, %s, last %s, %d readings\n",
		station.Name, fuel.Label(), pattern.Window, pattern.Observations)
	fmt.Fprintf(os.Stdout, "cheapest weekday: %s (%s€ avg)\n",
		pattern.BestDay.Day, pattern.BestDay.AvgPrice.StringFixed(3))
	fmt.Fprintf(os.Stdout, "cheapest hour:    %02d:00 (%s€ avg)\n",
		pattern.BestHour.Hour, pattern.BestHour.AvgPrice.StringFixed(3))

	if len(pattern.TopSlots) > 0 {
		fmt.Fprintln(os.Stdout, "\nbest refuel slots:")
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Day\tHour\tAvg\tReadings")
		for _, slot := range pattern.TopSlots {
			fmt.Fprintf(writer, "%s\t%02d:00\t%s€\t%d\n",
				slot.Day, slot.Hour, slot.AvgPrice.StringFixed(3), slot.Observations)
		}
		writer.Flush()
	}

	return nil
}
