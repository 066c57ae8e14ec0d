package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"fuel-price-tracker/internal/history"
	"fuel-price-tracker/internal/model"
)

// ExportOptions controls the export command. Fuel is optional; empty
// means all fuel types.
type ExportOptions struct {
	Station   string
	Fuel      string
	CSVPath   string
	PNGPath   string
	MaxPoints int
}

// Export renders a station's retained history as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = 1000
	}

	fuels := model.FuelTypes
	if opts.Fuel != "" {
		fuel, err := model.ParseFuelType(opts.Fuel)
		if err != nil {
			return err
		}
		fuels = []model.FuelType{fuel}
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

	readings := c.history.Windowed(station.URL, history.RetentionWindow, time.Now().UTC())
	if len(readings) == 0 {
		a.Logger.Info().Str("station", station.Name).Msg("no readings to export")
		return nil
	}

	// History is kept newest first; charts and CSV read better oldest first.
	chronological := make([]model.Reading, len(readings))
	for i, reading := range readings {
		chronological[len(readings)-1-i] = reading
	}
	chronological = downsampleReadings(chronological, opts.MaxPoints)

	a.Logger.Info().
		Str("station", station.Name).
		Int("total", len(readings)).
		Int("exported", len(chronological)).
		Msg("exporting readings")

	if opts.CSVPath != "" {
		if err := writeReadingsCSV(opts.CSVPath, fuels, chronological); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeReadingsPNG(opts.PNGPath, station.Name, fuels, chronological); err != nil {
			return err
		}
	}

	return nil
}

func downsampleReadings(readings []model.Reading, max int) []model.Reading {
	if max <= 0 || len(readings) <= max {
		return readings
	}

	result := make([]model.Reading, 0, max)
	step := float64(len(readings)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(readings) {
			idx = len(readings) - 1
		}
		result = append(result, readings[idx])
	}
	return result
}

func writeReadingsCSV(path string, fuels []model.FuelType, readings []model.Reading) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := make([]string, 0, len(fuels)+1)
	header = append(header, "timestamp")
	for _, fuel := range fuels {
		header = append(header, string(fuel))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, reading := range readings {
		record := make([]string, 0, len(fuels)+1)
		record = append(record, reading.Timestamp.UTC().Format(time.RFC3339))
		for _, fuel := range fuels {
			record = append(record, csvPrice(reading.Prices.Get(fuel)))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeReadingsPNG(path, stationName string, fuels []model.FuelType, readings []model.Reading) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	series := make([]chart.Series, 0, len(fuels))
	for _, fuel := range fuels {
		var x []time.Time
		var y []float64
		for _, reading := range readings {
			price := reading.Prices.Get(fuel)
			if price == nil {
				continue
			}
			x = append(x, reading.Timestamp)
			y = append(y, price.InexactFloat64())
		}
		if len(x) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    fuel.Label(),
			XValues: x,
			YValues: y,
		})
	}
	if len(series) == 0 {
		return errors.New("not enough priced readings to chart")
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.3f")
	}
	graph := chart.Chart{
		Title:  stationName,
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (EUR/L)",
			ValueFormatter: priceFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func csvPrice(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.StringFixed(3)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
