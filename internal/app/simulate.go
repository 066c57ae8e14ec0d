package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/model"
)

// SimulateOptions describes the synthetic reading to inject.
type SimulateOptions struct {
	Station string
	Fuel    string
	Price   string
}

// SimulateAlert injects a synthetic reading for one station and runs it
// through the regular change and alert pipeline. The reading is not persisted.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	fuel, err := model.ParseFuelType(opts.Fuel)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(opts.Price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", opts.Price, err)
	}
	if !model.SanePrice(price) {
		return fmt.Errorf("price %s is outside the accepted range", price)
	}

	c, err := a.buildCore()
	if err != nil {
		return err
	}
	if c.telegram == nil {
		a.Logger.Warn().Msg("no bot token configured; alerts will only be logged")
	}

	stations, err := c.store.LoadStations()
	if err != nil {
		return err
	}
	station, err := matchStation(stations, opts.Station)
	if err != nil {
		return err
	}

	reading := model.Reading{
		StationID: model.StationIDFromURL(station.URL),
		Name:      station.Name,
		URL:       station.URL,
		Timestamp: time.Now().UTC(),
	}
	if latest, ok := c.history.Latest(station.URL); ok {
		reading.Prices = latest.Prices
	}
	reading.Prices.Set(fuel, price)

	changes, err := c.poller.SimulateReading(ctx, reading)
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		fmt.Fprintln(os.Stdout, "no price changes against the cached reading")
		return nil
	}
	for _, change := range changes {
		fmt.Fprintln(os.Stdout, change.Text)
	}
	return nil
}
