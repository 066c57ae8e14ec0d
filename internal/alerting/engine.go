// Package alerting converts price readings into subscriber notifications.
//
// Target alerts follow a per-(subscriber, station, grade) state machine with
// hysteresis: once an alert fired at some price, only a strictly lower price
// re-alerts, and any excursion above the target re-arms the alert completely.
package alerting

import (
	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/model"
)

// Event is one emitted target alert.
type Event struct {
	StationURL  string
	StationName string
	Fuel        model.FuelType
	Price       decimal.Decimal
	Target      decimal.Decimal
}

// Evaluate applies one observed price to the remembered last-alerted price
// for a single (subscriber, station, grade). It is a pure function: the
// caller persists the returned state.
//
//   - price above target: re-arm (state cleared), no alert.
//   - price at or below target with no armed state: alert, remember price.
//   - price at or below target but not strictly below the remembered
//     price: suppress.
func Evaluate(price, target decimal.Decimal, lastAlerted *decimal.Decimal) (newState *decimal.Decimal, fire bool) {
	if price.GreaterThan(target) {
		return nil, false
	}
	if lastAlerted == nil || price.LessThan(*lastAlerted) {
		p := price
		return &p, true
	}
	return lastAlerted, false
}

// EvaluateReading runs the state machine for every grade of one reading
// against one subscriber's targets, mutating the subscriber's per-station
// alert state in place. Grades without a configured target or without a
// price in the reading never produce events.
func EvaluateReading(sub *model.Subscriber, reading model.Reading) []Event {
	var events []Event
	state := sub.AlertState(reading.URL)

	for _, fuel := range model.FuelTypes {
		target := sub.Targets.Get(fuel)
		price := reading.Prices.Get(fuel)
		if target == nil || price == nil {
			continue
		}

		newState, fire := Evaluate(*price, *target, state.Get(fuel))
		if newState == nil {
			state.Clear(fuel)
		} else {
			state.Set(fuel, *newState)
		}

		if fire {
			events = append(events, Event{
				StationURL:  reading.URL,
				StationName: reading.Name,
				Fuel:        fuel,
				Price:       *price,
				Target:      *target,
			})
		}
	}
	return events
}
