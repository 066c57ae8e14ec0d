// Package diff detects per-grade price movements between consecutive
// readings of one station.
package diff

import (
	"fmt"

	"fuel-price-tracker/internal/model"
)

// ChangeNote is a human-readable description of one grade's movement.
type ChangeNote struct {
	Fuel model.FuelType
	Old  string
	New  string
	Text string
}

// Changes compares a new reading against the previous latest one. A note is
// emitted for a grade only when both readings carry a value and the values
// differ exactly; absent-to-present and present-to-absent transitions stay
// silent.
func Changes(previous *model.Reading, current model.Reading) []ChangeNote {
	if previous == nil {
		return nil
	}

	var notes []ChangeNote
	for _, fuel := range model.FuelTypes {
		oldPrice := previous.Prices.Get(fuel)
		newPrice := current.Prices.Get(fuel)
		if oldPrice == nil || newPrice == nil {
			continue
		}
		if oldPrice.Equal(*newPrice) {
			continue
		}
		notes = append(notes, ChangeNote{
			Fuel: fuel,
			Old:  oldPrice.String(),
			New:  newPrice.String(),
			Text: fmt.Sprintf("%s: %s€ → %s€", fuel.Label(), oldPrice.String(), newPrice.String()),
		})
	}
	return notes
}
