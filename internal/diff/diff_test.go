package diff

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fuel-price-tracker/internal/model"
)

func priced(diesel, e5, e10 string) model.Prices {
	var p model.Prices
	if diesel != "" {
		v := decimal.RequireFromString(diesel)
		p.Diesel = &v
	}
	if e5 != "" {
		v := decimal.RequireFromString(e5)
		p.E5 = &v
	}
	if e10 != "" {
		v := decimal.RequireFromString(e10)
		p.E10 = &v
	}
	return p
}

func testReading(p model.Prices) model.Reading {
	return model.Reading{
		StationID: "1",
		Name:      "Test Station",
		URL:       "https://example.org/1",
		Prices:    p,
		Timestamp: time.Now().UTC(),
	}
}

func TestChangesFirstReading(t *testing.T) {
	if notes := Changes(nil, testReading(priced("1.75", "", ""))); notes != nil {
		t.Fatalf("first reading must not produce notes, got %v", notes)
	}
}

func TestChangesDetectsMovement(t *testing.T) {
	prev := testReading(priced("1.779", "1.859", "1.799"))
	curr := testReading(priced("1.759", "1.859", "1.809"))

	notes := Changes(&prev, curr)
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}

	if notes[0].Fuel != model.FuelDiesel {
		t.Fatalf("first note fuel = %s", notes[0].Fuel)
	}
	if notes[0].Text != "Diesel: 1.779€ → 1.759€" {
		t.Fatalf("note text = %q", notes[0].Text)
	}
	if notes[1].Fuel != model.FuelE10 {
		t.Fatalf("second note fuel = %s", notes[1].Fuel)
	}
}

func TestChangesIgnoresAbsentGrades(t *testing.T) {
	prev := testReading(priced("1.779", "", "1.799"))
	curr := testReading(priced("1.779", "1.859", ""))

	if notes := Changes(&prev, curr); len(notes) != 0 {
		t.Fatalf("absent transitions must stay silent, got %v", notes)
	}
}

func TestChangesEqualPrices(t *testing.T) {
	prev := testReading(priced("1.779", "1.859", "1.799"))
	curr := testReading(priced("1.779", "1.859", "1.799"))

	if notes := Changes(&prev, curr); len(notes) != 0 {
		t.Fatalf("equal prices must not produce notes, got %v", notes)
	}
}
