package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FuelType identifies one of the tracked fuel grades.
type FuelType string

const (
	FuelDiesel FuelType = "diesel"
	FuelE5     FuelType = "e5"
	FuelE10    FuelType = "e10"
)

// FuelTypes lists all grades in display order.
var FuelTypes = []FuelType{FuelDiesel, FuelE5, FuelE10}

// ParseFuelType normalises user input into a FuelType.
func ParseFuelType(s string) (FuelType, error) {
	switch FuelType(strings.ToLower(strings.TrimSpace(s))) {
	case FuelDiesel:
		return FuelDiesel, nil
	case FuelE5:
		return FuelE5, nil
	case FuelE10:
		return FuelE10, nil
	}
	return "", fmt.Errorf("unknown fuel type %q (expected diesel, e5 or e10)", s)
}

// Label returns the user-facing name of the grade.
func (f FuelType) Label() string {
	switch f {
	case FuelDiesel:
		return "Diesel"
	case FuelE5:
		return "E5"
	case FuelE10:
		return "E10"
	}
	return string(f)
}

// Prices holds one value per fuel grade. A nil entry means the grade could not
// be determined; it is never stored as zero.
type Prices struct {
	Diesel *decimal.Decimal `json:"diesel"`
	E5     *decimal.Decimal `json:"e5"`
	E10    *decimal.Decimal `json:"e10"`
}

// Get returns the price for a grade, or nil when absent.
func (p Prices) Get(fuel FuelType) *decimal.Decimal {
	switch fuel {
	case FuelDiesel:
		return p.Diesel
	case FuelE5:
		return p.E5
	case FuelE10:
		return p.E10
	}
	return nil
}

// Set stores a price for a grade.
func (p *Prices) Set(fuel FuelType, value decimal.Decimal) {
	v := value
	switch fuel {
	case FuelDiesel:
		p.Diesel = &v
	case FuelE5:
		p.E5 = &v
	case FuelE10:
		p.E10 = &v
	}
}

// Clear drops the price for a grade.
func (p *Prices) Clear(fuel FuelType) {
	switch fuel {
	case FuelDiesel:
		p.Diesel = nil
	case FuelE5:
		p.E5 = nil
	case FuelE10:
		p.E10 = nil
	}
}

// Complete reports whether every grade resolved.
func (p Prices) Complete() bool {
	return p.Diesel != nil && p.E5 != nil && p.E10 != nil
}

// Empty reports whether no grade resolved.
func (p Prices) Empty() bool {
	return p.Diesel == nil && p.E5 == nil && p.E10 == nil
}

// SanePrice reports whether a parsed value passes the sanity bound for pump
// prices: strictly between 0 and 3. Values outside are treated as mis-parses.
func SanePrice(v decimal.Decimal) bool {
	return v.IsPositive() && v.LessThan(decimal.NewFromInt(3))
}
