package nutrition

import (
	"math"
	"strings"
)

// FuelUnit is a measurement unit a food amount can be logged in.
type FuelUnit string

const (
	UnitGrams       FuelUnit = "g"
	UnitKilograms   FuelUnit = "kg"
	UnitMilliliters FuelUnit = "ml"
	UnitCups        FuelUnit = "cup"
	UnitTablespoons FuelUnit = "tbsp"
	UnitTeaspoons   FuelUnit = "tsp"
	UnitPieces      FuelUnit = "piece"
	UnitRolls       FuelUnit = "roll"
	UnitLadles      FuelUnit = "ladle"
	UnitSlices      FuelUnit = "slice"
	UnitPatties     FuelUnit = "patty"
	UnitBowls       FuelUnit = "bowl"
	UnitServings    FuelUnit = "serving"
)

// defaultGramsPerUnit is the system-wide fallback used when a food item has no
// measure of its own for a unit. Every FuelUnit must have an entry here.
var defaultGramsPerUnit = map[FuelUnit]float64{
	UnitGrams:       1,
	UnitKilograms:   1000,
	UnitMilliliters: 1,
	UnitCups:        240,
	UnitTablespoons: 15,
	UnitTeaspoons:   5,
	UnitPieces:      50,
	UnitRolls:       150,
	UnitLadles:      100,
	UnitSlices:      30,
	UnitPatties:     90,
	UnitBowls:       300,
	UnitServings:    100,
}

// unitAliases maps the spellings clients send to canonical units.
var unitAliases = map[string]FuelUnit{
	"grams":       UnitGrams,
	"gram":        UnitGrams,
	"kilograms":   UnitKilograms,
	"kilogram":    UnitKilograms,
	"milliliters": UnitMilliliters,
	"millilitres": UnitMilliliters,
	"cups":        UnitCups,
	"tablespoons": UnitTablespoons,
	"teaspoons":   UnitTeaspoons,
	"pieces":      UnitPieces,
	"pcs":         UnitPieces,
	"each":        UnitPieces,
	"rolls":       UnitRolls,
	"ladles":      UnitLadles,
	"slices":      UnitSlices,
	"patties":     UnitPatties,
	"bowls":       UnitBowls,
	"servings":    UnitServings,
}

// ParseUnit canonicalizes a unit string. ok is false for unknown units.
func ParseUnit(s string) (FuelUnit, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	u := FuelUnit(key)
	if _, ok := defaultGramsPerUnit[u]; ok {
		return u, true
	}
	u, ok := unitAliases[key]
	return u, ok
}

// Valid reports whether u is one of the known units.
func (u FuelUnit) Valid() bool {
	_, ok := defaultGramsPerUnit[u]
	return ok
}

// MeasureDef is a food-specific gram weight for one unit, e.g. "1 roll of
// injera = 150 g". It takes precedence over the default table.
type MeasureDef struct {
	Unit  FuelUnit `json:"unit"`
	Grams float64  `json:"grams"`
	Label string   `json:"label,omitempty"`
}

// GramOptions carries the per-item data that can refine a unit conversion.
// Zero values mean "not supplied".
type GramOptions struct {
	Density          float64 // g/ml
	ServingSizeGrams float64
	Measures         []MeasureDef
}

// ToGrams converts amount of unit into grams. The first matching rule wins:
// an item measure for the unit, servings times a positive serving size,
// milliliters times a positive density, then the default table. Non-finite
// or non-positive amounts, and unknown units, yield 0.
func ToGrams(amount float64, unit FuelUnit, opts GramOptions) float64 {
	if !isPositive(amount) {
		return 0
	}
	for _, m := range opts.Measures {
		if m.Unit == unit && isPositive(m.Grams) {
			return amount * m.Grams
		}
	}
	if unit == UnitServings && isPositive(opts.ServingSizeGrams) {
		return amount * opts.ServingSizeGrams
	}
	if unit == UnitMilliliters && isPositive(opts.Density) {
		return amount * opts.Density
	}
	return amount * defaultGramsPerUnit[unit]
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
