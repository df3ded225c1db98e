package nutrition

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnauthorized      = errors.New("seeding requires the seed capability")
	ErrInvalidIngredient = errors.New("invalid ingredient")
)

// Authorization is the capability set the calling layer grants an operation.
// The engine never decides it from ambient state.
type Authorization struct {
	UserID  int64
	CanSeed bool
}

// SeedIngredients validates and normalizes a batch of ingredient records for
// bulk import. The whole batch is rejected on the first invalid record so a
// partial import never happens.
func SeedIngredients(auth Authorization, records []Ingredient) ([]Ingredient, error) {
	if !auth.CanSeed {
		return nil, ErrUnauthorized
	}
	out := make([]Ingredient, 0, len(records))
	for idx, r := range records {
		n, err := normalizeIngredient(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func normalizeIngredient(r Ingredient) (Ingredient, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return r, fmt.Errorf("%w: name is required", ErrInvalidIngredient)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"calories", r.Calories}, {"protein", r.Protein}, {"carbs", r.Carbs},
		{"fats", r.Fats}, {"fiber", r.Fiber},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return r, fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidIngredient, f.name)
		}
	}
	switch r.Basis {
	case "":
		r.Basis = BasisPer100g
	case BasisPer100g, BasisPerServing:
	default:
		return r, fmt.Errorf("%w: unknown basis %q", ErrInvalidIngredient, r.Basis)
	}
	if r.Basis == BasisPerServing && !isPositive(r.ServingSizeGrams) {
		return r, fmt.Errorf("%w: per_serving basis needs serving_size_grams", ErrInvalidIngredient)
	}
	if !isPositive(r.ServingSizeGrams) {
		r.ServingSizeGrams = 0
	}
	if !isPositive(r.Density) {
		r.Density = 0
	}
	measures := make([]MeasureDef, 0, len(r.Measures))
	for i, m := range r.Measures {
		unit, ok := ParseUnit(string(m.Unit))
		if !ok || !isPositive(m.Grams) {
			return r, fmt.Errorf("%w: measure %d: unit must be known and grams positive", ErrInvalidIngredient, i)
		}
		m.Unit = unit
		measures = append(measures, m)
	}
	r.Measures = measures
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	return r, nil
}
