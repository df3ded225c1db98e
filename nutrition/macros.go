package nutrition

import "math"

// MacroVector is the five-field nutrient tuple. Values are produced by
// scaling a food item's stored macros or by summing such vectors.
type MacroVector struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the componentwise sum of m and o without rounding.
func (m MacroVector) Add(o MacroVector) MacroVector {
	return MacroVector{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fats:     m.Fats + o.Fats,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Scale multiplies every field by factor without rounding.
func (m MacroVector) Scale(factor float64) MacroVector {
	return MacroVector{
		Calories: m.Calories * factor,
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fats:     m.Fats * factor,
		Fiber:    m.Fiber * factor,
	}
}

// Rounded rounds every field to one decimal place.
func (m MacroVector) Rounded() MacroVector {
	return MacroVector{
		Calories: round1(m.Calories),
		Protein:  round1(m.Protein),
		Carbs:    round1(m.Carbs),
		Fats:     round1(m.Fats),
		Fiber:    round1(m.Fiber),
	}
}

// IsZero reports whether every field is zero.
func (m MacroVector) IsZero() bool {
	return m == MacroVector{}
}

// Sum adds vectors componentwise. Accumulation is unrounded; only the
// result is rounded to one decimal. An empty input yields the zero vector.
func Sum(vectors ...MacroVector) MacroVector {
	var total MacroVector
	for _, v := range vectors {
		total = total.Add(v)
	}
	return total.Rounded()
}

// Per100g rescales a vector measured over totalGrams to a per-100g basis.
// totalGrams <= 0 (or non-finite) returns the zero vector.
func Per100g(v MacroVector, totalGrams float64) MacroVector {
	if !isPositive(totalGrams) {
		return MacroVector{}
	}
	return v.Scale(100 / totalGrams).Rounded()
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
