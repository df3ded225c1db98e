package nutrition

import (
	"math"
	"time"
)

// ActivityMultipliers maps activity levels to their TDEE multiplier. This is
// the single source of truth for valid activity levels; profile validation
// uses it too.
var ActivityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
	"athlete":   1.9,
}

// activityAliases accepts older level names.
var activityAliases = map[string]string{
	"very_active": "athlete",
}

// ActivityMultiplier returns the multiplier for level. ok is false for
// unknown levels.
func ActivityMultiplier(level string) (float64, bool) {
	if alias, found := activityAliases[level]; found {
		level = alias
	}
	m, ok := ActivityMultipliers[level]
	return m, ok
}

const (
	FormulaMifflinStJeor = "Mifflin-St Jeor"
	FormulaKatchMcArdle  = "Katch-McArdle"
)

// Biometrics is the input to the energy model. BodyFatPercent is optional;
// zero or negative means unknown.
type Biometrics struct {
	WeightKg       float64 `json:"weight_kg"`
	HeightCm       float64 `json:"height_cm"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	ActivityLevel  string  `json:"activity_level"`
	BodyFatPercent float64 `json:"body_fat_percent,omitempty"`
}

// Energy is the energy model's result. Formula names the method used so
// callers can disclose it.
type Energy struct {
	BMR     int    `json:"bmr"`
	TDEE    int    `json:"tdee"`
	Formula string `json:"formula"`
}

// ComputeEnergy returns BMR and TDEE rounded to whole calories. Katch-McArdle
// is used when a positive body fat percentage is known, Mifflin-St Jeor
// otherwise. Unknown activity levels fall back to sedentary.
func ComputeEnergy(b Biometrics) Energy {
	var bmr float64
	formula := FormulaMifflinStJeor
	if b.BodyFatPercent > 0 {
		formula = FormulaKatchMcArdle
		leanMassKg := b.WeightKg * (1 - b.BodyFatPercent/100)
		bmr = 370 + 21.6*leanMassKg
	} else {
		// Different constant for male vs female
		bmr = 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
		if b.Gender == "male" {
			bmr += 5
		} else {
			bmr -= 161
		}
	}

	mult, ok := ActivityMultiplier(b.ActivityLevel)
	if !ok {
		mult = ActivityMultipliers["sedentary"]
	}
	return Energy{
		BMR:     int(math.Round(bmr)),
		TDEE:    int(math.Round(bmr * mult)),
		Formula: formula,
	}
}

// AgeOn returns the age in whole years on the given day. ok is false for
// implausible ages (DOB in the future, or over 130 years ago).
func AgeOn(dob, now time.Time) (int, bool) {
	age := now.Year() - dob.Year()
	if now.Before(dob.AddDate(age, 0, 0)) {
		age--
	}
	if age < 0 || age > 130 {
		return 0, false
	}
	return age, true
}
