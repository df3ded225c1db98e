package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/hayl-fuel-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan date columns into
// DateOnly. NULL zeroes the time so *DateOnly fields come back nil.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	IsAdmin   bool       `json:"is_admin" db:"is_admin"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to profiles. One row per user; biometric fields are nullable
// so a freshly created user still has a row.
type profile struct {
	UserID          int        `json:"user_id"          db:"user_id"`
	WeightKg        *float64   `json:"weight_kg"        db:"weight_kg"`
	HeightCm        *float64   `json:"height_cm"        db:"height_cm"`
	DateOfBirth     *DateOnly  `json:"date_of_birth"    db:"date_of_birth"`
	Sex             *string    `json:"sex"              db:"sex"`
	ActivityLevel   *string    `json:"activity_level"   db:"activity_level"`
	BodyFatPercent  *float64   `json:"body_fat_percent" db:"body_fat_percent"`
	Goal            string     `json:"goal"             db:"goal"`
	ExperienceLevel string     `json:"experience_level" db:"experience_level"`
	MealsPerDay     *int       `json:"meals_per_day"    db:"meals_per_day"`
	UpdatedAt       *time.Time `json:"updated_at"       db:"updated_at"`

	// Computed from date_of_birth on read; not stored.
	Age *int `json:"age,omitempty" db:"-"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// Only non-nil fields get written.
type patchProfileRequest struct {
	WeightKg        *float64 `json:"weight_kg"`
	HeightCm        *float64 `json:"height_cm"`
	DateOfBirth     *string  `json:"date_of_birth"` // YYYY-MM-DD
	Sex             *string  `json:"sex"`
	ActivityLevel   *string  `json:"activity_level"`
	BodyFatPercent  *float64 `json:"body_fat_percent"`
	Goal            *string  `json:"goal"`
	ExperienceLevel *string  `json:"experience_level"`
	MealsPerDay     *int     `json:"meals_per_day"`
}

// ingredientRow maps to ingredients. Measures is a jsonb column.
type ingredientRow struct {
	ID               int64                  `db:"id"`
	Name             string                 `db:"name"`
	Calories         float64                `db:"calories"`
	Protein          float64                `db:"protein"`
	Carbs            float64                `db:"carbs"`
	Fats             float64                `db:"fats"`
	Fiber            float64                `db:"fiber"`
	Basis            string                 `db:"basis"`
	ServingSizeGrams *float64               `db:"serving_size_grams"`
	Density          *float64               `db:"density"`
	Measures         []nutrition.MeasureDef `db:"measures"`
	Category         string                 `db:"category"`
	IsLocal          bool                   `db:"is_local"`
	CreatedAt        *time.Time             `db:"created_at"`
}

func (r ingredientRow) toIngredient() nutrition.Ingredient {
	return nutrition.Ingredient{
		ID:               r.ID,
		Name:             r.Name,
		Calories:         r.Calories,
		Protein:          r.Protein,
		Carbs:            r.Carbs,
		Fats:             r.Fats,
		Fiber:            r.Fiber,
		Basis:            nutrition.NutritionBasis(r.Basis),
		ServingSizeGrams: derefFloat(r.ServingSizeGrams),
		Density:          derefFloat(r.Density),
		Measures:         r.Measures,
		Category:         r.Category,
		IsLocal:          r.IsLocal,
	}
}

// dishRow maps to dishes. Components, per_100g and measures are jsonb.
type dishRow struct {
	ID                  int64                     `db:"id"`
	Name                string                    `db:"name"`
	Components          []nutrition.DishComponent `db:"components"`
	DefaultServingGrams float64                   `db:"default_serving_grams"`
	Per100g             nutrition.MacroVector     `db:"per_100g"`
	Measures            []nutrition.MeasureDef    `db:"measures"`
	CreatedBy           *int                      `db:"created_by"`
	CreatedAt           *time.Time                `db:"created_at"`
}

func (r dishRow) toDish() nutrition.Dish {
	return nutrition.Dish{
		ID:                  r.ID,
		Name:                r.Name,
		Components:          r.Components,
		DefaultServingGrams: r.DefaultServingGrams,
		Per100g:             r.Per100g,
		Measures:            r.Measures,
	}
}

// mealLog maps to meal_logs. normalized_components and totals are written
// once when the meal is logged and never recomputed.
type mealLog struct {
	ID                   int64                           `json:"id"                    db:"id"`
	UserID               int                             `json:"user_id"               db:"user_id"`
	LoggedAt             time.Time                       `json:"logged_at"             db:"logged_at"`
	MealType             *string                         `json:"meal_type"             db:"meal_type"`
	Components           []nutrition.MealComponent       `json:"components"            db:"components"`
	NormalizedComponents []nutrition.NormalizedComponent `json:"normalized_components" db:"normalized_components"`
	Totals               nutrition.MacroVector           `json:"totals"                db:"totals"`
	CreatedAt            *time.Time                      `json:"created_at"            db:"created_at"`
}

// createMealLogRequest is the request body for POST /api/meal-logs.
type createMealLogRequest struct {
	LoggedAt   *time.Time                `json:"logged_at"` // RFC 3339; defaults to now
	MealType   *string                   `json:"meal_type"`
	Components []nutrition.MealComponent `json:"components"`
}

// dailyMealSummary is the response shape for GET /api/meal-logs/daily.
type dailyMealSummary struct {
	Date      string                 `json:"date"`
	Totals    nutrition.MacroVector  `json:"totals"`
	Targets   *nutrition.MacroVector `json:"targets,omitempty"`
	Remaining *nutrition.MacroVector `json:"remaining,omitempty"`
	Logs      []mealLog              `json:"logs"`
}

// weekDayDBRow is the shape of each row returned by the week-summary GROUP BY query.
type weekDayDBRow struct {
	Date     DateOnly `db:"date"`
	Calories float64  `db:"calories"`
	Protein  float64  `db:"protein"`
	Carbs    float64  `db:"carbs"`
	Fats     float64  `db:"fats"`
	Fiber    float64  `db:"fiber"`
}

// weekDaySummary is one day's entry in the GET /api/meal-logs/week-summary response.
// Days with no logged meals have HasData=false and zero totals.
type weekDaySummary struct {
	Date          DateOnly              `json:"date"`
	Totals        nutrition.MacroVector `json:"totals"`
	CalorieTarget float64               `json:"calorie_target"`
	CaloriesLeft  float64               `json:"calories_left"`
	HasData       bool                  `json:"has_data"`
}

// weightLogRow maps to weight_logs.
type weightLogRow struct {
	ID        int64      `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	WeightKg  float64    `json:"weight_kg"  db:"weight_kg"`
	LoggedAt  time.Time  `json:"logged_at"  db:"logged_at"`
	Source    string     `json:"source"     db:"source"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

func (r weightLogRow) toWeightLog() nutrition.WeightLog {
	return nutrition.WeightLog{
		ID:       r.ID,
		UserID:   int64(r.UserID),
		WeightKg: r.WeightKg,
		LoggedAt: r.LoggedAt,
		Source:   r.Source,
	}
}

// adaptiveSignalRow maps to adaptive_signals, one row per user.
type adaptiveSignalRow struct {
	UserID               int       `db:"user_id"`
	Consistency7d        int       `db:"consistency_7d"`
	Consistency28d       int       `db:"consistency_28d"`
	AvgCalories7d        float64   `db:"avg_calories_7d"`
	AvgProtein7d         float64   `db:"avg_protein_7d"`
	WeeklyRateKg         float64   `db:"weekly_rate_kg"`
	CalorieDeltaFromTDEE float64   `db:"calorie_delta_from_tdee"`
	ProteinAdequacyRatio float64   `db:"protein_adequacy_ratio"`
	Classification       string    `db:"classification"`
	Confidence           int       `db:"confidence"`
	Summary              string    `db:"summary"`
	ComputedAt           time.Time `db:"computed_at"`
}

func (r adaptiveSignalRow) toSignal() nutrition.AdaptiveSignal {
	return nutrition.AdaptiveSignal{
		Consistency7d:        r.Consistency7d,
		Consistency28d:       r.Consistency28d,
		AvgCalories7d:        r.AvgCalories7d,
		AvgProtein7d:         r.AvgProtein7d,
		WeeklyRateKg:         r.WeeklyRateKg,
		CalorieDeltaFromTDEE: r.CalorieDeltaFromTDEE,
		ProteinAdequacyRatio: r.ProteinAdequacyRatio,
		Classification:       nutrition.Classification(r.Classification),
		Confidence:           r.Confidence,
		Summary:              r.Summary,
		ComputedAt:           r.ComputedAt,
	}
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
