package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/hayl-fuel-api/nutrition"
)

// errProfileIncomplete means the profile lacks a field the energy model needs.
var errProfileIncomplete = errors.New("profile incomplete: weight_kg, height_cm, date_of_birth, sex and activity_level are required")

// energyReport is the response shape for GET /api/energy. TDEE is
// maintenance; Targets.Calories is adjusted for the goal.
type energyReport struct {
	Age         int                   `json:"age"`
	BMR         int                   `json:"bmr"`
	TDEE        int                   `json:"tdee"`
	Formula     string                `json:"formula"`
	Goal        nutrition.Goal        `json:"goal"`
	Targets     nutrition.MacroVector `json:"targets"`
	MealsPerDay int                   `json:"meals_per_day"`
	PerMeal     nutrition.MacroVector `json:"per_meal"`
}

// biometricsFor builds energy model input from a profile. ok is false when a
// required field is missing or the date of birth gives an implausible age.
func biometricsFor(p profile, now time.Time) (b nutrition.Biometrics, age int, ok bool) {
	if p.WeightKg == nil || p.HeightCm == nil || p.DateOfBirth == nil ||
		p.Sex == nil || p.ActivityLevel == nil {
		return nutrition.Biometrics{}, 0, false
	}
	age, ok = nutrition.AgeOn(p.DateOfBirth.Time, now)
	if !ok {
		return nutrition.Biometrics{}, 0, false
	}
	b = nutrition.Biometrics{
		WeightKg:      *p.WeightKg,
		HeightCm:      *p.HeightCm,
		Age:           age,
		Gender:        *p.Sex,
		ActivityLevel: *p.ActivityLevel,
	}
	if p.BodyFatPercent != nil {
		b.BodyFatPercent = *p.BodyFatPercent
	}
	return b, age, true
}

// buildEnergyReport runs the energy model and the target deriver for a
// profile. defaultMeals is used when the profile has no meals_per_day.
func buildEnergyReport(p profile, now time.Time, defaultMeals int) (energyReport, error) {
	b, age, ok := biometricsFor(p, now)
	if !ok {
		return energyReport{}, errProfileIncomplete
	}
	e := nutrition.ComputeEnergy(b)
	goal := nutrition.Goal(p.Goal)
	targets := nutrition.DeriveTargets(nutrition.TargetInput{
		Calories:        nutrition.GoalCalories(e, goal),
		WeightKg:        b.WeightKg,
		Goal:            goal,
		ExperienceLevel: nutrition.ExperienceLevel(p.ExperienceLevel),
	})
	meals := defaultMeals
	if p.MealsPerDay != nil && *p.MealsPerDay > 0 {
		meals = *p.MealsPerDay
	}
	return energyReport{
		Age:         age,
		BMR:         e.BMR,
		TDEE:        e.TDEE,
		Formula:     e.Formula,
		Goal:        goal,
		Targets:     targets,
		MealsPerDay: meals,
		PerMeal:     nutrition.SplitPerMeal(targets, meals),
	}, nil
}

// currentMonday returns the Monday of the week containing now, at midnight in
// now's location. AddDate handles month and year boundaries.
func currentMonday(now time.Time) time.Time {
	weekday := int(now.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7
	}
	d := now.AddDate(0, 0, -(weekday - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

// loadProfile fetches the user's profile row.
func (h *Handler) loadProfile(q querier, ctx context.Context, userID int) (profile, error) {
	return queryOne[profile](q, ctx, "SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

// getEnergy returns BMR, TDEE, daily macro targets and the per-meal split.
// GET /api/energy. 404 when the user has no profile row, 422 when the
// profile lacks biometrics.
func (h *Handler) getEnergy(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(h.db, c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
			return
		}
		h.logFor(c, "getEnergy").Error("profile lookup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	report, err := buildEnergyReport(p, h.now(), h.cfg.DefaultMealsPerDay)
	if err != nil {
		apiError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}
