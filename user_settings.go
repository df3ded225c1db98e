package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/hayl-fuel-api/nutrition"
)

// validSexes are the values the energy model distinguishes.
var validSexes = map[string]bool{"male": true, "female": true}

// validateProfilePatch returns a client-facing message for the first invalid
// field, or "" when the patch is acceptable. An unknown activity level or an
// implausible date of birth would silently break every later energy
// computation, so they are rejected here.
func validateProfilePatch(body patchProfileRequest, now time.Time) string {
	if body.WeightKg != nil && (*body.WeightKg <= 0 || *body.WeightKg > 700) {
		return "weight_kg must be between 0 and 700"
	}
	if body.HeightCm != nil && (*body.HeightCm <= 0 || *body.HeightCm > 300) {
		return "height_cm must be between 0 and 300"
	}
	if body.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *body.DateOfBirth)
		if err != nil {
			return "invalid date_of_birth, expected YYYY-MM-DD"
		}
		if _, ok := nutrition.AgeOn(dob, now); !ok {
			return "date_of_birth gives an implausible age"
		}
	}
	if body.Sex != nil && !validSexes[*body.Sex] {
		return "sex must be one of: male, female"
	}
	if body.ActivityLevel != nil {
		if _, ok := nutrition.ActivityMultiplier(*body.ActivityLevel); !ok {
			return "activity_level must be one of: sedentary, light, moderate, active, athlete"
		}
	}
	if body.BodyFatPercent != nil && (*body.BodyFatPercent < 0 || *body.BodyFatPercent >= 100) {
		return "body_fat_percent must be between 0 and 100"
	}
	if body.Goal != nil && !nutrition.Goal(*body.Goal).Valid() {
		return "goal must be one of: cut, maintain, bulk"
	}
	if body.ExperienceLevel != nil && !nutrition.ExperienceLevel(*body.ExperienceLevel).Valid() {
		return "experience_level must be one of: beginner, intermediate, elite"
	}
	if body.MealsPerDay != nil && (*body.MealsPerDay < 1 || *body.MealsPerDay > 12) {
		return "meals_per_day must be between 1 and 12"
	}
	return ""
}

// withAge fills the computed age from date_of_birth.
func withAge(p profile, now time.Time) profile {
	if p.DateOfBirth != nil {
		if age, ok := nutrition.AgeOn(p.DateOfBirth.Time, now); ok {
			p.Age = &age
		}
	}
	return p
}

// getProfile returns the authenticated user's profile.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(h.db, c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
			return
		}
		h.logFor(c, "getProfile").Error("profile lookup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, withAge(p, h.now()))
}

// patchProfile updates only the provided profile fields, then refreshes the
// adaptive signal since energy and targets may have changed.
// PATCH /api/profile. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfilePatch(body, h.now()); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	// Build SET clause dynamically from the fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, value any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = value
	}

	if body.WeightKg != nil {
		set("weight_kg", "weightKg", *body.WeightKg)
	}
	if body.HeightCm != nil {
		set("height_cm", "heightCm", *body.HeightCm)
	}
	if body.DateOfBirth != nil {
		set("date_of_birth", "dateOfBirth", *body.DateOfBirth)
	}
	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.ActivityLevel != nil {
		set("activity_level", "activityLevel", *body.ActivityLevel)
	}
	if body.BodyFatPercent != nil {
		// Zero clears it so the energy model falls back to Mifflin-St Jeor
		var bf *float64
		if *body.BodyFatPercent > 0 {
			bf = body.BodyFatPercent
		}
		set("body_fat_percent", "bodyFatPercent", bf)
	}
	if body.Goal != nil {
		set("goal", "goal", *body.Goal)
	}
	if body.ExperienceLevel != nil {
		set("experience_level", "experienceLevel", *body.ExperienceLevel)
	}
	if body.MealsPerDay != nil {
		set("meals_per_day", "mealsPerDay", *body.MealsPerDay)
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
			return
		}
		h.logFor(c, "patchProfile").Error("profile update failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.refreshSignal(c, userID)

	c.JSON(http.StatusOK, withAge(p, h.now()))
}
