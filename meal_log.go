package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/hayl-fuel-api/nutrition"
)

// validMealTypes is the set of allowed meal_type labels. Unknown values get a
// 400 rather than a cryptic 500 from the DB constraint.
var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// maxFutureLog is how far ahead of the server clock a meal may be logged,
// allowing for clients in timezones ahead of the server.
const maxFutureLog = 24 * time.Hour

// normalizeMealRequest canonicalizes units and roles and fills logged_at.
// Returns a client-facing message for the first invalid field, or "".
func normalizeMealRequest(body *createMealLogRequest, now time.Time) string {
	if len(body.Components) == 0 {
		return "at least one component is required"
	}
	if body.MealType != nil && !validMealTypes[*body.MealType] {
		return "meal_type must be one of: breakfast, lunch, dinner, snack"
	}
	if body.LoggedAt == nil {
		body.LoggedAt = &now
	} else if body.LoggedAt.After(now.Add(maxFutureLog)) {
		return "logged_at is too far in the future"
	}

	for i := range body.Components {
		comp := &body.Components[i]
		if comp.Role == "" {
			comp.Role = nutrition.RoleBase
		}
		if !comp.Role.Valid() {
			return fmt.Sprintf("component %d: type must be one of: base, topping, side", i)
		}
		itemType, ok := parseItemType(string(comp.ItemType))
		if !ok {
			return fmt.Sprintf("component %d: item_type must be one of: ingredient, dish", i)
		}
		comp.ItemType = itemType
		unit, ok := nutrition.ParseUnit(string(comp.Unit))
		if !ok {
			return fmt.Sprintf("component %d: unknown unit", i)
		}
		comp.Unit = unit
		if comp.ItemID <= 0 || comp.Amount <= 0 {
			return fmt.Sprintf("component %d: item_id and amount must be positive", i)
		}
	}
	return ""
}

// getMealLogs returns meal logs for the authenticated user within [start, end].
// GET /api/meal-logs?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getMealLogs(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, msg := dateRange(c)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	logs, err := queryMany[mealLog](h.db, c,
		`SELECT * FROM meal_logs
		 WHERE user_id = @userID AND logged_at >= @start::date AND logged_at < @end::date + 1
		 ORDER BY logged_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.logFor(c, "getMealLogs").Error("meal log query failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch meal logs")
		return
	}
	if logs == nil {
		logs = []mealLog{}
	}

	c.JSON(http.StatusOK, logs)
}

// getDailySummary returns the day's meal logs, their summed totals and, when
// the profile is complete, the daily targets and what remains of them.
// GET /api/meal-logs/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "getDailySummary")
	date := c.DefaultQuery("date", h.now().Format("2006-01-02"))

	if _, err := time.Parse("2006-01-02", date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	logs, err := queryMany[mealLog](h.db, c,
		`SELECT * FROM meal_logs
		 WHERE user_id = @userID AND logged_at >= @date::date AND logged_at < @date::date + 1
		 ORDER BY logged_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		log.Error("meal log query failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch meal logs")
		return
	}
	if logs == nil {
		logs = []mealLog{}
	}

	totals := make([]nutrition.MacroVector, 0, len(logs))
	for _, l := range logs {
		totals = append(totals, l.Totals)
	}
	summary := dailyMealSummary{
		Date:   date,
		Totals: nutrition.Sum(totals...),
		Logs:   logs,
	}

	// Targets are optional: a user without biometrics still sees their totals.
	p, err := h.loadProfile(h.db, c, userID)
	switch {
	case err == nil:
		if report, rerr := buildEnergyReport(p, h.now(), h.cfg.DefaultMealsPerDay); rerr == nil {
			remaining := report.Targets.Add(summary.Totals.Scale(-1)).Rounded()
			summary.Targets = &report.Targets
			summary.Remaining = &remaining
		}
	case !errors.Is(err, pgx.ErrNoRows):
		log.Warn("profile lookup failed", "error", err)
	}

	c.JSON(http.StatusOK, summary)
}

// getWeekSummary returns per-day totals for the Mon-Sun week containing
// week_start (snapped back to its Monday). Days with no logged meals are included with has_data=false.
// GET /api/meal-logs/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "getWeekSummary")

	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = currentMonday(t)
	} else {
		weekStart = currentMonday(h.now())
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	rows, err := queryMany[weekDayDBRow](h.db, c,
		`SELECT
			logged_at::date AS date,
			COALESCE(SUM((totals->>'calories')::float8), 0) AS calories,
			COALESCE(SUM((totals->>'protein')::float8),  0) AS protein,
			COALESCE(SUM((totals->>'carbs')::float8),    0) AS carbs,
			COALESCE(SUM((totals->>'fats')::float8),     0) AS fats,
			COALESCE(SUM((totals->>'fiber')::float8),    0) AS fiber
		 FROM meal_logs
		 WHERE user_id = @userID AND logged_at >= @weekStart::date AND logged_at < @weekEnd::date + 1
		 GROUP BY 1`,
		pgx.NamedArgs{
			"userID":    userID,
			"weekStart": weekStart.Format("2006-01-02"),
			"weekEnd":   weekEnd.Format("2006-01-02"),
		})
	if err != nil {
		log.Error("week summary query failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	var calorieTarget float64
	if p, err := h.loadProfile(h.db, c, userID); err == nil {
		if report, rerr := buildEnergyReport(p, h.now(), h.cfg.DefaultMealsPerDay); rerr == nil {
			calorieTarget = report.Targets.Calories
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Warn("profile lookup failed", "error", err)
	}

	c.JSON(http.StatusOK, buildWeekSummary(weekStart, rows, calorieTarget))
}

// buildWeekSummary fills a 7-day response from the grouped rows, with zero
// totals for days that have no data. CaloriesLeft is only set when a calorie
// target is known.
func buildWeekSummary(weekStart time.Time, rows []weekDayDBRow, calorieTarget float64) []weekDaySummary {
	rowByDate := make(map[string]weekDayDBRow, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Time.Format("2006-01-02")] = r
	}

	result := make([]weekDaySummary, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		day := weekDaySummary{
			Date:          DateOnly{d},
			CalorieTarget: calorieTarget,
		}
		if row, ok := rowByDate[d.Format("2006-01-02")]; ok {
			day.HasData = true
			day.Totals = nutrition.Sum(nutrition.MacroVector{
				Calories: row.Calories,
				Protein:  row.Protein,
				Carbs:    row.Carbs,
				Fats:     row.Fats,
				Fiber:    row.Fiber,
			})
		}
		if calorieTarget > 0 {
			day.CaloriesLeft = calorieTarget - day.Totals.Calories
		}
		result[i] = day
	}
	return result
}

// createMealLog resolves the meal's components against the food catalog and
// stores the normalized components and totals computed once at write time.
// Unknown food references are skipped and counted.
// POST /api/meal-logs.
func (h *Handler) createMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "createMealLog")

	var body createMealLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := normalizeMealRequest(&body, h.now()); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	ingredientIDs, dishIDs := mealCatalogIDs(body.Components)
	cat, err := loadCatalog(h.db, c, ingredientIDs, dishIDs)
	if err != nil {
		log.Error("catalog load failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to load foods")
		return
	}

	snap := nutrition.BuildMealLog(body.Components, cat)
	if len(snap.Components) == 0 {
		apiError(c, http.StatusUnprocessableEntity, "no component could be resolved")
		return
	}

	components, err := jsonArg(body.Components)
	if err != nil {
		log.Error("encode components failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create meal log")
		return
	}
	normalized, err := jsonArg(snap.Components)
	if err != nil {
		log.Error("encode normalized components failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create meal log")
		return
	}
	totals, err := jsonArg(snap.Totals)
	if err != nil {
		log.Error("encode totals failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create meal log")
		return
	}

	entry, err := queryOne[mealLog](h.db, c,
		`INSERT INTO meal_logs (user_id, logged_at, meal_type, components, normalized_components, totals)
		 VALUES (@userID, @loggedAt, @mealType, @components::jsonb, @normalized::jsonb, @totals::jsonb)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":     userID,
			"loggedAt":   *body.LoggedAt,
			"mealType":   body.MealType,
			"components": components,
			"normalized": normalized,
			"totals":     totals,
		})
	if err != nil {
		log.Error("meal log insert failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create meal log")
		return
	}

	if snap.Skipped > 0 {
		log.Info("meal logged with unresolved components", "meal_log_id", entry.ID, "skipped", snap.Skipped)
	}
	h.refreshSignal(c, userID)

	c.JSON(http.StatusCreated, gin.H{"log": entry, "skipped": snap.Skipped})
}

// deleteMealLog removes a meal log by ID.
// DELETE /api/meal-logs/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM meal_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.logFor(c, "deleteMealLog").Error("meal log delete failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to delete meal log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "meal log not found")
		return
	}

	h.refreshSignal(c, userID)
	c.Status(http.StatusNoContent)
}
