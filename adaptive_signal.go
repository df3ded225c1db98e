package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"lg/hayl-fuel-api/nutrition"
)

// signalWindowStart is midnight, in now's location, of the first calendar day
// of the long adherence window.
func signalWindowStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-(nutrition.LongWindowDays-1), 0, 0, 0, 0, now.Location())
}

// signalStale reports whether a stored signal was computed on an earlier
// calendar day than now. Adherence windows roll at midnight, so such a
// record no longer describes today.
func signalStale(s nutrition.AdaptiveSignal, now time.Time) bool {
	computed := s.ComputedAt.In(now.Location())
	cy, cm, cd := computed.Date()
	ny, nm, nd := now.Date()
	return cy != ny || cm != nm || cd != nd
}

// signalInputFor assembles the engine input from fetched rows.
func signalInputFor(p profile, meals []mealLog, weights []weightLogRow, now time.Time, defaultMeals int) (nutrition.SignalInput, error) {
	report, err := buildEnergyReport(p, now, defaultMeals)
	if err != nil {
		return nutrition.SignalInput{}, err
	}
	in := nutrition.SignalInput{
		Goal:          nutrition.Goal(p.Goal),
		TDEE:          report.TDEE,
		ProteinTarget: report.Targets.Protein,
		Meals:         make([]nutrition.LoggedMeal, 0, len(meals)),
		Weights:       make([]nutrition.WeightLog, 0, len(weights)),
		Now:           now,
	}
	for _, m := range meals {
		in.Meals = append(in.Meals, nutrition.LoggedMeal{LoggedAt: m.LoggedAt, Totals: m.Totals})
	}
	for _, w := range weights {
		in.Weights = append(in.Weights, w.toWeightLog())
	}
	return in, nil
}

// computeSignal fetches the profile, the long window of meal logs and the two
// most recent weight samples concurrently, then runs the engine.
func (h *Handler) computeSignal(ctx context.Context, userID int) (nutrition.AdaptiveSignal, error) {
	now := h.now()

	var (
		p       profile
		meals   []mealLog
		weights []weightLogRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = h.loadProfile(h.db, gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		meals, err = queryMany[mealLog](h.db, gctx,
			`SELECT * FROM meal_logs WHERE user_id = @userID AND logged_at >= @since`,
			pgx.NamedArgs{"userID": userID, "since": signalWindowStart(now)})
		if err != nil {
			return fmt.Errorf("meal logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		weights, err = queryMany[weightLogRow](h.db, gctx,
			`SELECT * FROM weight_logs WHERE user_id = @userID ORDER BY logged_at DESC LIMIT 2`,
			pgx.NamedArgs{"userID": userID})
		if err != nil {
			return fmt.Errorf("weight logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nutrition.AdaptiveSignal{}, err
	}

	in, err := signalInputFor(p, meals, weights, now, h.cfg.DefaultMealsPerDay)
	if err != nil {
		return nutrition.AdaptiveSignal{}, err
	}
	return nutrition.ComputeAdaptiveSignal(in), nil
}

// recomputeAndStore recomputes the signal, upserts it and refreshes the cache.
func (h *Handler) recomputeAndStore(ctx context.Context, userID int) (nutrition.AdaptiveSignal, error) {
	s, err := h.computeSignal(ctx, userID)
	if err != nil {
		return s, err
	}

	_, err = h.db.Exec(ctx,
		`INSERT INTO adaptive_signals (
			user_id, consistency_7d, consistency_28d, avg_calories_7d, avg_protein_7d,
			weekly_rate_kg, calorie_delta_from_tdee, protein_adequacy_ratio,
			classification, confidence, summary, computed_at)
		 VALUES (
			@userID, @consistency7d, @consistency28d, @avgCalories7d, @avgProtein7d,
			@weeklyRateKg, @calorieDelta, @proteinRatio,
			@classification, @confidence, @summary, @computedAt)
		 ON CONFLICT (user_id) DO UPDATE SET
			consistency_7d          = EXCLUDED.consistency_7d,
			consistency_28d         = EXCLUDED.consistency_28d,
			avg_calories_7d         = EXCLUDED.avg_calories_7d,
			avg_protein_7d          = EXCLUDED.avg_protein_7d,
			weekly_rate_kg          = EXCLUDED.weekly_rate_kg,
			calorie_delta_from_tdee = EXCLUDED.calorie_delta_from_tdee,
			protein_adequacy_ratio  = EXCLUDED.protein_adequacy_ratio,
			classification          = EXCLUDED.classification,
			confidence              = EXCLUDED.confidence,
			summary                 = EXCLUDED.summary,
			computed_at             = EXCLUDED.computed_at`,
		pgx.NamedArgs{
			"userID":         userID,
			"consistency7d":  s.Consistency7d,
			"consistency28d": s.Consistency28d,
			"avgCalories7d":  s.AvgCalories7d,
			"avgProtein7d":   s.AvgProtein7d,
			"weeklyRateKg":   s.WeeklyRateKg,
			"calorieDelta":   s.CalorieDeltaFromTDEE,
			"proteinRatio":   s.ProteinAdequacyRatio,
			"classification": string(s.Classification),
			"confidence":     s.Confidence,
			"summary":        s.Summary,
			"computedAt":     s.ComputedAt,
		})
	if err != nil {
		return s, fmt.Errorf("upsert adaptive signal: %w", err)
	}

	if err := h.cache.Set(ctx, userID, s); err != nil {
		h.log.Warn("signal cache set failed", "user_id", userID, "error", err)
	}
	return s, nil
}

// refreshSignal recomputes after a write that feeds the signal. Failures are
// logged and never fail the triggering request.
func (h *Handler) refreshSignal(c *gin.Context, userID int) {
	_, err := h.recomputeAndStore(c, userID)
	if err == nil {
		return
	}
	log := h.logFor(c, "refreshSignal")
	if errors.Is(err, errProfileIncomplete) || errors.Is(err, pgx.ErrNoRows) {
		log.Debug("signal not recomputed", "reason", err.Error())
	} else {
		log.Error("signal recompute failed", "error", err)
	}
	// The cached copy no longer reflects the write; drop it so the next read
	// goes to the table.
	if err := h.cache.Delete(c, userID); err != nil {
		log.Warn("signal cache delete failed", "error", err)
	}
}

// signalError maps recompute failures to responses.
func (h *Handler) signalError(c *gin.Context, handler string, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "profile not found")
	case errors.Is(err, errProfileIncomplete):
		apiError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logFor(c, handler).Error("signal recompute failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to compute adaptive signal")
	}
}

// getAdaptiveSignal returns the user's adaptive signal, reading through the
// cache and the adaptive_signals table and recomputing when absent or
// computed on an earlier day.
// GET /api/adaptive-signal.
func (h *Handler) getAdaptiveSignal(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "getAdaptiveSignal")
	now := h.now()

	s, hit, err := h.cache.Get(c, userID)
	if err != nil {
		log.Warn("signal cache get failed", "error", err)
	}
	if hit && !signalStale(s, now) {
		c.JSON(http.StatusOK, s)
		return
	}

	row, err := queryOne[adaptiveSignalRow](h.db, c,
		"SELECT * FROM adaptive_signals WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	switch {
	case err == nil:
		if stored := row.toSignal(); !signalStale(stored, now) {
			if err := h.cache.Set(c, userID, stored); err != nil {
				log.Warn("signal cache set failed", "error", err)
			}
			c.JSON(http.StatusOK, stored)
			return
		}
	case !errors.Is(err, pgx.ErrNoRows):
		log.Error("signal lookup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch adaptive signal")
		return
	}

	s, err = h.recomputeAndStore(c, userID)
	if err != nil {
		h.signalError(c, "getAdaptiveSignal", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// recomputeAdaptiveSignal forces a recompute and upsert.
// POST /api/adaptive-signal/recompute.
func (h *Handler) recomputeAdaptiveSignal(c *gin.Context) {
	userID := c.GetInt("user_id")

	s, err := h.recomputeAndStore(c, userID)
	if err != nil {
		h.signalError(c, "recomputeAdaptiveSignal", err)
		return
	}
	c.JSON(http.StatusOK, s)
}
