package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/hayl-fuel-api/nutrition"
)

// createWeightRequest is the request body for POST /api/weight-log.
type createWeightRequest struct {
	WeightKg float64    `json:"weight_kg"`
	LoggedAt *time.Time `json:"logged_at"` // RFC 3339; defaults to now
	Source   string     `json:"source"`
}

// normalizeWeightRequest fills defaults and returns a client-facing message
// for the first invalid field, or "".
func normalizeWeightRequest(body *createWeightRequest, now time.Time) string {
	if body.WeightKg <= 0 || body.WeightKg > 700 {
		return "weight_kg must be between 0 and 700"
	}
	if body.LoggedAt == nil {
		body.LoggedAt = &now
	} else if body.LoggedAt.After(now.Add(maxFutureLog)) {
		return "logged_at is too far in the future"
	}
	body.Source = strings.TrimSpace(body.Source)
	if body.Source == "" {
		body.Source = "manual"
	}
	if len(body.Source) > 32 {
		return "source must be at most 32 characters"
	}
	return ""
}

// getWeightLog returns weight entries for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, msg := dateRange(c)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entries, err := queryMany[weightLogRow](h.db, c,
		`SELECT * FROM weight_logs
		 WHERE user_id = @userID AND logged_at >= @start::date AND logged_at < @end::date + 1
		 ORDER BY logged_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		h.logFor(c, "getWeightLog").Error("weight log query failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	if entries == nil {
		entries = []weightLogRow{}
	}

	c.JSON(http.StatusOK, entries)
}

// createWeightEntry appends a weight sample unless it merely repeats the
// user's nearest existing sample. POST /api/weight-log.
// Body: { "weight_kg": 80.4, "logged_at"?: RFC 3339, "source"?: "manual" }.
// Responds 201 with the entry when recorded, 200 {"recorded": false} when deduplicated.
func (h *Handler) createWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	log := h.logFor(c, "createWeightEntry")

	var body createWeightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := normalizeWeightRequest(&body, h.now()); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entry, recorded, err := h.recordWeight(c, userID, body)
	if err != nil {
		log.Error("weight insert failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to record weight entry")
		return
	}
	if !recorded {
		log.Debug("weight sample deduplicated", "weight_kg", body.WeightKg)
		c.JSON(http.StatusOK, gin.H{"recorded": false})
		return
	}

	h.refreshSignal(c, userID)
	c.JSON(http.StatusCreated, gin.H{"recorded": true, "entry": entry})
}

// recordWeight runs the dedup check and insert in one transaction holding a
// per-user advisory lock, so concurrent saves cannot both pass the check.
func (h *Handler) recordWeight(ctx context.Context, userID int, body createWeightRequest) (weightLogRow, bool, error) {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return weightLogRow{}, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(@userID)", pgx.NamedArgs{"userID": userID}); err != nil {
		return weightLogRow{}, false, fmt.Errorf("lock: %w", err)
	}

	// Only samples inside the dedup window can suppress this one. The nearest
	// of them is compared, so a backdated save is checked against its
	// neighbours and a save at the current time against the latest sample.
	neighbours, err := queryMany[weightLogRow](tx, ctx,
		`SELECT * FROM weight_logs
		 WHERE user_id = @userID
		   AND logged_at > @at::timestamptz - @window::interval
		   AND logged_at < @at::timestamptz + @window::interval`,
		pgx.NamedArgs{
			"userID": userID,
			"at":     *body.LoggedAt,
			"window": fmt.Sprintf("%d seconds", int(nutrition.DedupWindow.Seconds())),
		})
	if err != nil {
		return weightLogRow{}, false, fmt.Errorf("neighbouring samples: %w", err)
	}
	samples := make([]nutrition.WeightLog, len(neighbours))
	for i, r := range neighbours {
		samples[i] = r.toWeightLog()
	}
	prev := nutrition.NearestWeight(samples, *body.LoggedAt)

	if !nutrition.ShouldRecordWeight(prev, body.WeightKg, *body.LoggedAt) {
		return weightLogRow{}, false, nil
	}

	entry, err := queryOne[weightLogRow](tx, ctx,
		`INSERT INTO weight_logs (user_id, weight_kg, logged_at, source)
		 VALUES (@userID, @weightKg, @loggedAt, @source)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":   userID,
			"weightKg": body.WeightKg,
			"loggedAt": *body.LoggedAt,
			"source":   body.Source,
		})
	if err != nil {
		return weightLogRow{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return weightLogRow{}, false, fmt.Errorf("commit: %w", err)
	}
	return entry, true, nil
}

// deleteWeightEntry removes a weight log entry by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM weight_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		h.logFor(c, "deleteWeightEntry").Error("weight delete failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}

	h.refreshSignal(c, userID)
	c.Status(http.StatusNoContent)
}
